package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/mgpai22/leviosa/internal/audio"
	"github.com/mgpai22/leviosa/internal/language"
	"github.com/mgpai22/leviosa/internal/pipeline"
	"github.com/mgpai22/leviosa/internal/subtitle"
)

type segmentResponse struct {
	Index     int     `json:"index"`
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	StartTime string  `json:"start_time"`
	EndTime   string  `json:"end_time"`
	Text      string  `json:"text"`
}

type transcriptionResponse struct {
	ID            string            `json:"id"`
	Mode          pipeline.Mode     `json:"mode"`
	Text          string            `json:"text"`
	Language      string            `json:"language,omitempty"`
	SegmentSource subtitle.Kind     `json:"segment_source,omitempty"`
	Segments      []segmentResponse `json:"segments,omitempty"`
	TranscriptURL string            `json:"transcript_url"`
	SubtitleURL   string            `json:"subtitle_url,omitempty"`
	VideoURL      string            `json:"video_url,omitempty"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := map[string]any{
		"Language":  s.defaultLanguage,
		"MaxUpload": humanize.IBytes(uint64(s.maxUpload)),
	}
	if err := indexTemplate.Execute(w, data); err != nil {
		s.logger.Errorw("Failed to render index", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(formMemoryLimit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds the %s limit", humanize.IBytes(uint64(s.maxUpload))))
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	req, err := s.parseRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	file, header, err := r.FormFile("video")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing video file")
		return
	}
	defer file.Close()

	if !audio.IsMediaFile(header.Filename) {
		writeError(w, http.StatusUnsupportedMediaType,
			fmt.Sprintf("unsupported file type %q", filepath.Ext(header.Filename)))
		return
	}

	id := uuid.NewString()
	uploadPath, err := s.saveUpload(id, header.Filename, file)
	if err != nil {
		s.logger.Errorw("Failed to save upload", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save upload")
		return
	}

	if err := s.jobs.Acquire(r.Context(), 1); err != nil {
		s.discardUpload(uploadPath)
		writeError(w, http.StatusServiceUnavailable, "request cancelled while waiting for a free worker")
		return
	}
	defer s.jobs.Release(1)

	req.VideoPath = uploadPath
	req.BaseName = id

	s.logger.Infow("Processing upload",
		"id", id,
		"file", header.Filename,
		"size", humanize.IBytes(uint64(header.Size)),
		"mode", req.Mode,
	)

	outcome, err := s.runner.Run(r.Context(), req)
	if err != nil {
		s.discardUpload(uploadPath)
		status := statusForError(err)
		s.logger.Warnw("Transcription failed", "id", id, "status", status, "error", err)
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, buildResponse(id, outcome))
}

func (s *Server) parseRequest(r *http.Request) (pipeline.Request, error) {
	mode, err := pipeline.ParseMode(r.FormValue("mode"))
	if err != nil {
		return pipeline.Request{}, err
	}

	format, err := subtitle.ParseFormat(r.FormValue("format"))
	if err != nil {
		return pipeline.Request{}, err
	}

	lang := strings.TrimSpace(r.FormValue("language"))
	if lang == "" {
		lang = s.defaultLanguage
	}
	if lang != "" {
		code := language.ToISO2(lang)
		if code == "" {
			return pipeline.Request{}, fmt.Errorf("unknown language %q", lang)
		}
		lang = code
	}

	burn, err := parseCheckbox(r.FormValue("burn"))
	if err != nil {
		return pipeline.Request{}, fmt.Errorf("invalid burn value: %w", err)
	}

	return pipeline.Request{
		Mode:     mode,
		Format:   format,
		Language: lang,
		Burn:     burn,
	}, nil
}

// HTML checkboxes submit "on"
func parseCheckbox(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return false, nil
	case "on":
		return true, nil
	default:
		return strconv.ParseBool(value)
	}
}

func (s *Server) saveUpload(id, filename string, src io.Reader) (string, error) {
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(s.uploadDir, id+"_"+safeName(filename))
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return "", err
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

// removes an upload whose job will not produce output
func (s *Server) discardUpload(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger.Warnw("Failed to remove upload", "path", path, "error", err)
	}
}

// keeps the base name and replaces characters that would upset ffmpeg's
// filter syntax or the shell
func safeName(filename string) string {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', ':', '\'', '"', ',', ';', '[', ']', '=':
			return '_'
		}
		if r < 0x20 {
			return '_'
		}
		return r
	}, name)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/outputs/")
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		writeError(w, http.StatusBadRequest, "invalid file name")
		return
	}

	file, err := os.Open(filepath.Join(s.outputDir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil || info.IsDir() {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeContent(w, r, name, info.ModTime(), file)
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrAudioExtraction):
		return http.StatusUnprocessableEntity
	case errors.Is(err, pipeline.ErrRecognition):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func buildResponse(id string, outcome *pipeline.Outcome) transcriptionResponse {
	resp := transcriptionResponse{
		ID:            id,
		Mode:          outcome.Mode,
		Text:          outcome.Text,
		Language:      outcome.Language,
		TranscriptURL: outputURL(outcome.TranscriptPath),
		SubtitleURL:   outputURL(outcome.SubtitlePath),
		VideoURL:      outputURL(outcome.BurnedPath),
	}

	if outcome.Segments == nil {
		return resp
	}
	resp.SegmentSource = outcome.Segments.Kind()
	resp.Segments = []segmentResponse{}

	for _, cue := range subtitle.Cues(outcome.Segments.List()) {
		// spans were validated when the caption file was written
		start, _ := subtitle.FormatTimestamp(cue.Start)
		end, _ := subtitle.FormatTimestamp(cue.End)
		resp.Segments = append(resp.Segments, segmentResponse{
			Index:     cue.Index,
			Start:     cue.Start,
			End:       cue.End,
			StartTime: start,
			EndTime:   end,
			Text:      cue.Text,
		})
	}
	return resp
}

func outputURL(path string) string {
	if path == "" {
		return ""
	}
	return "/outputs/" + filepath.Base(path)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}
