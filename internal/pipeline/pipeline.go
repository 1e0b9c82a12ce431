// Package pipeline turns a video into a transcript, a caption file and,
// optionally, a copy of the video with the captions burned in.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mgpai22/leviosa/internal/audio"
	"github.com/mgpai22/leviosa/internal/language"
	"github.com/mgpai22/leviosa/internal/logging"
	"github.com/mgpai22/leviosa/internal/subtitle"
	"github.com/mgpai22/leviosa/internal/transcribe"
	"github.com/mgpai22/leviosa/internal/video"
)

var (
	ErrAudioExtraction = errors.New("audio extraction failed")
	ErrRecognition     = errors.New("speech recognition failed")
	ErrBurn            = errors.New("subtitle burn-in failed")
)

// Mode selects what a run produces.
type Mode string

const (
	// ModeText writes the transcript only.
	ModeText Mode = "text"
	// ModeSubtitle also writes a caption file.
	ModeSubtitle Mode = "subtitle"
)

// ParseMode accepts "text" or "subtitle"; empty means text.
func ParseMode(value string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case "", ModeText:
		return ModeText, nil
	case ModeSubtitle:
		return ModeSubtitle, nil
	default:
		return "", fmt.Errorf("unsupported mode %q: use text or subtitle", value)
	}
}

type Request struct {
	VideoPath string
	Mode      Mode
	Format    subtitle.Format // caption format, SRT when empty
	Language  string          // recognition hint, overrides the transcriber default
	Burn      bool
	BaseName  string // output file stem, defaults to the video's name
}

// Outcome describes the artifacts of one run. Segments is nil in text mode.
type Outcome struct {
	Mode           Mode
	Text           string
	Language       string
	Segments       subtitle.Segments
	TranscriptPath string
	SubtitlePath   string
	BurnedPath     string
	Duration       time.Duration
}

type Pipeline struct {
	processor   video.Processor
	transcriber transcribe.Transcriber
	outputDir   string
	workDir     string
	audioOpts   video.ExtractAudioOptions
	logger      *logging.Logger
}

type Option func(*Pipeline)

// WithWorkDir sets where per-run scratch directories are created.
func WithWorkDir(dir string) Option {
	return func(p *Pipeline) {
		p.workDir = dir
	}
}

func WithLogger(logger *logging.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func WithAudioOptions(opts video.ExtractAudioOptions) Option {
	return func(p *Pipeline) {
		p.audioOpts = opts
	}
}

// New wires a pipeline around an explicitly constructed transcriber. A
// Pipeline holds no per-run state and may be shared between goroutines.
func New(
	processor video.Processor,
	transcriber transcribe.Transcriber,
	outputDir string,
	opts ...Option,
) *Pipeline {
	p := &Pipeline{
		processor:   processor,
		transcriber: transcriber,
		outputDir:   outputDir,
		workDir:     os.TempDir(),
		audioOpts:   video.DefaultExtractAudioOptions(),
		logger:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (r *Request) normalize() error {
	if strings.TrimSpace(r.VideoPath) == "" {
		return errors.New("video path is required")
	}
	if r.Mode == "" {
		r.Mode = ModeText
	}
	if r.Mode != ModeText && r.Mode != ModeSubtitle {
		return fmt.Errorf("unsupported mode %q", r.Mode)
	}
	if r.Format == "" {
		r.Format = subtitle.FormatSRT
	}
	if r.Burn {
		if r.Mode != ModeSubtitle {
			return errors.New("burn-in requires subtitle mode")
		}
		if !audio.IsVideoFile(r.VideoPath) {
			return fmt.Errorf("cannot burn captions into %s: not a video file", filepath.Base(r.VideoPath))
		}
	}
	if r.BaseName == "" {
		name := filepath.Base(r.VideoPath)
		r.BaseName = strings.TrimSuffix(name, filepath.Ext(name))
	}
	return nil
}

// Run processes one video. Extraction and recognition failures are wrapped
// in ErrAudioExtraction and ErrRecognition.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Outcome, error) {
	if err := req.normalize(); err != nil {
		return nil, err
	}

	jobID := uuid.NewString()
	logger := p.logger.With("job", jobID, "input", filepath.Base(req.VideoPath))

	workDir := filepath.Join(p.workDir, "leviosa-"+jobID)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	if err := os.MkdirAll(p.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	audioPath := filepath.Join(workDir, jobID+"."+p.audioOpts.Format)

	logger.Infow("Extracting audio")
	if err := p.processor.ExtractAudio(ctx, req.VideoPath, audioPath, p.audioOpts); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAudioExtraction, err)
	}

	logger.Infow("Transcribing audio", "language_hint", req.Language)
	result, err := p.transcriber.Transcribe(transcribe.WithLanguage(ctx, req.Language), audioPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRecognition, err)
	}

	text := strings.TrimSpace(result.Text)
	if text == "" && len(result.Segments) > 0 {
		text = segmentText(result.Segments)
	}
	out := &Outcome{
		Mode:     req.Mode,
		Text:     text,
		Language: resolveLanguage(result.Language, text, req.Language),
		Duration: result.Duration,
	}

	out.TranscriptPath = filepath.Join(p.outputDir, req.BaseName+".txt")
	if err := writeTranscript(out.TranscriptPath, text); err != nil {
		return nil, err
	}

	logger.Infow("Transcription complete",
		"characters", len(text),
		"segments", len(result.Segments),
		"language", out.Language,
	)

	if req.Mode != ModeSubtitle {
		return out, nil
	}

	segments, err := subtitle.Resolve(result.Segments, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRecognition, err)
	}
	out.Segments = segments

	if segments.Kind() == subtitle.KindSynthetic {
		logger.Warnw("Recognizer returned no timing, using sentence timing",
			"sentences", len(segments.List()),
		)
	}

	writer, err := subtitle.NewWriter(req.Format)
	if err != nil {
		return nil, err
	}
	out.SubtitlePath = filepath.Join(p.outputDir, req.BaseName+subtitle.GetExtensionForFormat(req.Format))
	if err := writer.Write(segments.List(), out.SubtitlePath); err != nil {
		return nil, fmt.Errorf("failed to write subtitles: %w", err)
	}

	if !req.Burn {
		return out, nil
	}

	out.BurnedPath = filepath.Join(p.outputDir, req.BaseName+"_subtitled"+filepath.Ext(req.VideoPath))
	logger.Infow("Burning subtitles into video", "output", out.BurnedPath)
	if err := p.processor.BurnSubtitles(ctx, req.VideoPath, out.SubtitlePath, out.BurnedPath); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBurn, err)
	}

	return out, nil
}

// the recognizer's answer wins, then detection, then the caller's hint
func resolveLanguage(reported, text, hint string) string {
	if code := language.ToISO2(reported); code != "" {
		return code
	}
	if code := language.Detect(text); code != "" {
		return code
	}
	return language.ToISO2(hint)
}

// some recognizers only fill in segments
func segmentText(raw []subtitle.RawSegment) string {
	segments := make([]subtitle.Segment, len(raw))
	for i, r := range raw {
		segments[i] = subtitle.Segment(r)
	}
	return subtitle.Transcript{Segments: segments}.FullText()
}

func writeTranscript(path, text string) error {
	if text != "" {
		text += "\n"
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	return nil
}
