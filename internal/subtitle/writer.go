package subtitle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SubRip format
type SRTWriter struct{}

// WebVTT format
type VTTWriter struct{}

func NewWriter(format Format) (Writer, error) {
	switch format {
	case FormatSRT:
		return &SRTWriter{}, nil
	case FormatVTT:
		return &VTTWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// Render serializes segments as SRT. Segments with no text are skipped and
// do not take an index.
func (w *SRTWriter) Render(segments []Segment) ([]byte, error) {
	var sb strings.Builder
	if err := renderCues(&sb, segments, FormatTimestamp); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}

// writes the rendered SRT to path
func (w *SRTWriter) Write(segments []Segment, path string) error {
	return writeRendered(w, segments, path)
}

// Render serializes segments as WebVTT.
func (w *VTTWriter) Render(segments []Segment) ([]byte, error) {
	var sb strings.Builder
	sb.WriteString("WEBVTT\n\n")
	if err := renderCues(&sb, segments, FormatVTTTimestamp); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}

func (w *VTTWriter) Write(segments []Segment, path string) error {
	return writeRendered(w, segments, path)
}

func renderCues(
	sb *strings.Builder,
	segments []Segment,
	clock func(float64) (string, error),
) error {
	for _, cue := range Cues(segments) {
		if err := validateSpan(cue.Start, cue.End); err != nil {
			return fmt.Errorf("segment %d: %w", cue.Position, err)
		}
		start, err := clock(cue.Start)
		if err != nil {
			return fmt.Errorf("segment %d: %w", cue.Position, err)
		}
		end, err := clock(cue.End)
		if err != nil {
			return fmt.Errorf("segment %d: %w", cue.Position, err)
		}

		fmt.Fprintf(sb, "%d\n", cue.Index)
		fmt.Fprintf(sb, "%s --> %s\n", start, end)
		sb.WriteString(cue.Text)
		sb.WriteString("\n\n")
	}
	return nil
}

// trims the text and drops blank lines, which would end the cue early
func cueText(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func writeRendered(w Writer, segments []Segment, path string) error {
	data, err := w.Render(segments)
	if err != nil {
		return err
	}
	if err := ensureDir(path); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0755)
}

// parses a user supplied format name
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "srt":
		return FormatSRT, nil
	case "vtt":
		return FormatVTT, nil
	default:
		return "", fmt.Errorf("unsupported format %q: use srt or vtt", name)
	}
}

// caption format based on file extension
func GetFormatFromExtension(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".vtt":
		return FormatVTT
	default:
		return FormatSRT
	}
}

// file extension for a format
func GetExtensionForFormat(format Format) string {
	switch format {
	case FormatVTT:
		return ".vtt"
	default:
		return ".srt"
	}
}
