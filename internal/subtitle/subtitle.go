package subtitle

import (
	"errors"
	"strings"
)

var (
	// ErrMalformedSegment reports a segment whose timing is not finite,
	// negative, or ends before it starts.
	ErrMalformedSegment = errors.New("malformed segment")

	// ErrMalformedTimestamp reports an offset that cannot be rendered on a
	// caption clock.
	ErrMalformedTimestamp = errors.New("malformed timestamp")
)

// represents a single timed caption unit, offsets in seconds
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// segment as handed over by a recognizer, before validation
type RawSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// ordered caption sequence
type Transcript struct {
	Segments []Segment
}

// FullText joins the trimmed text of every segment in order.
func (t Transcript) FullText() string {
	parts := make([]string, 0, len(t.Segments))
	for _, seg := range t.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, " ")
}

// represents supported caption formats
type Format string

const (
	FormatSRT Format = "srt"
	FormatVTT Format = "vtt"
)

// interface for serializing captions
type Writer interface {
	Render(segments []Segment) ([]byte, error)
	Write(segments []Segment, path string) error
}
