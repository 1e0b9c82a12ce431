package subtitle

import (
	"fmt"
	"math"
	"strings"
)

// identifies where a resolved segment sequence came from
type Kind string

const (
	KindRecognized Kind = "recognized"
	KindSynthetic  Kind = "synthetic"
)

// Segments is the result of Resolve: either RecognizedSegments, which carry
// the recognizer's own timings, or SyntheticSegments built by SplitSentences.
type Segments interface {
	List() []Segment
	Kind() Kind
	sealed()
}

// segments with timings reported by the recognizer
type RecognizedSegments []Segment

func (s RecognizedSegments) List() []Segment { return s }
func (s RecognizedSegments) Kind() Kind      { return KindRecognized }
func (RecognizedSegments) sealed()           {}

// segments with approximate timings from sentence splitting
type SyntheticSegments []Segment

func (s SyntheticSegments) List() []Segment { return s }
func (s SyntheticSegments) Kind() Kind      { return KindSynthetic }
func (SyntheticSegments) sealed()           {}

// Resolve picks the caption sequence for a recognition result. Raw segments
// are used as-is (text trimmed) when there are any; otherwise fullText is
// split into synthetic sentences. Raw segments with broken timing are
// rejected with ErrMalformedSegment rather than clamped.
func Resolve(raw []RawSegment, fullText string) (Segments, error) {
	if len(raw) == 0 {
		return SyntheticSegments(SplitSentences(fullText)), nil
	}

	segments := make(RecognizedSegments, 0, len(raw))
	for i, r := range raw {
		if err := validateSpan(r.Start, r.End); err != nil {
			return nil, fmt.Errorf("segment %d: %w", i+1, err)
		}
		segments = append(segments, Segment{
			Start: r.Start,
			End:   r.End,
			Text:  strings.TrimSpace(r.Text),
		})
	}

	return segments, nil
}

func validateSpan(start, end float64) error {
	if !isFinite(start) || !isFinite(end) {
		return fmt.Errorf("%w: non-finite timing [%v, %v]", ErrMalformedSegment, start, end)
	}
	if start < 0 {
		return fmt.Errorf("%w: negative start %v", ErrMalformedSegment, start)
	}
	if end < start {
		return fmt.Errorf("%w: end %v before start %v", ErrMalformedSegment, end, start)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
