package subtitle

// Cue is a segment as it appears in a caption file.
type Cue struct {
	Index    int // 1-based caption number
	Position int // 1-based position of the source segment
	Start    float64
	End      float64
	Text     string
}

// Cues numbers the segments that produce a caption block. Segments whose
// text is blank are dropped and do not take a number; the remaining text is
// trimmed with blank lines removed. Writers, listings and API responses all
// number cues through this function.
func Cues(segments []Segment) []Cue {
	cues := make([]Cue, 0, len(segments))
	for i, seg := range segments {
		text := cueText(seg.Text)
		if text == "" {
			continue
		}
		cues = append(cues, Cue{
			Index:    len(cues) + 1,
			Position: i + 1,
			Start:    seg.Start,
			End:      seg.End,
			Text:     text,
		})
	}
	return cues
}
