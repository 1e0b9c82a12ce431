package subtitle

import "unicode"

// length of every segment produced by SplitSentences
const SyntheticDuration = 2.5

// SplitSentences turns a flat transcript into back-to-back segments of
// SyntheticDuration seconds each, one per sentence. A sentence ends at '.',
// '!' or '?' followed by whitespace; the whitespace is dropped and the
// punctuation stays with the sentence. Blank fragments are skipped.
func SplitSentences(text string) []Segment {
	segments := []Segment{}
	start := 0.0
	for _, sentence := range splitAtBoundaries(text) {
		if isBlank(sentence) {
			continue
		}
		segments = append(segments, Segment{
			Start: start,
			End:   start + SyntheticDuration,
			Text:  sentence,
		})
		start += SyntheticDuration
	}
	return segments
}

func splitAtBoundaries(text string) []string {
	runes := []rune(text)
	var parts []string

	from := 0
	for i := 0; i < len(runes); i++ {
		if !isTerminator(runes[i]) || i+1 >= len(runes) || !unicode.IsSpace(runes[i+1]) {
			continue
		}
		parts = append(parts, string(runes[from:i+1]))

		next := i + 1
		for next < len(runes) && unicode.IsSpace(runes[next]) {
			next++
		}
		from = next
		i = next - 1
	}

	return append(parts, string(runes[from:]))
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isBlank(s string) bool {
	for _, r := range s {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
