package subtitle

import (
	"fmt"
	"math"
)

// FormatTimestamp renders an offset in seconds as an SRT clock,
// HH:MM:SS,mmm. The whole offset is rounded to the nearest millisecond
// (ties to even) before it is split into fields, so a fraction that rounds
// up to a full second lands in the seconds field.
func FormatTimestamp(seconds float64) (string, error) {
	return formatClock(seconds, ',')
}

// FormatVTTTimestamp is FormatTimestamp with the WebVTT "." separator.
func FormatVTTTimestamp(seconds float64) (string, error) {
	return formatClock(seconds, '.')
}

func formatClock(seconds float64, sep byte) (string, error) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return "", fmt.Errorf("%w: %v", ErrMalformedTimestamp, seconds)
	}

	all := int64(math.RoundToEven(seconds * 1000))
	total, millis := all/1000, all%1000

	hours := total / 3600
	minutes := total / 60 % 60
	secs := total % 60

	return fmt.Sprintf("%02d:%02d:%02d%c%03d", hours, minutes, secs, sep, millis), nil
}
