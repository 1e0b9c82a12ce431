package subtitle

import (
	"errors"
	"math"
	"regexp"
	"testing"
)

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00,000"},
		{1.2, "00:00:01,200"},
		{2.5, "00:00:02,500"},
		{3661.2345, "01:01:01,234"},
		{0.0004, "00:00:00,000"},
		{0.9996, "00:00:01,000"},
		{3661.2344, "01:01:01,234"},
		{3661.2346, "01:01:01,235"},
		{59.9999, "00:01:00,000"},
		{3599.9996, "01:00:00,000"},
		{86399.9999, "24:00:00,000"},
		{90061.001, "25:01:01,001"},
		{360000, "100:00:00,000"},
	}

	for _, tt := range tests {
		got, err := FormatTimestamp(tt.seconds)
		if err != nil {
			t.Errorf("FormatTimestamp(%v) returned error: %v", tt.seconds, err)
			continue
		}
		if got != tt.want {
			t.Errorf("FormatTimestamp(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestFormatTimestampRejectsInvalid(t *testing.T) {
	for _, v := range []float64{-0.001, -5, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := FormatTimestamp(v)
		if !errors.Is(err, ErrMalformedTimestamp) {
			t.Errorf("FormatTimestamp(%v) error = %v, want ErrMalformedTimestamp", v, err)
		}
	}
}

func TestFormatTimestampPattern(t *testing.T) {
	pattern := regexp.MustCompile(`^\d{2,}:\d{2}:\d{2},\d{3}$`)

	// walk a range dense enough to hit every rounding edge in the last second
	for i := 0; i < 200000; i++ {
		v := float64(i) * 0.0173
		got, err := FormatTimestamp(v)
		if err != nil {
			t.Fatalf("FormatTimestamp(%v) returned error: %v", v, err)
		}
		if !pattern.MatchString(got) {
			t.Fatalf("FormatTimestamp(%v) = %q does not match caption clock", v, got)
		}
	}
}

func TestFormatVTTTimestamp(t *testing.T) {
	got, err := FormatVTTTimestamp(61.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "00:01:01.500" {
		t.Errorf("FormatVTTTimestamp(61.5) = %q, want %q", got, "00:01:01.500")
	}
}
