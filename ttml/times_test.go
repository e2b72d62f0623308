package ttml

import (
	"math"
	"testing"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"00:05.500", 5.5, true},
		{"01:30.250", 90.25, true},
		{"1:02:03.000", 3723, true},
		{"12.75", 12.75, true},
		{"0", 0, true},
		{" 00:01.000 ", 1, true},
		{"", 0, false},
		{"abc", 0, false},
		{"00:xx.000", 0, false},
		{"1:2:3:4", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseTimestamp(tt.in)
		if ok != tt.ok {
			t.Errorf("ParseTimestamp(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("ParseTimestamp(%q) = %g, want %g", tt.in, got, tt.want)
		}
	}
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "00:00.000"},
		{5.5, "00:05.500"},
		{90.25, "01:30.250"},
		{3723, "62:03.000"}, // minutes never wrap into hours
		{-1, "00:00.000"},
		{59.9996, "01:00.000"}, // rounds before splitting into minutes
		{61.0004, "01:01.000"},
	}
	for _, tt := range tests {
		if got := FormatTimestamp(tt.in); got != tt.want {
			t.Errorf("FormatTimestamp(%g) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	for _, ts := range []string{"00:00.000", "00:05.500", "01:30.250", "59:59.999"} {
		sec, ok := ParseTimestamp(ts)
		if !ok {
			t.Fatalf("ParseTimestamp(%q) failed", ts)
		}
		if got := FormatTimestamp(sec); got != ts {
			t.Errorf("round trip %q -> %g -> %q", ts, sec, got)
		}
	}
}
