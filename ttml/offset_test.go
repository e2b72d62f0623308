package ttml

import (
	"math"
	"testing"
)

func TestParseOffset(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"0.5", 0.5, false},
		{"-1.25", -1.25, false},
		{"100ms", 0.1, false},
		{"-50ms", -0.05, false},
		{" 250MS ", 0.25, false},
		{"2", 2, false},
		{"ms", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseOffset(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOffset(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("ParseOffset(%q) = %g, want %g", tt.in, got, tt.want)
		}
	}
}

func TestShift(t *testing.T) {
	doc := Parse(`<tt><body dur="00:04.000"><div begin="00:01.000" end="00:04.000">` +
		`<p begin="00:01.000" end="00:02.000"><span begin="00:01.000" end="00:02.000">a</span></p>` +
		`</div></body></tt>`)

	Shift(doc, 0.5)

	div := doc.Root().Children[0].Children[0]
	if got := div.AttributeValue("begin"); got != "00:01.500" {
		t.Errorf("div begin = %q, want 00:01.500", got)
	}
	span := div.Children[0].Children[0]
	if got := span.AttributeValue("end"); got != "00:02.500" {
		t.Errorf("span end = %q, want 00:02.500", got)
	}
	// body duration recalculated from the latest shifted end time
	if got := doc.Root().Children[0].AttributeValue("dur"); got != "00:04.500" {
		t.Errorf("body dur = %q, want 00:04.500", got)
	}
}

func TestShift_ClampsAtZero(t *testing.T) {
	doc := Parse(`<tt><body><p begin="00:01.000" end="00:02.000">a</p></body></tt>`)
	Shift(doc, -5)

	p := doc.Root().Children[0].Children[0]
	if got := p.AttributeValue("begin"); got != "00:00.000" {
		t.Errorf("begin = %q, want clamp to 00:00.000", got)
	}
}

func TestShift_UnparsableValuesUntouched(t *testing.T) {
	doc := Parse(`<tt><body><p begin="whenever" end="00:02.000">a</p></body></tt>`)
	Shift(doc, 1)

	p := doc.Root().Children[0].Children[0]
	if got := p.AttributeValue("begin"); got != "whenever" {
		t.Errorf("unparsable begin rewritten to %q", got)
	}
	if got := p.AttributeValue("end"); got != "00:03.000" {
		t.Errorf("end = %q, want 00:03.000", got)
	}
}

func TestUpdateBodyDuration_NoBody(t *testing.T) {
	doc := Parse(`<p begin="00:01.000" end="00:02.000">a</p>`)
	// must not panic without a body element
	UpdateBodyDuration(doc)
}

func TestUpdateBodyDuration_Prefixed(t *testing.T) {
	doc := Parse(`<tt:tt><tt:body><tt:p begin="00:01.000" end="00:07.250">a</tt:p></tt:body></tt:tt>`)
	UpdateBodyDuration(doc)

	body := doc.Root().Children[0]
	if got := body.AttributeValue("dur"); got != "00:07.250" {
		t.Errorf("body dur = %q, want 00:07.250", got)
	}
}
