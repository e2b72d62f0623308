package ttml

import (
	"fmt"
	"strconv"
	"strings"
)

// Bulk timestamp shifting. Shift applies a uniform additive offset to every
// begin/end attribute in the tree, clamping results at zero, and refreshes the
// body duration to cover the latest end time. Values that do not parse are
// left untouched.

// ParseOffset converts an offset argument to seconds. A trailing "ms" marks
// milliseconds ("100ms", "-50ms"); anything else is seconds ("0.25", "-1.5").
func ParseOffset(s string) (float64, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if rest, ok := strings.CutSuffix(s, "ms"); ok {
		v, err := strconv.ParseFloat(rest, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid millisecond offset %q", s)
		}
		return v / 1000, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid seconds offset %q", s)
	}
	return v, nil
}

// Shift moves all begin/end timestamps by delta seconds and updates the body
// element duration. The document is modified in place; callers that need the
// original intact should Clone first.
func Shift(doc *Document, delta float64) {
	doc.Walk(func(n *Node) bool {
		if n.Kind != ElementNode {
			return true
		}
		for _, name := range []string{"begin", "end"} {
			raw, ok := n.Attribute(name)
			if !ok {
				continue
			}
			t, ok := ParseTimestamp(raw)
			if !ok {
				continue
			}
			t += delta
			if t < 0 {
				t = 0
			}
			n.SetAttribute(name, FormatTimestamp(t))
		}
		return true
	})
	UpdateBodyDuration(doc)
}

// UpdateBodyDuration sets the body element's dur attribute to the maximum end
// time present anywhere in the tree. Does nothing when there is no body or no
// parsable end time.
func UpdateBodyDuration(doc *Document) {
	maxEnd := -1.0
	var body *Node
	doc.Walk(func(n *Node) bool {
		if n.Kind != ElementNode {
			return true
		}
		if body == nil && (n.Tag == "body" || n.Tag == "tt:body") {
			body = n
		}
		if raw, ok := n.Attribute("end"); ok {
			if t, ok := ParseTimestamp(raw); ok && t > maxEnd {
				maxEnd = t
			}
		}
		return true
	})
	if body != nil && maxEnd >= 0 {
		body.SetAttribute("dur", FormatTimestamp(maxEnd))
	}
}
