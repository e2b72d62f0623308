package ttml

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Structural linter. Operates on the parsed tree independent of rendering:
// formatting a file and linting it never influence each other.

// keep the report actionable - a mostly renumbered file would otherwise drown
// everything else in missing-key noise
const maxMissingKeys = 10

var lineKeyPattern = regexp.MustCompile(`^L(\d+)`)

// Lint walks the document and returns warnings in a stable order: duplicate
// line keys, gaps in the key numbering, inverted line timings, inverted word
// span timings.
func Lint(doc *Document) []string {
	prefixed := DetectPrefix(doc)

	var lines []*Node
	doc.Walk(func(n *Node) bool {
		if IsLine(n, prefixed) {
			lines = append(lines, n)
		}
		return true
	})

	var warnings []string
	warnings = append(warnings, lintLineKeys(lines)...)

	for _, line := range lines {
		key := lineKey(line)

		begin, haveBegin := ParseTimestamp(line.AttributeValue("begin"))
		end, haveEnd := ParseTimestamp(line.AttributeValue("end"))
		if haveBegin && haveEnd && begin >= end {
			warnings = append(warnings, fmt.Sprintf("[%s] line begin >= end: %s >= %s",
				key, line.AttributeValue("begin"), line.AttributeValue("end")))
		}

		for _, span := range collectWordSpans(line.Children, prefixed) {
			b, haveB := ParseTimestamp(span.AttributeValue("begin"))
			e, haveE := ParseTimestamp(span.AttributeValue("end"))
			// zero-duration spans are tolerated, inverted ones are not
			if haveB && haveE && b > e {
				warnings = append(warnings, fmt.Sprintf("[%s] span begin > end: %s > %s (text: %q)",
					key, span.AttributeValue("begin"), span.AttributeValue("end"), span.InnerText()))
			}
		}
	}
	return warnings
}

// lintLineKeys reports duplicate itunes:key values and, when keys follow the
// L<n> convention, holes in the 1..max numbering.
func lintLineKeys(lines []*Node) []string {
	var warnings []string

	seen := make(map[string]bool)
	var nums []int
	for _, line := range lines {
		key, ok := line.Attribute("itunes:key")
		if !ok || len(key) == 0 {
			continue
		}
		if seen[key] {
			warnings = append(warnings, "duplicate itunes:key: "+key)
		}
		seen[key] = true
		if m := lineKeyPattern.FindStringSubmatch(key); m != nil {
			var n int
			fmt.Sscanf(m[1], "%d", &n)
			nums = append(nums, n)
		}
	}

	if len(nums) == 0 {
		return warnings
	}
	have := make(map[int]bool, len(nums))
	max := 0
	for _, n := range nums {
		have[n] = true
		if n > max {
			max = n
		}
	}
	var missing []int
	for i := 1; i <= max; i++ {
		if !have[i] {
			missing = append(missing, i)
		}
	}
	if len(missing) != 0 && len(missing) <= maxMissingKeys {
		sort.Ints(missing)
		parts := make([]string, len(missing))
		for i, n := range missing {
			parts[i] = fmt.Sprintf("%d", n)
		}
		warnings = append(warnings, "missing itunes:key numbers: ["+strings.Join(parts, ", ")+"]")
	}
	return warnings
}

// collectWordSpans gathers non-background word spans in document order,
// descending into nested wrappers.
func collectWordSpans(nodes []*Node, prefixed bool) []*Node {
	var spans []*Node
	for _, n := range nodes {
		if n.Kind != ElementNode {
			continue
		}
		if n.Tag == spanTag(prefixed) && !hasBackgroundRole(n) {
			spans = append(spans, n)
		}
		spans = append(spans, collectWordSpans(n.Children, prefixed)...)
	}
	return spans
}

// hasBackgroundRole matches the reference behavior of excluding any span
// carrying an x-bg attribute value, whatever the attribute name.
func hasBackgroundRole(n *Node) bool {
	for _, a := range n.Attrs {
		if a.Value == "x-bg" {
			return true
		}
	}
	return false
}

// lineKey identifies a line in diagnostics: its itunes:key when present, the
// begin timestamp otherwise.
func lineKey(line *Node) string {
	if key, ok := line.Attribute("itunes:key"); ok && len(key) != 0 {
		return key
	}
	if begin, ok := line.Attribute("begin"); ok && len(begin) != 0 {
		return begin
	}
	return "?"
}
