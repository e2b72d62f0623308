package roman

import (
	"strings"

	"ttc/ttml"
)

// Annotate adds x-roman attributes to word spans and lyric lines of the
// document. Existing x-roman values are kept verbatim and span text is never
// rewritten. When fallback is set, non-Korean text is transliterated with the
// generic ASCII approximation instead of being skipped. Returns the number of
// attributes added.
func Annotate(doc *ttml.Document, fallback bool) int {
	prefixed := ttml.DetectPrefix(doc)
	added := 0

	doc.Walk(func(n *ttml.Node) bool {
		if n.Kind != ttml.ElementNode || !ttml.IsLine(n, prefixed) {
			return true
		}

		var parts []string
		romanized := false
		for _, span := range n.Children {
			if span.Kind != ttml.ElementNode || !strings.HasSuffix(span.Tag, "span") {
				continue
			}
			text := span.InnerText()
			if len(strings.TrimSpace(text)) == 0 {
				continue
			}
			if existing, ok := span.Attribute("x-roman"); ok {
				parts = append(parts, existing)
				romanized = true
				continue
			}
			roman := Romanize(text)
			if len(roman) == 0 && fallback {
				roman = Transliterate(text)
			}
			if len(roman) != 0 {
				span.SetAttribute("x-roman", strings.TrimSpace(roman))
				parts = append(parts, strings.TrimSpace(roman))
				romanized = true
				added++
			} else {
				parts = append(parts, strings.TrimSpace(text))
			}
		}

		// only lines that actually gained a transliteration are annotated,
		// otherwise plain lines would carry a copy of their own text
		if _, ok := n.Attribute("x-roman"); !ok && romanized && len(parts) != 0 {
			n.SetAttribute("x-roman", strings.Join(parts, " "))
			added++
		}
		return false
	})
	return added
}
