package ttml

import (
	"regexp"
	"strings"
)

// Tolerant scanner for the TTML dialect. Text nodes, attribute values and
// attribute order are preserved exactly; comments are discarded; mismatched
// closing tags pop the open element without name validation. An unterminated
// tag or declaration stops the scan and whatever was accumulated so far is
// returned - malformed input never produces a hard failure here (see
// CheckWellFormed for the strict alternative).

var attrPattern = regexp.MustCompile(`([\w:.\-]+)\s*=\s*(?:"([^"]*)"|'([^']*)')`)

// Parse converts raw document text into a node tree.
func Parse(content string) *Document {
	doc := &Document{}
	var stack []*Node

	addChild := func(n *Node) {
		if len(stack) != 0 {
			parent := stack[len(stack)-1]
			n.Parent = parent
			parent.Children = append(parent.Children, n)
			return
		}
		doc.Nodes = append(doc.Nodes, n)
	}

	addText := func(text string) {
		if len(text) == 0 {
			return
		}
		if len(stack) != 0 {
			addChild(NewText(text))
			return
		}
		// inter-element whitespace at the top level is formatting noise
		if len(strings.TrimSpace(text)) != 0 {
			doc.Nodes = append(doc.Nodes, NewText(text))
		}
	}

	pos := 0
	for pos < len(content) {
		lt := strings.Index(content[pos:], "<")
		if lt == -1 {
			addText(content[pos:])
			break
		}
		lt += pos
		if lt > pos {
			addText(content[pos:lt])
		}

		switch {
		case strings.HasPrefix(content[lt:], "<?"):
			end := strings.Index(content[lt:], "?>")
			if end == -1 {
				return doc
			}
			end += lt
			target, attrs := splitTagContent(content[lt+2 : end])
			addChild(&Node{Kind: ProcInstNode, Tag: target, Attrs: attrs})
			pos = end + 2

		case strings.HasPrefix(content[lt:], "<!--"):
			end := strings.Index(content[lt:], "-->")
			if end == -1 {
				return doc
			}
			pos = lt + end + 3

		case strings.HasPrefix(content[lt:], "</"):
			end := strings.Index(content[lt:], ">")
			if end == -1 {
				return doc
			}
			if len(stack) != 0 {
				stack = stack[:len(stack)-1]
			}
			pos = lt + end + 1

		default:
			end := findTagEnd(content, lt)
			if end == -1 {
				return doc
			}
			inner := content[lt+1 : end]
			selfClosing := strings.HasSuffix(inner, "/")
			if selfClosing {
				inner = inner[:len(inner)-1]
			}
			tag, attrs := splitTagContent(inner)
			node := &Node{Kind: ElementNode, Tag: tag, Attrs: attrs, SelfClosing: selfClosing}
			addChild(node)
			if !selfClosing {
				stack = append(stack, node)
			}
			pos = end + 1
		}
	}
	return doc
}

// findTagEnd locates the terminating '>' of a tag starting at start, treating
// '>' inside single- or double-quoted attribute values as literal.
func findTagEnd(content string, start int) int {
	var quote byte
	for pos := start + 1; pos < len(content); pos++ {
		ch := content[pos]
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			}
		case ch == '"' || ch == '\'':
			quote = ch
		case ch == '>':
			return pos
		}
	}
	return -1
}

// splitTagContent separates the tag name from its attribute string and parses
// the attributes, order- and case-preserving.
func splitTagContent(inner string) (string, []Attr) {
	inner = strings.TrimSpace(inner)
	name := inner
	rest := ""
	if i := strings.IndexFunc(inner, func(r rune) bool { return r == ' ' || r == '\t' || r == '\n' || r == '\r' }); i != -1 {
		name, rest = inner[:i], inner[i+1:]
	}
	return name, parseAttrs(rest)
}

func parseAttrs(s string) []Attr {
	if len(strings.TrimSpace(s)) == 0 {
		return nil
	}
	var attrs []Attr
	for _, m := range attrPattern.FindAllStringSubmatch(s, -1) {
		value := m[2]
		if len(value) == 0 {
			value = m[3] // single-quoted alternative
		}
		attrs = append(attrs, Attr{Name: m[1], Value: value})
	}
	return attrs
}
