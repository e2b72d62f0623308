package ttml

import (
	"regexp"
	"sort"
	"strings"
)

// Canonical renderer. Render is deterministic and idempotent: formatting its
// own output is a fixed point. The tree handed in is never mutated - the two
// rewrites rendering needs (merging loose text runs into sibling spans and the
// doubled-parenthesis repair in background vocals) happen on a working copy.

const xmlDeclaration = `<?xml version="1.0" encoding="utf-8"?>`

const indentStep = "  "

// Attribute presentation order. Known names sort first by priority, anything
// else follows alphabetically. Display only - the semantic pairs used by the
// linter keep encounter order.
var attrOrder = map[string]int{
	"begin":         0,
	"end":           1,
	"dur":           2,
	"ttm:agent":     3,
	"ttm:role":      4,
	"itunes:key":    5,
	"itunes:timing": 6,
	"type":          7,
	"xml:id":        8,
	"xml:lang":      9,
	"x-roman":       10,
	"for":           11,
}

var (
	// newline with surrounding whitespace, replaced by one space when
	// collapsing subtrees onto a single line
	reNewlineAround = regexp.MustCompile(`\s*\n\s*`)
	// newline and trailing indentation injected into span text by earlier
	// malformed formatting passes
	reNewlineTrail = regexp.MustCompile(`\n\s*`)
	reSpaceRun     = regexp.MustCompile(`\s+`)
)

// Format parses raw document text and returns its canonical form. Degenerate
// input that yields no nodes at all is returned unchanged.
func Format(content string) string {
	doc := Parse(content)
	if len(doc.Nodes) == 0 {
		return content
	}
	return Render(doc)
}

// Render turns a parsed document into canonical text.
func Render(doc *Document) string {
	work := doc.Clone()
	r := renderer{prefixed: DetectPrefix(work)}

	var lines []string
	haveDecl := false
	for _, n := range work.Nodes {
		if n.Kind == ProcInstNode {
			haveDecl = true
		}
		lines = append(lines, r.node(n, 0, false, false)...)
	}
	if !haveDecl {
		lines = append([]string{xmlDeclaration}, lines...)
	}
	return strings.Join(lines, "\n") + "\n"
}

type renderer struct {
	prefixed bool
}

// node renders one node into output lines. insideLine marks rendering within
// the text flow of a lyric line; forceInline collapses the whole subtree.
func (r *renderer) node(n *Node, indent int, insideLine, forceInline bool) []string {
	ind := strings.Repeat(indentStep, indent)

	switch n.Kind {
	case TextNode:
		if insideLine {
			return []string{n.Text}
		}
		if len(strings.TrimSpace(n.Text)) != 0 {
			return []string{ind + n.Text}
		}
		return nil
	case ProcInstNode:
		return []string{ind + r.procInst(n)}
	}

	openTag := n.Tag
	if attrs := formatAttrs(n.Attrs); len(attrs) != 0 {
		openTag += " " + attrs
	}

	if forceInline {
		return r.collapsed(n, openTag, ind, insideLine, true)
	}

	// childless elements always render self-closed, whichever closing
	// syntax the source used
	if n.SelfClosing || len(n.Children) == 0 {
		if insideLine {
			return []string{"<" + openTag + "/>"}
		}
		return []string{ind + "<" + openTag + "/>"}
	}

	background := IsBackgroundWrapper(n, r.prefixed)

	// within a line everything except a background wrapper joins the text
	// flow; word spans do so wherever they appear
	if !background && (insideLine || Classify(n, r.prefixed) == LayoutInlineRun) {
		return []string{r.inlineRun(n, openTag, indent)}
	}

	if IsLine(n, r.prefixed) || background {
		return r.lineBlock(n, openTag, indent, background)
	}

	if Classify(n, r.prefixed) == LayoutInlineCollapsed {
		return r.collapsed(n, openTag, ind, insideLine, false)
	}

	return r.block(n, openTag, indent)
}

func (r *renderer) procInst(n *Node) string {
	if n.Tag == "xml" {
		// canonical declaration regardless of what the source carried
		return xmlDeclaration
	}
	if attrs := formatAttrs(n.Attrs); len(attrs) != 0 {
		return "<?" + n.Tag + " " + attrs + "?>"
	}
	return "<?" + n.Tag + "?>"
}

// inlineRun renders an element as part of the surrounding text flow, with no
// whitespace injected between it and its siblings.
func (r *renderer) inlineRun(n *Node, openTag string, indent int) string {
	var inner strings.Builder
	for _, c := range n.Children {
		if c.Kind == TextNode {
			text := c.Text
			if strings.Contains(text, "\n") {
				// stray newlines inside span text are artifacts of
				// earlier malformed edits, not intentional spacing
				text = reNewlineTrail.ReplaceAllString(text, "")
			}
			inner.WriteString(text)
			continue
		}
		childBG := IsBackgroundWrapper(c, r.prefixed)
		inner.WriteString(strings.Join(r.node(c, indent, !childBG, false), ""))
	}
	return "<" + openTag + ">" + inner.String() + "</" + n.Tag + ">"
}

// collapsed renders an element with its entire subtree squashed onto a single
// line. Empty resolved text keeps an explicit open/close pair so that an
// intentionally empty free-text field stays distinguishable from an absent
// one.
func (r *renderer) collapsed(n *Node, openTag, ind string, insideLine, squashSpaces bool) []string {
	var inner strings.Builder
	for _, c := range n.Children {
		if c.Kind == TextNode {
			text := c.Text
			if strings.Contains(text, "\n") {
				text = reNewlineAround.ReplaceAllString(text, " ")
			}
			inner.WriteString(text)
			continue
		}
		inner.WriteString(strings.Join(r.node(c, 0, true, true), ""))
	}
	text := inner.String()
	if squashSpaces {
		text = reSpaceRun.ReplaceAllString(text, " ")
	}
	text = strings.TrimSpace(text)

	if n.SelfClosing || len(n.Children) == 0 {
		if insideLine {
			return []string{"<" + openTag + "/>"}
		}
		return []string{ind + "<" + openTag + "/>"}
	}
	line := "<" + openTag + ">" + text + "</" + n.Tag + ">"
	if insideLine {
		return []string{line}
	}
	return []string{ind + line}
}

// lineBlock renders a lyric line or background wrapper: the element on its
// own line, every word span indented one level deeper, inter-word spacing
// reconciled into the spans themselves.
func (r *renderer) lineBlock(n *Node, openTag string, indent int, background bool) []string {
	if background {
		cleanDoubleParens(n)
	}

	merged := reconcileLineChildren(n.Children)

	ind := strings.Repeat(indentStep, indent)
	childInd := strings.Repeat(indentStep, indent+1)
	lines := []string{ind + "<" + openTag + ">"}
	for _, item := range merged {
		if item.Kind == TextNode {
			if len(strings.TrimSpace(item.Text)) != 0 {
				lines = append(lines, childInd+item.Text)
			}
			continue
		}
		itemBG := IsBackgroundWrapper(item, r.prefixed)
		parts := r.node(item, indent+1, !itemBG, false)
		if len(parts) > 1 {
			// nested background wrapper already carries its own indentation
			lines = append(lines, parts...)
		} else {
			lines = append(lines, childInd+strings.Join(parts, ""))
		}
	}
	return append(lines, ind+"</"+n.Tag+">")
}

// reconcileLineChildren prepares a line's children for block rendering:
// structural indentation runs are stripped, then loose text is folded into the
// adjacent span so inter-word spacing lives inside span text rather than
// between tags. A run is appended to the preceding span when one exists,
// otherwise prepended to the following span.
func reconcileLineChildren(children []*Node) []*Node {
	var clean []*Node
	for _, c := range children {
		if c.Kind != TextNode {
			clean = append(clean, c)
			continue
		}
		if strings.Contains(c.Text, "\n") {
			if text := strings.TrimSpace(c.Text); len(text) != 0 {
				clean = append(clean, NewText(text))
			}
			continue
		}
		if len(c.Text) != 0 {
			clean = append(clean, c)
		}
	}

	var merged []*Node
	pending := ""
	for _, c := range clean {
		if c.Kind == TextNode {
			if len(merged) != 0 && merged[len(merged)-1].Kind != TextNode {
				prev := merged[len(merged)-1]
				prev.Append(NewText(c.Text))
			} else {
				pending += c.Text
			}
			continue
		}
		if len(pending) != 0 {
			text := NewText(pending)
			text.Parent = c
			c.Children = append([]*Node{text}, c.Children...)
			pending = ""
		}
		merged = append(merged, c)
	}
	if len(pending) != 0 {
		if len(merged) != 0 && merged[len(merged)-1].Kind != TextNode {
			merged[len(merged)-1].Append(NewText(pending))
		} else {
			merged = append(merged, NewText(pending))
		}
	}
	return merged
}

// block renders a structural element with indented children.
func (r *renderer) block(n *Node, openTag string, indent int) []string {
	ind := strings.Repeat(indentStep, indent)
	childInd := strings.Repeat(indentStep, indent+1)
	lines := []string{ind + "<" + openTag + ">"}
	for _, c := range n.Children {
		if c.Kind == TextNode {
			text := strings.TrimSpace(c.Text)
			if strings.Contains(text, "\n") {
				text = reNewlineTrail.ReplaceAllString(text, " ")
			}
			if len(text) != 0 {
				lines = append(lines, childInd+text)
			}
			continue
		}
		lines = append(lines, r.node(c, indent+1, false, false)...)
	}
	return append(lines, ind+"</"+n.Tag+">")
}

// cleanDoubleParens collapses the doubled-parenthesis artifact in background
// vocal text, recursing through nested spans. Idempotent by construction.
func cleanDoubleParens(n *Node) {
	for _, c := range n.Children {
		if c.Kind == TextNode {
			c.Text = strings.ReplaceAll(c.Text, "((", "(")
			c.Text = strings.ReplaceAll(c.Text, "))", ")")
			continue
		}
		cleanDoubleParens(c)
	}
}

// formatAttrs renders attributes in canonical display order.
func formatAttrs(attrs []Attr) string {
	if len(attrs) == 0 {
		return ""
	}
	sorted := make([]Attr, len(attrs))
	copy(sorted, attrs)
	sort.SliceStable(sorted, func(i, j int) bool {
		pi, iKnown := attrOrder[sorted[i].Name]
		pj, jKnown := attrOrder[sorted[j].Name]
		switch {
		case iKnown && jKnown:
			if pi != pj {
				return pi < pj
			}
		case iKnown:
			return true
		case jKnown:
			return false
		}
		return sorted[i].Name < sorted[j].Name
	})

	parts := make([]string, 0, len(sorted))
	for _, a := range sorted {
		parts = append(parts, a.Name+`="`+a.Value+`"`)
	}
	return strings.Join(parts, " ")
}
