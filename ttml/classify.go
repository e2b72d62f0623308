package ttml

// Layout is the rendering mode assigned to a node by Classify. The renderer
// is the only consumer; keeping the decision in one place avoids scattering
// tag comparisons across the rendering recursion.
type Layout int

const (
	// LayoutBlock elements get their own line with children indented one
	// level deeper.
	LayoutBlock Layout = iota
	// LayoutInlineRun elements render as part of the surrounding text flow
	// with no injected whitespace.
	LayoutInlineRun
	// LayoutInlineCollapsed squashes the whole subtree onto a single line
	// with internal whitespace normalized.
	LayoutInlineCollapsed
)

// Structural tags get their own line with indented children. The document
// either uses the tt: prefix convention everywhere or nowhere; a single file
// never mixes both.
var structuralTags = map[string]bool{
	"tt": true, "head": true, "metadata": true, "body": true, "div": true, "p": true,
}

// Metadata section tags are structural regardless of prefix convention since
// they always carry their namespace prefix.
var headSectionTags = map[string]bool{
	"ttm:agent":             true,
	"ttm:name":              true,
	"itunes:iTunesMetadata": true,
	"itunes:translations":   true,
	"itunes:translation":    true,
	"itunes:text":           true,
	"itunes:songwriters":    true,
	"itunes:songwriter":     true,
}

// DetectPrefix reports whether the document uses the tt: namespace prefix on
// element tags. Detected once per document and threaded explicitly through
// classification and rendering.
func DetectPrefix(doc *Document) bool {
	found := false
	doc.Walk(func(n *Node) bool {
		if found {
			return false
		}
		if n.Kind == ElementNode && len(n.Tag) > 3 && n.Tag[:3] == "tt:" {
			found = true
			return false
		}
		return true
	})
	return found
}

// Tag names for the line and word-span elements under the active prefix
// convention.
func lineTag(prefixed bool) string {
	if prefixed {
		return "tt:p"
	}
	return "p"
}

func spanTag(prefixed bool) string {
	if prefixed {
		return "tt:span"
	}
	return "span"
}

// IsLine reports whether n is a lyric line element.
func IsLine(n *Node, prefixed bool) bool {
	return n.Kind == ElementNode && n.Tag == lineTag(prefixed)
}

// IsBackgroundWrapper reports whether n is a word-span element grouping
// background vocals. Background wrappers render as their own indented block
// even though they sit inside a line.
func IsBackgroundWrapper(n *Node, prefixed bool) bool {
	return n.Kind == ElementNode && n.Tag == spanTag(prefixed) && n.HasAttributeValue("ttm:role", "x-bg")
}

// isStructural reports whether the tag gets block layout.
func isStructural(tag string, prefixed bool) bool {
	if headSectionTags[tag] {
		return true
	}
	if prefixed {
		if len(tag) > 3 && tag[:3] == "tt:" {
			return structuralTags[tag[3:]]
		}
		return false
	}
	return structuralTags[tag]
}

// Classify decides the rendering mode of an element under the document's
// prefix convention. Text and processing instruction nodes are not
// classified; the renderer handles them positionally.
func Classify(n *Node, prefixed bool) Layout {
	if n.Kind != ElementNode {
		return LayoutInlineRun
	}
	switch {
	case IsBackgroundWrapper(n, prefixed):
		// block-like relative to its siblings even inside a line
		return LayoutBlock
	case n.Tag == spanTag(prefixed):
		return LayoutInlineRun
	case n.Tag == "itunes:text", !IsLine(n, prefixed) && textOnly(n):
		// free-text containers collapse onto one line whatever their tag
		return LayoutInlineCollapsed
	case IsLine(n, prefixed), isStructural(n.Tag, prefixed):
		return LayoutBlock
	}
	// unknown containers degrade gracefully to indented blocks
	return LayoutBlock
}

func textOnly(n *Node) bool {
	for _, c := range n.Children {
		if c.Kind != TextNode {
			return false
		}
	}
	return true
}
