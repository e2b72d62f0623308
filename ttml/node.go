// Package ttml implements a layout-preserving parser, canonical formatter and
// structural linter for TTML lyrics documents.
//
// The parser is deliberately not a general purpose XML processor: it keeps
// text content, attribute values and attribute order exactly as they appear in
// the source, performs no entity expansion and tolerates malformed input the
// way hand-edited lyric files require. Comments are dropped on parse and do
// not survive formatting.
package ttml

import "strings"

// NodeKind discriminates parsed constructs.
type NodeKind int

const (
	ElementNode NodeKind = iota
	TextNode
	ProcInstNode
)

// Attr is a single attribute as encountered in the source. Duplicates are not
// merged and the original order is kept.
type Attr struct {
	Name  string
	Value string
}

// Node is one parsed construct. For elements Tag keeps any namespace prefix
// verbatim ("tt:p" and "p" are different tags). Parent is a non-owning back
// reference used only for contextual decisions during classification.
type Node struct {
	Kind        NodeKind
	Tag         string // element tag or processing instruction target
	Attrs       []Attr
	Children    []*Node
	SelfClosing bool
	Text        string // TextNode content, verbatim
	Parent      *Node
}

// Document is an ordered sequence of top-level nodes, normally an optional
// XML declaration followed by a single root element.
type Document struct {
	Nodes []*Node
}

// NewElement creates a detached element node.
func NewElement(tag string, attrs ...Attr) *Node {
	return &Node{Kind: ElementNode, Tag: tag, Attrs: attrs}
}

// NewText creates a detached text node.
func NewText(text string) *Node {
	return &Node{Kind: TextNode, Text: text}
}

// Append attaches children to n in order, fixing up parent references.
func (n *Node) Append(children ...*Node) *Node {
	for _, c := range children {
		c.Parent = n
		n.Children = append(n.Children, c)
	}
	return n
}

// Attribute returns the value of the first attribute with the given name.
func (n *Node) Attribute(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// AttributeValue is like Attribute but returns an empty string when the
// attribute is missing.
func (n *Node) AttributeValue(name string) string {
	v, _ := n.Attribute(name)
	return v
}

// SetAttribute replaces the value of an existing attribute or appends a new
// one, keeping encounter order stable.
func (n *Node) SetAttribute(name, value string) {
	for i := range n.Attrs {
		if n.Attrs[i].Name == name {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
}

// HasAttributeValue reports whether any attribute carries the given
// name/value pair.
func (n *Node) HasAttributeValue(name, value string) bool {
	for _, a := range n.Attrs {
		if a.Name == name && a.Value == value {
			return true
		}
	}
	return false
}

// InnerText concatenates direct text children, verbatim.
func (n *Node) InnerText() string {
	var sb strings.Builder
	for _, c := range n.Children {
		if c.Kind == TextNode {
			sb.WriteString(c.Text)
		}
	}
	return sb.String()
}

// Clone produces a deep copy of the node with parent references rebuilt. The
// formatter renders working copies so that parse results stay immutable.
func (n *Node) Clone() *Node {
	cp := &Node{
		Kind:        n.Kind,
		Tag:         n.Tag,
		SelfClosing: n.SelfClosing,
		Text:        n.Text,
	}
	if len(n.Attrs) != 0 {
		cp.Attrs = make([]Attr, len(n.Attrs))
		copy(cp.Attrs, n.Attrs)
	}
	for _, c := range n.Children {
		cc := c.Clone()
		cc.Parent = cp
		cp.Children = append(cp.Children, cc)
	}
	return cp
}

// Clone deep-copies the whole document.
func (d *Document) Clone() *Document {
	cp := &Document{}
	for _, n := range d.Nodes {
		cp.Nodes = append(cp.Nodes, n.Clone())
	}
	return cp
}

// Root returns the first top-level element, or nil for degenerate documents.
func (d *Document) Root() *Node {
	for _, n := range d.Nodes {
		if n.Kind == ElementNode {
			return n
		}
	}
	return nil
}

// Walk visits every node in document order, elements before their children.
// Returning false from fn stops descent into the current subtree.
func (d *Document) Walk(fn func(*Node) bool) {
	var walk func(*Node)
	walk = func(n *Node) {
		if !fn(n) {
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, n := range d.Nodes {
		walk(n)
	}
}
