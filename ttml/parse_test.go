package ttml

import (
	"testing"
)

func TestParse_PreservesTextAndAttributes(t *testing.T) {
	doc := Parse(`<p begin="00:01.000" end="00:02.000" itunes:key="L1">Tak  ada &amp; lagi</p>`)

	if len(doc.Nodes) != 1 {
		t.Fatalf("Parse() top-level nodes = %d, want 1", len(doc.Nodes))
	}
	p := doc.Nodes[0]
	if p.Kind != ElementNode || p.Tag != "p" {
		t.Fatalf("Root node = %v %q, want element p", p.Kind, p.Tag)
	}

	// attribute encounter order is kept verbatim
	wantAttrs := []Attr{
		{"begin", "00:01.000"},
		{"end", "00:02.000"},
		{"itunes:key", "L1"},
	}
	if len(p.Attrs) != len(wantAttrs) {
		t.Fatalf("Attrs = %v, want %v", p.Attrs, wantAttrs)
	}
	for i, want := range wantAttrs {
		if p.Attrs[i] != want {
			t.Errorf("Attrs[%d] = %v, want %v", i, p.Attrs[i], want)
		}
	}

	// text kept verbatim: internal double space and undecoded entity
	if got := p.InnerText(); got != "Tak  ada &amp; lagi" {
		t.Errorf("InnerText() = %q, entities or spacing were altered", got)
	}
}

func TestParse_SingleQuotedAttributes(t *testing.T) {
	doc := Parse(`<span begin='00:01.000' end="00:02.000">hi</span>`)
	span := doc.Nodes[0]
	if got := span.AttributeValue("begin"); got != "00:01.000" {
		t.Errorf("single-quoted begin = %q", got)
	}
	if got := span.AttributeValue("end"); got != "00:02.000" {
		t.Errorf("double-quoted end = %q", got)
	}
}

func TestParse_QuotedGreaterThan(t *testing.T) {
	doc := Parse(`<span data-note="a > b">x</span>`)
	span := doc.Nodes[0]
	if got := span.AttributeValue("data-note"); got != "a > b" {
		t.Errorf("attribute with quoted '>' = %q, want \"a > b\"", got)
	}
	if got := span.InnerText(); got != "x" {
		t.Errorf("InnerText() = %q, want x", got)
	}
}

func TestParse_CommentsDropped(t *testing.T) {
	doc := Parse("<p><!-- note --><span>a</span></p>")
	p := doc.Nodes[0]
	if len(p.Children) != 1 || p.Children[0].Tag != "span" {
		t.Errorf("comment was not dropped: children = %d", len(p.Children))
	}
}

func TestParse_Declaration(t *testing.T) {
	doc := Parse("<?xml version=\"1.0\" encoding=\"utf-8\"?>\n<tt></tt>")
	if len(doc.Nodes) != 2 {
		t.Fatalf("top-level nodes = %d, want 2", len(doc.Nodes))
	}
	if doc.Nodes[0].Kind != ProcInstNode || doc.Nodes[0].Tag != "xml" {
		t.Errorf("first node = %v %q, want xml declaration", doc.Nodes[0].Kind, doc.Nodes[0].Tag)
	}
	if root := doc.Root(); root == nil || root.Tag != "tt" {
		t.Errorf("Root() did not skip the declaration")
	}
}

func TestParse_MismatchedCloseTag(t *testing.T) {
	// a wrong closing tag pops the open element silently
	doc := Parse("<div><p>text</span><p>more</p></div>")
	div := doc.Nodes[0]
	if div.Tag != "div" || len(div.Children) != 2 {
		t.Fatalf("tolerant close handling failed: %+v", div)
	}
	if div.Children[0].InnerText() != "text" || div.Children[1].InnerText() != "more" {
		t.Error("element content lost on mismatched close")
	}
}

func TestParse_UnterminatedTag(t *testing.T) {
	doc := Parse(`<div><p>kept</p><span begin="00:01.000`)
	div := doc.Nodes[0]
	if len(div.Children) != 1 || div.Children[0].InnerText() != "kept" {
		t.Error("partial result lost on unterminated tag")
	}
}

func TestParse_SelfClosing(t *testing.T) {
	doc := Parse(`<metadata><ttm:agent type="person" xml:id="v1"/></metadata>`)
	agent := doc.Nodes[0].Children[0]
	if !agent.SelfClosing || agent.Tag != "ttm:agent" {
		t.Errorf("self-closing element not recognized: %+v", agent)
	}
	if got := agent.AttributeValue("xml:id"); got != "v1" {
		t.Errorf("xml:id = %q, want v1", got)
	}
}

func TestParse_TopLevelWhitespaceDropped(t *testing.T) {
	doc := Parse("\n\n<tt></tt>\n")
	if len(doc.Nodes) != 1 {
		t.Errorf("top-level whitespace kept: %d nodes", len(doc.Nodes))
	}
}

func TestParse_ParentLinks(t *testing.T) {
	doc := Parse("<p><span>a</span></p>")
	span := doc.Nodes[0].Children[0]
	if span.Parent == nil || span.Parent.Tag != "p" {
		t.Error("parent reference not set")
	}
}

func TestClone_Independent(t *testing.T) {
	doc := Parse(`<p begin="00:01.000"><span>a</span></p>`)
	cp := doc.Clone()
	cp.Nodes[0].SetAttribute("begin", "00:09.000")
	cp.Nodes[0].Children[0].Children[0].Text = "b"

	if got := doc.Nodes[0].AttributeValue("begin"); got != "00:01.000" {
		t.Errorf("Clone() shares attributes: %q", got)
	}
	if got := doc.Nodes[0].Children[0].InnerText(); got != "a" {
		t.Errorf("Clone() shares text: %q", got)
	}
	if cp.Nodes[0].Children[0].Parent != cp.Nodes[0] {
		t.Error("Clone() parent references not rebuilt")
	}
}
