package roman

import (
	"strings"
	"testing"

	"ttc/ttml"
)

const koreanDoc = `<tt><body><div>
<p begin="00:01.000" end="00:03.000" itunes:key="L1">
  <span begin="00:01.000" end="00:02.000">사랑 </span>
  <span begin="00:02.000" end="00:03.000">해요</span>
</p>
<p begin="00:03.000" end="00:04.000" itunes:key="L2">
  <span begin="00:03.000" end="00:04.000">english</span>
</p>
</div></body></tt>
`

func TestAnnotate_KoreanSpans(t *testing.T) {
	doc := ttml.Parse(koreanDoc)
	added := Annotate(doc, false)

	// two spans plus one line attribute
	if added != 3 {
		t.Errorf("Annotate() = %d annotations, want 3", added)
	}

	var lines []*ttml.Node
	doc.Walk(func(n *ttml.Node) bool {
		if n.Tag == "p" {
			lines = append(lines, n)
		}
		return true
	})

	l1 := lines[0]
	span1 := firstSpan(l1)
	if got := span1.AttributeValue("x-roman"); got != "sarang" {
		t.Errorf("span x-roman = %q, want sarang", got)
	}
	if got := span1.InnerText(); got != "사랑 " {
		t.Errorf("span text altered: %q", got)
	}
	if got := l1.AttributeValue("x-roman"); got != "sarang haeyo" {
		t.Errorf("line x-roman = %q, want \"sarang haeyo\"", got)
	}

	// the plain line stays untouched
	l2 := lines[1]
	if _, ok := l2.Attribute("x-roman"); ok {
		t.Error("non-Korean line annotated without fallback")
	}
	if _, ok := firstSpan(l2).Attribute("x-roman"); ok {
		t.Error("non-Korean span annotated without fallback")
	}
}

func TestAnnotate_ExistingValuesKept(t *testing.T) {
	doc := ttml.Parse(`<p itunes:key="L1"><span x-roman="custom" begin="00:01.000" end="00:02.000">사랑</span></p>`)
	added := Annotate(doc, false)

	span := firstSpan(doc.Nodes[0])
	if got := span.AttributeValue("x-roman"); got != "custom" {
		t.Errorf("existing span x-roman overwritten: %q", got)
	}
	// only the line attribute is new
	if added != 1 {
		t.Errorf("Annotate() = %d, want 1", added)
	}
	if got := doc.Nodes[0].AttributeValue("x-roman"); got != "custom" {
		t.Errorf("line x-roman = %q, want custom", got)
	}
}

func TestAnnotate_Idempotent(t *testing.T) {
	doc := ttml.Parse(koreanDoc)
	Annotate(doc, false)
	if again := Annotate(doc, false); again != 0 {
		t.Errorf("second Annotate() added %d annotations, want 0", again)
	}
}

func TestAnnotate_Fallback(t *testing.T) {
	doc := ttml.Parse(`<p itunes:key="L1"><span begin="00:01.000" end="00:02.000">Привет</span></p>`)

	if added := Annotate(doc.Clone(), false); added != 0 {
		t.Errorf("non-Korean annotated without fallback: %d", added)
	}

	added := Annotate(doc, true)
	if added != 2 {
		t.Errorf("Annotate(fallback) = %d, want span and line", added)
	}
	span := firstSpan(doc.Nodes[0])
	if got := span.AttributeValue("x-roman"); len(got) == 0 || strings.ContainsAny(got, "Привет") {
		t.Errorf("fallback x-roman = %q", got)
	}
}

func firstSpan(p *ttml.Node) *ttml.Node {
	for _, c := range p.Children {
		if c.Kind == ttml.ElementNode && strings.HasSuffix(c.Tag, "span") {
			return c
		}
	}
	return nil
}
