package elrc

import (
	"fmt"

	"ttc/ttml"
)

// Document assembles a TTML tree from the parsed song. Lines without words
// are skipped but still count for itunes:key numbering, matching the way
// line indices are assigned on import.
func (s *Song) Document() *ttml.Document {
	tt := ttml.NewElement("tt")
	tt.SetAttribute("xmlns", "http://www.w3.org/ns/ttml")
	tt.SetAttribute("xmlns:ttm", "http://www.w3.org/ns/ttml#metadata")
	tt.SetAttribute("xmlns:amll", "http://www.example.com/ns/amll")
	tt.SetAttribute("xmlns:itunes", "http://music.apple.com/lyric-ttml-internal")

	head := ttml.NewElement("head")
	meta := ttml.NewElement("metadata")
	for _, id := range []string{"v1", "v2"} {
		agent := ttml.NewElement("ttm:agent")
		agent.SetAttribute("type", "person")
		agent.SetAttribute("xml:id", id)
		agent.SelfClosing = true
		meta.Append(agent)
	}
	head.Append(meta)
	tt.Append(head)

	var firstStart, lastEnd float64
	if len(s.Lines) != 0 {
		firstStart = s.Lines[0].Start
		if words := s.Lines[len(s.Lines)-1].Words; len(words) != 0 {
			lastEnd = words[len(words)-1].End
		}
	}

	body := ttml.NewElement("body")
	body.SetAttribute("dur", ttml.FormatTimestamp(lastEnd))
	div := ttml.NewElement("div")
	div.SetAttribute("begin", ttml.FormatTimestamp(firstStart))
	div.SetAttribute("end", ttml.FormatTimestamp(lastEnd))

	for i, line := range s.Lines {
		if len(line.Words) == 0 {
			continue
		}
		p := ttml.NewElement("p")
		p.SetAttribute("begin", ttml.FormatTimestamp(line.Words[0].Start))
		p.SetAttribute("end", ttml.FormatTimestamp(line.Words[len(line.Words)-1].End))
		p.SetAttribute("itunes:key", fmt.Sprintf("L%d", i+1))
		if len(line.Agent) != 0 {
			p.SetAttribute("ttm:agent", line.Agent)
		}
		if len(line.Role) != 0 {
			p.SetAttribute("ttm:role", line.Role)
		}
		for _, word := range line.Words {
			span := ttml.NewElement("span")
			span.SetAttribute("begin", ttml.FormatTimestamp(word.Start))
			span.SetAttribute("end", ttml.FormatTimestamp(word.End))
			span.Append(ttml.NewText(word.Text))
			p.Append(span)
		}
		div.Append(p)
	}
	body.Append(div)
	tt.Append(body)

	return &ttml.Document{Nodes: []*ttml.Node{tt}}
}
