// Package export converts TTML lyrics documents into a structured JSON form
// consumable by players and web frontends.
package export

import (
	"path/filepath"
	"strings"

	"ttc/ttml"
)

// Word is one timed token. Spacing flags preserve enough of the source layout
// to rejoin tokens without guessing: "fan"+"ta" stays "fanta" while
// "Tak"+"ada" becomes "Tak ada".
type Word struct {
	Text             string  `json:"text"`
	Begin            float64 `json:"begin"`
	End              float64 `json:"end"`
	IsBackground     bool    `json:"isBackground"`
	IsTranslation    bool    `json:"isTranslation"`
	HasLeadingSpace  bool    `json:"hasLeadingSpace"`
	HasTrailingSpace bool    `json:"hasTrailingSpace"`
	HasSpaceAfter    bool    `json:"hasSpaceAfter"`
}

// BackgroundVocal groups the background words of a line.
type BackgroundVocal struct {
	Text  string  `json:"text"`
	Words []*Word `json:"words"`
}

// Line is one lyric line with timing, joined text and per-word detail.
type Line struct {
	Begin           float64          `json:"begin"`
	End             float64          `json:"end"`
	Text            string           `json:"text"`
	Words           []*Word          `json:"words"`
	Agent           string           `json:"agent,omitempty"`
	Key             string           `json:"key,omitempty"`
	BackgroundVocal *BackgroundVocal `json:"backgroundVocal,omitempty"`
	Translation     string           `json:"translation,omitempty"`
}

// Agent mirrors a ttm:agent declaration from the document head.
type Agent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// Metadata combines head declarations with facts recovered from the file
// name, which by convention is "Artist - Title.ttml".
type Metadata struct {
	Agents     []Agent `json:"agents,omitempty"`
	Artist     string  `json:"artist,omitempty"`
	Title      string  `json:"title"`
	SourceFile string  `json:"sourceFile"`
}

// Song is the complete JSON payload for one document.
type Song struct {
	Metadata   Metadata `json:"metadata"`
	Duration   *float64 `json:"duration"`
	Lines      []*Line  `json:"lines"`
	TotalLines int      `json:"totalLines"`
}

// FromDocument builds the JSON payload. path is used only for the file name
// derived metadata and may be relative.
func FromDocument(doc *ttml.Document, path string) *Song {
	prefixed := ttml.DetectPrefix(doc)
	song := &Song{Lines: []*Line{}}

	root := doc.Root()
	if root != nil {
		if head := childElement(root, "head", prefixed); head != nil {
			if meta := childElement(head, "metadata", prefixed); meta != nil {
				for _, c := range meta.Children {
					if c.Kind == ttml.ElementNode && c.Tag == "ttm:agent" {
						song.Metadata.Agents = append(song.Metadata.Agents, Agent{
							ID:   c.AttributeValue("xml:id"),
							Type: c.AttributeValue("type"),
						})
					}
				}
			}
		}
		if body := childElement(root, "body", prefixed); body != nil {
			if dur, ok := body.Attribute("dur"); ok {
				if sec, ok := ttml.ParseTimestamp(dur); ok {
					song.Duration = &sec
				}
			}
			for _, div := range body.Children {
				if div.Kind != ttml.ElementNode || !tagIs(div.Tag, "div", prefixed) {
					continue
				}
				for _, p := range div.Children {
					if p.Kind == ttml.ElementNode && ttml.IsLine(p, prefixed) {
						song.Lines = append(song.Lines, exportLine(p, prefixed))
					}
				}
			}
		}
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if artist, title, found := strings.Cut(stem, " - "); found {
		song.Metadata.Artist = artist
		song.Metadata.Title = title
	} else {
		song.Metadata.Title = stem
	}
	song.Metadata.SourceFile = filepath.Base(path)
	song.TotalLines = len(song.Lines)
	return song
}

func exportLine(p *ttml.Node, prefixed bool) *Line {
	line := &Line{Words: []*Word{}}
	line.Begin, _ = ttml.ParseTimestamp(p.AttributeValue("begin"))
	line.End, _ = ttml.ParseTimestamp(p.AttributeValue("end"))
	line.Agent = p.AttributeValue("ttm:agent")
	line.Key = p.AttributeValue("itunes:key")

	var background []*Word
	var translations []string

	var collect func(parent *ttml.Node, words *[]*Word, isBG bool)
	collect = func(parent *ttml.Node, words *[]*Word, isBG bool) {
		for _, c := range parent.Children {
			switch {
			case c.Kind == ttml.TextNode:
				// plain inter-span whitespace separates the surrounding
				// words; runs containing a newline are canonical layout
				// indentation, not spacing
				if len(*words) != 0 && len(c.Text) != 0 &&
					len(strings.TrimSpace(c.Text)) == 0 && !strings.Contains(c.Text, "\n") {
					(*words)[len(*words)-1].HasSpaceAfter = true
				}
			case c.Kind == ttml.ElementNode && tagIs(c.Tag, "span", prefixed):
				switch c.AttributeValue("ttm:role") {
				case "x-bg":
					collect(c, &background, true)
				case "x-translation":
					if t := strings.TrimSpace(c.InnerText()); len(t) != 0 {
						translations = append(translations, t)
					}
				default:
					raw := c.InnerText()
					if len(*words) != 0 && startsWithSpace(raw) {
						(*words)[len(*words)-1].HasSpaceAfter = true
					}
					word := &Word{
						Text:         strings.TrimSpace(raw),
						IsBackground: isBG,
					}
					word.Begin, _ = ttml.ParseTimestamp(c.AttributeValue("begin"))
					word.End, _ = ttml.ParseTimestamp(c.AttributeValue("end"))
					if len(raw) != 0 {
						word.HasLeadingSpace = startsWithSpace(raw)
						word.HasTrailingSpace = endsWithSpace(raw)
					}
					word.HasSpaceAfter = word.HasTrailingSpace
					if len(word.Text) != 0 {
						*words = append(*words, word)
					}
				}
			}
		}
	}
	collect(p, &line.Words, false)

	line.Text = joinWords(line.Words)
	if len(background) != 0 {
		line.BackgroundVocal = &BackgroundVocal{Text: joinWords(background), Words: background}
	}
	if len(translations) != 0 {
		line.Translation = strings.Join(translations, " ")
	}
	return line
}

// joinWords reassembles the line text, inserting a space only where the
// source layout indicates a word boundary.
func joinWords(words []*Word) string {
	var sb strings.Builder
	for i, w := range words {
		if i != 0 && (words[i-1].HasSpaceAfter || w.HasLeadingSpace) {
			sb.WriteString(" ")
		}
		sb.WriteString(w.Text)
	}
	return sb.String()
}

func startsWithSpace(s string) bool {
	return len(s) != 0 && (s[0] == ' ' || s[0] == '\t' || s[0] == '\n')
}

func endsWithSpace(s string) bool {
	return len(s) != 0 && strings.TrimRight(s, " \t\n\r") != s
}

func tagIs(tag, name string, prefixed bool) bool {
	if prefixed {
		return tag == "tt:"+name
	}
	return tag == name
}

func childElement(n *ttml.Node, name string, prefixed bool) *ttml.Node {
	for _, c := range n.Children {
		if c.Kind == ttml.ElementNode && tagIs(c.Tag, name, prefixed) {
			return c
		}
	}
	return nil
}
