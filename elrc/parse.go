// Package elrc imports line- and word-timed lyric text (ELRC) and turns it
// into canonical TTML documents.
package elrc

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"ttc/ttml"
)

// The ELRC notation is line oriented:
//
//	[ar:Artist]             metadata tags: ar, ti, offset, by
//	[00:12.340]<00:12.340>Tak <00:12.800>ada        main line, word timed
//	[00:15.000]v2:<00:15.000>word                   explicit voice
//	[bg:<00:16.000>(echo)]                          background vocal line
//
// Word end times are not written down: each word ends where the next one
// starts, the last word of a line ends where the next main line starts.

var (
	metaPattern = regexp.MustCompile(`^\[(ar|ti|offset|by):(.*)\]`)
	linePattern = regexp.MustCompile(`^\[(\d{2}:\d{2}\.\d{3})\](v1:|v2:|bg:)?(.*)`)
	bgPattern   = regexp.MustCompile(`^\[bg:(.*)\]`)
	wordPattern = regexp.MustCompile(`<(\d{2}:\d{2}\.\d{3})>([^<]*)`)
)

// Word is one timed token, text kept verbatim including any trailing space.
type Word struct {
	Text  string
	Start float64
	End   float64
}

// Line is one lyric line with its voice assignment. Role is "x-bg" for
// background vocal lines, Agent is "v1" or "v2" for main lines.
type Line struct {
	Start float64
	Agent string
	Role  string
	Words []Word
}

// Song is the parsed ELRC input.
type Song struct {
	Metadata map[string]string
	Lines    []Line
}

// Artist returns the ar metadata tag, with a stand-in when absent.
func (s *Song) Artist() string {
	if v, ok := s.Metadata["ar"]; ok && len(v) != 0 {
		return v
	}
	return "Unknown Artist"
}

// Title returns the ti metadata tag, with a stand-in when absent.
func (s *Song) Title() string {
	if v, ok := s.Metadata["ti"]; ok && len(v) != 0 {
		return v
	}
	return "Unknown Title"
}

// Parse reads ELRC text. lastWordPadding is the duration granted to a final
// word that has no following main line to borrow an end time from.
func Parse(r io.Reader, lastWordPadding float64) (*Song, error) {
	song := &Song{Metadata: make(map[string]string)}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if m := metaPattern.FindStringSubmatch(text); m != nil {
			song.Metadata[m[1]] = strings.TrimSpace(m[2])
			continue
		}

		var line Line
		var content string
		switch {
		case linePattern.MatchString(text):
			m := linePattern.FindStringSubmatch(text)
			line.Start, _ = ttml.ParseTimestamp(m[1])
			content = m[3]
			switch m[2] {
			case "v2:":
				line.Agent = "v2"
			case "bg:":
				line.Role = "x-bg"
			default:
				line.Agent = "v1"
			}
		case bgPattern.MatchString(text):
			content = bgPattern.FindStringSubmatch(text)[1]
			line.Role = "x-bg"
		default:
			continue
		}

		for _, wm := range wordPattern.FindAllStringSubmatch(content, -1) {
			start, ok := ttml.ParseTimestamp(wm[1])
			if !ok {
				return nil, fmt.Errorf("bad word timestamp %q", wm[1])
			}
			line.Words = append(line.Words, Word{Text: wm[2], Start: start})
		}
		// background lines carry no line timestamp of their own
		if line.Start == 0 && len(line.Words) != 0 {
			line.Start = line.Words[0].Start
		}
		song.Lines = append(song.Lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("unable to read input: %w", err)
	}

	song.resolveWordEnds(lastWordPadding)
	return song, nil
}

// resolveWordEnds assigns end times: words end at the next word of the same
// line, last words at the start of the next main (non-background) line, and
// the very last word gets the configured padding.
func (s *Song) resolveWordEnds(padding float64) {
	for i := range s.Lines {
		words := s.Lines[i].Words
		if len(words) == 0 {
			continue
		}
		for j := 0; j < len(words)-1; j++ {
			words[j].End = words[j+1].Start
		}

		last := &words[len(words)-1]
		last.End = last.Start + padding
		for k := i + 1; k < len(s.Lines); k++ {
			if s.Lines[k].Role == "x-bg" {
				continue
			}
			if s.Lines[k].Start > last.Start {
				last.End = s.Lines[k].Start
			}
			break
		}
	}
}
