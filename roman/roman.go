// Package roman adds Latin transliterations to TTML lyrics as x-roman
// attributes. Korean is transliterated with Revised Romanization tables;
// other scripts can optionally fall back to a generic ASCII approximation.
package roman

import (
	"strings"

	"github.com/gosimple/unidecode"
)

// Revised Romanization jamo tables. A precomposed syllable U+AC00..U+D7A3
// decomposes into initial, medial and optional final jamo.
var (
	initials = [19]string{
		"g", "kk", "n", "d", "tt", "r", "m", "b", "pp", "s",
		"ss", "", "j", "jj", "ch", "k", "t", "p", "h",
	}
	medials = [21]string{
		"a", "ae", "ya", "yae", "eo", "e", "yeo", "ye", "o", "wa",
		"wae", "oe", "yo", "u", "wo", "we", "wi", "yu", "eu", "ui", "i",
	}
	finals = [28]string{
		"", "k", "k", "k", "n", "n", "n", "t", "l", "k",
		"m", "p", "l", "l", "p", "l", "m", "p", "p", "t",
		"t", "ng", "t", "t", "k", "t", "p", "t",
	}
)

const (
	hangulBase = 0xAC00
	hangulLast = 0xD7A3
)

// HasHangul reports whether the text contains at least one precomposed
// Hangul syllable.
func HasHangul(s string) bool {
	for _, r := range s {
		if r >= hangulBase && r <= hangulLast {
			return true
		}
	}
	return false
}

// Romanize transliterates Korean text. Non-Hangul runes pass through
// unchanged. Text without any Hangul returns empty, so callers can tell
// "nothing to do" from a real transliteration.
func Romanize(text string) string {
	if len(strings.TrimSpace(text)) == 0 || !HasHangul(text) {
		return ""
	}
	var sb strings.Builder
	for _, r := range text {
		if r < hangulBase || r > hangulLast {
			sb.WriteRune(r)
			continue
		}
		idx := int(r - hangulBase)
		initial := idx / (21 * 28)
		medial := (idx % (21 * 28)) / 28
		final := idx % 28
		sb.WriteString(initials[initial])
		sb.WriteString(medials[medial])
		sb.WriteString(finals[final])
	}
	return sb.String()
}

// Transliterate is the generic fallback for non-Korean scripts: an ASCII
// approximation of the input, empty when nothing changes or nothing is left.
func Transliterate(text string) string {
	out := strings.TrimSpace(unidecode.Unidecode(text))
	if len(out) == 0 || out == strings.TrimSpace(text) {
		return ""
	}
	return out
}
