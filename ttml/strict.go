package ttml

import "github.com/beevik/etree"

// CheckWellFormed runs content through a strict XML parser and reports the
// first syntax error. The tolerant Parse never fails by design; callers that
// want hard failures on malformed input opt into this check instead.
func CheckWellFormed(content string) error {
	doc := etree.NewDocument()
	return doc.ReadFromString(content)
}
