// Package catalog builds the index.json manifest over a tree of TTML lyric
// files, one entry per file with artist, title and language facts recovered
// from the layout convention "<Lang>/<Artist> - <Title>.ttml".
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gosimple/slug"
	"golang.org/x/text/language"

	"ttc/process"
)

// IndexFile is the manifest name written at the tree root.
const IndexFile = "index.json"

// Entry describes one catalogued lyric file.
type Entry struct {
	ID     string `json:"id"`
	Artist string `json:"artist"`
	Title  string `json:"title"`
	Lang   string `json:"lang"`
	Path   string `json:"path"`
}

// Build scans root for lyric files and assembles sorted index entries. Files
// directly at the root have no language folder and are skipped, matching the
// tree convention. Unrecognized folder names are still catalogued, the
// returned warnings name them.
func Build(root, ext string) ([]Entry, []string, error) {
	files, err := process.Discover(root, ext)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to scan %s: %w", root, err)
	}

	var entries []Entry
	var warnings []string
	badLangs := map[string]bool{}

	for _, path := range files {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil, nil, err
		}
		dir := filepath.Dir(rel)
		if dir == "." {
			continue
		}
		lang := filepath.Base(dir)
		if _, err := language.Parse(lang); err != nil && !badLangs[lang] {
			badLangs[lang] = true
			warnings = append(warnings, fmt.Sprintf("folder %q is not a recognizable language tag", lang))
		}

		stem := strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel))
		entry := Entry{Lang: lang, Path: filepath.ToSlash(rel), Title: stem}
		if artist, title, found := strings.Cut(stem, " - "); found {
			entry.Artist = artist
			entry.Title = title
		}
		entry.ID = slug.Make(fmt.Sprintf("%s %s", entry.Artist, entry.Title))
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		ai, aj := strings.ToLower(entries[i].Artist), strings.ToLower(entries[j].Artist)
		if ai != aj {
			return ai < aj
		}
		return strings.ToLower(entries[i].Title) < strings.ToLower(entries[j].Title)
	})
	return entries, warnings, nil
}

// Encode serializes index entries the way the manifest is stored on disk.
func Encode(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return nil, fmt.Errorf("unable to serialize index: %w", err)
	}
	return buf.Bytes(), nil
}
