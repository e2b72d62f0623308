// Package process drives linting and formatting of TTML files: single file or
// batch, report/check/fix modes, strict well-formedness checks and warning
// collection.
package process

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/maruel/natural"

	"ttc/ttml"
)

// Result holds everything the batch driver needs to know about one processed
// file. Original is the newline-normalized source, Canonical the formatter
// output.
type Result struct {
	Path      string
	Original  string
	Canonical string
	Changed   bool
	Warnings  []string
	StrictErr error // set in strict mode when the file is not well-formed XML
}

// File reads, formats and lints a single document. Nothing is written back;
// use Apply for that.
func File(path string, strict bool) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read file: %w", err)
	}

	original := normalizeNewlines(string(data))
	res := &Result{
		Path:      path,
		Original:  original,
		Canonical: ttml.Format(original),
		Warnings:  ttml.Lint(ttml.Parse(original)),
	}
	res.Changed = res.Original != res.Canonical
	if strict {
		res.StrictErr = ttml.CheckWellFormed(original)
	}
	return res, nil
}

// Failed reports whether the file counts against check mode.
func (r *Result) Failed() bool {
	return r.Changed || r.StrictErr != nil
}

// Apply atomically replaces the file with its canonical form. The content is
// fully written to a temporary file in the same directory and renamed over
// the original, so a failure never leaves partial output behind.
func (r *Result) Apply() error {
	dir := filepath.Dir(r.Path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(r.Path)+".*")
	if err != nil {
		return fmt.Errorf("unable to create temporary file: %w", err)
	}
	name := tmp.Name()
	if _, err = tmp.WriteString(r.Canonical); err == nil {
		err = tmp.Close()
	} else {
		tmp.Close()
	}
	if err != nil {
		os.Remove(name)
		return fmt.Errorf("unable to write temporary file: %w", err)
	}
	if err := os.Rename(name, r.Path); err != nil {
		os.Remove(name)
		return fmt.Errorf("unable to replace %s: %w", r.Path, err)
	}
	return nil
}

// Discover returns all files under root carrying the configured extension, in
// natural sort order. The suffix match is case-sensitive.
func Discover(root, ext string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// unreadable entries are skipped, not fatal
			return nil
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ext) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Sort(natural.StringSlice(files))
	return files, nil
}

// normalizeNewlines maps CRLF and bare CR line endings to LF so comparison
// against canonical output is not defeated by line ending conventions.
func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
