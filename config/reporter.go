package config

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"ttc/misc"
)

type ReporterConfig struct {
	Destination string `yaml:"destination" sanitize:"path_clean,assure_dir_exists_for_file" validate:"required,filepath"`
}

// Prepare creates an empty report backed by the configured destination. When
// the destination cannot be created the report is redirected to a temporary
// file rather than lost.
func (conf *ReporterConfig) Prepare() (*Report, error) {
	r := &Report{items: make(map[string]item)}

	f, err := os.Create(conf.Destination)
	if err != nil {
		if f, err = os.CreateTemp("", misc.GetAppName()+"-report.*.zip"); err != nil {
			return nil, fmt.Errorf("unable to create report: %w", err)
		}
	}
	r.file = f
	return r, nil
}

// item is a single future archive member: either captured bytes or a path to
// pick up during finalization.
type item struct {
	src   string // user supplied path, kept for the manifest
	path  string // absolute location to read at finalization time
	stamp time.Time
	data  []byte
}

// Report accumulates files and data for a debug archive written on Close.
// All methods tolerate a nil receiver, which stands for "no report requested".
// Not safe for concurrent use.
type Report struct {
	items map[string]item
	file  *os.File
}

// Name returns the absolute location of the archive being built.
func (r *Report) Name() string {
	if r == nil || r.file == nil {
		return ""
	}
	if n, err := filepath.Abs(r.file.Name()); err == nil {
		return n
	}
	return r.file.Name()
}

// Store registers a file or directory to be archived under name when the
// report is finalized. The content is read at Close time, so late writes to
// the path (log files) end up in the archive complete.
func (r *Report) Store(name, path string) {
	if r == nil {
		return
	}
	if old, exists := r.items[name]; exists && old.src != path {
		panic(fmt.Sprintf("report name %q already taken: was %s, now %s", name, old.src, path))
	}

	it := item{src: path, path: path}
	if p, err := filepath.Abs(path); err == nil {
		it.path = p
	}
	r.items[name] = it
}

// StoreData registers a blob to be archived under name.
func (r *Report) StoreData(name string, data []byte) {
	if r == nil {
		return
	}
	if _, exists := r.items[name]; exists {
		panic(fmt.Sprintf("report name %q already taken", name))
	}
	r.items[name] = item{data: data, stamp: time.Now()}
}

// StoreCopy snapshots a file or directory as it is right now, for content the
// program is about to modify in place. Repeated names are versioned with a
// timestamp so the same path can be captured more than once.
func (r *Report) StoreCopy(name, path string) error {
	if r == nil {
		return nil
	}

	it := item{src: path, stamp: time.Now()}

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if _, exists := r.items[name]; exists {
		name = fmt.Sprintf("%s-%d", name, it.stamp.UnixNano())
	}

	dir, err := os.MkdirTemp("", misc.GetAppName()+"-rpt-")
	if err != nil {
		return err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return err
	}
	switch {
	case info.Mode().IsRegular():
		if it.path, err = snapshotFile(dir, abs, info.ModTime()); err != nil {
			return err
		}
	case info.Mode().IsDir():
		if err := snapshotDir(dir, abs); err != nil {
			return err
		}
		it.path = dir
	default:
		return fmt.Errorf("unable to snapshot %s: not a regular file or directory", abs)
	}

	r.items[name] = it
	return nil
}

// Close writes out the archive. A nil report closes successfully, no report
// was requested.
func (r *Report) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	defer r.file.Close()

	arc := zip.NewWriter(r.file)
	defer arc.Close()

	names, manifest := r.manifest()
	if err := archiveBytes(arc, "MANIFEST", time.Now(), manifest); err != nil {
		return err
	}

	for _, name := range names {
		it := r.items[name]
		if len(it.data) > 0 {
			if err := archiveBytes(arc, name, it.stamp, bytes.NewReader(it.data)); err != nil {
				return err
			}
			continue
		}

		// absent paths are fine, nothing was produced for them this run
		info, err := os.Stat(it.path)
		if err != nil {
			continue
		}
		switch {
		case info.Mode().IsRegular():
			if err := archiveFile(arc, name, it.path, info.ModTime()); err != nil {
				return err
			}
		case info.Mode().IsDir():
			if err := archiveDir(arc, name, it.path); err != nil {
				return err
			}
		}
	}
	return nil
}

// manifest renders a sorted listing of everything going into the archive.
func (r *Report) manifest() ([]string, *bytes.Buffer) {
	buf := new(bytes.Buffer)
	if len(r.items) == 0 {
		return nil, buf
	}

	now := time.Now()
	names := make([]string, 0, len(r.items))
	for name := range r.items {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		it := r.items[name]
		if it.stamp.IsZero() {
			it.stamp = now
		}
		fmt.Fprintf(buf, "%s\t%s\t%s : %s\n", it.stamp.UTC().Format(time.UnixDate), name, it.src, it.path)
	}
	return names, buf
}

func snapshotFile(dir, src string, modTime time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	dst := filepath.Join(dir, filepath.Base(src))

	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	if err := os.Chtimes(dst, modTime, modTime); err != nil {
		return "", err
	}
	return dst, nil
}

func snapshotDir(dir, src string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			// links, sockets and the like are not content
			return nil
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		_, err = snapshotFile(filepath.Dir(filepath.Join(dir, rel)), path, info.ModTime())
		return err
	})
}

func archiveBytes(dst *zip.Writer, name string, t time.Time, src io.Reader) error {
	w, err := dst.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: t})
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}

func archiveFile(dst *zip.Writer, name, path string, modTime time.Time) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return archiveBytes(dst, name, modTime, f)
}

func archiveDir(dst *zip.Writer, name, dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		return archiveFile(dst, filepath.ToSlash(filepath.Join(name, rel)), path, info.ModTime())
	})
}
