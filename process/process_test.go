package process

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ttc/ttml"
)

const rawSample = `<tt xmlns="http://www.w3.org/ns/ttml">
<body dur="00:03.000">
<div begin="00:01.000" end="00:03.000">
<p itunes:key="L1" begin="00:01.000" end="00:03.000"><span begin="00:01.000" end="00:02.000">Tak</span> <span begin="00:02.000" end="00:03.000">ada</span></p>
</div>
</body>
</tt>
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("unable to write %s: %v", name, err)
	}
	return path
}

func TestFile_DetectsChanges(t *testing.T) {
	path := writeFile(t, t.TempDir(), "song.ttml", rawSample)

	res, err := File(path, false)
	if err != nil {
		t.Fatalf("File() error = %v", err)
	}
	if !res.Changed {
		t.Error("non-canonical file not flagged as changed")
	}
	if res.Canonical != ttml.Format(rawSample) {
		t.Error("canonical content mismatch")
	}
	if res.StrictErr != nil {
		t.Errorf("strict error set without strict mode: %v", res.StrictErr)
	}
}

func TestFile_CanonicalUnchanged(t *testing.T) {
	canonical := ttml.Format(rawSample)
	path := writeFile(t, t.TempDir(), "song.ttml", canonical)

	res, err := File(path, false)
	if err != nil {
		t.Fatalf("File() error = %v", err)
	}
	if res.Changed {
		t.Error("canonical file flagged as changed")
	}
	if res.Failed() {
		t.Error("canonical file counted as failed")
	}
}

func TestFile_NormalizesNewlines(t *testing.T) {
	crlf := strings.ReplaceAll(rawSample, "\n", "\r\n")
	path := writeFile(t, t.TempDir(), "song.ttml", crlf)

	res, err := File(path, false)
	if err != nil {
		t.Fatalf("File() error = %v", err)
	}
	if strings.Contains(res.Original, "\r") {
		t.Error("carriage returns survived normalization")
	}
}

func TestFile_CollectsWarnings(t *testing.T) {
	content := `<tt><body><div>
<p begin="00:05.000" end="00:04.000" itunes:key="L1">x</p>
</div></body></tt>
`
	path := writeFile(t, t.TempDir(), "bad.ttml", content)

	res, err := File(path, false)
	if err != nil {
		t.Fatalf("File() error = %v", err)
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "begin >= end") {
		t.Errorf("Warnings = %v", res.Warnings)
	}
}

func TestFile_StrictMode(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.ttml", "<tt><p>unclosed</tt>\n")

	res, err := File(path, true)
	if err != nil {
		t.Fatalf("File() error = %v", err)
	}
	if res.StrictErr == nil {
		t.Error("malformed XML not reported in strict mode")
	}
	if !res.Failed() {
		t.Error("strict failure not counted")
	}
}

func TestApply(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "song.ttml", rawSample)

	res, err := File(path, false)
	if err != nil {
		t.Fatalf("File() error = %v", err)
	}
	if err := res.Apply(); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("unable to read back: %v", err)
	}
	if string(data) != res.Canonical {
		t.Error("Apply() did not write canonical content")
	}

	// second pass is a no-op
	res2, err := File(path, false)
	if err != nil {
		t.Fatalf("File() second pass error = %v", err)
	}
	if res2.Changed {
		t.Error("canonical file still flagged after Apply()")
	}

	// no temporary litter left behind
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries after Apply(), want 1", len(entries))
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "IND")
	if err := os.MkdirAll(sub, 0700); err != nil {
		t.Fatal(err)
	}
	writeFile(t, dir, "2.ttml", "x")
	writeFile(t, dir, "10.ttml", "x")
	writeFile(t, sub, "1.ttml", "x")
	writeFile(t, dir, "skip.txt", "x")

	files, err := Discover(dir, ".ttml")
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("Discover() = %v, want 3 files", files)
	}
	for _, f := range files {
		if !strings.HasSuffix(f, ".ttml") {
			t.Errorf("non-matching file discovered: %s", f)
		}
	}
	// natural order: 2 before 10
	var i2, i10 int
	for i, f := range files {
		switch filepath.Base(f) {
		case "2.ttml":
			i2 = i
		case "10.ttml":
			i10 = i
		}
	}
	if i2 > i10 {
		t.Errorf("natural sort violated: %v", files)
	}
}
