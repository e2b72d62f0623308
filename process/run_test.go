package process

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap/zaptest"

	"ttc/config"
	"ttc/state"
	"ttc/ttml"
)

// canonical document with a gap in its itunes:key numbering, for warning
// collection without formatting changes
const gappySample = `<tt xmlns="http://www.w3.org/ns/ttml">
<body dur="00:03.000">
<div begin="00:01.000" end="00:03.000">
<p itunes:key="L1" begin="00:01.000" end="00:02.000"><span begin="00:01.000" end="00:02.000">a</span></p>
<p itunes:key="L3" begin="00:02.000" end="00:03.000"><span begin="00:02.000" end="00:03.000">b</span></p>
</div>
</body>
</tt>
`

// runLint drives the lint subcommand over dir the way main wires it up,
// returning captured stdout and the command error.
func runLint(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	t.Chdir(dir)

	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)
	var err error
	if env.Cfg, err = config.LoadConfiguration(""); err != nil {
		t.Fatalf("unable to load configuration: %v", err)
	}
	env.Log = zaptest.NewLogger(t)

	cmd := &cli.Command{
		Name:   "lint",
		Action: Run,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "fix", Aliases: []string{"f"}},
			&cli.BoolFlag{Name: "check"},
			&cli.BoolFlag{Name: "all", Aliases: []string{"a"}},
			&cli.BoolFlag{Name: "warnings", Aliases: []string{"w"}},
			&cli.BoolFlag{Name: "strict"},
		},
	}

	saved := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("unable to create pipe: %v", err)
	}
	os.Stdout = w
	runErr := cmd.Run(ctx, append([]string{"lint"}, args...))
	w.Close()
	os.Stdout = saved

	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("unable to read captured output: %v", err)
	}
	return string(out), runErr
}

func TestRun_CheckModeFindsNonCanonical(t *testing.T) {
	dir := t.TempDir()
	canonical := ttml.Format(rawSample)
	writeFile(t, dir, "a.ttml", canonical)
	writeFile(t, dir, "b.ttml", canonical)
	writeFile(t, dir, "c.ttml", canonical)
	writeFile(t, dir, "d.ttml", rawSample)

	out, err := runLint(t, dir, "--check", "--all")
	if !errors.Is(err, ErrNotCanonical) {
		t.Fatalf("Run() error = %v, want ErrNotCanonical", err)
	}
	if !strings.Contains(out, "1/4 files need formatting.") {
		t.Errorf("summary missing from output:\n%s", out)
	}
	if !strings.Contains(out, "✗ Needs formatting: ") || !strings.Contains(out, "d.ttml") {
		t.Errorf("offending file not named in output:\n%s", out)
	}
}

func TestRun_CheckModeAllCanonical(t *testing.T) {
	dir := t.TempDir()
	canonical := ttml.Format(rawSample)
	writeFile(t, dir, "a.ttml", canonical)
	writeFile(t, dir, "b.ttml", canonical)

	out, err := runLint(t, dir, "--check", "--all")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out, "0/2 files need formatting.") {
		t.Errorf("summary missing from output:\n%s", out)
	}
}

func TestRun_FixRewrites(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "song.ttml", rawSample)

	out, err := runLint(t, dir, "--fix", "--all")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out, "Fixed 1/1 files.") {
		t.Errorf("summary missing from output:\n%s", out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != ttml.Format(rawSample) {
		t.Error("file not rewritten with canonical form")
	}
}

func TestRun_FixAndCheckExclusive(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "song.ttml", rawSample)

	_, err := runLint(t, dir, "--fix", "--check", "--all")
	if err == nil {
		t.Fatal("Run() accepted --fix together with --check")
	}
	if errors.Is(err, ErrNotCanonical) {
		t.Errorf("Run() error = %v, want a usage error", err)
	}
}

func TestRun_NoInputs(t *testing.T) {
	_, err := runLint(t, t.TempDir(), "--check", "--all")
	if err == nil {
		t.Fatal("Run() with no discovered files should fail")
	}
}

func TestRun_WarningGating(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "song.ttml", ttml.Format(gappySample))

	// check mode keeps warnings quiet unless asked for
	out, err := runLint(t, dir, "--check", "--all")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if strings.Contains(out, "Lint warnings:") {
		t.Errorf("warnings printed in check mode without --warnings:\n%s", out)
	}

	out, err = runLint(t, dir, "--check", "--all", "--warnings")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out, "missing itunes:key numbers: [2]") {
		t.Errorf("warnings missing from output:\n%s", out)
	}

	// report mode always shows warnings
	out, err = runLint(t, dir, "--all")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out, "missing itunes:key numbers: [2]") {
		t.Errorf("warnings missing from report mode output:\n%s", out)
	}
}
