package roman

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"ttc/process"
	"ttc/state"
	"ttc/ttml"
)

// Run implements the romanize subcommand. Inputs may be files or directories
// (scanned recursively). Without --ow the result goes to a .romanized.ttml
// sibling so the source stays untouched.
func Run(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("romanize")
	env.Overwrite = cmd.Bool("overwrite")
	fallback := cmd.Bool("fallback")

	var files []string
	for _, arg := range cmd.Args().Slice() {
		fi, err := os.Stat(arg)
		if err != nil {
			return fmt.Errorf("unable to access %s: %w", arg, err)
		}
		if fi.IsDir() {
			found, err := process.Discover(arg, env.Cfg.Format.Extension)
			if err != nil {
				return fmt.Errorf("unable to scan %s: %w", arg, err)
			}
			files = append(files, found...)
		} else {
			files = append(files, arg)
		}
	}
	if len(files) == 0 {
		return errors.New("no input files specified")
	}

	log.Info("Romanization starting", zap.Int("files", len(files)), zap.Bool("fallback", fallback))
	defer func(start time.Time) {
		log.Info("Romanization completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		out, added, err := romanizeFile(path, fallback, env.Overwrite)
		if err != nil {
			log.Error("Unable to romanize file", zap.String("file", path), zap.Error(err))
			continue
		}
		if added == 0 {
			fmt.Printf("  - Nothing to do: %s\n", path)
			continue
		}
		fmt.Printf("  ✓ Romanized: %s -> %s (%d annotations)\n", path, out, added)
	}
	return nil
}

func romanizeFile(path string, fallback, overwrite bool) (string, int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", 0, fmt.Errorf("unable to read input: %w", err)
	}

	doc := ttml.Parse(string(content))
	added := Annotate(doc, fallback)
	if added == 0 {
		return "", 0, nil
	}

	out := path
	if !overwrite {
		out = strings.TrimSuffix(path, filepath.Ext(path)) + ".romanized.ttml"
	}
	if err := os.WriteFile(out, []byte(ttml.Render(doc)), 0644); err != nil {
		return "", 0, fmt.Errorf("unable to write output: %w", err)
	}
	return out, added, nil
}
