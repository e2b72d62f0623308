package elrc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"ttc/config"
	"ttc/state"
	"ttc/ttml"
)

// Run implements the convert subcommand: each ELRC source becomes a canonical
// TTML file named "Artist - Title.ttml" next to the input (or under --to).
func Run(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("convert")
	env.Overwrite = cmd.Bool("overwrite")

	files := cmd.Args().Slice()
	if len(files) == 0 {
		return errors.New("no input files specified")
	}
	destDir := cmd.String("to")

	log.Info("Conversion starting", zap.Int("files", len(files)))
	defer func(start time.Time) {
		log.Info("Conversion completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		out, err := convertFile(path, destDir, env)
		if err != nil {
			log.Error("Unable to convert file", zap.String("file", path), zap.Error(err))
			continue
		}
		fmt.Printf("  ✓ Generated: %s\n", out)
	}
	return nil
}

func convertFile(path, destDir string, env *state.LocalEnv) (string, error) {
	in, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("unable to open input: %w", err)
	}
	defer in.Close()

	song, err := Parse(in, env.Cfg.Convert.LastWordPadding)
	if err != nil {
		return "", err
	}
	if len(song.Lines) == 0 {
		return "", errors.New("no timed lines found")
	}

	dir := destDir
	if len(dir) == 0 {
		dir = filepath.Dir(path)
	}
	name := config.CleanFileName(fmt.Sprintf("%s - %s", song.Artist(), song.Title())) + ".ttml"
	out := filepath.Join(dir, name)
	if !env.Overwrite {
		if _, err := os.Stat(out); err == nil {
			return "", fmt.Errorf("output file already exists: %s (use --ow to overwrite)", out)
		}
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("unable to create output directory: %w", err)
	}
	if err := os.WriteFile(out, []byte(ttml.Render(song.Document())), 0644); err != nil {
		return "", fmt.Errorf("unable to write output: %w", err)
	}
	return out, nil
}
