package export

import (
	"bytes"
	"context"
	"encoding/json"
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

// Run implements the export subcommand. Each TTML input produces a JSON file,
// either next to the source or mirrored under the output directory.
func Run(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("export")

	outDir := cmd.String("to")
	if len(outDir) == 0 {
		outDir = env.Cfg.Export.OutputDir
	}

	var (
		files []string
		err   error
	)
	if cmd.Bool("all") {
		if files, err = process.Discover(".", env.Cfg.Format.Extension); err != nil {
			return fmt.Errorf("unable to scan for %s files: %w", env.Cfg.Format.Extension, err)
		}
	} else {
		files = cmd.Args().Slice()
	}
	if len(files) == 0 {
		return errors.New("no input files, specify paths or use --all")
	}

	log.Info("Export starting", zap.Int("files", len(files)), zap.String("to", outDir))
	defer func(start time.Time) {
		log.Info("Export completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	exported := 0
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		out, err := exportFile(path, outDir)
		if err != nil {
			log.Error("Unable to export file", zap.String("file", path), zap.Error(err))
			continue
		}
		fmt.Printf("  ✓ Exported: %s -> %s\n", path, out)
		exported++
	}
	fmt.Printf("\nExported %d/%d files.\n", exported, len(files))
	return nil
}

func exportFile(path, outDir string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("unable to read input: %w", err)
	}

	song := FromDocument(ttml.Parse(string(content)), path)

	out := outputName(path, outDir)
	if err := os.MkdirAll(filepath.Dir(out), 0700); err != nil {
		return "", fmt.Errorf("unable to create output directory: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(song); err != nil {
		return "", fmt.Errorf("unable to serialize: %w", err)
	}
	if err := os.WriteFile(out, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("unable to write output: %w", err)
	}
	return out, nil
}

// outputName mirrors the source path under outDir when one is set, otherwise
// the JSON lands next to the source.
func outputName(path, outDir string) string {
	stem := strings.TrimSuffix(path, filepath.Ext(path)) + ".json"
	if len(outDir) == 0 {
		return stem
	}
	return filepath.Join(outDir, stem)
}
