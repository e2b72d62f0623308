package process

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
)

// ErrNotCanonical is the designed check-mode signal: at least one input is not
// in canonical form. It maps to a nonzero exit status and is distinct from a
// crash failure.
var ErrNotCanonical = errors.New("files need formatting")

// Run implements the lint subcommand.
func Run(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("lint")

	env.Fix = cmd.Bool("fix")
	env.Check = cmd.Bool("check")
	env.Strict = cmd.Bool("strict")
	env.Warnings = cmd.Bool("warnings")
	if env.Fix && env.Check {
		return errors.New("--fix and --check are mutually exclusive")
	}

	var (
		files []string
		err   error
	)
	if cmd.Bool("all") {
		if files, err = Discover(".", env.Cfg.Format.Extension); err != nil {
			return fmt.Errorf("unable to scan for %s files: %w", env.Cfg.Format.Extension, err)
		}
	} else {
		files = cmd.Args().Slice()
	}
	if len(files) == 0 {
		return errors.New("no input files, specify paths or use --all")
	}

	log.Info("Processing starting", zap.Int("files", len(files)),
		zap.Bool("fix", env.Fix), zap.Bool("check", env.Check), zap.Bool("strict", env.Strict))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	colorize := config.EnableColorOutput(os.Stdout)

	changed := 0
	type fileWarnings struct {
		path     string
		warnings []string
	}
	var collected []fileWarnings

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		res, err := File(path, env.Strict)
		if err != nil {
			// per-document failures never abort the batch
			log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
			continue
		}

		if res.StrictErr != nil {
			fmt.Printf("  ✗ Not well-formed: %s: %v\n", path, res.StrictErr)
		}

		if res.Failed() {
			changed++
		}
		if res.Changed {
			switch {
			case env.Fix:
				// keep the original in the debug report, it is about to be replaced
				if err := env.Rpt.StoreCopy(filepath.ToSlash(filepath.Join("inputs", filepath.Base(path))), path); err != nil {
					log.Warn("Unable to capture original file for report", zap.String("file", path), zap.Error(err))
				}
				if err := res.Apply(); err != nil {
					log.Error("Unable to rewrite file", zap.String("file", path), zap.Error(err))
					continue
				}
				fmt.Printf("  ✓ Fixed: %s\n", path)
			case env.Check:
				fmt.Printf("  ✗ Needs formatting: %s\n", path)
			default:
				if diff := UnifiedDiff(path, res.Original, res.Canonical, env.Cfg.Format.DiffLineLimit, colorize); len(diff) != 0 {
					fmt.Println(diff)
				}
				fmt.Printf("  ~ Would change: %s\n", path)
			}
		}
		if len(res.Warnings) != 0 {
			collected = append(collected, fileWarnings{path: path, warnings: res.Warnings})
		}
	}

	fmt.Println()
	switch {
	case env.Fix:
		fmt.Printf("Fixed %d/%d files.\n", changed, len(files))
	case env.Check:
		fmt.Printf("%d/%d files need formatting.\n", changed, len(files))
	default:
		fmt.Printf("%d/%d files would change.\n", changed, len(files))
	}

	if len(collected) != 0 && (env.Warnings || !env.Check) {
		fmt.Println()
		fmt.Println("Lint warnings:")
		for _, fw := range collected {
			fmt.Printf("\n  %s:\n", fw.path)
			for _, w := range fw.warnings {
				fmt.Printf("    ⚠ %s\n", w)
			}
		}
	}

	if env.Check && changed > 0 {
		return ErrNotCanonical
	}
	return nil
}
