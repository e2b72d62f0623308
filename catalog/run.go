package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"ttc/state"
)

// Run implements the index subcommand: rebuild index.json over the lyrics
// tree rooted at the optional argument (default current directory).
func Run(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("index")

	root := "."
	if cmd.Args().Len() > 0 {
		root = cmd.Args().First()
	}

	log.Info("Index generation starting", zap.String("root", root))
	defer func(start time.Time) {
		log.Info("Index generation completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	entries, warnings, err := Build(root, env.Cfg.Format.Extension)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		log.Warn("Index warning", zap.String("warning", w))
	}

	data, err := Encode(entries)
	if err != nil {
		return err
	}
	out := filepath.Join(root, IndexFile)
	if err := os.WriteFile(out, data, 0644); err != nil {
		return fmt.Errorf("unable to write %s: %w", out, err)
	}
	fmt.Printf("Generated %s with %d entries.\n", out, len(entries))
	return nil
}
