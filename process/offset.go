package process

import (
	"context"
	"errors"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"ttc/state"
	"ttc/ttml"
)

// RunOffset implements the offset subcommand: shift every timestamp of a
// document by a fixed amount. Arguments are FILE OFFSET [OUTPUT]; without an
// explicit output the file is rewritten in place. The offset accepts seconds
// ("0.5", "-1.25") or milliseconds ("100ms", "-50ms").
func RunOffset(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("offset")

	args := cmd.Args().Slice()
	if len(args) < 2 {
		return errors.New("usage: offset FILE OFFSET [OUTPUT]")
	}
	path, offsetArg := args[0], args[1]
	out := path
	if len(args) > 2 {
		out = args[2]
	}

	delta, err := ttml.ParseOffset(offsetArg)
	if err != nil {
		return err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("unable to read input: %w", err)
	}

	doc := ttml.Parse(normalizeNewlines(string(content)))
	if doc.Root() == nil {
		return fmt.Errorf("no document found in %s", path)
	}
	ttml.Shift(doc, delta)

	if err := os.WriteFile(out, []byte(ttml.Render(doc)), 0644); err != nil {
		return fmt.Errorf("unable to write output: %w", err)
	}

	log.Info("Offset applied", zap.String("file", path), zap.Float64("seconds", delta), zap.String("output", out))
	fmt.Printf("Success! Offset by %gs. Output saved to: %s\n", delta, out)
	return nil
}
