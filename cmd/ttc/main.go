package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"ttc/catalog"
	"ttc/config"
	"ttc/elrc"
	"ttc/export"
	"ttc/misc"
	"ttc/process"
	"ttc/roman"
	"ttc/state"
)

// initializeAppContext prepares application context before command execution but
// after command line has been parsed
func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	var err error

	if cmd.NArg() == 0 {
		// nothing to do, just return
		return ctx, nil
	}

	env := state.EnvFromContext(ctx)

	configFile := cmd.String("config")
	if env.Cfg, err = config.LoadConfiguration(configFile); err != nil {
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if cmd.Bool("debug") {
		if env.Rpt, err = env.Cfg.Reporting.Prepare(); err != nil {
			return ctx, fmt.Errorf("unable to prepare debug reporter: %w", err)
		}
		// save complete processed configuration if external configuration was provided
		if len(configFile) > 0 {
			if data, err := config.Dump(env.Cfg); err == nil {
				env.Rpt.StoreData(fmt.Sprintf("config/%s", filepath.Base(configFile)), data)
			}
		}
	}
	if env.Log, err = env.Cfg.Logging.Prepare(env.Rpt); err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}
	env.RedirectStdLog()

	env.Log.Debug("Program started", zap.Strings("args", os.Args), zap.String("ver", misc.GetVersion()), zap.String("runtime", runtime.Version()), zap.String("hash", misc.GetGitHash()))

	if env.Rpt != nil {
		env.Log.Info("Creating debug report", zap.String("location", env.Rpt.Name()))
	}
	if len(configFile) == 0 && env.Log != nil {
		env.Log.Info("Using defaults (no configuration file)")
	}
	return ctx, nil
}

func destroyAppContext(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)

	if env.Log != nil {
		env.Log.Debug("Program ended", zap.Duration("elapsed", env.Uptime()), zap.Strings("parsed args", cmd.Args().Slice()))
	}

	// close logging
	env.RestoreStdLog()

	// log is synced now and result can be used in report if necessary, errors
	// must be reported directly to stderr from now on
	if env.Rpt != nil {
		if er := env.Rpt.Close(); er != nil {
			err = multierr.Append(err, fmt.Errorf("unable to close debug report: %w", er))
		}
	}
	// reporting is closed now - remove empty panic file if any
	if env.Cfg != nil && len(env.Cfg.Logging.FileLogger.Destination) > 0 {
		debug.SetCrashOutput(nil, debug.CrashOptions{})
		fname := filepath.Join(filepath.Dir(env.Cfg.Logging.FileLogger.Destination), misc.GetAppName()+"-panic.log")
		if fi, er := os.Stat(fname); er == nil && fi.Size() == 0 {
			if er := os.Remove(fname); er != nil {
				err = multierr.Append(err, fmt.Errorf("unable to remove empty panic log file '%s': %w", fname, er))
			}
		}
	}
	return
}

// Ignore urfave/cli default error handling - for me cli.Exit() looks
// non-transparent and unnesessary. I will return regular errors from
// subcommands.
var errWasHandled bool

// this is called before appContext is destroyed, so we have a chance to
// properly log any error from subcommand
func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {

	env := state.EnvFromContext(ctx)

	if env.Log == nil {
		return
	}
	if errors.Is(err, process.ErrNotCanonical) {
		// expected check mode outcome, the summary was already printed
		env.Log.Debug("Check found files needing formatting")
	} else {
		env.Log.Error("Program ended with error", zap.Error(err))
	}
	errWasHandled = true
}

func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	// do nothing special, error is reported either by exitErrHandler or on
	// exit directly to stderr.
	return err
}

func subcommandNotFoundHandler(ctx context.Context, _ *cli.Command, name string) {
	state.EnvFromContext(ctx).Log.Warn("Unknown command, nothing to do", zap.String("command", name))
}

func main() {

	// allow graceful shutdown on interrupt.
	ctx, stop := signal.NotifyContext(state.ContextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)

	app := &cli.Command{
		Name:            misc.GetAppName(),
		Usage:           "maintenance toolchain for TTML lyrics collections",
		Version:         misc.GetVersion() + " (" + runtime.Version() + ") : " + misc.GetGitHash(),
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		OnUsageError:    usageErrorHandler,
		ExitErrHandler:  exitErrHandler,
		CommandNotFound: subcommandNotFoundHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, DefaultText: "", Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "changes program behavior to help troubleshooting, produces report archive"},
		},
		Commands: []*cli.Command{
			{
				Name:         "lint",
				Usage:        "Formats TTML file(s) canonically and reports structural problems",
				OnUsageError: usageErrorHandler,
				Action:       process.Run,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "fix", Aliases: []string{"f"}, Usage: "rewrite files in place with their canonical form"},
					&cli.BoolFlag{Name: "check", Usage: "report files needing formatting, exit nonzero when any found"},
					&cli.BoolFlag{Name: "all", Aliases: []string{"a"}, Usage: "process every lyrics file under the current directory"},
					&cli.BoolFlag{Name: "warnings", Aliases: []string{"w"}, Usage: "print lint warnings even in check mode"},
					&cli.BoolFlag{Name: "strict", Usage: "additionally verify XML well-formedness"},
				},
				ArgsUsage: "[FILE...]",
				CustomHelpTemplate: fmt.Sprintf(`%s
Without --fix or --check a unified diff of the pending changes is printed for
each file that is not in canonical form. Exit status is nonzero in --check
mode when at least one file needs formatting.
`, cli.CommandHelpTemplate),
			},
			{
				Name:         "convert",
				Usage:        "Converts word-timed ELRC file(s) to canonical TTML",
				OnUsageError: usageErrorHandler,
				Action:       elrc.Run,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "to", Usage: "output `DIRECTORY` (default: next to each input)"},
					&cli.BoolFlag{Name: "overwrite", Aliases: []string{"ow"}, Usage: "continue even if destination exists, overwrite files"},
				},
				ArgsUsage: "SOURCE...",
				CustomHelpTemplate: fmt.Sprintf(`%s
Each output file is named "Artist - Title.ttml" after the ar: and ti:
metadata tags of the source.
`, cli.CommandHelpTemplate),
			},
			{
				Name:         "export",
				Usage:        "Exports TTML file(s) to structured JSON",
				OnUsageError: usageErrorHandler,
				Action:       export.Run,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "to", Usage: "output `DIRECTORY` mirroring the source tree (default: next to each input)"},
					&cli.BoolFlag{Name: "all", Aliases: []string{"a"}, Usage: "export every lyrics file under the current directory"},
				},
				ArgsUsage: "[FILE...]",
			},
			{
				Name:         "offset",
				Usage:        "Shifts all timestamps of a TTML file by a fixed amount",
				OnUsageError: usageErrorHandler,
				Action:       process.RunOffset,
				ArgsUsage:    "FILE OFFSET [OUTPUT]",
				CustomHelpTemplate: fmt.Sprintf(`%s
OFFSET:
    seconds ("0.5", "-1.25") or milliseconds ("100ms", "-50ms")

Without OUTPUT the input file is rewritten in place. The body duration is
recalculated from the latest end time after shifting.
`, cli.CommandHelpTemplate),
			},
			{
				Name:         "romanize",
				Usage:        "Adds Latin transliteration attributes to TTML file(s)",
				OnUsageError: usageErrorHandler,
				Action:       roman.Run,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "fallback", Usage: "transliterate non-Korean scripts with a generic ASCII approximation"},
					&cli.BoolFlag{Name: "overwrite", Aliases: []string{"ow"}, Usage: "rewrite input files in place instead of writing .romanized.ttml siblings"},
				},
				ArgsUsage: "SOURCE...",
			},
			{
				Name:         "index",
				Usage:        "Regenerates index.json over a tree of lyrics files",
				OnUsageError: usageErrorHandler,
				Action:       catalog.Run,
				ArgsUsage:    "[ROOT]",
			},
			{
				Name:  "dumpconfig",
				Usage: "Dumps either default or actual configuration (YAML)",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "default", Usage: "output default embedded configuration"},
				},
				OnUsageError: usageErrorHandler,
				Action:       outputConfiguration,
				ArgsUsage:    "DESTINATION",
				CustomHelpTemplate: fmt.Sprintf(`%s

DESTINATION:
    file name to write configuration to, if absent - STDOUT

Produces file with actual "active" configuration values wich is composition of
default values and values specified in configuration file. To see default
configuration embedded into the program use --default flag.
`, cli.CommandHelpTemplate),
			},
		},
	}

	var err error
	// NOTE: os.Exit is called at the end of main to set exit code, make sure
	// there are no other deffered functions after that
	defer func() {
		stop()
		if err != nil {
			// It may happen that log is either not set yet (argument parsing) or already closed,
			// report errors to stderr directly
			if !errWasHandled {
				fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
			}
			os.Exit(1)
		}
	}()
	err = app.Run(ctx, os.Args)
}

func outputConfiguration(ctx context.Context, cmd *cli.Command) error {

	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	fname := cmd.Args().Get(0)

	var (
		err   error
		data  []byte
		state string
	)

	out := os.Stdout
	if len(fname) > 0 {
		out, err = os.Create(fname)
		if err != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", fname, err)
		}
		defer out.Close()

	}

	if cmd.Bool("default") {
		state = "default"
		data, err = config.Prepare()
	} else {
		state = "actual"
		data, err = config.Dump(env.Cfg)
	}
	if err != nil {
		return fmt.Errorf("unable to get configuration: %w", err)
	}

	if len(fname) == 0 {
		fname = "STDOUT"
	}
	env.Log.Info("Outputing configuration", zap.String("state", state), zap.String("file", fname))

	_, err = out.Write(data)
	if err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	return nil
}
