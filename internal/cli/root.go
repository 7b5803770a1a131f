// Package cli implements the cobra command tree for assfilter.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/assfilter/internal/config"
	"github.com/hupe1980/assfilter/internal/logging"
	"github.com/hupe1980/assfilter/internal/selection"
)

// ExitError wraps an error with a specific process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}

	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// usageError marks err as a usage error (exit code 2).
func usageError(err error) error {
	return &ExitError{Code: 2, Err: err}
}

// runError maps err to an ExitError: selection errors are usage errors,
// everything else (I/O, malformed scripts) exits with 1.
func runError(err error) error {
	if err == nil {
		return nil
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}

	if selection.IsUsage(err) {
		return usageError(err)
	}

	return &ExitError{Code: 1, Err: err}
}

// Execute builds the command tree, runs it, and returns the exit code.
func Execute() int {
	return execute(NewRootCommand(), os.Stderr)
}

func execute(cmd *cobra.Command, stderr io.Writer) int {
	err := cmd.Execute()
	if err == nil {
		return 0
	}

	_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	return 1
}

// NewRootCommand constructs the top-level cobra.Command with all
// subcommands attached. The root command itself filters a script.
func NewRootCommand() *cobra.Command {
	var cfgFile string

	opts := &filterOptions{}

	cmd := &cobra.Command{
		Use:   "assfilter <input> <output>",
		Short: "Remove subtitle events by style or layer",
		Long: `assfilter removes unwanted lines from an Advanced SubStation Alpha
(ASS/SSA) subtitle script.

It lists the styles and layers used by the script, asks which of them to
filter out, drops every event that uses an excluded style or sits on an
excluded layer, and writes the remaining script to <output> as UTF-8 with
a byte-order mark. Everything except the event list is copied verbatim.

Passing --exclude-styles, --exclude-style-indices, --exclude-layers or
--profile skips the prompts. An <output> of "-" writes the filtered script
to stdout without a byte-order mark; it requires one of those flags.`,
		Example: `  assfilter episode01.ass episode01.clean.ass
  assfilter episode01.ass out.ass --exclude-styles Sign,OP --exclude-layers 5
  assfilter episode01.ass out.ass --profile no-comments --dry-run --diff
  assfilter episode01.ass - --exclude-layers 5 > episode01.clean.ass`,
		Args:          exactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd, cfgFile)
			if err != nil {
				return usageError(err)
			}

			logger := logging.Setup(cfg)

			ctx := cmd.Context()
			ctx = config.NewContext(ctx, cfg)
			ctx = logging.NewContext(ctx, logger)
			cmd.SetContext(ctx)

			logger.Debug("configuration loaded",
				slog.String("logLevel", cfg.LogLevel),
				slog.String("logFormat", cfg.LogFormat),
				slog.String("configFile", cfg.ConfigFile),
				slog.String("profile", cfg.Profile),
			)

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runError(runFilter(cmd.Context(), cmd, args[0], args[1], opts))
		},
	}

	// Global persistent flags.
	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: .assfilter.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "text", "log format: text, json")
	pf.Bool("no-color", false, "disable colored output")
	pf.BoolP("quiet", "q", false, "suppress non-essential output")

	registerSelectionFlags(cmd, &opts.selectionOptions)
	registerOutputFlags(cmd, opts)

	// Flag parsing errors return exit code 2.
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	cmd.AddCommand(
		newVersionCommand(),
		newInspectCommand(),
		newWatchCommand(),
		newCompletionCommand(),
	)

	return cmd
}

// exactArgs is cobra.ExactArgs with the error mapped to exit code 2.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return usageError(err)
		}

		return nil
	}
}
