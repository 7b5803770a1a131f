package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/assfilter/internal/ass"
	"github.com/hupe1980/assfilter/internal/config"
	"github.com/hupe1980/assfilter/internal/logging"
	"github.com/hupe1980/assfilter/internal/output"
	"github.com/hupe1980/assfilter/internal/selection"
	"github.com/hupe1980/assfilter/internal/watch"
)

type watchOptions struct {
	selectionOptions

	dryRun   bool
	debounce time.Duration
}

func newWatchCommand() *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch <input> <output>",
		Short: "Re-filter a script whenever it changes",
		Long: `Watch filters <input> into <output> and repeats the run every time the
input file (or the config file) is saved.

Changes are debounced to avoid rapid re-runs. Each run reports the number
of kept and removed events and any styles or layers that appeared in or
disappeared from the script since the previous run.

Watch never prompts: pass --exclude-styles, --exclude-style-indices,
--exclude-layers or --profile. Style indices are resolved again on every
run.`,
		Args: exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runError(runWatch(cmd.Context(), cmd, args[0], args[1], opts))
		},
	}

	registerSelectionFlags(cmd, &opts.selectionOptions)

	f := cmd.Flags()
	f.BoolVar(&opts.dryRun, "dry-run", false, "filter without writing the output file")
	f.DurationVar(&opts.debounce, "debounce", 500*time.Millisecond, "debounce interval for file changes")

	return cmd
}

var errWatchNeedsSelection = errors.New(
	"watch needs --exclude-styles, --exclude-style-indices, --exclude-layers or --profile")

func runWatch(ctx context.Context, cmd *cobra.Command, input, outputPath string, opts *watchOptions) error {
	cfg := config.FromContext(ctx)

	if !opts.isSet(cmd) && cfg.Profile == "" {
		return usageError(errWatchNeedsSelection)
	}

	logger := logging.FromContext(ctx)

	// Runs are serialized by the watcher's debouncer.
	var (
		prev    watch.Snapshot
		hasPrev bool
	)

	runFn := func(fnCtx context.Context) (*watch.RunResult, error) {
		runCfg := cfg

		// Reload so that edits to profiles in the config file take effect.
		if cfg.ConfigFile != "" {
			reloaded, err := config.Load(cmd, cfg.ConfigFile)
			if err != nil {
				return nil, err
			}

			runCfg = reloaded
		}

		doc, err := ass.ParseFile(input)
		if err != nil {
			return nil, err
		}

		sel, err := resolveSelection(doc, &opts.selectionOptions, runCfg)
		if err != nil {
			return nil, err
		}

		run, err := applySelection(fnCtx, doc, sel)
		if err != nil {
			return nil, err
		}

		if !opts.dryRun {
			w := output.NewFileWriter(outputPath, output.WithLogger(logger))
			if err := w.Write(run.data); err != nil {
				return nil, fmt.Errorf("writing output: %w", err)
			}
		}

		curr := watch.Snapshot{
			Styles: doc.StyleNames(),
			Layers: selection.CandidateLayers(doc.Events),
		}

		var changes []watch.Change
		if hasPrev {
			changes = watch.Diff(prev, curr)
		}

		prev, hasPrev = curr, true

		return &watch.RunResult{
			Kept:       run.kept(),
			Removed:    run.removed(),
			Changes:    changes,
			OutputPath: outputPath,
		}, nil
	}

	watchOpts := watch.DefaultOptions()
	watchOpts.Input = input
	watchOpts.Debounce = opts.debounce
	watchOpts.Logger = logger
	watchOpts.Out = cmd.ErrOrStderr()

	if cfg.ConfigFile != "" {
		watchOpts.ExtraFiles = []string{cfg.ConfigFile}
	}

	return watch.Run(ctx, watchOpts, runFn)
}
