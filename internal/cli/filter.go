package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/hupe1980/assfilter/internal/ass"
	"github.com/hupe1980/assfilter/internal/config"
	"github.com/hupe1980/assfilter/internal/diff"
	"github.com/hupe1980/assfilter/internal/filter"
	"github.com/hupe1980/assfilter/internal/logging"
	"github.com/hupe1980/assfilter/internal/output"
	"github.com/hupe1980/assfilter/internal/prompt"
	"github.com/hupe1980/assfilter/internal/selection"
)

// stdoutPath as <output> writes the filtered script to stdout, without a
// byte-order mark.
const stdoutPath = "-"

var errStdoutNeedsSelection = errors.New(
	"writing to stdout needs --exclude-styles, --exclude-style-indices, --exclude-layers or --profile")

// filterRun is the outcome of filtering one script.
type filterRun struct {
	doc *ass.Document
	// events are the kept events; result records why the others went.
	events []ass.Event
	result *filter.Result
	data   []byte
}

func (r *filterRun) kept() int    { return len(r.events) }
func (r *filterRun) removed() int { return len(r.result.Excluded) }

func runFilter(ctx context.Context, cmd *cobra.Command, input, outputPath string, opts *filterOptions) error {
	cfg := config.FromContext(ctx)
	ctx = logging.With(ctx, slog.String("input", input))
	logger := logging.FromContext(ctx)

	doc, err := ass.ParseFile(input)
	if err != nil {
		return err
	}

	logger.Debug("parsed script",
		slog.Int("styles", len(doc.Styles)),
		slog.Int("events", len(doc.Events)),
	)

	if !doc.HasEventsSection() {
		logger.Warn("script has no [Events] section")
	}

	var sel filter.Selection

	switch {
	case opts.isSet(cmd) || cfg.Profile != "":
		sel, err = resolveSelection(doc, &opts.selectionOptions, cfg)
	case outputPath == stdoutPath:
		return usageError(errStdoutNeedsSelection)
	default:
		sel, err = prompt.New(cmd.InOrStdin(), cmd.OutOrStdout()).Run(doc)
	}

	if err != nil {
		return err
	}

	run, err := applySelection(ctx, doc, sel)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	// Reports must not mix with a script written to stdout.
	report := out
	if outputPath == stdoutPath {
		report = cmd.ErrOrStderr()
	}

	if opts.diff {
		if err := printDiff(report, cfg, input, outputPath, run); err != nil {
			return err
		}
	}

	if opts.summary {
		printSummary(report, run)
	}

	if opts.dryRun {
		logger.Info("dry run, output not written",
			slog.Int("kept", run.kept()),
			slog.Int("removed", run.removed()),
		)

		return nil
	}

	var w output.Writer = output.NewFileWriter(outputPath, output.WithLogger(logger))
	if outputPath == stdoutPath {
		w = output.NewStdoutWriter(out)
	}

	if err := w.Write(run.data); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	logger.Info("wrote filtered script",
		slog.String("output", outputPath),
		slog.Int("kept", run.kept()),
		slog.Int("removed", run.removed()),
	)

	return nil
}

// resolveSelection builds the exclusion set from the configured profile and
// the exclusion flags. Style indices refer to doc's style list.
func resolveSelection(doc *ass.Document, opts *selectionOptions, cfg *config.Config) (filter.Selection, error) {
	sel := filter.Selection{Styles: filter.NewStyleSet(), Layers: filter.NewLayerSet()}

	if cfg.Profile != "" {
		p, err := cfg.ResolveProfile(cfg.Profile)
		if err != nil {
			return sel, &selection.UsageError{Input: cfg.Profile, Reason: err.Error()}
		}

		sel = sel.Merge(filter.SelectionFromProfile(p))
	}

	if len(opts.excludeStyles) > 0 {
		styles, err := selection.ResolveStyleNames(opts.excludeStyles, doc.Styles)
		if err != nil {
			return sel, err
		}

		sel = sel.Merge(filter.Selection{Styles: styles})
	}

	styles, err := selection.ParseStyleIndices(opts.excludeStyleIndices, doc.Styles)
	if err != nil {
		return sel, err
	}

	layers, err := selection.ParseLayers(opts.excludeLayers)
	if err != nil {
		return sel, err
	}

	return sel.Merge(filter.Selection{Styles: styles, Layers: layers}), nil
}

// applySelection keeps the events sel does not exclude, encodes the
// filtered script and records the removals with their reasons.
func applySelection(ctx context.Context, doc *ass.Document, sel filter.Selection) (*filterRun, error) {
	logger := logging.FromContext(ctx)

	logger.Debug("applying selection",
		slog.String("styles", sel.Styles.String()),
		slog.String("layers", sel.Layers.String()),
	)

	result, err := sel.Chain().Apply(ctx, doc.Events)
	if err != nil {
		return nil, fmt.Errorf("filtering events: %w", err)
	}

	for _, ex := range result.Excluded {
		logger.Debug("event removed",
			slog.String("reason", ex.Reason),
			slog.String("kind", ex.Event.Kind),
			slog.String("text", ex.Event.Text()),
		)
	}

	kept := sel.Keep(doc.Events)

	return &filterRun{
		doc:    doc,
		events: kept,
		result: result,
		data:   ass.Encode(doc.WithEvents(kept)),
	}, nil
}

func printDiff(w io.Writer, cfg *config.Config, input, outputPath string, run *filterRun) error {
	opts := diff.DefaultOptions()
	opts.OldLabel = input
	opts.NewLabel = outputPath
	opts.Context = cfg.DiffContext

	res, err := diff.Compute(string(ass.Encode(run.doc)), string(run.data), opts)
	if err != nil {
		return err
	}

	if !res.HasDifferences {
		_, _ = fmt.Fprintln(w, "no events removed")
		return nil
	}

	diff.Write(w, res, colorEnabled(cfg, w))

	return nil
}

// printSummary prints the kept/removed counts followed by the removals
// grouped by reason.
func printSummary(w io.Writer, run *filterRun) {
	_, _ = fmt.Fprintf(w, "kept %d of %d events, removed %d\n",
		run.kept(), len(run.doc.Events), run.removed())

	if run.removed() == 0 {
		return
	}

	byReason := make(map[string]int)
	for _, ex := range run.result.Excluded {
		byReason[ex.Reason]++
	}

	reasons := make([]string, 0, len(byReason))
	for r := range byReason {
		reasons = append(reasons, r)
	}

	sort.Strings(reasons)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, r := range reasons {
		_, _ = fmt.Fprintf(tw, "  %s\t%d\n", r, byReason[r])
	}

	_ = tw.Flush()
}

// colorEnabled reports whether diff output to w should be colored.
func colorEnabled(cfg *config.Config, w io.Writer) bool {
	if cfg.NoColor || os.Getenv("NO_COLOR") != "" {
		return false
	}

	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
