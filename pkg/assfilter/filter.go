// Package assfilter provides a public Go API for removing events from
// ASS/SSA subtitle scripts by style, layer or event kind.
//
// This package exposes the assfilter filter pipeline as a library,
// allowing programmatic use without the CLI or its prompts.
//
// Basic usage:
//
//	f, _ := os.Open("episode01.ass")
//	result, err := assfilter.Filter(ctx, f,
//	    assfilter.WithExcludeStyles("Sign", "OP"),
//	    assfilter.WithExcludeLayers(5),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.Stdout.Write(result.Script)
//
// FilterFile does the same for a file on disk and writes the result as
// UTF-8 with a byte-order mark, like the CLI.
package assfilter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/hupe1980/assfilter/internal/ass"
	"github.com/hupe1980/assfilter/internal/filter"
	"github.com/hupe1980/assfilter/internal/logging"
	"github.com/hupe1980/assfilter/internal/output"
	"github.com/hupe1980/assfilter/internal/selection"
)

// Option configures a filter run. Use the With* functions to create Options.
type Option func(*options)

type options struct {
	excludeStyles       []string
	excludeStyleIndices string
	excludeLayers       []int
	excludeKinds        []string

	profile      string
	profilesFile string
	profilesYAML []byte

	logger *slog.Logger
}

// WithExcludeStyles excludes events whose style has one of names. Every
// name must be defined by the script.
func WithExcludeStyles(names ...string) Option {
	return func(o *options) { o.excludeStyles = append(o.excludeStyles, names...) }
}

// WithExcludeStyleIndices excludes styles by their position in the styles
// section, using the prompt syntax: "0,2", "" or "none".
func WithExcludeStyleIndices(spec string) Option {
	return func(o *options) { o.excludeStyleIndices = spec }
}

// WithExcludeLayers excludes events on any of layers.
func WithExcludeLayers(layers ...int) Option {
	return func(o *options) { o.excludeLayers = append(o.excludeLayers, layers...) }
}

// WithExcludeKinds excludes events by kind, e.g. "Comment".
func WithExcludeKinds(kinds ...string) Option {
	return func(o *options) { o.excludeKinds = append(o.excludeKinds, kinds...) }
}

// WithProfile applies a named profile: a built-in one ("no-comments",
// "dialogue-only") or one defined with WithProfilesFile/WithProfilesYAML.
func WithProfile(name string) Option { return func(o *options) { o.profile = name } }

// WithProfilesFile loads profile definitions from a YAML file with a
// top-level "profiles" key.
func WithProfilesFile(path string) Option { return func(o *options) { o.profilesFile = path } }

// WithProfilesYAML loads profile definitions from YAML bytes.
func WithProfilesYAML(data []byte) Option { return func(o *options) { o.profilesYAML = data } }

// WithLogger sets the logger used for debug output. The default discards.
func WithLogger(logger *slog.Logger) Option { return func(o *options) { o.logger = logger } }

// Removal describes an event that was dropped.
type Removal struct {
	Kind   string
	Layer  int
	Style  string
	Text   string
	Reason string
}

// Result holds the output of a successful filter run.
type Result struct {
	// Script is the filtered script, UTF-8 without byte-order mark, using
	// the line ending of the input.
	Script []byte

	// Kept is the number of events left in the script.
	Kept int

	// Removed lists the dropped events in script order.
	Removed []Removal

	// Styles are the style names defined by the script, in order.
	Styles []string

	// Layers are the distinct layers used by the input events, ascending.
	Layers []int
}

// IsUsageError reports whether err was caused by an invalid selection, such
// as an unknown style name or an out-of-range style index.
func IsUsageError(err error) bool {
	return selection.IsUsage(err)
}

// Filter reads a script from r and removes every event matching the
// configured exclusions. With no options the script is returned unchanged.
func Filter(ctx context.Context, r io.Reader, opts ...Option) (*Result, error) {
	return newOptions(opts).run(ctx, r)
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	if o.logger == nil {
		o.logger = logging.Discard()
	}

	return o
}

func (o *options) run(ctx context.Context, r io.Reader) (*Result, error) {
	doc, err := ass.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing script: %w", err)
	}

	sel, err := o.resolve(doc)
	if err != nil {
		return nil, err
	}

	res, err := sel.Chain().Apply(logging.NewContext(ctx, o.logger), doc.Events)
	if err != nil {
		return nil, fmt.Errorf("filtering events: %w", err)
	}

	o.logger.Debug("filtered script",
		slog.Int("kept", len(res.Included)),
		slog.Int("removed", len(res.Excluded)),
	)

	kept := sel.Keep(doc.Events)

	result := &Result{
		Script:  ass.Encode(doc.WithEvents(kept)),
		Kept:    len(kept),
		Removed: make([]Removal, 0, len(res.Excluded)),
		Styles:  doc.StyleNames(),
		Layers:  selection.CandidateLayers(doc.Events),
	}

	for _, ex := range res.Excluded {
		result.Removed = append(result.Removed, Removal{
			Kind:   ex.Event.Kind,
			Layer:  ex.Event.Layer,
			Style:  ex.Event.Style,
			Text:   ex.Event.Text(),
			Reason: ex.Reason,
		})
	}

	return result, nil
}

// FilterFile filters the script at input and writes it to output as UTF-8
// with a byte-order mark, creating parent directories as needed. Nothing is
// written when filtering fails.
func FilterFile(ctx context.Context, input, outputPath string, opts ...Option) (*Result, error) {
	if input == "" || outputPath == "" {
		return nil, errors.New("input and output paths must not be empty")
	}

	o := newOptions(opts)

	f, err := os.Open(input) //nolint:gosec // path is caller-provided input
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", input, err)
	}
	defer f.Close()

	result, err := o.run(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", input, err)
	}

	if err := output.NewFileWriter(outputPath, output.WithLogger(o.logger)).Write(result.Script); err != nil {
		return nil, fmt.Errorf("writing output: %w", err)
	}

	return result, nil
}

// resolve resolves the configured exclusions against doc.
func (o *options) resolve(doc *ass.Document) (filter.Selection, error) {
	sel := filter.Selection{
		Styles: filter.NewStyleSet(),
		Layers: filter.NewLayerSet(o.excludeLayers...),
		Kinds:  append([]string(nil), o.excludeKinds...),
	}

	if o.profile != "" {
		custom, err := o.customProfiles()
		if err != nil {
			return sel, err
		}

		p, err := filter.ResolveProfile(o.profile, custom)
		if err != nil {
			return sel, &selection.UsageError{Input: o.profile, Reason: err.Error()}
		}

		sel = sel.Merge(filter.SelectionFromProfile(p))
	}

	if len(o.excludeStyles) > 0 {
		styles, err := selection.ResolveStyleNames(o.excludeStyles, doc.Styles)
		if err != nil {
			return sel, err
		}

		sel = sel.Merge(filter.Selection{Styles: styles})
	}

	styles, err := selection.ParseStyleIndices(o.excludeStyleIndices, doc.Styles)
	if err != nil {
		return sel, err
	}

	return sel.Merge(filter.Selection{Styles: styles}), nil
}

func (o *options) customProfiles() (map[string]filter.ProfileConfig, error) {
	custom := make(map[string]filter.ProfileConfig)

	if o.profilesFile != "" {
		loaded, err := filter.LoadProfiles(o.profilesFile)
		if err != nil {
			return nil, err
		}

		for k, v := range loaded {
			custom[k] = v
		}
	}

	if len(o.profilesYAML) > 0 {
		parsed, err := filter.ParseProfiles(o.profilesYAML)
		if err != nil {
			return nil, err
		}

		for k, v := range parsed {
			custom[k] = v
		}
	}

	return custom, nil
}
