package cli

import (
	"github.com/spf13/cobra"
)

// selectionOptions holds the non-interactive exclusion flags shared by the
// root command and watch.
type selectionOptions struct {
	excludeStyles       []string
	excludeStyleIndices string
	excludeLayers       string
}

// isSet reports whether any exclusion flag was given.
func (o *selectionOptions) isSet(cmd *cobra.Command) bool {
	for _, name := range []string{"exclude-styles", "exclude-style-indices", "exclude-layers", "profile"} {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			return true
		}
	}

	return false
}

// filterOptions are the flags of the root filter command.
type filterOptions struct {
	selectionOptions

	dryRun  bool
	diff    bool
	summary bool
}

// registerSelectionFlags adds the exclusion flags to a cobra command.
func registerSelectionFlags(cmd *cobra.Command, opts *selectionOptions) {
	f := cmd.Flags()
	f.StringSliceVar(&opts.excludeStyles, "exclude-styles", nil, "exclude events using these style names")
	f.StringVar(&opts.excludeStyleIndices, "exclude-style-indices", "", "exclude styles by index as listed by inspect (e.g. 0,2)")
	f.StringVar(&opts.excludeLayers, "exclude-layers", "", "exclude events on these layers (e.g. 0,5)")
	f.String("profile", "", "apply a named exclusion profile")
}

// registerOutputFlags adds the flags controlling what a filter run writes.
func registerOutputFlags(cmd *cobra.Command, opts *filterOptions) {
	f := cmd.Flags()
	f.BoolVar(&opts.dryRun, "dry-run", false, "do not write the output file")
	f.BoolVar(&opts.diff, "diff", false, "print a unified diff of the removed lines")
	f.BoolVar(&opts.summary, "summary", false, "print the number of kept and removed events")
}
