package filter

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/assfilter/internal/ass"
)

// StyleFilter excludes events whose style matches any of the specified names.
// Matching is exact: style names in ASS scripts are case-sensitive.
type StyleFilter struct {
	styles StyleSet
}

// NewStyleFilter creates a filter that excludes events referencing any of the
// given style names.
func NewStyleFilter(styles StyleSet) *StyleFilter {
	return &StyleFilter{styles: styles}
}

// Apply filters out events whose style matches.
func (f *StyleFilter) Apply(_ context.Context, events []ass.Event) (*Result, error) {
	r := NewResult()

	for _, ev := range events {
		if f.styles.Has(ev.Style) {
			r.Excluded = append(r.Excluded, ExcludedEvent{
				Event:  ev,
				Reason: fmt.Sprintf("excluded by style: %s", ev.Style),
			})
		} else {
			r.Included = append(r.Included, ev)
		}
	}

	return r, nil
}

// LayerFilter excludes events on any of the specified layers.
type LayerFilter struct {
	layers LayerSet
}

// NewLayerFilter creates a filter that excludes events on the given layers.
// Layers that no event uses are harmless.
func NewLayerFilter(layers LayerSet) *LayerFilter {
	return &LayerFilter{layers: layers}
}

// Apply filters out events whose layer matches.
func (f *LayerFilter) Apply(_ context.Context, events []ass.Event) (*Result, error) {
	r := NewResult()

	for _, ev := range events {
		if f.layers.Has(ev.Layer) {
			r.Excluded = append(r.Excluded, ExcludedEvent{
				Event:  ev,
				Reason: fmt.Sprintf("excluded by layer: %d", ev.Layer),
			})
		} else {
			r.Included = append(r.Included, ev)
		}
	}

	return r, nil
}

// KindFilter excludes events of the given kinds, e.g. Comment lines.
type KindFilter struct {
	kinds map[string]bool
}

// NewKindFilter creates a filter that excludes events whose kind matches any
// of kinds. Matching is case-insensitive.
func NewKindFilter(kinds []string) *KindFilter {
	m := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		m[strings.ToLower(k)] = true
	}

	return &KindFilter{kinds: m}
}

// Has reports whether events of kind are excluded.
func (f *KindFilter) Has(kind string) bool {
	return f.kinds[strings.ToLower(kind)]
}

// Apply filters out events whose kind matches.
func (f *KindFilter) Apply(_ context.Context, events []ass.Event) (*Result, error) {
	r := NewResult()

	for _, ev := range events {
		if f.Has(ev.Kind) {
			r.Excluded = append(r.Excluded, ExcludedEvent{
				Event:  ev,
				Reason: fmt.Sprintf("excluded by kind: %s", ev.Kind),
			})
		} else {
			r.Included = append(r.Included, ev)
		}
	}

	return r, nil
}
