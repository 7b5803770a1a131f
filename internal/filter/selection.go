package filter

import "github.com/hupe1980/assfilter/internal/ass"

// Selection is a fully resolved set of exclusions.
type Selection struct {
	Styles StyleSet
	Layers LayerSet
	// Kinds lists event kinds to exclude. Empty by default.
	Kinds []string
}

// IsEmpty reports whether the selection excludes nothing.
func (s Selection) IsEmpty() bool {
	return len(s.Styles) == 0 && len(s.Layers) == 0 && len(s.Kinds) == 0
}

// Merge returns the union of s and other.
func (s Selection) Merge(other Selection) Selection {
	out := Selection{
		Styles: NewStyleSet(),
		Layers: NewLayerSet(),
		Kinds:  append(append([]string{}, s.Kinds...), other.Kinds...),
	}

	for n := range s.Styles {
		out.Styles.Add(n)
	}

	for n := range other.Styles {
		out.Styles.Add(n)
	}

	for l := range s.Layers {
		out.Layers.Add(l)
	}

	for l := range other.Layers {
		out.Layers.Add(l)
	}

	return out
}

// Chain builds the filter chain for the selection. Filters for empty
// dimensions are omitted.
func (s Selection) Chain() *Chain {
	var filters []Filter

	if len(s.Styles) > 0 {
		filters = append(filters, NewStyleFilter(s.Styles))
	}

	if len(s.Layers) > 0 {
		filters = append(filters, NewLayerFilter(s.Layers))
	}

	if len(s.Kinds) > 0 {
		filters = append(filters, NewKindFilter(s.Kinds))
	}

	return NewChain(filters...)
}

// Keep returns the events the selection keeps, in input order. It applies
// Events and then drops excluded kinds; the chain from Chain keeps the same
// events and also records why the others were removed.
func (s Selection) Keep(events []ass.Event) []ass.Event {
	kept := Events(events, s.Styles, s.Layers)
	if len(s.Kinds) == 0 {
		return kept
	}

	kinds := NewKindFilter(s.Kinds)
	out := kept[:0]

	for _, ev := range kept {
		if !kinds.Has(ev.Kind) {
			out = append(out, ev)
		}
	}

	return out
}
