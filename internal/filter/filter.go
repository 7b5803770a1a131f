package filter

import (
	"context"

	"github.com/hupe1980/assfilter/internal/ass"
)

// Filter is the interface for all event filters.
// Filters are stateless: they receive a sequence of events and return
// a result without modifying the events or shared state.
type Filter interface {
	// Apply runs the filter on the given events and returns a result.
	// Included events keep their input order.
	Apply(ctx context.Context, events []ass.Event) (*Result, error)
}

// ExcludedEvent records an event that was removed by a filter.
type ExcludedEvent struct {
	// Event is the removed event.
	Event ass.Event
	// Reason is a human-readable explanation for the exclusion.
	Reason string
}

// Result holds the outcome of a filter application.
type Result struct {
	// Included are the events that passed the filter, in input order.
	Included []ass.Event
	// Excluded are the removed events, grouped by the filter that removed
	// them and in input order within each group.
	Excluded []ExcludedEvent
}

// NewResult creates an empty Result.
func NewResult() *Result {
	return &Result{Included: []ass.Event{}}
}

// Chain applies multiple filters sequentially, passing the included
// events from each filter as input to the next. An event survives the
// chain only if every filter keeps it.
type Chain struct {
	filters []Filter
}

// NewChain creates a filter chain from the given filters.
func NewChain(filters ...Filter) *Chain {
	return &Chain{filters: filters}
}

// Len returns the number of filters in the chain.
func (c *Chain) Len() int {
	return len(c.filters)
}

// Apply runs all filters in order, accumulating excluded events.
func (c *Chain) Apply(ctx context.Context, events []ass.Event) (*Result, error) {
	combined := NewResult()
	current := append([]ass.Event{}, events...)

	for _, f := range c.filters {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		r, err := f.Apply(ctx, current)
		if err != nil {
			return nil, err
		}

		current = r.Included

		combined.Excluded = append(combined.Excluded, r.Excluded...)
	}

	combined.Included = current

	return combined, nil
}

// Events returns the events whose style is not in styles and whose layer is
// not in layers, preserving order. Empty sets exclude nothing. The input
// slice and its events are left untouched.
func Events(events []ass.Event, styles StyleSet, layers LayerSet) []ass.Event {
	out := make([]ass.Event, 0, len(events))

	for _, ev := range events {
		if styles.Has(ev.Style) || layers.Has(ev.Layer) {
			continue
		}

		out = append(out, ev)
	}

	return out
}
