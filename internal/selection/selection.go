// Package selection turns the user's answers into exclusion sets and
// computes the candidates offered to the user.
package selection

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/hupe1980/assfilter/internal/ass"
	"github.com/hupe1980/assfilter/internal/filter"
)

// None is the answer that selects nothing for exclusion.
const None = "none"

// UsageError reports input the user typed or passed that cannot be resolved.
type UsageError struct {
	Input  string
	Reason string
	// Err is the underlying cause, if any.
	Err error
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("invalid selection %q: %s", e.Input, e.Reason)
}

func (e *UsageError) Unwrap() error { return e.Err }

// IsUsage reports whether err is or wraps a *UsageError.
func IsUsage(err error) bool {
	var u *UsageError
	return errors.As(err, &u)
}

// IsNone reports whether input selects nothing: it is empty or "none"
// after trimming whitespace.
func IsNone(input string) bool {
	s := strings.TrimSpace(input)
	return s == "" || s == None
}

// ParseStyleIndices resolves a comma-separated list of indices into styles
// to the set of style names at those positions.
func ParseStyleIndices(input string, styles []ass.Style) (filter.StyleSet, error) {
	set := filter.NewStyleSet()
	if IsNone(input) {
		return set, nil
	}

	indices, err := parseInts(input)
	if err != nil {
		return nil, err
	}

	for _, i := range indices {
		if i < 0 || i >= len(styles) {
			return nil, &UsageError{
				Input:  input,
				Reason: fmt.Sprintf("style index %d out of range [0, %d)", i, len(styles)),
			}
		}

		set.Add(styles[i].Name)
	}

	return set, nil
}

// ParseLayers resolves a comma-separated list of layer numbers. Layers that
// no event uses are accepted; they simply exclude nothing.
func ParseLayers(input string) (filter.LayerSet, error) {
	set := filter.NewLayerSet()
	if IsNone(input) {
		return set, nil
	}

	layers, err := parseInts(input)
	if err != nil {
		return nil, err
	}

	set.Add(layers...)

	return set, nil
}

// ResolveStyleNames checks that every name refers to a style of the
// document and returns them as a set.
func ResolveStyleNames(names []string, styles []ass.Style) (filter.StyleSet, error) {
	known := make(map[string]bool, len(styles))
	for _, s := range styles {
		known[s.Name] = true
	}

	set := filter.NewStyleSet()

	for _, n := range names {
		if !known[n] {
			return nil, &UsageError{Input: n, Reason: "no style with that name"}
		}

		set.Add(n)
	}

	return set, nil
}

// CandidateLayers returns the distinct layers used by events, ascending.
func CandidateLayers(events []ass.Event) []int {
	set := filter.NewLayerSet()
	for _, ev := range events {
		set.Add(ev.Layer)
	}

	return set.Sorted()
}

// CountByStyle returns how many events reference each style name.
func CountByStyle(events []ass.Event) map[string]int {
	counts := make(map[string]int)
	for _, ev := range events {
		counts[ev.Style]++
	}

	return counts
}

// CountByLayer returns how many events sit on each layer.
func CountByLayer(events []ass.Event) map[int]int {
	counts := make(map[int]int)
	for _, ev := range events {
		counts[ev.Layer]++
	}

	return counts
}

func parseInts(input string) ([]int, error) {
	parts := strings.Split(input, ",")
	out := make([]int, 0, len(parts))

	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, &UsageError{
				Input:  input,
				Reason: fmt.Sprintf("%q is not an integer", strings.TrimSpace(p)),
			}
		}

		out = append(out, n)
	}

	sort.Ints(out)

	return out, nil
}
