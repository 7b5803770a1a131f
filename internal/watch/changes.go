package watch

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Change describes a style or layer that appeared in or disappeared from
// the watched script between two consecutive runs.
type Change struct {
	// Kind is "added" or "removed".
	Kind string
	// Dimension is "style" or "layer".
	Dimension string
	// Value is the style name or layer number.
	Value string
}

// Snapshot captures the styles and layers seen in one run.
type Snapshot struct {
	Styles []string
	Layers []int
}

// Diff compares two snapshots and returns the changes, sorted.
func Diff(prev, curr Snapshot) []Change {
	var changes []Change

	changes = append(changes, diffSets("style", prev.Styles, curr.Styles)...)
	changes = append(changes, diffSets("layer", intsToStrings(prev.Layers), intsToStrings(curr.Layers))...)

	sort.SliceStable(changes, func(i, j int) bool {
		if changes[i].Dimension != changes[j].Dimension {
			return changes[i].Dimension > changes[j].Dimension // styles first
		}

		if changes[i].Kind != changes[j].Kind {
			return changes[i].Kind < changes[j].Kind
		}

		return changes[i].Value < changes[j].Value
	})

	return changes
}

// ChangeSummary renders changes as a compact one-line summary, e.g.
// "+style Title, -layer 3".
func ChangeSummary(changes []Change) string {
	parts := make([]string, 0, len(changes))

	for _, c := range changes {
		sign := "+"
		if c.Kind == "removed" {
			sign = "-"
		}

		parts = append(parts, fmt.Sprintf("%s%s %s", sign, c.Dimension, c.Value))
	}

	return strings.Join(parts, ", ")
}

func diffSets(dimension string, prev, curr []string) []Change {
	prevSet := make(map[string]bool, len(prev))
	for _, v := range prev {
		prevSet[v] = true
	}

	currSet := make(map[string]bool, len(curr))
	for _, v := range curr {
		currSet[v] = true
	}

	var changes []Change

	for v := range prevSet {
		if !currSet[v] {
			changes = append(changes, Change{Kind: "removed", Dimension: dimension, Value: v})
		}
	}

	for v := range currSet {
		if !prevSet[v] {
			changes = append(changes, Change{Kind: "added", Dimension: dimension, Value: v})
		}
	}

	return changes
}

func intsToStrings(in []int) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strconv.Itoa(v)
	}

	return out
}
