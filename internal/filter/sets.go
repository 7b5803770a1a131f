package filter

import (
	"sort"
	"strconv"
	"strings"
)

// StyleSet is a set of style names to exclude.
type StyleSet map[string]struct{}

// NewStyleSet builds a set from names.
func NewStyleSet(names ...string) StyleSet {
	s := make(StyleSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}

	return s
}

// Has reports whether name is in the set. A nil set contains nothing.
func (s StyleSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Add inserts names into the set.
func (s StyleSet) Add(names ...string) {
	for _, n := range names {
		s[n] = struct{}{}
	}
}

// Sorted returns the names in lexical order.
func (s StyleSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}

	sort.Strings(out)

	return out
}

// String renders the set as a comma-separated list.
func (s StyleSet) String() string {
	return strings.Join(s.Sorted(), ",")
}

// LayerSet is a set of layer numbers to exclude.
type LayerSet map[int]struct{}

// NewLayerSet builds a set from layers.
func NewLayerSet(layers ...int) LayerSet {
	s := make(LayerSet, len(layers))
	for _, l := range layers {
		s[l] = struct{}{}
	}

	return s
}

// Has reports whether layer is in the set. A nil set contains nothing.
func (s LayerSet) Has(layer int) bool {
	_, ok := s[layer]
	return ok
}

// Add inserts layers into the set.
func (s LayerSet) Add(layers ...int) {
	for _, l := range layers {
		s[l] = struct{}{}
	}
}

// Sorted returns the layers in ascending order.
func (s LayerSet) Sorted() []int {
	out := make([]int, 0, len(s))
	for l := range s {
		out = append(out, l)
	}

	sort.Ints(out)

	return out
}

// String renders the set as a comma-separated list.
func (s LayerSet) String() string {
	sorted := s.Sorted()
	parts := make([]string, len(sorted))

	for i, l := range sorted {
		parts[i] = strconv.Itoa(l)
	}

	return strings.Join(parts, ",")
}
