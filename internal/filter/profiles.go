package filter

import (
	"fmt"
	"os"
	"sort"

	"sigs.k8s.io/yaml"

	"github.com/hupe1980/assfilter/internal/ass"
)

// ProfileConfig describes a reusable set of exclusion rules that can be
// applied by name via --profile. Styles are named rather than indexed
// because style indices differ from script to script.
type ProfileConfig struct {
	// ExcludeStyles lists style names to exclude.
	ExcludeStyles []string `json:"excludeStyles,omitempty"`
	// ExcludeLayers lists layer numbers to exclude.
	ExcludeLayers []int `json:"excludeLayers,omitempty"`
	// ExcludeKinds lists event kinds to exclude (e.g. Comment).
	ExcludeKinds []string `json:"excludeKinds,omitempty"`
	// Extends names another profile to extend with these additional rules.
	Extends string `json:"extends,omitempty"`
}

// builtinProfiles contains the built-in profile definitions.
var builtinProfiles = map[string]ProfileConfig{
	"no-comments": {
		ExcludeKinds: []string{ass.KindComment},
	},
	"dialogue-only": {
		ExcludeKinds: []string{
			ass.KindComment, ass.KindPicture, ass.KindSound,
			ass.KindMovie, ass.KindCommand,
		},
	},
}

// BuiltinProfileNames returns the names of all built-in profiles, sorted.
func BuiltinProfileNames() []string {
	names := make([]string, 0, len(builtinProfiles))
	for name := range builtinProfiles {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// ResolveProfile resolves a profile name to its configuration. Custom
// profiles shadow built-in ones of the same name. A profile that extends
// another is merged on top of it; cycles are reported as errors.
func ResolveProfile(name string, custom map[string]ProfileConfig) (ProfileConfig, error) {
	return resolveProfile(name, custom, map[string]bool{})
}

func resolveProfile(name string, custom map[string]ProfileConfig, seen map[string]bool) (ProfileConfig, error) {
	if seen[name] {
		return ProfileConfig{}, fmt.Errorf("profile %q is part of an extends cycle", name)
	}

	seen[name] = true

	p, ok := custom[name]
	if !ok {
		p, ok = builtinProfiles[name]
	}

	if !ok {
		return ProfileConfig{}, fmt.Errorf("unknown profile %q", name)
	}

	if p.Extends == "" {
		return p, nil
	}

	base, err := resolveProfile(p.Extends, custom, seen)
	if err != nil {
		return ProfileConfig{}, fmt.Errorf("profile %q: %w", name, err)
	}

	return mergeProfiles(base, p), nil
}

// mergeProfiles merges an extension profile on top of a base profile.
func mergeProfiles(base, ext ProfileConfig) ProfileConfig {
	return ProfileConfig{
		ExcludeStyles: append(append([]string{}, base.ExcludeStyles...), ext.ExcludeStyles...),
		ExcludeLayers: append(append([]int{}, base.ExcludeLayers...), ext.ExcludeLayers...),
		ExcludeKinds:  append(append([]string{}, base.ExcludeKinds...), ext.ExcludeKinds...),
	}
}

// SelectionFromProfile converts a resolved profile into a Selection.
func SelectionFromProfile(p ProfileConfig) Selection {
	return Selection{
		Styles: NewStyleSet(p.ExcludeStyles...),
		Layers: NewLayerSet(p.ExcludeLayers...),
		Kinds:  append([]string(nil), p.ExcludeKinds...),
	}
}

// LoadProfiles loads custom profile definitions from a YAML file.
// The file should contain a top-level "profiles" key.
func LoadProfiles(path string) (map[string]ProfileConfig, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is user-provided config file
	if err != nil {
		return nil, fmt.Errorf("reading profiles file: %w", err)
	}

	return ParseProfiles(data)
}

// ParseProfiles parses profile definitions from YAML bytes.
func ParseProfiles(data []byte) (map[string]ProfileConfig, error) {
	var raw struct {
		Profiles map[string]ProfileConfig `json:"profiles"`
	}

	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing profiles: %w", err)
	}

	if raw.Profiles == nil {
		return make(map[string]ProfileConfig), nil
	}

	return raw.Profiles, nil
}
