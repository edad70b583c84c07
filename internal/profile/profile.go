// Package profile holds the C++ type vocabulary the relationship inference
// heuristics depend on: which template bases count as containers, which as
// smart pointers, which smart pointers imply ownership, and which substrings
// are macro artifacts to scrub from extracted type text. Defaults cover the
// standard library; a YAML file can extend them per project.
package profile

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Profile is the keyword vocabulary used by type analysis.
type Profile struct {
	Containers     []string `yaml:"containers"`
	SmartPointers  []string `yaml:"smartPointers"`
	OwningPointers []string `yaml:"owningPointers"`
	MacroArtifacts []string `yaml:"macroArtifacts"`
}

// Default returns the built-in vocabulary.
func Default() *Profile {
	return &Profile{
		Containers: []string{
			"vector", "list", "deque", "set", "unordered_set",
			"map", "unordered_map", "array", "span", "tuple",
		},
		SmartPointers: []string{
			"unique_ptr", "shared_ptr", "weak_ptr", "scoped_ptr", "intrusive_ptr",
		},
		OwningPointers: []string{
			"unique_ptr", "scoped_ptr",
		},
		MacroArtifacts: []string{
			"__attribute__", "__declspec", "DLL_EXPORT", "Q_DECL_EXPORT",
		},
	}
}

// Load reads a YAML profile and merges it over the defaults. Lists in the
// file extend the built-in ones rather than replacing them. An empty path
// returns the defaults.
func Load(path string) (*Profile, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	var overlay Profile
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}
	p := Default()
	p.Containers = mergeKeywords(p.Containers, overlay.Containers)
	p.SmartPointers = mergeKeywords(p.SmartPointers, overlay.SmartPointers)
	p.OwningPointers = mergeKeywords(p.OwningPointers, overlay.OwningPointers)
	p.MacroArtifacts = mergeKeywords(p.MacroArtifacts, overlay.MacroArtifacts)
	return p, nil
}

// IsContainer reports whether a template base names a known container.
func (p *Profile) IsContainer(base string) bool {
	return matchKeyword(p.Containers, base)
}

// IsSmartPointer reports whether a template base names a known smart pointer.
func (p *Profile) IsSmartPointer(base string) bool {
	return matchKeyword(p.SmartPointers, base)
}

// IsOwningPointer reports whether a template base names an owning smart
// pointer (composite aggregation rather than shared).
func (p *Profile) IsOwningPointer(base string) bool {
	return matchKeyword(p.OwningPointers, base)
}

// matchKeyword matches the way the analyzer spells types in practice: either
// the bare keyword or a qualified spelling ending in it (std::vector).
func matchKeyword(keywords []string, base string) bool {
	if base == "" {
		return false
	}
	tail := base
	if i := strings.LastIndex(base, "::"); i >= 0 {
		tail = base[i+2:]
	}
	for _, k := range keywords {
		if tail == k || base == k {
			return true
		}
	}
	return false
}

func mergeKeywords(base, extra []string) []string {
	seen := make(map[string]struct{}, len(base))
	for _, k := range base {
		seen[k] = struct{}{}
	}
	for _, k := range extra {
		if k == "" {
			continue
		}
		if _, ok := seen[k]; !ok {
			base = append(base, k)
			seen[k] = struct{}{}
		}
	}
	return base
}
