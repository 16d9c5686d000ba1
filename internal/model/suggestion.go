package model

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// SuggestionMap associates an oversized package name with the curated,
// ordered list of smaller alternatives. The order is curator intent, not a
// computed rank. The map is loaded once at startup and never mutated.
type SuggestionMap map[string][]string

// LoadSuggestions reads and validates a suggestion map from a YAML file of
// the shape {oversizedName: [alternative, ...]}.
func LoadSuggestions(path string) (SuggestionMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read suggestion map: %w", err)
	}
	var m SuggestionMap
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse suggestion map: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks the structural invariants of the map. A malformed map is
// a deployment defect, so callers should fail fast on error.
func (m SuggestionMap) Validate() error {
	if len(m) == 0 {
		return fmt.Errorf("suggestion map is empty")
	}
	for name, alts := range m {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("suggestion map contains an empty package name")
		}
		if len(alts) == 0 {
			return fmt.Errorf("suggestion map entry %q has no alternatives", name)
		}
		for _, alt := range alts {
			if strings.TrimSpace(alt) == "" {
				return fmt.Errorf("suggestion map entry %q contains an empty alternative", name)
			}
		}
	}
	return nil
}

// ScrapeSet returns the deduplicated union of every oversized name and every
// alternative, sorted so builder runs visit packages in a fixed order.
func (m SuggestionMap) ScrapeSet() []string {
	seen := make(map[string]bool, len(m))
	for name, alts := range m {
		seen[name] = true
		for _, alt := range alts {
			seen[alt] = true
		}
	}
	set := make([]string, 0, len(seen))
	for name := range seen {
		set = append(set, name)
	}
	sort.Strings(set)
	return set
}

// IsOriginal reports whether name is tracked as an oversized package, which
// decides whether the builder scrapes its recent version history or only
// its latest release.
func (m SuggestionMap) IsOriginal(name string) bool {
	_, ok := m[name]
	return ok
}
