package service

import (
	"sort"

	"github.com/bundlescout/bundlescout/internal/model"
)

// Match computes ranked alternative suggestions for the detected libraries.
// It is a pure function: it performs no I/O, never mutates its inputs, and
// may be called concurrently against the same catalog snapshot.
//
// Detected entries are processed in input order and deduplicated by name,
// first occurrence wins. An entry is skipped when its name is missing, not
// in the suggestion map, or unresolvable in the catalog — absent data is
// never an error. The detected version resolves against the catalog with a
// fallback to the latest alias. Only alternatives strictly smaller than the
// original survive, sorted ascending by gzip size; the stable sort keeps
// curator order on ties.
func Match(detected []model.DetectedLibrary, suggestions model.SuggestionMap, catalog *model.Catalog) []model.Pairing {
	var pairings []model.Pairing
	seen := make(map[string]bool, len(detected))

	for _, lib := range detected {
		if lib.Name == "" || seen[lib.Name] {
			continue
		}
		alternatives, ok := suggestions[lib.Name]
		if !ok {
			continue
		}
		seen[lib.Name] = true

		original, ok := catalog.Resolve(lib.Name, lib.Version)
		if !ok {
			continue
		}

		ranked := make([]model.RankedAlternative, 0, len(alternatives))
		for _, altName := range alternatives {
			alt, ok := catalog.Latest(altName)
			if !ok {
				continue
			}
			if alt.Gzip >= original.Gzip {
				continue
			}
			ranked = append(ranked, model.RankedAlternative{
				Record:  alt,
				Savings: original.Gzip - alt.Gzip,
			})
		}
		if len(ranked) == 0 {
			continue
		}

		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].Record.Gzip < ranked[j].Record.Gzip
		})

		pairings = append(pairings, model.Pairing{
			Original:     original,
			Alternatives: ranked,
		})
	}

	return pairings
}
