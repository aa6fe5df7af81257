package nearby

import (
	"cmp"
	"slices"
	"strings"

	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

// ParseCandidates keeps elements that have both coordinates and a name, measures
// their distance from origin and returns at most limit of them, nearest first.
func ParseCandidates(origin types.Location, elements []Element, limit int) []types.PlaceCandidate {
	candidates := make([]types.PlaceCandidate, 0, len(elements))
	for _, el := range elements {
		pos, ok := el.Coordinates()
		if !ok {
			continue
		}
		name := strings.TrimSpace(el.Tags["name"])
		if name == "" {
			continue
		}
		candidates = append(candidates, types.PlaceCandidate{
			Name:       name,
			Category:   el.Category(),
			DistanceKm: roundKm(Haversine(origin, pos)),
			Lat:        pos.Lat,
			Lon:        pos.Lon,
		})
	}

	slices.SortStableFunc(candidates, func(a, b types.PlaceCandidate) int {
		return cmp.Compare(a.DistanceKm, b.DistanceKm)
	})
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}
