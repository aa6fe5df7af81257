package nearby

import (
	"fmt"
	"strings"

	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

var elementKinds = []string{"node", "way", "relation"}

// tagFilters returns the Overpass tag selectors for an intent. Each selector is
// OR-ed with the others.
func tagFilters(q types.QueryIntent) []string {
	switch q.Category {
	case types.CategoryTouristSpot:
		return []string{
			`["tourism"~"attraction|museum|viewpoint|monument|gallery|zoo|theme_park"]`,
			`["historic"]`,
		}
	case types.CategoryHotel:
		return []string{`["tourism"~"hotel|hostel|guest_house|motel|apartment"]`}
	case types.CategoryRestaurant:
		food := `["amenity"~"restaurant|cafe|fast_food|food_court"]`
		if q.DietaryFilter == types.DietaryVegetarian {
			food += `["diet:vegetarian"~"yes|only"]`
		}
		return []string{food}
	case types.CategoryTransport:
		return []string{
			`["amenity"="bus_station"]`,
			`["railway"="station"]`,
			`["highway"="bus_stop"]`,
			`["public_transport"="station"]`,
		}
	case types.CategoryMedical:
		return []string{`["amenity"~"hospital|clinic|pharmacy|doctors"]`}
	default:
		return []string{
			`["tourism"]`,
			`["amenity"~"restaurant|cafe|hospital|pharmacy|bus_station"]`,
		}
	}
}

// BuildQuery renders the Overpass QL query for places around origin.
func BuildQuery(origin types.Location, radiusMeters float64, q types.QueryIntent) string {
	around := fmt.Sprintf("(around:%.0f,%.6f,%.6f)", radiusMeters, origin.Lat, origin.Lon)

	var b strings.Builder
	b.WriteString("[out:json][timeout:25];\n(\n")
	for _, filter := range tagFilters(q) {
		for _, kind := range elementKinds {
			fmt.Fprintf(&b, "  %s%s%s;\n", kind, filter, around)
		}
	}
	b.WriteString(");\nout center;")
	return b.String()
}
