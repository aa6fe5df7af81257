package types

// Location is a WGS84 coordinate pair.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// PlaceCandidate is a single nearby place returned by the resolver.
// Name is never empty and DistanceKm is rounded to two decimals.
type PlaceCandidate struct {
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	DistanceKm float64 `json:"distance_km"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
}

type PlaceCategory string

const (
	CategoryGeneric     PlaceCategory = "generic"
	CategoryTouristSpot PlaceCategory = "touristSpot"
	CategoryHotel       PlaceCategory = "hotel"
	CategoryRestaurant  PlaceCategory = "restaurant"
	CategoryTransport   PlaceCategory = "transport"
	CategoryMedical     PlaceCategory = "medical"
)

type DietaryFilter string

const (
	DietaryNone       DietaryFilter = ""
	DietaryVegetarian DietaryFilter = "vegetarian"
)

// QueryIntent is derived per message and never stored.
type QueryIntent struct {
	Category      PlaceCategory `json:"category"`
	DietaryFilter DietaryFilter `json:"dietary_filter,omitempty"`
}

// Label is the plural, human readable name used in replies.
func (q QueryIntent) Label() string {
	switch q.Category {
	case CategoryTouristSpot:
		return "tourist attractions"
	case CategoryHotel:
		return "hotels"
	case CategoryRestaurant:
		if q.DietaryFilter == DietaryVegetarian {
			return "vegetarian restaurants"
		}
		return "restaurants"
	case CategoryTransport:
		return "transport options"
	case CategoryMedical:
		return "medical facilities"
	default:
		return "places"
	}
}
