package types

import (
	"time"

	"github.com/google/uuid"
)

// SearchEvent records one nearby lookup. It never contains conversation text.
type SearchEvent struct {
	ID            uuid.UUID     `json:"id"`
	Lat           float64       `json:"lat"`
	Lon           float64       `json:"lon"`
	RadiusMeters  float64       `json:"radius_meters"`
	Category      PlaceCategory `json:"category"`
	DietaryFilter DietaryFilter `json:"dietary_filter,omitempty"`
	ResultCount   int           `json:"result_count"`
	CreatedAt     time.Time     `json:"created_at"`
}

type CategorySearchCount struct {
	Category PlaceCategory `json:"category"`
	Total    int           `json:"total"`
}
