package nearby

import (
	"math"

	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

const earthRadiusKm = 6371

// Haversine returns the great-circle distance between a and b in kilometers.
func Haversine(a, b types.Location) float64 {
	lat1 := a.Lat * math.Pi / 180
	lon1 := a.Lon * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	lon2 := b.Lon * math.Pi / 180

	dlat := lat2 - lat1
	dlon := lon2 - lon1

	h := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

func roundKm(km float64) float64 {
	return math.Round(km*100) / 100
}
