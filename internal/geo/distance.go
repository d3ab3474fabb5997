package geo

import (
	"math"

	"citymove/internal/domain/entities"
)

// EarthRadiusKm is the mean Earth radius used by DistanceKm.
const EarthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance between a and b in kilometres
// using the haversine formula.
//
// Inputs are not range-checked: out-of-range coordinates still produce a
// finite number, it just isn't meaningful. The result is symmetric in a and b
// and zero when they are the same point.
func DistanceKm(a, b entities.Location) float64 {
	return HaversineDistance(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
}

// HaversineDistance calculates the distance between two points in kilometers
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// Within reports whether p lies within radiusKm of origin. The boundary is
// inclusive.
func Within(origin, p entities.Location, radiusKm float64) bool {
	return DistanceKm(origin, p) <= radiusKm
}
