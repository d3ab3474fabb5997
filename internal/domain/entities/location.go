package entities

// Location represents a geographic coordinate pair (latitude/longitude) in
// degrees.
//
// Go Learning Note — Value Types vs Reference Types:
// Location is a small, immutable data holder. NewLocation returns it by value
// (not a pointer), which is idiomatic for small structs. Value types are copied
// on assignment, which is fine here since Location is only 16 bytes (two float64s).
//
// The json tags match the "current_location" column of the vehicles table:
// {"lat": 12.97, "lng": 77.59}.
type Location struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// NewLocation creates a Location value from latitude and longitude.
func NewLocation(lat, lng float64) Location {
	return Location{
		Latitude:  lat,
		Longitude: lng,
	}
}
