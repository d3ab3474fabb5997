package entities

// SortKey names the field a result list is ordered by.
type SortKey string

const (
	SortNone          SortKey = ""
	SortByPrice       SortKey = "price"
	SortByDuration    SortKey = "duration"
	SortByNextArrival SortKey = "nextAvailable"
)

// ParseSortKey accepts the canonical keys plus the "next_available" spelling
// used by the vehicles table. Unrecognised input is returned unchanged so that
// criteria validation can reject it.
func ParseSortKey(s string) SortKey {
	if s == "next_available" {
		return SortByNextArrival
	}
	return SortKey(s)
}

// Known reports whether k is empty or one of the recognised sort keys.
func (k SortKey) Known() bool {
	switch k {
	case SortNone, SortByPrice, SortByDuration, SortByNextArrival:
		return true
	}
	return false
}

// QueryCriteria is built by the caller for a single selection and never
// persisted. Nil pointers and empty strings mean "not set".
//
// Proximity mode requires both Origin and RadiusKm.
type QueryCriteria struct {
	Category *Category
	MaxPrice *float64
	SortBy   SortKey
	Origin   *Location
	RadiusKm *float64
	From     string
	To       string
}

// WithCategory returns a copy of c restricted to category.
func (c QueryCriteria) WithCategory(category Category) QueryCriteria {
	c.Category = &category
	return c
}

// WithMaxPrice returns a copy of c with an inclusive price ceiling.
func (c QueryCriteria) WithMaxPrice(max float64) QueryCriteria {
	c.MaxPrice = &max
	return c
}

// WithProximity returns a copy of c in proximity mode.
func (c QueryCriteria) WithProximity(origin Location, radiusKm float64) QueryCriteria {
	c.Origin = &origin
	c.RadiusKm = &radiusKm
	return c
}

// WithSort returns a copy of c ordered by key.
func (c QueryCriteria) WithSort(key SortKey) QueryCriteria {
	c.SortBy = key
	return c
}

// WithRoute returns a copy of c with a from/to text search.
func (c QueryCriteria) WithRoute(from, to string) QueryCriteria {
	c.From = from
	c.To = to
	return c
}
