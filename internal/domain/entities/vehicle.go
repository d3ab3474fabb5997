// Package entities defines the core domain models for the transport discovery
// service. These structs represent the business concepts (Vehicle, criteria,
// User, Session, Preferences) and live in the innermost layer of the
// architecture — they have no dependencies on databases, HTTP, or message
// brokers.
//
// Go Learning Note — "internal/" directory:
// Packages under internal/ cannot be imported by code outside this module. Go
// enforces this at the compiler level.
package entities

import "time"

// Category is a typed string enum for the kind of transport a vehicle offers.
//
// Go Learning Note — Type Aliases for Enums:
// Go doesn't have a native enum keyword. The idiomatic pattern is to define a
// named type and declare constants of that type. String-based enums are
// preferred when the value will be serialized to JSON or stored in a database.
type Category string

const (
	CategoryBus  Category = "bus"
	CategoryAuto Category = "auto"
	CategoryCab  Category = "cab"

	// CategoryUnknown is what ParseCategory returns for anything outside the
	// closed set. A Vehicle may still carry the raw unrecognised value.
	CategoryUnknown Category = "unknown"
)

// Categories lists the known categories in display order.
var Categories = []Category{CategoryBus, CategoryAuto, CategoryCab}

// Known reports whether c is one of bus, auto or cab. The comparison is
// case-sensitive.
func (c Category) Known() bool {
	switch c {
	case CategoryBus, CategoryAuto, CategoryCab:
		return true
	}
	return false
}

// ParseCategory maps s onto the closed set, returning CategoryUnknown for
// anything else.
func ParseCategory(s string) Category {
	c := Category(s)
	if c.Known() {
		return c
	}
	return CategoryUnknown
}

// Vehicle is one transport offering at a point in time. Duration and
// NextAvailable are human-readable ("25 mins"); the search package extracts
// their leading integer when ranking.
type Vehicle struct {
	ID            string    `json:"id"`
	Category      Category  `json:"type"`
	Name          string    `json:"name"`
	Route         string    `json:"route"`
	Position      Location  `json:"current_location"`
	Stands        []string  `json:"stands"`
	Price         float64   `json:"price"`
	Duration      string    `json:"duration"`
	NextAvailable string    `json:"next_available"`
	UpdatedAt     time.Time `json:"updated_at,omitempty"`
}

// Clone returns a deep copy so callers can hand out vehicles without sharing
// the Stands backing array.
func (v Vehicle) Clone() Vehicle {
	out := v
	if v.Stands != nil {
		out.Stands = append([]string(nil), v.Stands...)
	}
	return out
}

// MoveTo updates the vehicle's position and records the change timestamp.
func (v *Vehicle) MoveTo(loc Location) {
	v.Position = loc
	v.UpdatedAt = time.Now()
}
