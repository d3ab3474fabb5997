// Package utils provides shared utility functions used across the application.
//
// Go Learning Note — "pkg/" Directory Convention:
// Code under pkg/ is intended to be importable by external projects (unlike
// internal/ which is compiler-enforced private). This is a community convention,
// not a Go language feature.
package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateID creates a new UUID v4 string for use as an entity identifier.
//
// Go Learning Note — "github.com/google/uuid":
// uuid.New() creates a v4 (random) UUID like
// "550e8400-e29b-41d4-a716-446655440000". UUIDs can be generated without
// coordination, which suits user IDs created on any API instance.
func GenerateID() string {
	return uuid.New().String()
}

// GenerateToken returns an opaque bearer token: two random UUIDs with the
// dashes stripped, 64 hex characters in total.
func GenerateToken() (string, error) {
	a, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	b, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(a.String()+b.String(), "-", ""), nil
}

// NormalizeEmail trims surrounding space and lower-cases an address so it can
// be used as a lookup key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
