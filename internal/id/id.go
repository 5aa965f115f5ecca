package id

import (
	"fmt"

	"github.com/google/uuid"
)

// New returns a fresh record ID (a random UUID).
func New() string {
	return uuid.NewString()
}

// Parse normalises a record ID. Mixed-case and braced forms are accepted.
func Parse(s string) (string, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid record ID %q: %w", s, err)
	}
	return u.String(), nil
}

// Valid reports whether s is a well-formed record ID.
func Valid(s string) bool {
	return uuid.Validate(s) == nil
}

// Short returns the first 8 characters of an ID, for table output.
// "0b6f4f0e-2c1d-4e8a-9c3b-1f2e3d4c5b6a" -> "0b6f4f0e"
func Short(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
