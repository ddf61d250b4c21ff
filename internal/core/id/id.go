// Package id provides UUIDv7 identifiers for orders, tables and order lines.
// UUIDv7 is time-ordered, so order ids sort by creation time.
package id

import (
	"strings"

	"github.com/google/uuid"

	"restopos/internal/core/apperror"
)

// ID is a type alias for UUID, used across all entities.
type ID = uuid.UUID

// New generates a new UUIDv7.
func New() ID {
	v, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return v
}

// Token returns a random opaque token (UUIDv4 text), used for table QR codes.
func Token() string {
	return uuid.NewString()
}

// ShortRandom returns n lowercase hex characters of randomness (n <= 32).
func ShortRandom(n int) string {
	s := strings.ReplaceAll(uuid.NewString(), "-", "")
	if n > len(s) {
		n = len(s)
	}
	return s[:n]
}

// Parse converts string to ID with validation.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// ParseField parses s and reports a 400 naming field when it is not a UUID.
func ParseField(field, s string) (ID, error) {
	v, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, apperror.NewInvalidInput(field, field+" must be a valid UUID")
	}
	return v, nil
}

// MustParse converts string to ID, panics on error.
// Use only for constants and tests.
func MustParse(s string) ID {
	return uuid.MustParse(s)
}

// Nil returns zero-value UUID.
func Nil() ID {
	return uuid.Nil
}

// IsNil checks if ID is zero-value.
func IsNil(v ID) bool {
	return v == uuid.Nil
}
