// Package store holds what every ticket store backend shares.
package store

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDuplicateTicket is returned when a ticket id is already stored
	ErrDuplicateTicket = errors.New("ticket id already exists")
	// ErrDimensionMismatch is returned when a vector does not fit the store
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// CheckDimensions rejects vectors whose length differs from the store's
func CheckDimensions(vector []float32, want int) error {
	if len(vector) != want {
		return fmt.Errorf("%w: got %d, store expects %d", ErrDimensionMismatch, len(vector), want)
	}
	return nil
}

// IsDuplicateKeyError reports whether a driver error is a unique key violation.
// Both PostgreSQL and MySQL mention "duplicate" in their messages.
func IsDuplicateKeyError(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "duplicate")
}
