package storage

import "errors"

// Sentinel errors for storage operations.
var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when an insert or update violates a
	// uniqueness constraint.
	ErrConflict = errors.New("record already exists")
)
