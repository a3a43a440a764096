package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when an entity with the same key already exists
	ErrConflict = errors.New("conflict: entity already exists")

	// ErrCorrupt is returned when a stored record can't be decoded.
	// Callers discard the record and fall back to defaults.
	ErrCorrupt = errors.New("stored record is corrupt")
)
