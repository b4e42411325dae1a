package storage

import "errors"

// Common storage errors.
var (
	// ErrNotFound is returned when a description is not found.
	ErrNotFound = errors.New("description not found")

	// ErrUnknownMode is returned when no bucket exists for a mode.
	ErrUnknownMode = errors.New("no bucket for mode")
)
