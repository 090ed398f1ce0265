package storage

import "errors"

// Common storage errors
var (
	// ErrNotFound indicates that no value exists for the requested key
	ErrNotFound = errors.New("entity not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
