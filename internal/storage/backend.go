// Package storage defines the persistence contracts the sync engine depends
// on. The engine never touches a concrete storage technology directly; the
// bbolt implementation lives in the boltdb subpackage.
package storage

import "context"

//go:generate moq -out backend_mock.go . Backend

// Backend is a per-entity-type key-value store. Values are opaque encoded
// entities keyed by id.
type Backend interface {
	// Get returns the stored value for (entityType, id).
	// Returns ErrNotFound if no value exists.
	Get(ctx context.Context, entityType, id string) ([]byte, error)

	// GetAll returns all stored values for an entity type, keyed by id.
	GetAll(ctx context.Context, entityType string) (map[string][]byte, error)

	// Put stores or replaces the value for (entityType, id).
	Put(ctx context.Context, entityType, id string, value []byte) error

	// Delete removes the value for (entityType, id). Deleting a missing
	// value is a no-op.
	Delete(ctx context.Context, entityType, id string) error

	// ClearCache removes only cache-class storage.
	ClearCache(ctx context.Context) error

	// Clear removes everything including the entity mirror, forcing a
	// full resync.
	Clear(ctx context.Context) error
}

//go:generate moq -out oplog_mock.go . OperationLog

// OperationLog persists queued sync operations so the queue survives
// restarts. Values are opaque encoded operations keyed by operation id.
type OperationLog interface {
	// PutOperation stores or replaces one queued operation.
	PutOperation(ctx context.Context, id string, value []byte) error

	// DeleteOperation removes one queued operation.
	DeleteOperation(ctx context.Context, id string) error

	// ListOperations returns all persisted operations keyed by id.
	ListOperations(ctx context.Context) (map[string][]byte, error)

	// ClearOperations removes all persisted operations.
	ClearOperations(ctx context.Context) error
}
