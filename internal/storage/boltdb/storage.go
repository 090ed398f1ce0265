// Package boltdb implements the storage contracts on top of bbolt.
// Entities live in nested buckets under "entities" (one bucket per entity
// type), queued operations under "operations", cache-class data under
// "cache".
package boltdb

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"
)

var (
	// BoltDB bucket names
	bucketEntities   = []byte("entities")
	bucketOperations = []byte("operations")
	bucketCache      = []byte("cache")
)

// Storage is the bbolt-backed persistence layer of the engine. It
// implements storage.Backend and storage.OperationLog.
type Storage struct {
	db   *bbolt.DB
	path string
}

// New opens (or creates) the database file at dbPath and initializes the
// buckets.
func New(ctx context.Context, dbPath string) (*Storage, error) {
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	s := &Storage{db: db, path: dbPath}

	if err := s.initBuckets(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Storage) Path() string {
	return s.path
}

// initBuckets creates the required buckets if they do not exist.
func (s *Storage) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketEntities, bucketOperations, bucketCache} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", name, err)
			}
		}
		return nil
	})
}
