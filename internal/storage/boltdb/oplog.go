package boltdb

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/localfirst/offsync/internal/storage"
)

// PutOperation stores or replaces one queued operation.
func (s *Storage) PutOperation(ctx context.Context, id string, value []byte) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(bucketOperations)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(id), value)
	})
	if err != nil {
		return fmt.Errorf("failed to persist operation: %w", err)
	}

	return nil
}

// DeleteOperation removes one queued operation.
func (s *Storage) DeleteOperation(ctx context.Context, id string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketOperations)
		if bucket == nil {
			return nil
		}
		return bucket.Delete([]byte(id))
	})
	if err != nil {
		return fmt.Errorf("failed to delete operation: %w", err)
	}

	return nil
}

// ListOperations returns all persisted operations keyed by id.
func (s *Storage) ListOperations(ctx context.Context) (map[string][]byte, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	values := make(map[string][]byte)

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketOperations)
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, v []byte) error {
			values[string(k)] = append([]byte(nil), v...)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list operations: %w", err)
	}

	return values, nil
}

// ClearOperations removes all persisted operations.
func (s *Storage) ClearOperations(ctx context.Context) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketOperations); err != nil && err != bbolt.ErrBucketNotFound {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketOperations)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to clear operations: %w", err)
	}

	return nil
}
