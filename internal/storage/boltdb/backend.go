package boltdb

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/localfirst/offsync/internal/storage"
)

// Get returns the stored value for (entityType, id).
func (s *Storage) Get(ctx context.Context, entityType, id string) ([]byte, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var value []byte

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := s.typeBucket(tx, entityType)
		if bucket == nil {
			return storage.ErrNotFound
		}

		data := bucket.Get([]byte(id))
		if data == nil {
			return storage.ErrNotFound
		}

		value = append([]byte(nil), data...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return value, nil
}

// GetAll returns all stored values for an entity type, keyed by id.
func (s *Storage) GetAll(ctx context.Context, entityType string) (map[string][]byte, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	values := make(map[string][]byte)

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := s.typeBucket(tx, entityType)
		if bucket == nil {
			return nil
		}

		return bucket.ForEach(func(k, v []byte) error {
			values[string(k)] = append([]byte(nil), v...)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}

	return values, nil
}

// Put stores or replaces the value for (entityType, id).
func (s *Storage) Put(ctx context.Context, entityType, id string, value []byte) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		entities := tx.Bucket(bucketEntities)
		if entities == nil {
			return fmt.Errorf("entities bucket missing")
		}

		bucket, err := entities.CreateBucketIfNotExists([]byte(entityType))
		if err != nil {
			return fmt.Errorf("failed to create type bucket: %w", err)
		}

		return bucket.Put([]byte(id), value)
	})
	if err != nil {
		return fmt.Errorf("failed to save entity: %w", err)
	}

	return nil
}

// Delete removes the value for (entityType, id). Missing values are ignored.
func (s *Storage) Delete(ctx context.Context, entityType, id string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := s.typeBucket(tx, entityType)
		if bucket == nil {
			return nil
		}
		return bucket.Delete([]byte(id))
	})
	if err != nil {
		return fmt.Errorf("failed to delete entity: %w", err)
	}

	return nil
}

// ClearCache removes only cache-class storage.
func (s *Storage) ClearCache(ctx context.Context) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketCache); err != nil && err != bbolt.ErrBucketNotFound {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketCache)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	return nil
}

// Clear removes everything including the entity mirror.
func (s *Storage) Clear(ctx context.Context) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketEntities, bucketCache} {
			if err := tx.DeleteBucket(name); err != nil && err != bbolt.ErrBucketNotFound {
				return err
			}
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to clear storage: %w", err)
	}

	return nil
}

// typeBucket returns the nested bucket for one entity type, or nil if it
// does not exist yet.
func (s *Storage) typeBucket(tx *bbolt.Tx, entityType string) *bbolt.Bucket {
	entities := tx.Bucket(bucketEntities)
	if entities == nil {
		return nil
	}
	return entities.Bucket([]byte(entityType))
}
