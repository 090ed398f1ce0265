// Package store implements the versioned, hashed, type-partitioned entity
// store. Every local save bumps the version, recomputes the content digest
// and enqueues a sync operation unless the write is explicitly a remote
// apply.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/localfirst/offsync/internal/clock"
	"github.com/localfirst/offsync/internal/digest"
	"github.com/localfirst/offsync/internal/events"
	"github.com/localfirst/offsync/internal/models"
	"github.com/localfirst/offsync/internal/storage"
	"github.com/localfirst/offsync/internal/validation"
)

// Enqueuer accepts sync operations produced by local mutations. Implemented
// by queue.Queue.
type Enqueuer interface {
	Add(ctx context.Context, op *models.SyncOperation) error
}

// EntityStore is the local-first persistence layer for domain entities.
type EntityStore struct {
	backend storage.Backend
	queue   Enqueuer
	clock   clock.Clock
	bus     *events.Bus
	logger  *slog.Logger

	// mu serializes mutation bookkeeping so version/hash updates never
	// interleave between two writers of the same entity.
	mu sync.Mutex
}

// New creates an entity store over the given persistence backend.
func New(backend storage.Backend, queue Enqueuer, clk clock.Clock, bus *events.Bus, logger *slog.Logger) *EntityStore {
	return &EntityStore{
		backend: backend,
		queue:   queue,
		clock:   clk,
		bus:     bus,
		logger:  logger,
	}
}

// Save validates and persists an entity. The version increments by exactly
// 1, the hash is recomputed, the entity is marked dirty and an update (or
// create) operation is enqueued. Storage failures surface synchronously to
// the caller and are never retried internally.
func (s *EntityStore) Save(ctx context.Context, e *models.Entity) error {
	return s.save(ctx, e, true)
}

// ApplyRemote persists an entity that already reflects the remote state
// (pulled data or a resolved conflict pointing at remote). The version
// still increments and the hash is recomputed, but the entity is marked
// synced and no operation is enqueued.
func (s *EntityStore) ApplyRemote(ctx context.Context, e *models.Entity) error {
	return s.save(ctx, e, false)
}

func (s *EntityStore) save(ctx context.Context, e *models.Entity, enqueue bool) error {
	if err := validation.Entity(e); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()

	existing, err := s.load(ctx, e.Type, e.ID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to load current entity: %w", err)
	}

	hash, size, err := digest.Sum(e.Data)
	if err != nil {
		return fmt.Errorf("failed to hash entity data: %w", err)
	}

	isNew := existing == nil

	if isNew {
		e.Metadata.CreatedAt = now
		e.Metadata.Version = 1
	} else {
		e.Metadata.CreatedAt = existing.Metadata.CreatedAt
		e.Metadata.Version = existing.Metadata.Version + 1
		e.Metadata.LastSynced = existing.Metadata.LastSynced
		if e.SyncState.RemoteVersion == nil {
			// Inherit the acknowledged remote version unless the caller
			// (conflict resolution) pinned a newer one explicitly.
			e.SyncState.RemoteVersion = existing.SyncState.RemoteVersion
		}
	}
	e.Metadata.UpdatedAt = now
	e.Metadata.Hash = hash
	e.Metadata.Size = size
	e.SyncState.LocalVersion = e.Metadata.Version

	if enqueue {
		if e.Metadata.Source == "" {
			e.Metadata.Source = models.SourceLocal
		}
		if isNew {
			e.SyncState.Status = models.EntityStatusNew
		} else {
			e.SyncState.Status = models.EntityStatusDirty
		}
	} else {
		e.SyncState.Status = models.EntityStatusSynced
		e.SyncState.ConflictID = ""
		e.SyncState.ConflictData = nil
		e.SyncState.RetryCount = 0
		ts := now
		e.Metadata.LastSynced = &ts
	}

	if err := s.persist(ctx, e); err != nil {
		return err
	}

	if enqueue {
		opType := models.OperationUpdate
		if isNew {
			opType = models.OperationCreate
		}
		op := &models.SyncOperation{
			EntityType:  e.Type,
			EntityID:    e.ID,
			Op:          opType,
			Data:        e.Data,
			BaseVersion: baseVersion(e),
			LocalHash:   hash,
			Metadata: models.OperationMetadata{
				Priority: models.PriorityMedium,
			},
		}
		if err := s.queue.Add(ctx, op); err != nil {
			return fmt.Errorf("failed to enqueue sync operation: %w", err)
		}
	}

	s.bus.Publish(events.EntitySaved{Entity: e.Clone()})
	return nil
}

// Get returns an entity by type and id. Returns storage.ErrNotFound if the
// entity does not exist.
func (s *EntityStore) Get(ctx context.Context, entityType, id string) (*models.Entity, error) {
	return s.load(ctx, entityType, id)
}

// GetAll returns all entities of one type.
func (s *EntityStore) GetAll(ctx context.Context, entityType string) ([]*models.Entity, error) {
	values, err := s.backend.GetAll(ctx, entityType)
	if err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}

	entities := make([]*models.Entity, 0, len(values))
	for id, raw := range values {
		e := &models.Entity{}
		if err := json.Unmarshal(raw, e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal entity %s/%s: %w", entityType, id, err)
		}
		entities = append(entities, e)
	}

	return entities, nil
}

// Delete tombstones an entity: a delete operation is enqueued with high
// priority (deletes must not starve behind low-priority edits), then the
// entity is removed from the readable index.
func (s *EntityStore) Delete(ctx context.Context, entityType, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.load(ctx, entityType, id)
	if err != nil {
		return err
	}

	op := &models.SyncOperation{
		EntityType:  entityType,
		EntityID:    id,
		Op:          models.OperationDelete,
		BaseVersion: baseVersion(existing),
		LocalHash:   existing.Metadata.Hash,
		Metadata: models.OperationMetadata{
			Priority: models.PriorityHigh,
		},
	}
	if err := s.queue.Add(ctx, op); err != nil {
		return fmt.Errorf("failed to enqueue delete operation: %w", err)
	}

	if err := s.backend.Delete(ctx, entityType, id); err != nil {
		return fmt.Errorf("failed to delete entity: %w", err)
	}

	s.bus.Publish(events.EntityDeleted{EntityType: entityType, EntityID: id})
	return nil
}

// MarkSynced records a successful push of an entity: status becomes synced
// and the acknowledged remote version is remembered. A no-op if the entity
// was deleted locally in the meantime.
func (s *EntityStore) MarkSynced(ctx context.Context, entityType, id string, remoteVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.load(ctx, entityType, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return err
	}

	now := s.clock.Now()
	e.SyncState.Status = models.EntityStatusSynced
	e.SyncState.RemoteVersion = &remoteVersion
	e.SyncState.RetryCount = 0
	e.SyncState.LastAttempt = &now
	e.Metadata.LastSynced = &now

	return s.persist(ctx, e)
}

// MarkConflict flags an entity as conflicted until the conflict is resolved.
func (s *EntityStore) MarkConflict(ctx context.Context, entityType, id, conflictID string, remoteData map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.load(ctx, entityType, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return err
	}

	e.SyncState.Status = models.EntityStatusConflict
	e.SyncState.ConflictID = conflictID
	e.SyncState.ConflictData = remoteData

	return s.persist(ctx, e)
}

// RecordAttempt updates per-entity retry bookkeeping after a failed push.
func (s *EntityStore) RecordAttempt(ctx context.Context, entityType, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.load(ctx, entityType, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return err
	}

	now := s.clock.Now()
	e.SyncState.RetryCount++
	e.SyncState.LastAttempt = &now

	return s.persist(ctx, e)
}

func (s *EntityStore) load(ctx context.Context, entityType, id string) (*models.Entity, error) {
	raw, err := s.backend.Get(ctx, entityType, id)
	if err != nil {
		return nil, err
	}

	e := &models.Entity{}
	if err := json.Unmarshal(raw, e); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return e, nil
}

func (s *EntityStore) persist(ctx context.Context, e *models.Entity) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}
	if err := s.backend.Put(ctx, e.Type, e.ID, raw); err != nil {
		return fmt.Errorf("failed to persist entity: %w", err)
	}
	return nil
}

// baseVersion returns the remote version snapshot a mutation was built
// against: the last acknowledged remote version, or 0 for entities the
// remote has never seen.
func baseVersion(e *models.Entity) int64 {
	if e.SyncState.RemoteVersion != nil {
		return *e.SyncState.RemoteVersion
	}
	return 0
}
