// Package conflict detects version divergence between local and remote
// entity copies and resolves it with one of five strategies.
package conflict

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/localfirst/offsync/internal/clock"
	"github.com/localfirst/offsync/internal/events"
	"github.com/localfirst/offsync/internal/models"
)

// Resolver errors
var (
	// ErrConflictNotFound indicates the conflict id is not in the active set
	ErrConflictNotFound = errors.New("conflict not found")

	// ErrConflictLimit indicates the active conflict set is full
	ErrConflictLimit = errors.New("conflict limit reached")

	// ErrCustomDataRequired indicates user_choice was selected without data
	ErrCustomDataRequired = errors.New("custom data required for user_choice resolution")

	// ErrUnknownStrategy indicates an unrecognized resolution strategy
	ErrUnknownStrategy = errors.New("unknown resolution strategy")
)

// EntityWriter is what the resolver needs from the entity store: reading
// the local copy and writing resolved data back, either as a local change
// that must sync again (Save) or as an accepted remote state (ApplyRemote).
type EntityWriter interface {
	Get(ctx context.Context, entityType, id string) (*models.Entity, error)
	Save(ctx context.Context, e *models.Entity) error
	ApplyRemote(ctx context.Context, e *models.Entity) error
}

// Resolver owns the active conflict set. At most maxConflicts are tracked
// concurrently; registration beyond that bound fails with ErrConflictLimit
// and the caller keeps the operation queued for retry.
type Resolver struct {
	store  EntityWriter
	clock  clock.Clock
	bus    *events.Bus
	logger *slog.Logger
	limit  int

	mu        sync.Mutex
	conflicts map[string]*models.DataConflict
}

// NewResolver creates a conflict resolver.
func NewResolver(store EntityWriter, clk clock.Clock, bus *events.Bus, logger *slog.Logger, maxConflicts int) *Resolver {
	return &Resolver{
		store:     store,
		clock:     clk,
		bus:       bus,
		logger:    logger,
		limit:     maxConflicts,
		conflicts: make(map[string]*models.DataConflict),
	}
}

// Detect reports whether a transport conflict result actually diverges from
// the operation's base snapshot: the remote must have advanced past the
// base version with different content.
func Detect(op *models.SyncOperation, remoteVersion int64, remoteHash string) bool {
	return remoteVersion > op.BaseVersion && remoteHash != op.LocalHash
}

// Register adds a detected conflict to the active set, assigning it an id.
func (r *Resolver) Register(c *models.DataConflict) error {
	r.mu.Lock()
	if len(r.conflicts) >= r.limit {
		r.mu.Unlock()
		return ErrConflictLimit
	}

	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.DetectedAt.IsZero() {
		c.DetectedAt = r.clock.Now()
	}
	r.conflicts[c.ID] = c
	r.mu.Unlock()

	r.logger.Info("conflict detected",
		"conflict_id", c.ID,
		"entity_type", c.EntityType,
		"entity_id", c.EntityID,
		"remote_version", c.RemoteVersion)

	r.bus.Publish(events.ConflictDetected{Conflict: c})
	return nil
}

// Get returns an active conflict by id.
func (r *Resolver) Get(id string) (*models.DataConflict, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.conflicts[id]
	if !ok {
		return nil, ErrConflictNotFound
	}
	return c, nil
}

// List returns the active conflicts ordered by detection time.
func (r *Resolver) List() []*models.DataConflict {
	r.mu.Lock()
	conflicts := make([]*models.DataConflict, 0, len(r.conflicts))
	for _, c := range r.conflicts {
		conflicts = append(conflicts, c)
	}
	r.mu.Unlock()

	sort.Slice(conflicts, func(i, j int) bool {
		return conflicts[i].DetectedAt.Before(conflicts[j].DetectedAt)
	})

	return conflicts
}

// Len returns the number of active conflicts.
func (r *Resolver) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conflicts)
}

// Resolve computes the resolved data for a conflict, writes it back through
// the entity store and removes the conflict from the active set.
//
// Strategies that keep local content (use_local, merge_data, user_choice)
// write through Save so the result syncs to the remote again; use_remote
// writes through ApplyRemote since local now equals remote. create_copy
// points the original entity at the remote data and saves the local data as
// a new entity.
func (r *Resolver) Resolve(ctx context.Context, id string, strategy models.ResolutionStrategy, customData map[string]any) (*models.DataConflict, error) {
	r.mu.Lock()
	c, ok := r.conflicts[id]
	r.mu.Unlock()
	if !ok {
		return nil, ErrConflictNotFound
	}

	resolved, err := resolveData(strategy, c.LocalData, c.RemoteData, customData)
	if err != nil {
		return nil, err
	}

	if strategy == models.ResolveCreateCopy {
		if err := r.applyCreateCopy(ctx, c); err != nil {
			return nil, err
		}
	} else if err := r.applyResolved(ctx, c, strategy, resolved); err != nil {
		return nil, err
	}

	now := r.clock.Now()
	c.Resolved = true
	c.ResolvedAt = &now
	c.Strategy = &strategy
	if c.ResolvedBy == "" {
		c.ResolvedBy = "local"
	}

	r.mu.Lock()
	delete(r.conflicts, id)
	r.mu.Unlock()

	r.logger.Info("conflict resolved",
		"conflict_id", c.ID,
		"entity_type", c.EntityType,
		"entity_id", c.EntityID,
		"strategy", strategy)

	r.bus.Publish(events.ConflictResolved{Conflict: c})
	return c, nil
}

// applyResolved writes the resolved data back to the original entity.
func (r *Resolver) applyResolved(ctx context.Context, c *models.DataConflict, strategy models.ResolutionStrategy, resolved map[string]any) error {
	e, err := r.store.Get(ctx, c.EntityType, c.EntityID)
	if err != nil {
		return fmt.Errorf("failed to load conflicted entity: %w", err)
	}

	e.Data = resolved
	e.Metadata.Source = models.SourceMerged
	e.SyncState.ConflictID = ""
	e.SyncState.ConflictData = nil
	remoteVersion := c.RemoteVersion
	e.SyncState.RemoteVersion = &remoteVersion

	if strategy == models.ResolveUseRemote {
		return r.store.ApplyRemote(ctx, e)
	}
	return r.store.Save(ctx, e)
}

// applyCreateCopy keeps the remote data under the original id and clones
// the local data into a new local-only entity.
func (r *Resolver) applyCreateCopy(ctx context.Context, c *models.DataConflict) error {
	original, err := r.store.Get(ctx, c.EntityType, c.EntityID)
	if err != nil {
		return fmt.Errorf("failed to load conflicted entity: %w", err)
	}

	copyEntity := original.Clone()
	copyEntity.ID = fmt.Sprintf("%s_copy_%d", c.EntityID, r.clock.Now().UnixMilli())
	copyEntity.Data = cloneData(c.LocalData)
	copyEntity.Metadata = models.EntityMetadata{Source: models.SourceLocal}
	copyEntity.SyncState = models.SyncState{}

	original.Data = cloneData(c.RemoteData)
	original.Metadata.Source = models.SourceMerged
	original.SyncState.ConflictID = ""
	original.SyncState.ConflictData = nil
	remoteVersion := c.RemoteVersion
	original.SyncState.RemoteVersion = &remoteVersion

	if err := r.store.ApplyRemote(ctx, original); err != nil {
		return fmt.Errorf("failed to apply remote data to original: %w", err)
	}
	if err := r.store.Save(ctx, copyEntity); err != nil {
		return fmt.Errorf("failed to save conflict copy: %w", err)
	}
	return nil
}

// resolveData is a pure function of (strategy, local, remote, custom):
// identical inputs always yield identical output.
func resolveData(strategy models.ResolutionStrategy, local, remote, custom map[string]any) (map[string]any, error) {
	switch strategy {
	case models.ResolveUseLocal:
		return cloneData(local), nil
	case models.ResolveUseRemote:
		return cloneData(remote), nil
	case models.ResolveMerge:
		// Shallow merge: remote overlaid by local, local values win on
		// key collision. Nested structures are not merged.
		merged := cloneData(remote)
		for k, v := range local {
			merged[k] = v
		}
		return merged, nil
	case models.ResolveUserChoice:
		if custom == nil {
			return nil, ErrCustomDataRequired
		}
		return cloneData(custom), nil
	case models.ResolveCreateCopy:
		// create_copy keeps both datasets; there is no single resolved
		// payload. The original entity receives the remote data.
		return cloneData(remote), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
}

func cloneData(data map[string]any) map[string]any {
	clone := make(map[string]any, len(data))
	for k, v := range data {
		clone[k] = v
	}
	return clone
}
