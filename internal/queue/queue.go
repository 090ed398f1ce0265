// Package queue implements the durable sync operation queue. At most one
// active operation exists per (entityType, entityId); newer mutations
// supersede the queued one instead of appending a second operation.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/localfirst/offsync/internal/clock"
	"github.com/localfirst/offsync/internal/events"
	"github.com/localfirst/offsync/internal/models"
	"github.com/localfirst/offsync/internal/storage"
)

// Filter narrows the set of operations a sync run drains.
type Filter struct {
	EntityType  string
	EntityID    string
	MinPriority models.Priority
}

// Queue holds pending sync operations, persisted through an OperationLog so
// they survive restarts.
type Queue struct {
	log        storage.OperationLog
	clock      clock.Clock
	bus        *events.Bus
	logger     *slog.Logger
	maxRetries int

	mu  sync.Mutex
	ops map[string]*models.SyncOperation // keyed by entityType/entityID
}

// New creates a queue and reloads any operations persisted by a previous
// process.
func New(ctx context.Context, log storage.OperationLog, clk clock.Clock, bus *events.Bus, logger *slog.Logger, maxRetries int) (*Queue, error) {
	q := &Queue{
		log:        log,
		clock:      clk,
		bus:        bus,
		logger:     logger,
		maxRetries: maxRetries,
		ops:        make(map[string]*models.SyncOperation),
	}

	persisted, err := log.ListOperations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to reload operation log: %w", err)
	}

	for id, raw := range persisted {
		op := &models.SyncOperation{}
		if err := json.Unmarshal(raw, op); err != nil {
			// A corrupt log record is dropped rather than wedging the queue.
			q.logger.Warn("dropping unreadable queued operation", "operation_id", id, "error", err)
			if err := log.DeleteOperation(ctx, id); err != nil {
				q.logger.Warn("failed to remove unreadable operation", "operation_id", id, "error", err)
			}
			continue
		}
		q.ops[op.Key()] = op
	}

	if len(q.ops) > 0 {
		q.logger.Info("reloaded pending operations", "count", len(q.ops))
	}

	return q, nil
}

// Add enqueues an operation, applying the supersede rule: if an operation
// for the same entity is already queued, the new payload replaces it while
// the original id, creation time and the higher of both priorities are kept.
func (q *Queue) Add(ctx context.Context, op *models.SyncOperation) error {
	if op.ID == "" {
		op.ID = uuid.New().String()
	}
	if op.Metadata.CreatedAt.IsZero() {
		op.Metadata.CreatedAt = q.clock.Now()
	}
	if op.Metadata.Priority == "" {
		op.Metadata.Priority = models.PriorityMedium
	}
	if op.Metadata.MaxRetries == 0 {
		op.Metadata.MaxRetries = q.maxRetries
	}

	q.mu.Lock()
	key := op.Key()
	if existing, ok := q.ops[key]; ok {
		// Latest wins for payload, earliest wins for ordering.
		op.ID = existing.ID
		op.Metadata.CreatedAt = existing.Metadata.CreatedAt
		op.Metadata.Priority = models.MaxPriority(existing.Metadata.Priority, op.Metadata.Priority)
		op.Metadata.Attempts = existing.Metadata.Attempts
		if existing.Op == models.OperationCreate && op.Op == models.OperationUpdate {
			// The entity never reached the remote; it is still a create.
			op.Op = models.OperationCreate
		}
	}
	q.ops[key] = op
	pending := len(q.ops)
	q.mu.Unlock()

	if err := q.persist(ctx, op); err != nil {
		return err
	}

	q.bus.Publish(events.QueueUpdated{Pending: pending})
	return nil
}

// Snapshot returns a copy of the operations a sync run should process:
// matching the filter, ready per their retry schedule, sorted by priority
// descending with FIFO tie-break on creation time. Later mutations do not
// affect an already-taken snapshot.
func (q *Queue) Snapshot(filter *Filter, now time.Time) []*models.SyncOperation {
	q.mu.Lock()
	defer q.mu.Unlock()

	snapshot := make([]*models.SyncOperation, 0, len(q.ops))
	for _, op := range q.ops {
		if !op.Ready(now) {
			continue
		}
		if filter != nil {
			if filter.EntityType != "" && op.EntityType != filter.EntityType {
				continue
			}
			if filter.EntityID != "" && op.EntityID != filter.EntityID {
				continue
			}
			if filter.MinPriority != "" && op.Metadata.Priority.Rank() < filter.MinPriority.Rank() {
				continue
			}
		}
		snapshot = append(snapshot, op.Clone())
	}

	sort.Slice(snapshot, func(i, j int) bool {
		pi, pj := snapshot[i].Metadata.Priority.Rank(), snapshot[j].Metadata.Priority.Rank()
		if pi != pj {
			return pi > pj
		}
		return snapshot[i].Metadata.CreatedAt.Before(snapshot[j].Metadata.CreatedAt)
	})

	return snapshot
}

// Remove drops an operation from the queue and from durable storage.
// Removing an operation that was superseded after the caller's snapshot is
// detected by id mismatch and skipped, so the fresh mutation stays queued.
func (q *Queue) Remove(ctx context.Context, op *models.SyncOperation) error {
	q.mu.Lock()
	current, ok := q.ops[op.Key()]
	if ok && current.ID == op.ID {
		delete(q.ops, op.Key())
	}
	pending := len(q.ops)
	q.mu.Unlock()

	if !ok || current.ID != op.ID {
		return nil
	}

	if err := q.log.DeleteOperation(ctx, op.ID); err != nil {
		return fmt.Errorf("failed to remove operation from log: %w", err)
	}

	q.bus.Publish(events.QueueUpdated{Pending: pending})
	return nil
}

// RecordFailure increments the attempt counter of a queued operation and
// schedules its next retry. When the retry budget is exhausted the
// operation is dropped permanently and dropped=true is returned.
func (q *Queue) RecordFailure(ctx context.Context, op *models.SyncOperation, retryIn time.Duration) (dropped bool, err error) {
	now := q.clock.Now()

	q.mu.Lock()
	current, ok := q.ops[op.Key()]
	if !ok || current.ID != op.ID {
		// Superseded since the snapshot; the fresh operation keeps its own schedule.
		q.mu.Unlock()
		return false, nil
	}

	current.Metadata.Attempts++
	if current.Metadata.Attempts >= current.Metadata.MaxRetries {
		delete(q.ops, op.Key())
		pending := len(q.ops)
		q.mu.Unlock()

		if err := q.log.DeleteOperation(ctx, current.ID); err != nil {
			return true, fmt.Errorf("failed to drop exhausted operation: %w", err)
		}
		q.logger.Warn("operation dropped after exhausting retries",
			"operation_id", current.ID,
			"entity_type", current.EntityType,
			"entity_id", current.EntityID,
			"attempts", current.Metadata.Attempts)
		q.bus.Publish(events.QueueUpdated{Pending: pending})
		return true, nil
	}

	next := now.Add(retryIn)
	current.Metadata.NextRetry = &next
	persisted := current.Clone()
	q.mu.Unlock()

	if err := q.persist(ctx, persisted); err != nil {
		return false, err
	}
	return false, nil
}

// Get returns the queued operation for an entity, or nil.
func (q *Queue) Get(entityType, entityID string) *models.SyncOperation {
	q.mu.Lock()
	defer q.mu.Unlock()

	if op, ok := q.ops[entityType+"/"+entityID]; ok {
		return op.Clone()
	}
	return nil
}

// Pending returns a sorted copy of all queued operations, regardless of
// retry schedule. Used for status reporting.
func (q *Queue) Pending() []*models.SyncOperation {
	q.mu.Lock()
	ops := make([]*models.SyncOperation, 0, len(q.ops))
	for _, op := range q.ops {
		ops = append(ops, op.Clone())
	}
	q.mu.Unlock()

	sort.Slice(ops, func(i, j int) bool {
		pi, pj := ops[i].Metadata.Priority.Rank(), ops[j].Metadata.Priority.Rank()
		if pi != pj {
			return pi > pj
		}
		return ops[i].Metadata.CreatedAt.Before(ops[j].Metadata.CreatedAt)
	})

	return ops
}

// Len returns the number of queued operations.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ops)
}

// Clear drops all queued operations. Used by a full cache clear, which
// forces a complete resync anyway.
func (q *Queue) Clear(ctx context.Context) error {
	q.mu.Lock()
	q.ops = make(map[string]*models.SyncOperation)
	q.mu.Unlock()

	if err := q.log.ClearOperations(ctx); err != nil {
		return fmt.Errorf("failed to clear operation log: %w", err)
	}

	q.bus.Publish(events.QueueUpdated{Pending: 0})
	return nil
}

// persist writes one operation to the durable log.
func (q *Queue) persist(ctx context.Context, op *models.SyncOperation) error {
	raw, err := json.Marshal(op)
	if err != nil {
		return fmt.Errorf("failed to marshal operation: %w", err)
	}
	if err := q.log.PutOperation(ctx, op.ID, raw); err != nil {
		return fmt.Errorf("failed to persist operation: %w", err)
	}
	return nil
}
