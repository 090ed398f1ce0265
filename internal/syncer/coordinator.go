// Package syncer drains the operation queue against the remote transport.
// Runs are single-flight: concurrent performSync callers join the in-flight
// run and receive its report instead of starting a duplicate pass.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/localfirst/offsync/internal/clock"
	"github.com/localfirst/offsync/internal/config"
	"github.com/localfirst/offsync/internal/conflict"
	"github.com/localfirst/offsync/internal/events"
	"github.com/localfirst/offsync/internal/models"
	"github.com/localfirst/offsync/internal/queue"
	"github.com/localfirst/offsync/internal/transport"
)

// ErrOffline indicates performSync was called without connectivity.
var ErrOffline = errors.New("cannot sync while offline")

// Coordinator owns the sync run lifecycle and the engine-level sync status
// state machine: offline → pending → syncing → {synced | failed} → pending.
type Coordinator struct {
	queue     *queue.Queue
	store     EntityTracker
	resolver  *conflict.Resolver
	transport transport.Transport
	online    func() bool
	clock     clock.Clock
	bus       *events.Bus
	logger    *slog.Logger
	cfg       config.Config

	group singleflight.Group

	mu       sync.Mutex
	status   models.SyncStatus
	lastSync *models.SyncReport

	timerMu     sync.Mutex
	timerCancel context.CancelFunc
	timerWG     sync.WaitGroup
}

// EntityTracker is what the coordinator needs from the entity store to
// record per-entity sync outcomes.
type EntityTracker interface {
	MarkSynced(ctx context.Context, entityType, id string, remoteVersion int64) error
	MarkConflict(ctx context.Context, entityType, id, conflictID string, remoteData map[string]any) error
	RecordAttempt(ctx context.Context, entityType, id string) error
}

// NewCoordinator creates a sync coordinator. online reports whether the
// transport is reachable; it is consulted at run start and by the timer.
func NewCoordinator(q *queue.Queue, store EntityTracker, resolver *conflict.Resolver, tr transport.Transport,
	online func() bool, clk clock.Clock, bus *events.Bus, logger *slog.Logger, cfg config.Config,
) *Coordinator {
	status := models.SyncStatusOffline
	if online() {
		status = models.SyncStatusSynced
		if q.Len() > 0 {
			status = models.SyncStatusPending
		}
	}

	return &Coordinator{
		queue:     q,
		store:     store,
		resolver:  resolver,
		transport: tr,
		online:    online,
		clock:     clk,
		bus:       bus,
		logger:    logger,
		cfg:       cfg,
		status:    status,
	}
}

// Status returns the engine-level sync status.
func (c *Coordinator) Status() models.SyncStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// LastReport returns the report of the most recent completed run, or nil.
func (c *Coordinator) LastReport() *models.SyncReport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSync
}

// PerformSync drains the queue in priority batches. It fails fast with
// ErrOffline when not connected. Callers arriving while a run is active
// attach to it and receive the same report.
func (c *Coordinator) PerformSync(ctx context.Context, filter *queue.Filter) (*models.SyncReport, error) {
	if !c.online() {
		return nil, ErrOffline
	}

	v, err, _ := c.group.Do("sync", func() (any, error) {
		return c.run(ctx, filter)
	})
	if err != nil {
		return nil, err
	}

	return v.(*models.SyncReport), nil
}

// run executes one sync pass over a fixed snapshot of the queue. Local
// edits arriving after the snapshot are queued fresh and picked up on the
// next run.
func (c *Coordinator) run(ctx context.Context, filter *queue.Filter) (*models.SyncReport, error) {
	now := c.clock.Now()
	snapshot := c.queue.Snapshot(filter, now)

	c.setStatus(models.SyncStatusSyncing)
	c.bus.Publish(events.SyncStarted{Queued: len(snapshot)})
	c.logger.Info("sync run started", "operations", len(snapshot))

	report := &models.SyncReport{
		StartTime: now,
		Status:    models.SyncRunSuccess,
	}

	total := len(snapshot)
	for start := 0; start < total; start += c.cfg.BatchSize {
		end := start + c.cfg.BatchSize
		if end > total {
			end = total
		}

		for _, op := range snapshot[start:end] {
			c.processOperation(ctx, op, report)

			report.OperationsProcessed++
			c.bus.Publish(events.SyncProgress{
				OperationID: op.ID,
				Percent:     report.OperationsProcessed * 100 / total,
			})
		}
	}

	report.EndTime = c.clock.Now()
	switch {
	case report.OperationsFailed == 0:
		report.Status = models.SyncRunSuccess
	case report.OperationsSucceeded > 0 || report.ConflictsDetected > 0:
		report.Status = models.SyncRunPartial
	default:
		report.Status = models.SyncRunFailed
	}

	if report.Status == models.SyncRunFailed && report.OperationsProcessed > 0 {
		c.setStatus(models.SyncStatusFailed)
	} else {
		c.setStatus(models.SyncStatusSynced)
	}
	// Re-enter pending when work remains, closing the state machine loop
	// driven by the periodic timer.
	if c.queue.Len() > 0 {
		c.setStatus(models.SyncStatusPending)
	}

	c.mu.Lock()
	c.lastSync = report
	c.mu.Unlock()

	c.logger.Info("sync run completed",
		"processed", report.OperationsProcessed,
		"succeeded", report.OperationsSucceeded,
		"failed", report.OperationsFailed,
		"conflicts", report.ConflictsDetected,
		"bytes", report.BytesTransferred,
		"status", report.Status)

	c.bus.Publish(events.SyncCompleted{Report: report})
	return report, nil
}

// processOperation delivers one operation and applies the three-way
// outcome: success, conflict, or error with backoff.
func (c *Coordinator) processOperation(ctx context.Context, op *models.SyncOperation, report *models.SyncReport) {
	opCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	res, err := c.transport.SyncOperation(opCtx, op)
	cancel()

	switch {
	case err != nil:
		// Timeouts are treated identically to transport errors.
		c.recordFailure(ctx, op, report, err.Error())

	case res.Conflict:
		if !conflict.Detect(op, res.RemoteVersion, res.RemoteHash) {
			// The remote copy matches the local content; nothing actually
			// diverged. Acknowledge and move on.
			c.recordSuccess(ctx, op, report, res)
			return
		}
		c.recordConflict(ctx, op, report, res)

	case res.Success:
		c.recordSuccess(ctx, op, report, res)

	default:
		msg := res.Error
		if msg == "" {
			msg = "remote rejected operation"
		}
		c.recordFailure(ctx, op, report, msg)
	}
}

func (c *Coordinator) recordSuccess(ctx context.Context, op *models.SyncOperation, report *models.SyncReport, res *transport.Result) {
	if err := c.queue.Remove(ctx, op); err != nil {
		c.logger.Warn("failed to dequeue completed operation", "operation_id", op.ID, "error", err)
	}

	if op.Op != models.OperationDelete {
		if err := c.store.MarkSynced(ctx, op.EntityType, op.EntityID, res.RemoteVersion); err != nil {
			c.logger.Warn("failed to mark entity synced",
				"entity_type", op.EntityType,
				"entity_id", op.EntityID,
				"error", err)
		}
	}

	report.OperationsSucceeded++
	report.BytesTransferred += res.BytesTransferred
}

func (c *Coordinator) recordConflict(ctx context.Context, op *models.SyncOperation, report *models.SyncReport, res *transport.Result) {
	conflictType := models.ConflictTypeVersion
	if res.RemoteDeleted || op.Op == models.OperationDelete {
		conflictType = models.ConflictTypeDelete
	}

	dc := &models.DataConflict{
		EntityType:    op.EntityType,
		EntityID:      op.EntityID,
		LocalData:     op.Data,
		RemoteData:    res.RemoteData,
		LocalVersion:  op.BaseVersion,
		RemoteVersion: res.RemoteVersion,
		RemoteHash:    res.RemoteHash,
		Type:          conflictType,
	}

	if err := c.resolver.Register(dc); err != nil {
		if errors.Is(err, conflict.ErrConflictLimit) {
			// The active set is full. Keep the operation queued with
			// backoff so it is retried once conflicts drain.
			c.logger.Warn("conflict set full, deferring operation",
				"entity_type", op.EntityType,
				"entity_id", op.EntityID)
			c.recordFailure(ctx, op, report, "conflict limit reached")
			return
		}
		c.recordFailure(ctx, op, report, fmt.Sprintf("failed to register conflict: %v", err))
		return
	}

	// The operation leaves the active queue; the entity stays conflicted
	// until resolveConflict writes the resolution back.
	if err := c.queue.Remove(ctx, op); err != nil {
		c.logger.Warn("failed to dequeue conflicted operation", "operation_id", op.ID, "error", err)
	}
	if err := c.store.MarkConflict(ctx, op.EntityType, op.EntityID, dc.ID, res.RemoteData); err != nil {
		c.logger.Warn("failed to mark entity conflicted",
			"entity_type", op.EntityType,
			"entity_id", op.EntityID,
			"error", err)
	}

	report.ConflictsDetected++
}

func (c *Coordinator) recordFailure(ctx context.Context, op *models.SyncOperation, report *models.SyncReport, msg string) {
	delay := backoffDelay(c.cfg.BackoffBase, c.cfg.BackoffStrategy, op.Metadata.Attempts+1)

	dropped, err := c.queue.RecordFailure(ctx, op, delay)
	if err != nil {
		c.logger.Warn("failed to record operation failure", "operation_id", op.ID, "error", err)
	}
	if err := c.store.RecordAttempt(ctx, op.EntityType, op.EntityID); err != nil {
		c.logger.Warn("failed to record entity attempt",
			"entity_type", op.EntityType,
			"entity_id", op.EntityID,
			"error", err)
	}

	report.OperationsFailed++
	report.Errors = append(report.Errors, models.SyncError{
		OperationID: op.ID,
		EntityType:  op.EntityType,
		EntityID:    op.EntityID,
		Message:     msg,
		Dropped:     dropped,
	})
}

// SetOnline moves the status out of offline. Called on the offline→online
// transition; the caller also starts the periodic timer.
func (c *Coordinator) SetOnline() {
	if c.queue.Len() > 0 {
		c.setStatus(models.SyncStatusPending)
	} else {
		c.setStatus(models.SyncStatusSynced)
	}
}

// SetOffline marks the engine offline. An in-flight run completes its
// snapshot; only new runs are prevented.
func (c *Coordinator) SetOffline() {
	c.setStatus(models.SyncStatusOffline)
}

// StartTimer launches the periodic sync loop. Starting an already-running
// timer is a no-op.
func (c *Coordinator) StartTimer(ctx context.Context) {
	c.timerMu.Lock()
	defer c.timerMu.Unlock()

	if c.timerCancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	c.timerCancel = cancel

	c.timerWG.Add(1)
	go c.timerLoop(ctx)
}

// StopTimer terminates the periodic sync loop and waits for it to exit.
func (c *Coordinator) StopTimer() {
	c.timerMu.Lock()
	cancel := c.timerCancel
	c.timerCancel = nil
	c.timerMu.Unlock()

	if cancel != nil {
		cancel()
		c.timerWG.Wait()
	}
}

func (c *Coordinator) timerLoop(ctx context.Context) {
	defer c.timerWG.Done()

	ticker := c.clock.NewTicker(c.cfg.SyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			if !c.online() || c.queue.Len() == 0 {
				continue
			}
			if _, err := c.PerformSync(ctx, nil); err != nil && !errors.Is(err, ErrOffline) {
				c.logger.Warn("periodic sync failed", "error", err)
			}
		}
	}
}

func (c *Coordinator) setStatus(status models.SyncStatus) {
	c.mu.Lock()
	changed := c.status != status
	c.status = status
	c.mu.Unlock()

	if changed {
		c.bus.Publish(events.StatusChanged{Status: status})
	}
}
