// Package engine assembles the offline sync engine from its injected
// collaborators and exposes the consumer-facing surface: state snapshots,
// event subscriptions, entity CRUD, sync runs, conflict resolution and
// cache eviction. Multiple independent engines are constructible, each
// owning its own queue, conflict set and timers.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/localfirst/offsync/internal/clock"
	"github.com/localfirst/offsync/internal/config"
	"github.com/localfirst/offsync/internal/conflict"
	"github.com/localfirst/offsync/internal/events"
	"github.com/localfirst/offsync/internal/models"
	"github.com/localfirst/offsync/internal/network"
	"github.com/localfirst/offsync/internal/queue"
	"github.com/localfirst/offsync/internal/quota"
	"github.com/localfirst/offsync/internal/storage"
	"github.com/localfirst/offsync/internal/store"
	"github.com/localfirst/offsync/internal/syncer"
	"github.com/localfirst/offsync/internal/transport"
)

// Deps are the external collaborators the engine is constructed with. The
// engine depends only on these contracts, never on a concrete technology.
type Deps struct {
	Backend       storage.Backend
	OperationLog  storage.OperationLog
	Transport     transport.Transport
	NetworkSource network.Source
	Prober        network.Prober
	Estimator     quota.Estimator

	// Clock defaults to the system clock.
	Clock clock.Clock
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// State is a point-in-time snapshot of the whole engine, for a UI layer or
// any other consumer.
type State struct {
	Status            models.SyncStatus       `json:"status"`
	Network           models.NetworkStatus    `json:"network"`
	Quota             models.StorageQuota     `json:"quota"`
	PendingOperations []*models.SyncOperation `json:"pending_operations"`
	Conflicts         []*models.DataConflict  `json:"conflicts"`
	LastReport        *models.SyncReport      `json:"last_report,omitempty"`
}

// Engine is the offline synchronization engine.
type Engine struct {
	cfg config.Config

	bus         *events.Bus
	queue       *queue.Queue
	store       *store.EntityStore
	resolver    *conflict.Resolver
	monitor     *network.Monitor
	tracker     *quota.Tracker
	coordinator *syncer.Coordinator

	runCtx    context.Context
	runCancel context.CancelFunc
}

// New wires an engine from its collaborators. The queue reloads any
// operations persisted by a previous process.
func New(ctx context.Context, cfg config.Config, deps Deps) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	clk := deps.Clock
	if clk == nil {
		clk = clock.System()
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	bus := events.NewBus(logger)

	q, err := queue.New(ctx, deps.OperationLog, clk, bus, logger, cfg.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to build sync queue: %w", err)
	}

	entityStore := store.New(deps.Backend, q, clk, bus, logger)
	resolver := conflict.NewResolver(entityStore, clk, bus, logger, cfg.MaxConflicts)

	e := &Engine{
		cfg:      cfg,
		bus:      bus,
		queue:    q,
		store:    entityStore,
		resolver: resolver,
	}

	// The monitor is built first: the coordinator consults it for its
	// initial status, while the monitor's transition hooks only fire after
	// Start, by which time the coordinator exists.
	e.monitor = network.NewMonitor(deps.NetworkSource, deps.Prober, clk, bus, logger,
		cfg.ProbeInterval, cfg.ProbeTimeout,
		e.onOnline, e.onOffline)

	e.coordinator = syncer.NewCoordinator(q, entityStore, resolver, deps.Transport,
		e.monitor.Online, clk, bus, logger, cfg)

	clearer := &engineClearer{backend: deps.Backend, queue: q}
	e.tracker = quota.NewTracker(deps.Estimator, clearer, clk, bus, logger,
		cfg.QuotaPollInterval, cfg.WarningThreshold, cfg.CriticalThreshold)

	return e, nil
}

// Start launches the background tasks: the network monitor, the quota poll
// and, when already online, the periodic sync timer.
func (e *Engine) Start(ctx context.Context) {
	e.runCtx, e.runCancel = context.WithCancel(ctx)

	e.monitor.Start(e.runCtx)
	e.tracker.Start(e.runCtx)

	if e.monitor.Online() {
		e.coordinator.StartTimer(e.runCtx)
	}
}

// Close stops every background task started by Start. Each timer and
// observer acquired during initialization has its matching release here.
func (e *Engine) Close() {
	e.coordinator.StopTimer()
	e.monitor.Stop()
	e.tracker.Stop()

	if e.runCancel != nil {
		e.runCancel()
	}
}

// GetState returns a snapshot of the engine's aggregate state.
func (e *Engine) GetState() State {
	return State{
		Status:            e.coordinator.Status(),
		Network:           e.monitor.Status(),
		Quota:             e.tracker.Quota(),
		PendingOperations: e.queue.Pending(),
		Conflicts:         e.resolver.List(),
		LastReport:        e.coordinator.LastReport(),
	}
}

// Subscribe registers a handler for one event kind.
func (e *Engine) Subscribe(kind events.Kind, h events.Handler) events.Subscription {
	return e.bus.Subscribe(kind, h)
}

// Unsubscribe removes a previously registered handler.
func (e *Engine) Unsubscribe(sub events.Subscription) {
	e.bus.Unsubscribe(sub)
}

// SaveEntity writes an entity through the store: version bump, hash
// recompute, dirty marking and operation enqueue.
func (e *Engine) SaveEntity(ctx context.Context, entity *models.Entity) error {
	return e.store.Save(ctx, entity)
}

// GetEntity returns one entity. Returns storage.ErrNotFound if absent.
func (e *Engine) GetEntity(ctx context.Context, entityType, id string) (*models.Entity, error) {
	return e.store.Get(ctx, entityType, id)
}

// GetEntities returns all entities of one type.
func (e *Engine) GetEntities(ctx context.Context, entityType string) ([]*models.Entity, error) {
	return e.store.GetAll(ctx, entityType)
}

// DeleteEntity tombstones an entity and queues its delete with high priority.
func (e *Engine) DeleteEntity(ctx context.Context, entityType, id string) error {
	return e.store.Delete(ctx, entityType, id)
}

// PerformSync drains the queue against the transport. Returns
// syncer.ErrOffline when disconnected; per-operation failures are
// aggregated in the report, never returned as errors.
func (e *Engine) PerformSync(ctx context.Context, filter *queue.Filter) (*models.SyncReport, error) {
	return e.coordinator.PerformSync(ctx, filter)
}

// ResolveConflict applies a resolution strategy to an active conflict.
func (e *Engine) ResolveConflict(ctx context.Context, conflictID string, strategy models.ResolutionStrategy, customData map[string]any) (*models.DataConflict, error) {
	return e.resolver.Resolve(ctx, conflictID, strategy, customData)
}

// Conflicts returns the active conflict set ordered by detection time.
func (e *Engine) Conflicts() []*models.DataConflict {
	return e.resolver.List()
}

// PendingOperations returns the queued operations with their retry detail,
// so callers can present fine-grained status.
func (e *Engine) PendingOperations() []*models.SyncOperation {
	return e.queue.Pending()
}

// ClearCache evicts local storage. Selective removes cache-class data only;
// non-selective clears everything including the entity mirror and the
// operation queue, forcing a full resync.
func (e *Engine) ClearCache(ctx context.Context, selective bool) error {
	return e.tracker.ClearCache(ctx, selective)
}

// Quota returns the latest storage usage snapshot.
func (e *Engine) Quota() models.StorageQuota {
	return e.tracker.Quota()
}

// Network returns the current connectivity status.
func (e *Engine) Network() models.NetworkStatus {
	return e.monitor.Status()
}

// onOnline runs on the offline→online edge: status leaves offline and the
// periodic timer (re)starts.
func (e *Engine) onOnline() {
	e.coordinator.SetOnline()
	if e.runCtx != nil {
		e.coordinator.StartTimer(e.runCtx)
	}
}

// onOffline runs on the online→offline edge: the timer stops; an in-flight
// run completes its snapshot on its own.
func (e *Engine) onOffline() {
	e.coordinator.StopTimer()
	e.coordinator.SetOffline()
}

// engineClearer routes tracker eviction to the backend, and on a full
// clear also drops the operation queue: the entity mirror it reflected is
// gone, so a complete resync follows anyway.
type engineClearer struct {
	backend storage.Backend
	queue   *queue.Queue
}

func (c *engineClearer) ClearCache(ctx context.Context) error {
	return c.backend.ClearCache(ctx)
}

func (c *engineClearer) Clear(ctx context.Context) error {
	if err := c.backend.Clear(ctx); err != nil {
		return err
	}
	return c.queue.Clear(ctx)
}
