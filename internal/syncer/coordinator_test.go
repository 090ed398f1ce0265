package syncer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localfirst/offsync/internal/clock"
	"github.com/localfirst/offsync/internal/config"
	"github.com/localfirst/offsync/internal/conflict"
	"github.com/localfirst/offsync/internal/events"
	"github.com/localfirst/offsync/internal/models"
	"github.com/localfirst/offsync/internal/queue"
	"github.com/localfirst/offsync/internal/storage"
	"github.com/localfirst/offsync/internal/transport"
)

// trackerRecorder records per-entity outcome calls.
type trackerRecorder struct {
	mu         sync.Mutex
	synced     []string
	conflicted []string
	attempts   []string
}

func (r *trackerRecorder) MarkSynced(ctx context.Context, entityType, id string, remoteVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.synced = append(r.synced, entityType+"/"+id)
	return nil
}

func (r *trackerRecorder) MarkConflict(ctx context.Context, entityType, id, conflictID string, remoteData map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conflicted = append(r.conflicted, entityType+"/"+id)
	return nil
}

func (r *trackerRecorder) RecordAttempt(ctx context.Context, entityType, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, entityType+"/"+id)
	return nil
}

// nullWriter satisfies the resolver's store dependency; coordinator tests
// never resolve, only register.
type nullWriter struct{}

func (nullWriter) Get(ctx context.Context, entityType, id string) (*models.Entity, error) {
	return nil, storage.ErrNotFound
}
func (nullWriter) Save(ctx context.Context, e *models.Entity) error        { return nil }
func (nullWriter) ApplyRemote(ctx context.Context, e *models.Entity) error { return nil }

// onlineFlag is a thread-safe connectivity switch.
type onlineFlag struct {
	mu sync.Mutex
	on bool
}

func (f *onlineFlag) get() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.on
}

func (f *onlineFlag) set(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.on = on
}

type fixture struct {
	coord    *Coordinator
	queue    *queue.Queue
	clk      *clock.Manual
	tracker  *trackerRecorder
	resolver *conflict.Resolver
	online   *onlineFlag
	bus      *events.Bus
}

func memOperationLog() *storage.OperationLogMock {
	var mu sync.Mutex
	data := make(map[string][]byte)

	return &storage.OperationLogMock{
		PutOperationFunc: func(ctx context.Context, id string, value []byte) error {
			mu.Lock()
			defer mu.Unlock()
			data[id] = append([]byte(nil), value...)
			return nil
		},
		DeleteOperationFunc: func(ctx context.Context, id string) error {
			mu.Lock()
			defer mu.Unlock()
			delete(data, id)
			return nil
		},
		ListOperationsFunc: func(ctx context.Context) (map[string][]byte, error) {
			mu.Lock()
			defer mu.Unlock()
			out := make(map[string][]byte, len(data))
			for k, v := range data {
				out[k] = append([]byte(nil), v...)
			}
			return out, nil
		},
		ClearOperationsFunc: func(ctx context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			data = make(map[string][]byte)
			return nil
		},
	}
}

func newFixture(t *testing.T, online bool, tr transport.Transport, tweak func(*config.Config)) *fixture {
	t.Helper()

	cfg := config.Default()
	if tweak != nil {
		tweak(&cfg)
	}

	clk := clock.NewManual(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	bus := events.NewBus(slog.Default())
	logger := slog.Default()

	q, err := queue.New(context.Background(), memOperationLog(), clk, bus, logger, cfg.MaxRetries)
	require.NoError(t, err)

	tracker := &trackerRecorder{}
	resolver := conflict.NewResolver(nullWriter{}, clk, bus, logger, cfg.MaxConflicts)
	flag := &onlineFlag{on: online}

	coord := NewCoordinator(q, tracker, resolver, tr, flag.get, clk, bus, logger, cfg)

	return &fixture{
		coord:    coord,
		queue:    q,
		clk:      clk,
		tracker:  tracker,
		resolver: resolver,
		online:   flag,
		bus:      bus,
	}
}

func (f *fixture) enqueue(t *testing.T, id string, op models.OperationType) *models.SyncOperation {
	t.Helper()

	syncOp := &models.SyncOperation{
		EntityType:  "task",
		EntityID:    id,
		Op:          op,
		Data:        map[string]any{"id": id},
		BaseVersion: 1,
		LocalHash:   "local-" + id,
	}
	require.NoError(t, f.queue.Add(context.Background(), syncOp))
	return syncOp
}

func successTransport() *transport.TransportMock {
	return &transport.TransportMock{
		SyncOperationFunc: func(ctx context.Context, op *models.SyncOperation) (*transport.Result, error) {
			return &transport.Result{Success: true, RemoteVersion: 2, BytesTransferred: 64}, nil
		},
	}
}

func TestPerformSyncOffline(t *testing.T) {
	f := newFixture(t, false, successTransport(), nil)

	_, err := f.coord.PerformSync(context.Background(), nil)
	assert.ErrorIs(t, err, ErrOffline)
	assert.Equal(t, models.SyncStatusOffline, f.coord.Status())
}

func TestPerformSyncAllSucceed(t *testing.T) {
	tr := successTransport()
	f := newFixture(t, true, tr, nil)

	f.enqueue(t, "t1", models.OperationUpdate)
	f.enqueue(t, "t2", models.OperationCreate)

	report, err := f.coord.PerformSync(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, models.SyncRunSuccess, report.Status)
	assert.Equal(t, 2, report.OperationsProcessed)
	assert.Equal(t, 2, report.OperationsSucceeded)
	assert.Equal(t, 0, report.OperationsFailed)
	assert.Equal(t, int64(128), report.BytesTransferred)

	assert.Equal(t, 0, f.queue.Len(), "completed operations leave the queue")
	assert.Equal(t, models.SyncStatusSynced, f.coord.Status())
	assert.ElementsMatch(t, []string{"task/t1", "task/t2"}, f.tracker.synced)
	assert.Equal(t, report, f.coord.LastReport())
}

func TestPerformSyncDeleteSkipsMarkSynced(t *testing.T) {
	f := newFixture(t, true, successTransport(), nil)

	f.enqueue(t, "t1", models.OperationDelete)

	report, err := f.coord.PerformSync(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 1, report.OperationsSucceeded)
	assert.Empty(t, f.tracker.synced, "deleted entities have nothing to mark")
}

func TestPerformSyncEvents(t *testing.T) {
	f := newFixture(t, true, successTransport(), nil)

	var started, completed int
	var percents []int
	f.bus.Subscribe(events.KindSyncStarted, func(events.Event) { started++ })
	f.bus.Subscribe(events.KindSyncCompleted, func(events.Event) { completed++ })
	f.bus.Subscribe(events.KindSyncProgress, func(ev events.Event) {
		percents = append(percents, ev.(events.SyncProgress).Percent)
	})

	f.enqueue(t, "t1", models.OperationUpdate)
	f.enqueue(t, "t2", models.OperationUpdate)

	_, err := f.coord.PerformSync(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 1, started)
	assert.Equal(t, 1, completed)
	assert.Equal(t, []int{50, 100}, percents)
}

func TestPerformSyncConflict(t *testing.T) {
	tr := &transport.TransportMock{
		SyncOperationFunc: func(ctx context.Context, op *models.SyncOperation) (*transport.Result, error) {
			return &transport.Result{
				Conflict:      true,
				RemoteVersion: 5,
				RemoteHash:    "remote-hash",
				RemoteData:    map[string]any{"id": "server"},
			}, nil
		},
	}
	f := newFixture(t, true, tr, nil)

	f.enqueue(t, "t1", models.OperationUpdate)

	report, err := f.coord.PerformSync(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, models.SyncRunSuccess, report.Status, "a detected conflict is not a failure")
	assert.Equal(t, 1, report.ConflictsDetected)
	assert.Equal(t, 0, report.OperationsFailed)

	assert.Equal(t, 0, f.queue.Len(), "conflicted operation leaves the queue")
	assert.Equal(t, 1, f.resolver.Len())
	assert.Equal(t, []string{"task/t1"}, f.tracker.conflicted)

	c := f.resolver.List()[0]
	assert.Equal(t, models.ConflictTypeVersion, c.Type)
	assert.Equal(t, int64(5), c.RemoteVersion)
	assert.Equal(t, map[string]any{"id": "server"}, c.RemoteData)
}

func TestPerformSyncFalseConflict(t *testing.T) {
	// The remote reports a conflict but its content matches ours; nothing
	// diverged, so the operation is acknowledged as success.
	tr := &transport.TransportMock{
		SyncOperationFunc: func(ctx context.Context, op *models.SyncOperation) (*transport.Result, error) {
			return &transport.Result{
				Conflict:      true,
				RemoteVersion: 5,
				RemoteHash:    op.LocalHash,
			}, nil
		},
	}
	f := newFixture(t, true, tr, nil)

	f.enqueue(t, "t1", models.OperationUpdate)

	report, err := f.coord.PerformSync(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 1, report.OperationsSucceeded)
	assert.Equal(t, 0, report.ConflictsDetected)
	assert.Equal(t, 0, f.resolver.Len())
	assert.Equal(t, []string{"task/t1"}, f.tracker.synced)
}

func TestPerformSyncDeleteConflictType(t *testing.T) {
	tr := &transport.TransportMock{
		SyncOperationFunc: func(ctx context.Context, op *models.SyncOperation) (*transport.Result, error) {
			return &transport.Result{
				Conflict:      true,
				RemoteVersion: 5,
				RemoteHash:    "remote-hash",
				RemoteDeleted: true,
			}, nil
		},
	}
	f := newFixture(t, true, tr, nil)

	f.enqueue(t, "t1", models.OperationUpdate)

	_, err := f.coord.PerformSync(context.Background(), nil)
	require.NoError(t, err)

	require.Equal(t, 1, f.resolver.Len())
	assert.Equal(t, models.ConflictTypeDelete, f.resolver.List()[0].Type)
}

func TestPerformSyncTransportError(t *testing.T) {
	tr := &transport.TransportMock{
		SyncOperationFunc: func(ctx context.Context, op *models.SyncOperation) (*transport.Result, error) {
			return nil, errors.New("connection reset")
		},
	}
	f := newFixture(t, true, tr, nil)

	op := f.enqueue(t, "t1", models.OperationUpdate)

	report, err := f.coord.PerformSync(context.Background(), nil)
	require.NoError(t, err, "per-operation failures do not fail the run itself")

	assert.Equal(t, models.SyncRunFailed, report.Status)
	assert.Equal(t, 1, report.OperationsFailed)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "connection reset", report.Errors[0].Message)
	assert.False(t, report.Errors[0].Dropped)

	assert.Equal(t, models.SyncStatusPending, f.coord.Status(),
		"failed operations stay queued and keep the engine pending")
	assert.Equal(t, []string{"task/t1"}, f.tracker.attempts)

	// The operation backed off: not ready now, ready after the delay.
	assert.Empty(t, f.queue.Snapshot(nil, f.clk.Now()))
	got := f.queue.Get("task", "t1")
	require.NotNil(t, got)
	assert.Equal(t, 1, got.Metadata.Attempts)
	assert.Equal(t, op.ID, got.ID)
	require.NotNil(t, got.Metadata.NextRetry)
	assert.Equal(t, f.clk.Now().Add(4*time.Second), *got.Metadata.NextRetry,
		"first retry waits base*2^1")
}

func TestPerformSyncPartial(t *testing.T) {
	tr := &transport.TransportMock{
		SyncOperationFunc: func(ctx context.Context, op *models.SyncOperation) (*transport.Result, error) {
			if op.EntityID == "bad" {
				return nil, errors.New("boom")
			}
			return &transport.Result{Success: true, RemoteVersion: 2}, nil
		},
	}
	f := newFixture(t, true, tr, nil)

	f.enqueue(t, "good", models.OperationUpdate)
	f.enqueue(t, "bad", models.OperationUpdate)

	report, err := f.coord.PerformSync(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, models.SyncRunPartial, report.Status)
	assert.Equal(t, 1, report.OperationsSucceeded)
	assert.Equal(t, 1, report.OperationsFailed)
	assert.Equal(t, models.SyncStatusPending, f.coord.Status())
}

func TestPerformSyncRejectedWithoutError(t *testing.T) {
	tr := &transport.TransportMock{
		SyncOperationFunc: func(ctx context.Context, op *models.SyncOperation) (*transport.Result, error) {
			return &transport.Result{Error: "quota exceeded on server"}, nil
		},
	}
	f := newFixture(t, true, tr, nil)

	f.enqueue(t, "t1", models.OperationUpdate)

	report, err := f.coord.PerformSync(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, report.Errors, 1)
	assert.Equal(t, "quota exceeded on server", report.Errors[0].Message)
}

func TestPerformSyncDropsExhaustedOperation(t *testing.T) {
	tr := &transport.TransportMock{
		SyncOperationFunc: func(ctx context.Context, op *models.SyncOperation) (*transport.Result, error) {
			return nil, errors.New("still broken")
		},
	}
	f := newFixture(t, true, tr, func(c *config.Config) {
		c.MaxRetries = 2
		c.BackoffBase = time.Second
	})

	f.enqueue(t, "t1", models.OperationUpdate)

	report, err := f.coord.PerformSync(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, report.Errors[0].Dropped)
	f.clk.Advance(time.Hour)

	report, err = f.coord.PerformSync(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, report.Errors, 1)
	assert.True(t, report.Errors[0].Dropped, "second failure exhausts a budget of 2")
	assert.Equal(t, 0, f.queue.Len())
}

func TestPerformSyncConflictLimitDefers(t *testing.T) {
	tr := &transport.TransportMock{
		SyncOperationFunc: func(ctx context.Context, op *models.SyncOperation) (*transport.Result, error) {
			return &transport.Result{
				Conflict:      true,
				RemoteVersion: 5,
				RemoteHash:    "remote-hash",
			}, nil
		},
	}
	f := newFixture(t, true, tr, func(c *config.Config) {
		c.MaxConflicts = 1
	})

	f.enqueue(t, "t1", models.OperationUpdate)
	f.enqueue(t, "t2", models.OperationUpdate)

	report, err := f.coord.PerformSync(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 1, report.ConflictsDetected)
	assert.Equal(t, 1, report.OperationsFailed, "overflow conflict deferred, not lost")
	assert.Equal(t, 1, f.resolver.Len())
	assert.Equal(t, 1, f.queue.Len(), "deferred operation stays queued with backoff")
}

func TestPerformSyncSingleFlight(t *testing.T) {
	release := make(chan struct{})
	tr := &transport.TransportMock{
		SyncOperationFunc: func(ctx context.Context, op *models.SyncOperation) (*transport.Result, error) {
			<-release
			return &transport.Result{Success: true, RemoteVersion: 2}, nil
		},
	}
	f := newFixture(t, true, tr, nil)

	f.enqueue(t, "t1", models.OperationUpdate)

	var wg sync.WaitGroup
	reports := make([]*models.SyncReport, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := f.coord.PerformSync(context.Background(), nil)
			assert.NoError(t, err)
			reports[i] = r
		}(i)
	}

	// Let both callers reach the single-flight gate before the transport
	// responds.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Len(t, tr.SyncOperationCalls(), 1, "one transport call despite two callers")
	assert.Same(t, reports[0], reports[1], "joined caller receives the in-flight run's report")
}

func TestPerformSyncOfflineMidRunCompletesSnapshot(t *testing.T) {
	var f *fixture
	tr := &transport.TransportMock{
		SyncOperationFunc: func(ctx context.Context, op *models.SyncOperation) (*transport.Result, error) {
			// Connectivity drops while the run is in flight.
			f.online.set(false)
			return &transport.Result{Success: true, RemoteVersion: 2}, nil
		},
	}
	f = newFixture(t, true, tr, nil)

	f.enqueue(t, "t1", models.OperationUpdate)
	f.enqueue(t, "t2", models.OperationUpdate)

	report, err := f.coord.PerformSync(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 2, report.OperationsProcessed, "in-flight run finishes its snapshot")

	_, err = f.coord.PerformSync(context.Background(), nil)
	assert.ErrorIs(t, err, ErrOffline, "new runs are prevented")
}

func TestPerformSyncFilter(t *testing.T) {
	tr := successTransport()
	f := newFixture(t, true, tr, nil)

	f.enqueue(t, "t1", models.OperationUpdate)
	note := &models.SyncOperation{
		EntityType: "note", EntityID: "n1", Op: models.OperationUpdate,
	}
	require.NoError(t, f.queue.Add(context.Background(), note))

	report, err := f.coord.PerformSync(context.Background(), &queue.Filter{EntityType: "task"})
	require.NoError(t, err)

	assert.Equal(t, 1, report.OperationsProcessed)
	assert.Equal(t, 1, f.queue.Len(), "filtered-out operation stays queued")
	assert.Equal(t, models.SyncStatusPending, f.coord.Status())
}

func TestStatusTransitions(t *testing.T) {
	f := newFixture(t, false, successTransport(), nil)
	assert.Equal(t, models.SyncStatusOffline, f.coord.Status())

	f.enqueue(t, "t1", models.OperationUpdate)

	f.online.set(true)
	f.coord.SetOnline()
	assert.Equal(t, models.SyncStatusPending, f.coord.Status())

	_, err := f.coord.PerformSync(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusSynced, f.coord.Status())

	f.coord.SetOffline()
	assert.Equal(t, models.SyncStatusOffline, f.coord.Status())

	f.coord.SetOnline()
	assert.Equal(t, models.SyncStatusSynced, f.coord.Status(), "empty queue comes back synced")
}

func TestStatusChangeEvents(t *testing.T) {
	f := newFixture(t, true, successTransport(), nil)

	var statuses []models.SyncStatus
	f.bus.Subscribe(events.KindStatusChanged, func(ev events.Event) {
		statuses = append(statuses, ev.(events.StatusChanged).Status)
	})

	f.enqueue(t, "t1", models.OperationUpdate)

	_, err := f.coord.PerformSync(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, []models.SyncStatus{models.SyncStatusSyncing, models.SyncStatusSynced}, statuses)
}

func TestTimerSyncsPendingWork(t *testing.T) {
	tr := successTransport()
	f := newFixture(t, true, tr, nil)

	f.enqueue(t, "t1", models.OperationUpdate)

	f.coord.StartTimer(context.Background())
	defer f.coord.StopTimer()

	require.Eventually(t, func() bool {
		f.clk.Advance(config.Default().SyncInterval)
		return f.queue.Len() == 0
	}, time.Second, 5*time.Millisecond)
	assert.Len(t, tr.SyncOperationCalls(), 1)
}

func TestTimerSkipsWhenIdle(t *testing.T) {
	tr := successTransport()
	f := newFixture(t, true, tr, nil)

	f.coord.StartTimer(context.Background())
	f.clk.Advance(config.Default().SyncInterval)

	// Give a mistaken run a chance to happen.
	time.Sleep(50 * time.Millisecond)
	f.coord.StopTimer()

	assert.Empty(t, tr.SyncOperationCalls(), "an empty queue triggers no run")
}

func TestStartTimerTwice(t *testing.T) {
	f := newFixture(t, true, successTransport(), nil)

	f.coord.StartTimer(context.Background())
	f.coord.StartTimer(context.Background())
	f.coord.StopTimer()
	f.coord.StopTimer()
}
