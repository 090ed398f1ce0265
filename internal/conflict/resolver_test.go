package conflict

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localfirst/offsync/internal/clock"
	"github.com/localfirst/offsync/internal/events"
	"github.com/localfirst/offsync/internal/models"
	"github.com/localfirst/offsync/internal/storage"
)

// fakeWriter records writes and serves a fixed set of entities.
type fakeWriter struct {
	entities map[string]*models.Entity
	saved    []*models.Entity
	applied  []*models.Entity
}

func newFakeWriter(entities ...*models.Entity) *fakeWriter {
	w := &fakeWriter{entities: make(map[string]*models.Entity)}
	for _, e := range entities {
		w.entities[e.Type+"/"+e.ID] = e
	}
	return w
}

func (w *fakeWriter) Get(ctx context.Context, entityType, id string) (*models.Entity, error) {
	if e, ok := w.entities[entityType+"/"+id]; ok {
		return e.Clone(), nil
	}
	return nil, storage.ErrNotFound
}

func (w *fakeWriter) Save(ctx context.Context, e *models.Entity) error {
	w.saved = append(w.saved, e)
	w.entities[e.Type+"/"+e.ID] = e
	return nil
}

func (w *fakeWriter) ApplyRemote(ctx context.Context, e *models.Entity) error {
	w.applied = append(w.applied, e)
	w.entities[e.Type+"/"+e.ID] = e
	return nil
}

func testStart() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func newTestResolver(t *testing.T, limit int, entities ...*models.Entity) (*Resolver, *fakeWriter, *clock.Manual) {
	t.Helper()

	w := newFakeWriter(entities...)
	clk := clock.NewManual(testStart())
	bus := events.NewBus(slog.Default())
	return NewResolver(w, clk, bus, slog.Default(), limit), w, clk
}

func taskEntity() *models.Entity {
	return &models.Entity{
		ID:   "t1",
		Type: "task",
		Data: map[string]any{"title": "local", "done": false},
		Metadata: models.EntityMetadata{
			Version: 3,
		},
	}
}

func taskConflict() *models.DataConflict {
	return &models.DataConflict{
		EntityType:    "task",
		EntityID:      "t1",
		LocalData:     map[string]any{"title": "local", "done": false},
		RemoteData:    map[string]any{"title": "remote", "owner": "sam"},
		LocalVersion:  3,
		RemoteVersion: 5,
		RemoteHash:    "remote-hash",
		Type:          models.ConflictTypeVersion,
	}
}

func TestDetect(t *testing.T) {
	op := &models.SyncOperation{BaseVersion: 3, LocalHash: "local-hash"}

	assert.True(t, Detect(op, 5, "remote-hash"), "remote advanced with different content")
	assert.False(t, Detect(op, 3, "remote-hash"), "remote did not advance past base")
	assert.False(t, Detect(op, 5, "local-hash"), "same content is not a conflict")
	assert.False(t, Detect(op, 2, "local-hash"))
}

func TestRegisterAssignsIDAndTimestamp(t *testing.T) {
	r, _, _ := newTestResolver(t, 10)

	c := taskConflict()
	require.NoError(t, r.Register(c))

	assert.NotEmpty(t, c.ID)
	assert.Equal(t, testStart(), c.DetectedAt)
	assert.Equal(t, 1, r.Len())

	got, err := r.Get(c.ID)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestRegisterLimit(t *testing.T) {
	r, _, _ := newTestResolver(t, 2)

	require.NoError(t, r.Register(taskConflict()))
	second := taskConflict()
	second.EntityID = "t2"
	require.NoError(t, r.Register(second))

	third := taskConflict()
	third.EntityID = "t3"
	err := r.Register(third)
	assert.ErrorIs(t, err, ErrConflictLimit)
	assert.Equal(t, 2, r.Len())
}

func TestListOrderedByDetection(t *testing.T) {
	r, _, clk := newTestResolver(t, 10)

	first := taskConflict()
	require.NoError(t, r.Register(first))
	clk.Advance(time.Minute)

	second := taskConflict()
	second.EntityID = "t2"
	require.NoError(t, r.Register(second))

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)
}

func TestResolveDataPure(t *testing.T) {
	local := map[string]any{"title": "local", "done": false}
	remote := map[string]any{"title": "remote", "owner": "sam"}

	tests := []struct {
		name     string
		strategy models.ResolutionStrategy
		custom   map[string]any
		want     map[string]any
	}{
		{"use local", models.ResolveUseLocal, nil, map[string]any{"title": "local", "done": false}},
		{"use remote", models.ResolveUseRemote, nil, map[string]any{"title": "remote", "owner": "sam"}},
		{"merge local wins", models.ResolveMerge, nil, map[string]any{"title": "local", "done": false, "owner": "sam"}},
		{"user choice", models.ResolveUserChoice, map[string]any{"title": "mine"}, map[string]any{"title": "mine"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveData(tt.strategy, local, remote, tt.custom)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			// Identical inputs yield identical output.
			again, err := resolveData(tt.strategy, local, remote, tt.custom)
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestResolveDataErrors(t *testing.T) {
	_, err := resolveData(models.ResolveUserChoice, nil, nil, nil)
	assert.ErrorIs(t, err, ErrCustomDataRequired)

	_, err = resolveData("mystery", nil, nil, nil)
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestResolveUseLocal(t *testing.T) {
	r, w, _ := newTestResolver(t, 10, taskEntity())

	c := taskConflict()
	require.NoError(t, r.Register(c))

	resolved, err := r.Resolve(context.Background(), c.ID, models.ResolveUseLocal, nil)
	require.NoError(t, err)

	assert.True(t, resolved.Resolved)
	assert.NotNil(t, resolved.ResolvedAt)
	assert.Equal(t, models.ResolveUseLocal, *resolved.Strategy)
	assert.Equal(t, 0, r.Len(), "resolved conflict leaves the active set")

	// Local data kept means the entity must sync again.
	require.Len(t, w.saved, 1)
	assert.Empty(t, w.applied)
	assert.Equal(t, "local", w.saved[0].Data["title"])
	assert.Equal(t, models.SourceMerged, w.saved[0].Metadata.Source)
	require.NotNil(t, w.saved[0].SyncState.RemoteVersion)
	assert.Equal(t, int64(5), *w.saved[0].SyncState.RemoteVersion)
}

func TestResolveUseRemote(t *testing.T) {
	r, w, _ := newTestResolver(t, 10, taskEntity())

	c := taskConflict()
	require.NoError(t, r.Register(c))

	_, err := r.Resolve(context.Background(), c.ID, models.ResolveUseRemote, nil)
	require.NoError(t, err)

	// Remote data kept: local equals remote, nothing to push.
	require.Len(t, w.applied, 1)
	assert.Empty(t, w.saved)
	assert.Equal(t, "remote", w.applied[0].Data["title"])
}

func TestResolveMerge(t *testing.T) {
	r, w, _ := newTestResolver(t, 10, taskEntity())

	c := taskConflict()
	require.NoError(t, r.Register(c))

	_, err := r.Resolve(context.Background(), c.ID, models.ResolveMerge, nil)
	require.NoError(t, err)

	require.Len(t, w.saved, 1)
	data := w.saved[0].Data
	assert.Equal(t, "local", data["title"], "local wins on key collision")
	assert.Equal(t, false, data["done"], "local-only key kept")
	assert.Equal(t, "sam", data["owner"], "remote-only key kept")
}

func TestResolveCreateCopy(t *testing.T) {
	r, w, clk := newTestResolver(t, 10, taskEntity())

	c := taskConflict()
	require.NoError(t, r.Register(c))

	_, err := r.Resolve(context.Background(), c.ID, models.ResolveCreateCopy, nil)
	require.NoError(t, err)

	// Original keeps the remote data.
	require.Len(t, w.applied, 1)
	assert.Equal(t, "t1", w.applied[0].ID)
	assert.Equal(t, "remote", w.applied[0].Data["title"])

	// The local data lives on in a fresh entity.
	require.Len(t, w.saved, 1)
	copyEntity := w.saved[0]
	assert.Equal(t, fmt.Sprintf("t1_copy_%d", clk.Now().UnixMilli()), copyEntity.ID)
	assert.Equal(t, "local", copyEntity.Data["title"])
	assert.Equal(t, int64(0), copyEntity.Metadata.Version, "copy starts as a brand-new entity")
}

func TestResolveUnknownConflict(t *testing.T) {
	r, _, _ := newTestResolver(t, 10)

	_, err := r.Resolve(context.Background(), "ghost", models.ResolveUseLocal, nil)
	assert.ErrorIs(t, err, ErrConflictNotFound)
}

func TestResolveUserChoiceRequiresData(t *testing.T) {
	r, _, _ := newTestResolver(t, 10, taskEntity())

	c := taskConflict()
	require.NoError(t, r.Register(c))

	_, err := r.Resolve(context.Background(), c.ID, models.ResolveUserChoice, nil)
	assert.ErrorIs(t, err, ErrCustomDataRequired)
	assert.Equal(t, 1, r.Len(), "failed resolution keeps the conflict active")
}
