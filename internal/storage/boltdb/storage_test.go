package boltdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localfirst/offsync/internal/storage"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	s, err := New(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})
	return s
}

func TestBackendPutGet(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "task", "t1", []byte("hello")))

	got, err := s.Get(ctx, "task", "t1")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)

	// Replace in place.
	require.NoError(t, s.Put(ctx, "task", "t1", []byte("world")))
	got, err = s.Get(ctx, "task", "t1")
	require.NoError(t, err)
	assert.Equal(t, []byte("world"), got)
}

func TestBackendGetNotFound(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	_, err := s.Get(ctx, "task", "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Unknown type bucket behaves the same as an unknown id.
	_, err = s.Get(ctx, "note", "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestBackendGetAll(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "task", "t1", []byte("a")))
	require.NoError(t, s.Put(ctx, "task", "t2", []byte("b")))
	require.NoError(t, s.Put(ctx, "note", "n1", []byte("c")))

	tasks, err := s.GetAll(ctx, "task")
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
	assert.Equal(t, []byte("a"), tasks["t1"])
	assert.Equal(t, []byte("b"), tasks["t2"])

	empty, err := s.GetAll(ctx, "project")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestBackendDelete(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "task", "t1", []byte("a")))
	require.NoError(t, s.Delete(ctx, "task", "t1"))

	_, err := s.Get(ctx, "task", "t1")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Deleting something that never existed is a no-op.
	require.NoError(t, s.Delete(ctx, "task", "t1"))
	require.NoError(t, s.Delete(ctx, "ghost", "g1"))
}

func TestBackendClear(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "task", "t1", []byte("a")))
	require.NoError(t, s.PutOperation(ctx, "op1", []byte("op")))

	require.NoError(t, s.Clear(ctx))

	_, err := s.Get(ctx, "task", "t1")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Clear does not touch the operation log.
	ops, err := s.ListOperations(ctx)
	require.NoError(t, err)
	assert.Len(t, ops, 1)
}

func TestBackendClearCache(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "task", "t1", []byte("a")))
	require.NoError(t, s.ClearCache(ctx))

	// Entities survive a cache clear.
	got, err := s.Get(ctx, "task", "t1")
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), got)
}

func TestOperationLogRoundTrip(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.PutOperation(ctx, "op1", []byte("first")))
	require.NoError(t, s.PutOperation(ctx, "op2", []byte("second")))

	ops, err := s.ListOperations(ctx)
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, []byte("first"), ops["op1"])

	require.NoError(t, s.DeleteOperation(ctx, "op1"))
	ops, err = s.ListOperations(ctx)
	require.NoError(t, err)
	assert.Len(t, ops, 1)

	require.NoError(t, s.ClearOperations(ctx))
	ops, err = s.ListOperations(ctx)
	require.NoError(t, err)
	assert.Empty(t, ops)
}

func TestStoragePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	s, err := New(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "task", "t1", []byte("persisted")))
	require.NoError(t, s.PutOperation(ctx, "op1", []byte("queued")))
	require.NoError(t, s.Close())

	s, err = New(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx, "task", "t1")
	require.NoError(t, err)
	assert.Equal(t, []byte("persisted"), got)

	ops, err := s.ListOperations(ctx)
	require.NoError(t, err)
	assert.Contains(t, ops, "op1")
}

func TestEstimator(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	payload := make([]byte, 4096)
	require.NoError(t, s.Put(ctx, "task", "t1", payload))
	require.NoError(t, s.PutOperation(ctx, "op1", payload))

	est := NewEstimator(s, 1<<20)

	quota, err := est.Estimate(ctx)
	require.NoError(t, err)

	assert.Positive(t, quota.Usage)
	assert.Equal(t, int64(1<<20), quota.Quota)
	assert.Positive(t, quota.UsagePercent)
	assert.Positive(t, quota.Breakdown.EntityStore)
	assert.Positive(t, quota.Breakdown.OperationLog)

	accounted := quota.Breakdown.EntityStore + quota.Breakdown.OperationLog +
		quota.Breakdown.Cache + quota.Breakdown.Other
	assert.Equal(t, quota.Usage, accounted)
}
