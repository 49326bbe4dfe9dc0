package testutil

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/opsledger/internal/ops"
	"github.com/roach88/opsledger/internal/store"
)

func newFaultyStore(t *testing.T) *FaultyStore {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "faulty.db"), store.WithIDGenerator(NewSequenceIDs("rec").Generate))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return NewFaultyStore(s)
}

func execution(job string, qty int64) ops.Record {
	return ops.Record{Kind: ops.KindPrint, PrintJobID: job, Executed: qty}
}

func TestFaultyStore_PassThrough(t *testing.T) {
	f := newFaultyStore(t)
	ctx := context.Background()

	id, err := f.InsertRecord(ctx, execution("job-1", 3))
	require.NoError(t, err)
	assert.Equal(t, "rec-1", id)

	got, err := f.GetRecord(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.Executed)
	assert.Equal(t, 1, f.Writes())
}

func TestFaultyStore_FailReads(t *testing.T) {
	f := newFaultyStore(t)
	ctx := context.Background()

	_, err := f.InsertRecord(ctx, execution("job-1", 3))
	require.NoError(t, err)

	f.FailReads(nil)
	_, err = f.ListRecords(ctx, ops.Filter{})
	require.NoError(t, err)

	f.FailReads(ErrInjected)
	_, err = f.GetRecord(ctx, "rec-1")
	assert.ErrorIs(t, err, ErrInjected)
	_, err = f.ListRecords(ctx, ops.Filter{})
	assert.ErrorIs(t, err, ErrInjected)
	err = f.View(ctx, func(ops.Reader) error { return nil })
	assert.ErrorIs(t, err, ErrInjected)

	// Writes are unaffected.
	_, err = f.InsertRecord(ctx, execution("job-1", 1))
	assert.NoError(t, err)
}

func TestFaultyStore_FailWritesAfter(t *testing.T) {
	f := newFaultyStore(t)
	ctx := context.Background()
	boom := errors.New("disk full")

	f.FailWritesAfter(1, boom)

	_, err := f.InsertRecord(ctx, execution("job-1", 1))
	require.NoError(t, err)
	_, err = f.InsertRecord(ctx, execution("job-1", 2))
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, f.UpdateRecord(ctx, "rec-1", ops.Patch{Executed: ops.Int64(5)}), boom)
	assert.ErrorIs(t, f.DeleteRecord(ctx, "rec-1"), boom)

	f.FailWrites(nil)
	assert.NoError(t, f.DeleteRecord(ctx, "rec-1"))
}
