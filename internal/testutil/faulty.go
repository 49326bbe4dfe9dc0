package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/roach88/opsledger/internal/ops"
)

// ErrInjected is the default error returned by a failing FaultyStore.
var ErrInjected = errors.New("injected store failure")

// FaultyStore wraps an ops.Store and fails reads or writes on demand.
//
// Used to exercise the engine's failure policies: validation must fail
// open when reads fail, while import/split/start must surface errors.
type FaultyStore struct {
	inner ops.Store

	mu        sync.Mutex
	readErr   error
	writeErr  error
	failAfter int // writes allowed before writeErr applies; -1 = immediately
	writes    int
}

var _ ops.Store = (*FaultyStore)(nil)

// NewFaultyStore wraps inner. It behaves exactly like inner until a
// failure is configured.
func NewFaultyStore(inner ops.Store) *FaultyStore {
	return &FaultyStore{inner: inner, failAfter: -1}
}

// FailReads makes every read return err. A nil err restores reads.
func (f *FaultyStore) FailReads(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readErr = err
}

// FailWrites makes every write return err. A nil err restores writes.
func (f *FaultyStore) FailWrites(err error) {
	f.FailWritesAfter(0, err)
}

// FailWritesAfter lets n more writes through, then fails every following
// write with err.
func (f *FaultyStore) FailWritesAfter(n int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writeErr = err
	f.failAfter = n
	f.writes = 0
}

// Writes returns how many writes reached the wrapped store since the last
// failure configuration.
func (f *FaultyStore) Writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

func (f *FaultyStore) readFailure() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.readErr
}

func (f *FaultyStore) writeFailure() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil && f.writes >= f.failAfter {
		return f.writeErr
	}
	f.writes++
	return nil
}

func (f *FaultyStore) GetRecord(ctx context.Context, id string) (ops.Record, error) {
	if err := f.readFailure(); err != nil {
		return ops.Record{}, err
	}
	return f.inner.GetRecord(ctx, id)
}

func (f *FaultyStore) ListRecords(ctx context.Context, filter ops.Filter) ([]ops.Record, error) {
	if err := f.readFailure(); err != nil {
		return nil, err
	}
	return f.inner.ListRecords(ctx, filter)
}

func (f *FaultyStore) View(ctx context.Context, fn func(ops.Reader) error) error {
	if err := f.readFailure(); err != nil {
		return err
	}
	return f.inner.View(ctx, fn)
}

func (f *FaultyStore) InsertRecord(ctx context.Context, r ops.Record) (string, error) {
	if err := f.writeFailure(); err != nil {
		return "", err
	}
	return f.inner.InsertRecord(ctx, r)
}

func (f *FaultyStore) UpdateRecord(ctx context.Context, id string, p ops.Patch) error {
	if err := f.writeFailure(); err != nil {
		return err
	}
	return f.inner.UpdateRecord(ctx, id, p)
}

func (f *FaultyStore) DeleteRecord(ctx context.Context, id string) error {
	if err := f.writeFailure(); err != nil {
		return err
	}
	return f.inner.DeleteRecord(ctx, id)
}
