package engine

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/opsledger/internal/ops"
	"github.com/roach88/opsledger/internal/store"
	"github.com/roach88/opsledger/internal/testutil"
)

var fixtureStart = time.Date(2026, 3, 2, 9, 30, 15, 0, time.UTC)

var testWorkOrder = ops.WorkOrder{ID: "wo-1", Number: "FO2026-0042", ItemID: "item-1"}

// fixture is an engine over a temp-dir SQLite store with deterministic ids
// and a frozen clock.
type fixture struct {
	t      *testing.T
	ctx    context.Context
	store  *store.Store
	clock  *testutil.DeterministicClock
	audit  *recordingAudit
	engine *Engine
}

func newFixture(t *testing.T, opts ...EngineOption) *fixture {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "engine.db"),
		store.WithIDGenerator(testutil.NewSequenceIDs("rec").Generate))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	f := &fixture{
		t:     t,
		ctx:   context.Background(),
		store: s,
		clock: testutil.NewDeterministicClock(fixtureStart, 0),
		audit: &recordingAudit{},
	}
	f.engine = New(s, f.options(opts...)...)
	return f
}

// options returns the fixture's engine options followed by extra.
func (f *fixture) options(extra ...EngineOption) []EngineOption {
	return append([]EngineOption{
		WithClock(f.clock),
		WithJobIDGenerator(testutil.NewSequenceIDs("job")),
		WithAuditLog(f.audit),
	}, extra...)
}

// faulty returns an engine over a fault-injecting wrapper of the fixture's
// store. Plan tracking and the machine directory bypass the wrapper.
func (f *fixture) faulty() (*Engine, *testutil.FaultyStore) {
	fs := testutil.NewFaultyStore(f.store)
	e := New(fs, f.options(WithPlanTracker(f.store), WithMachineDirectory(f.store))...)
	return e, fs
}

func (f *fixture) get(id string) ops.Record {
	f.t.Helper()
	rec, err := f.store.GetRecord(f.ctx, id)
	require.NoError(f.t, err)
	return rec
}

func (f *fixture) importPlan(plan ops.PlanDescription) ImportedJob {
	f.t.Helper()
	res := f.engine.ImportPlans(f.ctx, testWorkOrder, []ops.PlanDescription{plan})
	require.Empty(f.t, res.Errors)
	require.Len(f.t, res.Jobs, 1)
	return res.Jobs[0]
}

// importPrint imports one print plan and returns the print source and its
// paired cut source.
func (f *fixture) importPrint(qty int64) (printSrc, cutSrc ops.Record) {
	f.t.Helper()
	job := f.importPlan(ops.PlanDescription{Name: "Plano 1", Ordinal: 1, Kind: ops.PlanPrint, Quantity: qty, Material: "PVC 3mm"})
	return f.get(job.SourceID), f.get(job.PairedCutID)
}

func (f *fixture) importCut(qty int64) ops.Record {
	f.t.Helper()
	job := f.importPlan(ops.PlanDescription{Name: "Corte 1", Ordinal: 1, Kind: ops.PlanCut, Quantity: qty})
	return f.get(job.SourceID)
}

// exec writes a committed execution record under src directly to the store,
// bypassing validation.
func (f *fixture) exec(src ops.Record, qty int64) string {
	f.t.Helper()
	rec := ops.Record{
		Kind:          src.Kind,
		PrintJobID:    src.PrintJobID,
		CutJobID:      src.CutJobID,
		SourcePrintID: src.SourcePrintID,
		ParentID:      src.ID,
		Executed:      qty,
		ItemID:        src.ItemID,
		Material:      src.Material,
	}
	id, err := f.store.InsertRecord(f.ctx, rec)
	require.NoError(f.t, err)
	return id
}

func (f *fixture) progress(class ops.JobClass, id string) ops.Progress {
	f.t.Helper()
	p, err := f.engine.Progress(f.ctx, ops.JobRef{Class: class, ID: id})
	require.NoError(f.t, err)
	return p
}

// recordingAudit keeps every entry in memory and optionally fails.
type recordingAudit struct {
	mu      sync.Mutex
	entries []AuditEntry
	err     error
}

func (a *recordingAudit) Record(_ context.Context, entry AuditEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.entries = append(a.entries, entry)
	return nil
}

func (a *recordingAudit) actions() []AuditAction {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]AuditAction, len(a.entries))
	for i, e := range a.entries {
		out[i] = e.Action
	}
	return out
}

var errBoom = errors.New("boom")
