package pgstore

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/opsledger/internal/ops"
)

// openTestStore connects to OPSLEDGER_TEST_PG_DSN (key=value form) and
// isolates the test in a fresh schema. Tests skip when no database is configured.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("OPSLEDGER_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("OPSLEDGER_TEST_PG_DSN not set")
	}

	schema := "opsledger_test_" + uuid.NewString()[:8]
	admin, err := Open(dsn)
	require.NoError(t, err)
	require.NoError(t, admin.db.Exec(fmt.Sprintf(`CREATE SCHEMA %q`, schema)).Error)
	t.Cleanup(func() {
		admin.db.Exec(fmt.Sprintf(`DROP SCHEMA %q CASCADE`, schema))
		admin.Close()
	})

	n := 0
	s, err := Open(fmt.Sprintf("%s search_path=%s", dsn, schema), WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("rec-%d", n)
	}))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_InsertAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	src, err := s.InsertRecord(ctx, ops.Record{Kind: ops.KindPrint, IsSource: true, PrintJobID: "job-1", Planned: 100, ItemID: "item-1"})
	require.NoError(t, err)
	assert.Equal(t, "rec-1", src)

	for _, q := range []int64{30, 20} {
		_, err := s.InsertRecord(ctx, ops.Record{Kind: ops.KindPrint, PrintJobID: "job-1", Executed: q, ItemID: "item-1"})
		require.NoError(t, err)
	}

	recs, err := s.ListRecords(ctx, ops.Filter{PrintJobID: "job-1", IsSource: ops.Bool(false)})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "rec-2", recs[0].ID)
	assert.Equal(t, int64(20), recs[1].Executed)
	assert.Equal(t, ops.StatusPending, recs[0].Status)
}

func TestStore_SecondSourceConflicts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.InsertRecord(ctx, ops.Record{Kind: ops.KindCut, IsSource: true, CutJobID: "job-2", Planned: 10})
	require.NoError(t, err)
	_, err = s.InsertRecord(ctx, ops.Record{Kind: ops.KindCut, IsSource: true, CutJobID: "job-2", Planned: 5})
	assert.ErrorIs(t, err, ops.ErrConflict)

	// Executions share the grouping id freely.
	_, err = s.InsertRecord(ctx, ops.Record{Kind: ops.KindCut, CutJobID: "job-2", Executed: 3})
	assert.NoError(t, err)
}

func TestStore_UpdateDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.InsertRecord(ctx, ops.Record{Kind: ops.KindPrint, PrintJobID: "job-1", Executed: 4, Draft: true})
	require.NoError(t, err)

	require.NoError(t, s.UpdateRecord(ctx, id, ops.Patch{Executed: ops.Int64(6), Draft: ops.Bool(false)}))
	got, err := s.GetRecord(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(6), got.Executed)
	assert.False(t, got.Draft)

	assert.ErrorIs(t, s.UpdateRecord(ctx, "missing", ops.Patch{Executed: ops.Int64(1)}), ops.ErrNotFound)

	require.NoError(t, s.DeleteRecord(ctx, id))
	_, err = s.GetRecord(ctx, id)
	assert.ErrorIs(t, err, ops.ErrNotFound)
	assert.ErrorIs(t, s.DeleteRecord(ctx, id), ops.ErrNotFound)
}

func TestStore_ViewAndDirectories(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.InsertRecord(ctx, ops.Record{Kind: ops.KindPrint, IsSource: true, PrintJobID: "job-1", Planned: 10})
	require.NoError(t, err)

	err = s.View(ctx, func(r ops.Reader) error {
		recs, err := r.ListRecords(ctx, ops.Filter{})
		if err != nil {
			return err
		}
		assert.Len(t, recs, 1)
		return nil
	})
	require.NoError(t, err)

	imported, err := s.PlanImported(ctx, "plan-1")
	require.NoError(t, err)
	assert.False(t, imported)
	require.NoError(t, s.MarkPlanImported(ctx, "plan-1", "rec-1"))
	require.NoError(t, s.MarkPlanImported(ctx, "plan-1", "rec-9"))
	imported, err = s.PlanImported(ctx, "plan-1")
	require.NoError(t, err)
	assert.True(t, imported)

	require.NoError(t, s.AddMachine(ctx, ops.Machine{ID: "m-2", Name: "ZUND"}))
	require.NoError(t, s.AddMachine(ctx, ops.Machine{ID: "m-1", Name: "HP LATEX"}))
	require.NoError(t, s.AddMachine(ctx, ops.Machine{ID: "m-2", Name: "ZUND G3"}))
	machines, err := s.Machines(ctx)
	require.NoError(t, err)
	assert.Equal(t, []ops.Machine{{ID: "m-1", Name: "HP LATEX"}, {ID: "m-2", Name: "ZUND G3"}}, machines)
}
