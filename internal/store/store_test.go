package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/opsledger/internal/ops"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	tables := []string{"operations", "imported_plans", "machines"}
	for _, table := range tables {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after idempotent opens: %v", table, err)
		}
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/test.db")
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)

	require.NoError(t, s.verifyPragma("journal_mode", "wal"))
	require.NoError(t, s.verifyPragma("foreign_keys", "1"))
	require.NoError(t, s.verifyPragma("busy_timeout", "5000"))
	require.NoError(t, s.verifyPragma("user_version", "1"))
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

func TestDB_ReturnsUnderlyingConnection(t *testing.T) {
	s := createTestStore(t)

	var db *sql.DB = s.DB()
	require.NotNil(t, db)
	require.NoError(t, db.Ping())
}

func TestView_SeesConsistentSnapshot(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.InsertRecord(ctx, printSource("job-1", 100))
	require.NoError(t, err)
	_, err = s.InsertRecord(ctx, printExecution("job-1", 30))
	require.NoError(t, err)

	var source ops.Record
	var execs []ops.Record
	err = s.View(ctx, func(r ops.Reader) error {
		recs, err := r.ListRecords(ctx, ops.Filter{PrintJobID: "job-1", IsSource: ops.Bool(true)})
		if err != nil {
			return err
		}
		source = recs[0]
		execs, err = r.ListRecords(ctx, ops.Filter{PrintJobID: "job-1", IsSource: ops.Bool(false)})
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, int64(100), source.Planned)
	require.Len(t, execs, 1)
	assert.Equal(t, int64(30), execs[0].Executed)
}

func TestView_PropagatesCallbackError(t *testing.T) {
	s := createTestStore(t)
	boom := errors.New("boom")

	err := s.View(context.Background(), func(ops.Reader) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestMachines(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	got, err := s.Machines(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)

	require.NoError(t, s.AddMachine(ctx, ops.Machine{ID: "m-2", Name: "Zund G3"}))
	require.NoError(t, s.AddMachine(ctx, ops.Machine{ID: "m-1", Name: "HP Latex 800"}))
	require.NoError(t, s.AddMachine(ctx, ops.Machine{ID: "m-2", Name: "Zund G3 XL"}))

	got, err = s.Machines(ctx)
	require.NoError(t, err)
	assert.Equal(t, []ops.Machine{
		{ID: "m-1", Name: "HP Latex 800"},
		{ID: "m-2", Name: "Zund G3 XL"},
	}, got)
}

func TestPlanTracking(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	imported, err := s.PlanImported(ctx, "plan-1")
	require.NoError(t, err)
	assert.False(t, imported)

	require.NoError(t, s.MarkPlanImported(ctx, "plan-1", "rec-1"))
	require.NoError(t, s.MarkPlanImported(ctx, "plan-1", "rec-9"), "second mark is a no-op")

	imported, err = s.PlanImported(ctx, "plan-1")
	require.NoError(t, err)
	assert.True(t, imported)

	var sourceID string
	require.NoError(t, s.db.QueryRow(
		"SELECT source_record_id FROM imported_plans WHERE plan_id = ?", "plan-1").Scan(&sourceID))
	assert.Equal(t, "rec-1", sourceID)
}
