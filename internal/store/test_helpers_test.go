package store

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/opsledger/internal/ops"
)

// createTestStore creates a new temp-dir store with sequential ids.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	n := 0
	s, err := Open(path, WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("rec-%d", n)
	}))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var testTime = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

// printSource creates a print source record with minimal required fields.
func printSource(jobID string, planned int64) ops.Record {
	return ops.Record{
		Kind:       ops.KindPrint,
		IsSource:   true,
		PrintJobID: jobID,
		Planned:    planned,
		ItemID:     "item-1",
		CreatedAt:  testTime,
	}
}

// printExecution creates a print execution record for a job.
func printExecution(jobID string, executed int64) ops.Record {
	return ops.Record{
		Kind:       ops.KindPrint,
		PrintJobID: jobID,
		Executed:   executed,
		ItemID:     "item-1",
		CreatedAt:  testTime,
	}
}
