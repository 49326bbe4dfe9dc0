package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/roach88/opsledger/internal/ops"
)

// recordColumns is the column list shared by every record query.
// scanRecord reads columns in exactly this order.
var recordColumns = []string{
	"id", "kind", "flexible", "is_source",
	"print_job_id", "cut_job_id", "source_print_id", "parent_id",
	"planned", "executed", "draft",
	"completed", "completed_at", "status",
	"work_order_id", "item_id", "internal_code", "plan_name", "colors",
	"material", "machine", "operator", "pallet", "notes", "op_date",
	"created_at",
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRecord scans one row selected with recordColumns.
func scanRecord(row rowScanner) (ops.Record, error) {
	var rec ops.Record
	var kind string
	var printJob, cutJob, sourcePrint, parent, completedAt sql.NullString
	var createdAt string

	if err := row.Scan(
		&rec.ID, &kind, &rec.Flexible, &rec.IsSource,
		&printJob, &cutJob, &sourcePrint, &parent,
		&rec.Planned, &rec.Executed, &rec.Draft,
		&rec.Completed, &completedAt, &rec.Status,
		&rec.WorkOrderID, &rec.ItemID, &rec.InternalCode, &rec.PlanName, &rec.Colors,
		&rec.Material, &rec.Machine, &rec.Operator, &rec.Pallet, &rec.Notes, &rec.Date,
		&createdAt,
	); err != nil {
		return ops.Record{}, err
	}

	rec.Kind = ops.Kind(kind)
	rec.PrintJobID = printJob.String
	rec.CutJobID = cutJob.String
	rec.SourcePrintID = sourcePrint.String
	rec.ParentID = parent.String

	t, err := parseTime(createdAt)
	if err != nil {
		return ops.Record{}, fmt.Errorf("record %s: created_at: %w", rec.ID, err)
	}
	rec.CreatedAt = t

	if completedAt.Valid && completedAt.String != "" {
		t, err := parseTime(completedAt.String)
		if err != nil {
			return ops.Record{}, fmt.Errorf("record %s: completed_at: %w", rec.ID, err)
		}
		rec.CompletedAt = &t
	}

	return rec, nil
}

// nullable maps empty strings to SQL NULL so the partial unique indexes
// only see real grouping ids.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
