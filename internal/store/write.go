package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/roach88/opsledger/internal/ops"
)

// InsertRecord stores a new record and returns its id.
// Assigns an id when rec.ID is empty and a creation time when rec.CreatedAt
// is zero. The seq column is assigned here so reads return insertion order.
//
// Returns an error wrapping ops.ErrConflict when the id is taken or the record
// would be a second source for its job grouping.
func (s *Store) InsertRecord(ctx context.Context, rec ops.Record) (string, error) {
	if err := rec.Validate(); err != nil {
		return "", fmt.Errorf("insert record: %w", err)
	}
	if rec.ID == "" {
		rec.ID = s.newID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	if rec.Status == "" {
		rec.Status = ops.StatusPending
	}

	var completedAt any
	if rec.CompletedAt != nil {
		completedAt = formatTime(*rec.CompletedAt)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO operations
		(id, seq, kind, flexible, is_source,
		 print_job_id, cut_job_id, source_print_id, parent_id,
		 planned, executed, draft, completed, completed_at, status,
		 work_order_id, item_id, internal_code, plan_name, colors,
		 material, machine, operator, pallet, notes, op_date, created_at)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM operations), ?, ?, ?,
		        ?, ?, ?, ?,
		        ?, ?, ?, ?, ?, ?,
		        ?, ?, ?, ?, ?,
		        ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID, string(rec.Kind), rec.Flexible, rec.IsSource,
		nullable(rec.PrintJobID), nullable(rec.CutJobID), nullable(rec.SourcePrintID), nullable(rec.ParentID),
		rec.Planned, rec.Executed, rec.Draft, rec.Completed, completedAt, rec.Status,
		rec.WorkOrderID, rec.ItemID, rec.InternalCode, rec.PlanName, rec.Colors,
		rec.Material, rec.Machine, rec.Operator, rec.Pallet, rec.Notes, rec.Date,
		formatTime(rec.CreatedAt),
	)
	if err != nil {
		return "", fmt.Errorf("insert record: %w", mapConstraint(err))
	}

	return rec.ID, nil
}

// UpdateRecord applies a partial update to one record.
// Returns an error wrapping ops.ErrNotFound if the id does not exist.
// An empty patch only checks that the record exists.
func (s *Store) UpdateRecord(ctx context.Context, id string, p ops.Patch) error {
	if p.Executed != nil && *p.Executed < 0 {
		return fmt.Errorf("update record %s: executed quantity %d is negative", id, *p.Executed)
	}
	if p.Empty() {
		_, err := s.GetRecord(ctx, id)
		return err
	}

	var sets []string
	var args []any
	set := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if p.Executed != nil {
		set("executed", *p.Executed)
	}
	if p.Draft != nil {
		set("draft", *p.Draft)
	}
	if p.Completed != nil {
		set("completed", *p.Completed)
	}
	switch {
	case p.ClearCompletedAt:
		set("completed_at", nil)
	case p.CompletedAt != nil:
		set("completed_at", formatTime(*p.CompletedAt))
	}
	if p.Status != nil {
		set("status", *p.Status)
	}
	if p.Material != nil {
		set("material", *p.Material)
	}
	if p.Machine != nil {
		set("machine", *p.Machine)
	}
	if p.Operator != nil {
		set("operator", *p.Operator)
	}
	if p.Pallet != nil {
		set("pallet", *p.Pallet)
	}
	if p.Notes != nil {
		set("notes", *p.Notes)
	}
	if p.Date != nil {
		set("op_date", *p.Date)
	}

	args = append(args, id)
	result, err := s.db.ExecContext(ctx,
		"UPDATE operations SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("update record %s: %w", id, mapConstraint(err))
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update record %s: rows affected: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("update record %s: %w", id, ops.ErrNotFound)
	}
	return nil
}

// DeleteRecord removes one record.
// Returns an error wrapping ops.ErrNotFound if the id does not exist.
func (s *Store) DeleteRecord(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM operations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete record %s: %w", id, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete record %s: rows affected: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete record %s: %w", id, ops.ErrNotFound)
	}
	return nil
}

// mapConstraint turns SQLite uniqueness failures into ops.ErrConflict and
// CHECK failures into ops.ErrInvalidValue.
func mapConstraint(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%w: %v", ops.ErrConflict, err)
		case sqlite3.ErrConstraintCheck:
			return fmt.Errorf("%w: %v", ops.ErrInvalidValue, err)
		}
	}
	return err
}
