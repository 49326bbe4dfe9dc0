package store

import (
	"context"
	"fmt"
	"time"
)

// PlanImported reports whether a quantity plan was already materialized.
func (s *Store) PlanImported(ctx context.Context, planID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM imported_plans WHERE plan_id = ?", planID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check imported plan: %w", err)
	}
	return count > 0, nil
}

// MarkPlanImported records that planID produced sourceRecordID.
// Uses ON CONFLICT(plan_id) DO NOTHING - the first import wins.
func (s *Store) MarkPlanImported(ctx context.Context, planID, sourceRecordID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO imported_plans (plan_id, source_record_id, imported_at)
		VALUES (?, ?, ?)
		ON CONFLICT(plan_id) DO NOTHING
	`, planID, sourceRecordID, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("mark plan imported: %w", err)
	}
	return nil
}
