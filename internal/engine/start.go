package engine

import (
	"context"
	"fmt"

	"github.com/roach88/opsledger/internal/ops"
)

// StartExecution creates the first execution record of a source record: the
// row an operator fills in while working. Plan metadata is copied;
// quantities start at zero and machine and operator are left for the
// operator to choose.
func (e *Engine) StartExecution(ctx context.Context, sourceID string) (string, error) {
	src, err := e.store.GetRecord(ctx, sourceID)
	if err != nil {
		return "", storeError("start", sourceID, err)
	}
	if !src.IsSource {
		return "", newError(ErrCodeNotSource, "start", sourceID, "record is an execution record; start work from its source")
	}

	now := e.clock.Now()
	rec := ops.Record{
		Kind:          src.Kind,
		Flexible:      src.Flexible,
		PrintJobID:    src.PrintJobID,
		CutJobID:      src.CutJobID,
		SourcePrintID: src.SourcePrintID,
		ParentID:      src.ID,
		Status:        ops.StatusPending,
		WorkOrderID:   src.WorkOrderID,
		ItemID:        src.ItemID,
		InternalCode:  fmt.Sprintf("%s-EXEC-%s", src.InternalCode, now.Format("150405")),
		PlanName:      src.PlanName,
		Colors:        src.Colors,
		Material:      src.Material,
		Notes:         src.Notes,
		Date:          now.Format("2006-01-02"),
		CreatedAt:     now,
	}

	id, err := e.store.InsertRecord(ctx, rec)
	if err != nil {
		return "", storeError("start", sourceID, err)
	}
	rec.ID = id
	e.auditCreated(ctx, "start", rec)
	return id, nil
}
