package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/opsledger/internal/ops"
)

// DeleteExecution removes one execution record. Other records are not
// touched; totals simply recompute.
//
// Source records are refused. A print execution whose removal would leave
// less printed than already cut from its source is refused too.
func (e *Engine) DeleteExecution(ctx context.Context, id string) error {
	rec, err := e.store.GetRecord(ctx, id)
	if err != nil {
		return storeError("delete", id, err)
	}
	if rec.IsSource {
		return newError(ErrCodeNotExecution, "delete", id, "source records are removed with their whole job")
	}

	unlock := e.lockRecord(ctx, rec)
	defer unlock()

	if rec.Kind == ops.KindPrint && rec.PrintJobID != "" && rec.Counted() {
		if err := e.checkPrintFloor(ctx, rec); err != nil {
			return err
		}
	}

	if err := e.store.DeleteRecord(ctx, id); err != nil {
		return storeError("delete", id, err)
	}
	e.auditDeleted(ctx, "delete", id)
	return nil
}

// checkPrintFloor refuses to drop rec's printed quantity when cuts already
// depend on it. Unreadable totals do not block the delete.
func (e *Engine) checkPrintFloor(ctx context.Context, rec ops.Record) error {
	var printed, cut int64
	err := e.store.View(ctx, func(r ops.Reader) error {
		t, err := tally(ctx, r, ops.JobRef{Class: ops.ClassPrint, ID: rec.PrintJobID}, rec.ID)
		if err != nil {
			return err
		}
		printed = t.executed
		cut, err = cutFromPrintJob(ctx, r, rec.PrintJobID)
		return err
	})
	if err != nil {
		e.logger.Warn("print floor check skipped", "record_id", rec.ID, "error", err)
		return nil
	}
	if printed < cut {
		return newError(ErrCodeInvalidRecord, "delete", rec.ID,
			"total printed (%d) would fall below total already cut (%d)", printed, cut)
	}
	return nil
}

// DeleteJob removes a source record and everything grouped under it:
// its executions, then (for a print source) the cut records consuming it,
// then the source itself.
//
// Every record is attempted; failures are joined into the returned error.
// The source is kept if anything under it could not be removed.
func (e *Engine) DeleteJob(ctx context.Context, sourceID string) error {
	src, err := e.store.GetRecord(ctx, sourceID)
	if err != nil {
		return storeError("delete job", sourceID, err)
	}
	if !src.IsSource {
		return newError(ErrCodeNotSource, "delete job", sourceID, "record is an execution record; delete it individually")
	}

	var filters []ops.Filter
	switch {
	case src.Kind == ops.KindPrint && src.PrintJobID != "":
		filters = append(filters,
			ops.Filter{PrintJobID: src.PrintJobID, IsSource: ops.Bool(false)},
			ops.Filter{SourcePrintID: src.ID},
		)
	case src.Kind == ops.KindCut && src.CutJobID != "":
		filters = append(filters, ops.Filter{CutJobID: src.CutJobID, IsSource: ops.Bool(false)})
	}

	var errs []error
	var executions, sources []ops.Record
	seen := map[string]bool{src.ID: true}
	for _, f := range filters {
		recs, err := e.store.ListRecords(ctx, f)
		if err != nil {
			errs = append(errs, fmt.Errorf("list records: %w", err))
			continue
		}
		for _, rec := range recs {
			if seen[rec.ID] {
				continue
			}
			seen[rec.ID] = true
			if rec.IsSource {
				sources = append(sources, rec)
			} else {
				executions = append(executions, rec)
			}
		}
	}

	for _, rec := range append(executions, sources...) {
		if err := e.store.DeleteRecord(ctx, rec.ID); err != nil {
			errs = append(errs, fmt.Errorf("record %s: %w", rec.ID, err))
			continue
		}
		e.auditDeleted(ctx, "delete job", rec.ID)
	}

	if len(errs) > 0 {
		e.logger.Warn("job only partly deleted; source kept", "record_id", sourceID, "failed", len(errs))
		return &Error{Code: ErrCodeStore, Op: "delete job", RecordID: sourceID, Err: errors.Join(errs...)}
	}

	if err := e.store.DeleteRecord(ctx, src.ID); err != nil {
		return storeError("delete job", sourceID, err)
	}
	e.auditDeleted(ctx, "delete job", src.ID)
	return nil
}
