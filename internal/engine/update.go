package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/opsledger/internal/ops"
)

// UpdateQuantity validates q for record id and, if accepted, commits it as
// the record's executed quantity, clearing any draft flag.
//
// Validation and write happen under the record's job lock. A rejected
// validation is returned with a nil error and nothing is written.
func (e *Engine) UpdateQuantity(ctx context.Context, id string, q int64) (ops.Validation, error) {
	rec, err := e.store.GetRecord(ctx, id)
	if err != nil {
		if errors.Is(err, ops.ErrNotFound) {
			return invalid("unknown record %s", id), storeError("set quantity", id, err)
		}
		// Unreadable record: validation fails open, but the write target is
		// unknown, so report the failure.
		return ops.Validation{Valid: true}, storeError("set quantity", id, err)
	}

	unlock := e.lockRecord(ctx, rec)
	defer unlock()

	v := e.ValidateRecord(ctx, rec, q)
	if !v.Valid {
		return v, nil
	}

	p := ops.Patch{Executed: ops.Int64(q), Draft: ops.Bool(false)}
	if err := e.store.UpdateRecord(ctx, id, p); err != nil {
		return v, storeError("set quantity", id, err)
	}
	e.auditUpdated(ctx, "set quantity", id, p)
	return v, nil
}

// ConfirmDraft commits the quantity a split prefilled, through the same
// validation as UpdateQuantity.
func (e *Engine) ConfirmDraft(ctx context.Context, id string) (ops.Validation, error) {
	rec, err := e.store.GetRecord(ctx, id)
	if err != nil {
		return ops.Validation{}, storeError("confirm", id, err)
	}
	if rec.IsSource {
		return ops.Validation{}, newError(ErrCodeNotExecution, "confirm", id, "source records hold no draft quantity")
	}
	return e.UpdateQuantity(ctx, id, rec.Executed)
}

// UpdateDetails writes descriptive fields of a record. Quantity and
// completion fields are rejected; use UpdateQuantity and SetCompleted.
//
// Material, pallet, notes and date changes on a print source are copied to
// every record consuming that source. Propagation is best effort: all linked
// records are attempted and failures are joined into the returned error.
func (e *Engine) UpdateDetails(ctx context.Context, id string, p ops.Patch) error {
	if p.Executed != nil || p.Draft != nil {
		return newError(ErrCodeInvalidRecord, "update", id, "quantities change through validated quantity updates only")
	}
	if p.Completed != nil || p.CompletedAt != nil || p.ClearCompletedAt || p.Status != nil {
		return newError(ErrCodeInvalidRecord, "update", id, "completion changes through the completion toggle only")
	}

	rec, err := e.store.GetRecord(ctx, id)
	if err != nil {
		return storeError("update", id, err)
	}
	if p.Empty() {
		return nil
	}
	if err := e.store.UpdateRecord(ctx, id, p); err != nil {
		return storeError("update", id, err)
	}
	e.auditUpdated(ctx, "update", id, p)

	if !rec.IsSource || rec.Kind != ops.KindPrint {
		return nil
	}
	linked := ops.Patch{Material: p.Material, Pallet: p.Pallet, Notes: p.Notes, Date: p.Date}
	if linked.Empty() {
		return nil
	}
	return e.propagate(ctx, rec.ID, linked)
}

// propagate applies p to every record consuming print source printSourceID.
func (e *Engine) propagate(ctx context.Context, printSourceID string, p ops.Patch) error {
	recs, err := e.store.ListRecords(ctx, ops.Filter{SourcePrintID: printSourceID})
	if err != nil {
		return storeError("update", printSourceID, fmt.Errorf("list linked records: %w", err))
	}

	var errs []error
	for _, rec := range recs {
		if err := e.store.UpdateRecord(ctx, rec.ID, p); err != nil {
			errs = append(errs, fmt.Errorf("linked record %s: %w", rec.ID, err))
			continue
		}
		e.auditUpdated(ctx, "update", rec.ID, p)
	}
	if len(errs) > 0 {
		e.logger.Warn("print source details not copied to every linked record",
			"record_id", printSourceID,
			"failed", len(errs),
			"linked", len(recs),
		)
		return &Error{Code: ErrCodeStore, Op: "update", RecordID: printSourceID, Err: errors.Join(errs...)}
	}
	return nil
}

// SetCompleted marks a record done or pending. Completion stamps come from
// the engine clock.
//
// Completing a split draft first commits its prefilled quantity through
// UpdateQuantity; a draft the validator rejects stays open.
func (e *Engine) SetCompleted(ctx context.Context, id string, done bool) error {
	if done {
		rec, err := e.store.GetRecord(ctx, id)
		if err != nil {
			return storeError("complete", id, err)
		}
		if rec.Draft {
			v, err := e.UpdateQuantity(ctx, id, rec.Executed)
			if err != nil {
				return err
			}
			if !v.Valid {
				return newError(ErrCodeInvalidRecord, "complete", id, "draft quantity not committed: %s", v.Error)
			}
		}
	}

	p := ops.Patch{Completed: ops.Bool(done)}
	if done {
		now := e.clock.Now()
		p.CompletedAt = &now
		p.Status = ops.String(ops.StatusDone)
	} else {
		p.ClearCompletedAt = true
		p.Status = ops.String(ops.StatusPending)
	}

	if err := e.store.UpdateRecord(ctx, id, p); err != nil {
		return storeError("complete", id, err)
	}
	e.auditUpdated(ctx, "complete", id, p)
	return nil
}
