package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/opsledger/internal/ops"
)

// ValidateQuantity checks whether recordID may hold q as its executed
// quantity.
//
// The check fails open: when the store cannot be read the result is valid,
// so a flaky store never blocks work on the floor. An id the store reports
// as missing is invalid.
func (e *Engine) ValidateQuantity(ctx context.Context, recordID string, q int64) ops.Validation {
	if q < 0 {
		return invalid("quantity %d must not be negative", q)
	}
	rec, err := e.store.GetRecord(ctx, recordID)
	if err != nil {
		if errors.Is(err, ops.ErrNotFound) {
			return invalid("unknown record %s", recordID)
		}
		e.logger.Warn("quantity validation failed open", "record_id", recordID, "error", err)
		return ops.Validation{Valid: true}
	}
	return e.ValidateRecord(ctx, rec, q)
}

// ValidateRecord checks a proposed executed quantity for rec against the
// committed totals of its grouping, excluding rec's own current value.
//
// Print and standalone cut records are capped by their plan. Cut-from-print
// records are capped first by what has been printed, then by the print plan.
// Print records may also not drop below what has already been cut from
// their source. Reaching the plan exactly is valid with a warning.
func (e *Engine) ValidateRecord(ctx context.Context, rec ops.Record, q int64) ops.Validation {
	if q < 0 {
		return invalid("quantity %d must not be negative", q)
	}
	if rec.IsSource {
		return invalid("source records hold the plan and cannot record executed work")
	}
	job, ok := ops.JobOf(rec)
	if !ok {
		return ops.Validation{Valid: true}
	}

	var v ops.Validation
	err := e.store.View(ctx, func(r ops.Reader) error {
		var err error
		v, err = checkQuantity(ctx, r, rec, job, q)
		return err
	})
	if err != nil {
		e.logger.Warn("quantity validation failed open",
			"record_id", rec.ID,
			"job", job.String(),
			"error", err,
		)
		return ops.Validation{Valid: true}
	}
	return v
}

func checkQuantity(ctx context.Context, r ops.Reader, rec ops.Record, job ops.JobRef, q int64) (ops.Validation, error) {
	t, err := tally(ctx, r, job, rec.ID)
	if err != nil {
		return ops.Validation{}, err
	}
	newTotal := t.executed + q

	switch job.Class {
	case ops.ClassCutFromPrint:
		if newTotal > t.printed {
			return invalid("total cut (%d) would exceed total printed (%d)", newTotal, t.printed), nil
		}
		if newTotal > t.planned {
			return invalid("total cut (%d) would exceed planned quantity (%d)", newTotal, t.planned), nil
		}
		if newTotal == t.planned {
			return ops.Validation{Valid: true, Warning: "this operation completes the cut job"}, nil
		}

	case ops.ClassPrint:
		if newTotal > t.planned {
			return invalid("total printed (%d) would exceed planned quantity (%d)", newTotal, t.planned), nil
		}
		cut, err := cutFromPrintJob(ctx, r, rec.PrintJobID)
		if err != nil {
			return ops.Validation{}, err
		}
		if newTotal < cut {
			return invalid("total printed (%d) would fall below total already cut (%d)", newTotal, cut), nil
		}
		if newTotal == t.planned {
			return ops.Validation{Valid: true, Warning: "this operation completes the print job"}, nil
		}

	case ops.ClassCut:
		if newTotal > t.planned {
			return invalid("total cut (%d) would exceed planned quantity (%d)", newTotal, t.planned), nil
		}
		if newTotal == t.planned {
			return ops.Validation{Valid: true, Warning: "this operation completes the cut job"}, nil
		}
	}

	return ops.Validation{Valid: true}, nil
}

// cutFromPrintJob returns the committed cut total consuming the source of
// print job printJobID. Zero when the job has no source.
func cutFromPrintJob(ctx context.Context, r ops.Reader, printJobID string) (int64, error) {
	sources, err := r.ListRecords(ctx, ops.Filter{PrintJobID: printJobID, IsSource: ops.Bool(true)})
	if err != nil || len(sources) == 0 {
		return 0, err
	}
	return sumCounted(ctx, r, ops.Filter{
		SourcePrintID: sources[0].ID,
		Kind:          ops.KindCut,
		IsSource:      ops.Bool(false),
	}, "")
}

func invalid(format string, args ...any) ops.Validation {
	return ops.Validation{Valid: false, Error: fmt.Sprintf(format, args...)}
}
