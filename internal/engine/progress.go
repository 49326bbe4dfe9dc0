package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/roach88/opsledger/internal/ops"
)

// totals is the committed-state aggregate of one job grouping.
type totals struct {
	planned  int64
	executed int64
	printed  int64 // cut-from-print only
}

// Progress returns the planned/executed/remaining tuple of a job grouping,
// read from one consistent snapshot.
//
// A grouping without a source record reports planned=0. Store failures are
// returned as *Error with ErrCodeStore.
func (e *Engine) Progress(ctx context.Context, job ops.JobRef) (ops.Progress, error) {
	var p ops.Progress
	err := e.store.View(ctx, func(r ops.Reader) error {
		t, err := tally(ctx, r, job, "")
		if err != nil {
			return err
		}
		p = t.progress(job)
		return nil
	})
	if err != nil {
		return ops.Progress{}, storeError("progress", "", err)
	}
	return p, nil
}

// ProgressFor returns the progress of the grouping rec counts against.
// Ad hoc records that belong to no grouping report their own committed
// quantity against a plan of 0.
func (e *Engine) ProgressFor(ctx context.Context, rec ops.Record) (ops.Progress, error) {
	job, ok := ops.JobOf(rec)
	if !ok {
		var t totals
		if rec.Counted() {
			t.executed = rec.Executed
		}
		return t.progress(job), nil
	}
	return e.Progress(ctx, job)
}

// tally aggregates the committed executions of job, skipping the record
// with id exclude. Panics on an unknown job class.
func tally(ctx context.Context, r ops.Reader, job ops.JobRef, exclude string) (totals, error) {
	switch job.Class {
	case ops.ClassPrint, ops.ClassCut, ops.ClassCutFromPrint:
	default:
		panic(fmt.Sprintf("engine: unknown job class %q", string(job.Class)))
	}
	// An empty id would match every record through the equality filter.
	if job.ID == "" {
		return totals{}, nil
	}

	switch job.Class {
	case ops.ClassPrint:
		return tallyGroup(ctx, r, ops.Filter{PrintJobID: job.ID}, exclude)
	case ops.ClassCut:
		return tallyGroup(ctx, r, ops.Filter{CutJobID: job.ID}, exclude)
	default:
		return tallyCutFromPrint(ctx, r, job.ID, exclude)
	}
}

// tallyGroup reads a grouping's source and executions in one query.
func tallyGroup(ctx context.Context, r ops.Reader, f ops.Filter, exclude string) (totals, error) {
	recs, err := r.ListRecords(ctx, f)
	if err != nil {
		return totals{}, err
	}

	var t totals
	sourceSeen := false
	for _, rec := range recs {
		switch {
		case rec.IsSource:
			if !sourceSeen {
				t.planned = rec.Planned
				sourceSeen = true
			}
		case rec.Counted() && rec.ID != exclude:
			t.executed += rec.Executed
		}
	}
	return t, nil
}

// tallyCutFromPrint aggregates the cut executions consuming a print source.
// The plan is the print source's plan; printed is the committed output of
// the print source's job.
func tallyCutFromPrint(ctx context.Context, r ops.Reader, printSourceID, exclude string) (totals, error) {
	var t totals

	src, err := r.GetRecord(ctx, printSourceID)
	switch {
	case errors.Is(err, ops.ErrNotFound):
		// Missing print source: unplanned and nothing printed.
	case err != nil:
		return totals{}, err
	default:
		if src.IsSource && src.Kind == ops.KindPrint {
			t.planned = src.Planned
		}
		if src.PrintJobID != "" {
			printed, err := sumCounted(ctx, r, ops.Filter{PrintJobID: src.PrintJobID, IsSource: ops.Bool(false)}, "")
			if err != nil {
				return totals{}, err
			}
			t.printed = printed
		}
	}

	cut, err := sumCounted(ctx, r, ops.Filter{
		SourcePrintID: printSourceID,
		Kind:          ops.KindCut,
		IsSource:      ops.Bool(false),
	}, exclude)
	if err != nil {
		return totals{}, err
	}
	t.executed = cut
	return t, nil
}

func sumCounted(ctx context.Context, r ops.Reader, f ops.Filter, exclude string) (int64, error) {
	recs, err := r.ListRecords(ctx, f)
	if err != nil {
		return 0, err
	}
	var sum int64
	for _, rec := range recs {
		if rec.Counted() && rec.ID != exclude {
			sum += rec.Executed
		}
	}
	return sum, nil
}

func (t totals) progress(job ops.JobRef) ops.Progress {
	p := ops.Progress{
		Job:      job,
		Planned:  t.planned,
		Executed: t.executed,
		Percent:  percent(t.executed, t.planned),
	}
	if job.Class == ops.ClassCutFromPrint {
		p.Remaining = max(0, min(t.printed-t.executed, t.planned-t.executed))
		printed := t.printed
		canCut := t.printed > t.executed
		p.TotalPrinted = &printed
		p.CanCut = &canCut
		return p
	}
	p.Remaining = max(0, t.planned-t.executed)
	return p
}

// percent is round-half-up of 100*executed/planned, or 0 without a plan.
func percent(executed, planned int64) int64 {
	if planned <= 0 {
		return 0
	}
	hundred := decimal.NewFromInt(100)
	return decimal.NewFromInt(executed).Mul(hundred).DivRound(decimal.NewFromInt(planned), 0).IntPart()
}
