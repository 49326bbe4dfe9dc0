package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/opsledger/internal/ops"
)

// SplitResult reports a split. The split itself succeeded whenever a
// SplitResult is returned without error; PairError explains a print split
// that ended up without its cut stub.
type SplitResult struct {
	RecordID    string `json:"record_id"`
	Quantity    int64  `json:"quantity"`
	Draft       bool   `json:"draft"`
	PairedCutID string `json:"paired_cut_id,omitempty"`
	PairError   string `json:"pair_error,omitempty"`
}

// errNoCutSource marks a print chain that has no cut source to pair with.
var errNoCutSource = errors.New("no cut source consumes this print source")

// Split creates a new execution record from recordID, prefilled with the
// grouping's remaining quantity.
//
// The prefilled quantity is stored as a draft so it does not count until an
// operator confirms it; splitting twice before confirming prefills the same
// remaining quantity both times. Splitting a print record also creates an
// empty cut execution under the cut source consuming the print source.
func (e *Engine) Split(ctx context.Context, recordID string) (SplitResult, error) {
	orig, err := e.store.GetRecord(ctx, recordID)
	if err != nil {
		return SplitResult{}, storeError("split", recordID, err)
	}

	var remaining int64
	if job, ok := ops.JobOf(orig); ok {
		p, err := e.Progress(ctx, job)
		if err != nil {
			return SplitResult{}, &Error{Code: ErrCodeStore, Op: "split", RecordID: recordID, Err: err}
		}
		remaining = p.Remaining
	}
	qty := max(0, remaining)

	now := e.clock.Now()
	rec := ops.Record{
		Kind:          orig.Kind,
		Flexible:      orig.Flexible,
		PrintJobID:    orig.PrintJobID,
		CutJobID:      orig.CutJobID,
		SourcePrintID: orig.SourcePrintID,
		ParentID:      orig.ID,
		Executed:      qty,
		Draft:         qty > 0,
		Status:        ops.StatusPending,
		WorkOrderID:   orig.WorkOrderID,
		ItemID:        orig.ItemID,
		InternalCode:  orig.InternalCode,
		PlanName:      orig.PlanName,
		Colors:        orig.Colors,
		Material:      orig.Material,
		Pallet:        orig.Pallet,
		Notes:         orig.Notes,
		Date:          orig.Date,
		CreatedAt:     now,
	}

	id, err := e.store.InsertRecord(ctx, rec)
	if err != nil {
		return SplitResult{}, storeError("split", recordID, err)
	}
	rec.ID = id
	e.auditCreated(ctx, "split", rec)

	res := SplitResult{RecordID: id, Quantity: qty, Draft: rec.Draft}
	if orig.Kind != ops.KindPrint {
		return res, nil
	}

	cutID, err := e.pairCutStub(ctx, orig, now)
	if err != nil {
		res.PairError = err.Error()
		e.logger.Warn("print split created without cut stub",
			"record_id", id,
			"job_id", orig.PrintJobID,
			"error", err,
		)
		return res, nil
	}
	res.PairedCutID = cutID
	return res, nil
}

// pairCutStub creates an empty cut execution under the cut source that
// consumes the print source of printRec's job.
func (e *Engine) pairCutStub(ctx context.Context, printRec ops.Record, now time.Time) (string, error) {
	printSource, err := e.printSourceOf(ctx, printRec)
	if err != nil {
		return "", err
	}

	cutSources, err := e.store.ListRecords(ctx, ops.Filter{
		SourcePrintID: printSource.ID,
		Kind:          ops.KindCut,
		IsSource:      ops.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("find cut source: %w", err)
	}
	if len(cutSources) == 0 {
		return "", errNoCutSource
	}
	cutSource := cutSources[0]

	stub := ops.Record{
		Kind:          ops.KindCut,
		CutJobID:      cutSource.CutJobID,
		SourcePrintID: printSource.ID,
		ParentID:      cutSource.ID,
		Status:        ops.StatusPending,
		WorkOrderID:   cutSource.WorkOrderID,
		ItemID:        cutSource.ItemID,
		InternalCode:  cutSource.InternalCode,
		PlanName:      cutSource.PlanName,
		Colors:        cutSource.Colors,
		Material:      cutSource.Material,
		Pallet:        cutSource.Pallet,
		Date:          cutSource.Date,
		CreatedAt:     now,
	}
	id, err := e.store.InsertRecord(ctx, stub)
	if err != nil {
		return "", fmt.Errorf("insert cut stub: %w", err)
	}
	stub.ID = id
	e.auditCreated(ctx, "split", stub)
	return id, nil
}

// printSourceOf returns the source record of rec's print job. rec itself is
// returned when it is the source.
func (e *Engine) printSourceOf(ctx context.Context, rec ops.Record) (ops.Record, error) {
	if rec.IsSource {
		return rec, nil
	}
	if rec.PrintJobID == "" {
		return ops.Record{}, errors.New("record belongs to no print job")
	}
	sources, err := e.store.ListRecords(ctx, ops.Filter{PrintJobID: rec.PrintJobID, IsSource: ops.Bool(true)})
	if err != nil {
		return ops.Record{}, fmt.Errorf("find print source: %w", err)
	}
	if len(sources) == 0 {
		return ops.Record{}, fmt.Errorf("print job %s has no source record", rec.PrintJobID)
	}
	return sources[0], nil
}
