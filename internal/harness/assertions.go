package harness

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/opsledger/internal/ops"
)

// evaluateAssertions checks every assertion and returns one message per
// failure.
func (h *Harness) evaluateAssertions(ctx context.Context, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertProgress:
			err = h.assertProgress(ctx, a)
		case AssertRecord:
			err = h.assertRecord(ctx, a)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d (%s %s): %v", i, a.Type, a.Record, err))
		}
	}
	return errs
}

func (h *Harness) assertProgress(ctx context.Context, a Assertion) error {
	id, err := h.resolve(a.Record)
	if err != nil {
		return err
	}
	rec, err := h.store.GetRecord(ctx, id)
	if err != nil {
		return fmt.Errorf("load record: %w", err)
	}
	p, err := h.engine.ProgressFor(ctx, rec)
	if err != nil {
		return fmt.Errorf("progress: %w", err)
	}

	var errs []error
	check := func(name string, want *int64, got int64) {
		if want != nil && *want != got {
			errs = append(errs, fmt.Errorf("%s: expected %d, got %d", name, *want, got))
		}
	}
	check("planned", a.Planned, p.Planned)
	check("executed", a.Executed, p.Executed)
	check("remaining", a.Remaining, p.Remaining)
	check("percent", a.Percent, p.Percent)

	if a.TotalPrinted != nil {
		if p.TotalPrinted == nil {
			errs = append(errs, fmt.Errorf("total_printed: expected %d, grouping reports none", *a.TotalPrinted))
		} else {
			check("total_printed", a.TotalPrinted, *p.TotalPrinted)
		}
	}
	if a.CanCut != nil {
		if p.CanCut == nil {
			errs = append(errs, fmt.Errorf("can_cut: expected %t, grouping reports none", *a.CanCut))
		} else if *p.CanCut != *a.CanCut {
			errs = append(errs, fmt.Errorf("can_cut: expected %t, got %t", *a.CanCut, *p.CanCut))
		}
	}
	return errors.Join(errs...)
}

func (h *Harness) assertRecord(ctx context.Context, a Assertion) error {
	id, err := h.resolve(a.Record)
	if err != nil {
		return err
	}
	rec, err := h.store.GetRecord(ctx, id)
	if errors.Is(err, ops.ErrNotFound) {
		if a.Exists != nil && !*a.Exists {
			return nil
		}
		return fmt.Errorf("record %s not found", id)
	}
	if err != nil {
		return fmt.Errorf("load record: %w", err)
	}
	if a.Exists != nil && !*a.Exists {
		return fmt.Errorf("record %s still exists", id)
	}

	var errs []error
	if a.Draft != nil && rec.Draft != *a.Draft {
		errs = append(errs, fmt.Errorf("draft: expected %t, got %t", *a.Draft, rec.Draft))
	}
	if a.Completed != nil && rec.Completed != *a.Completed {
		errs = append(errs, fmt.Errorf("completed: expected %t, got %t", *a.Completed, rec.Completed))
	}
	for field, want := range a.Fields {
		got, ok := recordField(rec, field)
		if !ok {
			errs = append(errs, fmt.Errorf("unknown field %q", field))
			continue
		}
		if got != want {
			errs = append(errs, fmt.Errorf("%s: expected %q, got %q", field, want, got))
		}
	}
	return errors.Join(errs...)
}

// recordField returns the string form of a named record field.
func recordField(rec ops.Record, name string) (string, bool) {
	switch name {
	case "executed":
		return fmt.Sprint(rec.Executed), true
	case "planned":
		return fmt.Sprint(rec.Planned), true
	case "status":
		return rec.Status, true
	case "internal_code":
		return rec.InternalCode, true
	case "material":
		return rec.Material, true
	case "machine":
		return rec.Machine, true
	case "operator":
		return rec.Operator, true
	case "pallet":
		return rec.Pallet, true
	case "notes":
		return rec.Notes, true
	case "date":
		return rec.Date, true
	case "parent_id":
		return rec.ParentID, true
	}
	return "", false
}
