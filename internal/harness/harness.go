package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/roach88/opsledger/internal/engine"
	"github.com/roach88/opsledger/internal/ops"
	"github.com/roach88/opsledger/internal/store"
	"github.com/roach88/opsledger/internal/testutil"
)

// Epoch is the frozen wall-clock time every scenario runs at.
var Epoch = time.Date(2026, 3, 2, 9, 30, 15, 0, time.UTC)

// Harness is the scenario execution engine.
type Harness struct {
	store   *store.Store
	engine  *engine.Engine
	scen    *Scenario
	aliases map[string]string
	logger  *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Execution flow:
// 1. Create fresh in-memory database with sequential ids
// 2. Register the scenario's machines
// 3. Execute flow steps, checking expect clauses
// 4. Evaluate assertions
//
// The returned error reports a harness failure (bad alias, store setup);
// expectation failures are collected in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	recordIDs := testutil.NewSequenceIDs("rec")
	st, err := store.Open(":memory:", store.WithIDGenerator(recordIDs.Generate))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in scenarios

	eng := engine.New(st,
		engine.WithClock(testutil.NewDeterministicClock(Epoch, 0)),
		engine.WithJobIDGenerator(testutil.NewSequenceIDs("job")),
		engine.WithLogger(logger),
	)

	result := NewResult()
	h := &Harness{
		store:   st,
		engine:  eng,
		scen:    scenario,
		aliases: result.Aliases,
		logger:  logger,
	}

	ctx := context.Background()
	for _, m := range scenario.Machines {
		if err := st.AddMachine(ctx, m); err != nil {
			return nil, fmt.Errorf("failed to add machine %s: %w", m.ID, err)
		}
	}

	for i, step := range scenario.Flow {
		if err := h.executeStep(ctx, i+1, step, result); err != nil {
			return nil, fmt.Errorf("flow step %d (%s): %w", i+1, step.Op, err)
		}
	}

	for _, msg := range h.evaluateAssertions(ctx, scenario.Assertions) {
		result.AddError("%s", msg)
	}
	return result, nil
}

// outcome is what a step produced, before it is rendered or checked.
type outcome struct {
	validation *ops.Validation
	err        error
	split      *engine.SplitResult
	imported   *engine.ImportResult
	created    string
}

func (h *Harness) executeStep(ctx context.Context, n int, step Step, result *Result) error {
	var id string
	if step.Op != OpImport {
		var err error
		if id, err = h.resolve(step.Record); err != nil {
			return err
		}
	}

	var out outcome
	switch step.Op {
	case OpImport:
		res := h.engine.ImportPlans(ctx, h.scen.WorkOrder, h.scen.Plans)
		out.imported = &res
		for _, job := range res.Jobs {
			if job.PlanID == "" {
				continue
			}
			h.aliases[job.PlanID] = job.SourceID
			if job.PairedCutID != "" {
				h.aliases[job.PlanID+"/cut"] = job.PairedCutID
			}
		}
	case OpStart:
		out.created, out.err = h.engine.StartExecution(ctx, id)
		h.bind(step.As, out.created)
	case OpSplit:
		res, err := h.engine.Split(ctx, id)
		out.err = err
		if err == nil {
			out.split = &res
			h.bind(step.As, res.RecordID)
			if step.As != "" && res.PairedCutID != "" {
				h.bind(step.As+"/cut", res.PairedCutID)
			}
		}
	case OpSetQty:
		v, err := h.engine.UpdateQuantity(ctx, id, *step.Qty)
		out.validation, out.err = &v, err
	case OpValidate:
		v := h.engine.ValidateQuantity(ctx, id, *step.Qty)
		out.validation = &v
	case OpConfirm:
		v, err := h.engine.ConfirmDraft(ctx, id)
		out.validation, out.err = &v, err
	case OpComplete, OpReopen:
		out.err = h.engine.SetCompleted(ctx, id, step.Op == OpComplete)
	case OpUpdate:
		p, err := patchFromFields(step.Fields)
		if err != nil {
			return err
		}
		out.err = h.engine.UpdateDetails(ctx, id, p)
	case OpDelete:
		out.err = h.engine.DeleteExecution(ctx, id)
	case OpDeleteJob:
		out.err = h.engine.DeleteJob(ctx, id)
	}

	detail := describe(step, out)
	result.AddTrace(step, n, detail)
	h.logger.Info("flow step completed", "step", n, "op", step.Op, "record", step.Record, "detail", detail)

	if step.Expect != nil {
		for _, msg := range checkExpect(*step.Expect, out) {
			result.AddError("step %d (%s %s): %s", n, step.Op, step.Record, msg)
		}
	}
	return nil
}

func (h *Harness) resolve(alias string) (string, error) {
	id, ok := h.aliases[alias]
	if !ok {
		return "", fmt.Errorf("unknown record alias %q", alias)
	}
	return id, nil
}

func (h *Harness) bind(alias, id string) {
	if alias != "" && id != "" {
		h.aliases[alias] = id
	}
}

// describe renders a step outcome for the transcript.
func describe(step Step, out outcome) string {
	if out.err != nil {
		return fmt.Sprintf("error %s", errorSummary(out.err))
	}
	switch {
	case out.imported != nil:
		return fmt.Sprintf("imported=%d skipped=%d errors=%d",
			out.imported.Imported, out.imported.Skipped, len(out.imported.Errors))
	case out.split != nil:
		s := fmt.Sprintf("%s qty=%d draft=%t", out.split.RecordID, out.split.Quantity, out.split.Draft)
		if out.split.PairedCutID != "" {
			s += " cut=" + out.split.PairedCutID
		}
		if out.split.PairError != "" {
			s += fmt.Sprintf(" pair_error=%q", out.split.PairError)
		}
		return s
	case out.validation != nil:
		var qty string
		if step.Qty != nil {
			qty = fmt.Sprintf("qty=%d ", *step.Qty)
		}
		v := out.validation
		switch {
		case !v.Valid:
			return fmt.Sprintf("%sinvalid %q", qty, v.Error)
		case v.Warning != "":
			return fmt.Sprintf("%svalid warning=%q", qty, v.Warning)
		default:
			return qty + "valid"
		}
	case out.created != "":
		return out.created
	}
	return "ok"
}

// errorSummary renders engine errors by code so transcripts do not depend
// on wrapped store messages.
func errorSummary(err error) string {
	if code := engine.CodeOf(err); code != "" {
		return string(code)
	}
	return err.Error()
}

func checkExpect(exp Expect, out outcome) []string {
	var errs []string

	if exp.Code != "" {
		if got := engine.CodeOf(out.err); string(got) != exp.Code {
			errs = append(errs, fmt.Sprintf("expected error code %s, got %q (%v)", exp.Code, got, out.err))
		}
	} else if out.err != nil && exp.Error == "" {
		errs = append(errs, fmt.Sprintf("unexpected error: %v", out.err))
	}

	if exp.Valid != nil {
		if out.validation == nil {
			errs = append(errs, "expected a validation verdict")
		} else if out.validation.Valid != *exp.Valid {
			errs = append(errs, fmt.Sprintf("expected valid=%t, got %t (%s)", *exp.Valid, out.validation.Valid, out.validation.Error))
		}
	}

	if exp.Error != "" {
		var msg string
		switch {
		case out.validation != nil && !out.validation.Valid:
			msg = out.validation.Error
		case out.err != nil:
			msg = out.err.Error()
		}
		if !strings.Contains(msg, exp.Error) {
			errs = append(errs, fmt.Sprintf("expected error containing %q, got %q", exp.Error, msg))
		}
	}

	if exp.Warning != "" {
		if out.validation == nil || out.validation.Warning != exp.Warning {
			var got string
			if out.validation != nil {
				got = out.validation.Warning
			}
			errs = append(errs, fmt.Sprintf("expected warning %q, got %q", exp.Warning, got))
		}
	}

	if exp.Quantity != nil {
		if out.split == nil {
			errs = append(errs, "expected a split result")
		} else if out.split.Quantity != *exp.Quantity {
			errs = append(errs, fmt.Sprintf("expected split quantity %d, got %d", *exp.Quantity, out.split.Quantity))
		}
	}

	if exp.Imported != nil || exp.Skipped != nil {
		switch {
		case out.imported == nil:
			errs = append(errs, "expected an import result")
		case exp.Imported != nil && out.imported.Imported != *exp.Imported:
			errs = append(errs, fmt.Sprintf("expected %d imported, got %d", *exp.Imported, out.imported.Imported))
		case exp.Skipped != nil && out.imported.Skipped != *exp.Skipped:
			errs = append(errs, fmt.Sprintf("expected %d skipped, got %d", *exp.Skipped, out.imported.Skipped))
		}
	}

	return errs
}

// patchFromFields converts update step fields into a patch.
func patchFromFields(fields map[string]string) (ops.Patch, error) {
	var p ops.Patch
	for k, v := range fields {
		switch k {
		case "material":
			p.Material = ops.String(v)
		case "machine":
			p.Machine = ops.String(v)
		case "operator":
			p.Operator = ops.String(v)
		case "pallet":
			p.Pallet = ops.String(v)
		case "notes":
			p.Notes = ops.String(v)
		case "date":
			p.Date = ops.String(v)
		default:
			return ops.Patch{}, fmt.Errorf("update: unknown field %q", k)
		}
	}
	return p, nil
}
