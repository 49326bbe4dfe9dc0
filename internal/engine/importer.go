package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/opsledger/internal/ops"
)

// ImportResult reports a batch import. Failures for one plan never stop the
// batch; they are collected in Errors.
type ImportResult struct {
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Jobs     []ImportedJob `json:"jobs"`
	Errors   []ImportError `json:"errors,omitempty"`
}

// ImportedJob describes the source records created for one plan.
type ImportedJob struct {
	PlanID       string `json:"plan_id,omitempty"`
	SourceID     string `json:"source_id"`
	InternalCode string `json:"internal_code"`
	PairedCutID  string `json:"paired_cut_id,omitempty"`

	// Machine is the resolved machine hint. Source records leave the
	// machine empty; it is chosen when work starts.
	Machine string `json:"machine,omitempty"`
}

// ImportError is a failure attributed to one plan.
type ImportError struct {
	PlanID  string `json:"plan_id,omitempty"`
	Plan    string `json:"plan"`
	Message string `json:"error"`
}

func (ie ImportError) Error() string {
	return fmt.Sprintf("plan %s: %s", ie.Plan, ie.Message)
}

// OK reports whether every plan imported cleanly.
func (r ImportResult) OK() bool {
	return len(r.Errors) == 0
}

// ImportPlans materializes quantity plans owned by wo into source records.
//
// Each print plan gets a print source plus a paired cut source consuming it.
// Cut plans get a single cut source. Plans already marked imported are
// skipped. A plan whose source record cannot be written is reported and
// the batch continues; a paired cut source that cannot be written is
// reported but the print source stays.
func (e *Engine) ImportPlans(ctx context.Context, wo ops.WorkOrder, plans []ops.PlanDescription) ImportResult {
	res := ImportResult{Jobs: []ImportedJob{}}
	machines := e.loadMachines(ctx)

	for _, plan := range plans {
		if e.plans != nil && plan.ID != "" {
			done, err := e.plans.PlanImported(ctx, plan.ID)
			if err != nil {
				res.fail(plan, "check import marker: %v", err)
				continue
			}
			if done {
				res.Skipped++
				continue
			}
		}
		e.importPlan(ctx, wo, plan, machines, true, &res)
	}

	if len(res.Errors) > 0 {
		e.logger.Warn("import finished with errors",
			"work_order_id", wo.ID,
			"imported", res.Imported,
			"errors", len(res.Errors),
		)
	}
	return res
}

// CreateManualJob creates the source record(s) for one ad hoc plan, the way
// an import would, without consulting or updating import markers.
func (e *Engine) CreateManualJob(ctx context.Context, wo ops.WorkOrder, plan ops.PlanDescription) ImportResult {
	res := ImportResult{Jobs: []ImportedJob{}}
	e.importPlan(ctx, wo, plan, e.loadMachines(ctx), false, &res)
	return res
}

func (e *Engine) importPlan(ctx context.Context, wo ops.WorkOrder, plan ops.PlanDescription, machines machineIndex, track bool, res *ImportResult) {
	if _, err := ops.ParsePlanKind(string(plan.Kind)); err != nil {
		res.fail(plan, "%v", err)
		return
	}
	if plan.Quantity < 0 {
		res.fail(plan, "quantity %d must not be negative", plan.Quantity)
		return
	}

	now := e.clock.Now()
	code := e.internalCode(wo, plan, now)
	job := ImportedJob{PlanID: plan.ID, InternalCode: code, Machine: machines.resolve(plan.Machine)}
	if plan.Machine != "" && job.Machine == "" {
		e.logger.Debug("machine hint unresolved", "plan", plan.Name, "machine", plan.Machine)
	}

	src := ops.Record{
		Kind:         plan.Kind.RecordKind(),
		Flexible:     plan.Kind == ops.PlanPrintFlexible,
		IsSource:     true,
		Planned:      plan.Quantity,
		Status:       ops.StatusPending,
		WorkOrderID:  wo.ID,
		ItemID:       wo.ItemID,
		InternalCode: code,
		PlanName:     plan.Name,
		Colors:       plan.Colors,
		Material:     plan.Material,
		Notes:        plan.Notes,
		Date:         now.Format(time.DateOnly),
		CreatedAt:    now,
	}
	if plan.Kind.IsPrint() {
		src.PrintJobID = e.jobIDs.Generate()
	} else {
		src.CutJobID = e.jobIDs.Generate()
	}
	if e.seedSourceQuantities {
		src.Executed = plan.Quantity
	}

	id, err := e.store.InsertRecord(ctx, src)
	if err != nil {
		res.fail(plan, "insert source record: %v", err)
		return
	}
	src.ID = id
	job.SourceID = id
	res.Imported++
	e.auditCreated(ctx, "import", src)

	if track && e.plans != nil && plan.ID != "" {
		if err := e.plans.MarkPlanImported(ctx, plan.ID, id); err != nil {
			res.fail(plan, "mark plan imported: %v", err)
		}
	}

	if plan.Kind.IsPrint() {
		cutID, err := e.createPairedCutSource(ctx, src)
		if err != nil {
			res.fail(plan, "create paired cut source: %v", err)
			e.logger.Warn("print source created without cut pairing",
				"record_id", id,
				"plan", plan.Name,
				"error", err,
			)
		}
		job.PairedCutID = cutID
	}

	res.Jobs = append(res.Jobs, job)
}

// createPairedCutSource creates the cut source consuming print source src.
func (e *Engine) createPairedCutSource(ctx context.Context, src ops.Record) (string, error) {
	cut := ops.Record{
		Kind:          ops.KindCut,
		IsSource:      true,
		CutJobID:      e.jobIDs.Generate(),
		SourcePrintID: src.ID,
		Planned:       src.Planned,
		Status:        ops.StatusPending,
		WorkOrderID:   src.WorkOrderID,
		ItemID:        src.ItemID,
		InternalCode:  src.InternalCode + "-CORTE",
		PlanName:      src.PlanName,
		Colors:        src.Colors,
		Material:      src.Material,
		Date:          src.Date,
		CreatedAt:     src.CreatedAt,
	}
	if e.seedSourceQuantities {
		cut.Executed = cut.Planned
	}

	id, err := e.store.InsertRecord(ctx, cut)
	if err != nil {
		return "", err
	}
	cut.ID = id
	e.auditCreated(ctx, "import", cut)
	return id, nil
}

// internalCode builds the human-readable code of an imported record:
// <work order prefix>-<yyyyMMdd>-<IMP|FLX|CRT>-<HHmmss>-<ordinal>.
func (e *Engine) internalCode(wo ops.WorkOrder, plan ops.PlanDescription, now time.Time) string {
	prefix := "FO"
	if wo.Number != "" {
		runes := []rune(wo.Number)
		if len(runes) > e.codePrefixLen {
			runes = runes[:e.codePrefixLen]
		}
		prefix = string(runes)
	}
	return fmt.Sprintf("%s-%s-%s-%s-%d",
		prefix, now.Format("20060102"), plan.Kind.CodePrefix(), now.Format("150405"), plan.Ordinal)
}

func (r *ImportResult) fail(plan ops.PlanDescription, format string, args ...any) {
	r.Errors = append(r.Errors, ImportError{
		PlanID:  plan.ID,
		Plan:    plan.Name,
		Message: fmt.Sprintf(format, args...),
	})
}
