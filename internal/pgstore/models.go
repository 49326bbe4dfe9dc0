package pgstore

import (
	"time"

	"github.com/roach88/opsledger/internal/ops"
)

// operationRow is the gorm model for the operations table.
// Grouping ids are pointers so empty ids are stored as NULL and stay out of
// the partial unique indexes.
type operationRow struct {
	ID            string     `gorm:"column:id;primaryKey;type:text"`
	Seq           int64      `gorm:"column:seq;type:bigserial;autoIncrement;not null;index"`
	Kind          string     `gorm:"column:kind;type:varchar(8);not null;check:chk_operations_kind,kind IN ('print','cut')"`
	Flexible      bool       `gorm:"column:flexible;not null"`
	IsSource      bool       `gorm:"column:is_source;not null"`
	PrintJobID    *string    `gorm:"column:print_job_id;type:text;index"`
	CutJobID      *string    `gorm:"column:cut_job_id;type:text;index"`
	SourcePrintID *string    `gorm:"column:source_print_id;type:text;index"`
	ParentID      *string    `gorm:"column:parent_id;type:text"`
	Planned       int64      `gorm:"column:planned;not null;check:chk_operations_planned,planned >= 0"`
	Executed      int64      `gorm:"column:executed;not null;check:chk_operations_executed,executed >= 0"`
	Draft         bool       `gorm:"column:draft;not null"`
	Completed     bool       `gorm:"column:completed;not null"`
	CompletedAt   *time.Time `gorm:"column:completed_at"`
	Status        string     `gorm:"column:status;type:varchar(20);not null"`
	WorkOrderID   string     `gorm:"column:work_order_id;type:text;not null"`
	ItemID        string     `gorm:"column:item_id;type:text;not null;index"`
	InternalCode  string     `gorm:"column:internal_code;type:text;not null"`
	PlanName      string     `gorm:"column:plan_name;type:text;not null"`
	Colors        string     `gorm:"column:colors;type:text;not null"`
	Material      string     `gorm:"column:material;type:text;not null"`
	Machine       string     `gorm:"column:machine;type:text;not null"`
	Operator      string     `gorm:"column:operator;type:text;not null"`
	Pallet        string     `gorm:"column:pallet;type:text;not null"`
	Notes         string     `gorm:"column:notes;type:text;not null"`
	Date          string     `gorm:"column:op_date;type:varchar(10);not null"`
	CreatedAt     time.Time  `gorm:"column:created_at;not null"`
}

func (operationRow) TableName() string { return "operations" }

// importedPlanRow marks a quantity plan as materialized.
type importedPlanRow struct {
	PlanID         string    `gorm:"column:plan_id;primaryKey;type:text"`
	SourceRecordID string    `gorm:"column:source_record_id;type:text;not null"`
	ImportedAt     time.Time `gorm:"column:imported_at;not null"`
}

func (importedPlanRow) TableName() string { return "imported_plans" }

type machineRow struct {
	ID   string `gorm:"column:id;primaryKey;type:text"`
	Name string `gorm:"column:name;type:text;not null"`
}

func (machineRow) TableName() string { return "machines" }

func toRow(r ops.Record) operationRow {
	return operationRow{
		ID:            r.ID,
		Kind:          string(r.Kind),
		Flexible:      r.Flexible,
		IsSource:      r.IsSource,
		PrintJobID:    nullable(r.PrintJobID),
		CutJobID:      nullable(r.CutJobID),
		SourcePrintID: nullable(r.SourcePrintID),
		ParentID:      nullable(r.ParentID),
		Planned:       r.Planned,
		Executed:      r.Executed,
		Draft:         r.Draft,
		Completed:     r.Completed,
		CompletedAt:   utcPtr(r.CompletedAt),
		Status:        r.Status,
		WorkOrderID:   r.WorkOrderID,
		ItemID:        r.ItemID,
		InternalCode:  r.InternalCode,
		PlanName:      r.PlanName,
		Colors:        r.Colors,
		Material:      r.Material,
		Machine:       r.Machine,
		Operator:      r.Operator,
		Pallet:        r.Pallet,
		Notes:         r.Notes,
		Date:          r.Date,
		CreatedAt:     r.CreatedAt.UTC(),
	}
}

func (row operationRow) record() ops.Record {
	return ops.Record{
		ID:            row.ID,
		Kind:          ops.Kind(row.Kind),
		Flexible:      row.Flexible,
		IsSource:      row.IsSource,
		PrintJobID:    deref(row.PrintJobID),
		CutJobID:      deref(row.CutJobID),
		SourcePrintID: deref(row.SourcePrintID),
		ParentID:      deref(row.ParentID),
		Planned:       row.Planned,
		Executed:      row.Executed,
		Draft:         row.Draft,
		Completed:     row.Completed,
		CompletedAt:   utcPtr(row.CompletedAt),
		Status:        row.Status,
		WorkOrderID:   row.WorkOrderID,
		ItemID:        row.ItemID,
		InternalCode:  row.InternalCode,
		PlanName:      row.PlanName,
		Colors:        row.Colors,
		Material:      row.Material,
		Machine:       row.Machine,
		Operator:      row.Operator,
		Pallet:        row.Pallet,
		Notes:         row.Notes,
		Date:          row.Date,
		CreatedAt:     row.CreatedAt.UTC(),
	}
}

// patchColumns maps a patch onto the column updates it implies.
// ClearCompletedAt wins over CompletedAt.
func patchColumns(p ops.Patch) map[string]any {
	cols := map[string]any{}
	if p.Executed != nil {
		cols["executed"] = *p.Executed
	}
	if p.Draft != nil {
		cols["draft"] = *p.Draft
	}
	if p.Completed != nil {
		cols["completed"] = *p.Completed
	}
	switch {
	case p.ClearCompletedAt:
		cols["completed_at"] = nil
	case p.CompletedAt != nil:
		cols["completed_at"] = p.CompletedAt.UTC()
	}
	if p.Status != nil {
		cols["status"] = *p.Status
	}
	if p.Material != nil {
		cols["material"] = *p.Material
	}
	if p.Machine != nil {
		cols["machine"] = *p.Machine
	}
	if p.Operator != nil {
		cols["operator"] = *p.Operator
	}
	if p.Pallet != nil {
		cols["pallet"] = *p.Pallet
	}
	if p.Notes != nil {
		cols["notes"] = *p.Notes
	}
	if p.Date != nil {
		cols["op_date"] = *p.Date
	}
	return cols
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
