package ops

import (
	"errors"
	"fmt"
	"time"
)

// Kind is the physical process an operation record tracks.
type Kind string

const (
	KindPrint Kind = "print"
	KindCut   Kind = "cut"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindPrint || k == KindCut
}

// ParseKind converts a stored or user-supplied value into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown operation kind %q", s)
	}
	return k, nil
}

// Record statuses.
const (
	StatusPending = "pending"
	StatusDone    = "done"
)

// Record is a single operation row.
//
// Source records (IsSource) carry Planned for their kind and never hold
// executed work that counts toward progress. Execution records carry
// Executed. Draft marks an execution quantity prefilled by a split that no
// operator has confirmed yet; drafts are excluded from every total.
type Record struct {
	ID   string `json:"id"`
	Kind Kind   `json:"kind"`

	// Flexible marks print work on flexible substrates. It behaves as print.
	Flexible bool `json:"flexible,omitempty"`
	IsSource bool `json:"is_source"`

	PrintJobID    string `json:"print_job_id,omitempty"`
	CutJobID      string `json:"cut_job_id,omitempty"`
	SourcePrintID string `json:"source_print_id,omitempty"` // print source this cut consumes
	ParentID      string `json:"parent_id,omitempty"`       // lineage only

	Planned  int64 `json:"planned"`
	Executed int64 `json:"executed"`
	Draft    bool  `json:"draft,omitempty"`

	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Status      string     `json:"status"`

	WorkOrderID  string `json:"work_order_id,omitempty"`
	ItemID       string `json:"item_id,omitempty"`
	InternalCode string `json:"internal_code,omitempty"`
	PlanName     string `json:"plan_name,omitempty"`
	Colors       string `json:"colors,omitempty"`
	Material     string `json:"material,omitempty"`
	Machine      string `json:"machine,omitempty"`
	Operator     string `json:"operator,omitempty"`
	Pallet       string `json:"pallet,omitempty"`
	Notes        string `json:"notes,omitempty"`
	Date         string `json:"date,omitempty"` // YYYY-MM-DD

	CreatedAt time.Time `json:"created_at"`
}

// Validate rejects record shapes the model does not allow.
func (r Record) Validate() error {
	var errs []error
	if !r.Kind.Valid() {
		errs = append(errs, fmt.Errorf("unknown kind %q", r.Kind))
	}
	if r.Planned < 0 {
		errs = append(errs, fmt.Errorf("planned quantity %d is negative", r.Planned))
	}
	if r.Executed < 0 {
		errs = append(errs, fmt.Errorf("executed quantity %d is negative", r.Executed))
	}
	if !r.IsSource && r.Planned != 0 {
		errs = append(errs, errors.New("execution records cannot carry a planned quantity"))
	}
	if r.IsSource && r.Draft {
		errs = append(errs, errors.New("source records cannot hold a draft quantity"))
	}
	if r.Kind == KindCut && r.PrintJobID != "" {
		errs = append(errs, errors.New("cut records cannot belong to a print job"))
	}
	if r.Kind == KindPrint && (r.CutJobID != "" || r.SourcePrintID != "") {
		errs = append(errs, errors.New("print records cannot link to cut jobs or print sources"))
	}
	if r.Flexible && r.Kind != KindPrint {
		errs = append(errs, errors.New("only print records can be flexible"))
	}
	return errors.Join(errs...)
}

// Counted reports whether the record's Executed quantity contributes to
// progress totals.
func (r Record) Counted() bool {
	return !r.IsSource && !r.Draft
}

// Patch describes a partial update. Nil fields are left untouched.
// Plans, kinds and job linkage are immutable and have no patch field.
type Patch struct {
	Executed    *int64
	Draft       *bool
	Completed   *bool
	CompletedAt *time.Time
	Status      *string
	Material    *string
	Machine     *string
	Operator    *string
	Pallet      *string
	Notes       *string
	Date        *string

	// ClearCompletedAt removes the completion stamp. It wins over CompletedAt.
	ClearCompletedAt bool
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Executed == nil && p.Draft == nil && p.Completed == nil &&
		p.CompletedAt == nil && !p.ClearCompletedAt && p.Status == nil && p.Material == nil &&
		p.Machine == nil && p.Operator == nil && p.Pallet == nil &&
		p.Notes == nil && p.Date == nil
}

// Apply returns a copy of r with the patch applied.
func (p Patch) Apply(r Record) Record {
	if p.Executed != nil {
		r.Executed = *p.Executed
	}
	if p.Draft != nil {
		r.Draft = *p.Draft
	}
	if p.Completed != nil {
		r.Completed = *p.Completed
	}
	if p.CompletedAt != nil {
		t := *p.CompletedAt
		r.CompletedAt = &t
	}
	if p.ClearCompletedAt {
		r.CompletedAt = nil
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.Material != nil {
		r.Material = *p.Material
	}
	if p.Machine != nil {
		r.Machine = *p.Machine
	}
	if p.Operator != nil {
		r.Operator = *p.Operator
	}
	if p.Pallet != nil {
		r.Pallet = *p.Pallet
	}
	if p.Notes != nil {
		r.Notes = *p.Notes
	}
	if p.Date != nil {
		r.Date = *p.Date
	}
	return r
}

// Filter is an equality filter over record columns. Zero-valued fields do
// not constrain the result.
type Filter struct {
	ID            string
	PrintJobID    string
	CutJobID      string
	SourcePrintID string
	ParentID      string
	ItemID        string
	IsSource      *bool
	Kind          Kind
}

// Machine is an entry in the machine directory.
type Machine struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Bool returns a pointer to b. Used for Filter.IsSource and Patch fields.
func Bool(b bool) *bool { return &b }

// Int64 returns a pointer to n.
func Int64(n int64) *int64 { return &n }

// String returns a pointer to s.
func String(s string) *string { return &s }
