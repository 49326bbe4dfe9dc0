package ops

import "fmt"

// PlanKind is the kind of work a quantity plan describes.
type PlanKind string

const (
	PlanPrint         PlanKind = "print"
	PlanPrintFlexible PlanKind = "print_flexible"
	PlanCut           PlanKind = "cut"
)

// ParsePlanKind converts a plan-file value into a PlanKind.
func ParsePlanKind(s string) (PlanKind, error) {
	switch k := PlanKind(s); k {
	case PlanPrint, PlanPrintFlexible, PlanCut:
		return k, nil
	}
	return "", fmt.Errorf("unknown plan kind %q", s)
}

// RecordKind returns the operation kind a plan materializes into.
// Panics on an unknown plan kind.
func (k PlanKind) RecordKind() Kind {
	switch k {
	case PlanPrint, PlanPrintFlexible:
		return KindPrint
	case PlanCut:
		return KindCut
	}
	panic(fmt.Sprintf("ops: unknown plan kind %q", string(k)))
}

// IsPrint reports whether the plan produces print work (and therefore a
// paired cut source).
func (k PlanKind) IsPrint() bool {
	return k == PlanPrint || k == PlanPrintFlexible
}

// CodePrefix is the kind-specific segment of a record's internal code.
// Panics on an unknown plan kind.
func (k PlanKind) CodePrefix() string {
	switch k {
	case PlanPrint:
		return "IMP"
	case PlanPrintFlexible:
		return "FLX"
	case PlanCut:
		return "CRT"
	}
	panic(fmt.Sprintf("ops: unknown plan kind %q", string(k)))
}

// PlanDescription is an externally supplied quantity plan not yet
// materialized into operation records.
type PlanDescription struct {
	ID       string   `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name"`
	Ordinal  int      `json:"ordinal" yaml:"ordinal"`
	Kind     PlanKind `json:"kind" yaml:"kind"`
	Quantity int64    `json:"quantity" yaml:"quantity"`
	Material string   `json:"material,omitempty" yaml:"material,omitempty"`
	Colors   string   `json:"colors,omitempty" yaml:"colors,omitempty"`
	Machine  string   `json:"machine,omitempty" yaml:"machine,omitempty"` // id or legacy name
	Notes    string   `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// WorkOrder identifies the work order and item that own imported plans.
type WorkOrder struct {
	ID     string `json:"id" yaml:"id"`
	Number string `json:"number,omitempty" yaml:"number,omitempty"`
	ItemID string `json:"item_id" yaml:"item_id"`
}
