package ops

import "fmt"

// JobClass is the linkage class that decides which totals govern a record.
type JobClass string

const (
	ClassPrint        JobClass = "print"
	ClassCut          JobClass = "cut"
	ClassCutFromPrint JobClass = "cut-from-print"
)

// ParseJobClass converts a user-supplied value into a JobClass.
func ParseJobClass(s string) (JobClass, error) {
	switch c := JobClass(s); c {
	case ClassPrint, ClassCut, ClassCutFromPrint:
		return c, nil
	}
	return "", fmt.Errorf("unknown job class %q", s)
}

// JobRef names a job grouping. ID is a print job id, a cut job id, or, for
// cut-from-print, the id of the print source record.
type JobRef struct {
	Class JobClass `json:"class"`
	ID    string   `json:"id"`
}

func (j JobRef) String() string {
	return string(j.Class) + ":" + j.ID
}

// ClassOf returns the linkage class of a record. Panics on an unknown kind.
func ClassOf(r Record) JobClass {
	switch r.Kind {
	case KindPrint:
		return ClassPrint
	case KindCut:
		if r.SourcePrintID != "" {
			return ClassCutFromPrint
		}
		return ClassCut
	}
	panic(fmt.Sprintf("ops: unknown kind %q", string(r.Kind)))
}

// JobOf returns the grouping a record's quantities count against. The second
// result is false for ad hoc records that belong to no grouping.
func JobOf(r Record) (JobRef, bool) {
	switch c := ClassOf(r); c {
	case ClassPrint:
		return JobRef{Class: c, ID: r.PrintJobID}, r.PrintJobID != ""
	case ClassCutFromPrint:
		return JobRef{Class: c, ID: r.SourcePrintID}, true
	default:
		return JobRef{Class: c, ID: r.CutJobID}, r.CutJobID != ""
	}
}

// Progress is the planned/executed/remaining tuple of a job grouping.
// TotalPrinted and CanCut are set for cut-from-print groupings only.
type Progress struct {
	Job          JobRef `json:"job"`
	Planned      int64  `json:"planned"`
	Executed     int64  `json:"executed"`
	Remaining    int64  `json:"remaining"`
	Percent      int64  `json:"percent"`
	TotalPrinted *int64 `json:"total_printed,omitempty"`
	CanCut       *bool  `json:"can_cut,omitempty"`
}

// Validation is the verdict on a proposed executed quantity.
type Validation struct {
	Valid   bool   `json:"valid"`
	Error   string `json:"error,omitempty"`
	Warning string `json:"warning,omitempty"`
}
