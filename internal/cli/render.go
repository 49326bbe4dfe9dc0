package cli

import (
	"fmt"
	"io"

	"github.com/roach88/opsledger/internal/engine"
	"github.com/roach88/opsledger/internal/ops"
)

var classTitles = map[ops.JobClass]string{
	ops.ClassPrint:        "PRINT",
	ops.ClassCutFromPrint: "CUT FROM PRINT",
	ops.ClassCut:          "CUT",
}

// writeSummary renders an item's jobs in the order Summarize returns them,
// with a heading whenever the job class changes.
func writeSummary(w io.Writer, itemID string, jobs []engine.JobSummary) error {
	fmt.Fprintf(w, "Item %s: %d job(s)\n", itemID, len(jobs))

	var class ops.JobClass
	for _, j := range jobs {
		if j.Progress.Job.Class != class {
			class = j.Progress.Job.Class
			fmt.Fprintf(w, "\n%s\n", classTitles[class])
		}

		done := ""
		if j.Source.Completed {
			done = " [done]"
		}
		fmt.Fprintf(w, "  %s  %s%s\n", j.Source.InternalCode, j.Source.PlanName, done)
		fmt.Fprintf(w, "    source %s  executions %d  drafts %d\n", j.Source.ID, j.Executions, j.Drafts)
		if err := writeProgressLine(w, "    ", j.Progress); err != nil {
			return err
		}
	}
	return nil
}

func writeProgress(w io.Writer, p ops.Progress) error {
	return writeProgressLine(w, "  ", p)
}

func writeProgressLine(w io.Writer, indent string, p ops.Progress) error {
	fmt.Fprintf(w, "%splanned %d  executed %d  remaining %d  %d%%", indent, p.Planned, p.Executed, p.Remaining, p.Percent)
	if p.TotalPrinted != nil {
		fmt.Fprintf(w, "  printed %d", *p.TotalPrinted)
	}
	if p.CanCut != nil {
		if *p.CanCut {
			fmt.Fprint(w, "  can cut")
		} else {
			fmt.Fprint(w, "  nothing to cut")
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

// writeRecords renders one line per record.
func writeRecords(w io.Writer, recs []ops.Record) error {
	if len(recs) == 0 {
		_, err := fmt.Fprintln(w, "No records")
		return err
	}
	for _, r := range recs {
		role := "exec"
		qty := r.Executed
		if r.IsSource {
			role = "src"
			qty = r.Planned
		}
		kind := string(r.Kind)
		if r.Flexible {
			kind += "/flex"
		}
		fmt.Fprintf(w, "%s  %-4s %-10s %6d", r.ID, role, kind, qty)
		if r.Draft {
			fmt.Fprint(w, " draft")
		}
		if r.Completed {
			fmt.Fprint(w, " done")
		}
		if r.InternalCode != "" {
			fmt.Fprintf(w, "  %s", r.InternalCode)
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}
