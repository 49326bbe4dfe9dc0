package harness

import (
	"fmt"
	"strings"
)

// TraceEvent is the outcome of one flow step.
type TraceEvent struct {
	Step   int    `json:"step"`
	Op     string `json:"op"`
	Record string `json:"record,omitempty"` // alias acted on
	Detail string `json:"detail"`
}

// Line renders the event as one transcript line.
func (e TraceEvent) Line() string {
	if e.Record == "" {
		return fmt.Sprintf("%02d %s -> %s", e.Step, e.Op, e.Detail)
	}
	return fmt.Sprintf("%02d %s %s -> %s", e.Step, e.Op, e.Record, e.Detail)
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace holds one event per flow step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains expectation and assertion failures.
	Errors []string `json:"errors,omitempty"`

	// Aliases maps every bound alias to its record id.
	Aliases map[string]string `json:"aliases"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Trace:   []TraceEvent{},
		Errors:  []string{},
		Aliases: map[string]string{},
	}
}

// AddError adds a failure and marks the result as failed.
func (r *Result) AddError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Pass = false
}

// AddTrace records the outcome of a step.
func (r *Result) AddTrace(step Step, n int, detail string) {
	r.Trace = append(r.Trace, TraceEvent{Step: n, Op: step.Op, Record: step.Record, Detail: detail})
}

// Transcript renders the trace, one line per step.
func (r *Result) Transcript() string {
	var b strings.Builder
	for _, e := range r.Trace {
		b.WriteString(e.Line())
		b.WriteByte('\n')
	}
	return b.String()
}
