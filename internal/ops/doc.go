// Package ops defines the operation record model for production tracking.
//
// An operation record is either a source record (it holds the plan for a job
// grouping) or an execution record (it holds an increment of work actually
// printed or cut). Print jobs and standalone cut jobs are grouped by
// PrintJobID and CutJobID; cut work that consumes printed boards links back
// to the print source record through SourcePrintID.
//
// This package contains types and the store boundary interfaces only. Every
// other internal package imports ops; ops imports nothing internal.
//
// Key constraints:
//   - Quantities are int64 board counts, never floats
//   - Planned quantities live on source records only and never change
//   - All JSON tags use snake_case
package ops
