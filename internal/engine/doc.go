// Package engine implements the opsledger production workflow engine.
//
// The engine turns quantity plans into source records, lets operators record
// work as execution records ("splits"), and keeps print jobs and the cut jobs
// that consume them consistent.
//
// ARCHITECTURE:
//
// Request/Response:
// Every operation (import, split, start, validate, progress) runs
// synchronously against an ops.Store and returns. There is no queue, timer or
// background goroutine.
//
// Job Groupings:
// A grouping is one source record (the plan) plus its execution records.
// Print jobs group by print job id, standalone cut jobs by cut job id, and
// cut-from-print chains by the id of the print source they consume.
//
// Totals:
// Progress and validation aggregate committed execution records only. Source
// records and draft quantities (prefilled by Split, not yet confirmed) never
// count. Each aggregation runs inside one Store.View snapshot.
//
// Failure Policy:
//   - Quantity validation fails open when the store cannot be read.
//   - Import continues past per-plan failures and collects them.
//   - Cut pairing (at import and on split) is best effort; a missing pair is
//     reported, never fatal.
//
// Concurrency:
// Quantity writes take an in-process lock per print chain or cut job so
// validate-then-write cannot interleave inside one process. Separate
// processes sharing a store can still race; reconciliation happens by
// recomputing progress.
package engine
