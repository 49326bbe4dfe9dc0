// Package store provides SQLite-backed durable storage for operation records.
//
// The store is a keyed row store with:
//   - Operations: source and execution records for print and cut work
//   - Imported plans: idempotency markers for the job importer
//   - Machines: the directory used to resolve legacy machine names
//
// # Critical Patterns
//
// Single-row writes:
//   - Insert, update and delete each touch exactly one operations row
//   - Multi-record workflows (pairing, cascades) live in the engine
//
// One source per grouping:
//   - Partial UNIQUE indexes on print_job_id and cut_job_id WHERE is_source = 1
//   - A second source insert fails with ops.ErrConflict
//
// Deterministic reads:
//   - Every list query ends with ORDER BY seq ASC, id COLLATE BINARY ASC
//   - seq is assigned at insert time, so lists come back in insertion order
//
// Consistent snapshots:
//   - View runs its callback inside one read transaction
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
