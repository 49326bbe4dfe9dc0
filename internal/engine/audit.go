package engine

import (
	"context"
	"time"

	"github.com/roach88/opsledger/internal/ops"
)

// AuditAction is the kind of write an audit entry reports.
type AuditAction string

const (
	AuditCreated AuditAction = "created"
	AuditUpdated AuditAction = "updated"
	AuditDeleted AuditAction = "deleted"
)

// AuditEntry describes one committed write.
type AuditEntry struct {
	Action   AuditAction
	Op       string // engine operation that wrote, e.g. "split"
	RecordID string
	At       time.Time

	// Record is set for AuditCreated.
	Record *ops.Record

	// Patch is set for AuditUpdated.
	Patch *ops.Patch
}

// AuditLog receives every write the engine commits. Implementations must be
// safe for concurrent use. A failing AuditLog never fails the operation.
type AuditLog interface {
	Record(ctx context.Context, entry AuditEntry) error
}

type nopAuditLog struct{}

func (nopAuditLog) Record(context.Context, AuditEntry) error { return nil }

func (e *Engine) audit(ctx context.Context, entry AuditEntry) {
	entry.At = e.clock.Now()
	if err := e.auditLog.Record(ctx, entry); err != nil {
		e.logger.Warn("audit log write failed",
			"action", entry.Action,
			"op", entry.Op,
			"record_id", entry.RecordID,
			"error", err,
		)
	}
}

func (e *Engine) auditCreated(ctx context.Context, op string, rec ops.Record) {
	e.audit(ctx, AuditEntry{Action: AuditCreated, Op: op, RecordID: rec.ID, Record: &rec})
}

func (e *Engine) auditUpdated(ctx context.Context, op, id string, p ops.Patch) {
	e.audit(ctx, AuditEntry{Action: AuditUpdated, Op: op, RecordID: id, Patch: &p})
}

func (e *Engine) auditDeleted(ctx context.Context, op, id string) {
	e.audit(ctx, AuditEntry{Action: AuditDeleted, Op: op, RecordID: id})
}
