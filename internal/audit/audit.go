// Package audit reports committed engine writes as structured log lines.
package audit

import (
	"context"
	"log/slog"

	"github.com/roach88/opsledger/internal/engine"
	"github.com/roach88/opsledger/internal/ops"
)

// Logger is an engine.AuditLog that writes one slog record per write.
type Logger struct {
	logger *slog.Logger
	level  slog.Level
}

var _ engine.AuditLog = (*Logger)(nil)

// New returns an audit logger writing at Info level to l. A nil l uses
// slog.Default().
func New(l *slog.Logger) *Logger {
	if l == nil {
		l = slog.Default()
	}
	return &Logger{logger: l.With("component", "audit"), level: slog.LevelInfo}
}

// Record logs the entry. It never fails.
func (a *Logger) Record(ctx context.Context, entry engine.AuditEntry) error {
	attrs := []slog.Attr{
		slog.String("action", string(entry.Action)),
		slog.String("op", entry.Op),
		slog.String("record_id", entry.RecordID),
		slog.Time("at", entry.At),
	}
	if r := entry.Record; r != nil {
		attrs = append(attrs,
			slog.String("kind", string(r.Kind)),
			slog.Bool("is_source", r.IsSource),
			slog.Int64("planned", r.Planned),
			slog.Int64("executed", r.Executed),
		)
		if r.PrintJobID != "" {
			attrs = append(attrs, slog.String("print_job_id", r.PrintJobID))
		}
		if r.CutJobID != "" {
			attrs = append(attrs, slog.String("cut_job_id", r.CutJobID))
		}
	}
	if p := entry.Patch; p != nil {
		attrs = append(attrs, slog.Group("patch", patchAttrs(p)...))
	}

	a.logger.LogAttrs(ctx, a.level, "record "+string(entry.Action), attrs...)
	return nil
}

func patchAttrs(p *ops.Patch) []any {
	var attrs []any
	if p.Executed != nil {
		attrs = append(attrs, slog.Int64("executed", *p.Executed))
	}
	if p.Draft != nil {
		attrs = append(attrs, slog.Bool("draft", *p.Draft))
	}
	if p.Completed != nil {
		attrs = append(attrs, slog.Bool("completed", *p.Completed))
	}
	if p.Status != nil {
		attrs = append(attrs, slog.String("status", *p.Status))
	}
	strs := []struct {
		key string
		val *string
	}{
		{"material", p.Material},
		{"machine", p.Machine},
		{"operator", p.Operator},
		{"pallet", p.Pallet},
		{"notes", p.Notes},
		{"date", p.Date},
	}
	for _, s := range strs {
		if s.val != nil {
			attrs = append(attrs, slog.String(s.key, *s.val))
		}
	}
	return attrs
}
