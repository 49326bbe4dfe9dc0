package engine

import (
	"context"
	"log/slog"
	"sync"

	"github.com/roach88/opsledger/internal/ops"
)

// DefaultCodePrefixLen is how many characters of the work-order number lead
// an imported record's internal code.
const DefaultCodePrefixLen = 6

// Engine runs production workflow operations against an operation record
// store.
//
// Thread-safety: all methods are safe for concurrent use. Quantity writes
// for one print chain or cut job are serialized within the process.
type Engine struct {
	store    ops.Store
	plans    ops.PlanTracker      // nil: plans are never skipped or marked
	machines ops.MachineDirectory // nil: legacy machine names never resolve
	clock    Clock
	jobIDs   IDGenerator
	auditLog AuditLog
	logger   *slog.Logger

	seedSourceQuantities bool
	codePrefixLen        int

	locks jobLocks
}

// EngineOption allows configuration of engine collaborators.
type EngineOption func(*Engine)

// WithClock sets the wall clock used for codes, dates and completion stamps.
func WithClock(c Clock) EngineOption {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithJobIDGenerator sets the generator for print and cut job ids.
// Default: UUIDv7Generator.
func WithJobIDGenerator(g IDGenerator) EngineOption {
	return func(e *Engine) {
		e.jobIDs = g
	}
}

// WithPlanTracker overrides the plan tracker. By default the store is used
// when it implements ops.PlanTracker.
func WithPlanTracker(t ops.PlanTracker) EngineOption {
	return func(e *Engine) {
		e.plans = t
	}
}

// WithMachineDirectory overrides the machine directory. By default the store
// is used when it implements ops.MachineDirectory.
func WithMachineDirectory(d ops.MachineDirectory) EngineOption {
	return func(e *Engine) {
		e.machines = d
	}
}

// WithAuditLog sets the collaborator that receives every committed write.
func WithAuditLog(a AuditLog) EngineOption {
	return func(e *Engine) {
		e.auditLog = a
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithSeededSourceQuantities makes imported source records show their
// planned quantity as executed. Display only: totals never count source
// records.
func WithSeededSourceQuantities(seed bool) EngineOption {
	return func(e *Engine) {
		e.seedSourceQuantities = seed
	}
}

// WithCodePrefixLen sets how many characters of the work-order number start
// an internal code. Values below 1 keep the default.
func WithCodePrefixLen(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.codePrefixLen = n
		}
	}
}

// New creates an Engine over s. Panics if s is nil.
func New(s ops.Store, opts ...EngineOption) *Engine {
	if s == nil {
		panic("engine: nil store")
	}

	e := &Engine{
		store:         s,
		clock:         SystemClock{},
		jobIDs:        UUIDv7Generator{},
		auditLog:      nopAuditLog{},
		logger:        slog.Default(),
		codePrefixLen: DefaultCodePrefixLen,
	}
	if t, ok := s.(ops.PlanTracker); ok {
		e.plans = t
	}
	if d, ok := s.(ops.MachineDirectory); ok {
		e.machines = d
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// jobLocks hands out one mutex per lock key. Entries are dropped when the
// last holder releases them.
type jobLocks struct {
	mu    sync.Mutex
	locks map[string]*jobLock
}

type jobLock struct {
	sync.Mutex
	refs int
}

func (l *jobLocks) lock(key string) (unlock func()) {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*jobLock)
	}
	jl, ok := l.locks[key]
	if !ok {
		jl = &jobLock{}
		l.locks[key] = jl
	}
	jl.refs++
	l.mu.Unlock()

	jl.Lock()
	return func() {
		jl.Unlock()
		l.mu.Lock()
		jl.refs--
		if jl.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}

// lockKey returns the key that serializes quantity writes for rec.
//
// A print job and the cut-from-print records consuming its source share one
// key, since print totals cap cut totals and cut totals floor print totals.
func (e *Engine) lockKey(ctx context.Context, rec ops.Record) string {
	switch ops.ClassOf(rec) {
	case ops.ClassPrint:
		if rec.PrintJobID != "" {
			return "print:" + rec.PrintJobID
		}
	case ops.ClassCutFromPrint:
		src, err := e.store.GetRecord(ctx, rec.SourcePrintID)
		if err == nil && src.PrintJobID != "" {
			return "print:" + src.PrintJobID
		}
		return "print-source:" + rec.SourcePrintID
	case ops.ClassCut:
		if rec.CutJobID != "" {
			return "cut:" + rec.CutJobID
		}
	}
	return "record:" + rec.ID
}

func (e *Engine) lockRecord(ctx context.Context, rec ops.Record) (unlock func()) {
	return e.locks.lock(e.lockKey(ctx, rec))
}
