package ops

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a record id does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when a write would break a uniqueness rule,
	// such as a second source record for one job grouping.
	ErrConflict = errors.New("record conflicts with existing data")

	// ErrInvalidValue is returned when the store's own column checks reject
	// a write, such as a negative quantity that slipped past Validate.
	ErrInvalidValue = errors.New("record value rejected by store constraint")
)

// Reader is the read side of an operation record store.
type Reader interface {
	// GetRecord returns ErrNotFound (possibly wrapped) if id does not exist.
	GetRecord(ctx context.Context, id string) (Record, error)

	// ListRecords returns matching records in insertion order.
	// Returns an empty slice, not nil, when nothing matches.
	ListRecords(ctx context.Context, f Filter) ([]Record, error)
}

// Store is a durable operation record store. Every write touches one row.
type Store interface {
	Reader

	// InsertRecord stores r and returns its id. An empty r.ID is assigned
	// by the store.
	InsertRecord(ctx context.Context, r Record) (string, error)
	UpdateRecord(ctx context.Context, id string, p Patch) error
	DeleteRecord(ctx context.Context, id string) error

	// View runs fn against a single consistent snapshot of the store.
	View(ctx context.Context, fn func(Reader) error) error
}

// PlanTracker remembers which quantity plans were already imported.
type PlanTracker interface {
	PlanImported(ctx context.Context, planID string) (bool, error)
	MarkPlanImported(ctx context.Context, planID, sourceRecordID string) error
}

// MachineDirectory lists known machines for resolving legacy name hints.
type MachineDirectory interface {
	Machines(ctx context.Context) ([]Machine, error)
}
