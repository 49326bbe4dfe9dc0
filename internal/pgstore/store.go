// Package pgstore is a PostgreSQL operation record store built on gorm.
//
// It satisfies the same contract as the SQLite store: insertion-ordered
// reads, one source record per job grouping, and snapshot views.
package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/roach88/opsledger/internal/ops"
	"github.com/roach88/opsledger/internal/querysql"
)

// Postgres error codes the store maps onto ops errors.
const (
	PgErrUniqueViolation = "23505" // unique_violation
	PgErrCheckViolation  = "23514" // check_violation
)

// orderBy matches the SQLite store's insertion ordering.
const orderBy = "seq ASC, id ASC"

// sourceIndexes enforce one source record per print job and per cut job.
// gorm tags cannot express partial indexes.
var sourceIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_operations_print_source
		ON operations(print_job_id) WHERE is_source AND print_job_id IS NOT NULL`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_operations_cut_source
		ON operations(cut_job_id) WHERE is_source AND cut_job_id IS NOT NULL`,
}

// Store is an ops.Store backed by PostgreSQL.
type Store struct {
	db    *gorm.DB
	newID func() string
}

var (
	_ ops.Store            = (*Store)(nil)
	_ ops.PlanTracker      = (*Store)(nil)
	_ ops.MachineDirectory = (*Store)(nil)
)

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator overrides how record ids are assigned. Default: UUIDv7.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		s.newID = gen
	}
}

// Open connects to the database at dsn and migrates the schema.
func Open(dsn string, opts ...Option) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	s, err := New(db, opts...)
	if err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			sqlDB.Close()
		}
		return nil, err
	}
	return s, nil
}

// New wraps an existing gorm handle and migrates the schema.
func New(db *gorm.DB, opts ...Option) (*Store, error) {
	if err := Migrate(db); err != nil {
		return nil, err
	}
	s := &Store{
		db:    db,
		newID: func() string { return uuid.Must(uuid.NewV7()).String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Migrate creates or updates the tables and source indexes. Idempotent.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&operationRow{}, &importedPlanRow{}, &machineRow{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	for _, stmt := range sourceIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create source index: %w", err)
		}
	}
	return nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// DB returns the gorm handle.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// InsertRecord stores a new record and returns its id.
func (s *Store) InsertRecord(ctx context.Context, rec ops.Record) (string, error) {
	if err := rec.Validate(); err != nil {
		return "", fmt.Errorf("insert record: %w", err)
	}
	if rec.ID == "" {
		rec.ID = s.newID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	if rec.Status == "" {
		rec.Status = ops.StatusPending
	}

	row := toRow(rec)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", fmt.Errorf("insert record: %w", mapPgError(err))
	}
	return rec.ID, nil
}

// UpdateRecord applies a partial update to one record.
// Returns an error wrapping ops.ErrNotFound if the id does not exist.
func (s *Store) UpdateRecord(ctx context.Context, id string, p ops.Patch) error {
	if p.Executed != nil && *p.Executed < 0 {
		return fmt.Errorf("update record %s: executed quantity %d is negative", id, *p.Executed)
	}
	if p.Empty() {
		_, err := s.GetRecord(ctx, id)
		return err
	}

	result := s.db.WithContext(ctx).
		Model(&operationRow{}).
		Where("id = ?", id).
		Updates(patchColumns(p))
	if result.Error != nil {
		return fmt.Errorf("update record %s: %w", id, mapPgError(result.Error))
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("update record %s: %w", id, ops.ErrNotFound)
	}
	return nil
}

// DeleteRecord removes one record.
func (s *Store) DeleteRecord(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&operationRow{})
	if result.Error != nil {
		return fmt.Errorf("delete record %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("delete record %s: %w", id, ops.ErrNotFound)
	}
	return nil
}

// GetRecord retrieves a single record by id.
func (s *Store) GetRecord(ctx context.Context, id string) (ops.Record, error) {
	return reader{db: s.db}.GetRecord(ctx, id)
}

// ListRecords returns all records matching f in insertion order.
func (s *Store) ListRecords(ctx context.Context, f ops.Filter) ([]ops.Record, error) {
	return reader{db: s.db}.ListRecords(ctx, f)
}

// View runs fn inside a read-only repeatable-read transaction.
func (s *Store) View(ctx context.Context, fn func(ops.Reader) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(reader{db: tx})
	}, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
}

// PlanImported reports whether a quantity plan was already materialized.
func (s *Store) PlanImported(ctx context.Context, planID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&importedPlanRow{}).Where("plan_id = ?", planID).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check imported plan: %w", err)
	}
	return count > 0, nil
}

// MarkPlanImported records that planID produced sourceRecordID.
// The first import wins.
func (s *Store) MarkPlanImported(ctx context.Context, planID, sourceRecordID string) error {
	row := importedPlanRow{PlanID: planID, SourceRecordID: sourceRecordID, ImportedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "plan_id"}}, DoNothing: true}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("mark plan imported: %w", err)
	}
	return nil
}

// AddMachine inserts or renames a machine directory entry.
func (s *Store) AddMachine(ctx context.Context, m ops.Machine) error {
	row := machineRow{ID: m.ID, Name: m.Name}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("add machine: %w", err)
	}
	return nil
}

// Machines returns the machine directory ordered by name.
func (s *Store) Machines(ctx context.Context) ([]ops.Machine, error) {
	var rows []machineRow
	if err := s.db.WithContext(ctx).Order("name ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query machines: %w", err)
	}
	machines := make([]ops.Machine, 0, len(rows))
	for _, row := range rows {
		machines = append(machines, ops.Machine{ID: row.ID, Name: row.Name})
	}
	return machines, nil
}

// reader implements ops.Reader over a gorm handle or transaction.
type reader struct {
	db *gorm.DB
}

func (r reader) GetRecord(ctx context.Context, id string) (ops.Record, error) {
	var row operationRow
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ops.Record{}, fmt.Errorf("get record %s: %w", id, ops.ErrNotFound)
	}
	if err != nil {
		return ops.Record{}, fmt.Errorf("get record %s: %w", id, err)
	}
	return row.record(), nil
}

func (r reader) ListRecords(ctx context.Context, f ops.Filter) ([]ops.Record, error) {
	where, params, err := querysql.Where(f)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	var rows []operationRow
	if err := r.db.WithContext(ctx).Where(where, params...).Order(orderBy).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}

	records := make([]ops.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.record())
	}
	return records, nil
}

// mapPgError turns unique violations into ops.ErrConflict and check
// violations into ops.ErrInvalidValue.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case PgErrUniqueViolation:
		return fmt.Errorf("%w: %s", ops.ErrConflict, pgErr.Message)
	case PgErrCheckViolation:
		return fmt.Errorf("%w: %s", ops.ErrInvalidValue, pgErr.Message)
	}
	return err
}
