package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/opsledger/internal/ops"
	"github.com/roach88/opsledger/internal/querysql"
)

var recordQuery = querysql.NewCompiler("operations", recordColumns...)

// queryer is the subset of *sql.DB and *sql.Tx the read path needs.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// reader implements ops.Reader over a database handle or a transaction.
type reader struct {
	q queryer
}

// GetRecord retrieves a single record by id.
// Returns an error wrapping ops.ErrNotFound if the id does not exist.
func (s *Store) GetRecord(ctx context.Context, id string) (ops.Record, error) {
	return reader{q: s.db}.GetRecord(ctx, id)
}

// ListRecords returns all records matching f in insertion order.
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) ListRecords(ctx context.Context, f ops.Filter) ([]ops.Record, error) {
	return reader{q: s.db}.ListRecords(ctx, f)
}

func (r reader) GetRecord(ctx context.Context, id string) (ops.Record, error) {
	row := r.q.QueryRowContext(ctx,
		"SELECT "+strings.Join(recordColumns, ", ")+" FROM operations WHERE id = ?", id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ops.Record{}, fmt.Errorf("get record %s: %w", id, ops.ErrNotFound)
	}
	if err != nil {
		return ops.Record{}, fmt.Errorf("get record %s: %w", id, err)
	}
	return rec, nil
}

func (r reader) ListRecords(ctx context.Context, f ops.Filter) ([]ops.Record, error) {
	query, params, err := recordQuery.Compile(f)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	rows, err := r.q.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	records := []ops.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	return records, nil
}
