package store

import (
	"context"
	"fmt"

	"github.com/roach88/opsledger/internal/ops"
)

// AddMachine inserts or renames a machine directory entry.
func (s *Store) AddMachine(ctx context.Context, m ops.Machine) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO machines (id, name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name
	`, m.ID, m.Name)
	if err != nil {
		return fmt.Errorf("add machine: %w", err)
	}
	return nil
}

// Machines returns the machine directory ordered by name.
func (s *Store) Machines(ctx context.Context) ([]ops.Machine, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name FROM machines ORDER BY name ASC, id COLLATE BINARY ASC")
	if err != nil {
		return nil, fmt.Errorf("query machines: %w", err)
	}
	defer rows.Close()

	machines := []ops.Machine{}
	for rows.Next() {
		var m ops.Machine
		if err := rows.Scan(&m.ID, &m.Name); err != nil {
			return nil, fmt.Errorf("scan machine: %w", err)
		}
		machines = append(machines, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate machines: %w", err)
	}
	return machines, nil
}
