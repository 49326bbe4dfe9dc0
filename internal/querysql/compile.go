// Package querysql compiles record filters into parameterized SQL.
//
// CRITICAL: every SELECT ends with a deterministic ORDER BY so record lists
// come back in insertion order on every read.
// CRITICAL: values are always bound as ? parameters, never interpolated.
package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/opsledger/internal/ops"
)

// OrderBy is the stable ordering applied to every record query.
// COLLATE BINARY keeps id tiebreaks identical across SQLite versions.
const OrderBy = "seq ASC, id COLLATE BINARY ASC"

// Compiler builds SELECT statements over one table.
type Compiler struct {
	Table   string
	Columns []string
}

// NewCompiler creates a Compiler selecting columns from table.
// An empty column list selects *.
func NewCompiler(table string, columns ...string) *Compiler {
	return &Compiler{Table: table, Columns: columns}
}

// Compile converts a filter into a SELECT statement and its parameters.
func (c *Compiler) Compile(f ops.Filter) (string, []any, error) {
	where, params, err := Where(f)
	if err != nil {
		return "", nil, err
	}

	cols := "*"
	if len(c.Columns) > 0 {
		cols = strings.Join(c.Columns, ", ")
	}

	sql := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY %s", cols, c.Table, where, OrderBy)
	return sql, params, nil
}

// Where compiles a filter into a WHERE fragment. An empty filter compiles to
// "1 = 1". Predicates appear in a fixed column order.
func Where(f ops.Filter) (string, []any, error) {
	var parts []string
	var params []any

	eq := func(column string, value any) {
		parts = append(parts, column+" = ?")
		params = append(params, value)
	}

	if f.ID != "" {
		eq("id", f.ID)
	}
	if f.Kind != "" {
		if !f.Kind.Valid() {
			return "", nil, fmt.Errorf("compile filter: unknown kind %q", f.Kind)
		}
		eq("kind", string(f.Kind))
	}
	if f.IsSource != nil {
		eq("is_source", *f.IsSource)
	}
	if f.PrintJobID != "" {
		eq("print_job_id", f.PrintJobID)
	}
	if f.CutJobID != "" {
		eq("cut_job_id", f.CutJobID)
	}
	if f.SourcePrintID != "" {
		eq("source_print_id", f.SourcePrintID)
	}
	if f.ParentID != "" {
		eq("parent_id", f.ParentID)
	}
	if f.ItemID != "" {
		eq("item_id", f.ItemID)
	}

	if len(parts) == 0 {
		return "1 = 1", nil, nil
	}
	return strings.Join(parts, " AND "), params, nil
}
