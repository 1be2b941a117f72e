// Package backend defines the SQL execution surface the pipeline runs
// against. A Backend executes generated SQL and answers schema
// introspection requests; the rest of the pipeline never touches a
// database handle directly.
package backend

import (
	"context"
	"errors"
)

// ErrBackendClosed is returned when operating on a closed backend.
var ErrBackendClosed = errors.New("backend is closed")

// Backend executes SQL and introspects table schemas.
//
// Implementations must be safe for concurrent use. Execute is expected
// to enforce its own result-size limits and report truncation through
// Result.Truncated rather than failing.
type Backend interface {
	// Execute runs a read-only SQL statement and returns the result set.
	Execute(ctx context.Context, query string) (*Result, error)

	// Introspect returns the schema of a single table. It returns an
	// error if the table does not exist.
	Introspect(ctx context.Context, table string) (*Table, error)
}

// Result is a materialized query result.
type Result struct {
	// Columns holds output column names in select order.
	Columns []string `json:"columns"`

	// Rows holds the result rows. Values are driver-native Go types
	// with []byte already converted to string.
	Rows [][]any `json:"rows"`

	// Truncated reports whether the row limit cut the result short.
	Truncated bool `json:"truncated"`
}

// RowCount returns the number of rows in the result.
func (r *Result) RowCount() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}

// Sample returns up to n rows from the top of the result. It returns
// the underlying slices, not copies.
func (r *Result) Sample(n int) [][]any {
	if r == nil || n <= 0 {
		return nil
	}
	if n > len(r.Rows) {
		n = len(r.Rows)
	}
	return r.Rows[:n]
}

// Table describes one table's schema.
type Table struct {
	Name   string
	Fields []Field
}

// Field describes one column of a table.
type Field struct {
	Name     string
	Type     string
	Nullable bool
}
