package backend

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// DefaultMaxRows caps how many rows Execute materializes before
// marking the result truncated.
const DefaultMaxRows = 10000

// SQLite is a Backend over a SQLite database. It is suitable for
// single-process production use and for tests via ":memory:".
type SQLite struct {
	db      *sql.DB
	maxRows int
	mu      sync.RWMutex
	closed  bool
}

var _ Backend = (*SQLite)(nil)

// SQLiteOption configures a SQLite backend.
type SQLiteOption func(*SQLite)

// WithMaxRows overrides the row cap applied to every query result.
// Values below one keep the default.
func WithMaxRows(n int) SQLiteOption {
	return func(s *SQLite) {
		if n > 0 {
			s.maxRows = n
		}
	}
}

// OpenSQLite opens a SQLite database as a query backend. The path
// should be a file path (e.g., "./warehouse.db") or ":memory:" for
// testing.
func OpenSQLite(path string, opts ...SQLiteOption) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// An in-memory database exists per connection, so the pool must
	// stay at one connection or seeded tables vanish between calls.
	if inMemoryPath(path) {
		db.SetMaxOpenConns(1)
	}

	// Enable WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	s := &SQLite{db: db, maxRows: DefaultMaxRows}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Execute implements Backend. It materializes at most the configured
// row cap and sets Result.Truncated when more rows were available.
func (s *SQLite) Execute(ctx context.Context, query string) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrBackendClosed
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	result := &Result{Columns: cols}
	for rows.Next() {
		if len(result.Rows) >= s.maxRows {
			result.Truncated = true
			break
		}

		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result.Rows = append(result.Rows, values)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return result, nil
}

// Introspect implements Backend. It reads column metadata from
// pragma_table_info, which returns zero rows for unknown tables.
func (s *SQLite) Introspect(ctx context.Context, table string) (*Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrBackendClosed
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT name, type, [notnull]
		FROM pragma_table_info(?)
		ORDER BY cid
	`, table)
	if err != nil {
		return nil, fmt.Errorf("introspect %s: %w", table, err)
	}
	defer rows.Close()

	t := &Table{Name: table}
	for rows.Next() {
		var f Field
		var notNull int
		if err := rows.Scan(&f.Name, &f.Type, &notNull); err != nil {
			return nil, fmt.Errorf("scan column info: %w", err)
		}
		f.Nullable = notNull == 0
		if f.Type == "" {
			f.Type = "ANY"
		} else {
			f.Type = strings.ToUpper(f.Type)
		}
		t.Fields = append(t.Fields, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate column info: %w", err)
	}
	if len(t.Fields) == 0 {
		return nil, fmt.Errorf("no such table: %s", table)
	}
	return t, nil
}

// inMemoryPath reports whether the DSN names an in-memory database.
func inMemoryPath(path string) bool {
	return strings.Contains(path, ":memory:") || strings.Contains(path, "mode=memory")
}

// Close releases the database handle. Further calls return
// ErrBackendClosed.
func (s *SQLite) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}
