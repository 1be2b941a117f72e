package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists run records to SQLite.
// It is suitable for single-process production use.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite history store.
// The path should be a file path (e.g., "./history.db") or ":memory:" for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// An in-memory database exists per connection; one pooled
	// connection keeps the schema visible across calls. Writes are
	// serialized by the store mutex either way.
	if path == ":memory:" || strings.Contains(path, "mode=memory") {
		db.SetMaxOpenConns(1)
	}

	// Enable WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			query TEXT NOT NULL,
			category TEXT NOT NULL,
			sql_text TEXT NOT NULL,
			status TEXT NOT NULL,
			attempts INTEGER NOT NULL,
			cache_hit INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_runs_created_at
		ON runs(created_at)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Save implements Store.
func (s *SQLiteStore) Save(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (run_id, query, category, sql_text, status, attempts, cache_hit, duration_ms, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			query = excluded.query,
			category = excluded.category,
			sql_text = excluded.sql_text,
			status = excluded.status,
			attempts = excluded.attempts,
			cache_hit = excluded.cache_hit,
			duration_ms = excluded.duration_ms,
			error = excluded.error,
			created_at = excluded.created_at
	`, rec.RunID, rec.Query, rec.Category, rec.SQL, rec.Status, rec.Attempts,
		boolToInt(rec.CacheHit), rec.Duration.Milliseconds(), rec.Error,
		rec.CreatedAt.Format(time.RFC3339Nano))

	if err != nil {
		return fmt.Errorf("save run record: %w", err)
	}
	return nil
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, runID string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return Record{}, ErrStoreClosed
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, query, category, sql_text, status, attempts, cache_hit, duration_ms, error, created_at
		FROM runs
		WHERE run_id = ?
	`, runID)

	rec, err := scanRecord(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("load run record: %w", err)
	}
	return rec, nil
}

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	q := `
		SELECT run_id, query, category, sql_text, status, attempts, cache_hit, duration_ms, error, created_at
		FROM runs
		ORDER BY rowid DESC
	`
	args := []any{}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list run records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan run record: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run records: %w", err)
	}

	return records, nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}

func scanRecord(scan func(dest ...any) error) (Record, error) {
	var (
		rec        Record
		cacheHit   int
		durationMS int64
		createdAt  string
	)
	if err := scan(&rec.RunID, &rec.Query, &rec.Category, &rec.SQL, &rec.Status,
		&rec.Attempts, &cacheHit, &durationMS, &rec.Error, &createdAt); err != nil {
		return Record{}, err
	}
	rec.CacheHit = cacheHit != 0
	rec.Duration = time.Duration(durationMS) * time.Millisecond
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
