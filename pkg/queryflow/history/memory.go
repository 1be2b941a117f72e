package history

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory history store.
// Records are lost when the process exits.
type MemoryStore struct {
	mu      sync.RWMutex
	records []Record       // insertion order, oldest first
	byRun   map[string]int // runID -> index into records
	closed  bool
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a new in-memory history store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byRun: make(map[string]int),
	}
}

// Save implements Store.
func (m *MemoryStore) Save(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	if i, ok := m.byRun[rec.RunID]; ok {
		m.records[i] = rec
		return nil
	}
	m.byRun[rec.RunID] = len(m.records)
	m.records = append(m.records, rec)
	return nil
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, runID string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return Record{}, ErrStoreClosed
	}

	i, ok := m.byRun[runID]
	if !ok {
		return Record{}, ErrNotFound
	}
	return m.records[i], nil
}

// List implements Store.
func (m *MemoryStore) List(_ context.Context, limit int) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	n := len(m.records)
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]Record, 0, n)
	for i := len(m.records) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.records = nil
	m.byRun = nil
	return nil
}

// Len returns the number of recorded runs.
// Useful for testing.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}
