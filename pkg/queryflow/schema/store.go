package schema

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// Store caches built contexts by table set with a shared TTL. It is
// safe for concurrent use; under a same-key race the last writer
// wins, which is harmless because contexts for the same table set are
// interchangeable within the TTL.
type Store struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]storeEntry
}

type storeEntry struct {
	ctx       *Context
	createdAt time.Time
}

// NewStore creates a context store. A non-positive TTL means entries
// never expire.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:     ttl,
		entries: make(map[string]storeEntry),
	}
}

// Key derives the store key for a qualifier and table set. Table
// order does not matter.
func Key(qualifier string, tables []string) string {
	sorted := append([]string(nil), tables...)
	sort.Strings(sorted)
	return qualifier + "|" + strings.Join(sorted, ",")
}

// Get returns the cached context for key, or (nil, false) when absent
// or expired. Expired entries are dropped on read.
func (s *Store) Get(key string) (*Context, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if s.ttl > 0 && time.Since(e.createdAt) >= s.ttl {
		s.mu.Lock()
		if cur, ok := s.entries[key]; ok && time.Since(cur.createdAt) >= s.ttl {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, false
	}
	return e.ctx, true
}

// Put stores a context under key, replacing any existing entry.
func (s *Store) Put(key string, ctx *Context) {
	s.mu.Lock()
	s.entries[key] = storeEntry{ctx: ctx, createdAt: time.Now()}
	s.mu.Unlock()
}

// Len returns the number of stored contexts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
