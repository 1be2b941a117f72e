// Package cache provides the shared result cache for the query
// pipeline. Entries are keyed by a fingerprint of the normalized
// natural-language query plus its classification category, carry a
// per-entry TTL, and are evicted lazily on read with an optional
// background sweep.
package cache

import (
	"hash/fnv"
	"sync"
	"time"

	"github.com/randalmurphal/queryflow/pkg/queryflow/backend"
)

const shardCount = 16

// Payload is the replayable product of a successful run: the SQL that
// was executed and the result it produced.
type Payload struct {
	SQL    string
	Result *backend.Result
}

// Entry is one cached value. Entries are immutable once stored; a
// refresh replaces the entry wholesale rather than patching it.
type Entry struct {
	Payload   Payload
	CreatedAt time.Time
	TTL       time.Duration
}

// Expired reports whether the entry's TTL has elapsed at the given
// time. A non-positive TTL never expires.
func (e *Entry) Expired(now time.Time) bool {
	if e.TTL <= 0 {
		return false
	}
	return now.Sub(e.CreatedAt) >= e.TTL
}

type shard struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// Cache is a sharded in-memory TTL cache, safe for concurrent use.
// Locking is per shard, so a read-check-write on one key never blocks
// unrelated keys.
type Cache struct {
	shards [shardCount]*shard
	stop   chan struct{}
	once   sync.Once
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	sweepInterval time.Duration
}

// WithSweepInterval starts a background janitor that evicts expired
// entries at the given interval. Without it, expired entries are only
// dropped when read. Close stops the janitor.
func WithSweepInterval(interval time.Duration) Option {
	return func(o *options) {
		o.sweepInterval = interval
	}
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	c := &Cache{stop: make(chan struct{})}
	for i := range c.shards {
		c.shards[i] = &shard{entries: make(map[string]*Entry)}
	}
	if o.sweepInterval > 0 {
		go c.janitor(o.sweepInterval)
	}
	return c
}

func (c *Cache) shardFor(key string) *shard {
	h := fnv.New32a()
	h.Write([]byte(key))
	return c.shards[h.Sum32()%shardCount]
}

// Get returns the live entry for key, or (nil, false) on a miss. An
// expired entry is removed and reported as a miss. The returned entry
// is shared; callers must treat it as read-only.
func (c *Cache) Get(key string) (*Entry, bool) {
	s := c.shardFor(key)

	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if !e.Expired(time.Now()) {
		return e, true
	}

	// Lazy eviction. Re-check under the write lock so a concurrent
	// Put of a fresh entry is not discarded.
	s.mu.Lock()
	if cur, ok := s.entries[key]; ok && cur.Expired(time.Now()) {
		delete(s.entries, key)
	}
	s.mu.Unlock()
	return nil, false
}

// Put stores payload under key with the given TTL, replacing any
// existing entry. Under a same-key race the last writer wins.
func (c *Cache) Put(key string, payload Payload, ttl time.Duration) {
	s := c.shardFor(key)

	s.mu.Lock()
	s.entries[key] = &Entry{
		Payload:   payload,
		CreatedAt: time.Now(),
		TTL:       ttl,
	}
	s.mu.Unlock()
}

// Delete removes key if present.
func (c *Cache) Delete(key string) {
	s := c.shardFor(key)

	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// EvictExpired sweeps every shard and removes expired entries,
// returning how many were dropped.
func (c *Cache) EvictExpired() int {
	now := time.Now()
	evicted := 0

	for _, s := range c.shards {
		s.mu.Lock()
		for key, e := range s.entries {
			if e.Expired(now) {
				delete(s.entries, key)
				evicted++
			}
		}
		s.mu.Unlock()
	}
	return evicted
}

// Len returns the number of stored entries, including expired entries
// that have not been swept yet.
func (c *Cache) Len() int {
	n := 0
	for _, s := range c.shards {
		s.mu.RLock()
		n += len(s.entries)
		s.mu.RUnlock()
	}
	return n
}

// Close stops the background janitor, if any. It is safe to call
// multiple times; the cache itself remains usable.
func (c *Cache) Close() {
	c.once.Do(func() { close(c.stop) })
}

func (c *Cache) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.EvictExpired()
		case <-c.stop:
			return
		}
	}
}
