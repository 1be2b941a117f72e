package history_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/randalmurphal/queryflow/pkg/queryflow/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeFactory creates a store instance for testing.
type storeFactory func(t *testing.T) history.Store

// storeContractTest runs contract tests against any Store implementation.
func storeContractTest(t *testing.T, name string, factory storeFactory) {
	ctx := context.Background()

	t.Run(name+"/Save_and_Get", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		rec := history.Record{
			RunID:    "run-1",
			Query:    "how many users signed up last month",
			Category: "customer",
			SQL:      "SELECT COUNT(*) FROM main.users",
			Status:   "succeeded",
			Attempts: 1,
			CacheHit: false,
			Duration: 1500 * time.Millisecond,
		}
		require.NoError(t, store.Save(ctx, rec))

		got, err := store.Get(ctx, "run-1")
		require.NoError(t, err)
		assert.Equal(t, rec.Query, got.Query)
		assert.Equal(t, rec.Category, got.Category)
		assert.Equal(t, rec.SQL, got.SQL)
		assert.Equal(t, rec.Status, got.Status)
		assert.Equal(t, rec.Attempts, got.Attempts)
		assert.Equal(t, rec.Duration, got.Duration)
		assert.Empty(t, got.Error)
	})

	t.Run(name+"/Get_NotFound", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		_, err := store.Get(ctx, "run-nonexistent")
		assert.ErrorIs(t, err, history.ErrNotFound)
	})

	t.Run(name+"/Save_Overwrite", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		require.NoError(t, store.Save(ctx, history.Record{RunID: "run-1", Status: "recoverable", Attempts: 1}))
		require.NoError(t, store.Save(ctx, history.Record{RunID: "run-1", Status: "succeeded", Attempts: 2}))

		got, err := store.Get(ctx, "run-1")
		require.NoError(t, err)
		assert.Equal(t, "succeeded", got.Status)
		assert.Equal(t, 2, got.Attempts)

		records, err := store.List(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run(name+"/Save_StampsCreatedAt", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		require.NoError(t, store.Save(ctx, history.Record{RunID: "run-1"}))

		got, err := store.Get(ctx, "run-1")
		require.NoError(t, err)
		assert.False(t, got.CreatedAt.IsZero())
		assert.WithinDuration(t, time.Now().UTC(), got.CreatedAt, time.Minute)
	})

	t.Run(name+"/List_Empty", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		records, err := store.List(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run(name+"/List_NewestFirst", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		require.NoError(t, store.Save(ctx, history.Record{RunID: "run-1"}))
		require.NoError(t, store.Save(ctx, history.Record{RunID: "run-2"}))
		require.NoError(t, store.Save(ctx, history.Record{RunID: "run-3"}))

		records, err := store.List(ctx, 0)
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, "run-3", records[0].RunID)
		assert.Equal(t, "run-2", records[1].RunID)
		assert.Equal(t, "run-1", records[2].RunID)
	})

	t.Run(name+"/List_Limit", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		for _, id := range []string{"run-1", "run-2", "run-3", "run-4"} {
			require.NoError(t, store.Save(ctx, history.Record{RunID: id}))
		}

		records, err := store.List(ctx, 2)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "run-4", records[0].RunID)
		assert.Equal(t, "run-3", records[1].RunID)
	})

	t.Run(name+"/CacheHit_RoundTrip", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		require.NoError(t, store.Save(ctx, history.Record{RunID: "run-1", CacheHit: true}))
		require.NoError(t, store.Save(ctx, history.Record{RunID: "run-2", CacheHit: false}))

		hit, err := store.Get(ctx, "run-1")
		require.NoError(t, err)
		assert.True(t, hit.CacheHit)

		miss, err := store.Get(ctx, "run-2")
		require.NoError(t, err)
		assert.False(t, miss.CacheHit)
	})

	t.Run(name+"/FailedRun", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		require.NoError(t, store.Save(ctx, history.Record{
			RunID:    "run-1",
			Status:   "terminal",
			Attempts: 4,
			Error:    "execution failed [syntax]: near \"FORM\": syntax error",
		}))

		got, err := store.Get(ctx, "run-1")
		require.NoError(t, err)
		assert.Equal(t, "terminal", got.Status)
		assert.Contains(t, got.Error, "syntax error")
	})

	t.Run(name+"/Close_ThenError", func(t *testing.T) {
		store := factory(t)
		require.NoError(t, store.Close())

		err := store.Save(ctx, history.Record{RunID: "run-1"})
		assert.ErrorIs(t, err, history.ErrStoreClosed)

		_, err = store.Get(ctx, "run-1")
		assert.ErrorIs(t, err, history.ErrStoreClosed)

		_, err = store.List(ctx, 0)
		assert.ErrorIs(t, err, history.ErrStoreClosed)
	})
}

// TestMemoryStore runs contract tests against MemoryStore.
func TestMemoryStore(t *testing.T) {
	factory := func(t *testing.T) history.Store {
		return history.NewMemoryStore()
	}
	storeContractTest(t, "MemoryStore", factory)
}

// TestSQLiteStore runs contract tests against SQLiteStore.
func TestSQLiteStore(t *testing.T) {
	factory := func(t *testing.T) history.Store {
		store, err := history.NewSQLiteStore(":memory:")
		require.NoError(t, err)
		return store
	}
	storeContractTest(t, "SQLiteStore", factory)
}

func TestMemoryStore_Len(t *testing.T) {
	ctx := context.Background()
	store := history.NewMemoryStore()
	defer store.Close()

	assert.Equal(t, 0, store.Len())

	require.NoError(t, store.Save(ctx, history.Record{RunID: "run-1"}))
	require.NoError(t, store.Save(ctx, history.Record{RunID: "run-2"}))
	assert.Equal(t, 2, store.Len())

	// Overwrite does not grow the store.
	require.NoError(t, store.Save(ctx, history.Record{RunID: "run-1", Status: "succeeded"}))
	assert.Equal(t, 2, store.Len())
}

func TestMemoryStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	store := history.NewMemoryStore()
	defer store.Close()

	const numGoroutines = 50
	const numOps = 40

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()

			runID := "run-" + string(rune('a'+id%26))
			for j := 0; j < numOps; j++ {
				switch j % 3 {
				case 0:
					_ = store.Save(ctx, history.Record{RunID: runID, Attempts: j})
				case 1:
					_, _ = store.Get(ctx, runID)
				case 2:
					_, _ = store.List(ctx, 10)
				}
			}
		}(i)
	}

	wg.Wait()

	// Should not panic or deadlock
}

func TestSQLiteStore_Persistence(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := history.NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, history.Record{
		RunID:    "run-1",
		Query:    "top products by revenue",
		Category: "product",
		Status:   "succeeded",
	}))
	require.NoError(t, store.Close())

	reopened, err := history.NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "top products by revenue", got.Query)
	assert.Equal(t, "product", got.Category)
}

func TestSQLiteStore_CloseIdempotent(t *testing.T) {
	store, err := history.NewSQLiteStore(":memory:")
	require.NoError(t, err)

	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}
