package backend_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/randalmurphal/queryflow/pkg/queryflow/backend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSeededBackend(t *testing.T, opts ...backend.SQLiteOption) *backend.SQLite {
	t.Helper()

	db, err := backend.OpenSQLite(":memory:", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Seed(context.Background()))
	return db
}

func TestSQLite_Execute(t *testing.T) {
	db := newSeededBackend(t)

	result, err := db.Execute(context.Background(), "SELECT COUNT(*) AS n FROM users")
	require.NoError(t, err)

	assert.Equal(t, []string{"n"}, result.Columns)
	require.Equal(t, 1, result.RowCount())
	assert.EqualValues(t, 8, result.Rows[0][0])
	assert.False(t, result.Truncated)
}

func TestSQLite_ExecuteJoin(t *testing.T) {
	db := newSeededBackend(t)

	result, err := db.Execute(context.Background(), `
		SELECT u.country, SUM(oi.sale_price) AS revenue
		FROM order_items AS oi
		JOIN users AS u ON oi.user_id = u.id
		GROUP BY u.country
		ORDER BY revenue DESC
	`)
	require.NoError(t, err)

	assert.Equal(t, []string{"country", "revenue"}, result.Columns)
	assert.Greater(t, result.RowCount(), 1)

	// Text values come back as string, not []byte
	_, ok := result.Rows[0][0].(string)
	assert.True(t, ok, "country should scan as string, got %T", result.Rows[0][0])
}

func TestSQLite_ExecuteTruncation(t *testing.T) {
	db := newSeededBackend(t, backend.WithMaxRows(5))

	result, err := db.Execute(context.Background(), "SELECT id FROM order_items ORDER BY id")
	require.NoError(t, err)

	assert.Equal(t, 5, result.RowCount())
	assert.True(t, result.Truncated)
}

func TestSQLite_ExecuteError(t *testing.T) {
	db := newSeededBackend(t)

	_, err := db.Execute(context.Background(), "SELEC * FORM users")
	assert.Error(t, err)
}

func TestSQLite_ExecuteUnknownColumn(t *testing.T) {
	db := newSeededBackend(t)

	_, err := db.Execute(context.Background(), "SELECT revenue FROM users")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such column")
}

func TestSQLite_Introspect(t *testing.T) {
	db := newSeededBackend(t)

	table, err := db.Introspect(context.Background(), "users")
	require.NoError(t, err)

	assert.Equal(t, "users", table.Name)
	require.NotEmpty(t, table.Fields)

	byName := map[string]backend.Field{}
	for _, f := range table.Fields {
		byName[f.Name] = f
	}

	assert.Equal(t, "TEXT", byName["first_name"].Type)
	assert.False(t, byName["first_name"].Nullable)
	assert.Equal(t, "INTEGER", byName["age"].Type)
	assert.True(t, byName["age"].Nullable)
}

func TestSQLite_IntrospectUnknownTable(t *testing.T) {
	db := newSeededBackend(t)

	_, err := db.Introspect(context.Background(), "ordrs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such table")
}

func TestSQLite_Persistence(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "warehouse.db")

	db1, err := backend.OpenSQLite(dbPath)
	require.NoError(t, err)
	require.NoError(t, db1.Seed(context.Background()))
	require.NoError(t, db1.Close())

	db2, err := backend.OpenSQLite(dbPath)
	require.NoError(t, err)
	defer db2.Close()

	result, err := db2.Execute(context.Background(), "SELECT COUNT(*) FROM products")
	require.NoError(t, err)
	assert.EqualValues(t, 10, result.Rows[0][0])
}

func TestSQLite_SeedIdempotent(t *testing.T) {
	db := newSeededBackend(t)

	// Reseeding must not duplicate rows
	require.NoError(t, db.Seed(context.Background()))

	result, err := db.Execute(context.Background(), "SELECT COUNT(*) FROM users")
	require.NoError(t, err)
	assert.EqualValues(t, 8, result.Rows[0][0])
}

func TestSQLite_Closed(t *testing.T) {
	db, err := backend.OpenSQLite(":memory:")
	require.NoError(t, err)

	assert.NoError(t, db.Close())
	assert.NoError(t, db.Close())

	_, err = db.Execute(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, backend.ErrBackendClosed)

	_, err = db.Introspect(context.Background(), "users")
	assert.ErrorIs(t, err, backend.ErrBackendClosed)
}

func TestResult_Sample(t *testing.T) {
	result := &backend.Result{
		Columns: []string{"a"},
		Rows:    [][]any{{1}, {2}, {3}},
	}

	assert.Len(t, result.Sample(2), 2)
	assert.Len(t, result.Sample(10), 3)
	assert.Nil(t, result.Sample(0))

	var nilResult *backend.Result
	assert.Equal(t, 0, nilResult.RowCount())
	assert.Nil(t, nilResult.Sample(5))
}
