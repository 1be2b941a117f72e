package schema_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/randalmurphal/queryflow/pkg/queryflow/backend"
	qferrors "github.com/randalmurphal/queryflow/pkg/queryflow/errors"
	"github.com/randalmurphal/queryflow/pkg/queryflow/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend serves canned table schemas and counts introspections.
type fakeBackend struct {
	mu     sync.Mutex
	calls  int
	tables map[string]backend.Table
}

func (f *fakeBackend) Execute(ctx context.Context, query string) (*backend.Result, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeBackend) Introspect(ctx context.Context, table string) (*backend.Table, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	t, ok := f.tables[table]
	if !ok {
		return nil, fmt.Errorf("no such table: %s", table)
	}
	return &t, nil
}

func (f *fakeBackend) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func demoTables() map[string]backend.Table {
	return map[string]backend.Table{
		"users": {Name: "users", Fields: []backend.Field{
			{Name: "id", Type: "INTEGER"},
			{Name: "first_name", Type: "TEXT"},
			{Name: "country", Type: "TEXT", Nullable: true},
			{Name: "created_at", Type: "TEXT"},
		}},
		"orders": {Name: "orders", Fields: []backend.Field{
			{Name: "order_id", Type: "INTEGER"},
			{Name: "user_id", Type: "INTEGER"},
			{Name: "status", Type: "TEXT"},
			{Name: "created_at", Type: "TEXT"},
		}},
		"products": {Name: "products", Fields: []backend.Field{
			{Name: "id", Type: "INTEGER"},
			{Name: "name", Type: "TEXT"},
			{Name: "category", Type: "TEXT", Nullable: true},
		}},
	}
}

func demoContext() *schema.Context {
	tables := demoTables()
	return schema.NewContext("main",
		[]backend.Table{tables["users"], tables["orders"], tables["products"]},
		schema.DefaultRelationships)
}

func TestContext_Owner(t *testing.T) {
	sc := demoContext()

	owner, ok := sc.Owner("status")
	require.True(t, ok)
	assert.Equal(t, "orders", owner)

	// created_at lives in both users and orders
	_, ok = sc.Owner("created_at")
	assert.False(t, ok)

	_, ok = sc.Owner("no_such_column")
	assert.False(t, ok)
}

func TestContext_Owners(t *testing.T) {
	sc := demoContext()

	assert.Equal(t, []string{"orders", "users"}, sc.Owners("created_at"))
	assert.Equal(t, []string{"orders"}, sc.Owners("order_id"))
	assert.Empty(t, sc.Owners("missing"))
}

func TestContext_RelationshipFiltering(t *testing.T) {
	tables := demoTables()

	// Without order_items, its join keys must not survive
	sc := schema.NewContext("main",
		[]backend.Table{tables["users"], tables["orders"]},
		schema.DefaultRelationships)

	require.Len(t, sc.Relationships, 1)
	assert.Equal(t, "orders.user_id", sc.Relationships[0].Left)
	assert.Equal(t, "users.id", sc.Relationships[0].Right)
}

func TestContext_Render(t *testing.T) {
	sc := demoContext()
	out := sc.Render()

	assert.Contains(t, out, "DATABASE SCHEMA")
	assert.Contains(t, out, "Table main.orders:")
	assert.Contains(t, out, "user_id INTEGER NOT NULL")
	assert.Contains(t, out, "category TEXT\n")

	assert.Contains(t, out, "COLUMN LOCATIONS")
	assert.Contains(t, out, "created_at -> orders, users (ambiguous, qualify explicitly)")
	assert.Contains(t, out, "first_name -> users")

	assert.Contains(t, out, "RELATIONSHIPS")
	assert.Contains(t, out, "orders.user_id = users.id")
}

func TestContext_RenderStable(t *testing.T) {
	assert.Equal(t, demoContext().Render(), demoContext().Render())
}

func TestStore_PutGet(t *testing.T) {
	store := schema.NewStore(time.Hour)
	sc := demoContext()

	key := schema.Key("main", []string{"users", "orders"})
	store.Put(key, sc)

	got, ok := store.Get(key)
	require.True(t, ok)
	assert.Same(t, sc, got)
}

func TestStore_Expiry(t *testing.T) {
	store := schema.NewStore(10 * time.Millisecond)
	key := schema.Key("main", []string{"users"})
	store.Put(key, demoContext())

	time.Sleep(20 * time.Millisecond)

	_, ok := store.Get(key)
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())
}

func TestKey_OrderInsensitive(t *testing.T) {
	a := schema.Key("main", []string{"orders", "users"})
	b := schema.Key("main", []string{"users", "orders"})
	assert.Equal(t, a, b)

	assert.NotEqual(t, a, schema.Key("main", []string{"users"}))
	assert.NotEqual(t, a, schema.Key("analytics", []string{"orders", "users"}))
}

func TestBuilder_Build(t *testing.T) {
	fake := &fakeBackend{tables: demoTables()}
	builder := schema.NewBuilder(fake)

	sc, err := builder.Build(context.Background(), []string{"users", "orders"})
	require.NoError(t, err)
	assert.Equal(t, []string{"users", "orders"}, sc.TableNames())
	assert.Equal(t, 2, fake.callCount())

	// Same table set is served from the store, not reintrospected
	again, err := builder.Build(context.Background(), []string{"orders", "users"})
	require.NoError(t, err)
	assert.Same(t, sc, again)
	assert.Equal(t, 2, fake.callCount())
}

func TestBuilder_IntrospectionError(t *testing.T) {
	fake := &fakeBackend{tables: demoTables()}
	builder := schema.NewBuilder(fake)

	_, err := builder.Build(context.Background(), []string{"users", "ordrs"})
	require.Error(t, err)

	var introErr *qferrors.IntrospectionError
	require.ErrorAs(t, err, &introErr)
	assert.Equal(t, "ordrs", introErr.Table)
}

func TestBuilder_Qualifier(t *testing.T) {
	fake := &fakeBackend{tables: demoTables()}
	builder := schema.NewBuilder(fake, schema.WithQualifier("analytics"))

	assert.Equal(t, "analytics", builder.Qualifier())

	sc, err := builder.Build(context.Background(), []string{"users"})
	require.NoError(t, err)
	assert.Contains(t, sc.Render(), "Table analytics.users:")
}
