package schema

import (
	"context"
	"time"

	"github.com/randalmurphal/queryflow/pkg/queryflow/backend"
	qferrors "github.com/randalmurphal/queryflow/pkg/queryflow/errors"
)

// DefaultTTL is how long built contexts stay served from the store.
const DefaultTTL = time.Hour

// Builder introspects tables through a backend and assembles contexts,
// serving repeat requests for the same table set from its store.
type Builder struct {
	backend       backend.Backend
	store         *Store
	qualifier     string
	relationships []Relationship
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithQualifier sets the schema prefix used in rendered contexts and
// qualification checks. Default "main".
func WithQualifier(qualifier string) BuilderOption {
	return func(b *Builder) {
		if qualifier != "" {
			b.qualifier = qualifier
		}
	}
}

// WithStore shares an existing context store, typically across every
// concurrent run of an engine.
func WithStore(store *Store) BuilderOption {
	return func(b *Builder) {
		if store != nil {
			b.store = store
		}
	}
}

// WithRelationships overrides the join keys advertised to generation.
func WithRelationships(rels []Relationship) BuilderOption {
	return func(b *Builder) {
		b.relationships = rels
	}
}

// NewBuilder creates a builder over the given backend.
func NewBuilder(be backend.Backend, opts ...BuilderOption) *Builder {
	b := &Builder{
		backend:       be,
		store:         NewStore(DefaultTTL),
		qualifier:     "main",
		relationships: DefaultRelationships,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Qualifier returns the configured schema prefix.
func (b *Builder) Qualifier() string {
	return b.qualifier
}

// Build returns the context for the given table set, introspecting
// through the backend on a store miss. Any table that fails
// introspection fails the whole build with an IntrospectionError.
func (b *Builder) Build(ctx context.Context, tables []string) (*Context, error) {
	key := Key(b.qualifier, tables)
	if sc, ok := b.store.Get(key); ok {
		return sc, nil
	}

	introspected := make([]backend.Table, 0, len(tables))
	for _, name := range tables {
		t, err := b.backend.Introspect(ctx, name)
		if err != nil {
			return nil, &qferrors.IntrospectionError{Table: name, Err: err}
		}
		introspected = append(introspected, *t)
	}

	sc := NewContext(b.qualifier, introspected, b.relationships)
	b.store.Put(key, sc)
	return sc, nil
}
