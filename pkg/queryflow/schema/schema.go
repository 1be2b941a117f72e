// Package schema builds and caches the schema context that grounds
// SQL generation: which tables exist, which columns live where, and
// how tables join. The rendered context is embedded verbatim into
// generation prompts.
package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/randalmurphal/queryflow/pkg/queryflow/backend"
)

// Relationship records a join key between two tables, written as
// fully qualified column references ("orders.user_id" = "users.id").
type Relationship struct {
	Left  string
	Right string
}

// DefaultRelationships covers the demo warehouse join keys. Note that
// orders keys on order_id while users and products key on id.
var DefaultRelationships = []Relationship{
	{Left: "orders.user_id", Right: "users.id"},
	{Left: "order_items.order_id", Right: "orders.order_id"},
	{Left: "order_items.product_id", Right: "products.id"},
	{Left: "order_items.user_id", Right: "users.id"},
}

// Context is the schema context for one table set. It is immutable
// once built and safe to share across runs.
type Context struct {
	// Qualifier is the schema prefix tables must be referenced
	// through (e.g. "main" for SQLite, a dataset name elsewhere).
	Qualifier string

	// Tables holds the introspected tables in request order.
	Tables []backend.Table

	// Relationships lists the known join keys among Tables.
	Relationships []Relationship

	columns map[string][]string
}

// NewContext assembles a context from introspected tables. Only
// relationships whose tables are all present are kept.
func NewContext(qualifier string, tables []backend.Table, rels []Relationship) *Context {
	c := &Context{
		Qualifier: qualifier,
		Tables:    tables,
		columns:   make(map[string][]string),
	}

	present := make(map[string]bool, len(tables))
	for _, t := range tables {
		present[t.Name] = true
		for _, f := range t.Fields {
			c.columns[f.Name] = append(c.columns[f.Name], t.Name)
		}
	}

	for _, rel := range rels {
		if present[tableOf(rel.Left)] && present[tableOf(rel.Right)] {
			c.Relationships = append(c.Relationships, rel)
		}
	}
	return c
}

func tableOf(qualified string) string {
	if i := strings.IndexByte(qualified, '.'); i > 0 {
		return qualified[:i]
	}
	return qualified
}

// Owners returns every table that defines the column, sorted.
func (c *Context) Owners(column string) []string {
	owners := append([]string(nil), c.columns[column]...)
	sort.Strings(owners)
	return owners
}

// Owner resolves a column to its single owning table. It returns
// false when the column is unknown or owned by more than one table.
func (c *Context) Owner(column string) (string, bool) {
	owners := c.columns[column]
	if len(owners) != 1 {
		return "", false
	}
	return owners[0], true
}

// TableNames returns the context's table names in request order.
func (c *Context) TableNames() []string {
	names := make([]string, len(c.Tables))
	for i, t := range c.Tables {
		names[i] = t.Name
	}
	return names
}

// Render produces the prompt block describing the schema. The layout
// is stable so identical table sets render identical text.
func (c *Context) Render() string {
	var b strings.Builder

	b.WriteString("DATABASE SCHEMA\n")
	for _, t := range c.Tables {
		fmt.Fprintf(&b, "\nTable %s.%s:\n", c.Qualifier, t.Name)
		for _, f := range t.Fields {
			null := ""
			if !f.Nullable {
				null = " NOT NULL"
			}
			fmt.Fprintf(&b, "  %s %s%s\n", f.Name, f.Type, null)
		}
	}

	b.WriteString("\nCOLUMN LOCATIONS\n")
	cols := make([]string, 0, len(c.columns))
	for col := range c.columns {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	for _, col := range cols {
		owners := c.Owners(col)
		if len(owners) > 1 {
			fmt.Fprintf(&b, "  %s -> %s (ambiguous, qualify explicitly)\n",
				col, strings.Join(owners, ", "))
		} else {
			fmt.Fprintf(&b, "  %s -> %s\n", col, owners[0])
		}
	}

	if len(c.Relationships) > 0 {
		b.WriteString("\nRELATIONSHIPS\n")
		for _, rel := range c.Relationships {
			fmt.Fprintf(&b, "  %s = %s\n", rel.Left, rel.Right)
		}
	}
	return b.String()
}
