package prompt

import (
	"strings"
	"testing"

	"github.com/randalmurphal/queryflow/pkg/queryflow/backend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestExpand tests ${var} placeholder substitution.
func TestExpand(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		vars     map[string]any
		expected string
	}{
		{
			name:     "simple variable",
			input:    "schema ${qualifier}",
			vars:     map[string]any{"qualifier": "main"},
			expected: "schema main",
		},
		{
			name:     "multiple variables",
			input:    "${a}.${b}",
			vars:     map[string]any{"a": "main", "b": "orders"},
			expected: "main.orders",
		},
		{
			name:     "numeric value",
			input:    "limit ${n}",
			vars:     map[string]any{"n": 100},
			expected: "limit 100",
		},
		{
			name:     "no placeholders",
			input:    "plain text with $100 amounts",
			vars:     nil,
			expected: "plain text with $100 amounts",
		},
		{
			name:     "empty string",
			input:    "",
			vars:     map[string]any{"a": 1},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Expand(tt.input, tt.vars)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

// TestExpand_Undefined tests that unresolved placeholders error with
// every missing name.
func TestExpand_Undefined(t *testing.T) {
	_, err := Expand("${a} ${b} ${c}", map[string]any{"b": 2})
	require.Error(t, err)

	var undefErr *UndefinedVariableError
	require.ErrorAs(t, err, &undefErr)
	assert.Equal(t, []string{"a", "c"}, undefErr.Names)
	assert.Contains(t, err.Error(), "undefined variables: a, c")

	_, err = Expand("${only}", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undefined variable: only")
}

// TestMustExpand_Panics tests the panic path for fixed templates.
func TestMustExpand_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustExpand("${missing}", nil)
	})
	assert.Equal(t, "ok", MustExpand("ok", nil))
}

// TestClassification tests the classification prompt contract.
func TestClassification(t *testing.T) {
	system, user := Classification("how many orders last month")

	assert.Equal(t, "how many orders last month", user)
	for _, category := range []string{"customer", "product", "sales", "geographic", "general"} {
		assert.Contains(t, system, category)
	}
	assert.Contains(t, system, `"confidence"`)
	assert.Contains(t, system, "JSON")
}

// TestSQL tests generation prompt assembly.
func TestSQL(t *testing.T) {
	system, user, err := SQL(SQLInput{
		Query:     "revenue by country",
		Category:  "geographic",
		Qualifier: "main",
		Schema:    "DATABASE SCHEMA\n\nTable main.users:\n  id INTEGER NOT NULL",
	})
	require.NoError(t, err)

	assert.Contains(t, system, "DATABASE SCHEMA")
	assert.Contains(t, system, "main.orders")
	assert.Contains(t, system, "EXAMPLE QUERIES")
	assert.Contains(t, system, "FROM main.order_items AS oi")
	assert.NotContains(t, system, "${")

	assert.Equal(t, "revenue by country", user)
}

// TestSQL_RecoveryTrail tests that prior errors reach the user prompt
// as a numbered section.
func TestSQL_RecoveryTrail(t *testing.T) {
	_, user, err := SQL(SQLInput{
		Query:     "revenue by country",
		Category:  "geographic",
		Qualifier: "main",
		Schema:    "schema",
		PriorErrors: []string{
			"unknown-column: no such column: revenue",
			"syntax: incomplete input",
		},
	})
	require.NoError(t, err)

	assert.Contains(t, user, "PREVIOUS ERRORS TO AVOID")
	assert.Contains(t, user, "1. unknown-column: no such column: revenue")
	assert.Contains(t, user, "2. syntax: incomplete input")
	assert.True(t, strings.HasPrefix(user, "revenue by country"))
}

// TestSQL_QualifierBinding tests that few-shot SQL picks up a custom
// qualifier.
func TestSQL_QualifierBinding(t *testing.T) {
	system, _, err := SQL(SQLInput{
		Query:     "top products",
		Category:  "product",
		Qualifier: "analytics",
		Schema:    "schema",
	})
	require.NoError(t, err)

	assert.Contains(t, system, "analytics.products")
	assert.NotContains(t, system, "${qualifier}")
}

// TestSQL_GeneralCategoryMixesExamples tests the general fallback set.
func TestSQL_GeneralCategoryMixesExamples(t *testing.T) {
	system, _, err := SQL(SQLInput{
		Query:     "anything",
		Category:  "general",
		Qualifier: "main",
		Schema:    "schema",
	})
	require.NoError(t, err)

	// One example from each specialized category
	assert.Contains(t, system, "traffic_source")
	assert.Contains(t, system, "avg_price")
	assert.Contains(t, system, "strftime")
	assert.Contains(t, system, "u.country")
}

// TestRecoverySection tests trail rendering.
func TestRecoverySection(t *testing.T) {
	assert.Equal(t, "", RecoverySection(nil))

	section := RecoverySection([]string{"first failure", "second failure"})
	assert.Contains(t, section, "1. first failure")
	assert.Contains(t, section, "2. second failure")
	assert.False(t, strings.HasSuffix(section, "\n"))
}

// TestInsight tests insight prompt assembly.
func TestInsight(t *testing.T) {
	result := &backend.Result{
		Columns: []string{"country", "revenue"},
		Rows: [][]any{
			{"United States", float64(224.0)},
			{"Germany", float64(378.65)},
		},
	}

	system, user := Insight(InsightInput{
		Query:  "revenue by country",
		SQL:    "SELECT u.country, SUM(oi.sale_price) FROM main.order_items AS oi JOIN main.users AS u ON oi.user_id = u.id GROUP BY u.country",
		Result: result,
	})

	assert.Contains(t, system, "insights")
	assert.Contains(t, user, "Question: revenue by country")
	assert.Contains(t, user, "Result (2 rows):")
	assert.Contains(t, user, "Germany | 378.65")
}

// TestInsight_TruncatedNote tests the truncation marker.
func TestInsight_TruncatedNote(t *testing.T) {
	result := &backend.Result{
		Columns:   []string{"n"},
		Rows:      [][]any{{int64(1)}},
		Truncated: true,
	}

	_, user := Insight(InsightInput{Query: "q", SQL: "SELECT 1", Result: result})
	assert.Contains(t, user, "rows, truncated")
}

// TestRenderResult tests tabular sampling for prompts.
func TestRenderResult(t *testing.T) {
	result := &backend.Result{
		Columns: []string{"name", "price"},
		Rows: [][]any{
			{"Wool Beanie", float64(24.99)},
			{nil, float64(10)},
			{"Canvas Tote Bag", float64(39.95)},
		},
	}

	out := RenderResult(result, 2)
	assert.Contains(t, out, "name | price")
	assert.Contains(t, out, "Wool Beanie | 24.99")
	assert.Contains(t, out, "NULL | 10")
	assert.Contains(t, out, "... (1 more rows)")
	assert.NotContains(t, out, "Canvas Tote Bag")

	assert.Equal(t, "(no result)", RenderResult(nil, 5))
}

// TestStripFences tests fence removal from model output.
func TestStripFences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "no fence",
			input:    "SELECT 1",
			expected: "SELECT 1",
		},
		{
			name:     "sql fence",
			input:    "```sql\nSELECT COUNT(*) FROM main.orders\n```",
			expected: "SELECT COUNT(*) FROM main.orders",
		},
		{
			name:     "plain fence",
			input:    "```\nSELECT 1\n```",
			expected: "SELECT 1",
		},
		{
			name:     "single line fence",
			input:    "```SELECT 1```",
			expected: "SELECT 1",
		},
		{
			name:     "surrounding whitespace",
			input:    "  \n```sql\nSELECT 1\n```\n  ",
			expected: "SELECT 1",
		},
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripFences(tt.input))
		})
	}
}
