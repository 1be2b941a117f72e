package viz_test

import (
	"fmt"
	"testing"

	"github.com/randalmurphal/queryflow/pkg/queryflow/backend"
	"github.com/randalmurphal/queryflow/pkg/queryflow/viz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelect_Summary(t *testing.T) {
	result := &backend.Result{
		Columns: []string{"total_revenue"},
		Rows:    [][]any{{float64(12345.67)}},
	}

	spec := viz.Select(result, "total revenue")
	assert.Equal(t, viz.KindSummary, spec.Kind)
	assert.Equal(t, "total_revenue", spec.YField)
	assert.Equal(t, "total revenue", spec.Title)
	assert.Equal(t, viz.DefaultWidth, spec.Width)
	assert.Equal(t, viz.DefaultHeight, spec.Height)
}

func TestSelect_SummaryMultiColumn(t *testing.T) {
	result := &backend.Result{
		Columns: []string{"orders", "revenue"},
		Rows:    [][]any{{int64(15), float64(2210.4)}},
	}

	spec := viz.Select(result, "")
	assert.Equal(t, viz.KindSummary, spec.Kind)
}

func TestSelect_Bar(t *testing.T) {
	result := &backend.Result{
		Columns: []string{"category", "revenue"},
		Rows: [][]any{
			{"Footwear", float64(500)},
			{"Outerwear", float64(420)},
			{"Accessories", float64(130)},
		},
	}

	spec := viz.Select(result, "revenue by category")
	assert.Equal(t, viz.KindBar, spec.Kind)
	assert.Equal(t, "category", spec.XField)
	assert.Equal(t, "revenue", spec.YField)
}

func TestSelect_BarTooManyCategories(t *testing.T) {
	result := &backend.Result{Columns: []string{"sku", "revenue"}}
	for i := 0; i < 25; i++ {
		result.Rows = append(result.Rows, []any{fmt.Sprintf("SKU-%d", i), float64(i)})
	}

	spec := viz.Select(result, "")
	assert.Equal(t, viz.KindTable, spec.Kind)
}

func TestSelect_Line(t *testing.T) {
	result := &backend.Result{
		Columns: []string{"month", "revenue"},
		Rows: [][]any{
			{"2024-05", float64(500)},
			{"2024-06", float64(620)},
			{"2024-07", float64(580)},
		},
	}

	spec := viz.Select(result, "monthly revenue")
	assert.Equal(t, viz.KindLine, spec.Kind)
	assert.Equal(t, "month", spec.XField)
	assert.Equal(t, "revenue", spec.YField)
}

func TestSelect_LineFromNumericYear(t *testing.T) {
	result := &backend.Result{
		Columns: []string{"year", "orders"},
		Rows: [][]any{
			{int64(2022), int64(140)},
			{int64(2023), int64(180)},
			{int64(2024), int64(210)},
		},
	}

	// Numeric values with a calendar name still chart as a series
	spec := viz.Select(result, "")
	assert.Equal(t, viz.KindLine, spec.Kind)
}

func TestSelect_Scatter(t *testing.T) {
	result := &backend.Result{
		Columns: []string{"retail_price", "units_sold"},
		Rows: [][]any{
			{float64(129.99), int64(3)},
			{float64(39.95), int64(9)},
			{float64(74.00), int64(5)},
		},
	}

	spec := viz.Select(result, "")
	assert.Equal(t, viz.KindScatter, spec.Kind)
	assert.Equal(t, "retail_price", spec.XField)
	assert.Equal(t, "units_sold", spec.YField)
}

func TestSelect_TableFallback(t *testing.T) {
	// Three columns never match a two-dimensional rule
	result := &backend.Result{
		Columns: []string{"name", "brand", "category"},
		Rows: [][]any{
			{"Trail Running Shoes", "Peakline", "Footwear"},
			{"Canvas Tote Bag", "Harbor & Co", "Accessories"},
		},
	}

	spec := viz.Select(result, "products")
	assert.Equal(t, viz.KindTable, spec.Kind)
	assert.Empty(t, spec.XField)
}

func TestSelect_NonNumericY(t *testing.T) {
	result := &backend.Result{
		Columns: []string{"category", "top_product"},
		Rows: [][]any{
			{"Footwear", "Trail Running Shoes"},
			{"Accessories", "Canvas Tote Bag"},
		},
	}

	spec := viz.Select(result, "")
	assert.Equal(t, viz.KindTable, spec.Kind)
}

func TestSelect_EmptyResult(t *testing.T) {
	spec := viz.Select(&backend.Result{Columns: []string{"a"}}, "empty")
	require.NotNil(t, spec)
	assert.Equal(t, viz.KindTable, spec.Kind)
	assert.Equal(t, "query returned no rows", spec.Note)

	spec = viz.Select(nil, "nil")
	require.NotNil(t, spec)
	assert.Equal(t, viz.KindTable, spec.Kind)
}

func TestSelect_TruncatedNote(t *testing.T) {
	result := &backend.Result{
		Columns:   []string{"category", "revenue"},
		Rows:      [][]any{{"Footwear", float64(1)}, {"Active", float64(2)}},
		Truncated: true,
	}

	spec := viz.Select(result, "")
	assert.Equal(t, viz.KindBar, spec.Kind)
	assert.Equal(t, "result truncated by row limit", spec.Note)
}

func TestSelect_NullsStayCategorical(t *testing.T) {
	result := &backend.Result{
		Columns: []string{"state", "orders"},
		Rows: [][]any{
			{"Oregon", int64(3)},
			{nil, int64(1)},
			{"Bavaria", int64(2)},
		},
	}

	spec := viz.Select(result, "")
	assert.Equal(t, viz.KindBar, spec.Kind)
}
