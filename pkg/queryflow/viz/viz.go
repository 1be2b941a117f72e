// Package viz selects a declarative chart spec for a query result.
// Selection is rule-based over the result shape; no rendering happens
// here. Downstream consumers (CLI, web frontends) interpret the spec.
package viz

import (
	"strings"
	"time"

	"github.com/randalmurphal/queryflow/pkg/queryflow/backend"
)

// Kind identifies a chart family.
type Kind string

const (
	// KindSummary is a single-value summary card.
	KindSummary Kind = "summary"
	// KindBar is a categorical breakdown.
	KindBar Kind = "bar"
	// KindLine is a time-ordered series.
	KindLine Kind = "line"
	// KindScatter relates two numeric dimensions.
	KindScatter Kind = "scatter"
	// KindTable is the plain tabular fallback.
	KindTable Kind = "table"
)

// Default canvas size for rendered charts.
const (
	DefaultWidth  = 700
	DefaultHeight = 400
)

// maxBarCategories bounds how many rows still count as a "small"
// categorical breakdown. Above it a bar chart stops being readable
// and the selector falls back to a table.
const maxBarCategories = 20

// Spec describes the chart to draw for a result.
type Spec struct {
	Kind   Kind   `json:"kind"`
	Title  string `json:"title,omitempty"`
	XField string `json:"x_field,omitempty"`
	YField string `json:"y_field,omitempty"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Note   string `json:"note,omitempty"`
}

// Select picks a chart spec for the result. It always returns a spec;
// when no rule matches, the spec is a table. Select never fails.
func Select(result *backend.Result, title string) *Spec {
	spec := &Spec{
		Kind:   KindTable,
		Title:  title,
		Width:  DefaultWidth,
		Height: DefaultHeight,
	}
	if result == nil || len(result.Rows) == 0 {
		spec.Note = "query returned no rows"
		return spec
	}
	if result.Truncated {
		spec.Note = "result truncated by row limit"
	}

	// A single row reads best as a summary card regardless of width.
	if len(result.Rows) == 1 {
		spec.Kind = KindSummary
		if len(result.Columns) > 0 {
			spec.YField = result.Columns[0]
		}
		return spec
	}

	if len(result.Columns) != 2 {
		return spec
	}

	x := classifyColumn(result.Columns[0], columnValues(result, 0))
	y := classifyColumn(result.Columns[1], columnValues(result, 1))
	if y != kindNumeric {
		return spec
	}

	switch {
	case x == kindTemporal:
		spec.Kind = KindLine
	case x == kindNumeric:
		spec.Kind = KindScatter
	case x == kindCategorical && len(result.Rows) <= maxBarCategories:
		spec.Kind = KindBar
	default:
		return spec
	}
	spec.XField = result.Columns[0]
	spec.YField = result.Columns[1]
	return spec
}

type columnKind int

const (
	kindCategorical columnKind = iota
	kindNumeric
	kindTemporal
)

// sampleSize bounds how many values column classification inspects.
const sampleSize = 50

func columnValues(result *backend.Result, col int) []any {
	n := len(result.Rows)
	if n > sampleSize {
		n = sampleSize
	}
	values := make([]any, 0, n)
	for _, row := range result.Rows[:n] {
		if col < len(row) {
			values = append(values, row[col])
		}
	}
	return values
}

var temporalLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02",
	"2006-01",
}

var temporalNameHints = []string{"date", "month", "year", "week", "day", "time", "_at"}

// classifyColumn buckets a column as numeric, temporal, or
// categorical from its sampled values plus its name. Numeric columns
// whose name suggests a calendar unit (e.g. "year") classify as
// temporal so series over them draw as lines.
func classifyColumn(name string, values []any) columnKind {
	numeric, temporal, other := 0, 0, 0

	for _, v := range values {
		switch val := v.(type) {
		case nil:
			continue
		case int, int32, int64, float32, float64:
			numeric++
		case time.Time:
			temporal++
		case string:
			if parsesAsTime(val) {
				temporal++
			} else {
				other++
			}
		default:
			other++
		}
	}

	seen := numeric + temporal + other
	switch {
	case seen == 0:
		return kindCategorical
	case temporal == seen:
		return kindTemporal
	case numeric == seen:
		if temporalName(name) {
			return kindTemporal
		}
		return kindNumeric
	default:
		return kindCategorical
	}
}

func parsesAsTime(s string) bool {
	for _, layout := range temporalLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func temporalName(name string) bool {
	lower := strings.ToLower(name)
	for _, hint := range temporalNameHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}
