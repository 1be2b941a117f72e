package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/queryflow/pkg/queryflow"
	"github.com/randalmurphal/queryflow/pkg/queryflow/backend"
	"github.com/randalmurphal/queryflow/pkg/queryflow/config"
	"github.com/randalmurphal/queryflow/pkg/queryflow/history"
	"github.com/randalmurphal/queryflow/pkg/queryflow/viz"
)

// setFlags swaps the persistent flag values for one test.
func setFlags(t *testing.T, cfg, db string) {
	t.Helper()
	oldCfg, oldDB := cfgFile, dbOverride
	cfgFile, dbOverride = cfg, db
	t.Cleanup(func() { cfgFile, dbOverride = oldCfg, oldDB })
}

// clearEnv neutralizes the environment overrides for one test.
func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(config.EnvDatabase, "")
	t.Setenv(config.EnvModel, "")
}

func TestLoadSettings_Defaults(t *testing.T) {
	clearEnv(t)
	setFlags(t, "", "")

	settings, err := loadSettings()
	require.NoError(t, err)

	assert.Equal(t, "queryflow.db", settings.DatabasePath)
	assert.Equal(t, "main", settings.Qualifier)
	assert.Equal(t, 3, settings.MaxRetries)
}

func TestLoadSettings_FromFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := "database_path: warehouse.db\nmax_retries: 1\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	setFlags(t, path, "")

	settings, err := loadSettings()
	require.NoError(t, err)

	assert.Equal(t, "warehouse.db", settings.DatabasePath)
	assert.Equal(t, 1, settings.MaxRetries)
	// Keys the file does not set keep their defaults.
	assert.Equal(t, "main", settings.Qualifier)
}

func TestLoadSettings_FromFile_Invalid(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_retries: -2\n"), 0o644))
	setFlags(t, path, "")

	_, err := loadSettings()
	require.Error(t, err)
	assert.ErrorContains(t, err, "max_retries")
}

func TestLoadSettings_DBFlagWins(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvDatabase, "env.db")
	setFlags(t, "", "flag.db")

	settings, err := loadSettings()
	require.NoError(t, err)
	assert.Equal(t, "flag.db", settings.DatabasePath)
}

func TestReadQueries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.txt")
	content := "revenue by country\n\n# a comment\n  top products by price  \n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	queries, err := readQueries(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"revenue by country", "top products by price"}, queries)
}

func TestReadQueries_MissingFile(t *testing.T) {
	_, err := readQueries(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "read questions")
}

func TestFormatCell(t *testing.T) {
	assert.Equal(t, "NULL", formatCell(nil))
	assert.Equal(t, "bytes", formatCell([]byte("bytes")))
	assert.Equal(t, "12.5", formatCell(float64(12.5)))
	assert.Equal(t, "9", formatCell(int64(9)))
	assert.Equal(t, "Complete", formatCell("Complete"))
}

func TestTruncateCell(t *testing.T) {
	assert.Equal(t, "short", truncateCell("short"))
	assert.Equal(t, "two words", truncateCell("two\nwords"))

	long := truncateCell(string(bytes.Repeat([]byte("x"), 100)))
	assert.Len(t, long, maxCellWidth)
	assert.Contains(t, long, "...")
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "first", firstLine("first\nsecond"))
	assert.Equal(t, "only", firstLine("only"))
}

func TestChartLine(t *testing.T) {
	settings := config.Defaults()

	assert.Empty(t, chartLine(nil, settings))
	assert.Empty(t, chartLine(&viz.Spec{Kind: viz.KindTable}, settings))
	assert.Empty(t, chartLine(&viz.Spec{Kind: viz.KindSummary}, settings))

	spec := &viz.Spec{Kind: viz.KindBar, XField: "status", YField: "total", Width: 100, Height: 100}
	line := chartLine(spec, settings)
	assert.Contains(t, line, "bar: status vs total")
	// Settings dimensions win over the spec's.
	assert.Contains(t, line, "(700x400)")

	settings.ChartWidth = 0
	line = chartLine(spec, settings)
	assert.Contains(t, line, "(100x100)")
}

func TestRenderResult(t *testing.T) {
	result := &backend.Result{
		Columns: []string{"status", "total"},
		Rows: [][]any{
			{"Complete", int64(9)},
			{"Shipped", int64(2)},
		},
		Truncated: true,
	}

	var buf bytes.Buffer
	renderResult(&buf, result)

	out := buf.String()
	assert.Contains(t, out, "status")
	assert.Contains(t, out, "Complete")
	assert.Contains(t, out, "9")
	assert.Contains(t, out, "(result truncated")
}

func TestRenderHistory(t *testing.T) {
	records := []history.Record{
		{
			Query:     "orders by status",
			Category:  "sales",
			Status:    "succeeded",
			Attempts:  1,
			CacheHit:  true,
			Duration:  125 * time.Millisecond,
			CreatedAt: time.Date(2024, 8, 1, 12, 30, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	renderHistory(&buf, records)

	out := buf.String()
	assert.Contains(t, out, "QUERY")
	assert.Contains(t, out, "succeeded (cache)")
	assert.Contains(t, out, "orders by status")
	assert.Contains(t, out, "2024-08-01 12:30")
}

func TestRenderOutcome(t *testing.T) {
	outcome := &queryflow.Outcome{
		Query:    "orders by status",
		Category: queryflow.CategorySales,
		SQL:      "SELECT o.status, COUNT(*) AS total FROM main.orders AS o GROUP BY o.status",
		Result: &backend.Result{
			Columns: []string{"status", "total"},
			Rows:    [][]any{{"Complete", int64(9)}},
		},
		Chart:       &viz.Spec{Kind: viz.KindBar, XField: "status", YField: "total"},
		Suggestions: []string{"add a LIMIT to large scans"},
		Answer:      "Completed orders dominate.\n\n(1 row)",
		Attempts:    1,
		Duration:    80 * time.Millisecond,
	}

	var buf bytes.Buffer
	renderOutcome(&buf, outcome, config.Defaults())

	out := buf.String()
	assert.Contains(t, out, "Completed orders dominate.")
	assert.Contains(t, out, "SELECT o.status")
	assert.Contains(t, out, "Complete")
	assert.Contains(t, out, "bar: status vs total")
	assert.Contains(t, out, "add a LIMIT to large scans")
	assert.Contains(t, out, "category=sales attempts=1")
}

func TestRootCommand_Wiring(t *testing.T) {
	names := make(map[string]bool)
	for _, sub := range rootCmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"ask", "batch", "schema", "history", "initdb", "advise", "version"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}
