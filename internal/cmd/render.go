package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/randalmurphal/queryflow/pkg/queryflow"
	"github.com/randalmurphal/queryflow/pkg/queryflow/backend"
	"github.com/randalmurphal/queryflow/pkg/queryflow/config"
	"github.com/randalmurphal/queryflow/pkg/queryflow/history"
	"github.com/randalmurphal/queryflow/pkg/queryflow/viz"
)

const maxCellWidth = 60

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// renderOutcome prints one answered question: the answer, the SQL that
// produced it, the result table, then the advisory extras.
func renderOutcome(w io.Writer, outcome *queryflow.Outcome, settings config.Settings) {
	fmt.Fprintln(w, outcome.Answer)

	if outcome.SQL != "" {
		fmt.Fprintf(w, "\n%ssql%s %s\n", colorDim, colorReset, outcome.SQL)
	}
	if outcome.Result != nil && outcome.Result.RowCount() > 0 {
		fmt.Fprintln(w)
		renderResult(w, outcome.Result)
	}
	if line := chartLine(outcome.Chart, settings); line != "" {
		fmt.Fprintf(w, "\n%schart%s %s\n", colorDim, colorReset, line)
	}
	if len(outcome.Suggestions) > 0 {
		fmt.Fprintf(w, "\n%sadvice%s\n", colorDim, colorReset)
		for _, s := range outcome.Suggestions {
			fmt.Fprintf(w, "  - %s\n", s)
		}
	}

	fmt.Fprintf(w, "\n%scategory=%s attempts=%d duration=%s%s\n",
		colorDim, outcome.Category, outcome.Attempts, outcome.Duration.Round(time.Millisecond), colorReset)
}

// renderResult prints the rows as an aligned table.
func renderResult(w io.Writer, result *backend.Result) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(result.Columns, "\t"))

	separators := make([]string, len(result.Columns))
	for i, col := range result.Columns {
		separators[i] = strings.Repeat("-", len(col))
	}
	fmt.Fprintln(tw, strings.Join(separators, "\t"))

	for _, row := range result.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = truncateCell(formatCell(v))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	_ = tw.Flush()

	if result.Truncated {
		fmt.Fprintf(w, "%s(result truncated at the row cap)%s\n", colorDim, colorReset)
	}
}

// renderHistory prints run records as an aligned table, newest first.
func renderHistory(w io.Writer, records []history.Record) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tSTATUS\tCATEGORY\tTRIES\tTIME\tQUERY")
	for _, rec := range records {
		status := rec.Status
		if rec.CacheHit {
			status += " (cache)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			rec.CreatedAt.Format("2006-01-02 15:04"),
			status,
			rec.Category,
			rec.Attempts,
			rec.Duration.Round(time.Millisecond),
			truncateCell(rec.Query),
		)
	}
	_ = tw.Flush()
}

// chartLine summarizes a chart spec in one line. Table and summary
// specs render nothing; the table above already is the visualization.
func chartLine(spec *viz.Spec, settings config.Settings) string {
	if spec == nil || spec.Kind == viz.KindTable || spec.Kind == viz.KindSummary {
		return ""
	}
	width, height := spec.Width, spec.Height
	if settings.ChartWidth > 0 && settings.ChartHeight > 0 {
		width, height = settings.ChartWidth, settings.ChartHeight
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s", spec.Kind)
	if spec.XField != "" && spec.YField != "" {
		fmt.Fprintf(&b, ": %s vs %s", spec.XField, spec.YField)
	}
	fmt.Fprintf(&b, " (%dx%d)", width, height)
	if spec.Note != "" {
		fmt.Fprintf(&b, " - %s", spec.Note)
	}
	return b.String()
}

func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(val)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func truncateCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= maxCellWidth {
		return s
	}
	return s[:maxCellWidth-3] + "..."
}

// firstLine returns s up to its first newline.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
