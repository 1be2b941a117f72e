package prompt

import (
	"fmt"
	"strings"

	"github.com/randalmurphal/queryflow/pkg/queryflow/backend"
)

// insightSampleRows bounds how much of a result the insight prompt
// quotes. Large results are sampled from the top.
const insightSampleRows = 10

// Classification returns the prompt pair for query classification.
func Classification(query string) (system, user string) {
	return classifySystem, query
}

// SQLInput carries everything the generation prompt embeds.
type SQLInput struct {
	// Query is the original natural-language question.
	Query string
	// Category selects the few-shot example set.
	Category string
	// Qualifier is the schema prefix tables must carry.
	Qualifier string
	// Schema is the rendered schema context block.
	Schema string
	// PriorErrors, when non-empty, adds the recovery section so the
	// next candidate steers away from earlier failures.
	PriorErrors []string
}

// SQL builds the generation prompt pair.
func SQL(in SQLInput) (system, user string, err error) {
	system, err = Expand(sqlSystem, map[string]any{
		"schema":    in.Schema,
		"qualifier": in.Qualifier,
		"examples":  renderExamples(examplesFor(in.Category), in.Qualifier),
	})
	if err != nil {
		return "", "", err
	}

	user = in.Query
	if len(in.PriorErrors) > 0 {
		user += "\n\n" + RecoverySection(in.PriorErrors)
	}
	return system, user, nil
}

// RecoverySection renders the numbered trail of earlier failures for
// a regeneration attempt. It returns "" for an empty trail.
func RecoverySection(priorErrors []string) string {
	if len(priorErrors) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("PREVIOUS ERRORS TO AVOID\n")
	b.WriteString("Earlier attempts at this question failed. Write different SQL that avoids every failure below.\n")
	for i, msg := range priorErrors {
		fmt.Fprintf(&b, "%d. %s\n", i+1, msg)
	}
	return strings.TrimRight(b.String(), "\n")
}

// InsightInput carries the material the insight prompt quotes.
type InsightInput struct {
	Query  string
	SQL    string
	Result *backend.Result
}

// Insight builds the prompt pair for analyst commentary on a result.
func Insight(in InsightInput) (system, user string) {
	note := ""
	if in.Result != nil && in.Result.Truncated {
		note = ", truncated"
	}
	user = fmt.Sprintf("Question: %s\n\nSQL:\n%s\n\nResult (%d rows%s):\n%s",
		in.Query, in.SQL, in.Result.RowCount(), note,
		RenderResult(in.Result, insightSampleRows))
	return insightSystem, user
}

// RenderResult renders up to n rows of a result as pipe-separated
// text for prompt embedding.
func RenderResult(result *backend.Result, n int) string {
	if result == nil || len(result.Columns) == 0 {
		return "(no result)"
	}

	var b strings.Builder
	b.WriteString(strings.Join(result.Columns, " | "))
	for _, row := range result.Sample(n) {
		cells := make([]string, len(row))
		for i, v := range row {
			if v == nil {
				cells[i] = "NULL"
				continue
			}
			cells[i] = fmt.Sprintf("%v", v)
		}
		b.WriteString("\n" + strings.Join(cells, " | "))
	}
	if result.RowCount() > n {
		fmt.Fprintf(&b, "\n... (%d more rows)", result.RowCount()-n)
	}
	return b.String()
}

// StripFences removes a wrapping markdown code fence from model
// output, tolerating a language tag on the opening fence. Text
// without fences is returned trimmed.
func StripFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if strings.HasPrefix(trimmed, "```") {
		if i := strings.IndexByte(trimmed, '\n'); i >= 0 {
			trimmed = trimmed[i+1:]
		} else {
			trimmed = strings.TrimPrefix(trimmed, "```")
		}
		trimmed = strings.TrimSpace(trimmed)
		trimmed = strings.TrimSuffix(trimmed, "```")
	}
	return strings.TrimSpace(trimmed)
}

func renderExamples(examples []Example, qualifier string) string {
	if len(examples) == 0 {
		return ""
	}

	vars := map[string]any{"qualifier": qualifier}
	var b strings.Builder
	b.WriteString("EXAMPLE QUERIES")
	for _, ex := range examples {
		fmt.Fprintf(&b, "\n\nQ: %s\nSQL:\n%s", ex.Question, MustExpand(ex.SQL, vars))
	}
	return b.String()
}
