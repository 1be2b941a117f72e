package queryflow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/randalmurphal/queryflow/pkg/queryflow/backend"
	"github.com/randalmurphal/queryflow/pkg/queryflow/llm"
	"github.com/randalmurphal/queryflow/pkg/queryflow/prompt"
	"github.com/randalmurphal/queryflow/pkg/queryflow/viz"
)

// analyzeStage derives insights and picks a visualization for the
// result. Both are best-effort decorations: the run already succeeded,
// so a failed insight call degrades to a row-count note and never
// fails the run.
func (e *Engine) analyzeStage(ctx Context, state State) (State, error) {
	state.Chart = viz.Select(state.Result, state.Query)

	insights, err := e.deriveInsights(ctx, state)
	if err != nil {
		ctx.Logger().Warn("insight derivation failed, using summary note", "error", err)
		insights = fallbackInsights(state.Result)
	}
	state.Insights = insights

	return state, nil
}

// deriveInsights asks the model for analyst commentary on the result.
func (e *Engine) deriveInsights(ctx Context, state State) (string, error) {
	if state.Result == nil {
		return "", errors.New("no result to analyze")
	}

	system, user := prompt.Insight(prompt.InsightInput{
		Query:  state.Query,
		SQL:    state.SQL,
		Result: state.Result,
	})
	resp, err := e.llm.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: system,
		Messages:     llm.UserMessage(user),
		Temperature:  e.temperature,
	})
	if err != nil {
		return "", err
	}

	insights := strings.TrimSpace(resp.Content)
	if insights == "" {
		return "", errors.New("model returned empty insights")
	}
	return insights, nil
}

// fallbackInsights summarizes the result shape when commentary is
// unavailable.
func fallbackInsights(result *backend.Result) string {
	if result == nil {
		return "The query produced no result."
	}
	note := fmt.Sprintf("The query returned %d rows.", result.RowCount())
	if result.RowCount() == 1 {
		note = "The query returned 1 row."
	}
	if result.Truncated {
		note += " The result was truncated by the row limit."
	}
	return note
}
