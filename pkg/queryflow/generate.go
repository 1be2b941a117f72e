package queryflow

import (
	"errors"

	qferrors "github.com/randalmurphal/queryflow/pkg/queryflow/errors"
	"github.com/randalmurphal/queryflow/pkg/queryflow/llm"
	"github.com/randalmurphal/queryflow/pkg/queryflow/observability"
	"github.com/randalmurphal/queryflow/pkg/queryflow/prompt"
)

// generateStage produces a SQL candidate for the question. On the
// first pass the prompt carries only the schema and examples; inside
// the recovery loop it also carries the full prior-error trail so the
// model steers away from earlier failures.
func (e *Engine) generateStage(ctx Context, state State) (State, error) {
	if state.schemaCtx == nil {
		return state, &qferrors.GenerationError{
			Attempt: state.generations + 1,
			Err:     errors.New("no schema context: schema stage has not run"),
		}
	}

	system, user, err := prompt.SQL(prompt.SQLInput{
		Query:       state.Query,
		Category:    string(state.Classification.Category),
		Qualifier:   e.qualifier,
		Schema:      state.schemaCtx.Render(),
		PriorErrors: state.PriorErrors,
	})
	if err != nil {
		return state, &qferrors.GenerationError{Attempt: state.generations + 1, Err: err}
	}

	state.generations++
	resp, err := e.llm.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: system,
		Messages:     llm.UserMessage(user),
		Temperature:  e.temperature,
	})
	if err != nil {
		return e.generationFailed(ctx, state, err)
	}

	sql := prompt.StripFences(resp.Content)
	if sql == "" {
		return e.generationFailed(ctx, state, errors.New("model returned empty SQL"))
	}

	state.SQL = sql
	state.Status = StatusPending
	state.ErrorMessage = ""
	return state, nil
}

// generationFailed applies the per-attempt failure policy. The initial
// generation has no fallback, so its failure aborts the run. A failure
// inside the recovery loop consumes a retry like an execution failure
// would: the trail grows first, then the budget decides between
// another attempt and terminal.
func (e *Engine) generationFailed(ctx Context, state State, cause error) (State, error) {
	gerr := &qferrors.GenerationError{Attempt: state.generations, Err: cause}

	if len(state.PriorErrors) == 0 && state.RetryCount == 0 {
		state.Status = StatusTerminal
		state.FailureKind = qferrors.KindGeneration
		state.ErrorMessage = gerr.Error()
		return state, gerr
	}

	state = state.appendPriorError(gerr.Error())
	if state.RetryCount < e.maxRetries {
		state.RetryCount++
		state.Status = StatusRecoverable
		observability.LogRetry(ctx.Logger(), state.RetryCount, qferrors.KindGeneration.String(), cause)
		e.metrics.RecordRetry(ctx, qferrors.KindGeneration.String())
		return state, nil
	}

	state.Status = StatusTerminal
	state.FailureKind = qferrors.KindGeneration
	return state, gerr
}

// routeAfterGenerate sends a recoverable generation failure back into
// another attempt; everything else proceeds to validation.
func routeAfterGenerate(_ Context, state State) string {
	if state.Status == StatusRecoverable {
		return StageGenerate
	}
	return StageValidate
}
