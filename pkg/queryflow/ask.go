package queryflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/randalmurphal/queryflow/pkg/queryflow/backend"
	qferrors "github.com/randalmurphal/queryflow/pkg/queryflow/errors"
	"github.com/randalmurphal/queryflow/pkg/queryflow/history"
	"github.com/randalmurphal/queryflow/pkg/queryflow/llm"
	"github.com/randalmurphal/queryflow/pkg/queryflow/observability"
	"github.com/randalmurphal/queryflow/pkg/queryflow/viz"
)

// Outcome is the caller-facing product of one Ask.
//
// On failure the outcome still carries everything the run produced
// before aborting: the attempted SQL, the prior-error trail, and the
// conversation so far.
type Outcome struct {
	RunID        string          `json:"run_id"`
	Query        string          `json:"query"`
	Category     Category        `json:"category"`
	SQL          string          `json:"sql,omitempty"`
	Result       *backend.Result `json:"result,omitempty"`
	Insights     string          `json:"insights,omitempty"`
	Chart        *viz.Spec       `json:"chart,omitempty"`
	Suggestions  []string        `json:"suggestions,omitempty"`
	Answer       string          `json:"answer"`
	History      []llm.Message   `json:"history,omitempty"`
	Status       Status          `json:"status"`
	CacheHit     bool            `json:"cache_hit"`
	Attempts     int             `json:"attempts"`
	PriorErrors  []string        `json:"prior_errors,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	Duration     time.Duration   `json:"duration"`
}

// Ask answers one natural-language question.
//
// Prior conversation turns may be passed for threading; the outcome's
// History carries them plus the new question and answer, ready to pass
// to the next Ask.
//
// The whole call is bounded by the engine's query timeout. On failure
// the returned error is a *errors.RunError for domain failures
// (introspection, validation, exhausted retries) and the raw
// mechanical error otherwise (cancellation, iteration limit); the
// outcome is returned in both cases.
func (e *Engine) Ask(ctx context.Context, query string, priorTurns ...llm.Message) (*Outcome, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("queryflow: query cannot be empty")
	}

	runCtx, cancel := context.WithTimeout(ctx, e.queryTimeout)
	defer cancel()

	runID := uuid.New().String()
	rc := NewContext(runCtx,
		WithContextLogger(e.logger),
		WithContextRunID(runID))

	initial := State{Query: query, Status: StatusPending}
	if len(priorTurns) > 0 {
		initial.History = append([]llm.Message(nil), priorTurns...)
	}
	initial = initial.appendHistory(llm.Message{Role: llm.RoleUser, Content: query})

	start := time.Now()
	final, runErr := e.pipeline.Run(rc, initial, e.runOptions()...)
	elapsed := time.Since(start)

	outcome := buildOutcome(runID, final, elapsed)

	// Recording survives run-context expiry: the save runs under the
	// caller's context minus its cancellation.
	e.recordHistory(context.WithoutCancel(ctx), outcome)

	if runErr != nil {
		return outcome, asRunError(runErr, final)
	}
	return outcome, nil
}

// runOptions assembles the per-run options every Ask uses.
func (e *Engine) runOptions() []RunOption {
	base := []RunOption{
		WithObservabilityLogger(e.logger),
		WithMetricsRecorder(e.metrics),
	}
	return append(base, e.runOpts...)
}

// asRunError converts a pipeline failure into the error surfaced to
// callers. Domain failures arrive wrapped in a StageError and become a
// structured *RunError carrying the kind and the trail. Mechanical
// failures (cancellation, iteration limit, panic, routing) pass
// through untouched.
func asRunError(err error, final State) error {
	var stageErr *StageError
	if !errors.As(err, &stageErr) {
		return err
	}

	return &qferrors.RunError{
		Kind:        qferrors.KindOf(err),
		Message:     stageErr.Err.Error(),
		PriorErrors: final.PriorErrors,
		Err:         err,
	}
}

// buildOutcome projects the final state into the caller-facing shape
// and threads the answer onto the conversation.
func buildOutcome(runID string, final State, elapsed time.Duration) *Outcome {
	answer := buildAnswer(final)

	return &Outcome{
		RunID:        runID,
		Query:        final.Query,
		Category:     final.Classification.Category,
		SQL:          final.SQL,
		Result:       final.Result,
		Insights:     final.Insights,
		Chart:        final.Chart,
		Suggestions:  final.Suggestions,
		Answer:       answer,
		History:      final.appendHistory(llm.Message{Role: llm.RoleAssistant, Content: answer}).History,
		Status:       final.Status,
		CacheHit:     final.CacheHit,
		Attempts:     final.Attempts(),
		PriorErrors:  final.PriorErrors,
		ErrorMessage: final.ErrorMessage,
		Duration:     elapsed,
	}
}

// buildAnswer renders the conversational reply for a finished run.
func buildAnswer(final State) string {
	if final.Status != StatusSucceeded {
		msg := final.ErrorMessage
		if msg == "" {
			msg = "the run did not complete"
		}
		answer := "I could not answer that: " + msg
		if n := len(final.PriorErrors); n > 1 {
			answer += fmt.Sprintf(" (%d attempts failed)", n)
		}
		return answer
	}

	var b strings.Builder
	if final.Insights != "" {
		b.WriteString(final.Insights)
		b.WriteString("\n\n")
	}

	rows := final.Result.RowCount()
	if rows == 1 {
		b.WriteString("(1 row")
	} else {
		fmt.Fprintf(&b, "(%d rows", rows)
	}
	if final.CacheHit {
		b.WriteString(", served from cache")
	}
	b.WriteString(")")
	return b.String()
}

// recordHistory saves one run record. Failures degrade to a log line;
// history is an audit trail, not a dependency of answering.
func (e *Engine) recordHistory(ctx context.Context, out *Outcome) {
	if e.history == nil {
		return
	}

	rec := history.Record{
		RunID:    out.RunID,
		Query:    out.Query,
		Category: string(out.Category),
		SQL:      out.SQL,
		Status:   string(out.Status),
		Attempts: out.Attempts,
		CacheHit: out.CacheHit,
		Duration: out.Duration,
		Error:    out.ErrorMessage,
	}
	if err := e.history.Save(ctx, rec); err != nil {
		observability.LogHistoryError(e.logger, out.RunID, err)
	}
}
