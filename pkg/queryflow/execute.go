package queryflow

import (
	"errors"

	"github.com/randalmurphal/queryflow/pkg/queryflow/cache"
	qferrors "github.com/randalmurphal/queryflow/pkg/queryflow/errors"
	"github.com/randalmurphal/queryflow/pkg/queryflow/observability"
)

// lookupStage checks the result cache right after classification, when
// the fingerprint first becomes computable. A hit skips generation and
// execution entirely and jumps straight to analysis.
//
// Cache trouble never fails the run: a damaged entry is evicted and
// treated as a miss.
func (e *Engine) lookupStage(ctx Context, state State) (State, error) {
	if e.cache == nil {
		return state, nil
	}

	key := cache.Fingerprint(state.Query, string(state.Classification.Category))
	entry, hit := e.cache.Get(key)
	observability.LogCacheLookup(ctx.Logger(), key, hit)
	e.metrics.RecordCacheLookup(ctx, hit)
	if !hit {
		return state, nil
	}

	if entry.Payload.Result == nil {
		cerr := &qferrors.CacheError{Op: "lookup", Err: errors.New("entry has no result payload")}
		observability.LogCacheError(ctx.Logger(), "lookup", cerr)
		e.cache.Delete(key)
		return state, nil
	}

	return serveFromCache(state, entry), nil
}

// executeStage runs the validated SQL through the backend. Before
// executing it re-checks the cache: a concurrent run for the same
// question may have finished while this one was generating, and the
// backend round-trip costs more than the second lookup.
//
// On failure the trail grows first, then the retry budget decides
// between recovery and terminal. That order keeps the budget-exhausting
// failure visible in the trail.
func (e *Engine) executeStage(ctx Context, state State) (State, error) {
	key := cache.Fingerprint(state.Query, string(state.Classification.Category))

	if e.cache != nil {
		if entry, hit := e.cache.Get(key); hit && entry.Payload.Result != nil {
			observability.LogCacheLookup(ctx.Logger(), key, true)
			e.metrics.RecordCacheLookup(ctx, true)
			return serveFromCache(state, entry), nil
		}
	}

	state.Status = StatusExecuting
	result, err := e.backend.Execute(ctx, state.SQL)
	if err != nil {
		execErr := &qferrors.ExecutionError{
			Class:   qferrors.ClassifyExecution(err),
			Message: err.Error(),
			SQL:     state.SQL,
		}

		state = state.appendPriorError(execErr.Error())
		if state.RetryCount < e.maxRetries {
			state.RetryCount++
			state.Status = StatusRecoverable
			observability.LogRetry(ctx.Logger(), state.RetryCount, execErr.Class.String(), err)
			e.metrics.RecordRetry(ctx, execErr.Class.String())
			return state, nil
		}

		state.Status = StatusTerminal
		state.FailureKind = qferrors.KindExecution
		return state, execErr
	}

	state.Result = result
	state.Status = StatusSucceeded
	state.ErrorMessage = ""

	if e.cache != nil {
		e.cache.Put(key, cache.Payload{SQL: state.SQL, Result: result}, e.cacheTTL)
	}

	return state, nil
}

// serveFromCache replays a cached payload into the state. The cached
// SQL replaces any freshly generated candidate so the surfaced SQL is
// the one that actually produced the result.
func serveFromCache(state State, entry *cache.Entry) State {
	state.SQL = entry.Payload.SQL
	state.Result = entry.Payload.Result
	state.CacheHit = true
	state.Status = StatusSucceeded
	state.ErrorMessage = ""
	return state
}

// routeAfterLookup jumps a cache hit straight to analysis; misses go
// on to schema introspection.
func routeAfterLookup(_ Context, state State) string {
	if state.CacheHit {
		return StageAnalyze
	}
	return StageSchema
}

// routeAfterExecute sends recoverable failures back into regeneration
// and successes on to analysis. Terminal failures abort through the
// stage error before routing happens.
func routeAfterExecute(_ Context, state State) string {
	if state.Status == StatusRecoverable {
		return StageGenerate
	}
	return StageAnalyze
}
