package queryflow

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/randalmurphal/queryflow/pkg/queryflow/observability"
)

// Run executes the pipeline with the given initial state.
// Returns the final state and any error encountered.
//
// On success, returns the state after the last stage executed before
// Done. On error, returns the state at the point of failure, which
// keeps the prior-error trail and any partial results inspectable.
//
// Execution flow:
//  1. Start at the entry stage
//  2. Check for cancellation
//  3. Execute the current stage
//  4. Determine the next stage (via simple edge or router)
//  5. Repeat until Done is reached or an error occurs
//
// Example:
//
//	ctx := queryflow.NewContext(context.Background())
//	final, err := pipeline.Run(ctx, initial)
//	if err != nil {
//	    // final contains state at point of failure
//	}
func (p *Pipeline) Run(ctx Context, state State, opts ...RunOption) (final State, runErr error) {
	if ctx == nil {
		return state, ErrNilContext
	}

	cfg := defaultRunConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	runID := ctx.RunID()
	startTime := time.Now()

	observability.LogRunStart(cfg.logger, runID, state.Query)

	// Start run span if tracing enabled
	var execCtx context.Context = ctx
	var runSpan trace.Span
	if cfg.tracingEnabled {
		execCtx, runSpan = cfg.spans.StartRunSpan(ctx, runID, string(state.Classification.Category))
		defer func() {
			cfg.spans.EndSpanWithError(runSpan, runErr)
		}()
	}

	final, runErr = p.runLoop(execCtx, ctx, state, &cfg)

	duration := time.Since(startTime)
	durationMs := float64(duration.Milliseconds())

	cfg.metrics.RecordRun(execCtx, runErr == nil, final.CacheHit, duration)

	if runErr != nil {
		observability.LogRunError(cfg.logger, runID, runErr, durationMs, lastStageOf(runErr))
	} else {
		observability.LogRunComplete(cfg.logger, runID, durationMs, final.Attempts(), final.CacheHit)
	}

	return final, runErr
}

// lastStageOf extracts the stage a run error stopped at, for logging.
func lastStageOf(err error) string {
	switch e := err.(type) {
	case *StageError:
		return e.Stage
	case *PanicError:
		return e.Stage
	case *MaxIterationsError:
		return e.LastStage
	case *CancellationError:
		return e.Stage
	case *RouterError:
		return e.FromStage
	default:
		return ""
	}
}

// runLoop walks the stage graph until Done.
// tracingCtx carries span context; runCtx is the queryflow Context.
func (p *Pipeline) runLoop(tracingCtx context.Context, runCtx Context, state State, cfg *runConfig) (State, error) {
	current := p.entry
	iterations := 0

	for current != Done {
		iterations++
		if iterations > cfg.maxIterations {
			return state, &MaxIterationsError{
				Max:       cfg.maxIterations,
				LastStage: current,
				State:     state,
			}
		}

		// Check for cancellation before executing the stage
		select {
		case <-runCtx.Done():
			return state, &CancellationError{
				Stage:        current,
				State:        state,
				Cause:        runCtx.Err(),
				WasExecuting: false,
			}
		default:
		}

		observability.LogStageStart(cfg.logger, current)

		// Start stage span if tracing enabled
		stageTracingCtx := tracingCtx
		var stageSpan trace.Span
		if cfg.tracingEnabled {
			stageTracingCtx, stageSpan = cfg.spans.StartStageSpan(tracingCtx, current)
		}

		stageStart := time.Now()

		var stageErr error
		state, stageErr = p.executeStage(runCtx, current, state)

		stageDuration := time.Since(stageStart)
		stageDurationMs := float64(stageDuration.Milliseconds())

		cfg.metrics.RecordStageExecution(stageTracingCtx, current, stageDuration, stageErr)

		if cfg.tracingEnabled {
			cfg.spans.EndSpanWithError(stageSpan, stageErr)
		}

		if stageErr != nil {
			observability.LogStageError(cfg.logger, current, stageErr)
			return state, stageErr
		}
		observability.LogStageComplete(cfg.logger, current, stageDurationMs)

		next, err := p.nextStage(runCtx, state, current)
		if err != nil {
			return state, err
		}

		current = next
	}

	return state, nil
}

// executeStage executes a single stage with panic recovery.
// Returns the new state and any error (including wrapped panics).
func (p *Pipeline) executeStage(ctx Context, stageID string, state State) (result State, err error) {
	fn, exists := p.getStage(stageID)
	if !exists {
		// Unreachable if compilation succeeded
		return state, &StageError{
			Stage: stageID,
			Op:    "lookup",
			Err:   fmt.Errorf("stage not found: %s", stageID),
		}
	}

	// Create a stage-specific context with an enriched logger
	stageCtx := ctx
	if rc, ok := ctx.(*runContext); ok {
		stageCtx = rc.withStage(stageID, state.RetryCount+1)
	}

	// Panic recovery
	defer func() {
		if r := recover(); r != nil {
			result = state
			err = &PanicError{
				Stage: stageID,
				Value: r,
				Stack: string(debug.Stack()),
			}
		}
	}()

	result, err = fn(stageCtx, state)
	if err != nil {
		return result, &StageError{
			Stage: stageID,
			Op:    "execute",
			Err:   err,
		}
	}

	return result, nil
}

// nextStage determines the next stage to execute.
// Checks routers first, then simple edges.
func (p *Pipeline) nextStage(ctx Context, state State, current string) (string, error) {
	if router, exists := p.getRouter(current); exists {
		routerCtx := ctx
		if rc, ok := ctx.(*runContext); ok {
			routerCtx = rc.withStage(current, state.RetryCount+1)
		}

		next := router(routerCtx, state)

		if next == "" {
			return "", &RouterError{
				FromStage: current,
				Returned:  next,
				Err:       ErrInvalidRouterResult,
			}
		}

		if next != Done {
			if _, exists := p.getStage(next); !exists {
				return "", &RouterError{
					FromStage: current,
					Returned:  next,
					Err:       ErrRouterTargetNotFound,
				}
			}
		}

		return next, nil
	}

	edges := p.getEdges(current)
	if len(edges) == 0 {
		// Unreachable if compilation succeeded
		return "", &StageError{
			Stage: current,
			Op:    "routing",
			Err:   fmt.Errorf("no outgoing edge from stage %s", current),
		}
	}

	// Simple edges are single-successor; take the first
	return edges[0], nil
}
