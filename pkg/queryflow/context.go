package queryflow

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/randalmurphal/queryflow/pkg/queryflow/observability"
)

// Context provides execution context to stages.
// It extends context.Context with run metadata and a logger.
//
// Context is immutable after creation. The run loop creates derived
// contexts for each stage with the stage ID set and the logger
// enriched with run_id, stage, and attempt.
type Context interface {
	context.Context

	// Logger returns the configured logger, enriched with run and stage context.
	// Never returns nil - defaults to slog.Default() if not configured.
	Logger() *slog.Logger

	// RunID returns the unique identifier for this run.
	// Auto-generated if not configured.
	RunID() string

	// Stage returns the stage currently executing.
	// Empty string before execution starts.
	Stage() string

	// Attempt returns the generation attempt number (1 = first attempt).
	Attempt() int
}

// runContext is the internal implementation of Context.
type runContext struct {
	context.Context

	logger  *slog.Logger
	runID   string
	stage   string
	attempt int
}

// Logger returns the configured logger.
func (c *runContext) Logger() *slog.Logger {
	return c.logger
}

// RunID returns the run identifier.
func (c *runContext) RunID() string {
	return c.runID
}

// Stage returns the current stage identifier.
func (c *runContext) Stage() string {
	return c.stage
}

// Attempt returns the generation attempt number.
func (c *runContext) Attempt() int {
	return c.attempt
}

// ContextOption configures a Context.
type ContextOption func(*runContext)

// WithContextLogger sets the logger for the context.
// The logger is enriched with run_id, stage, and attempt during execution.
func WithContextLogger(logger *slog.Logger) ContextOption {
	return func(c *runContext) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithContextRunID sets the run identifier for the context.
// If not set, a UUID is auto-generated.
func WithContextRunID(id string) ContextOption {
	return func(c *runContext) {
		if id != "" {
			c.runID = id
		}
	}
}

// NewContext creates a run context from a standard context.
// The returned Context wraps the provided context.Context, so
// deadlines and cancellation pass through to every stage.
//
// Example:
//
//	ctx := queryflow.NewContext(context.Background(),
//	    queryflow.WithContextLogger(myLogger),
//	    queryflow.WithContextRunID("run-123"))
func NewContext(ctx context.Context, opts ...ContextOption) Context {
	rc := &runContext{
		Context: ctx,
		logger:  slog.Default(),
		runID:   uuid.New().String(),
		attempt: 1,
	}

	for _, opt := range opts {
		opt(rc)
	}

	return rc
}

// withStage returns a derived context with the stage ID and attempt
// set. Used internally by the run loop to enrich the context per stage.
func (c *runContext) withStage(stage string, attempt int) *runContext {
	return &runContext{
		Context: c.Context,
		logger:  observability.EnrichLogger(c.logger, c.runID, stage, attempt),
		runID:   c.runID,
		stage:   stage,
		attempt: attempt,
	}
}
