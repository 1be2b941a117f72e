package queryflow

import (
	"log/slog"

	"github.com/randalmurphal/queryflow/pkg/queryflow/observability"
)

// defaultMaxIterations bounds the run loop. The standard pipeline
// visits well under twenty stages even with every retry consumed, so
// hitting this limit means a custom flow is cycling without progress.
const defaultMaxIterations = 50

// runConfig holds execution configuration for a single run.
type runConfig struct {
	maxIterations  int
	logger         *slog.Logger
	metrics        observability.MetricsRecorder
	spans          observability.SpanManager
	tracingEnabled bool
}

// defaultRunConfig returns the default execution configuration.
func defaultRunConfig() runConfig {
	return runConfig{
		maxIterations: defaultMaxIterations,
		logger:        slog.Default(),
		metrics:       observability.NoopMetrics{},
		spans:         observability.NoopSpanManager{},
	}
}

// RunOption configures pipeline execution.
type RunOption func(*runConfig)

// WithMaxIterations sets the maximum number of stage executions.
// Default is 50. This is a safety limit to prevent infinite loops in
// cyclic flows. If execution exceeds this limit, Run returns a
// *MaxIterationsError.
//
// Example:
//
//	final, err := pipeline.Run(ctx, state, queryflow.WithMaxIterations(10))
func WithMaxIterations(n int) RunOption {
	return func(c *runConfig) {
		if n > 0 {
			c.maxIterations = n
		}
	}
}

// WithObservabilityLogger sets the logger used for run and stage
// lifecycle events. This is separate from the context logger that
// stages receive; the two are usually the same logger.
func WithObservabilityLogger(logger *slog.Logger) RunOption {
	return func(c *runConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetricsRecorder sets the metrics recorder for the run.
// Default is a no-op recorder.
func WithMetricsRecorder(m observability.MetricsRecorder) RunOption {
	return func(c *runConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithSpanManager sets the span manager used when tracing is enabled.
// Default is the OpenTelemetry span manager.
func WithSpanManager(sm observability.SpanManager) RunOption {
	return func(c *runConfig) {
		if sm != nil {
			c.spans = sm
		}
	}
}

// WithTracing enables OpenTelemetry span creation for the run and each
// stage. Spans go to the globally registered tracer provider; without
// one they are discarded.
func WithTracing(enabled bool) RunOption {
	return func(c *runConfig) {
		c.tracingEnabled = enabled
		if enabled {
			if _, isNoop := c.spans.(observability.NoopSpanManager); isNoop {
				c.spans = observability.NewSpanManager()
			}
		}
	}
}
