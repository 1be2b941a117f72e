// Package observability provides production-grade observability for
// the query pipeline: structured logging, metrics, and distributed
// tracing.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// queryLogLimit caps how much of a natural-language query appears in
// a single log record.
const queryLogLimit = 200

// EnrichLogger adds pipeline context to a logger.
// Returns a new logger with run_id, stage, and attempt fields.
//
// Example:
//
//	enriched := EnrichLogger(logger, "run-123", "generate", 1)
//	enriched.Info("doing work") // includes run_id, stage, attempt
func EnrichLogger(logger *slog.Logger, runID, stage string, attempt int) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("run_id", runID),
		slog.String("stage", stage),
		slog.Int("attempt", attempt),
	)
}

// LogRunStart logs the start of a pipeline run.
func LogRunStart(logger *slog.Logger, runID, query string) {
	if logger == nil {
		return
	}
	logger.Info("pipeline run starting",
		slog.String("run_id", runID),
		slog.String("query", truncateQuery(query)),
	)
}

// LogRunComplete logs successful pipeline run completion.
func LogRunComplete(logger *slog.Logger, runID string, durationMs float64, attempts int, cacheHit bool) {
	if logger == nil {
		return
	}
	logger.Info("pipeline run completed",
		slog.String("run_id", runID),
		slog.Float64("duration_ms", durationMs),
		slog.Int("attempts", attempts),
		slog.Bool("cache_hit", cacheHit),
	)
}

// LogRunError logs pipeline run failure.
func LogRunError(logger *slog.Logger, runID string, err error, durationMs float64, lastStage string) {
	if logger == nil {
		return
	}
	logger.Error("pipeline run failed",
		slog.String("run_id", runID),
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
		slog.String("last_stage", lastStage),
	)
}

// LogStageStart logs stage execution start.
func LogStageStart(logger *slog.Logger, stage string) {
	if logger == nil {
		return
	}
	logger.Debug("stage starting",
		slog.String("stage", stage),
	)
}

// LogStageComplete logs successful stage completion.
func LogStageComplete(logger *slog.Logger, stage string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("stage completed",
		slog.String("stage", stage),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogStageError logs stage execution error.
func LogStageError(logger *slog.Logger, stage string, err error) {
	if logger == nil {
		return
	}
	logger.Error("stage failed",
		slog.String("stage", stage),
		slog.String("error", err.Error()),
	)
}

// LogRetry logs a recoverable execution failure entering another
// generation attempt.
func LogRetry(logger *slog.Logger, attempt int, class string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("execution failed, retrying",
		slog.Int("attempt", attempt),
		slog.String("class", class),
		slog.String("error", err.Error()),
	)
}

// LogCacheLookup logs a result cache lookup.
func LogCacheLookup(logger *slog.Logger, key string, hit bool) {
	if logger == nil {
		return
	}
	logger.Debug("cache lookup",
		slog.String("key", key),
		slog.Bool("hit", hit),
	)
}

// LogCacheError logs a cache problem (non-fatal, treated as a miss).
func LogCacheError(logger *slog.Logger, op string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("cache degraded",
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
}

// LogHistoryError logs a run-history write failure (non-fatal).
func LogHistoryError(logger *slog.Logger, runID string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("history write failed",
		slog.String("run_id", runID),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Milliseconds())
	}
}

func truncateQuery(q string) string {
	if len(q) <= queryLogLimit {
		return q
	}
	return q[:queryLogLimit] + "..."
}
