package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records pipeline metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordStageExecution records a stage execution with its duration and error status.
	RecordStageExecution(ctx context.Context, stage string, duration time.Duration, err error)

	// RecordRun records a pipeline run completion.
	RecordRun(ctx context.Context, success, cacheHit bool, duration time.Duration)

	// RecordCacheLookup records a result cache lookup.
	RecordCacheLookup(ctx context.Context, hit bool)

	// RecordRetry records one recoverable execution failure.
	RecordRetry(ctx context.Context, class string)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	stageExecutions metric.Int64Counter
	stageLatency    metric.Float64Histogram
	stageErrors     metric.Int64Counter
	runs            metric.Int64Counter
	runLatency      metric.Float64Histogram
	cacheLookups    metric.Int64Counter
	retries         metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("queryflow")

	stageExecutions, err := meter.Int64Counter("queryflow.stage.executions",
		metric.WithDescription("Number of stage executions"),
	)
	if err != nil {
		return nil, err
	}

	stageLatency, err := meter.Float64Histogram("queryflow.stage.latency_ms",
		metric.WithDescription("Stage execution latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	stageErrors, err := meter.Int64Counter("queryflow.stage.errors",
		metric.WithDescription("Number of stage execution errors"),
	)
	if err != nil {
		return nil, err
	}

	runs, err := meter.Int64Counter("queryflow.runs",
		metric.WithDescription("Number of pipeline runs"),
	)
	if err != nil {
		return nil, err
	}

	runLatency, err := meter.Float64Histogram("queryflow.run.latency_ms",
		metric.WithDescription("Pipeline run latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	cacheLookups, err := meter.Int64Counter("queryflow.cache.lookups",
		metric.WithDescription("Number of result cache lookups"),
	)
	if err != nil {
		return nil, err
	}

	retries, err := meter.Int64Counter("queryflow.execution.retries",
		metric.WithDescription("Number of recoverable execution failures"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		stageExecutions: stageExecutions,
		stageLatency:    stageLatency,
		stageErrors:     stageErrors,
		runs:            runs,
		runLatency:      runLatency,
		cacheLookups:    cacheLookups,
		retries:         retries,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordStageExecution records a stage execution.
func (m *otelMetrics) RecordStageExecution(ctx context.Context, stage string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("stage", stage),
	}

	m.stageExecutions.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.stageLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))

	if err != nil {
		m.stageErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordRun records a pipeline run.
func (m *otelMetrics) RecordRun(ctx context.Context, success, cacheHit bool, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.Bool("success", success),
		attribute.Bool("cache_hit", cacheHit),
	}
	m.runs.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.runLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}

// RecordCacheLookup records a result cache lookup.
func (m *otelMetrics) RecordCacheLookup(ctx context.Context, hit bool) {
	m.cacheLookups.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("hit", hit),
	))
}

// RecordRetry records a recoverable execution failure.
func (m *otelMetrics) RecordRetry(ctx context.Context, class string) {
	m.retries.Add(ctx, 1, metric.WithAttributes(
		attribute.String("class", class),
	))
}
