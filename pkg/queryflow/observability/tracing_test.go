package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// setupTracingTest creates a test tracer provider with an in-memory span recorder.
func setupTracingTest(t *testing.T) (*tracetest.InMemoryExporter, func()) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
	)

	originalProvider := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)

	// Update the package-level tracer
	tracer = otel.Tracer("queryflow")

	cleanup := func() {
		otel.SetTracerProvider(originalProvider)
		if err := tp.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down tracer provider: %v", err)
		}
	}

	return exporter, cleanup
}

func TestStartRunSpan(t *testing.T) {
	exporter, cleanup := setupTracingTest(t)
	defer cleanup()

	t.Run("creates span with correct name and attributes", func(t *testing.T) {
		ctx := context.Background()
		_, span := StartRunSpan(ctx, "run-123", "sales")
		require.NotNil(t, span)

		span.End()

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)

		s := spans[0]
		assert.Equal(t, "queryflow.run", s.Name)

		var runID, category string
		for _, attr := range s.Attributes {
			switch attr.Key {
			case "run.id":
				runID = attr.Value.AsString()
			case "query.category":
				category = attr.Value.AsString()
			}
		}
		assert.Equal(t, "run-123", runID)
		assert.Equal(t, "sales", category)
	})

	t.Run("returns context with span", func(t *testing.T) {
		exporter.Reset()

		ctx := context.Background()
		newCtx, span := StartRunSpan(ctx, "run-456", "general")

		assert.NotEqual(t, ctx, newCtx)

		span.End()

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
	})
}

func TestStartStageSpan(t *testing.T) {
	exporter, cleanup := setupTracingTest(t)
	defer cleanup()

	t.Run("creates span with stage name suffix", func(t *testing.T) {
		ctx := context.Background()
		_, span := StartStageSpan(ctx, "generate")
		require.NotNil(t, span)

		span.End()

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)

		s := spans[0]
		assert.Equal(t, "queryflow.stage.generate", s.Name)

		var stage string
		for _, attr := range s.Attributes {
			if attr.Key == "stage" {
				stage = attr.Value.AsString()
			}
		}
		assert.Equal(t, "generate", stage)
	})

	t.Run("stage spans are children of the run span", func(t *testing.T) {
		exporter.Reset()

		ctx := context.Background()
		ctx, runSpan := StartRunSpan(ctx, "run-1", "sales")

		_, stageSpan := StartStageSpan(ctx, "classify")
		stageSpan.End()

		runSpan.End()

		spans := exporter.GetSpans()
		require.Len(t, spans, 2)

		var stageSpanData *tracetest.SpanStub
		for i := range spans {
			if spans[i].Name == "queryflow.stage.classify" {
				stageSpanData = &spans[i]
				break
			}
		}
		require.NotNil(t, stageSpanData)
		assert.True(t, stageSpanData.Parent.IsValid())
	})
}

func TestEndSpanWithError(t *testing.T) {
	exporter, cleanup := setupTracingTest(t)
	defer cleanup()

	t.Run("sets OK status for nil error", func(t *testing.T) {
		ctx := context.Background()
		_, span := StartRunSpan(ctx, "run-1", "sales")

		EndSpanWithError(span, nil)

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)

		assert.Equal(t, codes.Ok, spans[0].Status.Code)
		assert.Equal(t, "", spans[0].Status.Description)
	})

	t.Run("sets Error status and records error", func(t *testing.T) {
		exporter.Reset()

		ctx := context.Background()
		_, span := StartRunSpan(ctx, "run-2", "sales")
		testErr := errors.New("retry budget exhausted")

		EndSpanWithError(span, testErr)

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)

		s := spans[0]
		assert.Equal(t, codes.Error, s.Status.Code)
		assert.Equal(t, "retry budget exhausted", s.Status.Description)

		require.NotEmpty(t, s.Events)
		found := false
		for _, event := range s.Events {
			if event.Name == "exception" {
				found = true
			}
		}
		assert.True(t, found, "Expected exception event")
	})

	t.Run("nil span does not panic", func(t *testing.T) {
		assert.NotPanics(t, func() {
			EndSpanWithError(nil, nil)
		})
		assert.NotPanics(t, func() {
			EndSpanWithError(nil, errors.New("test"))
		})
	})
}

func TestAddSpanEvent(t *testing.T) {
	exporter, cleanup := setupTracingTest(t)
	defer cleanup()

	t.Run("adds event to current span", func(t *testing.T) {
		ctx := context.Background()
		ctx, span := StartRunSpan(ctx, "run-1", "sales")

		AddSpanEvent(ctx, "cache_hit",
			attribute.String("key", "abc123"),
		)

		span.End()

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)

		s := spans[0]
		require.NotEmpty(t, s.Events)

		var found bool
		for _, event := range s.Events {
			if event.Name == "cache_hit" {
				found = true
				var key string
				for _, attr := range event.Attributes {
					if attr.Key == "key" {
						key = attr.Value.AsString()
					}
				}
				assert.Equal(t, "abc123", key)
			}
		}
		assert.True(t, found, "Expected to find cache_hit event")
	})

	t.Run("no panic with no current span", func(t *testing.T) {
		ctx := context.Background()
		assert.NotPanics(t, func() {
			AddSpanEvent(ctx, "test_event")
		})
	})
}

func TestSpanManager_Interface(t *testing.T) {
	exporter, cleanup := setupTracingTest(t)
	defer cleanup()

	sm := NewSpanManager()
	require.NotNil(t, sm)

	t.Run("StartRunSpan via interface", func(t *testing.T) {
		ctx := context.Background()
		_, span := sm.StartRunSpan(ctx, "run-if", "general")
		require.NotNil(t, span)

		sm.EndSpanWithError(span, nil)

		spans := exporter.GetSpans()
		require.NotEmpty(t, spans)
	})

	t.Run("StartStageSpan via interface", func(t *testing.T) {
		exporter.Reset()

		ctx := context.Background()
		_, span := sm.StartStageSpan(ctx, "analyze")
		require.NotNil(t, span)

		sm.EndSpanWithError(span, nil)

		spans := exporter.GetSpans()
		require.NotEmpty(t, spans)
		assert.Equal(t, "queryflow.stage.analyze", spans[0].Name)
	})

	t.Run("AddSpanEvent via interface", func(t *testing.T) {
		exporter.Reset()

		ctx := context.Background()
		ctx, span := sm.StartRunSpan(ctx, "run-1", "sales")

		sm.AddSpanEvent(ctx, "custom_event", attribute.String("key", "value"))

		sm.EndSpanWithError(span, nil)

		spans := exporter.GetSpans()
		require.NotEmpty(t, spans)
		require.NotEmpty(t, spans[0].Events)
	})
}
