package oteladapters_test

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/AntonStoeckl/cookie-interceptor-go/cookiehook/interceptor"
	"github.com/AntonStoeckl/cookie-interceptor-go/cookiehook/oteladapters"
	"github.com/AntonStoeckl/cookie-interceptor-go/testutil/testdoubles"
)

// recordingLogger captures emitted OpenTelemetry log records.
type recordingLogger struct {
	noop.Logger
	mu      sync.Mutex
	records []log.Record
}

func (l *recordingLogger) Emit(_ context.Context, record log.Record) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = append(l.records, record)
}

func attributesOf(record log.Record) map[string]string {
	attrs := make(map[string]string)
	record.WalkAttributes(func(kv log.KeyValue) bool {
		attrs[kv.Key] = kv.Value.AsString()
		return true
	})

	return attrs
}

func Test_SlogBridgeLogger_AllLevels(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := oteladapters.NewSlogBridgeLoggerWithHandler(handler)
	ctx := context.Background()

	logger.DebugContext(ctx, "debug message")
	logger.InfoContext(ctx, "info message", "url", "https://x.test")
	logger.WarnContext(ctx, "warn message")
	logger.ErrorContext(ctx, "error message")

	output := buf.String()
	assert.Contains(t, output, `"level":"DEBUG"`)
	assert.Contains(t, output, `"url":"https://x.test"`)
	assert.Contains(t, output, "warn message")
	assert.Contains(t, output, "error message")
}

func Test_NewSlogBridgeLogger_UsesGlobalProvider(t *testing.T) {
	logger := oteladapters.NewSlogBridgeLogger("cookiehook")

	assert.NotPanics(t, func() {
		logger.InfoContext(context.Background(), "set cookie")
	})
}

func Test_OTelLogger_EmitsRecordsWithSeverityAndAttributes(t *testing.T) {
	// arrange
	recorder := &recordingLogger{}
	logger := oteladapters.NewOTelLogger(recorder)

	// act
	logger.WarnContext(context.Background(), "logging sink failed, forwarding anyway",
		"error_type", "sink_error",
		"attempt", 3,
		"dangling",
	)

	// assert
	require.Len(t, recorder.records, 1)
	record := recorder.records[0]
	assert.Equal(t, log.SeverityWarn, record.Severity())
	assert.Equal(t, "logging sink failed, forwarding anyway", record.Body().AsString())

	attrs := attributesOf(record)
	assert.Equal(t, "sink_error", attrs["error_type"])
	assert.Equal(t, "3", attrs["attempt"])
	assert.NotContains(t, attrs, "dangling")
}

func Test_OTelLogger_AllLevels_DoNotPanic(t *testing.T) {
	logger := oteladapters.NewOTelLogger(noop.NewLoggerProvider().Logger("test"))
	ctx := context.Background()

	assert.NotPanics(t, func() {
		logger.DebugContext(ctx, "debug")
		logger.InfoContext(ctx, "info")
		logger.WarnContext(ctx, "warn")
		logger.ErrorContext(ctx, "error")
	})
}

func Test_MetricsCollector_RecordsAllInstrumentKinds(t *testing.T) {
	// arrange
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	collector := oteladapters.NewMetricsCollector(provider.Meter("test"))
	labels := map[string]string{"operation": "SetCookie"}

	// act
	collector.RecordDuration("cookiehook_sink_duration_seconds", 150*time.Millisecond, labels)
	collector.IncrementCounter("cookiehook_intercepted_calls_total", labels)
	collector.IncrementCounterContext(context.Background(), "cookiehook_intercepted_calls_total", labels)
	collector.RecordValue("cookiehook_queue_depth", 4, nil)

	// assert
	var resourceMetrics metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &resourceMetrics))

	histogram := findMetric[metricdata.Histogram[float64]](t, resourceMetrics, "cookiehook_sink_duration_seconds")
	require.Len(t, histogram.DataPoints, 1)
	assert.InDelta(t, 0.15, histogram.DataPoints[0].Sum, 0.001)

	expected := attribute.NewSet(attribute.String("operation", "SetCookie"))
	assert.True(t, histogram.DataPoints[0].Attributes.Equals(&expected))

	counter := findMetric[metricdata.Sum[int64]](t, resourceMetrics, "cookiehook_intercepted_calls_total")
	require.Len(t, counter.DataPoints, 1)
	assert.Equal(t, int64(2), counter.DataPoints[0].Value)

	gauge := findMetric[metricdata.Gauge[float64]](t, resourceMetrics, "cookiehook_queue_depth")
	require.Len(t, gauge.DataPoints, 1)
	assert.InDelta(t, 4.0, gauge.DataPoints[0].Value, 0.001)
}

func Test_MetricsCollector_ConcurrentUse(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	collector := oteladapters.NewMetricsCollector(provider.Meter("test"))

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			collector.IncrementCounter("cookiehook_intercepted_calls_total", nil)
		}()
	}
	wg.Wait()

	var resourceMetrics metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &resourceMetrics))

	counter := findMetric[metricdata.Sum[int64]](t, resourceMetrics, "cookiehook_intercepted_calls_total")
	require.Len(t, counter.DataPoints, 1)
	assert.Equal(t, int64(25), counter.DataPoints[0].Value)
}

func Test_TracingCollector_StartAndFinishSpan(t *testing.T) {
	// arrange
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	collector := oteladapters.NewTracingCollector(provider.Tracer("test"))

	// act
	_, spanCtx := collector.StartSpan(context.Background(), "cookiehook.observe", map[string]string{"operation": "SetCookie"})
	spanCtx.AddAttribute("classification", "set")
	collector.FinishSpan(spanCtx, "error", map[string]string{"sink_failures": "1"})

	// assert
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "cookiehook.observe", spans[0].Name)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assertSpanHasAttribute(t, spans[0], "operation", "SetCookie")
	assertSpanHasAttribute(t, spans[0], "classification", "set")
	assertSpanHasAttribute(t, spans[0], "sink_failures", "1")
}

func Test_TracingCollector_StatusMapping(t *testing.T) {
	testCases := []struct {
		status string
		code   codes.Code
	}{
		{"success", codes.Ok},
		{"ok", codes.Ok},
		{"error", codes.Error},
		{"failed", codes.Error},
		{"partial", codes.Unset},
	}

	for _, tc := range testCases {
		t.Run(tc.status, func(t *testing.T) {
			exporter := tracetest.NewInMemoryExporter()
			provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
			collector := oteladapters.NewTracingCollector(provider.Tracer("test"))

			_, spanCtx := collector.StartSpan(context.Background(), "op", nil)
			collector.FinishSpan(spanCtx, tc.status, nil)

			spans := exporter.GetSpans()
			require.Len(t, spans, 1)
			assert.Equal(t, tc.code, spans[0].Status.Code)
		})
	}
}

func Test_TracingCollector_FinishSpan_IgnoresForeignSpanContext(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	collector := oteladapters.NewTracingCollector(provider.Tracer("test"))

	assert.NotPanics(t, func() {
		collector.FinishSpan(&testdoubles.SpySpanContext{}, "success", nil)
		collector.FinishSpan(nil, "success", nil)
	})
	assert.Empty(t, exporter.GetSpans())
}

func Test_Adapters_WiredIntoForwardingDecorator(t *testing.T) {
	// arrange
	exporter := tracetest.NewInMemoryExporter()
	tracerProvider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	reader := sdkmetric.NewManualReader()
	meterProvider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	recorder := &recordingLogger{}

	sink := testdoubles.NewSinkSpy(nil)
	decorator, err := interceptor.NewForwardingDecorator(
		testdoubles.NewCookieServiceSpy(nil),
		sink,
		interceptor.WithContextualLogger(oteladapters.NewOTelLogger(recorder)),
		interceptor.WithMetrics(oteladapters.NewMetricsCollector(meterProvider.Meter("cookiehook"))),
		interceptor.WithTracing(oteladapters.NewTracingCollector(tracerProvider.Tracer("cookiehook"))),
	)
	require.NoError(t, err)

	// act
	require.NoError(t, decorator.SetCookie(context.Background(), "https://x.test", "a=;"))

	// assert
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "cookiehook.observe", spans[0].Name)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)

	var resourceMetrics metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &resourceMetrics))
	counter := findMetric[metricdata.Sum[int64]](t, resourceMetrics, "cookiehook_intercepted_calls_total")
	assert.Len(t, counter.DataPoints, 2, "one series per classification")

	assert.Len(t, recorder.records, 2)
	assert.Len(t, sink.Records(), 2)
}

func findMetric[T any](t *testing.T, resourceMetrics metricdata.ResourceMetrics, name string) T {
	t.Helper()

	for _, scopeMetrics := range resourceMetrics.ScopeMetrics {
		for _, m := range scopeMetrics.Metrics {
			if m.Name != name {
				continue
			}

			if data, ok := m.Data.(T); ok {
				return data
			}
		}
	}

	t.Fatalf("metric %s not found", name)

	var zero T

	return zero
}

func assertSpanHasAttribute(t *testing.T, span tracetest.SpanStub, key, expectedValue string) {
	t.Helper()

	for _, attr := range span.Attributes {
		if string(attr.Key) == key {
			assert.Equal(t, expectedValue, attr.Value.AsString(), "attribute %s", key)
			return
		}
	}

	t.Errorf("attribute %s not found on span %s", key, span.Name)
}
