package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/trace"
)

// slogSeverityOffset maps a slog.Level onto the OpenTelemetry severity of the same name.
const slogSeverityOffset = slog.Level(log.SeverityInfo) - slog.LevelInfo

// lineLogger is an OpenTelemetry log.Logger writing one logfmt-style line per record.
// Records emitted inside a span carry its trace and span id.
type lineLogger struct {
	noop.Logger
	mu          sync.Mutex
	w           io.Writer
	minSeverity log.Severity
}

func newLineLogger(w io.Writer, level slog.Level) *lineLogger {
	return &lineLogger{w: w, minSeverity: log.Severity(level + slogSeverityOffset)}
}

func (l *lineLogger) Enabled(_ context.Context, param log.EnabledParameters) bool {
	return param.Severity >= l.minSeverity
}

func (l *lineLogger) Emit(ctx context.Context, record log.Record) {
	if record.Severity() < l.minSeverity {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "severity=%s msg=%q", record.Severity(), record.Body().AsString())

	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		fmt.Fprintf(&b, " trace_id=%s span_id=%s", spanCtx.TraceID(), spanCtx.SpanID())
	}

	record.WalkAttributes(func(kv log.KeyValue) bool {
		fmt.Fprintf(&b, " %s=%q", kv.Key, kv.Value.String())
		return true
	})

	l.mu.Lock()
	defer l.mu.Unlock()

	_, _ = fmt.Fprintln(l.w, b.String())
}

// lineLoggerProvider hands out the same lineLogger for every instrumentation scope.
type lineLoggerProvider struct {
	noop.LoggerProvider
	logger *lineLogger
}

func (p lineLoggerProvider) Logger(string, ...log.LoggerOption) log.Logger {
	return p.logger
}

// writeOTelMetricsSummary prints every collected data point as "name{labels} value", sorted.
// Histograms print their sample count.
func writeOTelMetricsSummary(ctx context.Context, w io.Writer, reader sdkmetric.Reader) error {
	var resourceMetrics metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &resourceMetrics); err != nil {
		return err
	}

	var lines []string

	for _, scope := range resourceMetrics.ScopeMetrics {
		for _, m := range scope.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, point := range data.DataPoints {
					lines = append(lines, fmt.Sprintf("%s{%s} %d", m.Name, labelsOf(point.Attributes), point.Value))
				}
			case metricdata.Histogram[float64]:
				for _, point := range data.DataPoints {
					lines = append(lines, fmt.Sprintf("%s{%s} count=%d", m.Name, labelsOf(point.Attributes), point.Count))
				}
			case metricdata.Gauge[float64]:
				for _, point := range data.DataPoints {
					lines = append(lines, fmt.Sprintf("%s{%s} %g", m.Name, labelsOf(point.Attributes), point.Value))
				}
			}
		}
	}

	sort.Strings(lines)

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	return nil
}

func labelsOf(set attribute.Set) string {
	labels := make([]string, 0, set.Len())
	for _, kv := range set.ToSlice() {
		labels = append(labels, string(kv.Key)+"="+kv.Value.Emit())
	}

	return strings.Join(labels, ",")
}

var (
	_ log.Logger         = (*lineLogger)(nil)
	_ log.LoggerProvider = lineLoggerProvider{}
)
