package cookiehook

import (
	"context"
	"time"
)

// Logger receives the interceptor's own messages: "interceptor installed" at Info,
// "cookie write intercepted" at Debug and sink failures at Warn.
// It is separate from the Sink, which gets the InvocationRecords themselves.
// *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// MetricsCollector receives the interception metrics: one counter increment per InvocationRecord
// labeled with operation and classification, the sink duration labeled with status,
// and sink failures labeled with error_type.
type MetricsCollector interface {
	RecordDuration(metric string, duration time.Duration, labels map[string]string)
	IncrementCounter(metric string, labels map[string]string)
	RecordValue(metric string, value float64, labels map[string]string)
}

// ContextualMetricsCollector is a MetricsCollector that also takes the observation context,
// which carries the observe span. The interceptor prefers these methods when present.
type ContextualMetricsCollector interface {
	MetricsCollector
	RecordDurationContext(ctx context.Context, metric string, duration time.Duration, labels map[string]string)
	IncrementCounterContext(ctx context.Context, metric string, labels map[string]string)
	RecordValueContext(ctx context.Context, metric string, value float64, labels map[string]string)
}

// SpanContext is the handle of one observe span.
type SpanContext interface {
	SetStatus(status string)
	AddAttribute(key, value string)
}

// TracingCollector opens one span per observed cookie write around the sink calls.
// The span ends with status "error" when any record of the write was rejected by the sink.
// The forwarded call is never part of the span.
type TracingCollector interface {
	StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, SpanContext)
	FinishSpan(spanCtx SpanContext, status string, attrs map[string]string)
}

// ContextualLogger is a Logger variant that gets the observation context,
// so interception and sink-failure messages carry the observe span.
// *slog.Logger satisfies it.
type ContextualLogger interface {
	DebugContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
	WarnContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}
