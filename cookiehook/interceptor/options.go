package interceptor

import (
	"time"

	"github.com/AntonStoeckl/cookie-interceptor-go/cookiehook"
)

// Option defines a functional option for configuring a ForwardingDecorator.
type Option func(*ForwardingDecorator) error

// WithTraceDepth bounds the number of call frames captured per intercepted call.
// Zero selects cookiehook.DefaultTraceDepth.
func WithTraceDepth(depth int) Option {
	return func(d *ForwardingDecorator) error {
		if depth < 0 {
			return cookiehook.ErrInvalidTraceDepth
		}

		d.traceDepth = depth

		return nil
	}
}

// WithLogger sets the logger for the ForwardingDecorator.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: every intercepted call with its invocation id
// Info level: activation
// Warn level: swallowed sink failures.
func WithLogger(logger cookiehook.Logger) Option {
	return func(d *ForwardingDecorator) error {
		d.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the ForwardingDecorator.
// Log messages carry the span context of the intercepted call when tracing is enabled.
func WithContextualLogger(logger cookiehook.ContextualLogger) Option {
	return func(d *ForwardingDecorator) error {
		d.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the ForwardingDecorator.
func WithMetrics(collector cookiehook.MetricsCollector) Option {
	return func(d *ForwardingDecorator) error {
		d.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the ForwardingDecorator.
// One span is started per observed call. It covers the sink hand-off and ends before the call is forwarded.
func WithTracing(collector cookiehook.TracingCollector) Option {
	return func(d *ForwardingDecorator) error {
		d.tracingCollector = collector
		return nil
	}
}

// WithClock replaces time.Now as the source of InvocationRecord.ObservedAt.
func WithClock(now func() time.Time) Option {
	return func(d *ForwardingDecorator) error {
		if now != nil {
			d.now = now
		}

		return nil
	}
}

// WithIDGenerator replaces the uuid-based invocation id generator.
func WithIDGenerator(newID func() string) Option {
	return func(d *ForwardingDecorator) error {
		if newID != nil {
			d.newID = newID
		}

		return nil
	}
}
