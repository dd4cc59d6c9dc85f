// Package oteladapters provides OpenTelemetry adapters for the cookiehook observability interfaces.
//
// They let users plug an existing OpenTelemetry setup into the interceptor:
//
//	decorator, err := interceptor.NewForwardingDecorator(cookies, sink,
//		interceptor.WithContextualLogger(oteladapters.NewSlogBridgeLogger("cookiehook")),
//		interceptor.WithMetrics(oteladapters.NewMetricsCollector(meterProvider.Meter("cookiehook"))),
//		interceptor.WithTracing(oteladapters.NewTracingCollector(tracerProvider.Tracer("cookiehook"))),
//	)
package oteladapters
