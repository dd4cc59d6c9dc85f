// Package interceptor provides the interception layer installed in front of a
// process-wide cookiehook.Provider.
//
// Two wrappers collaborate:
//   - ForwardingDecorator implements cookiehook.CookieService by forwarding every operation
//     to a delegate, except SetCookie and SetCookieAsync which first hand InvocationRecords
//     to a logging sink.
//   - InterceptingProxy implements cookiehook.Provider by forwarding every operation to the
//     original provider, except CookieService which returns the held ForwardingDecorator.
//
// Install is the one-time activation step: it reads the provider from a SlotLocator,
// builds both wrappers over it and writes the proxy back.
//
// Usage examples:
//
//	// Activation with a plain slog-based sink
//	proxy, err := interceptor.Install(singleton.Default, sinks.NewLoggerSink(logger))
//
//	// With observability
//	proxy, err := interceptor.Install(
//		singleton.Default,
//		sink,
//		interceptor.WithContextualLogger(contextualLogger),
//		interceptor.WithMetrics(metricsCollector),
//		interceptor.WithTracing(tracingCollector),
//		interceptor.WithTraceDepth(16),
//	)
//
// Sink failures never reach the cookie caller, delegate failures always do.
package interceptor
