// Package cookiehook provides the core abstractions for intercepting cookie writes
// on a process-wide cookie service.
//
// The package defines the two collaborating interfaces a host application exposes,
// the value passed to a logging sink for every intercepted call, and the
// dependency-free observability interfaces used by the interceptor.
//
// Key types:
//   - CookieService: the cookie-management operation set (the interface that gets decorated)
//   - Provider: the broader host interface exposing, among others, the CookieService accessor
//   - InvocationRecord: one observed cookie write, including the captured call-origin trace
//   - Sink: receives InvocationRecords, fire-and-forget
//   - SlotLocator: reads and overwrites the process-wide Provider registration point
//
// Common usage pattern:
//
//	slot := singleton.NewSlot(hostProvider)
//	sink, _ := sinks.NewLoggerSink(slog.Default())
//
//	proxy, err := interceptor.Install(slot, sink)
//	if err != nil {
//		// activation failed, the host keeps running with the original provider
//	}
//
//	cookies := slot.Current().CookieService() // the ForwardingDecorator held by proxy
//	err = cookies.SetCookie(ctx, "https://example.com", "a=1; Path=/")
package cookiehook
