package interceptor

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/cookie-interceptor-go/cookiehook"
)

const (
	operationSetCookie      = "SetCookie"
	operationSetCookieAsync = "SetCookieAsync"
)

// ForwardingDecorator implements cookiehook.CookieService by forwarding every call to its delegate.
// SetCookie and SetCookieAsync are observed: InvocationRecords are handed to the sink
// strictly before the call is forwarded.
//
// The decorator holds no mutable state after construction, so it is safe for concurrent use
// whenever the delegate and the sink are.
type ForwardingDecorator struct {
	delegate         cookiehook.CookieService
	sink             cookiehook.Sink
	traceDepth       int
	now              func() time.Time
	newID            func() string
	logger           cookiehook.Logger
	contextualLogger cookiehook.ContextualLogger
	metricsCollector cookiehook.MetricsCollector
	tracingCollector cookiehook.TracingCollector
}

// NewForwardingDecorator creates a ForwardingDecorator around delegate that reports observed calls to sink.
func NewForwardingDecorator(
	delegate cookiehook.CookieService,
	sink cookiehook.Sink,
	options ...Option,
) (*ForwardingDecorator, error) {

	if delegate == nil {
		return nil, cookiehook.ErrNilDelegate
	}

	if sink == nil {
		return nil, cookiehook.ErrNilSink
	}

	d := &ForwardingDecorator{
		delegate: delegate,
		sink:     sink,
		now:      time.Now,
		newID:    uuid.NewString,
	}

	for _, option := range options {
		if err := option(d); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// Unwrap returns the decorated cookie service.
func (d *ForwardingDecorator) Unwrap() cookiehook.CookieService {
	return d.delegate
}

// SetAcceptCookie forwards to the delegate.
func (d *ForwardingDecorator) SetAcceptCookie(accept bool) {
	d.delegate.SetAcceptCookie(accept)
}

// AcceptCookie forwards to the delegate.
func (d *ForwardingDecorator) AcceptCookie() bool {
	return d.delegate.AcceptCookie()
}

// SetAcceptThirdPartyCookies forwards to the delegate.
func (d *ForwardingDecorator) SetAcceptThirdPartyCookies(view cookiehook.View, accept bool) {
	d.delegate.SetAcceptThirdPartyCookies(view, accept)
}

// AcceptThirdPartyCookies forwards to the delegate.
func (d *ForwardingDecorator) AcceptThirdPartyCookies(view cookiehook.View) bool {
	return d.delegate.AcceptThirdPartyCookies(view)
}

// SetCookie reports the call to the sink, then forwards it to the delegate.
// The delegate's error is returned unchanged, sink failures are swallowed.
func (d *ForwardingDecorator) SetCookie(ctx context.Context, url string, value string) error {
	d.observe(ctx, operationSetCookie, url, value)

	return d.delegate.SetCookie(ctx, url, value)
}

// SetCookieAsync reports the call to the sink, then forwards it to the delegate.
// The callback is passed through as is, the delegate alone decides when to invoke it.
func (d *ForwardingDecorator) SetCookieAsync(
	ctx context.Context,
	url string,
	value string,
	callback cookiehook.ValueCallback[bool],
) {

	d.observe(ctx, operationSetCookieAsync, url, value)

	d.delegate.SetCookieAsync(ctx, url, value, callback)
}

// Cookie forwards to the delegate.
func (d *ForwardingDecorator) Cookie(ctx context.Context, url string) (string, error) {
	return d.delegate.Cookie(ctx, url)
}

// RemoveSessionCookie forwards to the delegate.
func (d *ForwardingDecorator) RemoveSessionCookie(ctx context.Context) error {
	return d.delegate.RemoveSessionCookie(ctx)
}

// RemoveSessionCookiesAsync forwards to the delegate.
func (d *ForwardingDecorator) RemoveSessionCookiesAsync(ctx context.Context, callback cookiehook.ValueCallback[bool]) {
	d.delegate.RemoveSessionCookiesAsync(ctx, callback)
}

// RemoveAllCookie forwards to the delegate.
func (d *ForwardingDecorator) RemoveAllCookie(ctx context.Context) error {
	return d.delegate.RemoveAllCookie(ctx)
}

// RemoveAllCookiesAsync forwards to the delegate.
func (d *ForwardingDecorator) RemoveAllCookiesAsync(ctx context.Context, callback cookiehook.ValueCallback[bool]) {
	d.delegate.RemoveAllCookiesAsync(ctx, callback)
}

// RemoveExpiredCookie forwards to the delegate.
func (d *ForwardingDecorator) RemoveExpiredCookie(ctx context.Context) error {
	return d.delegate.RemoveExpiredCookie(ctx)
}

// HasCookies forwards to the delegate.
func (d *ForwardingDecorator) HasCookies(ctx context.Context) (bool, error) {
	return d.delegate.HasCookies(ctx)
}

// Flush forwards to the delegate.
func (d *ForwardingDecorator) Flush(ctx context.Context) error {
	return d.delegate.Flush(ctx)
}

var _ cookiehook.CookieService = (*ForwardingDecorator)(nil)
