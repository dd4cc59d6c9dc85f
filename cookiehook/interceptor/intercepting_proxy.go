package interceptor

import (
	"context"

	"github.com/AntonStoeckl/cookie-interceptor-go/cookiehook"
)

// InterceptingProxy implements cookiehook.Provider by forwarding every call to the original provider,
// except CookieService, which always returns the held ForwardingDecorator.
type InterceptingProxy struct {
	delegate cookiehook.Provider
	cookies  *ForwardingDecorator
}

// NewInterceptingProxy creates an InterceptingProxy around delegate that hands out cookies
// instead of the delegate's own cookie service.
func NewInterceptingProxy(delegate cookiehook.Provider, cookies *ForwardingDecorator) (*InterceptingProxy, error) {
	if delegate == nil {
		return nil, cookiehook.ErrNilDelegate
	}

	if cookies == nil {
		return nil, cookiehook.ErrNilDecorator
	}

	return &InterceptingProxy{
		delegate: delegate,
		cookies:  cookies,
	}, nil
}

// Unwrap returns the original provider.
func (p *InterceptingProxy) Unwrap() cookiehook.Provider {
	return p.delegate
}

// Decorator returns the held ForwardingDecorator.
func (p *InterceptingProxy) Decorator() *ForwardingDecorator {
	return p.cookies
}

// CookieService returns the held ForwardingDecorator, never the delegate's cookie service.
func (p *InterceptingProxy) CookieService() cookiehook.CookieService {
	return p.cookies
}

// Statics forwards to the delegate.
func (p *InterceptingProxy) Statics() cookiehook.Statics {
	return p.delegate.Statics()
}

// CreateView forwards to the delegate.
func (p *InterceptingProxy) CreateView(ctx context.Context, origin string) (cookiehook.View, error) {
	return p.delegate.CreateView(ctx, origin)
}

// ReleaseView forwards to the delegate.
func (p *InterceptingProxy) ReleaseView(ctx context.Context, view cookiehook.View) error {
	return p.delegate.ReleaseView(ctx, view)
}

// StorageOrigins forwards to the delegate.
func (p *InterceptingProxy) StorageOrigins(ctx context.Context) ([]string, error) {
	return p.delegate.StorageOrigins(ctx)
}

// DeleteOriginData forwards to the delegate.
func (p *InterceptingProxy) DeleteOriginData(ctx context.Context, origin string) error {
	return p.delegate.DeleteOriginData(ctx, origin)
}

var _ cookiehook.Provider = (*InterceptingProxy)(nil)
