package cookiehook

import "context"

// ValueCallback receives the asynchronous outcome of a cookie operation.
type ValueCallback[T any] func(T)

// View is the scope for per-view settings like third-party cookie acceptance.
type View interface {
	ID() string
}

// CookieService is the cookie-management operation set of a host application.
//
// Only SetCookie and SetCookieAsync are observed by the interceptor,
// all other operations are forwarded untouched.
type CookieService interface {
	SetAcceptCookie(accept bool)
	AcceptCookie() bool
	SetAcceptThirdPartyCookies(view View, accept bool)
	AcceptThirdPartyCookies(view View) bool

	SetCookie(ctx context.Context, url string, value string) error
	SetCookieAsync(ctx context.Context, url string, value string, callback ValueCallback[bool])
	Cookie(ctx context.Context, url string) (string, error)

	RemoveSessionCookie(ctx context.Context) error
	RemoveSessionCookiesAsync(ctx context.Context, callback ValueCallback[bool])
	RemoveAllCookie(ctx context.Context) error
	RemoveAllCookiesAsync(ctx context.Context, callback ValueCallback[bool])
	RemoveExpiredCookie(ctx context.Context) error

	HasCookies(ctx context.Context) (bool, error)
	Flush(ctx context.Context) error
}
