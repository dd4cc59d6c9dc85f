package cookiehook

import "context"

// Statics holds static information about the host platform.
type Statics struct {
	UserAgent string
	Version   string
}

// Provider is the process-wide host interface.
// CookieService is the designated accessor the interceptor overrides.
type Provider interface {
	CookieService() CookieService
	Statics() Statics
	CreateView(ctx context.Context, origin string) (View, error)
	ReleaseView(ctx context.Context, view View) error
	StorageOrigins(ctx context.Context) ([]string, error)
	DeleteOriginData(ctx context.Context, origin string) error
}

// SlotLocator reads and overwrites the process-wide Provider registration point.
type SlotLocator interface {
	Load() (Provider, error)
	Store(provider Provider) error
}
