package testdoubles

import (
	"context"
	"sync"

	"github.com/AntonStoeckl/cookie-interceptor-go/cookiehook"
)

// SpyView is a minimal cookiehook.View.
type SpyView string

// ID implements cookiehook.View.
func (v SpyView) ID() string {
	return string(v)
}

// ProviderSpy is a cookiehook.Provider that records every call.
type ProviderSpy struct {
	calls []string
	mu    sync.Mutex

	Cookies        cookiehook.CookieService
	StaticsValue   cookiehook.Statics
	View           cookiehook.View
	Origins        []string
	Err            error
	LastOrigin     string
	LastView       cookiehook.View
	CookieAccesses int
}

// NewProviderSpy creates a ProviderSpy whose CookieService accessor returns cookies.
func NewProviderSpy(cookies cookiehook.CookieService) *ProviderSpy {
	return &ProviderSpy{
		Cookies:      cookies,
		StaticsValue: cookiehook.Statics{UserAgent: "spy-agent/1.0", Version: "1.0.0"},
		View:         SpyView("view-1"),
	}
}

func (p *ProviderSpy) record(method string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls = append(p.calls, method)
}

// CookieService implements cookiehook.Provider.
func (p *ProviderSpy) CookieService() cookiehook.CookieService {
	p.record("CookieService")

	p.mu.Lock()
	p.CookieAccesses++
	p.mu.Unlock()

	return p.Cookies
}

// Statics implements cookiehook.Provider.
func (p *ProviderSpy) Statics() cookiehook.Statics {
	p.record("Statics")

	return p.StaticsValue
}

// CreateView implements cookiehook.Provider.
func (p *ProviderSpy) CreateView(_ context.Context, origin string) (cookiehook.View, error) {
	p.record("CreateView")
	p.LastOrigin = origin

	if p.Err != nil {
		return nil, p.Err
	}

	return p.View, nil
}

// ReleaseView implements cookiehook.Provider.
func (p *ProviderSpy) ReleaseView(_ context.Context, view cookiehook.View) error {
	p.record("ReleaseView")
	p.LastView = view

	return p.Err
}

// StorageOrigins implements cookiehook.Provider.
func (p *ProviderSpy) StorageOrigins(_ context.Context) ([]string, error) {
	p.record("StorageOrigins")

	return p.Origins, p.Err
}

// DeleteOriginData implements cookiehook.Provider.
func (p *ProviderSpy) DeleteOriginData(_ context.Context, origin string) error {
	p.record("DeleteOriginData")
	p.LastOrigin = origin

	return p.Err
}

// Calls returns a copy of all recorded method names.
func (p *ProviderSpy) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]string(nil), p.calls...)
}

var _ cookiehook.Provider = (*ProviderSpy)(nil)
