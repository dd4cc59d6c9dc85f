package cookiestore

import (
	"sync"

	"github.com/AntonStoeckl/cookie-interceptor-go/cookiehook"
)

// AcceptPolicy holds the accept-cookie flag and the per-view third-party flags.
// Accepting cookies is enabled by default, third-party cookies are disabled by default.
// Embed it to provide the four flag methods of cookiehook.CookieService.
type AcceptPolicy struct {
	mu         sync.RWMutex
	rejectAll  bool
	thirdParty map[string]bool
}

// SetAcceptCookie sets whether cookies may be stored.
func (p *AcceptPolicy) SetAcceptCookie(accept bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.rejectAll = !accept
}

// AcceptCookie reports whether cookies may be stored.
func (p *AcceptPolicy) AcceptCookie() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return !p.rejectAll
}

// SetAcceptThirdPartyCookies sets the third-party flag of view.
func (p *AcceptPolicy) SetAcceptThirdPartyCookies(view cookiehook.View, accept bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.thirdParty == nil {
		p.thirdParty = make(map[string]bool)
	}

	p.thirdParty[viewID(view)] = accept
}

// AcceptThirdPartyCookies reports the third-party flag of view.
func (p *AcceptPolicy) AcceptThirdPartyCookies(view cookiehook.View) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.thirdParty[viewID(view)]
}

func viewID(view cookiehook.View) string {
	if view == nil {
		return ""
	}

	return view.ID()
}
