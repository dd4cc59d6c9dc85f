package testdoubles

import (
	"context"
	"sync"

	"github.com/AntonStoeckl/cookie-interceptor-go/cookiehook"
)

// SpyCookieCall represents one recorded CookieService call.
type SpyCookieCall struct {
	Method      string
	Context     context.Context
	URL         string
	Value       string
	Accept      bool
	View        cookiehook.View
	HasCallback bool
}

// CookieServiceSpy is a cookiehook.CookieService that records every call and returns configurable results.
// Callbacks passed to the async methods are invoked synchronously with CallbackResult.
type CookieServiceSpy struct {
	calls   []SpyCookieCall
	journal *CallJournal
	mu      sync.Mutex

	Err            error
	PanicWith      any
	CookieValue    string
	HasCookiesFlag bool
	AcceptFlag     bool
	ThirdParty     bool
	CallbackResult bool
}

// NewCookieServiceSpy creates a CookieServiceSpy. journal may be nil.
func NewCookieServiceSpy(journal *CallJournal) *CookieServiceSpy {
	return &CookieServiceSpy{journal: journal, CallbackResult: true}
}

func (s *CookieServiceSpy) record(call SpyCookieCall) {
	s.mu.Lock()
	s.calls = append(s.calls, call)
	s.mu.Unlock()

	s.journal.Append("delegate:" + call.Method)

	if s.PanicWith != nil {
		panic(s.PanicWith)
	}
}

// SetAcceptCookie implements cookiehook.CookieService.
func (s *CookieServiceSpy) SetAcceptCookie(accept bool) {
	s.record(SpyCookieCall{Method: "SetAcceptCookie", Accept: accept})
}

// AcceptCookie implements cookiehook.CookieService.
func (s *CookieServiceSpy) AcceptCookie() bool {
	s.record(SpyCookieCall{Method: "AcceptCookie"})

	return s.AcceptFlag
}

// SetAcceptThirdPartyCookies implements cookiehook.CookieService.
func (s *CookieServiceSpy) SetAcceptThirdPartyCookies(view cookiehook.View, accept bool) {
	s.record(SpyCookieCall{Method: "SetAcceptThirdPartyCookies", View: view, Accept: accept})
}

// AcceptThirdPartyCookies implements cookiehook.CookieService.
func (s *CookieServiceSpy) AcceptThirdPartyCookies(view cookiehook.View) bool {
	s.record(SpyCookieCall{Method: "AcceptThirdPartyCookies", View: view})

	return s.ThirdParty
}

// SetCookie implements cookiehook.CookieService.
func (s *CookieServiceSpy) SetCookie(ctx context.Context, url, value string) error {
	s.record(SpyCookieCall{Method: "SetCookie", Context: ctx, URL: url, Value: value})

	return s.Err
}

// SetCookieAsync implements cookiehook.CookieService.
func (s *CookieServiceSpy) SetCookieAsync(
	ctx context.Context,
	url, value string,
	callback cookiehook.ValueCallback[bool],
) {

	s.record(SpyCookieCall{Method: "SetCookieAsync", Context: ctx, URL: url, Value: value, HasCallback: callback != nil})

	if callback != nil {
		callback(s.CallbackResult)
	}
}

// Cookie implements cookiehook.CookieService.
func (s *CookieServiceSpy) Cookie(ctx context.Context, url string) (string, error) {
	s.record(SpyCookieCall{Method: "Cookie", Context: ctx, URL: url})

	return s.CookieValue, s.Err
}

// RemoveSessionCookie implements cookiehook.CookieService.
func (s *CookieServiceSpy) RemoveSessionCookie(ctx context.Context) error {
	s.record(SpyCookieCall{Method: "RemoveSessionCookie", Context: ctx})

	return s.Err
}

// RemoveSessionCookiesAsync implements cookiehook.CookieService.
func (s *CookieServiceSpy) RemoveSessionCookiesAsync(ctx context.Context, callback cookiehook.ValueCallback[bool]) {
	s.record(SpyCookieCall{Method: "RemoveSessionCookiesAsync", Context: ctx, HasCallback: callback != nil})

	if callback != nil {
		callback(s.CallbackResult)
	}
}

// RemoveAllCookie implements cookiehook.CookieService.
func (s *CookieServiceSpy) RemoveAllCookie(ctx context.Context) error {
	s.record(SpyCookieCall{Method: "RemoveAllCookie", Context: ctx})

	return s.Err
}

// RemoveAllCookiesAsync implements cookiehook.CookieService.
func (s *CookieServiceSpy) RemoveAllCookiesAsync(ctx context.Context, callback cookiehook.ValueCallback[bool]) {
	s.record(SpyCookieCall{Method: "RemoveAllCookiesAsync", Context: ctx, HasCallback: callback != nil})

	if callback != nil {
		callback(s.CallbackResult)
	}
}

// RemoveExpiredCookie implements cookiehook.CookieService.
func (s *CookieServiceSpy) RemoveExpiredCookie(ctx context.Context) error {
	s.record(SpyCookieCall{Method: "RemoveExpiredCookie", Context: ctx})

	return s.Err
}

// HasCookies implements cookiehook.CookieService.
func (s *CookieServiceSpy) HasCookies(ctx context.Context) (bool, error) {
	s.record(SpyCookieCall{Method: "HasCookies", Context: ctx})

	return s.HasCookiesFlag, s.Err
}

// Flush implements cookiehook.CookieService.
func (s *CookieServiceSpy) Flush(ctx context.Context) error {
	s.record(SpyCookieCall{Method: "Flush", Context: ctx})

	return s.Err
}

// Calls returns a copy of all recorded calls.
func (s *CookieServiceSpy) Calls() []SpyCookieCall {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]SpyCookieCall(nil), s.calls...)
}

// CallCount returns the number of recorded calls.
func (s *CookieServiceSpy) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.calls)
}

var _ cookiehook.CookieService = (*CookieServiceSpy)(nil)
