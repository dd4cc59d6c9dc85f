// Package memstore provides an in-memory cookiehook.CookieService.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/AntonStoeckl/cookie-interceptor-go/cookiehook"
	"github.com/AntonStoeckl/cookie-interceptor-go/cookiestore"
)

// Option defines a functional option for configuring a CookieStore.
type Option func(*CookieStore)

// WithClock replaces time.Now as the store's notion of the current time.
func WithClock(now func() time.Time) Option {
	return func(s *CookieStore) {
		if now != nil {
			s.now = now
		}
	}
}

// CookieStore is an in-memory cookiehook.CookieService. It is safe for concurrent use.
// The async variants complete before they return and invoke their callback synchronously.
type CookieStore struct {
	cookiestore.AcceptPolicy

	mu      sync.RWMutex
	entries map[string]cookiestore.Entry
	now     func() time.Time
}

// NewCookieStore creates an empty CookieStore.
func NewCookieStore(options ...Option) *CookieStore {
	s := &CookieStore{
		entries: make(map[string]cookiestore.Entry),
		now:     time.Now,
	}

	for _, option := range options {
		option(s)
	}

	return s
}

// SetCookie stores the cookie described by value for url.
// An already expired cookie removes the stored cookie with the same domain, path and name.
func (s *CookieStore) SetCookie(ctx context.Context, url, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if !s.AcceptCookie() {
		return cookiestore.ErrCookiesDisabled
	}

	now := s.now()

	entry, err := cookiestore.ParseEntry(url, value, now)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.Expired(now) {
		delete(s.entries, entry.Key())
		return nil
	}

	if existing, ok := s.entries[entry.Key()]; ok {
		entry.CreatedAt = existing.CreatedAt
	}

	s.entries[entry.Key()] = entry

	return nil
}

// SetCookieAsync stores the cookie and reports success to callback.
func (s *CookieStore) SetCookieAsync(ctx context.Context, url, value string, callback cookiehook.ValueCallback[bool]) {
	err := s.SetCookie(ctx, url, value)

	if callback != nil {
		callback(err == nil)
	}
}

// Cookie returns the Cookie header value for url, or "" if no cookie matches.
func (s *CookieStore) Cookie(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	u, err := cookiestore.ParseURL(url)
	if err != nil {
		return "", err
	}

	now := s.now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matching []cookiestore.Entry
	for _, entry := range s.entries {
		if !entry.Expired(now) && entry.Matches(u) {
			matching = append(matching, entry)
		}
	}

	return cookiestore.FormatCookieHeader(matching), nil
}

// RemoveSessionCookie removes every cookie without expiry.
func (s *CookieStore) RemoveSessionCookie(ctx context.Context) error {
	_, err := s.removeWhere(ctx, func(e cookiestore.Entry) bool { return e.Session() })

	return err
}

// RemoveSessionCookiesAsync removes every cookie without expiry and reports to callback whether any was removed.
func (s *CookieStore) RemoveSessionCookiesAsync(ctx context.Context, callback cookiehook.ValueCallback[bool]) {
	removed, err := s.removeWhere(ctx, func(e cookiestore.Entry) bool { return e.Session() })

	if callback != nil {
		callback(err == nil && removed > 0)
	}
}

// RemoveAllCookie removes every cookie.
func (s *CookieStore) RemoveAllCookie(ctx context.Context) error {
	_, err := s.removeWhere(ctx, func(cookiestore.Entry) bool { return true })

	return err
}

// RemoveAllCookiesAsync removes every cookie and reports to callback whether any was removed.
func (s *CookieStore) RemoveAllCookiesAsync(ctx context.Context, callback cookiehook.ValueCallback[bool]) {
	removed, err := s.removeWhere(ctx, func(cookiestore.Entry) bool { return true })

	if callback != nil {
		callback(err == nil && removed > 0)
	}
}

// RemoveExpiredCookie removes every cookie past its expiry.
func (s *CookieStore) RemoveExpiredCookie(ctx context.Context) error {
	now := s.now()
	_, err := s.removeWhere(ctx, func(e cookiestore.Entry) bool { return e.Expired(now) })

	return err
}

// HasCookies reports whether at least one unexpired cookie is stored.
func (s *CookieStore) HasCookies(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	now := s.now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, entry := range s.entries {
		if !entry.Expired(now) {
			return true, nil
		}
	}

	return false, nil
}

// Flush is a no-op, the store has no backing storage.
func (s *CookieStore) Flush(ctx context.Context) error {
	return ctx.Err()
}

// Len returns the number of stored entries, including expired ones not removed yet.
func (s *CookieStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

func (s *CookieStore) removeWhere(ctx context.Context, match func(cookiestore.Entry) bool) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, entry := range s.entries {
		if match(entry) {
			delete(s.entries, key)
			removed++
		}
	}

	return removed, nil
}

var _ cookiehook.CookieService = (*CookieStore)(nil)
