// Package webhost provides a reference cookiehook.Provider: a minimal host platform
// that owns a CookieService, hands out views per origin and keeps track of
// the origins it has stored data for.
//
// It is the Provider the cookietap command registers in the singleton slot before
// the interceptor is installed.
package webhost
