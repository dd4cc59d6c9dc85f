package postgresstore

import (
	"regexp"
	"time"

	"github.com/AntonStoeckl/cookie-interceptor-go/cookiehook"
)

var validTableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// Option defines a functional option for configuring a CookieStore.
type Option func(*CookieStore) error

// WithTableName sets the cookie table name. It must be a plain PostgreSQL identifier.
func WithTableName(tableName string) Option {
	return func(s *CookieStore) error {
		if tableName == "" {
			return ErrEmptyTableName
		}

		if !validTableName.MatchString(tableName) {
			return ErrInvalidTableName
		}

		s.tableName = tableName

		return nil
	}
}

// WithLogger sets the logger for the CookieStore.
//
// Debug level: SQL statements with execution timing
// Error level: failed statements.
func WithLogger(logger cookiehook.Logger) Option {
	return func(s *CookieStore) error {
		s.logger = logger
		return nil
	}
}

// WithClock replaces time.Now as the store's notion of the current time.
func WithClock(now func() time.Time) Option {
	return func(s *CookieStore) error {
		if now != nil {
			s.now = now
		}

		return nil
	}
}
