package webhost

import (
	"github.com/AntonStoeckl/cookie-interceptor-go/cookiehook"
)

// Option defines a functional option for configuring a Provider.
type Option func(*Provider) error

// WithStatics sets the static host information returned by Statics.
func WithStatics(statics cookiehook.Statics) Option {
	return func(p *Provider) error {
		p.statics = statics
		return nil
	}
}

// WithLogger sets the logger for the Provider.
//
// Debug level: view lifecycle and origin data deletion.
func WithLogger(logger cookiehook.Logger) Option {
	return func(p *Provider) error {
		p.logger = logger
		return nil
	}
}

// WithIDGenerator replaces the uuid based view id generator.
func WithIDGenerator(newID func() string) Option {
	return func(p *Provider) error {
		if newID != nil {
			p.newID = newID
		}

		return nil
	}
}
