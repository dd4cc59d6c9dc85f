package sinks

import (
	"context"
	"errors"

	"github.com/AntonStoeckl/cookie-interceptor-go/cookiehook"
)

// MultiSink hands every record to each of its sinks in order.
// All sinks are called even if some fail; their errors are joined.
type MultiSink struct {
	sinks []cookiehook.Sink
}

// NewMultiSink creates a MultiSink. It rejects nil sinks.
func NewMultiSink(sinks ...cookiehook.Sink) (*MultiSink, error) {
	for _, sink := range sinks {
		if sink == nil {
			return nil, cookiehook.ErrNilSink
		}
	}

	return &MultiSink{sinks: append([]cookiehook.Sink(nil), sinks...)}, nil
}

// Record implements cookiehook.Sink.
func (m *MultiSink) Record(ctx context.Context, record cookiehook.InvocationRecord) error {
	var errs []error

	for _, sink := range m.sinks {
		if err := sink.Record(ctx, record); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

var _ cookiehook.Sink = (*MultiSink)(nil)
