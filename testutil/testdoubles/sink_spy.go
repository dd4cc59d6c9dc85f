package testdoubles

import (
	"context"
	"sync"

	"github.com/AntonStoeckl/cookie-interceptor-go/cookiehook"
)

// SinkSpy is a cookiehook.Sink that records every InvocationRecord.
// Set Err to make Record fail, or PanicWith to make it panic after recording.
type SinkSpy struct {
	records  []cookiehook.InvocationRecord
	contexts []context.Context
	journal  *CallJournal
	mu       sync.Mutex

	Err       error
	PanicWith any
}

// NewSinkSpy creates a SinkSpy. journal may be nil.
func NewSinkSpy(journal *CallJournal) *SinkSpy {
	return &SinkSpy{journal: journal}
}

// Record implements cookiehook.Sink.
func (s *SinkSpy) Record(ctx context.Context, record cookiehook.InvocationRecord) error {
	s.mu.Lock()
	s.records = append(s.records, record)
	s.contexts = append(s.contexts, ctx)
	s.mu.Unlock()

	s.journal.Append("sink:" + string(record.Classification))

	if s.PanicWith != nil {
		panic(s.PanicWith)
	}

	return s.Err
}

// Records returns a copy of all recorded InvocationRecords.
func (s *SinkSpy) Records() []cookiehook.InvocationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]cookiehook.InvocationRecord(nil), s.records...)
}

// Contexts returns the contexts passed to Record, in call order.
func (s *SinkSpy) Contexts() []context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]context.Context(nil), s.contexts...)
}

// Reset clears all recorded records.
func (s *SinkSpy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	s.contexts = nil
}

var _ cookiehook.Sink = (*SinkSpy)(nil)
