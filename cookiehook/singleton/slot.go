// Package singleton provides the process-wide registration point for the active cookiehook.Provider.
//
// A Slot replaces reaching into another component's private storage: the host registers its
// provider once, callers read it through Current, and interceptor.Install overwrites it
// through the cookiehook.SlotLocator methods Load and Store.
package singleton

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/AntonStoeckl/cookie-interceptor-go/cookiehook"
)

var ErrNilProvider = errors.New("nil provider supplied")
var ErrSlotSealed = errors.New("provider slot is sealed")

// Default is the process-wide provider slot.
var Default = NewSlot(nil)

// Slot holds one cookiehook.Provider.
// Reads are lock-free, writes are serialized and immediately visible to all goroutines.
type Slot struct {
	current atomic.Pointer[entry]
	sealed  atomic.Bool
	mu      sync.Mutex
}

type entry struct {
	provider cookiehook.Provider
}

// NewSlot creates a Slot holding initial, which may be nil.
func NewSlot(initial cookiehook.Provider) *Slot {
	s := &Slot{}
	if initial != nil {
		s.current.Store(&entry{provider: initial})
	}

	return s
}

// Load returns the held provider or cookiehook.ErrSlotEmpty.
func (s *Slot) Load() (cookiehook.Provider, error) {
	if p := s.Current(); p != nil {
		return p, nil
	}

	return nil, cookiehook.ErrSlotEmpty
}

// Store replaces the held provider.
// It fails with ErrNilProvider for nil and with ErrSlotSealed after Seal.
func (s *Slot) Store(provider cookiehook.Provider) error {
	if provider == nil {
		return ErrNilProvider
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sealed.Load() {
		return ErrSlotSealed
	}

	s.current.Store(&entry{provider: provider})

	return nil
}

// Current returns the held provider, or nil if none was stored yet.
func (s *Slot) Current() cookiehook.Provider {
	e := s.current.Load()
	if e == nil {
		return nil
	}

	return e.provider
}

// Seal makes every following Store fail.
func (s *Slot) Seal() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sealed.Store(true)
}

// Sealed reports whether Seal was called.
func (s *Slot) Sealed() bool {
	return s.sealed.Load()
}

// Register stores provider in the Default slot.
func Register(provider cookiehook.Provider) error {
	return Default.Store(provider)
}

// Current returns the provider held by the Default slot.
func Current() cookiehook.Provider {
	return Default.Current()
}

var _ cookiehook.SlotLocator = (*Slot)(nil)
