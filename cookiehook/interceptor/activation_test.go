package interceptor_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/cookie-interceptor-go/cookiehook"
	"github.com/AntonStoeckl/cookie-interceptor-go/cookiehook/interceptor"
	"github.com/AntonStoeckl/cookie-interceptor-go/cookiehook/singleton"
	"github.com/AntonStoeckl/cookie-interceptor-go/testutil/testdoubles"
)

// slotStub is a cookiehook.SlotLocator with configurable failures.
type slotStub struct {
	provider cookiehook.Provider
	loadErr  error
	storeErr error
	stores   int
}

func (s *slotStub) Load() (cookiehook.Provider, error) {
	return s.provider, s.loadErr
}

func (s *slotStub) Store(provider cookiehook.Provider) error {
	s.stores++
	if s.storeErr != nil {
		return s.storeErr
	}

	s.provider = provider

	return nil
}

func Test_Install_ReplacesProviderInSlot(t *testing.T) {
	// arrange
	original := testdoubles.NewCookieServiceSpy(nil)
	provider := testdoubles.NewProviderSpy(original)
	slot := singleton.NewSlot(provider)
	sink := testdoubles.NewSinkSpy(nil)
	logger := testdoubles.NewLoggerSpy(true)

	// act
	proxy, err := interceptor.Install(slot, sink, interceptor.WithLogger(logger))

	// assert
	require.NoError(t, err)
	assert.Same(t, proxy, slot.Current())
	assert.Same(t, provider, proxy.Unwrap())
	assert.Same(t, original, proxy.Decorator().Unwrap())
	assert.True(t, logger.HasInfoLog("interceptor installed"))

	err = slot.Current().CookieService().SetCookie(context.Background(), "https://x.test", "a=1")
	require.NoError(t, err)
	assert.Len(t, sink.Records(), 1)
	assert.Equal(t, 1, original.CallCount())
}

func Test_Install_Twice_AddsOneObservationLayerPerInstall(t *testing.T) {
	// arrange
	original := testdoubles.NewCookieServiceSpy(nil)
	slot := singleton.NewSlot(testdoubles.NewProviderSpy(original))
	sink := testdoubles.NewSinkSpy(nil)

	// act
	first, err := interceptor.Install(slot, sink)
	require.NoError(t, err)
	second, err := interceptor.Install(slot, sink)
	require.NoError(t, err)

	err = slot.Current().CookieService().SetCookie(context.Background(), "https://x.test", "a=1")

	// assert
	require.NoError(t, err)
	assert.Same(t, first, second.Unwrap())
	assert.Len(t, sink.Records(), 2, "one record per installed layer")
	assert.Equal(t, 1, original.CallCount(), "the original still receives exactly one call")
}

func Test_Install_Failures_LeaveSlotUntouched(t *testing.T) {
	loadErr := errors.New("slot unreachable")
	storeErr := errors.New("slot is read-only")

	testCases := []struct {
		name      string
		slot      *slotStub
		sink      cookiehook.Sink
		options   []interceptor.Option
		wantCause error
	}{
		{
			name:      "slot cannot be read",
			slot:      &slotStub{loadErr: loadErr},
			sink:      testdoubles.NewSinkSpy(nil),
			wantCause: cookiehook.ErrSlotNotLocated,
		},
		{
			name:      "slot is empty",
			slot:      &slotStub{},
			sink:      testdoubles.NewSinkSpy(nil),
			wantCause: cookiehook.ErrSlotEmpty,
		},
		{
			name:      "provider has no cookie service",
			slot:      &slotStub{provider: testdoubles.NewProviderSpy(nil)},
			sink:      testdoubles.NewSinkSpy(nil),
			wantCause: cookiehook.ErrNoCookieService,
		},
		{
			name:      "nil sink",
			slot:      &slotStub{provider: testdoubles.NewProviderSpy(testdoubles.NewCookieServiceSpy(nil))},
			wantCause: cookiehook.ErrNilSink,
		},
		{
			name:      "invalid option",
			slot:      &slotStub{provider: testdoubles.NewProviderSpy(testdoubles.NewCookieServiceSpy(nil))},
			sink:      testdoubles.NewSinkSpy(nil),
			options:   []interceptor.Option{interceptor.WithTraceDepth(-5)},
			wantCause: cookiehook.ErrInvalidTraceDepth,
		},
		{
			name: "slot rejects the write",
			slot: &slotStub{
				provider: testdoubles.NewProviderSpy(testdoubles.NewCookieServiceSpy(nil)),
				storeErr: storeErr,
			},
			sink:      testdoubles.NewSinkSpy(nil),
			wantCause: cookiehook.ErrSlotWriteRejected,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			before := tc.slot.provider

			// act
			proxy, err := interceptor.Install(tc.slot, tc.sink, tc.options...)

			// assert
			assert.Nil(t, proxy)
			assert.ErrorIs(t, err, cookiehook.ErrActivationFailed)
			assert.ErrorIs(t, err, tc.wantCause)
			assert.Equal(t, before, tc.slot.provider, "the slot must keep the original provider")
		})
	}
}

func Test_Install_ReadFailure_KeepsUnderlyingError(t *testing.T) {
	loadErr := errors.New("slot unreachable")

	_, err := interceptor.Install(&slotStub{loadErr: loadErr}, testdoubles.NewSinkSpy(nil))

	assert.ErrorIs(t, err, loadErr)
}

func Test_Install_RejectsNilSlot(t *testing.T) {
	_, err := interceptor.Install(nil, testdoubles.NewSinkSpy(nil))

	assert.ErrorIs(t, err, cookiehook.ErrActivationFailed)
	assert.ErrorIs(t, err, cookiehook.ErrNilSlotLocator)
}

func Test_Install_SealedSlot_FailsAndKeepsOriginal(t *testing.T) {
	provider := testdoubles.NewProviderSpy(testdoubles.NewCookieServiceSpy(nil))
	slot := singleton.NewSlot(provider)
	slot.Seal()

	_, err := interceptor.Install(slot, testdoubles.NewSinkSpy(nil))

	assert.ErrorIs(t, err, cookiehook.ErrSlotWriteRejected)
	assert.ErrorIs(t, err, singleton.ErrSlotSealed)
	assert.Same(t, provider, slot.Current())
}
