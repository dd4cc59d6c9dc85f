package singleton_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/cookie-interceptor-go/cookiehook"
	"github.com/AntonStoeckl/cookie-interceptor-go/cookiehook/singleton"
	"github.com/AntonStoeckl/cookie-interceptor-go/testutil/testdoubles"
)

func Test_Slot_Load_EmptySlot(t *testing.T) {
	slot := singleton.NewSlot(nil)

	provider, err := slot.Load()

	assert.Nil(t, provider)
	assert.ErrorIs(t, err, cookiehook.ErrSlotEmpty)
	assert.Nil(t, slot.Current())
}

func Test_Slot_StoreThenLoad(t *testing.T) {
	// arrange
	slot := singleton.NewSlot(testdoubles.NewProviderSpy(nil))
	replacement := testdoubles.NewProviderSpy(nil)

	// act
	err := slot.Store(replacement)

	// assert
	require.NoError(t, err)
	loaded, err := slot.Load()
	require.NoError(t, err)
	assert.Same(t, replacement, loaded)
	assert.Same(t, replacement, slot.Current())
}

func Test_Slot_Store_RejectsNil(t *testing.T) {
	original := testdoubles.NewProviderSpy(nil)
	slot := singleton.NewSlot(original)

	err := slot.Store(nil)

	assert.ErrorIs(t, err, singleton.ErrNilProvider)
	assert.Same(t, original, slot.Current())
}

func Test_Slot_Seal_RejectsFurtherWrites(t *testing.T) {
	original := testdoubles.NewProviderSpy(nil)
	slot := singleton.NewSlot(original)

	slot.Seal()
	err := slot.Store(testdoubles.NewProviderSpy(nil))

	assert.True(t, slot.Sealed())
	assert.ErrorIs(t, err, singleton.ErrSlotSealed)
	assert.Same(t, original, slot.Current())
}

func Test_Slot_ConcurrentReadersSeeAStoredProvider(t *testing.T) {
	// arrange
	first := testdoubles.NewProviderSpy(nil)
	second := testdoubles.NewProviderSpy(nil)
	slot := singleton.NewSlot(first)

	var wg sync.WaitGroup

	// act
	for i := 0; i < 50; i++ {
		wg.Add(2)

		go func() {
			defer wg.Done()

			current := slot.Current()
			assert.True(t, current == first || current == second)
		}()

		go func() {
			defer wg.Done()

			assert.NoError(t, slot.Store(second))
		}()
	}

	wg.Wait()

	// assert
	assert.Same(t, second, slot.Current())
}

func Test_Register_UsesDefaultSlot(t *testing.T) {
	provider := testdoubles.NewProviderSpy(nil)

	require.NoError(t, singleton.Register(provider))

	assert.Same(t, provider, singleton.Current())
	assert.Same(t, provider, singleton.Default.Current())
}
