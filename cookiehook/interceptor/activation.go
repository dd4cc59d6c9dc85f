package interceptor

import (
	"context"
	"errors"
	"fmt"

	"github.com/AntonStoeckl/cookie-interceptor-go/cookiehook"
)

// Install activates interception on the provider held by slot.
//
// It reads the current provider, wraps its cookie service in a ForwardingDecorator configured
// with sink and options, wraps the provider in an InterceptingProxy and writes the proxy back.
// Every failure is joined with cookiehook.ErrActivationFailed and leaves the slot untouched,
// so the host keeps running with the original provider.
//
// Install is meant to run once per process. Calling it again wraps the installed proxy,
// which adds one more observation layer.
//
// The read and the write are not atomic as a pair: a caller fetching the provider between them
// still gets the original one, and two concurrent activations may lose one of the wraps.
func Install(slot cookiehook.SlotLocator, sink cookiehook.Sink, options ...Option) (*InterceptingProxy, error) {
	if slot == nil {
		return nil, errors.Join(cookiehook.ErrActivationFailed, cookiehook.ErrNilSlotLocator)
	}

	original, err := slot.Load()
	if err != nil {
		return nil, errors.Join(cookiehook.ErrActivationFailed, cookiehook.ErrSlotNotLocated, err)
	}

	if original == nil {
		return nil, errors.Join(cookiehook.ErrActivationFailed, cookiehook.ErrSlotEmpty)
	}

	cookies := original.CookieService()
	if cookies == nil {
		return nil, errors.Join(
			cookiehook.ErrActivationFailed,
			cookiehook.ErrNoCookieService,
			fmt.Errorf("provider type %T", original),
		)
	}

	decorator, err := NewForwardingDecorator(cookies, sink, options...)
	if err != nil {
		return nil, errors.Join(cookiehook.ErrActivationFailed, err)
	}

	proxy, err := NewInterceptingProxy(original, decorator)
	if err != nil {
		return nil, errors.Join(cookiehook.ErrActivationFailed, err)
	}

	if err = slot.Store(proxy); err != nil {
		return nil, errors.Join(cookiehook.ErrActivationFailed, cookiehook.ErrSlotWriteRejected, err)
	}

	decorator.logInstalled(
		context.Background(),
		"provider_type", fmt.Sprintf("%T", original),
		"cookie_service_type", fmt.Sprintf("%T", cookies),
	)

	return proxy, nil
}
