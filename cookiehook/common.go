package cookiehook

import "errors"

var ErrNilDelegate = errors.New("nil delegate supplied")
var ErrNilSink = errors.New("nil sink supplied")
var ErrNilDecorator = errors.New("nil forwarding decorator supplied")
var ErrNilSlotLocator = errors.New("nil slot locator supplied")
var ErrInvalidTraceDepth = errors.New("trace depth must not be negative")

var ErrActivationFailed = errors.New("interceptor activation failed")
var ErrSlotNotLocated = errors.New("provider slot could not be located")
var ErrSlotEmpty = errors.New("provider slot holds no provider")
var ErrSlotWriteRejected = errors.New("provider slot rejected the write")
var ErrNoCookieService = errors.New("provider returned no cookie service")

var ErrSinkFailed = errors.New("logging sink failed")
var ErrSinkPanicked = errors.New("logging sink panicked")
