package webhost

import "errors"

var ErrNilCookieService = errors.New("nil cookie service supplied")
var ErrInvalidOrigin = errors.New("origin must be an absolute url with scheme and host")
var ErrNilView = errors.New("nil view supplied")
var ErrUnknownView = errors.New("view is not known to this host")
var ErrUnknownOrigin = errors.New("origin has no stored data")
