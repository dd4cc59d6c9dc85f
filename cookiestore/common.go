package cookiestore

import "errors"

var ErrInvalidURL = errors.New("invalid cookie url")
var ErrInvalidCookie = errors.New("invalid set-cookie value")
var ErrDomainMismatch = errors.New("cookie domain does not match url host")
var ErrCookiesDisabled = errors.New("accepting cookies is disabled")
