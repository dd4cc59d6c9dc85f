package sinks

import "errors"

var ErrNilLogger = errors.New("nil logger supplied")
var ErrNilWriter = errors.New("nil writer supplied")
var ErrEncodingFailed = errors.New("encoding invocation record failed")
var ErrWriteFailed = errors.New("writing invocation record failed")
