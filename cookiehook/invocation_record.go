package cookiehook

import (
	"context"
	"strings"
	"time"
)

// Classification tells whether an intercepted cookie write sets or clears a cookie.
type Classification string

const (
	ClassificationSet   Classification = "set"
	ClassificationClear Classification = "clear"
)

// clearMarker marks a cookie value that assigns an empty value, e.g. "session=; Max-Age=0".
const clearMarker = "=;"

// Classify returns the classifications for a cookie value in emission order.
// A value containing "=;" is classified as clear first and then as set.
func Classify(value string) []Classification {
	if strings.Contains(value, clearMarker) {
		return []Classification{ClassificationClear, ClassificationSet}
	}

	return []Classification{ClassificationSet}
}

// InvocationRecord is the ephemeral value produced for one classification of one intercepted call.
// Both records of a "clear" call share the same ID.
type InvocationRecord struct {
	ID             string
	Operation      string
	Classification Classification
	URL            string
	Value          string
	Trace          []Frame
	ObservedAt     time.Time
}

// Sink receives InvocationRecords.
// Callers treat it as fire-and-forget: a returned error is reported but never propagated.
// Every record passed to Record owns its Trace slice; a sink may keep or modify it.
type Sink interface {
	Record(ctx context.Context, record InvocationRecord) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, record InvocationRecord) error

// Record calls f(ctx, record).
func (f SinkFunc) Record(ctx context.Context, record InvocationRecord) error {
	return f(ctx, record)
}
