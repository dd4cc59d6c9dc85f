package sinks

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/cookie-interceptor-go/cookiehook"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONLine is the serialized form of one InvocationRecord.
type JSONLine struct {
	ID             string   `json:"id"`
	Operation      string   `json:"operation"`
	Classification string   `json:"classification"`
	URL            string   `json:"url"`
	Value          string   `json:"value"`
	ObservedAt     string   `json:"observed_at"`
	Trace          []string `json:"trace,omitempty"`
}

// JSONLinesSink writes one JSON object per InvocationRecord, each terminated by a newline.
// Writes are serialized, so concurrent records never interleave.
type JSONLinesSink struct {
	w         io.Writer
	withTrace bool
	mu        sync.Mutex
}

// NewJSONLinesSink creates a JSONLinesSink writing to w. With withTrace the call-origin frames are included.
func NewJSONLinesSink(w io.Writer, withTrace bool) (*JSONLinesSink, error) {
	if w == nil {
		return nil, ErrNilWriter
	}

	return &JSONLinesSink{w: w, withTrace: withTrace}, nil
}

// Record implements cookiehook.Sink.
func (s *JSONLinesSink) Record(_ context.Context, record cookiehook.InvocationRecord) error {
	line := JSONLine{
		ID:             record.ID,
		Operation:      record.Operation,
		Classification: string(record.Classification),
		URL:            record.URL,
		Value:          record.Value,
		ObservedAt:     record.ObservedAt.UTC().Format(time.RFC3339Nano),
	}

	if s.withTrace {
		line.Trace = make([]string, 0, len(record.Trace))
		for _, frame := range record.Trace {
			line.Trace = append(line.Trace, frame.String())
		}
	}

	payload, err := json.Marshal(line)
	if err != nil {
		return errors.Join(ErrEncodingFailed, err)
	}

	payload = append(payload, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err = s.w.Write(payload); err != nil {
		return errors.Join(ErrWriteFailed, err)
	}

	return nil
}

var _ cookiehook.Sink = (*JSONLinesSink)(nil)
