package testdoubles

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/AntonStoeckl/cookie-interceptor-go/cookiehook"
)

// SpyDurationRecord represents a recorded duration metric call.
type SpyDurationRecord struct {
	Metric   string
	Duration time.Duration
	Labels   map[string]string
	Context  context.Context
}

// SpyCounterRecord represents a recorded counter increment call.
type SpyCounterRecord struct {
	Metric  string
	Labels  map[string]string
	Context context.Context
}

// SpyValueRecord represents a recorded value metric call.
type SpyValueRecord struct {
	Metric  string
	Value   float64
	Labels  map[string]string
	Context context.Context
}

// MetricsCollectorSpy is a cookiehook.MetricsCollector implementation that captures metrics calls for testing.
type MetricsCollectorSpy struct {
	durationRecords []SpyDurationRecord
	counterRecords  []SpyCounterRecord
	valueRecords    []SpyValueRecord
	mu              sync.Mutex
	recordCalls     bool
}

// NewMetricsCollectorSpy creates a new MetricsCollectorSpy.
// Set recordCalls to true to capture all metrics calls for inspection in tests.
func NewMetricsCollectorSpy(recordCalls bool) *MetricsCollectorSpy {
	return &MetricsCollectorSpy{recordCalls: recordCalls}
}

// RecordDuration implements cookiehook.MetricsCollector.
func (s *MetricsCollectorSpy) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	s.recordDuration(nil, metric, duration, labels)
}

// IncrementCounter implements cookiehook.MetricsCollector.
func (s *MetricsCollectorSpy) IncrementCounter(metric string, labels map[string]string) {
	s.incrementCounter(nil, metric, labels)
}

// RecordValue implements cookiehook.MetricsCollector.
func (s *MetricsCollectorSpy) RecordValue(metric string, value float64, labels map[string]string) {
	s.recordValue(nil, metric, value, labels)
}

func (s *MetricsCollectorSpy) recordDuration(ctx context.Context, metric string, d time.Duration, labels map[string]string) {
	if !s.recordCalls {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.durationRecords = append(s.durationRecords, SpyDurationRecord{
		Metric: metric, Duration: d, Labels: maps.Clone(labels), Context: ctx,
	})
}

func (s *MetricsCollectorSpy) incrementCounter(ctx context.Context, metric string, labels map[string]string) {
	if !s.recordCalls {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.counterRecords = append(s.counterRecords, SpyCounterRecord{
		Metric: metric, Labels: maps.Clone(labels), Context: ctx,
	})
}

func (s *MetricsCollectorSpy) recordValue(ctx context.Context, metric string, value float64, labels map[string]string) {
	if !s.recordCalls {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.valueRecords = append(s.valueRecords, SpyValueRecord{
		Metric: metric, Value: value, Labels: maps.Clone(labels), Context: ctx,
	})
}

// GetDurationRecords returns a copy of all captured duration records.
func (s *MetricsCollectorSpy) GetDurationRecords() []SpyDurationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]SpyDurationRecord(nil), s.durationRecords...)
}

// GetCounterRecords returns a copy of all captured counter records.
func (s *MetricsCollectorSpy) GetCounterRecords() []SpyCounterRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]SpyCounterRecord(nil), s.counterRecords...)
}

// GetValueRecords returns a copy of all captured value records.
func (s *MetricsCollectorSpy) GetValueRecords() []SpyValueRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]SpyValueRecord(nil), s.valueRecords...)
}

// CountCounterRecords returns how many counter records carry metric and all the given labels.
func (s *MetricsCollectorSpy) CountCounterRecords(metric string, labels map[string]string) int {
	n := 0
	for _, record := range s.GetCounterRecords() {
		if record.Metric == metric && hasLabels(record.Labels, labels) {
			n++
		}
	}

	return n
}

// CountDurationRecords returns how many duration records carry metric and all the given labels.
func (s *MetricsCollectorSpy) CountDurationRecords(metric string, labels map[string]string) int {
	n := 0
	for _, record := range s.GetDurationRecords() {
		if record.Metric == metric && hasLabels(record.Labels, labels) {
			n++
		}
	}

	return n
}

// Reset clears all captured metric records.
func (s *MetricsCollectorSpy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.durationRecords = s.durationRecords[:0]
	s.counterRecords = s.counterRecords[:0]
	s.valueRecords = s.valueRecords[:0]
}

func hasLabels(have, want map[string]string) bool {
	for k, v := range want {
		if have[k] != v {
			return false
		}
	}

	return true
}

// ContextualMetricsCollectorSpy additionally implements cookiehook.ContextualMetricsCollector,
// recording the context of every context-aware call.
type ContextualMetricsCollectorSpy struct {
	*MetricsCollectorSpy
}

// NewContextualMetricsCollectorSpy creates a new ContextualMetricsCollectorSpy.
func NewContextualMetricsCollectorSpy(recordCalls bool) *ContextualMetricsCollectorSpy {
	return &ContextualMetricsCollectorSpy{NewMetricsCollectorSpy(recordCalls)}
}

// RecordDurationContext implements cookiehook.ContextualMetricsCollector.
func (s *ContextualMetricsCollectorSpy) RecordDurationContext(
	ctx context.Context,
	metric string,
	duration time.Duration,
	labels map[string]string,
) {

	s.recordDuration(ctx, metric, duration, labels)
}

// IncrementCounterContext implements cookiehook.ContextualMetricsCollector.
func (s *ContextualMetricsCollectorSpy) IncrementCounterContext(ctx context.Context, metric string, labels map[string]string) {
	s.incrementCounter(ctx, metric, labels)
}

// RecordValueContext implements cookiehook.ContextualMetricsCollector.
func (s *ContextualMetricsCollectorSpy) RecordValueContext(
	ctx context.Context,
	metric string,
	value float64,
	labels map[string]string,
) {

	s.recordValue(ctx, metric, value, labels)
}

var (
	_ cookiehook.MetricsCollector           = (*MetricsCollectorSpy)(nil)
	_ cookiehook.ContextualMetricsCollector = (*ContextualMetricsCollectorSpy)(nil)
)
