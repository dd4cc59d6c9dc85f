package testdoubles

import (
	"context"
	"sync"

	"github.com/AntonStoeckl/cookie-interceptor-go/cookiehook"
)

// SpyLogRecord represents a recorded log call. Context is nil for calls through the plain Logger methods.
type SpyLogRecord struct {
	Level   string
	Message string
	Args    []any
	Context context.Context
}

// Arg returns the value logged under key, or nil.
func (r SpyLogRecord) Arg(key string) any {
	for i := 0; i+1 < len(r.Args); i += 2 {
		if k, ok := r.Args[i].(string); ok && k == key {
			return r.Args[i+1]
		}
	}

	return nil
}

type logRecorder struct {
	records     []SpyLogRecord
	mu          sync.Mutex
	recordCalls bool
}

func (r *logRecorder) add(ctx context.Context, level, msg string, args []any) {
	if !r.recordCalls {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = append(r.records, SpyLogRecord{
		Level:   level,
		Message: msg,
		Args:    append([]any(nil), args...),
		Context: ctx,
	})
}

func (r *logRecorder) byLevel(level string) []SpyLogRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []SpyLogRecord
	for _, record := range r.records {
		if record.Level == level {
			out = append(out, record)
		}
	}

	return out
}

func (r *logRecorder) has(level, message string) bool {
	for _, record := range r.byLevel(level) {
		if record.Message == message {
			return true
		}
	}

	return false
}

func (r *logRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.records)
}

func (r *logRecorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = r.records[:0]
}

// LoggerSpy is a cookiehook.Logger implementation that captures logging calls for testing.
type LoggerSpy struct {
	logRecorder
}

// NewLoggerSpy creates a new LoggerSpy instance.
func NewLoggerSpy(recordCalls bool) *LoggerSpy {
	return &LoggerSpy{logRecorder{recordCalls: recordCalls}}
}

// Debug implements cookiehook.Logger.
func (s *LoggerSpy) Debug(msg string, args ...any) { s.add(nil, "debug", msg, args) }

// Info implements cookiehook.Logger.
func (s *LoggerSpy) Info(msg string, args ...any) { s.add(nil, "info", msg, args) }

// Warn implements cookiehook.Logger.
func (s *LoggerSpy) Warn(msg string, args ...any) { s.add(nil, "warn", msg, args) }

// Error implements cookiehook.Logger.
func (s *LoggerSpy) Error(msg string, args ...any) { s.add(nil, "error", msg, args) }

// GetDebugRecords returns a copy of all debug log records.
func (s *LoggerSpy) GetDebugRecords() []SpyLogRecord { return s.byLevel("debug") }

// GetInfoRecords returns a copy of all info log records.
func (s *LoggerSpy) GetInfoRecords() []SpyLogRecord { return s.byLevel("info") }

// GetWarnRecords returns a copy of all warn log records.
func (s *LoggerSpy) GetWarnRecords() []SpyLogRecord { return s.byLevel("warn") }

// HasDebugLog checks if a debug log with the specified message exists.
func (s *LoggerSpy) HasDebugLog(message string) bool { return s.has("debug", message) }

// HasInfoLog checks if an info log with the specified message exists.
func (s *LoggerSpy) HasInfoLog(message string) bool { return s.has("info", message) }

// HasWarnLog checks if a warn log with the specified message exists.
func (s *LoggerSpy) HasWarnLog(message string) bool { return s.has("warn", message) }

// GetTotalRecordCount returns the total number of log records across all levels.
func (s *LoggerSpy) GetTotalRecordCount() int { return s.count() }

// Reset clears all recorded log calls.
func (s *LoggerSpy) Reset() { s.reset() }

// ContextualLoggerSpy is a cookiehook.ContextualLogger implementation that captures contextual logging calls.
type ContextualLoggerSpy struct {
	logRecorder
}

// NewContextualLoggerSpy creates a new ContextualLoggerSpy instance.
func NewContextualLoggerSpy(recordCalls bool) *ContextualLoggerSpy {
	return &ContextualLoggerSpy{logRecorder{recordCalls: recordCalls}}
}

// DebugContext implements cookiehook.ContextualLogger.
func (s *ContextualLoggerSpy) DebugContext(ctx context.Context, msg string, args ...any) {
	s.add(ctx, "debug", msg, args)
}

// InfoContext implements cookiehook.ContextualLogger.
func (s *ContextualLoggerSpy) InfoContext(ctx context.Context, msg string, args ...any) {
	s.add(ctx, "info", msg, args)
}

// WarnContext implements cookiehook.ContextualLogger.
func (s *ContextualLoggerSpy) WarnContext(ctx context.Context, msg string, args ...any) {
	s.add(ctx, "warn", msg, args)
}

// ErrorContext implements cookiehook.ContextualLogger.
func (s *ContextualLoggerSpy) ErrorContext(ctx context.Context, msg string, args ...any) {
	s.add(ctx, "error", msg, args)
}

// GetDebugRecords returns a copy of all debug log records.
func (s *ContextualLoggerSpy) GetDebugRecords() []SpyLogRecord { return s.byLevel("debug") }

// GetInfoRecords returns a copy of all info log records.
func (s *ContextualLoggerSpy) GetInfoRecords() []SpyLogRecord { return s.byLevel("info") }

// GetWarnRecords returns a copy of all warn log records.
func (s *ContextualLoggerSpy) GetWarnRecords() []SpyLogRecord { return s.byLevel("warn") }

// HasDebugLog checks if a debug log with the specified message exists.
func (s *ContextualLoggerSpy) HasDebugLog(message string) bool { return s.has("debug", message) }

// HasInfoLog checks if an info log with the specified message exists.
func (s *ContextualLoggerSpy) HasInfoLog(message string) bool { return s.has("info", message) }

// HasWarnLog checks if a warn log with the specified message exists.
func (s *ContextualLoggerSpy) HasWarnLog(message string) bool { return s.has("warn", message) }

// GetTotalRecordCount returns the total number of log records across all levels.
func (s *ContextualLoggerSpy) GetTotalRecordCount() int { return s.count() }

// Reset clears all recorded log calls.
func (s *ContextualLoggerSpy) Reset() { s.reset() }

var (
	_ cookiehook.Logger           = (*LoggerSpy)(nil)
	_ cookiehook.ContextualLogger = (*ContextualLoggerSpy)(nil)
)
