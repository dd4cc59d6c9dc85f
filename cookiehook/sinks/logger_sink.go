package sinks

import (
	"context"

	"github.com/AntonStoeckl/cookie-interceptor-go/cookiehook"
)

const (
	logMsgClearCookie = "clear cookie"
	logMsgSetCookie   = "set cookie"
	logMsgCookieStack = "cookie stack"
)

// LoggerSinkOption defines a functional option for configuring a LoggerSink.
type LoggerSinkOption func(*LoggerSink)

// WithStack enables one debug line per call-origin frame after each "set cookie" line.
func WithStack(enabled bool) LoggerSinkOption {
	return func(s *LoggerSink) {
		s.withStack = enabled
	}
}

// LoggerSink reports InvocationRecords as structured log lines at info level.
// It never fails.
type LoggerSink struct {
	logger    cookiehook.ContextualLogger
	withStack bool
}

// NewLoggerSink creates a LoggerSink writing to logger. *slog.Logger satisfies cookiehook.ContextualLogger.
func NewLoggerSink(logger cookiehook.ContextualLogger, options ...LoggerSinkOption) (*LoggerSink, error) {
	if logger == nil {
		return nil, ErrNilLogger
	}

	s := &LoggerSink{logger: logger}
	for _, option := range options {
		option(s)
	}

	return s, nil
}

// NewLoggerSinkFromLogger creates a LoggerSink writing to a logger without context support.
func NewLoggerSinkFromLogger(logger cookiehook.Logger, options ...LoggerSinkOption) (*LoggerSink, error) {
	if logger == nil {
		return nil, ErrNilLogger
	}

	return NewLoggerSink(contextFreeLogger{logger}, options...)
}

// Record implements cookiehook.Sink.
func (s *LoggerSink) Record(ctx context.Context, record cookiehook.InvocationRecord) error {
	args := []any{
		"url", record.URL,
		"value", record.Value,
		"operation", record.Operation,
		"invocation_id", record.ID,
	}

	if record.Classification == cookiehook.ClassificationClear {
		s.logger.InfoContext(ctx, logMsgClearCookie, args...)
		return nil
	}

	s.logger.InfoContext(ctx, logMsgSetCookie, args...)

	if s.withStack {
		for i, frame := range record.Trace {
			s.logger.DebugContext(ctx, logMsgCookieStack,
				"invocation_id", record.ID,
				"depth", i,
				"frame", frame.String(),
			)
		}
	}

	return nil
}

type contextFreeLogger struct {
	logger cookiehook.Logger
}

func (l contextFreeLogger) DebugContext(_ context.Context, msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

func (l contextFreeLogger) InfoContext(_ context.Context, msg string, args ...any) {
	l.logger.Info(msg, args...)
}

func (l contextFreeLogger) WarnContext(_ context.Context, msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

func (l contextFreeLogger) ErrorContext(_ context.Context, msg string, args ...any) {
	l.logger.Error(msg, args...)
}

var _ cookiehook.Sink = (*LoggerSink)(nil)
