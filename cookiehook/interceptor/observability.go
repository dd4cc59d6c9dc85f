package interceptor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/AntonStoeckl/cookie-interceptor-go/cookiehook"
)

const (
	// observedCallerSkip skips observe and the intercepted method, so traces start at the call site.
	observedCallerSkip = 2

	metricInterceptedCalls = "cookiehook_intercepted_calls_total"
	metricSinkDuration     = "cookiehook_sink_duration_seconds"
	metricSinkFailures     = "cookiehook_sink_failures_total"

	spanNameObserve = "cookiehook.observe"

	logMsgCookieIntercepted = "cookie write intercepted"
	logMsgSinkFailed        = "logging sink failed, forwarding anyway"
	logMsgInstalled         = "interceptor installed"

	logAttrOperation      = "operation"
	logAttrClassification = "classification"
	logAttrInvocationID   = "invocation_id"
	logAttrURL            = "url"
	logAttrError          = "error"
	logAttrErrorType      = "error_type"
	logAttrDurationMS     = "duration_ms"

	labelOperation      = "operation"
	labelClassification = "classification"
	labelStatus         = "status"
	labelErrorType      = "error_type"

	statusSuccess = "success"
	statusError   = "error"

	errorTypeSinkError = "sink_error"
	errorTypeSinkPanic = "sink_panic"
)

// observe captures the call-origin trace and hands one InvocationRecord per classification to the sink.
// It must be called directly from the intercepted method.
// A panic raised by any observability collaborator ends the observation and is discarded,
// so the intercepted call is always forwarded.
func (d *ForwardingDecorator) observe(ctx context.Context, operation, url, value string) {
	defer func() { _ = recover() }()

	trace := cookiehook.CaptureCallTrace(observedCallerSkip, d.traceDepth)

	spanCtx, span := d.startObserveSpan(ctx, operation)

	id := d.newID()
	observedAt := d.now()
	failures := 0

	for _, classification := range cookiehook.Classify(value) {
		record := cookiehook.InvocationRecord{
			ID:             id,
			Operation:      operation,
			Classification: classification,
			URL:            url,
			Value:          value,
			Trace:          slices.Clone(trace),
			ObservedAt:     observedAt,
		}

		if !d.emit(spanCtx, record) {
			failures++
		}
	}

	d.finishObserveSpan(span, failures)
}

// emit hands a record to the sink and reports whether the sink accepted it.
func (d *ForwardingDecorator) emit(ctx context.Context, record cookiehook.InvocationRecord) bool {
	start := time.Now()
	err := d.recordSafely(ctx, record)
	duration := time.Since(start)

	d.recordInterceptedCallMetrics(ctx, record)

	if err != nil {
		d.recordSinkDurationMetrics(ctx, record.Operation, statusError, duration)
		d.recordSinkFailureMetrics(ctx, record.Operation, errorTypeOf(err))
		d.logSinkFailure(ctx, record, err)

		return false
	}

	d.recordSinkDurationMetrics(ctx, record.Operation, statusSuccess, duration)
	d.logInterception(ctx, record, duration)

	return true
}

// recordSafely calls the sink and converts both returned errors and panics into an error.
func (d *ForwardingDecorator) recordSafely(ctx context.Context, record cookiehook.InvocationRecord) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Join(cookiehook.ErrSinkPanicked, fmt.Errorf("%v", r))
		}
	}()

	if sinkErr := d.sink.Record(ctx, record); sinkErr != nil {
		return errors.Join(cookiehook.ErrSinkFailed, sinkErr)
	}

	return nil
}

func errorTypeOf(err error) string {
	if errors.Is(err, cookiehook.ErrSinkPanicked) {
		return errorTypeSinkPanic
	}

	return errorTypeSinkError
}

/*** Tracing ***/

func (d *ForwardingDecorator) startObserveSpan(ctx context.Context, operation string) (context.Context, cookiehook.SpanContext) {
	if d.tracingCollector == nil {
		return ctx, nil
	}

	return d.tracingCollector.StartSpan(ctx, spanNameObserve, map[string]string{labelOperation: operation})
}

func (d *ForwardingDecorator) finishObserveSpan(span cookiehook.SpanContext, failures int) {
	if d.tracingCollector == nil || span == nil {
		return
	}

	if failures > 0 {
		d.tracingCollector.FinishSpan(span, statusError, map[string]string{"sink_failures": fmt.Sprintf("%d", failures)})
		return
	}

	d.tracingCollector.FinishSpan(span, statusSuccess, nil)
}

/*** Metrics ***/

func (d *ForwardingDecorator) recordInterceptedCallMetrics(ctx context.Context, record cookiehook.InvocationRecord) {
	if d.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		labelOperation:      record.Operation,
		labelClassification: string(record.Classification),
	}

	if contextualCollector, ok := d.metricsCollector.(cookiehook.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metricInterceptedCalls, labels)
	} else {
		d.metricsCollector.IncrementCounter(metricInterceptedCalls, labels)
	}
}

func (d *ForwardingDecorator) recordSinkDurationMetrics(ctx context.Context, operation, status string, duration time.Duration) {
	if d.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		labelOperation: operation,
		labelStatus:    status,
	}

	if contextualCollector, ok := d.metricsCollector.(cookiehook.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metricSinkDuration, duration, labels)
	} else {
		d.metricsCollector.RecordDuration(metricSinkDuration, duration, labels)
	}
}

func (d *ForwardingDecorator) recordSinkFailureMetrics(ctx context.Context, operation, errorType string) {
	if d.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		labelOperation: operation,
		labelErrorType: errorType,
	}

	if contextualCollector, ok := d.metricsCollector.(cookiehook.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metricSinkFailures, labels)
	} else {
		d.metricsCollector.IncrementCounter(metricSinkFailures, labels)
	}
}

/*** Logging ***/

func (d *ForwardingDecorator) logInterception(ctx context.Context, record cookiehook.InvocationRecord, duration time.Duration) {
	args := []any{
		logAttrOperation, record.Operation,
		logAttrClassification, string(record.Classification),
		logAttrInvocationID, record.ID,
		logAttrURL, record.URL,
		logAttrDurationMS, toMilliseconds(duration),
	}

	if d.logger != nil {
		d.logger.Debug(logMsgCookieIntercepted, args...)
	}

	if d.contextualLogger != nil {
		d.contextualLogger.DebugContext(ctx, logMsgCookieIntercepted, args...)
	}
}

func (d *ForwardingDecorator) logSinkFailure(ctx context.Context, record cookiehook.InvocationRecord, err error) {
	args := []any{
		logAttrError, err.Error(),
		logAttrErrorType, errorTypeOf(err),
		logAttrOperation, record.Operation,
		logAttrClassification, string(record.Classification),
		logAttrInvocationID, record.ID,
	}

	if d.logger != nil {
		d.logger.Warn(logMsgSinkFailed, args...)
	}

	if d.contextualLogger != nil {
		d.contextualLogger.WarnContext(ctx, logMsgSinkFailed, args...)
	}
}

func (d *ForwardingDecorator) logInstalled(ctx context.Context, args ...any) {
	if d.logger != nil {
		d.logger.Info(logMsgInstalled, args...)
	}

	if d.contextualLogger != nil {
		d.contextualLogger.InfoContext(ctx, logMsgInstalled, args...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
