package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // database/sql driver "postgres"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/AntonStoeckl/cookie-interceptor-go/cookiehook"
	"github.com/AntonStoeckl/cookie-interceptor-go/cookiehook/interceptor"
	"github.com/AntonStoeckl/cookie-interceptor-go/cookiehook/oteladapters"
	"github.com/AntonStoeckl/cookie-interceptor-go/cookiehook/promadapters"
	"github.com/AntonStoeckl/cookie-interceptor-go/cookiehook/singleton"
	"github.com/AntonStoeckl/cookie-interceptor-go/cookiehook/sinks"
	"github.com/AntonStoeckl/cookie-interceptor-go/cookiestore/memstore"
	"github.com/AntonStoeckl/cookie-interceptor-go/cookiestore/postgresstore"
	"github.com/AntonStoeckl/cookie-interceptor-go/webhost"
)

const (
	driverPostgres = "postgres"
	tracerName     = "github.com/AntonStoeckl/cookie-interceptor-go/cmd/cookietap"
)

// host is a booted cookietap process: the registered provider with interception installed.
type host struct {
	logger      *slog.Logger
	slot        *singleton.Slot
	provider    *webhost.Provider
	proxy       *interceptor.InterceptingProxy
	registry    *prometheus.Registry
	meterReader sdkmetric.Reader
	spans       *spanCounter
	closers     []func()
}

// bootHost builds the cookie store, registers a webhost.Provider in slot and installs interception.
// Sink output goes to out, log output to logOut.
func bootHost(ctx context.Context, cfg Config, slot *singleton.Slot, out, logOut io.Writer) (*host, error) {
	logger, interceptorLogger, err := newLoggers(cfg.Log, logOut)
	if err != nil {
		return nil, err
	}

	h := &host{logger: logger, slot: slot}

	cookies, err := h.newCookieService(ctx, cfg.Store)
	if err != nil {
		h.close()
		return nil, err
	}

	h.provider, err = webhost.NewProvider(cookies, webhost.WithLogger(logger))
	if err != nil {
		h.close()
		return nil, err
	}

	if err = slot.Store(h.provider); err != nil {
		h.close()
		return nil, err
	}

	sink, err := newSink(cfg.Sink, logger, out)
	if err != nil {
		h.close()
		return nil, err
	}

	options := []interceptor.Option{
		interceptor.WithContextualLogger(interceptorLogger),
		interceptor.WithTraceDepth(cfg.Sink.TraceDepth),
	}

	if cfg.Metrics.Enabled {
		options = append(options, interceptor.WithMetrics(h.newMetricsCollector(cfg.Metrics)))
	}

	if cfg.Tracing.Enabled {
		h.spans = newSpanCounter()
		provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(h.spans))
		h.closers = append(h.closers, func() { _ = provider.Shutdown(context.Background()) })
		options = append(options, interceptor.WithTracing(oteladapters.NewTracingCollector(provider.Tracer(tracerName))))
	}

	h.proxy, err = interceptor.Install(slot, sink, options...)
	if err != nil {
		h.close()
		return nil, err
	}

	return h, nil
}

func (h *host) newMetricsCollector(cfg MetricsConfig) cookiehook.MetricsCollector {
	if cfg.Backend == metricsBackendOTel {
		reader := sdkmetric.NewManualReader()
		provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		h.meterReader = reader
		h.closers = append(h.closers, func() { _ = provider.Shutdown(context.Background()) })

		return oteladapters.NewMetricsCollector(provider.Meter(tracerName))
	}

	h.registry = prometheus.NewRegistry()

	return promadapters.NewMetricsCollector(h.registry)
}

func (h *host) newCookieService(ctx context.Context, cfg StoreConfig) (cookiehook.CookieService, error) {
	if cfg.Type == storeMemory {
		return memstore.NewCookieStore(), nil
	}

	options := []postgresstore.Option{
		postgresstore.WithTableName(cfg.Postgres.Table),
		postgresstore.WithLogger(h.logger),
	}

	var store *postgresstore.CookieStore
	var err error

	switch cfg.Postgres.Adapter {
	case adapterSQL:
		var db *sql.DB
		if db, err = sql.Open(driverPostgres, cfg.Postgres.DSN); err != nil {
			return nil, err
		}
		h.closers = append(h.closers, func() { _ = db.Close() })
		store, err = postgresstore.NewCookieStoreFromSQLDB(db, options...)

	case adapterSQLX:
		var db *sqlx.DB
		if db, err = sqlx.Open(driverPostgres, cfg.Postgres.DSN); err != nil {
			return nil, err
		}
		h.closers = append(h.closers, func() { _ = db.Close() })
		store, err = postgresstore.NewCookieStoreFromSQLX(db, options...)

	default:
		var pool *pgxpool.Pool
		if pool, err = pgxpool.New(ctx, cfg.Postgres.DSN); err != nil {
			return nil, err
		}
		h.closers = append(h.closers, pool.Close)
		store, err = postgresstore.NewCookieStoreFromPGXPool(pool, options...)
	}

	if err != nil {
		return nil, err
	}

	if err = store.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

func (h *host) close() {
	for i := len(h.closers) - 1; i >= 0; i-- {
		h.closers[i]()
	}

	h.closers = nil
}

// newLoggers returns the host logger and the interceptor's contextual logger, both writing to w.
// With the otel format both go through the OpenTelemetry logs API.
func newLoggers(cfg LogConfig, w io.Writer) (*slog.Logger, cookiehook.ContextualLogger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	var handler slog.Handler
	handlerOptions := &slog.HandlerOptions{Level: level}

	switch cfg.Format {
	case logFormatOTel:
		provider := lineLoggerProvider{logger: newLineLogger(w, level)}
		logger := slog.New(otelslog.NewHandler(tracerName, otelslog.WithLoggerProvider(provider)))

		return logger, oteladapters.NewOTelLogger(provider.Logger(tracerName)), nil

	case logFormatJSON:
		handler = slog.NewJSONHandler(w, handlerOptions)

	default:
		handler = slog.NewTextHandler(w, handlerOptions)
	}

	return slog.New(handler), oteladapters.NewSlogBridgeLoggerWithHandler(handler), nil
}

func parseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return 0, fmt.Errorf("log.level %q: %w", level, err)
	}

	return l, nil
}

func newSink(cfg SinkConfig, logger *slog.Logger, out io.Writer) (cookiehook.Sink, error) {
	switch cfg.Format {
	case sinkFormatJSONL:
		return sinks.NewJSONLinesSink(out, cfg.Stack)

	case sinkFormatBoth:
		logSink, err := sinks.NewLoggerSink(logger, sinks.WithStack(cfg.Stack))
		if err != nil {
			return nil, err
		}

		jsonSink, err := sinks.NewJSONLinesSink(out, cfg.Stack)
		if err != nil {
			return nil, err
		}

		return sinks.NewMultiSink(logSink, jsonSink)

	default:
		return sinks.NewLoggerSink(logger, sinks.WithStack(cfg.Stack))
	}
}

// writeMetricsSummary prints every gathered series as "name{labels} value".
// Histograms print their sample count.
func writeMetricsSummary(w io.Writer, registry *prometheus.Registry) error {
	families, err := registry.Gather()
	if err != nil {
		return err
	}

	for _, family := range families {
		for _, m := range family.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, pair := range m.GetLabel() {
				labels = append(labels, pair.GetName()+"="+pair.GetValue())
			}

			var value string
			switch {
			case m.GetCounter() != nil:
				value = fmt.Sprintf("%g", m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				value = fmt.Sprintf("count=%d", m.GetHistogram().GetSampleCount())
			case m.GetGauge() != nil:
				value = fmt.Sprintf("%g", m.GetGauge().GetValue())
			default:
				continue
			}

			if _, err = fmt.Fprintf(w, "%s{%s} %s\n", family.GetName(), strings.Join(labels, ","), value); err != nil {
				return err
			}
		}
	}

	return nil
}

// spanCounter is a span processor counting ended spans by name and status code.
type spanCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func newSpanCounter() *spanCounter {
	return &spanCounter{counts: make(map[string]int)}
}

func (c *spanCounter) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

func (c *spanCounter) OnEnd(span sdktrace.ReadOnlySpan) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.counts[span.Name()+" "+strings.ToLower(span.Status().Code.String())]++
}

func (c *spanCounter) Shutdown(context.Context) error { return nil }

func (c *spanCounter) ForceFlush(context.Context) error { return nil }

func (c *spanCounter) writeSummary(w io.Writer) error {
	c.mu.Lock()
	keys := make([]string, 0, len(c.counts))
	for key := range c.counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		lines = append(lines, fmt.Sprintf("span %s %d", key, c.counts[key]))
	}
	c.mu.Unlock()

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	return nil
}

func (h *host) writeSummaries(ctx context.Context, w io.Writer) error {
	var errs []error

	if h.registry != nil {
		errs = append(errs, writeMetricsSummary(w, h.registry))
	}

	if h.meterReader != nil {
		errs = append(errs, writeOTelMetricsSummary(ctx, w, h.meterReader))
	}

	if h.spans != nil {
		errs = append(errs, h.spans.writeSummary(w))
	}

	return errors.Join(errs...)
}

var _ sdktrace.SpanProcessor = (*spanCounter)(nil)
