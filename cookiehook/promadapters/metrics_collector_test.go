package promadapters_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/cookie-interceptor-go/cookiehook/interceptor"
	"github.com/AntonStoeckl/cookie-interceptor-go/cookiehook/promadapters"
	"github.com/AntonStoeckl/cookie-interceptor-go/testutil/testdoubles"
)

func gatherFamily(t *testing.T, registry *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()

	families, err := registry.Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() == name {
			return family
		}
	}

	t.Fatalf("metric family %s not found", name)

	return nil
}

func Test_MetricsCollector_IncrementCounter(t *testing.T) {
	// arrange
	registry := prometheus.NewRegistry()
	collector := promadapters.NewMetricsCollector(registry)
	labels := map[string]string{"operation": "SetCookie", "classification": "set"}

	// act
	collector.IncrementCounter("cookiehook_intercepted_calls_total", labels)
	collector.IncrementCounter("cookiehook_intercepted_calls_total", labels)

	// assert
	family := gatherFamily(t, registry, "cookiehook_intercepted_calls_total")
	require.Len(t, family.GetMetric(), 1)
	assert.InDelta(t, 2.0, family.GetMetric()[0].GetCounter().GetValue(), 0.0001)

	labelPairs := family.GetMetric()[0].GetLabel()
	require.Len(t, labelPairs, 2)
	assert.Equal(t, "classification", labelPairs[0].GetName())
	assert.Equal(t, "set", labelPairs[0].GetValue())
}

func Test_MetricsCollector_RecordDuration(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := promadapters.NewMetricsCollector(registry)

	collector.RecordDuration("cookiehook_sink_duration_seconds", 250*time.Millisecond, map[string]string{"status": "success"})

	family := gatherFamily(t, registry, "cookiehook_sink_duration_seconds")
	require.Len(t, family.GetMetric(), 1)
	histogram := family.GetMetric()[0].GetHistogram()
	assert.Equal(t, uint64(1), histogram.GetSampleCount())
	assert.InDelta(t, 0.25, histogram.GetSampleSum(), 0.0001)
}

func Test_MetricsCollector_RecordValue(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := promadapters.NewMetricsCollector(registry)

	collector.RecordValue("cookiehook_stored_cookies", 3, nil)
	collector.RecordValue("cookiehook_stored_cookies", 5, nil)

	assertSeriesCount(t, registry, "cookiehook_stored_cookies", 1)

	family := gatherFamily(t, registry, "cookiehook_stored_cookies")
	assert.InDelta(t, 5.0, family.GetMetric()[0].GetGauge().GetValue(), 0.0001)
}

func Test_MetricsCollector_DropsCallsWithMismatchingLabels(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := promadapters.NewMetricsCollector(registry)

	collector.IncrementCounter("cookiehook_sink_failures_total", map[string]string{"error_type": "sink_error"})

	assert.NotPanics(t, func() {
		collector.IncrementCounter("cookiehook_sink_failures_total", map[string]string{"other": "x"})
	})
	assertSeriesCount(t, registry, "cookiehook_sink_failures_total", 1)
}

func Test_MetricsCollector_ReusesAlreadyRegisteredVector(t *testing.T) {
	// arrange
	registry := prometheus.NewRegistry()
	first := promadapters.NewMetricsCollector(registry)
	second := promadapters.NewMetricsCollector(registry)
	labels := map[string]string{"operation": "SetCookie"}

	// act
	first.IncrementCounter("cookiehook_intercepted_calls_total", labels)
	second.IncrementCounter("cookiehook_intercepted_calls_total", labels)

	// assert
	family := gatherFamily(t, registry, "cookiehook_intercepted_calls_total")
	require.Len(t, family.GetMetric(), 1)
	assert.InDelta(t, 2.0, family.GetMetric()[0].GetCounter().GetValue(), 0.0001)
}

func Test_MetricsCollector_WiredIntoForwardingDecorator(t *testing.T) {
	// arrange
	registry := prometheus.NewRegistry()
	decorator, err := interceptor.NewForwardingDecorator(
		testdoubles.NewCookieServiceSpy(nil),
		testdoubles.NewSinkSpy(nil),
		interceptor.WithMetrics(promadapters.NewMetricsCollector(registry)),
	)
	require.NoError(t, err)

	// act
	require.NoError(t, decorator.SetCookie(context.Background(), "https://x.test", "a=;"))

	// assert
	assertSeriesCount(t, registry, "cookiehook_intercepted_calls_total", 2)
	assertSeriesCount(t, registry, "cookiehook_sink_duration_seconds", 1)
	assertSeriesCount(t, registry, "cookiehook_sink_failures_total", 0)
}

func assertSeriesCount(t *testing.T, registry *prometheus.Registry, name string, expected int) {
	t.Helper()

	count, err := testutil.GatherAndCount(registry, name)
	require.NoError(t, err)
	assert.Equal(t, expected, count, name)
}
