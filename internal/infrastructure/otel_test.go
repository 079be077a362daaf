package infrastructure

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"autonaver/internal/config"
)

func TestInitializeOTelDisabled(t *testing.T) {
	providers, err := InitializeOTel(config.TelemetryConfig{}, nil)
	require.NoError(t, err)

	assert.Nil(t, providers.MeterProvider)
	assert.Nil(t, providers.TracerProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.Tracer)
	assert.Nil(t, providers.PrometheusHTTP)
	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestInitializeOTelPrometheusServesMetrics(t *testing.T) {
	providers, err := InitializeOTel(config.TelemetryConfig{
		Enabled:        true,
		TraceExporter:  "none",
		MetricExporter: "prometheus",
		SampleRatio:    1,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = providers.Shutdown(ctx)
	})

	counter, err := providers.Meter.Int64Counter("license_test_total")
	require.NoError(t, err)
	counter.Add(context.Background(), 2)

	server := httptest.NewServer(providers.PrometheusHTTP)
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "license_test_total")
}

func TestInitializeOTelStdoutTracing(t *testing.T) {
	providers, err := InitializeOTel(config.TelemetryConfig{
		Enabled:        true,
		TraceExporter:  "stdout",
		MetricExporter: "none",
		SampleRatio:    1,
	}, nil)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	ctx, span := otel.Tracer("test").Start(context.Background(), "verify")
	defer span.End()

	assert.NotNil(t, providers.TracerProvider)
	assert.Len(t, TraceIDFromContext(ctx), 32)
}

func TestInitializeOTelRejectsUnknownExporter(t *testing.T) {
	_, err := InitializeOTel(config.TelemetryConfig{Enabled: true, TraceExporter: "zipkin"}, nil)
	assert.ErrorContains(t, err, "unsupported trace exporter")

	_, err = InitializeOTel(config.TelemetryConfig{Enabled: true, TraceExporter: "none", MetricExporter: "statsd"}, nil)
	assert.ErrorContains(t, err, "unsupported metric exporter")
}

func TestTraceIDFromContextWithoutSpan(t *testing.T) {
	assert.Empty(t, TraceIDFromContext(context.Background()))
}

func TestAddSpanEventWithoutSpan(t *testing.T) {
	assert.NotPanics(t, func() {
		AddSpanEvent(context.Background(), "license.verified", map[string]any{"status": "ACTIVE", "rows": 3})
	})
}
