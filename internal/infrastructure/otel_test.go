package infrastructure

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wilbersoares/projeto-fatec/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestOTelInitialization(t *testing.T) {
	providers, err := InitializeOTel(nil, discardLogger())
	require.NoError(t, err)
	require.NotNil(t, providers)

	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.MeterProvider)
	assert.Nil(t, providers.TracerProvider)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(ctx))
}

func TestOTelConfigFrom(t *testing.T) {
	otelCfg := OTelConfigFrom(config.TelemetryConfig{
		ServiceName:    "dash",
		TracingEnabled: true,
		MetricsEnabled: false,
	}, "1.2.3")

	assert.Equal(t, "dash", otelCfg.ServiceName)
	assert.Equal(t, "1.2.3", otelCfg.ServiceVersion)
	assert.True(t, otelCfg.EnableTracing)
	assert.Equal(t, "stdout", otelCfg.TraceExporter)
	assert.False(t, otelCfg.EnableMetrics)
}

func TestBusinessMetricsExposedOnPrometheus(t *testing.T) {
	providers, err := InitializeOTel(DefaultOTelConfig(), discardLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	RecordDatasetLoad(ctx, metrics, "success", 150*time.Millisecond, 16291, map[string]int{"missing_year": 271})
	RecordRender(ctx, metrics, 3*time.Millisecond, true)
	RecordFilterAction(ctx, metrics, "peak_year", true)
	RecordExport(ctx, metrics, "csv")

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "dataset_loads_total")
	assert.Contains(t, body, "dashboard_no_data_total")
	assert.Contains(t, body, "dashboard_filter_actions_total")
}

func TestRecordHelpersTolerateNilMetrics(t *testing.T) {
	ctx := context.Background()
	assert.NotPanics(t, func() {
		RecordDatasetLoad(ctx, nil, "failure", time.Second, 0, nil)
		RecordRender(ctx, nil, time.Second, false)
		RecordFilterAction(ctx, nil, "clear", false)
		RecordExport(ctx, nil, "xlsx")
	})
}
