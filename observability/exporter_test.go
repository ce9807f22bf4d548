package observability

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/benz9527/xsearch/config"
)

func TestInitMeterProvider_None(t *testing.T) {
	shutdown, err := InitMeterProvider(config.MetricsConfig{Exporter: config.ExporterNone})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	require.NoError(t, shutdown(context.Background()))
}

func TestInitMeterProvider_Unknown(t *testing.T) {
	shutdown, err := InitMeterProvider(config.MetricsConfig{Exporter: "influx"})
	require.Error(t, err)
	require.Nil(t, shutdown)
}

func TestInitMeterProvider_Stdout(t *testing.T) {
	buf := &bytes.Buffer{}
	shutdown, err := InitMeterProvider(
		config.MetricsConfig{Exporter: config.ExporterStdout, Interval: time.Hour},
		WithStdoutExporterWriter(buf),
	)
	require.NoError(t, err)

	counter, err := otel.Meter("xsearch/test").Int64Counter("xsearch.test.stdout")
	require.NoError(t, err)
	counter.Add(context.Background(), 3)

	// Shutdown collects and exports the last time.
	require.NoError(t, shutdown(context.Background()))
	require.Contains(t, buf.String(), "xsearch.test.stdout")
}

func TestInitMeterProvider_Prometheus(t *testing.T) {
	reg := promclient.NewRegistry()
	shutdown, err := InitMeterProvider(
		config.MetricsConfig{Exporter: config.ExporterPrometheus},
		WithPrometheusRegisterer(reg),
	)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, shutdown(context.Background()))
	}()

	counter, err := otel.Meter("xsearch/test").Int64Counter("xsearch.test.prom")
	require.NoError(t, err)
	counter.Add(context.Background(), 5)

	families, err := reg.Gather()
	require.NoError(t, err)
	found := false
	for _, f := range families {
		if strings.HasPrefix(f.GetName(), "xsearch_test_prom") {
			found = true
			require.Len(t, f.GetMetric(), 1)
			require.Equal(t, float64(5), f.GetMetric()[0].GetCounter().GetValue())
		}
	}
	require.True(t, found)
}

func TestInitAppStats(t *testing.T) {
	reg := promclient.NewRegistry()
	shutdown, err := InitMeterProvider(
		config.MetricsConfig{Exporter: config.ExporterPrometheus},
		WithPrometheusRegisterer(reg),
	)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, shutdown(context.Background()))
	}()

	require.NoError(t, InitAppStats(context.Background(), "test"))
	// Only the first call takes effect.
	require.NoError(t, InitAppStats(context.Background(), "test"))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	require.Contains(t, strings.Join(names, ","), "app_core_goroutines")
}

func TestAppStatsMeterName(t *testing.T) {
	testcases := []struct {
		name     string
		input    string
		expected string
	}{
		{"named", "cli", "xsearch/app/cli"},
		{"trimmed", "  cli ", "xsearch/app/cli"},
		{"empty", "", "xsearch/app/default"},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			require.Equal(tt, tc.expected, appStatsMeterName(tc.input))
		})
	}
}
