package observability

// https://opentelemetry.io/docs/languages/go/exporters/

import (
	"context"
	"io"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/sdk/metric"

	"github.com/benz9527/xsearch/config"
	"github.com/benz9527/xsearch/lib/infra"
)

// Shutdown flushes and stops the meter provider.
type Shutdown func(ctx context.Context) error

type exporterCfg struct {
	writer     io.Writer
	registerer promclient.Registerer
	timeout    time.Duration
}

type ExporterOption func(*exporterCfg)

// WithStdoutExporterWriter replaces the os.Stdout of the stdout exporter.
func WithStdoutExporterWriter(w io.Writer) ExporterOption {
	return func(cfg *exporterCfg) {
		cfg.writer = w
	}
}

// WithPrometheusRegisterer replaces the prometheus default registerer.
func WithPrometheusRegisterer(reg promclient.Registerer) ExporterOption {
	return func(cfg *exporterCfg) {
		cfg.registerer = reg
	}
}

// InitMeterProvider installs the global otel meter provider.
// The none exporter keeps the otel default no-op provider.
func InitMeterProvider(cfg config.MetricsConfig, opts ...ExporterOption) (Shutdown, error) {
	ecfg := &exporterCfg{
		timeout: 5 * time.Second,
	}
	for _, o := range opts {
		o(ecfg)
	}

	switch cfg.Exporter {
	case config.ExporterNone, "":
		return func(ctx context.Context) error { return nil }, nil
	case config.ExporterStdout:
		var sopts []stdoutmetric.Option
		if ecfg.writer != nil {
			sopts = append(sopts, stdoutmetric.WithWriter(ecfg.writer))
		}
		return newConsoleMetricsExporter(cfg.Interval, ecfg.timeout, sopts...)
	case config.ExporterPrometheus:
		var popts []prometheus.Option
		if ecfg.registerer != nil {
			popts = append(popts, prometheus.WithRegisterer(ecfg.registerer))
		}
		return newPrometheusMetricsExporter(popts...)
	default:
	}
	return nil, infra.NewErrorStack("[observability] unknown metrics exporter: " + string(cfg.Exporter))
}

// Serves for test/dev environment.
func newConsoleMetricsExporter(interval, timeout time.Duration, opts ...stdoutmetric.Option) (Shutdown, error) {
	exporter, err := stdoutmetric.New(opts...)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[observability] stdout exporter")
	}
	mp := metric.NewMeterProvider(metric.WithReader(metric.NewPeriodicReader(
		exporter,
		metric.WithInterval(interval),
		metric.WithTimeout(timeout),
	)))
	otel.SetMeterProvider(mp)
	return mp.Shutdown, nil
}

// Serves for the product environment and fetch stats metrics by HTTP.
func newPrometheusMetricsExporter(opts ...prometheus.Option) (Shutdown, error) {
	exporter, err := prometheus.New(opts...)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[observability] prometheus exporter")
	}
	mp := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(mp)
	return mp.Shutdown, nil
}
