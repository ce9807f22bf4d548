// Package config loads the xsearch configuration from a YAML file with
// XSEARCH_* environment variable overrides.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/benz9527/xsearch/lib/infra"
	"github.com/benz9527/xsearch/xlog"
)

const envPrefix = "XSEARCH_"

type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Collection CollectionConfig `yaml:"collection"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type CollectionConfig struct {
	Keyword string `yaml:"keyword"`
	// RecordsFile is the YAML list of the scored records to index.
	RecordsFile      string `yaml:"recordsFile"`
	RemoveBorrowPred bool   `yaml:"removeBorrowPred"`
	RankRecompute    bool   `yaml:"rankRecompute"`
	// Top is the number of ranked records to print.
	Top int64 `yaml:"top"`
}

type ExporterType string

const (
	ExporterNone       ExporterType = "none"
	ExporterStdout     ExporterType = "stdout"
	ExporterPrometheus ExporterType = "prometheus"
)

type MetricsConfig struct {
	Exporter     ExporterType  `yaml:"exporter"`
	Interval     time.Duration `yaml:"interval"`
	RuntimeStats bool          `yaml:"runtimeStats"`
}

func defaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  xlog.LogLevelInfo.String(),
			Format: "json",
		},
		Collection: CollectionConfig{
			Keyword: "xsearch",
			Top:     10,
		},
		Metrics: MetricsConfig{
			Exporter: ExporterNone,
			Interval: 30 * time.Second,
		},
	}
}

// Load reads the YAML file if the path is not empty, then applies the
// environment variable overrides. The missing values keep the defaults.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, infra.WrapErrorStackWithMessage(err, "[config] read "+path)
		}
		if err = yaml.Unmarshal(data, cfg); err != nil {
			return nil, infra.WrapErrorStackWithMessage(err, "[config] parse "+path)
		}
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func applyEnvOverrides(cfg *Config) error {
	var merr error
	if v, ok := lookupEnv("LOGGING_LEVEL"); ok {
		cfg.Logging.Level = v
	}
	if v, ok := lookupEnv("LOGGING_FORMAT"); ok {
		cfg.Logging.Format = v
	}
	if v, ok := lookupEnv("COLLECTION_KEYWORD"); ok {
		cfg.Collection.Keyword = v
	}
	if v, ok := lookupEnv("COLLECTION_RECORDS_FILE"); ok {
		cfg.Collection.RecordsFile = v
	}
	if v, ok := lookupEnv("COLLECTION_REMOVE_BORROW_PRED"); ok {
		b, err := strconv.ParseBool(v)
		merr = multierr.Append(merr, err)
		cfg.Collection.RemoveBorrowPred = b
	}
	if v, ok := lookupEnv("COLLECTION_RANK_RECOMPUTE"); ok {
		b, err := strconv.ParseBool(v)
		merr = multierr.Append(merr, err)
		cfg.Collection.RankRecompute = b
	}
	if v, ok := lookupEnv("COLLECTION_TOP"); ok {
		top, err := strconv.ParseInt(v, 10, 64)
		merr = multierr.Append(merr, err)
		cfg.Collection.Top = top
	}
	if v, ok := lookupEnv("METRICS_EXPORTER"); ok {
		cfg.Metrics.Exporter = ExporterType(strings.ToLower(v))
	}
	if v, ok := lookupEnv("METRICS_INTERVAL"); ok {
		d, err := time.ParseDuration(v)
		merr = multierr.Append(merr, err)
		cfg.Metrics.Interval = d
	}
	if v, ok := lookupEnv("METRICS_RUNTIME_STATS"); ok {
		b, err := strconv.ParseBool(v)
		merr = multierr.Append(merr, err)
		cfg.Metrics.RuntimeStats = b
	}
	if merr != nil {
		return infra.WrapErrorStackWithMessage(merr, "[config] env overrides")
	}
	return nil
}

// Validate reports all invalid fields at once.
func (cfg *Config) Validate() error {
	var merr error
	switch strings.ToUpper(strings.TrimSpace(cfg.Logging.Level)) {
	case xlog.LogLevelDebug.String(), xlog.LogLevelInfo.String(),
		xlog.LogLevelWarn.String(), xlog.LogLevelError.String():
	default:
		merr = multierr.Append(merr, infra.NewErrorStack("[config] unknown logging level: "+cfg.Logging.Level))
	}
	if _, ok := xlog.ParseLogEncoder(cfg.Logging.Format); !ok {
		merr = multierr.Append(merr, infra.NewErrorStack("[config] unknown logging format: "+cfg.Logging.Format))
	}
	if strings.TrimSpace(cfg.Collection.Keyword) == "" {
		merr = multierr.Append(merr, infra.NewErrorStack("[config] empty collection keyword"))
	}
	if cfg.Collection.Top < 0 {
		merr = multierr.Append(merr, infra.NewErrorStack("[config] negative collection top"))
	}
	switch cfg.Metrics.Exporter {
	case ExporterNone, ExporterStdout, ExporterPrometheus:
	default:
		merr = multierr.Append(merr, infra.NewErrorStack("[config] unknown metrics exporter: "+string(cfg.Metrics.Exporter)))
	}
	if cfg.Metrics.Exporter == ExporterStdout && cfg.Metrics.Interval <= 0 {
		merr = multierr.Append(merr, infra.NewErrorStack("[config] non-positive metrics interval"))
	}
	return merr
}

// LoggerOptions converts the logging section to the xlog options.
func (cfg *Config) LoggerOptions() []xlog.XLoggerOption {
	enc, _ := xlog.ParseLogEncoder(cfg.Logging.Format)
	return []xlog.XLoggerOption{
		xlog.WithXLoggerLevel(xlog.LogLevel(cfg.Logging.Level)),
		xlog.WithXLoggerEncoder(enc),
	}
}
