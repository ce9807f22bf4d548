package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xsearch/config"
	"github.com/benz9527/xsearch/observability"
	"github.com/benz9527/xsearch/search"
	"github.com/benz9527/xsearch/xlog"
)

type configPath string

type banner struct {
	keyword string
}

func (b banner) JSON() string {
	return fmt.Sprintf(`{"app":"xsearch","keyword":%q}`, b.keyword)
}

func (b banner) PlainText() string {
	return "xsearch [" + b.keyword + "]"
}

func newCollection(cfg *config.Config, logger xlog.XLogger) *search.Collection {
	opts := []search.CollectionOption{
		search.WithCollectionLogger(logger.Named("collection")),
	}
	if cfg.Metrics.Exporter != config.ExporterNone {
		opts = append(opts, search.WithCollectionStats())
	}
	if cfg.Collection.RemoveBorrowPred {
		opts = append(opts, search.WithCollectionRemoveBorrowPred())
	}
	if cfg.Collection.RankRecompute {
		opts = append(opts, search.WithCollectionRankRecompute())
	}
	return search.NewCollection(cfg.Collection.Keyword, opts...)
}

func startMetrics(lc fx.Lifecycle, cfg *config.Config, logger xlog.XLogger) error {
	shutdown, err := observability.InitMeterProvider(cfg.Metrics)
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return shutdown(ctx)
		},
	})
	if cfg.Metrics.RuntimeStats {
		if err = observability.InitAppStats(context.Background(), cfg.Collection.Keyword); err != nil {
			return err
		}
	}
	logger.Debug("metrics initialized", zap.String("exporter", string(cfg.Metrics.Exporter)))
	return nil
}

func watchConfig(lc fx.Lifecycle, path configPath, logger xlog.XLogger) {
	if path == "" {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return config.Watch(ctx, string(path), logger.Named("config"), config.ApplyLogLevel(logger))
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

func runRanking(lc fx.Lifecycle, cfg *config.Config, logger xlog.XLogger, c *search.Collection) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if cfg.Collection.RecordsFile == "" {
				logger.Warn("no records file, the collection is empty")
				return nil
			}
			records, err := search.LoadRecordsFile(cfg.Collection.RecordsFile)
			if records == nil && err != nil {
				return err
			}
			for _, e := range multierr.Errors(err) {
				logger.ErrorStack(e, "record skipped", zap.String("file", cfg.Collection.RecordsFile))
			}
			for _, r := range records {
				if err := c.Add(r); err != nil {
					return err
				}
			}
			if err := c.Validate(); err != nil {
				return err
			}
			logger.Info("records indexed",
				zap.String("keyword", c.Keyword()),
				zap.Int64("len", c.Len()),
			)
			for _, r := range c.Top(cfg.Collection.Top) {
				logger.Info(r.String(), zap.Object("record", r))
			}
			return nil
		},
		OnStop: func(context.Context) error {
			logger.Debug("collection closed", zap.Int64("counter", c.Counter()))
			c.Release()
			return nil
		},
	})
}

func main() {
	path := flag.String("config", os.Getenv("XSEARCH_CONFIG"), "path to the YAML config file")
	watch := flag.Bool("watch", false, "keep running and reload the log level until interrupted")
	flag.Parse()

	cfg, err := config.Load(*path)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := xlog.NewXLogger(cfg.LoggerOptions()...)
	defer func() {
		_ = logger.Sync()
	}()
	logger.Banner(banner{keyword: cfg.Collection.Keyword})

	watchPath := configPath("")
	if *watch {
		watchPath = configPath(*path)
	}
	app := fx.New(
		fx.WithLogger(func() fxevent.Logger {
			return xlog.NewFxXLogger(logger)
		}),
		fx.Supply(cfg, watchPath),
		fx.Provide(
			func() xlog.XLogger { return logger },
			newCollection,
		),
		fx.Invoke(startMetrics, watchConfig, runRanking),
	)

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err = app.Start(startCtx); err != nil {
		logger.ErrorStack(err, "xsearch start failed")
		_ = logger.Sync()
		os.Exit(1)
	}
	if *watch {
		sig := <-app.Wait()
		logger.Info("xsearch stopping", zap.String("signal", sig.Signal.String()))
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	if err = app.Stop(stopCtx); err != nil {
		logger.ErrorStack(err, "xsearch stop failed")
	}
}
