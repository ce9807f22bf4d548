package config

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/benz9527/xsearch/lib/infra"
	"github.com/benz9527/xsearch/xlog"
)

// Watch reloads the config file on every write and calls onChange with
// the valid config. The invalid config is logged and dropped.
// The directory is watched instead of the file, because the editors
// replace the file by rename. Endless until the ctx is done.
func Watch(ctx context.Context, path string, logger xlog.XLogger, onChange func(*Config)) error {
	if path == "" {
		return infra.NewErrorStack("[config] empty path to watch")
	}
	path = filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return infra.WrapErrorStackWithMessage(err, "[config] failed to create file watcher")
	}
	if err = watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return infra.WrapErrorStackWithMessage(err, "[config] failed to add config directory to watcher")
	}

	go func() {
		defer func() {
			_ = watcher.Close()
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != path ||
					!(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
					continue
				}
				cfg, err := Load(path)
				if err == nil {
					err = cfg.Validate()
				}
				if err != nil {
					logger.ErrorStack(err, "config reload failed", zap.String("path", path))
					continue
				}
				logger.Info("config reloaded", zap.String("path", path))
				onChange(cfg)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Error(err, "config watcher", zap.String("path", path))
			}
		}
	}()
	return nil
}

// ApplyLogLevel is the onChange hook which updates the level only.
func ApplyLogLevel(logger xlog.XLogger) func(*Config) {
	return func(cfg *Config) {
		logger.IncreaseLogLevel(xlog.ParseLogLevel(cfg.Logging.Level))
	}
}
