package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/roach88/atomstore/internal/collector"
	"github.com/roach88/atomstore/internal/config"
	"github.com/roach88/atomstore/internal/persist"
	"github.com/roach88/atomstore/internal/storage"
	"github.com/roach88/atomstore/internal/store"
)

// app is an opened store with its collector, built from the config file.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	registry  *prometheus.Registry
	db        *store.Store // nil for the file backend
	store     *storage.Store
	collector *collector.Collector
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// fail reports err through the formatter and returns it with an exit code.
func fail(f *OutputFormatter, exitCode int, errCode, message string, err error) error {
	_ = f.Error(errCode, fmt.Sprintf("%s: %v", message, err), nil)
	return WrapExitError(exitCode, message, err)
}

// newLogger logs to the command's stderr. --verbose overrides log_level.
func newLogger(opts *RootOptions, cfg *config.Config, cmd *cobra.Command) *slog.Logger {
	level, err := cfg.Level()
	if err != nil {
		level = slog.LevelInfo
	}
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler)
}

// commandContext returns the command's context, or Background when the
// command was executed without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func openApp(ctx context.Context, opts *RootOptions, cmd *cobra.Command, f *OutputFormatter) (*app, error) {
	cfg, err := loadConfig(opts.Config)
	if err != nil {
		return nil, fail(f, ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}
	cooldowns, err := cfg.KindCooldowns()
	if err != nil {
		return nil, fail(f, ExitCommandError, ErrCodeConfig, "invalid cooldowns", err)
	}

	a := &app{
		cfg:      cfg,
		logger:   newLogger(opts, cfg, cmd),
		registry: prometheus.NewRegistry(),
	}

	var (
		backend persist.Backend
		ledger  collector.Ledger
	)
	switch cfg.Backend {
	case config.BackendSqlite:
		a.logger.Debug("opening database", "path", cfg.SqlitePath)
		db, err := store.Open(cfg.SqlitePath)
		if err != nil {
			return nil, fail(f, ExitCommandError, ErrCodeBackend, "failed to open database", err)
		}
		a.db = db
		backend = db.Snapshots(store.DefaultSnapshotName)
		ledger = db
	default:
		backend = persist.FileBackend{Path: cfg.SnapshotPath}
	}

	a.store = storage.New(ctx, storage.Options{
		Backend:         backend,
		Logger:          a.logger,
		Profile:         cfg.Profile(),
		BuildID:         cfg.BuildID,
		SaveImmediately: cfg.SaveImmediately,
		UpdateSaveDelay: cfg.UpdateSaveDelay,
		PullSaveDelay:   cfg.PullSaveDelay,
		Registerer:      a.registry,
	})
	a.collector = collector.New(a.store, collector.Options{
		Logger:     a.logger,
		Debug:      cfg.Debug,
		Cooldown:   cfg.Cooldown,
		Cooldowns:  cooldowns,
		Ledger:     ledger,
		Registerer: a.registry,
	})
	return a, nil
}

// Close performs the store's final write and closes the database.
func (a *app) Close() error {
	err := a.store.Close()
	if a.db != nil {
		err = multierr.Append(err, a.db.Close())
	}
	return err
}

// closeApp is deferred by commands; the command result has already been
// reported, so close errors are only logged.
func closeApp(a *app) {
	if err := a.Close(); err != nil {
		a.logger.Error("error closing store", "error", err)
	}
}
