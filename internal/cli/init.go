// Package cli provides common initialization utilities for the command
// line entry point.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"fintrack/internal/chart"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

// SetupLogger initializes structured logging at the given level and sets it
// as the default logger. An unknown level falls back to info.
func SetupLogger(w io.Writer, level string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	logger := log.New(log.Config{
		Level:     lvl,
		Component: log.ComponentCLI,
		Output:    w,
	})
	log.SetDefault(logger)
	if err != nil {
		logger.Warn("Falling back to info log level", log.FieldError, err)
	}
	return logger
}

// LoadEnvFile loads the .env file for local development.
// A missing file is not an error.
func LoadEnvFile(paths ...string) {
	_ = godotenv.Load(paths...)
}

// LoadAndValidateConfig loads configuration from the environment and
// validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// InitLedger opens the database named by cfg and builds the ledger service
// on top of it. The caller closes the service.
func InitLedger(logger *log.Logger, cfg *config.Config) (*services.LedgerService, error) {
	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		logger.Error("Failed to open database", log.FieldError, err, log.FieldPath, cfg.DBPath)
		return nil, fmt.Errorf("open database: %w", err)
	}
	logger.Debug("Database opened", log.FieldPath, db.Path())

	chartOpts := chart.DefaultOptions()
	chartOpts.Width = cfg.ChartWidth
	chartOpts.Height = cfg.ChartHeight
	chartOpts.Currency = cfg.Currency

	return services.NewLedgerService(db, services.Options{
		CacheSize: cfg.ReportCacheSize,
		CacheTTL:  cfg.ReportCacheTTL,
		Chart:     chartOpts,
		Logger:    logger,
	}), nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM, so a long
// import stops between rows.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
