// Package cli provides initialization helpers shared by cmd/opsboard and cmd/opsboardctl.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"opsboard/internal/config"
	applog "opsboard/internal/log"
	"opsboard/internal/storage"
)

// SetupLogger initializes structured logging at the LOG_LEVEL level and makes it the
// default logger.
func SetupLogger(level string) *applog.Logger {
	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(level),
		Component: applog.ComponentApp,
		Output:    os.Stdout,
	})
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file (or the given files) for local development. Variables
// already set in the environment win. Errors are ignored since the file is optional.
func LoadEnvFile(paths ...string) {
	_ = godotenv.Load(paths...)
}

// LoadAndValidateConfig loads configuration and validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// OpenSettingsStore opens the SQLite settings store, running migrations first.
func OpenSettingsStore(logger *slog.Logger, dbPath string) (*storage.SQLiteStore, error) {
	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open settings store %s: %w", dbPath, err)
	}
	logger.Info("Settings store ready", "path", dbPath, "schema_version", store.SchemaVersion())
	return store, nil
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM. A second signal
// exits immediately.
func GracefulShutdown(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		sigChan := make(chan os.Signal, 2)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
			return
		}

		sig := <-sigChan
		logger.Warn("Second signal received, exiting", "signal", sig.String())
		os.Exit(1)
	}()

	return ctx, cancel
}
