// Package cli holds the vanta command line and the start-up helpers shared
// by cmd/vanta, cmd/vanta-api and cmd/vanta-worker.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vanta/internal/backend"
	"vanta/internal/config"
	"vanta/internal/log"
)

// SetupLogger builds the process logger from cfg and installs it as the
// slog default.
func SetupLogger(cfg *config.Config, out io.Writer, component string) (*log.Logger, error) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := log.New(log.Config{
		Level:     level,
		Format:    cfg.LogFormat,
		Component: component,
		Output:    out,
	})
	log.SetDefault(logger)
	return logger, nil
}

// LoadAndValidateConfig loads configuration and validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// OpenBackend opens the configured medium. The caller owns Cleanup.
func OpenBackend(ctx context.Context, cfg *config.Config, logger *log.Logger) (*backend.BackendResult, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	return backend.NewFactory(logger).CreateBackend(ctx, bcfg)
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM, after
// cleanup has run with timeout as its deadline.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(context.Context)) context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", log.FieldOperation, log.OpShutdown, "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		cancel()
		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		}
	}()

	return ctx
}
