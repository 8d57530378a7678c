// Package cli provides common CLI initialization utilities shared by
// cmd/haushalt, cmd/haushalt-worker and cmd/haushalt-shell.
package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"haushalt/internal/config"
	"haushalt/internal/log"
)

// SetupLogger initializes structured logging at the given LOG_LEVEL and
// installs it as the default logger.
func SetupLogger(level string) *log.Logger {
	lvl := log.ParseLevel(level)
	logger := log.New(log.Config{
		Level:     lvl,
		Component: log.ComponentApp,
		Handler:   slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}),
	})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads .env files for local development. Missing files are
// ignored since production sets the environment directly.
func LoadEnvFile(paths ...string) {
	_ = godotenv.Load(paths...)
}

// LoadAndValidateConfig loads configuration and runs Validate plus any extra
// checks. It exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger, extra ...func(*config.Config) error) *config.Config {
	cfg := config.Load()
	checks := append([]func(*config.Config) error{(*config.Config).Validate}, extra...)
	for _, check := range checks {
		if err := check(cfg); err != nil {
			logger.Error("Configuration validation failed", log.FieldError, err)
			os.Exit(1)
		}
	}
	return cfg
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that is closed once cleanup has run or timed out.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	return ctx, shutdownOn(ctx, cancel, sigChan, logger, timeout, cleanup)
}

func shutdownOn(ctx context.Context, cancel context.CancelFunc, sigChan <-chan os.Signal, logger *log.Logger, timeout time.Duration, cleanup func(ctx context.Context)) <-chan struct{} {
	done := make(chan struct{})

	go func() {
		defer close(done)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
		case <-ctx.Done():
			logger.Info("Shutdown requested")
		}
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		finished := make(chan struct{})
		go func() {
			defer close(finished)
			if cleanup != nil {
				cleanup(shutdownCtx)
			}
		}()

		select {
		case <-finished:
			logger.Info("Shutdown complete")
		case <-shutdownCtx.Done():
			logger.Warn("Shutdown timeout reached")
		}
	}()

	return done
}

// WaitForShutdown blocks until the context is cancelled and cleanup is done.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
