// Package main is the entry point for the quote manager HTTP service.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jsamuelsen/quote-manager/internal/adapters/http"
	"github.com/jsamuelsen/quote-manager/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-manager/internal/bootstrap"
	"github.com/jsamuelsen/quote-manager/internal/platform/config"
	"github.com/jsamuelsen/quote-manager/internal/platform/logging"
	"github.com/jsamuelsen/quote-manager/internal/platform/telemetry"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	// Version is the semantic version of the service.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "unknown"

	// BuildTime is the timestamp when the binary was built.
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	slog.SetDefault(logger)

	logger.Info("starting service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
	)

	telProvider, err := telemetry.New(ctx, telemetry.FromConfig(cfg.App, cfg.Telemetry))
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if shutdownErr := telProvider.Shutdown(context.WithoutCancel(ctx)); shutdownErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	quotes, err := bootstrap.New(ctx, cfg, logger, bootstrap.Options{
		BuildInfo: handlers.NewBuildInfo(Version, Commit, BuildTime),
	})
	if err != nil {
		return fmt.Errorf("starting quote manager: %w", err)
	}

	defer func() {
		if closeErr := quotes.Close(); closeErr != nil {
			logger.Error("closing quote manager", slog.Any("error", closeErr))
		}
	}()

	syncCtx, stopSync := context.WithCancel(context.WithoutCancel(ctx))
	syncDone := quotes.StartSync(syncCtx)

	server := quotes.Server()
	serverErr := server.Start()

	err = waitForShutdown(ctx, logger, server, serverErr, cfg.Server.ShutdownTimeout)

	stopSync()
	<-syncDone

	return err
}

// waitForShutdown blocks until ctx is cancelled by a signal or the server fails,
// then drains in-flight requests.
func waitForShutdown(
	ctx context.Context,
	logger *slog.Logger,
	server *http.Server,
	serverErr <-chan error,
	shutdownTimeout time.Duration,
) error {
	select {
	case err, ok := <-serverErr:
		if !ok {
			return nil
		}

		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		logger.Info("received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	logger.Info("initiating graceful shutdown",
		slog.Duration("timeout", shutdownTimeout),
	)

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("shutdown complete")

	return nil
}
