package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrWong99/starbridge/internal/app"
	"github.com/MrWong99/starbridge/internal/observe"
)

const shutdownTimeout = 15 * time.Second

func (c *cli) newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the Discord bot and the daily announcement scheduler",
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}
}

func (c *cli) run(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	telemetry, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceVersion: version})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}

	slog.Info("starbridge starting",
		"version", version,
		"config", c.configPath,
		"listen_addr", c.cfg.Server.ListenAddr,
		"log_level", c.cfg.Server.LogLevel,
		"database", c.cfg.Database.Driver,
	)

	opts := []app.Option{
		app.WithTelemetry(telemetry),
		app.WithLogLevel(c.level),
	}
	if c.configPath != "" {
		opts = append(opts, app.WithConfigWatch(c.configPath))
	}
	application, err := app.New(ctx, c.cfg, opts...)
	if err != nil {
		_ = telemetry.Shutdown(context.Background())
		return err
	}

	slog.Info("server ready, press Ctrl+C to shut down")
	runErr := application.Run(ctx)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		slog.Error("run error", "err", runErr)
	}

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	slog.Info("stopping")
	if err := application.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}
