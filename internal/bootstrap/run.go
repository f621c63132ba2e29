package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MattyO101/Legalassist-MPV/internal/shared/config"
	"github.com/MattyO101/Legalassist-MPV/internal/shared/server"
	"github.com/MattyO101/Legalassist-MPV/internal/shared/telemetry"
)

// Builder wires one service from configuration.
type Builder func(context.Context, config.Config) (*App, error)

// Main runs the named service until SIGINT or SIGTERM and returns the process
// exit code.
func Main(service, defaultPort string, build Builder) int {
	logger, err := telemetry.Init(telemetry.ConfigFromEnv(service))
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(service, defaultPort)
	if err != nil {
		telemetry.Error("config.invalid", map[string]any{"error": err})
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := build(ctx, cfg)
	if err != nil {
		telemetry.Error("bootstrap.failed", map[string]any{"error": err})
		return 1
	}
	defer func() {
		if err := app.Close(); err != nil {
			telemetry.Warn("bootstrap.close_failed", map[string]any{"error": err})
		}
	}()

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":       cfg.Env,
		"datastore": app.Datastore.Kind(),
		"store":     cfg.ObjectStoreType,
	})
	if err := server.Run(ctx, server.Addr(cfg.Port), app.Router); err != nil {
		telemetry.Error("server.failed", map[string]any{"error": err})
		return 1
	}
	return 0
}
