// Copyright 2026 The Flowent Authors
// SPDX-License-Identifier: Apache-2.0

// Command flowent-action-server serves signed action callbacks from
// the Flowent gateway. It verifies each request's HMAC signature and
// timestamp window, dispatches to a registered action handler, and
// optionally registers its actions with the gateway at startup.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/flowent-foundation/actionserver/lib/action"
	"github.com/flowent-foundation/actionserver/lib/callback"
	"github.com/flowent-foundation/actionserver/lib/clock"
	"github.com/flowent-foundation/actionserver/lib/config"
	"github.com/flowent-foundation/actionserver/lib/gateway"
	"github.com/flowent-foundation/actionserver/lib/process"
	"github.com/flowent-foundation/actionserver/lib/secret"
	"github.com/flowent-foundation/actionserver/lib/version"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	var (
		configPath  = pflag.String("config", "", "path to the configuration file (default $FLOWENT_CONFIG)")
		register    = pflag.Bool("register", false, "register actions with the gateway before serving")
		showVersion = pflag.Bool("version", false, "print version information and exit")
	)
	pflag.Parse()

	if *showVersion {
		version.Print("flowent-action-server")
		return nil
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	key, err := secret.ReadFromPath(cfg.Signing.KeyPath)
	if err != nil {
		return fmt.Errorf("reading signing key: %w", err)
	}
	defer secret.Zero(key)

	var manifest *action.Manifest
	if cfg.Paths.ActionManifest != "" {
		manifest, err = action.ReadManifest(cfg.Paths.ActionManifest)
		if err != nil {
			return err
		}
	}

	clk := clock.Real()
	registry, err := buildRegistry(clk, manifest)
	if err != nil {
		return err
	}

	if *register {
		if err := registerActions(ctx, cfg, registry, logger); err != nil {
			return err
		}
	}

	handlerConfig := callback.HandlerConfig{
		Secret:       key,
		Registry:     registry,
		Clock:        clk,
		ReplayWindow: cfg.ReplayWindow(),
		Logger:       logger,
		Metrics:      callback.NewMetrics(),
	}
	if cfg.Server.RateLimit.Enabled {
		handlerConfig.RateLimitPerSecond = cfg.Server.RateLimit.PerSecond
		handlerConfig.RateLimitBurst = cfg.Server.RateLimit.Burst
	}
	handler := callback.NewHandler(handlerConfig)

	server := callback.NewServer(callback.ServerConfig{
		Address: cfg.Server.Listen,
		Handler: handler.Routes(),
		Logger:  logger,
	})

	logger.Info("starting action server",
		"listen", cfg.Server.Listen,
		"environment", cfg.Environment,
		"actions", len(registry.Definitions()),
		"version", version.Info())
	return server.Serve(ctx)
}

func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// registerActions announces every registered action to the gateway.
// Individual registration failures are logged inside the client and
// do not stop the server from starting; only a failed token exchange
// is fatal here, since it means no action registered at all.
func registerActions(ctx context.Context, cfg *config.Config, registry *action.Registry, logger *slog.Logger) error {
	apiToken, err := secret.ReadFromPath(cfg.Gateway.APITokenPath)
	if err != nil {
		return fmt.Errorf("reading gateway API token: %w", err)
	}
	defer secret.Zero(apiToken)

	clientConfig := gateway.ClientConfig{
		BaseURL: cfg.Gateway.BaseURL,
		Logger:  logger,
	}
	if cfg.Paths.State != "" {
		clientConfig.SessionPath = filepath.Join(cfg.Paths.State, "gateway-session.cbor")
	}
	client := gateway.NewClient(clientConfig)

	failures, err := client.RegisterAll(ctx, string(apiToken), registry.Definitions(), cfg.Gateway.CallbackBaseURL)
	if err != nil {
		return fmt.Errorf("gateway registration: %w", err)
	}
	if failures > 0 {
		logger.Warn("some actions failed to register", "failures", failures)
	}
	return nil
}
