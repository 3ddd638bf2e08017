// Package main runs the chance daemon: a Telnet front end serving the five
// chance tools, with wheel options persisted in the configured backend.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/chance/internal/chance/wheel"
	"github.com/cory-johannsen/chance/internal/config"
	"github.com/cory-johannsen/chance/internal/frontend/handlers"
	"github.com/cory-johannsen/chance/internal/frontend/telnet"
	"github.com/cory-johannsen/chance/internal/observability"
	"github.com/cory-johannsen/chance/internal/server"
	"github.com/cory-johannsen/chance/internal/storage"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	backend, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("opening storage", zap.String("backend", cfg.Storage.Backend), zap.Error(err))
	}
	defer backend.Close()

	presets := map[string]wheel.Preset{}
	if cfg.Tools.Presets != "" {
		presets, err = wheel.LoadPresetsFromFile(cfg.Tools.Presets)
		if err != nil {
			logger.Fatal("loading presets", zap.Error(err))
		}
	}
	logger.Info("chance starting",
		zap.String("storage", backend.Name),
		zap.Int("presets", len(presets)),
		zap.Bool("seeded", cfg.Tools.Seed != 0),
	)

	handler := handlers.NewChanceHandler(backend.KV, presets, cfg.Tools, logger)
	acceptor := telnet.NewAcceptor(cfg.Telnet, handler, logger)

	lifecycle := server.NewLifecycle(logger)
	if cfg.Health.Enabled {
		probe := func(ctx context.Context) error { return backend.Health(ctx, cfg.Health.Interval) }
		lifecycle.Add("health", server.NewHealthServer(cfg.Health.Addr(), cfg.Health.Interval, probe, logger))
	}
	lifecycle.Add("telnet", &server.FuncService{
		StartFn: acceptor.ListenAndServe,
		StopFn:  acceptor.Stop,
	})

	logger.Info("server initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("telnet_addr", cfg.Telnet.Addr()),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Error("server error", zap.Error(err))
	}
}
