// Command server runs the recording ingest HTTP API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/dharsanguruparan/watchme-vault/internal/app"
	"github.com/dharsanguruparan/watchme-vault/internal/config"
	"github.com/dharsanguruparan/watchme-vault/internal/logging"
	"github.com/dharsanguruparan/watchme-vault/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if _, err := logging.Setup(cfg.LogLevel, cfg.LogFormat, os.Stderr); err != nil {
		log.Fatal().Err(err).Msg("setup logging")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init dependencies")
	}
	defer a.Close()

	srv := server.New(server.Config{
		Address:      cfg.Address,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}, a.Uploads, a.Health)
	if err := srv.Run(ctx); err != nil {
		log.Error().Err(err).Msg("server stopped")
		a.Close()
		os.Exit(1)
	}
}
