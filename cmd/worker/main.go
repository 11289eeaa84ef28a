// Command worker consumes recording:registered tasks from Redis.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"github.com/dharsanguruparan/watchme-vault/internal/app"
	"github.com/dharsanguruparan/watchme-vault/internal/config"
	"github.com/dharsanguruparan/watchme-vault/internal/logging"
	"github.com/dharsanguruparan/watchme-vault/internal/queue"
	"github.com/dharsanguruparan/watchme-vault/internal/worker"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if _, err := logging.Setup(cfg.LogLevel, cfg.LogFormat, os.Stderr); err != nil {
		log.Fatal().Err(err).Msg("setup logging")
	}
	if !cfg.QueueConfigured() {
		log.Fatal().Msg("REDIS_ADDR is required for the worker")
	}

	store, err := app.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init storage")
	}
	if store == nil {
		log.Fatal().Msg("S3_BUCKET_NAME is required for the worker")
	}

	srv := asynq.NewServer(
		queue.RedisOpt(cfg.Queue.RedisAddr, cfg.Queue.RedisPassword, cfg.Queue.RedisDB),
		asynq.Config{Concurrency: cfg.Queue.WorkerConcurrency},
	)
	processor := worker.NewProcessor(store)

	go func() {
		<-ctx.Done()
		srv.Shutdown()
	}()

	if err := srv.Run(processor.Handler()); err != nil {
		log.Error().Err(err).Msg("worker stopped")
		os.Exit(1)
	}
}
