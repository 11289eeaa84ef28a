// Package app builds the shared dependency graph for the server and vaultctl
// from a loaded configuration.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"github.com/dharsanguruparan/watchme-vault/internal/config"
	"github.com/dharsanguruparan/watchme-vault/internal/database"
	"github.com/dharsanguruparan/watchme-vault/internal/health"
	"github.com/dharsanguruparan/watchme-vault/internal/queue"
	"github.com/dharsanguruparan/watchme-vault/internal/registry"
	"github.com/dharsanguruparan/watchme-vault/internal/s3storage"
	"github.com/dharsanguruparan/watchme-vault/internal/upload"
)

// App holds the constructed collaborators. Store, Registrar and Queue are nil
// when the matching backend is not configured.
type App struct {
	Config    *config.Config
	Store     s3storage.Store
	Registrar registry.Registrar
	DB        *sql.DB
	Queue     *asynq.Client
	Uploads   *upload.Service
	Health    *health.Reporter
}

// Build wires everything cfg describes. Unconfigured backends are logged and
// left out; the upload path then fails with the matching error kind.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.Store = store

	if err := a.openRegistrar(ctx); err != nil {
		a.Close()
		return nil, err
	}

	opts := []upload.Option{upload.WithMaxFileSize(cfg.MaxFileSize)}
	if cfg.QueueConfigured() {
		a.Queue = asynq.NewClient(queue.RedisOpt(cfg.Queue.RedisAddr, cfg.Queue.RedisPassword, cfg.Queue.RedisDB))
		opts = append(opts, upload.WithNotifier(queue.NewPublisher(a.Queue)))
	} else {
		log.Info().Msg("REDIS_ADDR not set; registered recordings are not announced")
	}

	var objects upload.ObjectStorage
	var reporterStore health.Configurable
	if a.Store != nil {
		objects, reporterStore = a.Store, a.Store
	}
	var reporterDB health.Configurable
	if a.Registrar != nil {
		reporterDB = a.Registrar
	}
	a.Uploads = upload.NewService(objects, a.Registrar, opts...)
	a.Health = health.NewReporter(reporterStore, reporterDB)
	return a, nil
}

// OpenStore returns the configured object store, or nil when no bucket is set.
// The MinIO bucket is created if missing.
func OpenStore(ctx context.Context, cfg *config.Config) (s3storage.Store, error) {
	store, err := s3storage.New(ctx, cfg.S3)
	if errors.Is(err, s3storage.ErrNotConfigured) {
		log.Warn().Msg("S3_BUCKET_NAME not set; uploads will fail until object storage is configured")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("init object store: %w", err)
	}
	if m, ok := store.(*s3storage.MinIO); ok {
		if err := m.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("ensure bucket: %w", err)
		}
	}
	return store, nil
}

func (a *App) openRegistrar(ctx context.Context) error {
	cfg := a.Config.Database
	if cfg.Driver == config.DriverMemory {
		log.Warn().Msg("using in-memory registrar; metadata is lost on restart")
		a.Registrar = registry.NewMemoryRegistrar()
		return nil
	}
	if cfg.URL == "" {
		log.Warn().Msg("DATABASE_URL not set; uploads will fail until the database is configured")
		return nil
	}
	db, err := OpenDatabase(ctx, a.Config)
	if err != nil {
		return err
	}
	a.DB = db
	dialect, err := registry.DialectFor(cfg.Driver)
	if err != nil {
		return err
	}
	a.Registrar = registry.NewSQLRegistrar(db, dialect)
	return nil
}

// OpenDatabase opens the relational store and applies pending migrations.
func OpenDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := database.Open(ctx, cfg.Database.Driver, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, db, cfg.Database.Driver); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (a *App) Close() {
	if a.Queue != nil {
		if err := a.Queue.Close(); err != nil {
			log.Warn().Err(err).Msg("close queue client")
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			log.Warn().Err(err).Msg("close database")
		}
	}
}
