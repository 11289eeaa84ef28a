// Package config reads the service configuration from the environment, with an
// optional .env file layered underneath.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	BackendAWS   = "aws"
	BackendMinIO = "minio"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config is the runtime configuration shared by the server, the worker and
// vaultctl. Missing credentials are not an error; the health report shows
// what is configured.
type Config struct {
	Address      string        `env:"VAULT_ADDRESS" env-default:":8000" env-description:"HTTP listen address"`
	MaxFileSize  int64         `env:"VAULT_MAX_FILE_BYTES" env-default:"104857600" env-description:"largest accepted upload in bytes"`
	LogLevel     string        `env:"VAULT_LOG_LEVEL" env-default:"info"`
	LogFormat    string        `env:"VAULT_LOG_FORMAT" env-default:"json" env-description:"json or console"`
	ReadTimeout  time.Duration `env:"VAULT_READ_TIMEOUT" env-default:"5m"`
	WriteTimeout time.Duration `env:"VAULT_WRITE_TIMEOUT" env-default:"5m"`

	S3       S3Config
	Database DatabaseConfig
	Queue    QueueConfig
}

type S3Config struct {
	Backend   string `env:"S3_BACKEND" env-default:"aws" env-description:"aws or minio"`
	Bucket    string `env:"S3_BUCKET_NAME"`
	Region    string `env:"AWS_REGION" env-default:"us-east-1"`
	AccessKey string `env:"AWS_ACCESS_KEY_ID"`
	SecretKey string `env:"AWS_SECRET_ACCESS_KEY"`
	// Endpoint is host:port for minio and an optional base URL for aws.
	Endpoint string `env:"S3_ENDPOINT"`
	UseSSL   bool   `env:"S3_USE_SSL" env-default:"true"`
}

type DatabaseConfig struct {
	Driver   string `env:"DATABASE_DRIVER" env-default:"postgres" env-description:"postgres, sqlite or memory"`
	URL      string `env:"DATABASE_URL" env-description:"postgres DSN or sqlite file path"`
	MaxConns int    `env:"DATABASE_MAX_CONNS" env-default:"10"`
}

type QueueConfig struct {
	RedisAddr         string `env:"REDIS_ADDR"`
	RedisPassword     string `env:"REDIS_PASSWORD"`
	RedisDB           int    `env:"REDIS_DB" env-default:"0"`
	WorkerConcurrency int    `env:"WORKER_CONCURRENCY" env-default:"4"`
}

// InvalidValueError reports a setting that is present but unusable.
type InvalidValueError struct {
	Key    string
	Value  any
	Reason string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("config %s=%v: %s", e.Key, e.Value, e.Reason)
}

// Load reads .env files (default ".env", silently skipped when absent), then
// the process environment, and validates the result. Variables already set in
// the environment win over .env values.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("failed to load .env file")
	}
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.MaxFileSize <= 0 {
		return &InvalidValueError{Key: "VAULT_MAX_FILE_BYTES", Value: c.MaxFileSize, Reason: "must be positive"}
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return &InvalidValueError{Key: "VAULT_LOG_LEVEL", Value: c.LogLevel, Reason: err.Error()}
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return &InvalidValueError{Key: "VAULT_LOG_FORMAT", Value: c.LogFormat, Reason: "must be json or console"}
	}
	if c.ReadTimeout < 0 || c.WriteTimeout < 0 {
		return &InvalidValueError{Key: "VAULT_READ_TIMEOUT/VAULT_WRITE_TIMEOUT", Value: c.ReadTimeout, Reason: "must not be negative"}
	}
	switch c.S3.Backend {
	case BackendAWS, BackendMinIO:
	default:
		return &InvalidValueError{Key: "S3_BACKEND", Value: c.S3.Backend, Reason: "must be aws or minio"}
	}
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite, DriverMemory:
	default:
		return &InvalidValueError{Key: "DATABASE_DRIVER", Value: c.Database.Driver, Reason: "must be postgres, sqlite or memory"}
	}
	if c.Database.MaxConns < 0 {
		return &InvalidValueError{Key: "DATABASE_MAX_CONNS", Value: c.Database.MaxConns, Reason: "must not be negative"}
	}
	if c.Queue.WorkerConcurrency <= 0 {
		return &InvalidValueError{Key: "WORKER_CONCURRENCY", Value: c.Queue.WorkerConcurrency, Reason: "must be positive"}
	}
	return nil
}

// ObjectStoreConfigured reports whether enough is set to build a store client.
// The aws backend may take credentials from the default chain.
func (c *Config) ObjectStoreConfigured() bool {
	if c.S3.Bucket == "" {
		return false
	}
	if c.S3.Backend == BackendMinIO {
		return c.S3.Endpoint != "" && c.S3.AccessKey != "" && c.S3.SecretKey != ""
	}
	return true
}

func (c *Config) DatabaseConfigured() bool {
	return c.Database.Driver == DriverMemory || c.Database.URL != ""
}

func (c *Config) QueueConfigured() bool { return c.Queue.RedisAddr != "" }
