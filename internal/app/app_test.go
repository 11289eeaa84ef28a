package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharsanguruparan/watchme-vault/internal/config"
	"github.com/dharsanguruparan/watchme-vault/internal/registry"
	"github.com/dharsanguruparan/watchme-vault/internal/upload"
)

func baseConfig() *config.Config {
	return &config.Config{
		MaxFileSize: 1024,
		S3:          config.S3Config{Backend: config.BackendAWS},
		Database:    config.DatabaseConfig{Driver: config.DriverMemory},
		Queue:       config.QueueConfig{WorkerConcurrency: 1},
	}
}

func TestBuild_MemoryWithoutStore(t *testing.T) {
	a, err := Build(context.Background(), baseConfig())
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.Store)
	assert.Nil(t, a.Queue)
	assert.IsType(t, &registry.MemoryRegistrar{}, a.Registrar)
	assert.Equal(t, int64(1024), a.Uploads.MaxFileSize())

	report := a.Health.Report()
	assert.False(t, report.S3Configured)
	assert.True(t, report.DatabaseConfigured)

	_, err = a.Uploads.Submit(context.Background(), upload.Request{
		Metadata: []byte(`{"device_id":"device123","recorded_at":"2025-07-19T13:30:00+09:00"}`),
	})
	assert.ErrorIs(t, err, upload.ErrObjectStoreWrite)
}

func TestBuild_SQLiteMigrates(t *testing.T) {
	cfg := baseConfig()
	cfg.Database = config.DatabaseConfig{Driver: config.DriverSQLite, URL: filepath.Join(t.TempDir(), "vault.db")}

	a, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.DB)
	assert.IsType(t, &registry.SQLRegistrar{}, a.Registrar)

	var n int
	require.NoError(t, a.DB.QueryRow(`SELECT COUNT(*) FROM audio_files`).Scan(&n))
	assert.Zero(t, n)
}

func TestBuild_NoDatabaseURL(t *testing.T) {
	cfg := baseConfig()
	cfg.Database = config.DatabaseConfig{Driver: config.DriverPostgres}

	a, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	assert.Nil(t, a.Registrar)
	assert.False(t, a.Health.Report().DatabaseConfigured)
}
