package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "nested", "vault.db"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMigrate_SQLiteCreatesAudioFiles(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)

	require.NoError(t, Migrate(ctx, db, "sqlite"))
	// a second run is a no-op
	require.NoError(t, Migrate(ctx, db, "sqlite"))

	var name string
	err := db.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type='table' AND name='audio_files'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "audio_files", name)
}

func TestMigrate_SQLiteEnforcesPrimaryKey(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	require.NoError(t, Migrate(ctx, db, "sqlite"))

	insert := `INSERT INTO audio_files (device_id, recorded_at, recorded_at_utc, utc_offset_minutes, file_path) VALUES (?, ?, ?, ?, ?)`
	args := []any{"device123", "2025-07-19T13:30:00.123+09:00", "2025-07-19T04:30:00.123Z", 540, "files/device123/2025-07-19/13-30/audio.wav"}
	_, err := db.ExecContext(ctx, insert, args...)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, insert, args...)
	require.Error(t, err)
}

func TestMigrate_UsesDriverDirectory(t *testing.T) {
	orig := gooseUp
	t.Cleanup(func() { gooseUp = orig })

	var gotDir string
	gooseUp = func(ctx context.Context, db *sql.DB, dir string) error {
		gotDir = dir
		return errors.New("boom")
	}

	err := Migrate(context.Background(), nil, "postgres")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrate postgres: boom")
	assert.Equal(t, "migrations/postgres", gotDir)
}

func TestOpen_Errors(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "dsn", 0)
	assert.Error(t, err)

	_, err = Open(context.Background(), "sqlite", "", 0)
	assert.Error(t, err)

	assert.Error(t, Migrate(context.Background(), nil, "oracle"))
}
