package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations
var migrations embed.FS

// goose keeps its base FS and dialect in package globals.
var gooseMu sync.Mutex

// gooseUp is a seam for tests that only care about the goose wiring.
var gooseUp = func(ctx context.Context, db *sql.DB, dir string) error {
	return goose.UpContext(ctx, db, dir)
}

// Open returns a pool for the given driver ("postgres" or "sqlite"). For
// sqlite the dsn is a file path; parent directories are created.
func Open(ctx context.Context, driver, dsn string, maxConns int) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("open %s: empty dsn", driver)
	}
	switch driver {
	case "postgres":
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if maxConns > 0 {
			db.SetMaxOpenConns(maxConns)
		}
		db.SetConnMaxIdleTime(5 * time.Minute)
		return db, nil
	case "sqlite":
		if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
			if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
				return nil, fmt.Errorf("create db directory: %w", err)
			}
			dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", dsn)
		}
		db, err := sql.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		db.SetMaxOpenConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(5 * time.Minute)
		return db, nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", driver)
}

// Migrate applies the embedded goose migrations for driver.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	var dialect string
	switch driver {
	case "postgres":
		dialect = "postgres"
	case "sqlite":
		dialect = "sqlite3"
	default:
		return fmt.Errorf("unsupported database driver %q", driver)
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()
	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{})
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := gooseUp(ctx, db, "migrations/"+driver); err != nil {
		return fmt.Errorf("migrate %s: %w", driver, err)
	}
	return nil
}
