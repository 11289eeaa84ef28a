package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/dharsanguruparan/watchme-vault/internal/model"
)

const pgUniqueViolation = "23505"

// Execer is the slice of database/sql the registrar needs. *sql.DB and *sql.Tx
// both satisfy it.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Dialect holds the driver-specific parts of the insert.
type Dialect struct {
	name        string
	insert      string
	utc         func(time.Time) any
	isDuplicate func(error) bool
}

func (d Dialect) Name() string { return d.name }

var (
	Postgres = Dialect{
		name: "postgres",
		insert: `
		INSERT INTO audio_files (device_id, recorded_at, recorded_at_utc, utc_offset_minutes, file_path, status)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		utc:         func(t time.Time) any { return t.UTC() },
		isDuplicate: isPostgresUniqueViolation,
	}
	SQLite = Dialect{
		name: "sqlite",
		insert: `
		INSERT INTO audio_files (device_id, recorded_at, recorded_at_utc, utc_offset_minutes, file_path, status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		utc:         func(t time.Time) any { return t.UTC().Format(time.RFC3339Nano) },
		isDuplicate: isSQLiteUniqueViolation,
	}
)

// DialectFor maps a DATABASE_DRIVER value to its dialect.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case Postgres.name:
		return Postgres, nil
	case SQLite.name:
		return SQLite, nil
	}
	return Dialect{}, fmt.Errorf("unsupported database driver %q", driver)
}

// SQLRegistrar writes to the audio_files table. The table's primary key is
// (device_id, recorded_at) where recorded_at is the offset-preserving RFC 3339
// text; recorded_at_utc is stored alongside for ordering only.
type SQLRegistrar struct {
	db      Execer
	dialect Dialect
}

// NewSQLRegistrar constructs a registrar writing through db in the given dialect.
func NewSQLRegistrar(db Execer, dialect Dialect) *SQLRegistrar {
	return &SQLRegistrar{db: db, dialect: dialect}
}

// Register inserts rec. A uniqueness violation is reported as ErrDuplicate.
func (r *SQLRegistrar) Register(ctx context.Context, rec model.Recording) error {
	status := rec.Status
	if status == "" {
		status = model.StatusPending
	}
	_, err := r.db.ExecContext(ctx, r.dialect.insert,
		rec.DeviceID,
		rec.RecordedAt.String(),
		r.dialect.utc(rec.RecordedAt.Time()),
		rec.RecordedAt.OffsetMinutes(),
		rec.FilePath,
		string(status),
	)
	if err != nil {
		if r.dialect.isDuplicate(err) {
			return fmt.Errorf("%w: device %s at %s", ErrDuplicate, rec.DeviceID, rec.RecordedAt)
		}
		return fmt.Errorf("insert recording: %w", err)
	}
	return nil
}

func (r *SQLRegistrar) Configured() bool { return r != nil && r.db != nil }

func isPostgresUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func isSQLiteUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		// connections without extended result codes only report the primary code
		return strings.Contains(sqliteErr.Error(), "UNIQUE constraint failed")
	}
	return false
}
