// Package sqlite is a single file store.Store backed by modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/aqlanhadi/kwgn-sms/store"
	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// DB stores every key as a row of kv_store.
type DB struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open opens (or creates) the database at path and applies pending migrations.
func Open(path string, log zerolog.Logger) (*DB, error) {
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", path, err)
	}
	// One connection avoids SQLITE_BUSY between writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	d := &DB{db: db, log: log}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	log.Debug().Str("path", path).Msg("sqlite store ready")
	return d, nil
}

func (d *DB) migrate() error {
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(d.db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create sqlite migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("migration instance creation failed: %w", err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			d.log.Debug().Msg("no new database migrations to apply")
			return nil
		}
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	d.log.Debug().Msg("database migrations applied")
	return nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Get(ctx context.Context, key store.Key) ([]byte, error) {
	var value string
	err := d.db.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = ?`, string(key)).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return []byte(value), nil
}

func (d *DB) Set(ctx context.Context, key store.Key, value []byte) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, string(key), string(value))
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (d *DB) Remove(ctx context.Context, key store.Key) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM kv_store WHERE key = ?`, string(key)); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

var _ store.Store = (*DB)(nil)
