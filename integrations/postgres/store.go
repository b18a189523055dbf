package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/aqlanhadi/kwgn-sms/store"
	"github.com/jackc/pgx/v5"
)

// Get implements store.Store on the kv_store table.
func (db *DB) Get(ctx context.Context, key store.Key) ([]byte, error) {
	var value []byte
	err := db.Pool.QueryRow(ctx, `SELECT value FROM kv_store WHERE key = $1`, string(key)).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, nil
}

func (db *DB) Set(ctx context.Context, key store.Key, value []byte) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO kv_store (key, value) VALUES ($1, $2::jsonb)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`, string(key), string(value))
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (db *DB) Remove(ctx context.Context, key store.Key) error {
	if _, err := db.Pool.Exec(ctx, `DELETE FROM kv_store WHERE key = $1`, string(key)); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

var _ store.Store = (*DB)(nil)
