package postgres

import (
	"context"
	"fmt"
)

const ddl = `
-- Logical collections, one JSON array per key
CREATE TABLE IF NOT EXISTS kv_store (
    key VARCHAR(64) PRIMARY KEY,
    value JSONB NOT NULL,
    updated_at TIMESTAMPTZ DEFAULT NOW()
);

-- Queryable copy of the configured accounts
CREATE TABLE IF NOT EXISTS accounts (
    id VARCHAR(255) PRIMARY KEY,
    sender_id VARCHAR(255) NOT NULL,
    account_number_ends_with VARCHAR(50) DEFAULT '',
    bank_name VARCHAR(255) DEFAULT '',
    account_type VARCHAR(50) DEFAULT '',
    updated_at TIMESTAMPTZ DEFAULT NOW()
);

-- Queryable copy of reconciled transactions. Rows are never rewritten.
CREATE TABLE IF NOT EXISTS transactions (
    id VARCHAR(255) PRIMARY KEY,
    message_id VARCHAR(255) NOT NULL,
    account_id VARCHAR(255) NOT NULL,
    amount NUMERIC(18,2),
    date TEXT NOT NULL,
    time TEXT NOT NULL,
    occurred_at TIMESTAMP,
    type VARCHAR(10) NOT NULL,
    purpose TEXT DEFAULT '',
    category VARCHAR(255) DEFAULT '',
    remarks TEXT DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_account_id ON transactions(account_id);
CREATE INDEX IF NOT EXISTS idx_transactions_occurred_at ON transactions(occurred_at);
CREATE INDEX IF NOT EXISTS idx_transactions_message_id ON transactions(message_id);
`

// migrateDDL adds columns introduced after the first release
const migrateDDL = `
DO $$ BEGIN
    IF NOT EXISTS (SELECT 1 FROM information_schema.columns
                   WHERE table_name = 'transactions' AND column_name = 'remarks') THEN
        ALTER TABLE transactions ADD COLUMN remarks TEXT DEFAULT '';
    END IF;
END $$;
`

// EnsureSchema creates tables if they don't exist and runs migrations
func (db *DB) EnsureSchema(ctx context.Context) error {
	_, err := db.Pool.Exec(ctx, ddl)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	_, err = db.Pool.Exec(ctx, migrateDDL)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
