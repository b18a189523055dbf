package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/aqlanhadi/kwgn-sms/extractor/common"
	"github.com/jackc/pgx/v5"
)

// CreateTransactionsIdempotent inserts transactions keyed by id. Rows that
// already exist are left untouched. Returns how many rows were inserted.
func (db *DB) CreateTransactionsIdempotent(ctx context.Context, transactions []common.Transaction) (int, error) {
	if len(transactions) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, tx := range transactions {
		// Unparseable timestamps are kept as text only.
		var occurredAt *time.Time
		if at, err := common.ParseTimestamp(tx.Date, tx.Time); err == nil {
			occurredAt = &at
		}

		batch.Queue(`
			INSERT INTO transactions (
				id, message_id, account_id, amount, date, time, occurred_at, type, purpose, category, remarks, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			ON CONFLICT (id) DO NOTHING
		`,
			tx.ID, tx.MessageID, tx.Account, tx.Amount, tx.Date, tx.Time, occurredAt,
			string(tx.Type), tx.Purpose, tx.Category, tx.Remarks, tx.CreatedAt,
		)
	}

	br := db.Pool.SendBatch(ctx, batch)
	defer br.Close()

	inserted := 0
	for _, tx := range transactions {
		tag, err := br.Exec()
		if err != nil {
			return inserted, fmt.Errorf("failed to insert transaction %s: %w", tx.ID, err)
		}
		inserted += int(tag.RowsAffected())
	}

	return inserted, nil
}

// CountTransactions returns the number of mirrored transactions.
func (db *DB) CountTransactions(ctx context.Context) (int, error) {
	var n int
	if err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return n, nil
}
