package postgres

import (
	"context"
	"fmt"

	"github.com/aqlanhadi/kwgn-sms/extractor/common"
	"github.com/jackc/pgx/v5"
)

// UpsertAccounts copies accounts into the accounts table.
// Empty bank name and type keep the stored value so manual edits survive.
func (db *DB) UpsertAccounts(ctx context.Context, accounts []common.Account) error {
	if len(accounts) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, account := range accounts {
		batch.Queue(`
			INSERT INTO accounts (id, sender_id, account_number_ends_with, bank_name, account_type)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE
			SET sender_id = EXCLUDED.sender_id,
			    account_number_ends_with = EXCLUDED.account_number_ends_with,
			    bank_name = CASE WHEN EXCLUDED.bank_name != '' THEN EXCLUDED.bank_name ELSE accounts.bank_name END,
			    account_type = CASE WHEN EXCLUDED.account_type != '' THEN EXCLUDED.account_type ELSE accounts.account_type END,
			    updated_at = NOW()
		`, account.ID, account.SenderID, account.AccountNumberEndsWith, account.BankName, string(account.AccountType))
	}

	br := db.Pool.SendBatch(ctx, batch)
	defer br.Close()

	for _, account := range accounts {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to upsert account %s: %w", account.ID, err)
		}
	}
	return nil
}
