package postgres

import (
	"context"

	"github.com/aqlanhadi/kwgn-sms/extractor/common"
	"github.com/aqlanhadi/kwgn-sms/logger"
)

// MirrorResult tracks the outcome of a mirror pass
type MirrorResult struct {
	Accounts int
	Inserted int
	Skipped  int
}

// Mirror copies accounts and transactions into their relational tables after
// a sync. Transactions already mirrored are skipped.
func (db *DB) Mirror(ctx context.Context, accounts []common.Account, transactions []common.Transaction) (MirrorResult, error) {
	log := logger.FromContext(ctx)

	if err := db.UpsertAccounts(ctx, accounts); err != nil {
		return MirrorResult{}, err
	}

	inserted, err := db.CreateTransactionsIdempotent(ctx, transactions)
	if err != nil {
		return MirrorResult{Accounts: len(accounts), Inserted: inserted}, err
	}

	res := MirrorResult{
		Accounts: len(accounts),
		Inserted: inserted,
		Skipped:  len(transactions) - inserted,
	}
	log.Debug().Int("inserted", res.Inserted).Int("skipped", res.Skipped).Msg("mirrored transactions")
	return res, nil
}
