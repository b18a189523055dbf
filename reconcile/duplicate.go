// Package reconcile folds newly compiled transactions into an existing set
// without creating duplicates.
package reconcile

import (
	"time"

	"github.com/aqlanhadi/kwgn-sms/extractor/common"
)

// DefaultWindow is the largest time difference between two duplicates.
const DefaultWindow = 5 * time.Minute

// IsDuplicate reports whether candidate is a duplicate of any transaction in
// existing: a different id on the same account with exactly the same amount,
// no more than window apart. Timestamps that do not parse never match.
func IsDuplicate(candidate common.Transaction, existing []common.Transaction, window time.Duration) bool {
	if !candidate.Amount.Valid {
		return false
	}
	at, err := common.ParseTimestamp(candidate.Date, candidate.Time)
	if err != nil {
		return false
	}

	for _, e := range existing {
		if e.ID == candidate.ID || e.Account != candidate.Account {
			continue
		}
		if !e.Amount.Valid || !e.Amount.Decimal.Equal(candidate.Amount.Decimal) {
			continue
		}
		et, err := common.ParseTimestamp(e.Date, e.Time)
		if err != nil {
			continue
		}
		diff := at.Sub(et)
		if diff < 0 {
			diff = -diff
		}
		if diff <= window {
			return true
		}
	}
	return false
}
