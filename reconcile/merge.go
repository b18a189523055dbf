package reconcile

import (
	"time"

	"github.com/aqlanhadi/kwgn-sms/extractor/common"
)

// Result is the outcome of a merge.
type Result struct {
	Transactions []common.Transaction `json:"transactions"`
	Added        int                  `json:"added"`
	Skipped      int                  `json:"skipped"`
}

// Merge appends every candidate that is not a duplicate of existing, using the
// default window.
func Merge(candidates, existing []common.Transaction) []common.Transaction {
	return MergeWithin(candidates, existing, DefaultWindow)
}

// MergeWithin is Merge with an explicit duplicate window.
func MergeWithin(candidates, existing []common.Transaction, window time.Duration) []common.Transaction {
	return MergeReport(candidates, existing, window).Transactions
}

// MergeReport merges and counts what was added and skipped. Candidates are
// only compared with the existing set as passed in, never with each other, and
// existing is never modified.
func MergeReport(candidates, existing []common.Transaction, window time.Duration) Result {
	merged := make([]common.Transaction, len(existing), len(existing)+len(candidates))
	copy(merged, existing)

	res := Result{}
	for _, c := range candidates {
		if IsDuplicate(c, existing, window) {
			res.Skipped++
			continue
		}
		merged = append(merged, c)
		res.Added++
	}
	res.Transactions = merged
	return res
}

// Add appends a single transaction unless it duplicates one in existing.
func Add(candidate common.Transaction, existing []common.Transaction) ([]common.Transaction, bool) {
	res := MergeReport([]common.Transaction{candidate}, existing, DefaultWindow)
	return res.Transactions, res.Added == 1
}
