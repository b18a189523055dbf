// Package report filters transactions by month and totals them per group.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aqlanhadi/kwgn-sms/extractor/common"
	"github.com/shopspring/decimal"
)

// GroupBy selects the grouping key.
type GroupBy string

const (
	GroupByCategory GroupBy = "category"
	GroupByAccount  GroupBy = "account"
	GroupByMonth    GroupBy = "month"
)

const (
	labelUncategorized = "Uncategorized"
	labelUnknown       = "Unknown"
)

// ParseGroupBy accepts category, account or month.
func ParseGroupBy(s string) (GroupBy, error) {
	switch g := GroupBy(strings.ToLower(strings.TrimSpace(s))); g {
	case GroupByCategory, GroupByAccount, GroupByMonth:
		return g, nil
	}
	return "", fmt.Errorf("unknown group %q, expected category, account or month", s)
}

// ValidateMonth checks a YYYY-MM filter value. Empty means no filter.
func ValidateMonth(month string) error {
	if month == "" {
		return nil
	}
	if _, err := common.ParseDate("2006-01", month); err != nil {
		return fmt.Errorf("invalid month %q, expected YYYY-MM", month)
	}
	return nil
}

// FilterByMonth keeps transactions whose date starts with month (YYYY-MM).
// An empty month keeps everything.
func FilterByMonth(transactions []common.Transaction, month string) []common.Transaction {
	out := []common.Transaction{}
	for _, tx := range transactions {
		if month == "" || strings.HasPrefix(tx.Date, month) {
			out = append(out, tx)
		}
	}
	return out
}

// Group is one line of a summary.
type Group struct {
	Key          string               `json:"key"`
	Count        int                  `json:"count"`
	Total        decimal.Decimal      `json:"total"`
	Transactions []common.Transaction `json:"transactions,omitempty"`
}

// Summarize groups transactions and totals them, credits positive and debits
// negative. Groups are sorted by key.
func Summarize(transactions []common.Transaction, by GroupBy, accounts []common.Account, categories []common.Category) []Group {
	groups := map[string]*Group{}
	for _, tx := range transactions {
		key := groupKey(tx, by, accounts, categories)
		g, ok := groups[key]
		if !ok {
			g = &Group{Key: key, Total: decimal.Zero}
			groups[key] = g
		}
		g.Count++
		g.Transactions = append(g.Transactions, tx)
		g.Total = g.Total.Add(signed(tx))
	}

	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Total sums transactions with the same signs as Summarize.
func Total(transactions []common.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range transactions {
		total = total.Add(signed(tx))
	}
	return total
}

func signed(tx common.Transaction) decimal.Decimal {
	if !tx.Amount.Valid {
		return decimal.Zero
	}
	if tx.Type == common.TransactionTypeCredit {
		return tx.Amount.Decimal
	}
	return tx.Amount.Decimal.Neg()
}

func groupKey(tx common.Transaction, by GroupBy, accounts []common.Account, categories []common.Category) string {
	switch by {
	case GroupByCategory:
		return CategoryLabel(tx.Category, categories)
	case GroupByAccount:
		return AccountLabel(tx.Account, accounts)
	case GroupByMonth:
		if len(tx.Date) >= 7 {
			return tx.Date[:7]
		}
	}
	return labelUnknown
}

// CategoryLabel resolves a category id, or a category name, to its name.
func CategoryLabel(category string, categories []common.Category) string {
	for _, c := range categories {
		if c.ID == category && c.Name != "" {
			return c.Name
		}
	}
	for _, c := range categories {
		if c.Name != "" && strings.EqualFold(c.Name, category) {
			return c.Name
		}
	}
	return labelUncategorized
}

// AccountLabel renders "Bank (1234)", or Unknown for an orphaned account id.
func AccountLabel(id string, accounts []common.Account) string {
	for _, a := range accounts {
		if a.ID == id {
			return fmt.Sprintf("%s (%s)", a.BankName, a.AccountNumberEndsWith)
		}
	}
	return labelUnknown
}
