package report

import (
	"testing"

	"github.com/aqlanhadi/kwgn-sms/extractor/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tx(id, account, amount, date string, typ common.TransactionType, category string) common.Transaction {
	return common.Transaction{
		ID:       id,
		Account:  account,
		Amount:   decimal.NewNullDecimal(decimal.RequireFromString(amount)),
		Date:     date,
		Time:     "10:00:00",
		Type:     typ,
		Category: category,
	}
}

var (
	accounts   = []common.Account{{ID: "acc1", BankName: "HDFC Bank", AccountNumberEndsWith: "1234"}}
	categories = []common.Category{{ID: "cat1", Name: "Food"}, {ID: "cat2", Name: "Others"}}
	sample     = []common.Transaction{
		tx("t1", "acc1", "100", "2025-02-01", common.TransactionTypeDebit, "cat1"),
		tx("t2", "acc1", "40.50", "2025-02-10", common.TransactionTypeDebit, "Others"),
		tx("t3", "acc1", "500", "2025-02-11", common.TransactionTypeCredit, "cat1"),
		tx("t4", "gone", "20", "2025-03-01", common.TransactionTypeDebit, "deleted"),
	}
)

func TestFilterByMonth(t *testing.T) {
	assert.Len(t, FilterByMonth(sample, "2025-02"), 3)
	assert.Len(t, FilterByMonth(sample, "2025-03"), 1)
	assert.Len(t, FilterByMonth(sample, ""), 4)
	assert.Empty(t, FilterByMonth(sample, "2024-12"))
}

func TestSummarize_ByCategory(t *testing.T) {
	groups := Summarize(sample, GroupByCategory, accounts, categories)
	require.Len(t, groups, 3)

	assert.Equal(t, "Food", groups[0].Key)
	assert.Equal(t, 2, groups[0].Count)
	assert.Equal(t, "400", groups[0].Total.String())

	assert.Equal(t, "Others", groups[1].Key)
	assert.Equal(t, "-40.5", groups[1].Total.String())

	assert.Equal(t, "Uncategorized", groups[2].Key)
}

func TestSummarize_ByAccount(t *testing.T) {
	groups := Summarize(sample, GroupByAccount, accounts, categories)
	require.Len(t, groups, 2)
	assert.Equal(t, "HDFC Bank (1234)", groups[0].Key)
	assert.Equal(t, "Unknown", groups[1].Key)
	assert.Equal(t, "-20", groups[1].Total.String())
}

func TestSummarize_ByMonth(t *testing.T) {
	groups := Summarize(sample, GroupByMonth, accounts, categories)
	require.Len(t, groups, 2)
	assert.Equal(t, "2025-02", groups[0].Key)
	assert.Equal(t, "359.5", groups[0].Total.String())
	assert.Equal(t, "2025-03", groups[1].Key)
}

func TestTotal(t *testing.T) {
	assert.Equal(t, "339.5", Total(sample).String())
	assert.True(t, Total(nil).IsZero())
}

func TestParseGroupBy(t *testing.T) {
	g, err := ParseGroupBy(" Account ")
	require.NoError(t, err)
	assert.Equal(t, GroupByAccount, g)

	_, err = ParseGroupBy("merchant")
	assert.Error(t, err)
}

func TestValidateMonth(t *testing.T) {
	assert.NoError(t, ValidateMonth(""))
	assert.NoError(t, ValidateMonth("2025-02"))
	assert.Error(t, ValidateMonth("2025-13"))
	assert.Error(t, ValidateMonth("Feb 2025"))
}
