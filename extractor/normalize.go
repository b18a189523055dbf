package extractor

import (
	"fmt"
	"strings"

	"github.com/aqlanhadi/kwgn-sms/extractor/common"
	"github.com/shopspring/decimal"
)

// Fields are the normalized values of one template match.
// Empty strings and invalid decimals mean the value could not be resolved.
type Fields struct {
	Amount         decimal.NullDecimal
	Date           string
	Time           string
	Purpose        string
	Last4          string
	CardNo         string
	AvailableLimit decimal.NullDecimal
}

// Complete reports whether the fields can back a transaction.
func (f Fields) Complete() bool {
	return f.Amount.Valid && f.Date != "" && f.Time != ""
}

// Normalize converts raw captures into canonical values. It only fails when an
// amount was captured but does not parse, which voids the whole match.
func Normalize(groups map[string]string) (Fields, error) {
	var f Fields

	if raw, ok := groups[GroupAmount]; ok {
		amount, err := common.ParseAmount(raw)
		if err != nil {
			return Fields{}, fmt.Errorf("failed to parse amount %q: %w", raw, err)
		}
		f.Amount = decimal.NewNullDecimal(amount)
	}

	year := common.ExpandYear(groups[GroupYear])
	month := common.MonthNumber(groups[GroupMonth])
	day := padded(groups[GroupDay])
	if year != "" && month != "" && day != "" {
		f.Date = year + "-" + month + "-" + day
	}

	hour := padded(groups[GroupHour])
	minute := padded(groups[GroupMinute])
	second := padded(groups[GroupSecond])
	if hour != "" && minute != "" && second != "" {
		f.Time = hour + ":" + minute + ":" + second
	}

	f.Purpose = strings.TrimSpace(groups[GroupMerchant])
	f.Last4 = strings.TrimSpace(groups[GroupLast4])
	f.CardNo = strings.TrimSpace(groups[GroupCardNo])

	if raw, ok := groups[GroupAvailableLimit]; ok {
		if limit, err := common.ParseAmount(raw); err == nil {
			f.AvailableLimit = decimal.NewNullDecimal(limit)
		}
	}

	return f, nil
}

func padded(s string) string {
	s = strings.TrimSpace(s)
	if common.IsNumeric(s) {
		return common.PadTwo(s)
	}
	return s
}
