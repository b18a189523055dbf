package common

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TimestampLayout is the layout of a transaction's "date time" pair.
const TimestampLayout = "2006-01-02 15:04:05"

var shortMonthToNumber = map[string]string{
	"jan": "01", "feb": "02", "mar": "03", "apr": "04",
	"may": "05", "jun": "06", "jul": "07", "aug": "08",
	"sep": "09", "oct": "10", "nov": "11", "dec": "12",
}

var errEmptyAmount = errors.New("empty amount")

// ParseAmount strips thousands separators and parses the remainder as a decimal.
// Unlike a lenient cleaner it fails on anything that is not a plain number.
func ParseAmount(text string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(strings.ReplaceAll(text, ",", ""))
	if clean == "" {
		return decimal.Zero, errEmptyAmount
	}
	return decimal.NewFromString(clean)
}

// ExpandYear turns a two digit year into 20YY. Breaks after 2099.
func ExpandYear(year string) string {
	year = strings.TrimSpace(year)
	if len(year) == 2 && IsNumeric(year) {
		return "20" + year
	}
	return year
}

// MonthNumber resolves a captured month to its two digit form.
// Numeric values are padded, names are looked up by their lowercased value.
// Unknown names resolve to "".
func MonthNumber(month string) string {
	month = strings.TrimSpace(month)
	if IsNumeric(month) {
		return PadTwo(month)
	}
	return shortMonthToNumber[strings.ToLower(month)]
}

// PadTwo left pads a single digit with a zero.
func PadTwo(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

func IsNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ParseDate parses a date string using a layout, handling common issues
func ParseDate(layout, value string) (time.Time, error) {
	return time.ParseInLocation(layout, strings.TrimSpace(value), time.Local)
}

// ParseTimestamp parses a transaction's date and time pair in UTC.
func ParseTimestamp(date, clock string) (time.Time, error) {
	return time.ParseInLocation(TimestampLayout, strings.TrimSpace(date)+" "+strings.TrimSpace(clock), time.UTC)
}
