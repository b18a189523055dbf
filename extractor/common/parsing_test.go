package common

import (
	"testing"
	"time"
)

func TestParseAmount_SimpleNumber(t *testing.T) {
	result, err := ParseAmount("2500")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.String() != "2500" {
		t.Errorf("Expected '2500', got '%s'", result.String())
	}
}

func TestParseAmount_WithCommas(t *testing.T) {
	result, err := ParseAmount("1,234.56")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.String() != "1234.56" {
		t.Errorf("Expected '1234.56', got '%s'", result.String())
	}
}

func TestParseAmount_IndianGrouping(t *testing.T) {
	result, err := ParseAmount("1,23,456.50")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.String() != "123456.5" {
		t.Errorf("Expected '123456.5', got '%s'", result.String())
	}
}

func TestParseAmount_EmptyString(t *testing.T) {
	if _, err := ParseAmount(""); err == nil {
		t.Error("Expected error for empty amount, got nil")
	}
}

func TestParseAmount_NotANumber(t *testing.T) {
	if _, err := ParseAmount("INR 12"); err == nil {
		t.Error("Expected error for non-numeric amount, got nil")
	}
}

func TestExpandYear(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"25", "2025"},
		{"99", "2099"},
		{"2024", "2024"},
		{"", ""},
		{"5", "5"},
	}

	for _, tt := range tests {
		if got := ExpandYear(tt.input); got != tt.expected {
			t.Errorf("ExpandYear(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestMonthNumber(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Feb", "02"},
		{"feb", "02"},
		{"FEB", "02"},
		{"dec", "12"},
		{"02", "02"},
		{"2", "02"},
		{"11", "11"},
		{"February", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := MonthNumber(tt.input); got != tt.expected {
			t.Errorf("MonthNumber(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestParseDate_ValidDate(t *testing.T) {
	result, err := ParseDate("02/01/06", "15/11/24")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if result.Day() != 15 {
		t.Errorf("Expected day 15, got %d", result.Day())
	}
	if result.Month() != 11 {
		t.Errorf("Expected month 11, got %d", result.Month())
	}
	if result.Year() != 2024 {
		t.Errorf("Expected year 2024, got %d", result.Year())
	}
}

func TestParseDate_InvalidDate(t *testing.T) {
	_, err := ParseDate("02/01/06", "invalid")
	if err == nil {
		t.Error("Expected error for invalid date, got nil")
	}
}

func TestParseTimestamp(t *testing.T) {
	result, err := ParseTimestamp("2025-02-15", "14:30:25")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	expected := time.Date(2025, 2, 15, 14, 30, 25, 0, time.UTC)
	if !result.Equal(expected) {
		t.Errorf("Expected %s, got %s", expected, result)
	}
}

func TestParseTimestamp_MissingTime(t *testing.T) {
	if _, err := ParseTimestamp("2025-02-15", ""); err == nil {
		t.Error("Expected error for missing time, got nil")
	}
}
