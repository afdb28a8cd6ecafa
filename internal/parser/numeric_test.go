package parser

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCleanNumeric(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"clean value", "1500,00", "1500,00"},
		{"split thousands", "123 456", "123456"},
		{"split thousands with decimals", "1 234 567,89", "1234567,89"},
		{"nbsp thousands", "4\u00a0150\u00a0000,00", "4150000,00"},
		{"wrapped across lines", "12\n345,67", "12345,67"},
		{"decimal repeated twice", "4150000,004150000,00", "4150000,00"},
		{"integer repeated twice", "25002500", "2500"},
		{"short repeat kept", "1212", "1212"},
		{"two glued amounts", "33600000,0049563711,69", "33600000,00"},
		{"dot decimal", "100.50", "100.50"},
		{"empty", "", ""},
		{"whitespace only", "  ", ""},
		{"text untouched", "abc", "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanNumeric(tt.input)
			if got != tt.expected {
				t.Errorf("CleanNumeric(%q): got %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

// Integers only collapse when each half has at least minRepeatedDigits digits.
func TestCleanNumericRepeatThreshold(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"150150", "150150"},
		{"999999", "999999"},
		{"12341234", "1234"},
		{"50005000", "5000"},
		{"4150000", "4150000"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := CleanNumeric(tt.input); got != tt.expected {
				t.Errorf("CleanNumeric(%q): got %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
	if minRepeatedDigits != 4 {
		t.Errorf("minRepeatedDigits: got %d, want 4", minRepeatedDigits)
	}
}

func TestCleanNumericIdempotent(t *testing.T) {
	inputs := []string{
		"1500,00",
		"4150000,004150000,00",
		"33600000,0049563711,69",
		"1 234 567,89",
		"25002500",
		"0,00",
		"-",
		"100",
	}

	for _, in := range inputs {
		once := CleanNumeric(in)
		twice := CleanNumeric(once)
		if once != twice {
			t.Errorf("CleanNumeric not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		ok       bool
	}{
		{"1500,00", "1500", true},
		{"100.50", "100.5", true},
		{"-25,99", "-25.99", true},
		{"1 500,00 KZT", "1500", true},
		{"0,00", "0", true},
		{"", "", false},
		{"-", "", false},
		{"—", "", false},
		{".", "", false},
		{"1.234,56", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseDecimal(tt.input)
			if ok != tt.ok {
				t.Fatalf("ParseDecimal(%q) ok: got %v, want %v", tt.input, ok, tt.ok)
			}
			if !ok {
				return
			}
			want := decimal.RequireFromString(tt.expected)
			if !got.Equal(want) {
				t.Errorf("ParseDecimal(%q): got %s, want %s", tt.input, got, want)
			}
		})
	}
}

func TestIsPositiveAmount(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"100", true},
		{"0,00", false},
		{"-5", false},
		{"", false},
		{"н/д", false},
		{"4150000,004150000,00", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := isPositiveAmount(tt.input); got != tt.expected {
				t.Errorf("isPositiveAmount(%q): got %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}
