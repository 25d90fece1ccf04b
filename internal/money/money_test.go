package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestRoundHalfUp(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"12.345", "12.35"},
		{"12.344", "12.34"},
		{"12.3449", "12.34"},
		{"0.005", "0.01"},
		{"175500", "175500.00"},
		{"0", "0.00"},
		{"2.5", "2.50"},
	}

	for _, tt := range tests {
		d, err := decimal.NewFromString(tt.input)
		if err != nil {
			t.Fatalf("NewFromString(%q): %v", tt.input, err)
		}
		if got := Format(Round(d)); got != tt.expected {
			t.Errorf("Format(Round(%s)) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestFormatAlwaysTwoDigits(t *testing.T) {
	d := decimal.NewFromInt(70000)
	if got := Format(d); got != "70000.00" {
		t.Errorf("Format(70000) = %q, want \"70000.00\"", got)
	}
}
