package money

import (
	"errors"
	"testing"
)

func TestParseMinor(t *testing.T) {
	cases := []struct {
		input string
		want  int64
		err   error
	}{
		{"100.00", 10000, nil},
		{"0.5", 50, nil},
		{"-12.34", -1234, nil},
		{"7", 700, nil},
		{"1.005", 0, ErrTooManyDecimals},
		{"", 0, ErrInvalidAmount},
		{"abc", 0, ErrInvalidAmount},
	}
	for _, tc := range cases {
		got, err := ParseMinor(tc.input)
		if !errors.Is(err, tc.err) {
			t.Fatalf("ParseMinor(%q) error = %v, want %v", tc.input, err, tc.err)
		}
		if err == nil && got != tc.want {
			t.Fatalf("ParseMinor(%q) = %d, want %d", tc.input, got, tc.want)
		}
	}
}

func TestParseAmountRoundsHalfUp(t *testing.T) {
	cases := []struct {
		input string
		want  int64
	}{
		{"12.505", 1251},
		{"12.504", 1250},
		{"0.005", 1},
		{"-0.005", -1},
		{"100", 10000},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.input)
		if err != nil {
			t.Fatalf("ParseAmount(%q) error: %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("ParseAmount(%q) = %d, want %d", tc.input, got, tc.want)
		}
	}
}

func TestFormatMinor(t *testing.T) {
	if got := FormatMinor(10000); got != "100.00" {
		t.Fatalf("expected 100.00, got %s", got)
	}
	if got := FormatMinor(-833); got != "-8.33" {
		t.Fatalf("expected -8.33, got %s", got)
	}
	if got := FormatMinor(5); got != "0.05" {
		t.Fatalf("expected 0.05, got %s", got)
	}
}
