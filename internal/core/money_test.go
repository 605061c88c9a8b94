package core

import (
	"errors"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"12.34", "12.34", true},
		{"12,34", "12.34", true},
		{"-30.00", "-30", true},
		{" 7 ", "7", true},
		{"0.00", "0", true},
		{"", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
	}
	for i, tc := range cases {
		d, err := ParseAmount(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("case %d: expected ok, got %v", i, err)
		}
		if !tc.ok {
			if !errors.Is(err, ErrInvalidAmount) {
				t.Fatalf("case %d: expected ErrInvalidAmount, got %v", i, err)
			}
			continue
		}
		if d.String() != tc.want {
			t.Fatalf("case %d: got %s, want %s", i, d.String(), tc.want)
		}
	}
}

func TestAmountOrZero(t *testing.T) {
	if !AmountOrZero("garbage").IsZero() {
		t.Fatalf("expected zero for garbage input")
	}
	if AmountOrZero("3.50").String() != "3.5" {
		t.Fatalf("unexpected value")
	}
}
