package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-09")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.Year() != 2025 || int(d.Month()) != 3 || d.Day() != 9 {
		t.Fatalf("unexpected date %v", d)
	}

	if _, err := ParseDate("09/03/2025"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	tx := Transaction{ID: 1, Account: 2, Amount: "10.00", Date: NewDate(2025, 7, 4)}
	raw, err := json.Marshal(tx)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back Transaction
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Date.String() != "2025-07-04" {
		t.Fatalf("got date %q", back.Date.String())
	}
	if back.Category != nil {
		t.Fatalf("expected nil category")
	}
}

func TestAccountInputValidate(t *testing.T) {
	cases := []struct {
		in  AccountInput
		err error
	}{
		{AccountInput{Name: "Checking"}, nil},
		{AccountInput{Name: "Checking", Balance: "100.00"}, nil},
		{AccountInput{Name: "  "}, ErrEmptyName},
		{AccountInput{Name: "Checking", Balance: "abc"}, ErrInvalidAmount},
	}
	for i, tc := range cases {
		if err := tc.in.Validate(); !errors.Is(err, tc.err) {
			t.Fatalf("case %d: expected %v, got %v", i, tc.err, err)
		}
	}
}

func TestCategoryInputValidate(t *testing.T) {
	if err := (CategoryInput{Name: "Rent", Type: Expense}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (CategoryInput{Name: "Rent", Type: "SAVINGS"}).Validate(); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
	if err := (CategoryInput{Type: Income}).Validate(); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
}

func TestTransactionInputValidate(t *testing.T) {
	good := TransactionInput{Account: 1, Amount: "12.50", Date: NewDate(2025, 1, 1)}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []struct {
		in  TransactionInput
		err error
	}{
		{TransactionInput{Amount: "12.50", Date: NewDate(2025, 1, 1)}, ErrMissingAccount},
		{TransactionInput{Account: 1, Amount: "", Date: NewDate(2025, 1, 1)}, ErrInvalidAmount},
		{TransactionInput{Account: 1, Amount: "12.50"}, ErrInvalidDate},
	}
	for i, tc := range bads {
		if err := tc.in.Validate(); !errors.Is(err, tc.err) {
			t.Fatalf("case %d: expected %v, got %v", i, tc.err, err)
		}
	}
}

func TestTransferInputValidate(t *testing.T) {
	good := TransferInput{FromAccount: 1, ToAccount: 2, Amount: "5.00", Date: NewDate(2025, 1, 1)}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	same := TransferInput{FromAccount: 1, ToAccount: 1, Amount: "5.00", Date: NewDate(2025, 1, 1)}
	if err := same.Validate(); !errors.Is(err, ErrSameAccount) {
		t.Fatalf("expected ErrSameAccount, got %v", err)
	}
}
