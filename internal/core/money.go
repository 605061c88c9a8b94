// Package core holds the domain model shared by every other package.
//
// Monetary amounts travel as decimal strings end to end and are only ever
// parsed to numbers at aggregation time. ParseAmount is the single place
// that parsing happens.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a decimal-as-string monetary amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and
// allows a leading minus sign (account balances can be negative). Empty
// or malformed strings return ErrInvalidAmount.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// AmountOrZero parses like ParseAmount but maps malformed input to zero.
// Aggregations use it so one bad record cannot poison a whole summary.
func AmountOrZero(s string) decimal.Decimal {
	d, err := ParseAmount(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
