package models

import "github.com/shopspring/decimal"

// ParseAmount converts a user-supplied amount token into integer
// currency units. Fractional values are rejected outright; the ledger
// has no minor units.
func ParseAmount(raw string) (int64, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if !d.IsInteger() {
		return 0, ErrInvalidAmount
	}
	return d.IntPart(), nil
}
