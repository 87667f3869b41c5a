package types

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// VatAmountCents returns the VAT owed on amountCents at vatRate percent,
// rounded up to the next minor unit.
func VatAmountCents(amountCents int64, vatRate decimal.Decimal) int64 {
	return decimal.NewFromInt(amountCents).
		Mul(vatRate).
		Div(hundred).
		Ceil().
		IntPart()
}

// PercentageOf returns rate percent of amountCents rounded half up
func PercentageOf(amountCents int64, rate decimal.Decimal) int64 {
	return decimal.NewFromInt(amountCents).
		Mul(rate).
		Div(hundred).
		Round(0).
		IntPart()
}
