package service

import (
	"github.com/flexprice/invoicer/internal/domain/invoice"
	ierr "github.com/flexprice/invoicer/internal/errors"
	"github.com/flexprice/invoicer/internal/types"
	"github.com/shopspring/decimal"
)

// amounts is the running total of an invoice while credits are applied.
// Every step returns a new value; the invoice itself is only written at
// finalization.
type amounts struct {
	amountCents    int64
	vatAmountCents int64
	creditCents    int64
	vatRate        decimal.Decimal
}

// aggregateFees sums the amounts of every fee on the invoice
func aggregateFees(fees []*invoice.Fee, vatRate decimal.Decimal) amounts {
	a := amounts{vatRate: vatRate}
	for _, f := range fees {
		a.amountCents += f.AmountCents
		a.vatAmountCents += f.VatAmountCents
	}
	return a
}

// credit takes consumed off the amount and recomputes the VAT on what is
// left. The VAT is recomputed even when nothing was consumed, since the
// aggregated fee VAT is a sum of per-fee ceilings.
func (a amounts) credit(consumed int64) (amounts, error) {
	if consumed < 0 || consumed > a.amountCents {
		return a, ierr.NewError("credit does not fit the amount due").
			WithHintf("%d cents were consumed while %d were due", consumed, a.amountCents).
			WithReportableDetails(map[string]any{
				"consumed_cents": consumed,
				"amount_cents":   a.amountCents,
			}).
			Mark(ierr.ErrDelegate)
	}

	amount := a.amountCents - consumed
	return amounts{
		amountCents:    amount,
		vatAmountCents: types.VatAmountCents(amount, a.vatRate),
		creditCents:    a.creditCents + consumed,
		vatRate:        a.vatRate,
	}, nil
}

func (a amounts) totalCents() int64 {
	return a.amountCents + a.vatAmountCents
}

func (a amounts) positive() bool {
	return a.amountCents > 0
}

// view returns a copy of inv carrying the running amounts, for collaborators
// that need to know what is still due.
func (a amounts) view(inv *invoice.Invoice) *invoice.Invoice {
	cp := *inv
	cp.AmountCents = a.amountCents
	cp.VatAmountCents = a.vatAmountCents
	cp.CreditAmountCents = a.creditCents
	cp.TotalAmountCents = a.totalCents()
	return &cp
}
