package creditnote

import (
	"github.com/flexprice/invoicer/internal/types"
)

// CreditNote is a customer balance issued against a past invoice that later
// invoices can consume.
type CreditNote struct {
	ID                 string                 `db:"id" json:"id"`
	CustomerID         string                 `db:"customer_id" json:"customer_id"`
	InvoiceID          string                 `db:"invoice_id" json:"invoice_id"`
	CreditStatus       types.CreditNoteStatus `db:"credit_status" json:"credit_status"`
	TotalAmountCents   int64                  `db:"total_amount_cents" json:"total_amount_cents"`
	BalanceAmountCents int64                  `db:"balance_amount_cents" json:"balance_amount_cents"`
	AmountCurrency     string                 `db:"amount_currency" json:"amount_currency"`
	types.BaseModel
}

func (c *CreditNote) IsAvailable() bool {
	return c.CreditStatus == types.CreditNoteStatusAvailable && c.BalanceAmountCents > 0
}

// Consume takes up to amountCents off the balance and returns what was taken
func (c *CreditNote) Consume(amountCents int64) int64 {
	if amountCents <= 0 || !c.IsAvailable() {
		return 0
	}
	consumed := min(amountCents, c.BalanceAmountCents)
	c.BalanceAmountCents -= consumed
	if c.BalanceAmountCents == 0 {
		c.CreditStatus = types.CreditNoteStatusConsumed
	}
	return consumed
}
