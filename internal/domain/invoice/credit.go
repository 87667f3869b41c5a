package invoice

import (
	ierr "github.com/flexprice/invoicer/internal/errors"
	"github.com/flexprice/invoicer/internal/types"
)

// Credit records an amount taken off an invoice and where it came from
type Credit struct {
	ID             string             `db:"id" json:"id"`
	InvoiceID      string             `db:"invoice_id" json:"invoice_id"`
	Source         types.CreditSource `db:"source" json:"source"`
	SourceID       string             `db:"source_id" json:"source_id"`
	AmountCents    int64              `db:"amount_cents" json:"amount_cents"`
	AmountCurrency string             `db:"amount_currency" json:"amount_currency"`
	types.BaseModel
}

func (c *Credit) Validate() error {
	if c.AmountCents < 0 {
		return ierr.NewRecordInvalid("credit", c.ID, "amount_cents", "must be greater than or equal to 0")
	}
	if c.SourceID == "" {
		return ierr.NewRecordInvalid("credit", c.ID, "source_id", "must be present")
	}
	return nil
}
