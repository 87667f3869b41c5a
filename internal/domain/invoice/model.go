package invoice

import (
	"time"

	ierr "github.com/flexprice/invoicer/internal/errors"
	"github.com/flexprice/invoicer/internal/types"
)

// Invoice is the billing document covering one or more subscriptions
type Invoice struct {
	ID             string              `db:"id" json:"id"`
	OrganizationID string              `db:"organization_id" json:"organization_id"`
	CustomerID     string              `db:"customer_id" json:"customer_id"`
	InvoiceType    types.InvoiceType   `db:"invoice_type" json:"invoice_type"`
	InvoiceStatus  types.InvoiceStatus `db:"invoice_status" json:"invoice_status"`
	// IssuingDate is a calendar date in the customer's timezone
	IssuingDate       time.Time `db:"issuing_date" json:"issuing_date"`
	AmountCents       int64     `db:"amount_cents" json:"amount_cents"`
	VatAmountCents    int64     `db:"vat_amount_cents" json:"vat_amount_cents"`
	CreditAmountCents int64     `db:"credit_amount_cents" json:"credit_amount_cents"`
	TotalAmountCents  int64     `db:"total_amount_cents" json:"total_amount_cents"`
	AmountCurrency    string    `db:"amount_currency" json:"amount_currency"`

	SubscriptionIDs []string  `db:"-" json:"subscription_ids"`
	Fees            []*Fee    `db:"-" json:"fees,omitempty"`
	Credits         []*Credit `db:"-" json:"credits,omitempty"`
	types.BaseModel
}

func (i *Invoice) Validate() error {
	if err := i.InvoiceType.Validate(); err != nil {
		return err
	}
	if err := i.InvoiceStatus.Validate(); err != nil {
		return err
	}
	switch {
	case i.AmountCents < 0:
		return ierr.NewRecordInvalid("invoice", i.ID, "amount_cents", "must be greater than or equal to 0")
	case i.VatAmountCents < 0:
		return ierr.NewRecordInvalid("invoice", i.ID, "vat_amount_cents", "must be greater than or equal to 0")
	case i.TotalAmountCents != i.AmountCents+i.VatAmountCents:
		return ierr.NewRecordInvalid("invoice", i.ID, "total_amount_cents", "must equal amount plus vat")
	case i.AmountCurrency != "" && !types.IsValidCurrency(i.AmountCurrency):
		return ierr.NewRecordInvalid("invoice", i.ID, "amount_currency", "is not a valid currency")
	}
	return nil
}
