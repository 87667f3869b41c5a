package invoice

import (
	"time"

	ierr "github.com/flexprice/invoicer/internal/errors"
	"github.com/flexprice/invoicer/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Fee is one priced line of an invoice
type Fee struct {
	ID             string          `db:"id" json:"id"`
	InvoiceID      string          `db:"invoice_id" json:"invoice_id"`
	SubscriptionID string          `db:"subscription_id" json:"subscription_id"`
	ChargeID       *string         `db:"charge_id" json:"charge_id,omitempty"`
	AppliedAddOnID *string         `db:"applied_add_on_id" json:"applied_add_on_id,omitempty"`
	FeeType        types.FeeType   `db:"fee_type" json:"fee_type"`
	AmountCents    int64           `db:"amount_cents" json:"amount_cents"`
	AmountCurrency string          `db:"amount_currency" json:"amount_currency"`
	VatAmountCents int64           `db:"vat_amount_cents" json:"vat_amount_cents"`
	VatRate        decimal.Decimal `db:"vat_rate" json:"vat_rate"`
	Units          decimal.Decimal `db:"units" json:"units"`
	FromDatetime   time.Time       `db:"from_datetime" json:"from_datetime"`
	ToDatetime     time.Time       `db:"to_datetime" json:"to_datetime"`
	// IdempotencyKey is unique per fee and guards against double billing
	IdempotencyKey string `db:"idempotency_key" json:"idempotency_key"`
	types.BaseModel
}

func (f *Fee) IsSubscriptionFee() bool {
	return f.FeeType == types.FeeTypeSubscription
}

func (f *Fee) Validate() error {
	switch {
	case f.InvoiceID == "":
		return ierr.NewRecordInvalid("fee", f.ID, "invoice_id", "must be present")
	case !lo.Contains([]types.FeeType{types.FeeTypeSubscription, types.FeeTypeCharge, types.FeeTypeAddOn}, f.FeeType):
		return ierr.NewRecordInvalid("fee", f.ID, "fee_type", "is not included in the list")
	case f.FeeType == types.FeeTypeCharge && f.ChargeID == nil:
		return ierr.NewRecordInvalid("fee", f.ID, "charge_id", "must be present on charge fees")
	case f.FeeType == types.FeeTypeAddOn && f.AppliedAddOnID == nil:
		return ierr.NewRecordInvalid("fee", f.ID, "applied_add_on_id", "must be present on add-on fees")
	case f.FeeType != types.FeeTypeAddOn && f.SubscriptionID == "":
		return ierr.NewRecordInvalid("fee", f.ID, "subscription_id", "must be present")
	case f.AmountCents < 0:
		return ierr.NewRecordInvalid("fee", f.ID, "amount_cents", "must be greater than or equal to 0")
	case f.VatAmountCents < 0:
		return ierr.NewRecordInvalid("fee", f.ID, "vat_amount_cents", "must be greater than or equal to 0")
	case !types.IsValidCurrency(f.AmountCurrency):
		return ierr.NewRecordInvalid("fee", f.ID, "amount_currency", "is not a valid currency")
	case f.ToDatetime.Before(f.FromDatetime):
		return ierr.NewRecordInvalid("fee", f.ID, "to_datetime", "must not precede from_datetime")
	}
	return nil
}
