package addon

import (
	ierr "github.com/flexprice/invoicer/internal/errors"
	"github.com/flexprice/invoicer/internal/types"
)

// AppliedAddOn is a one-off charge attached to a customer. It is billed on
// an add_on invoice of its own.
type AppliedAddOn struct {
	ID             string `db:"id" json:"id"`
	AddOnID        string `db:"add_on_id" json:"add_on_id"`
	AddOnCode      string `db:"add_on_code" json:"add_on_code"`
	Name           string `db:"name" json:"name"`
	CustomerID     string `db:"customer_id" json:"customer_id"`
	AmountCents    int64  `db:"amount_cents" json:"amount_cents"`
	AmountCurrency string `db:"amount_currency" json:"amount_currency"`
	types.BaseModel
}

func (a *AppliedAddOn) Validate() error {
	switch {
	case a.CustomerID == "":
		return ierr.NewRecordInvalid("applied_add_on", a.ID, "customer_id", "must be present")
	case a.AmountCents < 0:
		return ierr.NewRecordInvalid("applied_add_on", a.ID, "amount_cents", "must be greater than or equal to 0")
	case !types.IsValidCurrency(a.AmountCurrency):
		return ierr.NewRecordInvalid("applied_add_on", a.ID, "amount_currency", "is not a valid currency")
	}
	return nil
}
