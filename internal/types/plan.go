package types

import (
	ierr "github.com/flexprice/invoicer/internal/errors"
	"github.com/samber/lo"
)

// BillingInterval is the cadence at which a plan bills its subscription fee
type BillingInterval string

const (
	BillingIntervalWeekly  BillingInterval = "weekly"
	BillingIntervalMonthly BillingInterval = "monthly"
	BillingIntervalYearly  BillingInterval = "yearly"
)

func (i BillingInterval) String() string {
	return string(i)
}

func (i BillingInterval) Validate() error {
	allowed := []BillingInterval{
		BillingIntervalWeekly,
		BillingIntervalMonthly,
		BillingIntervalYearly,
	}
	if !lo.Contains(allowed, i) {
		return ierr.NewError("unknown billing interval").
			WithHintf("Plan interval %q is not supported", string(i)).
			WithReportableDetails(map[string]any{
				"interval":       i,
				"allowed_values": allowed,
			}).
			Mark(ierr.ErrConfiguration)
	}
	return nil
}

// ChargeModel is the pricing rule of a plan charge
type ChargeModel string

const (
	ChargeModelStandard ChargeModel = "standard"
)
