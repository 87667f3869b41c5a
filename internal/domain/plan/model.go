package plan

import (
	"context"

	ierr "github.com/flexprice/invoicer/internal/errors"
	"github.com/flexprice/invoicer/internal/types"
	"github.com/shopspring/decimal"
)

// Plan is the priced offer a subscription bills against
type Plan struct {
	ID             string                `db:"id" json:"id"`
	OrganizationID string                `db:"organization_id" json:"organization_id"`
	Name           string                `db:"name" json:"name"`
	Code           string                `db:"code" json:"code"`
	Interval       types.BillingInterval `db:"billing_interval" json:"interval"`
	PayInAdvance   bool                  `db:"pay_in_advance" json:"pay_in_advance"`
	AmountCents    int64                 `db:"amount_cents" json:"amount_cents"`
	AmountCurrency string                `db:"amount_currency" json:"amount_currency"`

	// BillChargesMonthly makes a yearly plan bill its usage every month
	BillChargesMonthly bool `db:"bill_charges_monthly" json:"bill_charges_monthly"`

	Charges []*Charge `db:"-" json:"charges,omitempty"`
	types.BaseModel
}

// Charge is a usage-based price attached to a plan
type Charge struct {
	ID                 string            `db:"id" json:"id"`
	PlanID             string            `db:"plan_id" json:"plan_id"`
	BillableMetricCode string            `db:"billable_metric_code" json:"billable_metric_code"`
	ChargeModel        types.ChargeModel `db:"charge_model" json:"charge_model"`
	AmountCurrency     string            `db:"amount_currency" json:"amount_currency"`
	// UnitAmount is the price of one unit in minor units, possibly fractional
	UnitAmount decimal.Decimal `db:"unit_amount" json:"unit_amount"`
	types.BaseModel
}

func (p *Plan) IsPayInArrear() bool {
	return !p.PayInAdvance
}

func (p *Plan) IsYearly() bool {
	return p.Interval == types.BillingIntervalYearly
}

// YearlyAmountCents normalizes the plan amount to one year so that plans of
// different intervals can be ranked against each other.
func (p *Plan) YearlyAmountCents() int64 {
	switch p.Interval {
	case types.BillingIntervalWeekly:
		return p.AmountCents * 52
	case types.BillingIntervalMonthly:
		return p.AmountCents * 12
	default:
		return p.AmountCents
	}
}

func (p *Plan) Validate() error {
	if err := p.Interval.Validate(); err != nil {
		return err
	}
	if p.AmountCents < 0 {
		return ierr.NewRecordInvalid("plan", p.ID, "amount_cents", "must be greater than or equal to 0")
	}
	if !types.IsValidCurrency(p.AmountCurrency) {
		return ierr.NewRecordInvalid("plan", p.ID, "amount_currency", "is not a valid currency")
	}
	return nil
}

// NewPlan returns a published plan with a fresh identifier
func NewPlan(ctx context.Context, code string, interval types.BillingInterval, amountCents int64, currency string) *Plan {
	return &Plan{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PLAN),
		Name:           code,
		Code:           code,
		Interval:       interval,
		AmountCents:    amountCents,
		AmountCurrency: currency,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}
}
