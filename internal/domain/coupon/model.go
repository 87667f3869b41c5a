package coupon

import (
	"github.com/flexprice/invoicer/internal/types"
	"github.com/shopspring/decimal"
)

// AppliedCoupon is a coupon attached to a customer
type AppliedCoupon struct {
	ID             string                    `db:"id" json:"id"`
	CouponID       string                    `db:"coupon_id" json:"coupon_id"`
	CouponCode     string                    `db:"coupon_code" json:"coupon_code"`
	CustomerID     string                    `db:"customer_id" json:"customer_id"`
	CouponStatus   types.AppliedCouponStatus `db:"coupon_status" json:"coupon_status"`
	CouponType     types.CouponType          `db:"coupon_type" json:"coupon_type"`
	Frequency      types.CouponFrequency     `db:"frequency" json:"frequency"`
	AmountCents    int64                     `db:"amount_cents" json:"amount_cents"`
	AmountCurrency string                    `db:"amount_currency" json:"amount_currency"`
	PercentageRate decimal.Decimal           `db:"percentage_rate" json:"percentage_rate"`
	// FrequencyDurationRemaining counts the invoices a recurring coupon still covers
	FrequencyDurationRemaining int `db:"frequency_duration_remaining" json:"frequency_duration_remaining"`
	types.BaseModel
}

func (c *AppliedCoupon) IsActive() bool {
	return c.CouponStatus == types.AppliedCouponStatusActive
}

func (c *AppliedCoupon) IsFixedAmount() bool {
	return c.CouponType == types.CouponTypeFixedAmount
}

// TracksRemainingAmount reports whether the coupon amount is spread over
// several invoices until exhausted, which is the case of fixed once coupons.
func (c *AppliedCoupon) TracksRemainingAmount() bool {
	return c.IsFixedAmount() && c.Frequency == types.CouponFrequencyOnce
}

// RemainingCents is what is left of the coupon amount once consumedCents
// were credited to earlier invoices.
func (c *AppliedCoupon) RemainingCents(consumedCents int64) int64 {
	if !c.TracksRemainingAmount() {
		return c.AmountCents
	}
	return max(0, c.AmountCents-consumedCents)
}

// Discount returns how much the coupon takes off an invoice of amountCents
func (c *AppliedCoupon) Discount(amountCents, consumedCents int64) int64 {
	if amountCents <= 0 {
		return 0
	}
	var discount int64
	if c.IsFixedAmount() {
		discount = c.RemainingCents(consumedCents)
	} else {
		discount = types.PercentageOf(amountCents, c.PercentageRate)
	}
	return max(0, min(discount, amountCents))
}

// MarkUsed records one use of the coupon and terminates it once exhausted.
// consumedCents is the total credited by the coupon, this use included.
func (c *AppliedCoupon) MarkUsed(consumedCents int64) {
	switch c.Frequency {
	case types.CouponFrequencyOnce:
		if c.RemainingCents(consumedCents) <= 0 || !c.IsFixedAmount() {
			c.CouponStatus = types.AppliedCouponStatusTerminated
		}
	case types.CouponFrequencyRecurring:
		c.FrequencyDurationRemaining--
		if c.FrequencyDurationRemaining <= 0 {
			c.CouponStatus = types.AppliedCouponStatusTerminated
		}
	}
}
