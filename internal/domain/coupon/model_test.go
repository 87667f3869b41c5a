package coupon

import (
	"testing"

	"github.com/flexprice/invoicer/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAppliedCoupon_Discount(t *testing.T) {
	tests := []struct {
		name     string
		coupon   AppliedCoupon
		amount   int64
		consumed int64
		want     int64
	}{
		{
			name:   "fixed amount below invoice amount",
			coupon: AppliedCoupon{CouponType: types.CouponTypeFixedAmount, AmountCents: 200},
			amount: 700,
			want:   200,
		},
		{
			name:   "fixed amount capped by invoice amount",
			coupon: AppliedCoupon{CouponType: types.CouponTypeFixedAmount, AmountCents: 900},
			amount: 700,
			want:   700,
		},
		{
			name:   "percentage rounds half up",
			coupon: AppliedCoupon{CouponType: types.CouponTypePercentage, PercentageRate: decimal.NewFromFloat(12.5)},
			amount: 1004,
			want:   126,
		},
		{
			name: "fixed once coupon keeps what earlier invoices left",
			coupon: AppliedCoupon{
				CouponType:  types.CouponTypeFixedAmount,
				Frequency:   types.CouponFrequencyOnce,
				AmountCents: 500,
			},
			amount:   1000,
			consumed: 200,
			want:     300,
		},
		{
			name: "fixed forever coupon ignores earlier invoices",
			coupon: AppliedCoupon{
				CouponType:  types.CouponTypeFixedAmount,
				Frequency:   types.CouponFrequencyForever,
				AmountCents: 500,
			},
			amount:   1000,
			consumed: 200,
			want:     500,
		},
		{
			name:   "nothing left to discount",
			coupon: AppliedCoupon{CouponType: types.CouponTypeFixedAmount, AmountCents: 200},
			amount: 0,
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.coupon.Discount(tt.amount, tt.consumed))
		})
	}
}

func TestAppliedCoupon_MarkUsed(t *testing.T) {
	percentOnce := &AppliedCoupon{
		CouponStatus: types.AppliedCouponStatusActive,
		CouponType:   types.CouponTypePercentage,
		Frequency:    types.CouponFrequencyOnce,
	}
	percentOnce.MarkUsed(10)
	assert.False(t, percentOnce.IsActive())

	fixedOnce := &AppliedCoupon{
		CouponStatus: types.AppliedCouponStatusActive,
		CouponType:   types.CouponTypeFixedAmount,
		Frequency:    types.CouponFrequencyOnce,
		AmountCents:  500,
	}
	fixedOnce.MarkUsed(200)
	assert.True(t, fixedOnce.IsActive())
	assert.Equal(t, int64(300), fixedOnce.RemainingCents(200))
	fixedOnce.MarkUsed(500)
	assert.False(t, fixedOnce.IsActive())

	recurring := &AppliedCoupon{
		CouponStatus:               types.AppliedCouponStatusActive,
		Frequency:                  types.CouponFrequencyRecurring,
		FrequencyDurationRemaining: 2,
	}
	recurring.MarkUsed(0)
	assert.True(t, recurring.IsActive())
	recurring.MarkUsed(0)
	assert.False(t, recurring.IsActive())

	forever := &AppliedCoupon{CouponStatus: types.AppliedCouponStatusActive, Frequency: types.CouponFrequencyForever}
	forever.MarkUsed(0)
	assert.True(t, forever.IsActive())
}
