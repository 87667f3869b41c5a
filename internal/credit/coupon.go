package credit

import (
	"context"

	"github.com/flexprice/invoicer/internal/domain/coupon"
	"github.com/flexprice/invoicer/internal/domain/invoice"
	"github.com/flexprice/invoicer/internal/interfaces"
	"github.com/flexprice/invoicer/internal/logger"
	"github.com/flexprice/invoicer/internal/types"
)

type appliedCouponService struct {
	couponRepo coupon.Repository
	creditRepo invoice.CreditRepository
	logger     *logger.Logger
}

// NewAppliedCouponService applies one customer coupon to an invoice. Fixed
// coupons take at most their remaining amount, percentage coupons take their
// rate of the amount still due.
func NewAppliedCouponService(
	couponRepo coupon.Repository,
	creditRepo invoice.CreditRepository,
	logger *logger.Logger,
) interfaces.CouponApplier {
	return &appliedCouponService{
		couponRepo: couponRepo,
		creditRepo: creditRepo,
		logger:     logger,
	}
}

func (s *appliedCouponService) ApplyCoupon(ctx context.Context, inv *invoice.Invoice, applied *coupon.AppliedCoupon) (*interfaces.CouponResult, error) {
	if !applied.IsActive() {
		return &interfaces.CouponResult{}, nil
	}

	var consumed int64
	if applied.TracksRemainingAmount() {
		var err error
		if consumed, err = s.creditRepo.SumBySource(ctx, types.CreditSourceAppliedCoupon, applied.ID); err != nil {
			return nil, err
		}
	}

	discount := applied.Discount(inv.AmountCents, consumed)
	applied.MarkUsed(consumed + discount)
	if err := s.couponRepo.Update(ctx, applied); err != nil {
		return nil, err
	}

	c, err := newCredit(ctx, inv, types.CreditSourceAppliedCoupon, applied.ID, discount)
	if err != nil {
		return nil, err
	}
	if err := s.creditRepo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Debugw("applied coupon",
		"invoice_id", inv.ID,
		"applied_coupon_id", applied.ID,
		"coupon_code", applied.CouponCode,
		"discount_cents", discount,
		"remaining_cents", applied.RemainingCents(consumed+discount))

	return &interfaces.CouponResult{Credit: c, ConsumedCents: discount}, nil
}
