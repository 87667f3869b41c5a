package coupon

import "context"

// Repository defines the interface for applied coupon persistence operations
type Repository interface {
	Create(ctx context.Context, coupon *AppliedCoupon) error
	// ListActiveByCustomer returns the customer's active coupons, oldest first
	ListActiveByCustomer(ctx context.Context, customerID string) ([]*AppliedCoupon, error)
	Update(ctx context.Context, coupon *AppliedCoupon) error
}
