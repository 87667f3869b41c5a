package testutil

import (
	"context"

	"github.com/flexprice/invoicer/internal/domain/coupon"
)

// InMemoryAppliedCouponStore implements coupon.Repository
type InMemoryAppliedCouponStore struct {
	*InMemoryStore[coupon.AppliedCoupon]
}

func NewInMemoryAppliedCouponStore() *InMemoryAppliedCouponStore {
	return &InMemoryAppliedCouponStore{
		InMemoryStore: NewInMemoryStore[coupon.AppliedCoupon](),
	}
}

func (s *InMemoryAppliedCouponStore) Create(ctx context.Context, c *coupon.AppliedCoupon) error {
	return s.InMemoryStore.Create(ctx, c.ID, *c)
}

func (s *InMemoryAppliedCouponStore) Get(ctx context.Context, id string) (*coupon.AppliedCoupon, error) {
	c, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *InMemoryAppliedCouponStore) ListActiveByCustomer(ctx context.Context, customerID string) ([]*coupon.AppliedCoupon, error) {
	coupons := s.List(ctx,
		func(_ context.Context, c coupon.AppliedCoupon) bool {
			return c.CustomerID == customerID && c.IsActive()
		},
		func(a, b coupon.AppliedCoupon) bool { return olderThan(a.BaseModel, b.BaseModel, a.ID, b.ID) },
	)
	return toPointers(coupons), nil
}

func (s *InMemoryAppliedCouponStore) Update(ctx context.Context, c *coupon.AppliedCoupon) error {
	return s.InMemoryStore.Update(ctx, c.ID, *c)
}
