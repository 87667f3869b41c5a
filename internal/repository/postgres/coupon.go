package postgres

import (
	"context"
	"time"

	"github.com/flexprice/invoicer/internal/domain/coupon"
	"github.com/flexprice/invoicer/internal/logger"
	"github.com/flexprice/invoicer/internal/postgres"
	"github.com/flexprice/invoicer/internal/types"
)

type appliedCouponRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

func NewAppliedCouponRepository(db postgres.IClient, logger *logger.Logger) coupon.Repository {
	return &appliedCouponRepository{db: db, logger: logger}
}

func (r *appliedCouponRepository) Create(ctx context.Context, c *coupon.AppliedCoupon) error {
	query := `
		INSERT INTO applied_coupons (
			id, coupon_id, coupon_code, customer_id, coupon_status, coupon_type, frequency,
			amount_cents, amount_currency, percentage_rate, frequency_duration_remaining,
			tenant_id, status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :coupon_id, :coupon_code, :customer_id, :coupon_status, :coupon_type, :frequency,
			:amount_cents, :amount_currency, :percentage_rate, :frequency_duration_remaining,
			:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by
		)
	`
	_, err := r.db.Querier(ctx).NamedExecContext(ctx, query, c)
	return translateError(err, "applied_coupon", c.ID)
}

func (r *appliedCouponRepository) ListActiveByCustomer(ctx context.Context, customerID string) ([]*coupon.AppliedCoupon, error) {
	var coupons []*coupon.AppliedCoupon
	err := r.db.Querier(ctx).SelectContext(ctx, &coupons, `
		SELECT * FROM applied_coupons
		WHERE customer_id = $1 AND coupon_status = $2
		ORDER BY created_at, id
		FOR UPDATE
	`, customerID, types.AppliedCouponStatusActive)
	if err != nil {
		return nil, translateError(err, "applied_coupon", "")
	}
	return coupons, nil
}

func (r *appliedCouponRepository) Update(ctx context.Context, c *coupon.AppliedCoupon) error {
	c.UpdatedAt = time.Now().UTC()
	c.UpdatedBy = types.GetUserID(ctx)

	_, err := r.db.Querier(ctx).NamedExecContext(ctx, `
		UPDATE applied_coupons SET
			coupon_status = :coupon_status,
			frequency_duration_remaining = :frequency_duration_remaining,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id
	`, c)
	return translateError(err, "applied_coupon", c.ID)
}
