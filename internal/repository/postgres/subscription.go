package postgres

import (
	"context"

	"github.com/flexprice/invoicer/internal/domain/subscription"
	"github.com/flexprice/invoicer/internal/logger"
	"github.com/flexprice/invoicer/internal/postgres"
)

type subscriptionRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

func NewSubscriptionRepository(db postgres.IClient, logger *logger.Logger) subscription.Repository {
	return &subscriptionRepository{db: db, logger: logger}
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *subscription.Subscription) error {
	query := `
		INSERT INTO subscriptions (
			id,
			external_id,
			customer_id,
			plan_id,
			subscription_status,
			billing_time,
			subscription_date,
			started_at,
			terminated_at,
			previous_subscription_id,
			next_subscription_id,
			tenant_id,
			status,
			created_at,
			updated_at,
			created_by,
			updated_by
		) VALUES (
			:id,
			:external_id,
			:customer_id,
			:plan_id,
			:subscription_status,
			:billing_time,
			:subscription_date,
			:started_at,
			:terminated_at,
			:previous_subscription_id,
			:next_subscription_id,
			:tenant_id,
			:status,
			:created_at,
			:updated_at,
			:created_by,
			:updated_by
		)
	`
	_, err := r.db.Querier(ctx).NamedExecContext(ctx, query, sub)
	return translateError(err, "subscription", sub.ID)
}

func (r *subscriptionRepository) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	var sub subscription.Subscription
	err := r.db.Querier(ctx).GetContext(ctx, &sub, `SELECT * FROM subscriptions WHERE id = $1`, id)
	if err != nil {
		return nil, translateError(err, "subscription", id)
	}
	return &sub, nil
}
