package postgres

import (
	"context"

	"github.com/flexprice/invoicer/internal/domain/addon"
	"github.com/flexprice/invoicer/internal/logger"
	"github.com/flexprice/invoicer/internal/postgres"
)

type appliedAddOnRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

func NewAppliedAddOnRepository(db postgres.IClient, logger *logger.Logger) addon.Repository {
	return &appliedAddOnRepository{db: db, logger: logger}
}

func (r *appliedAddOnRepository) Create(ctx context.Context, a *addon.AppliedAddOn) error {
	query := `
		INSERT INTO applied_add_ons (
			id, add_on_id, add_on_code, name, customer_id, amount_cents, amount_currency,
			tenant_id, status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :add_on_id, :add_on_code, :name, :customer_id, :amount_cents, :amount_currency,
			:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by
		)
	`
	_, err := r.db.Querier(ctx).NamedExecContext(ctx, query, a)
	return translateError(err, "applied_add_on", a.ID)
}

func (r *appliedAddOnRepository) Get(ctx context.Context, id string) (*addon.AppliedAddOn, error) {
	var a addon.AppliedAddOn
	err := r.db.Querier(ctx).GetContext(ctx, &a, `SELECT * FROM applied_add_ons WHERE id = $1`, id)
	if err != nil {
		return nil, translateError(err, "applied_add_on", id)
	}
	return &a, nil
}
