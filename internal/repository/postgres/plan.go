package postgres

import (
	"context"

	"github.com/flexprice/invoicer/internal/domain/plan"
	"github.com/flexprice/invoicer/internal/logger"
	"github.com/flexprice/invoicer/internal/postgres"
)

type planRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

func NewPlanRepository(db postgres.IClient, logger *logger.Logger) plan.Repository {
	return &planRepository{db: db, logger: logger}
}

func (r *planRepository) Create(ctx context.Context, p *plan.Plan) error {
	query := `
		INSERT INTO plans (
			id, organization_id, name, code, billing_interval, pay_in_advance,
			bill_charges_monthly, amount_cents, amount_currency,
			tenant_id, status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :organization_id, :name, :code, :billing_interval, :pay_in_advance,
			:bill_charges_monthly, :amount_cents, :amount_currency,
			:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by
		)
	`
	_, err := r.db.Querier(ctx).NamedExecContext(ctx, query, p)
	return translateError(err, "plan", p.ID)
}

func (r *planRepository) Get(ctx context.Context, id string) (*plan.Plan, error) {
	q := r.db.Querier(ctx)

	var p plan.Plan
	if err := q.GetContext(ctx, &p, `SELECT * FROM plans WHERE id = $1`, id); err != nil {
		return nil, translateError(err, "plan", id)
	}

	var charges []*plan.Charge
	err := q.SelectContext(ctx, &charges, `
		SELECT * FROM charges
		WHERE plan_id = $1 AND status = 'published'
		ORDER BY created_at, id
	`, id)
	if err != nil {
		return nil, translateError(err, "charge", "")
	}
	p.Charges = charges

	return &p, nil
}

func (r *planRepository) CreateCharge(ctx context.Context, c *plan.Charge) error {
	query := `
		INSERT INTO charges (
			id, plan_id, billable_metric_code, charge_model, unit_amount, amount_currency,
			tenant_id, status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :plan_id, :billable_metric_code, :charge_model, :unit_amount, :amount_currency,
			:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by
		)
	`
	_, err := r.db.Querier(ctx).NamedExecContext(ctx, query, c)
	return translateError(err, "charge", c.ID)
}
