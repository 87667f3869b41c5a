package postgres

import (
	"context"

	"github.com/flexprice/invoicer/internal/domain/customer"
	"github.com/flexprice/invoicer/internal/logger"
	"github.com/flexprice/invoicer/internal/postgres"
)

type customerRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

func NewCustomerRepository(db postgres.IClient, logger *logger.Logger) customer.Repository {
	return &customerRepository{db: db, logger: logger}
}

func (r *customerRepository) Create(ctx context.Context, c *customer.Customer) error {
	query := `
		INSERT INTO customers (
			id, organization_id, external_id, name, timezone, vat_rate, payment_provider,
			tenant_id, status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :organization_id, :external_id, :name, :timezone, :vat_rate, :payment_provider,
			:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by
		)
	`
	_, err := r.db.Querier(ctx).NamedExecContext(ctx, query, c)
	return translateError(err, "customer", c.ID)
}

func (r *customerRepository) Get(ctx context.Context, id string) (*customer.Customer, error) {
	q := r.db.Querier(ctx)

	var c customer.Customer
	if err := q.GetContext(ctx, &c, `SELECT * FROM customers WHERE id = $1`, id); err != nil {
		return nil, translateError(err, "customer", id)
	}

	var org customer.Organization
	if err := q.GetContext(ctx, &org, `SELECT * FROM organizations WHERE id = $1`, c.OrganizationID); err != nil {
		return nil, translateError(err, "organization", c.OrganizationID)
	}
	c.Organization = &org

	return &c, nil
}

func (r *customerRepository) CreateOrganization(ctx context.Context, org *customer.Organization) error {
	query := `
		INSERT INTO organizations (
			id, name, timezone, vat_rate, webhook_url,
			tenant_id, status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :name, :timezone, :vat_rate, :webhook_url,
			:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by
		)
	`
	_, err := r.db.Querier(ctx).NamedExecContext(ctx, query, org)
	return translateError(err, "organization", org.ID)
}
