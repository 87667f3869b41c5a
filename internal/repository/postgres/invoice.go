package postgres

import (
	"context"
	"time"

	"github.com/flexprice/invoicer/internal/domain/invoice"
	"github.com/flexprice/invoicer/internal/logger"
	"github.com/flexprice/invoicer/internal/postgres"
	"github.com/flexprice/invoicer/internal/types"
)

type invoiceRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

func NewInvoiceRepository(db postgres.IClient, logger *logger.Logger) invoice.Repository {
	return &invoiceRepository{db: db, logger: logger}
}

func (r *invoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	return r.db.WithTx(ctx, func(ctx context.Context) error {
		q := r.db.Querier(ctx)
		query := `
			INSERT INTO invoices (
				id, organization_id, customer_id, invoice_type, invoice_status, issuing_date,
				amount_cents, vat_amount_cents, credit_amount_cents, total_amount_cents, amount_currency,
				tenant_id, status, created_at, updated_at, created_by, updated_by
			) VALUES (
				:id, :organization_id, :customer_id, :invoice_type, :invoice_status, :issuing_date,
				:amount_cents, :vat_amount_cents, :credit_amount_cents, :total_amount_cents, :amount_currency,
				:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by
			)
		`
		if _, err := q.NamedExecContext(ctx, query, inv); err != nil {
			return translateError(err, "invoice", inv.ID)
		}

		for i, subID := range inv.SubscriptionIDs {
			_, err := q.ExecContext(ctx, `
				INSERT INTO invoice_subscriptions (invoice_id, subscription_id, position)
				VALUES ($1, $2, $3)
			`, inv.ID, subID, i)
			if err != nil {
				return translateError(err, "invoice_subscription", inv.ID)
			}
		}
		return nil
	})
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	q := r.db.Querier(ctx)

	var inv invoice.Invoice
	if err := q.GetContext(ctx, &inv, `SELECT * FROM invoices WHERE id = $1`, id); err != nil {
		return nil, translateError(err, "invoice", id)
	}

	var subIDs []string
	err := q.SelectContext(ctx, &subIDs, `
		SELECT subscription_id FROM invoice_subscriptions
		WHERE invoice_id = $1
		ORDER BY position
	`, id)
	if err != nil {
		return nil, translateError(err, "invoice_subscription", id)
	}
	inv.SubscriptionIDs = subIDs

	return &inv, nil
}

func (r *invoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	inv.UpdatedAt = time.Now().UTC()
	inv.UpdatedBy = types.GetUserID(ctx)

	query := `
		UPDATE invoices SET
			invoice_status = :invoice_status,
			issuing_date = :issuing_date,
			amount_cents = :amount_cents,
			vat_amount_cents = :vat_amount_cents,
			credit_amount_cents = :credit_amount_cents,
			total_amount_cents = :total_amount_cents,
			amount_currency = :amount_currency,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id
	`
	_, err := r.db.Querier(ctx).NamedExecContext(ctx, query, inv)
	return translateError(err, "invoice", inv.ID)
}

func (r *invoiceRepository) CountBySubscription(ctx context.Context, subscriptionID string, excludeInvoiceID string) (int, error) {
	var count int
	err := r.db.Querier(ctx).GetContext(ctx, &count, `
		SELECT COUNT(*) FROM invoice_subscriptions
		WHERE subscription_id = $1 AND invoice_id <> $2
	`, subscriptionID, excludeInvoiceID)
	if err != nil {
		return 0, translateError(err, "invoice", "")
	}
	return count, nil
}

// add-on fees have no subscription
const feeColumns = `
	id, invoice_id, COALESCE(subscription_id, '') AS subscription_id, charge_id, applied_add_on_id,
	fee_type, amount_cents, amount_currency, vat_amount_cents, vat_rate, units,
	from_datetime, to_datetime, idempotency_key,
	tenant_id, status, created_at, updated_at, created_by, updated_by`

type feeRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

func NewFeeRepository(db postgres.IClient, logger *logger.Logger) invoice.FeeRepository {
	return &feeRepository{db: db, logger: logger}
}

func (r *feeRepository) Create(ctx context.Context, fee *invoice.Fee) error {
	query := `
		INSERT INTO fees (
			id, invoice_id, subscription_id, charge_id, applied_add_on_id, fee_type,
			amount_cents, amount_currency, vat_amount_cents, vat_rate, units,
			from_datetime, to_datetime, idempotency_key,
			tenant_id, status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :invoice_id, NULLIF(:subscription_id, ''), :charge_id, :applied_add_on_id, :fee_type,
			:amount_cents, :amount_currency, :vat_amount_cents, :vat_rate, :units,
			:from_datetime, :to_datetime, :idempotency_key,
			:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by
		)
	`
	_, err := r.db.Querier(ctx).NamedExecContext(ctx, query, fee)
	return translateError(err, "fee", fee.ID)
}

func (r *feeRepository) ListByInvoice(ctx context.Context, invoiceID string) ([]*invoice.Fee, error) {
	var fees []*invoice.Fee
	err := r.db.Querier(ctx).SelectContext(ctx, &fees, `
		SELECT `+feeColumns+` FROM fees WHERE invoice_id = $1 ORDER BY created_at, id
	`, invoiceID)
	if err != nil {
		return nil, translateError(err, "fee", "")
	}
	return fees, nil
}

func (r *feeRepository) ExistsSubscriptionFee(ctx context.Context, subscriptionID string, issuingDate time.Time) (bool, error) {
	var exists bool
	err := r.db.Querier(ctx).GetContext(ctx, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM fees f
			JOIN invoices i ON i.id = f.invoice_id
			WHERE f.subscription_id = $1
			  AND f.fee_type = $2
			  AND i.issuing_date = $3
		)
	`, subscriptionID, types.FeeTypeSubscription, issuingDate)
	if err != nil {
		return false, translateError(err, "fee", "")
	}
	return exists, nil
}

func (r *feeRepository) HasSubscriptionFee(ctx context.Context, subscriptionID string) (bool, error) {
	var exists bool
	err := r.db.Querier(ctx).GetContext(ctx, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM fees WHERE subscription_id = $1 AND fee_type = $2
		)
	`, subscriptionID, types.FeeTypeSubscription)
	if err != nil {
		return false, translateError(err, "fee", "")
	}
	return exists, nil
}

type creditRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

func NewCreditRepository(db postgres.IClient, logger *logger.Logger) invoice.CreditRepository {
	return &creditRepository{db: db, logger: logger}
}

func (r *creditRepository) Create(ctx context.Context, c *invoice.Credit) error {
	query := `
		INSERT INTO credits (
			id, invoice_id, source, source_id, amount_cents, amount_currency,
			tenant_id, status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :invoice_id, :source, :source_id, :amount_cents, :amount_currency,
			:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by
		)
	`
	_, err := r.db.Querier(ctx).NamedExecContext(ctx, query, c)
	return translateError(err, "credit", c.ID)
}

func (r *creditRepository) ListByInvoice(ctx context.Context, invoiceID string) ([]*invoice.Credit, error) {
	var credits []*invoice.Credit
	err := r.db.Querier(ctx).SelectContext(ctx, &credits, `
		SELECT * FROM credits WHERE invoice_id = $1 ORDER BY created_at, id
	`, invoiceID)
	if err != nil {
		return nil, translateError(err, "credit", "")
	}
	return credits, nil
}

func (r *creditRepository) SumBySource(ctx context.Context, source types.CreditSource, sourceID string) (int64, error) {
	var total int64
	err := r.db.Querier(ctx).GetContext(ctx, &total, `
		SELECT COALESCE(SUM(amount_cents), 0) FROM credits WHERE source = $1 AND source_id = $2
	`, source, sourceID)
	if err != nil {
		return 0, translateError(err, "credit", sourceID)
	}
	return total, nil
}
