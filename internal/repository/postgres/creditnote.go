package postgres

import (
	"context"
	"time"

	"github.com/flexprice/invoicer/internal/domain/creditnote"
	"github.com/flexprice/invoicer/internal/logger"
	"github.com/flexprice/invoicer/internal/postgres"
	"github.com/flexprice/invoicer/internal/types"
)

type creditNoteRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

func NewCreditNoteRepository(db postgres.IClient, logger *logger.Logger) creditnote.Repository {
	return &creditNoteRepository{db: db, logger: logger}
}

func (r *creditNoteRepository) Create(ctx context.Context, note *creditnote.CreditNote) error {
	query := `
		INSERT INTO credit_notes (
			id, customer_id, invoice_id, credit_status, total_amount_cents, balance_amount_cents, amount_currency,
			tenant_id, status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :customer_id, :invoice_id, :credit_status, :total_amount_cents, :balance_amount_cents, :amount_currency,
			:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by
		)
	`
	_, err := r.db.Querier(ctx).NamedExecContext(ctx, query, note)
	return translateError(err, "credit_note", note.ID)
}

// ListAvailableByCustomer locks the returned rows so two invoices assembled
// concurrently for one customer cannot spend the same balance.
func (r *creditNoteRepository) ListAvailableByCustomer(ctx context.Context, customerID string) ([]*creditnote.CreditNote, error) {
	var notes []*creditnote.CreditNote
	err := r.db.Querier(ctx).SelectContext(ctx, &notes, `
		SELECT * FROM credit_notes
		WHERE customer_id = $1
		  AND credit_status = $2
		  AND balance_amount_cents > 0
		ORDER BY created_at, id
		FOR UPDATE
	`, customerID, types.CreditNoteStatusAvailable)
	if err != nil {
		return nil, translateError(err, "credit_note", "")
	}
	return notes, nil
}

func (r *creditNoteRepository) Update(ctx context.Context, note *creditnote.CreditNote) error {
	note.UpdatedAt = time.Now().UTC()
	note.UpdatedBy = types.GetUserID(ctx)

	_, err := r.db.Querier(ctx).NamedExecContext(ctx, `
		UPDATE credit_notes SET
			credit_status = :credit_status,
			balance_amount_cents = :balance_amount_cents,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id
	`, note)
	return translateError(err, "credit_note", note.ID)
}
