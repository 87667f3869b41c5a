package postgres

import (
	"context"
	"time"

	"github.com/flexprice/invoicer/internal/domain/wallet"
	"github.com/flexprice/invoicer/internal/logger"
	"github.com/flexprice/invoicer/internal/postgres"
	"github.com/flexprice/invoicer/internal/types"
)

type walletRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

func NewWalletRepository(db postgres.IClient, logger *logger.Logger) wallet.Repository {
	return &walletRepository{db: db, logger: logger}
}

func (r *walletRepository) Create(ctx context.Context, w *wallet.Wallet) error {
	query := `
		INSERT INTO wallets (
			id, customer_id, wallet_status, currency, rate_amount, credits_balance,
			balance_cents, consumed_credits, consumed_amount_cents,
			tenant_id, status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :customer_id, :wallet_status, :currency, :rate_amount, :credits_balance,
			:balance_cents, :consumed_credits, :consumed_amount_cents,
			:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by
		)
	`
	_, err := r.db.Querier(ctx).NamedExecContext(ctx, query, w)
	return translateError(err, "wallet", w.ID)
}

func (r *walletRepository) GetActiveByCustomer(ctx context.Context, customerID string) (*wallet.Wallet, error) {
	var w wallet.Wallet
	err := r.db.Querier(ctx).GetContext(ctx, &w, `
		SELECT * FROM wallets
		WHERE customer_id = $1 AND wallet_status = $2
		ORDER BY created_at, id
		LIMIT 1
		FOR UPDATE
	`, customerID, types.WalletStatusActive)
	if err != nil {
		return nil, translateError(err, "wallet", "")
	}
	return &w, nil
}

func (r *walletRepository) Update(ctx context.Context, w *wallet.Wallet) error {
	w.UpdatedAt = time.Now().UTC()
	w.UpdatedBy = types.GetUserID(ctx)

	_, err := r.db.Querier(ctx).NamedExecContext(ctx, `
		UPDATE wallets SET
			wallet_status = :wallet_status,
			credits_balance = :credits_balance,
			balance_cents = :balance_cents,
			consumed_credits = :consumed_credits,
			consumed_amount_cents = :consumed_amount_cents,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id
	`, w)
	return translateError(err, "wallet", w.ID)
}

func (r *walletRepository) CreateTransaction(ctx context.Context, txn *wallet.Transaction) error {
	query := `
		INSERT INTO wallet_transactions (
			id, wallet_id, invoice_id, amount_cents, credits,
			tenant_id, status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :wallet_id, :invoice_id, :amount_cents, :credits,
			:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by
		)
	`
	_, err := r.db.Querier(ctx).NamedExecContext(ctx, query, txn)
	return translateError(err, "wallet_transaction", txn.ID)
}
