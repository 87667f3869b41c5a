package credit

import (
	"context"

	"github.com/flexprice/invoicer/internal/domain/invoice"
	"github.com/flexprice/invoicer/internal/domain/wallet"
	"github.com/flexprice/invoicer/internal/interfaces"
	"github.com/flexprice/invoicer/internal/logger"
	"github.com/flexprice/invoicer/internal/types"
)

type prepaidCreditService struct {
	walletRepo wallet.Repository
	logger     *logger.Logger
}

// NewPrepaidCreditService pays an invoice from the customer's wallet, up to
// its balance.
func NewPrepaidCreditService(walletRepo wallet.Repository, logger *logger.Logger) interfaces.PrepaidCreditApplier {
	return &prepaidCreditService{walletRepo: walletRepo, logger: logger}
}

func (s *prepaidCreditService) ApplyPrepaidCredits(ctx context.Context, inv *invoice.Invoice, w *wallet.Wallet) (*interfaces.PrepaidCreditResult, error) {
	debited, credits := w.Debit(inv.AmountCents)
	if debited == 0 {
		return &interfaces.PrepaidCreditResult{}, nil
	}

	if err := s.walletRepo.Update(ctx, w); err != nil {
		return nil, err
	}

	txn := &wallet.Transaction{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_WALLET_TXN),
		WalletID:    w.ID,
		InvoiceID:   inv.ID,
		AmountCents: debited,
		Credits:     credits,
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}
	if err := s.walletRepo.CreateTransaction(ctx, txn); err != nil {
		return nil, err
	}

	s.logger.Debugw("applied prepaid credits",
		"invoice_id", inv.ID,
		"wallet_id", w.ID,
		"debited_cents", debited,
		"credits", credits.String())

	return &interfaces.PrepaidCreditResult{Transaction: txn, ConsumedCents: debited}, nil
}
