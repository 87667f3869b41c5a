package credit

import (
	"context"

	"github.com/flexprice/invoicer/internal/domain/creditnote"
	"github.com/flexprice/invoicer/internal/domain/invoice"
	"github.com/flexprice/invoicer/internal/interfaces"
	"github.com/flexprice/invoicer/internal/logger"
	"github.com/flexprice/invoicer/internal/types"
)

type creditNoteService struct {
	creditNoteRepo creditnote.Repository
	creditRepo     invoice.CreditRepository
	logger         *logger.Logger
}

// NewCreditNoteService consumes credit note balances, oldest first, up to
// the amount still due on an invoice.
func NewCreditNoteService(
	creditNoteRepo creditnote.Repository,
	creditRepo invoice.CreditRepository,
	logger *logger.Logger,
) interfaces.CreditNoteApplier {
	return &creditNoteService{
		creditNoteRepo: creditNoteRepo,
		creditRepo:     creditRepo,
		logger:         logger,
	}
}

func (s *creditNoteService) ApplyCreditNotes(ctx context.Context, inv *invoice.Invoice, notes []*creditnote.CreditNote) (*interfaces.CreditNoteResult, error) {
	result := &interfaces.CreditNoteResult{}
	remaining := inv.AmountCents

	for _, note := range notes {
		if remaining <= 0 {
			break
		}

		consumed := note.Consume(remaining)
		if consumed == 0 {
			continue
		}

		if err := s.creditNoteRepo.Update(ctx, note); err != nil {
			return nil, err
		}

		c, err := newCredit(ctx, inv, types.CreditSourceCreditNote, note.ID, consumed)
		if err != nil {
			return nil, err
		}
		if err := s.creditRepo.Create(ctx, c); err != nil {
			return nil, err
		}

		remaining -= consumed
		result.Credits = append(result.Credits, c)
		result.TotalConsumedCents += consumed
	}

	s.logger.Debugw("applied credit notes",
		"invoice_id", inv.ID,
		"credit_notes", len(result.Credits),
		"consumed_cents", result.TotalConsumedCents)

	return result, nil
}

func newCredit(ctx context.Context, inv *invoice.Invoice, source types.CreditSource, sourceID string, amountCents int64) (*invoice.Credit, error) {
	c := &invoice.Credit{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CREDIT),
		InvoiceID:      inv.ID,
		Source:         source,
		SourceID:       sourceID,
		AmountCents:    amountCents,
		AmountCurrency: inv.AmountCurrency,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
