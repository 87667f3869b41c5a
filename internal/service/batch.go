package service

import (
	"context"
	"time"

	"github.com/flexprice/invoicer/internal/domain/invoice"
	"github.com/flexprice/invoicer/internal/validator"
	"github.com/sourcegraph/conc/pool"
)

// AssembleRequest identifies one invoice to assemble
type AssembleRequest struct {
	InvoiceID string    `json:"invoice_id" validate:"required"`
	Timestamp time.Time `json:"timestamp" validate:"required"`
}

// AssembleResult is the outcome of one request of a batch
type AssembleResult struct {
	InvoiceID string
	Invoice   *invoice.Invoice
	Err       error
}

// BatchAssembler assembles independent invoices concurrently. Each invoice
// keeps its own transaction; one failure never affects the others.
type BatchAssembler interface {
	AssembleMany(ctx context.Context, reqs []AssembleRequest) []AssembleResult
}

type batchAssembler struct {
	ServiceParams
	assembler InvoiceAssembler
}

func NewBatchAssembler(params ServiceParams, assembler InvoiceAssembler) BatchAssembler {
	return &batchAssembler{
		ServiceParams: params,
		assembler:     assembler,
	}
}

// AssembleMany returns one result per request, in request order
func (s *batchAssembler) AssembleMany(ctx context.Context, reqs []AssembleRequest) []AssembleResult {
	results := make([]AssembleResult, len(reqs))

	p := pool.New().WithMaxGoroutines(max(1, s.Config.Billing.BatchConcurrency))
	for i, req := range reqs {
		p.Go(func() {
			results[i] = s.assembleOne(ctx, req)
		})
	}
	p.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	s.Logger.Infow("assembled invoice batch",
		"invoices", len(reqs),
		"failed", failed)

	return results
}

func (s *batchAssembler) assembleOne(ctx context.Context, req AssembleRequest) AssembleResult {
	result := AssembleResult{InvoiceID: req.InvoiceID}
	if err := validator.ValidateRequest(req); err != nil {
		result.Err = err
		return result
	}

	if timeout := s.Config.Billing.AssemblyTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	result.Invoice, result.Err = s.assembler.Assemble(ctx, req.InvoiceID, req.Timestamp)
	return result
}
