package temporal

import (
	"context"

	ierr "github.com/flexprice/invoicer/internal/errors"
	"github.com/flexprice/invoicer/internal/logger"
	"github.com/flexprice/invoicer/internal/service"
	"github.com/flexprice/invoicer/internal/types"
	"github.com/samber/lo"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
)

// application error types reported to the workflow
const (
	ErrorTypeValidation    = "ValidationError"
	ErrorTypeNotFound      = "NotFoundError"
	ErrorTypeAlreadyExists = "AlreadyExistsError"
	ErrorTypeConfiguration = "ConfigurationError"
)

// InvoiceActivities runs invoice assembly inside Temporal activities
type InvoiceActivities struct {
	assembler service.InvoiceAssembler
	batch     service.BatchAssembler
	addOns    service.AddOnInvoicer
	logger    *logger.Logger
}

func NewInvoiceActivities(assembler service.InvoiceAssembler, batch service.BatchAssembler, addOns service.AddOnInvoicer, logger *logger.Logger) *InvoiceActivities {
	return &InvoiceActivities{
		assembler: assembler,
		batch:     batch,
		addOns:    addOns,
		logger:    logger,
	}
}

// AssembleInvoice assembles a single invoice. Errors that would repeat on
// every attempt are returned as non retryable.
func (a *InvoiceActivities) AssembleInvoice(ctx context.Context, input AssembleInvoiceInput) (*AssembleInvoiceResult, error) {
	if err := input.Validate(); err != nil {
		return nil, toApplicationError(err)
	}

	info := activity.GetInfo(ctx)
	ctx = withTenant(ctx, input.TenantID)

	a.logger.Infow("assembling invoice",
		"invoice_id", input.InvoiceID,
		"timestamp", input.Timestamp,
		"attempt", info.Attempt)

	inv, err := a.assembler.Assemble(ctx, input.InvoiceID, input.Timestamp)
	if err != nil {
		a.logger.Errorw("invoice assembly failed",
			"invoice_id", input.InvoiceID,
			"attempt", info.Attempt,
			"retryable", ierr.IsRetryable(err),
			"error", err)
		return nil, toApplicationError(err)
	}

	return &AssembleInvoiceResult{
		InvoiceID:        inv.ID,
		Status:           inv.InvoiceStatus,
		TotalAmountCents: inv.TotalAmountCents,
		AmountCurrency:   inv.AmountCurrency,
	}, nil
}

// AssembleInvoices assembles a batch of invoices. A failing invoice is
// reported in its result and never fails the others.
func (a *InvoiceActivities) AssembleInvoices(ctx context.Context, input AssembleInvoicesInput) ([]AssembleInvoiceResult, error) {
	ctx = withTenant(ctx, input.TenantID)

	reqs := lo.Map(input.Invoices, func(in AssembleInvoiceInput, _ int) service.AssembleRequest {
		return service.AssembleRequest{InvoiceID: in.InvoiceID, Timestamp: in.Timestamp}
	})

	results := a.batch.AssembleMany(ctx, reqs)
	return lo.Map(results, func(r service.AssembleResult, _ int) AssembleInvoiceResult {
		if r.Err != nil {
			return AssembleInvoiceResult{InvoiceID: r.InvoiceID, Error: r.Err.Error()}
		}
		return AssembleInvoiceResult{
			InvoiceID:        r.Invoice.ID,
			Status:           r.Invoice.InvoiceStatus,
			TotalAmountCents: r.Invoice.TotalAmountCents,
			AmountCurrency:   r.Invoice.AmountCurrency,
		}
	}), nil
}

// InvoiceAddOn bills an applied add-on. A second attempt after a committed
// first one fails as already existing and is not retried.
func (a *InvoiceActivities) InvoiceAddOn(ctx context.Context, input InvoiceAddOnInput) (*AssembleInvoiceResult, error) {
	if err := input.Validate(); err != nil {
		return nil, toApplicationError(err)
	}
	ctx = withTenant(ctx, input.TenantID)

	inv, err := a.addOns.Invoice(ctx, input.AppliedAddOnID, input.Timestamp)
	if err != nil {
		a.logger.Errorw("add-on invoicing failed",
			"applied_add_on_id", input.AppliedAddOnID,
			"attempt", activity.GetInfo(ctx).Attempt,
			"error", err)
		return nil, toApplicationError(err)
	}

	return &AssembleInvoiceResult{
		InvoiceID:        inv.ID,
		Status:           inv.InvoiceStatus,
		TotalAmountCents: inv.TotalAmountCents,
		AmountCurrency:   inv.AmountCurrency,
	}, nil
}

func withTenant(ctx context.Context, tenantID string) context.Context {
	if tenantID == "" {
		return ctx
	}
	return types.SetTenantID(ctx, tenantID)
}

func toApplicationError(err error) error {
	if ierr.IsRetryable(err) {
		return err
	}

	errType := ErrorTypeConfiguration
	switch {
	case ierr.IsValidation(err):
		errType = ErrorTypeValidation
	case ierr.IsNotFound(err):
		errType = ErrorTypeNotFound
	case ierr.IsAlreadyExists(err):
		errType = ErrorTypeAlreadyExists
	}
	return temporal.NewNonRetryableApplicationError(err.Error(), errType, err)
}
