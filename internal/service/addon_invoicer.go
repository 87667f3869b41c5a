package service

import (
	"context"
	"time"

	"github.com/flexprice/invoicer/internal/cache"
	"github.com/flexprice/invoicer/internal/domain/invoice"
	ierr "github.com/flexprice/invoicer/internal/errors"
	"github.com/flexprice/invoicer/internal/sentry"
	"github.com/flexprice/invoicer/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// AddOnInvoicer bills applied add-ons on invoices of their own
type AddOnInvoicer interface {
	// Invoice creates an add_on invoice holding the single fee of the applied
	// add-on. An applied add-on is billed at most once.
	Invoice(ctx context.Context, appliedAddOnID string, timestamp time.Time) (*invoice.Invoice, error)
}

type addOnInvoicer struct {
	*invoiceAssembler
}

func NewAddOnInvoicer(params ServiceParams) AddOnInvoicer {
	return &addOnInvoicer{
		invoiceAssembler: NewInvoiceAssembler(params).(*invoiceAssembler),
	}
}

func (s *addOnInvoicer) Invoice(ctx context.Context, appliedAddOnID string, timestamp time.Time) (*invoice.Invoice, error) {
	span, ctx := s.Sentry.StartSpan(ctx, "invoice.add_on", "invoice_add_on", map[string]interface{}{
		"applied_add_on_id": appliedAddOnID,
	})
	defer sentry.FinishSpan(span)

	var a *assembly
	err := s.DB.WithTx(ctx, func(txCtx context.Context) error {
		applied, err := s.AddOnRepo.Get(txCtx, appliedAddOnID)
		if err != nil {
			return err
		}
		if err := applied.Validate(); err != nil {
			return err
		}

		cust, err := s.CustomerRepo.Get(txCtx, applied.CustomerID)
		if err != nil {
			return err
		}
		loc, err := cache.LoadLocation(cust.ApplicableTimezone())
		if err != nil {
			return err
		}

		inv := &invoice.Invoice{
			ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
			OrganizationID: cust.OrganizationID,
			CustomerID:     cust.ID,
			InvoiceType:    types.InvoiceTypeAddOn,
			InvoiceStatus:  types.InvoiceStatusPending,
			IssuingDate:    types.DateIn(timestamp, loc),
			AmountCurrency: applied.AmountCurrency,
			BaseModel:      types.GetDefaultBaseModel(txCtx),
		}
		if err := s.InvoiceRepo.Create(txCtx, inv); err != nil {
			return err
		}

		a = newAssembly(inv, timestamp, types.WebhookEventInvoiceAddOnAdded)
		a.customer = cust
		a.issuingDate = inv.IssuingDate

		vatRate := cust.ApplicableVatRate()
		fee := &invoice.Fee{
			AppliedAddOnID: lo.ToPtr(applied.ID),
			FeeType:        types.FeeTypeAddOn,
			AmountCents:    applied.AmountCents,
			AmountCurrency: applied.AmountCurrency,
			VatAmountCents: types.VatAmountCents(applied.AmountCents, vatRate),
			VatRate:        vatRate,
			Units:          decimal.NewFromInt(1),
			FromDatetime:   timestamp,
			ToDatetime:     timestamp,
			IdempotencyKey: s.idempotencyKeys.AddOnFeeKey(applied.ID),
			BaseModel:      types.GetDefaultBaseModel(txCtx),
		}
		if err := s.persistFee(txCtx, a, fee); err != nil {
			return err
		}
		if a.feesCreated[types.FeeTypeAddOn] == 0 {
			return ierr.NewError("applied add-on already invoiced").
				WithHintf("Applied add-on %s was already invoiced", applied.ID).
				WithReportableDetails(map[string]any{"applied_add_on_id": applied.ID}).
				Mark(ierr.ErrAlreadyExists)
		}

		fees, err := s.FeeRepo.ListByInvoice(txCtx, inv.ID)
		if err != nil {
			return err
		}
		inv.Fees = fees
		a.amounts = aggregateFees(fees, vatRate)

		return s.finalize(txCtx, a)
	})
	if err != nil {
		s.Logger.Errorw("failed to invoice add-on",
			"applied_add_on_id", appliedAddOnID,
			"error", err)
		if !ierr.IsAlreadyExists(err) {
			s.Sentry.CaptureException(err, map[string]string{"applied_add_on_id": appliedAddOnID})
		}
		return nil, err
	}

	s.Metrics.IncFeeCreated(types.FeeTypeAddOn)
	s.Logger.Infow("invoiced add-on",
		"applied_add_on_id", appliedAddOnID,
		"invoice_id", a.invoice.ID,
		"status", a.invoice.InvoiceStatus,
		"total_amount_cents", a.invoice.TotalAmountCents)

	s.runDeferred(ctx, a.invoice.ID, a.deferred)
	return a.invoice, nil
}
