package temporal

import (
	"time"

	ierr "github.com/flexprice/invoicer/internal/errors"
	"github.com/flexprice/invoicer/internal/types"
)

const (
	WorkflowAssembleInvoice  = "AssembleInvoiceWorkflow"
	WorkflowAssembleInvoices = "AssembleInvoicesWorkflow"
	WorkflowInvoiceAddOn     = "InvoiceAddOnWorkflow"
)

// AssembleInvoiceInput names one invoice to assemble as of Timestamp
type AssembleInvoiceInput struct {
	InvoiceID string    `json:"invoice_id"`
	TenantID  string    `json:"tenant_id"`
	Timestamp time.Time `json:"timestamp"`
}

func (i AssembleInvoiceInput) Validate() error {
	if i.InvoiceID == "" {
		return ierr.NewError("invoice_id is required").
			WithHint("An invoice id is required to assemble an invoice").
			Mark(ierr.ErrValidation)
	}
	if i.Timestamp.IsZero() {
		return ierr.NewError("timestamp is required").
			WithHintf("A billing timestamp is required to assemble invoice %s", i.InvoiceID).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// AssembleInvoicesInput is a batch of independent invoices
type AssembleInvoicesInput struct {
	TenantID string                 `json:"tenant_id"`
	Invoices []AssembleInvoiceInput `json:"invoices"`
}

// AssembleInvoiceResult summarizes a finalized invoice. Error is set instead
// when the invoice belongs to a batch and failed on its own.
type AssembleInvoiceResult struct {
	InvoiceID        string              `json:"invoice_id"`
	Status           types.InvoiceStatus `json:"status,omitempty"`
	TotalAmountCents int64               `json:"total_amount_cents"`
	AmountCurrency   string              `json:"amount_currency,omitempty"`
	Error            string              `json:"error,omitempty"`
}

// InvoiceAddOnInput names an applied add-on to bill as of Timestamp
type InvoiceAddOnInput struct {
	AppliedAddOnID string    `json:"applied_add_on_id"`
	TenantID       string    `json:"tenant_id"`
	Timestamp      time.Time `json:"timestamp"`
}

func (i InvoiceAddOnInput) Validate() error {
	if i.AppliedAddOnID == "" {
		return ierr.NewError("applied_add_on_id is required").
			WithHint("An applied add-on id is required to invoice an add-on").
			Mark(ierr.ErrValidation)
	}
	if i.Timestamp.IsZero() {
		return ierr.NewError("timestamp is required").
			WithHintf("A billing timestamp is required to invoice add-on %s", i.AppliedAddOnID).
			Mark(ierr.ErrValidation)
	}
	return nil
}
