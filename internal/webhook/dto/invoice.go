package webhookDto

import (
	"time"

	"github.com/flexprice/invoicer/internal/domain/invoice"
	"github.com/flexprice/invoicer/internal/types"
)

// InvoiceWebhookPayload is the body delivered for invoice events
type InvoiceWebhookPayload struct {
	EventType string           `json:"event_type"`
	Invoice   *InvoiceResponse `json:"invoice"`
}

// InvoiceResponse is the public view of a finalized invoice
type InvoiceResponse struct {
	ID                string              `json:"id"`
	CustomerID        string              `json:"customer_id"`
	InvoiceType       types.InvoiceType   `json:"invoice_type"`
	InvoiceStatus     types.InvoiceStatus `json:"invoice_status"`
	IssuingDate       string              `json:"issuing_date"`
	AmountCents       int64               `json:"amount_cents"`
	VatAmountCents    int64               `json:"vat_amount_cents"`
	CreditAmountCents int64               `json:"credit_amount_cents"`
	TotalAmountCents  int64               `json:"total_amount_cents"`
	AmountCurrency    string              `json:"amount_currency"`
	SubscriptionIDs   []string            `json:"subscription_ids"`
	FeesCount         int                 `json:"fees_count"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

func NewInvoiceResponse(inv *invoice.Invoice) *InvoiceResponse {
	return &InvoiceResponse{
		ID:                inv.ID,
		CustomerID:        inv.CustomerID,
		InvoiceType:       inv.InvoiceType,
		InvoiceStatus:     inv.InvoiceStatus,
		IssuingDate:       inv.IssuingDate.Format(time.DateOnly),
		AmountCents:       inv.AmountCents,
		VatAmountCents:    inv.VatAmountCents,
		CreditAmountCents: inv.CreditAmountCents,
		TotalAmountCents:  inv.TotalAmountCents,
		AmountCurrency:    inv.AmountCurrency,
		SubscriptionIDs:   inv.SubscriptionIDs,
		FeesCount:         len(inv.Fees),
		UpdatedAt:         inv.UpdatedAt,
	}
}

func NewInvoiceWebhookPayload(inv *invoice.Invoice, eventType string) *InvoiceWebhookPayload {
	return &InvoiceWebhookPayload{EventType: eventType, Invoice: NewInvoiceResponse(inv)}
}
