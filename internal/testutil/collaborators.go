package testutil

import (
	"context"
	"sync"

	"github.com/flexprice/invoicer/internal/domain/invoice"
	"github.com/flexprice/invoicer/internal/domain/plan"
	"github.com/flexprice/invoicer/internal/domain/subscription"
	"github.com/flexprice/invoicer/internal/interfaces"
	"github.com/flexprice/invoicer/internal/period"
	"github.com/flexprice/invoicer/internal/types"
)

// SubscriptionFeeFunc adapts a function to interfaces.SubscriptionFeeComputer
type SubscriptionFeeFunc func(ctx context.Context, inv *invoice.Invoice, sub *subscription.Subscription, b period.Boundaries) (*invoice.Fee, error)

func (f SubscriptionFeeFunc) ComputeSubscriptionFee(ctx context.Context, inv *invoice.Invoice, sub *subscription.Subscription, b period.Boundaries) (*invoice.Fee, error) {
	return f(ctx, inv, sub, b)
}

// ChargeFeeFunc adapts a function to interfaces.ChargeFeeComputer
type ChargeFeeFunc func(ctx context.Context, inv *invoice.Invoice, sub *subscription.Subscription, charge *plan.Charge, b period.Boundaries) (*invoice.Fee, error)

func (f ChargeFeeFunc) ComputeChargeFee(ctx context.Context, inv *invoice.Invoice, sub *subscription.Subscription, charge *plan.Charge, b period.Boundaries) (*invoice.Fee, error) {
	return f(ctx, inv, sub, charge, b)
}

var (
	_ interfaces.SubscriptionFeeComputer = SubscriptionFeeFunc(nil)
	_ interfaces.ChargeFeeComputer       = ChargeFeeFunc(nil)
	_ interfaces.PaymentCreator          = (*RecordingPaymentCreator)(nil)
	_ interfaces.AnalyticsTracker        = (*RecordingAnalyticsTracker)(nil)
	_ interfaces.WebhookPublisher        = (*RecordingWebhookPublisher)(nil)
)

// RecordingPaymentCreator remembers every invoice sent for collection
type RecordingPaymentCreator struct {
	mu       sync.Mutex
	journal  *Journal
	Err      error
	Invoices []*invoice.Invoice
}

func NewRecordingPaymentCreator(journal *Journal) *RecordingPaymentCreator {
	return &RecordingPaymentCreator{journal: journal}
}

func (r *RecordingPaymentCreator) CreatePayment(ctx context.Context, inv *invoice.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.journal.Record("payment:" + inv.ID)
	r.Invoices = append(r.Invoices, inv)
	return r.Err
}

func (r *RecordingPaymentCreator) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Invoices)
}

// RecordingAnalyticsTracker remembers every tracked invoice
type RecordingAnalyticsTracker struct {
	mu       sync.Mutex
	journal  *Journal
	Err      error
	Invoices []*invoice.Invoice
}

func NewRecordingAnalyticsTracker(journal *Journal) *RecordingAnalyticsTracker {
	return &RecordingAnalyticsTracker{journal: journal}
}

func (r *RecordingAnalyticsTracker) TrackInvoiceCreated(ctx context.Context, inv *invoice.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.journal.Record("analytics:" + inv.ID)
	r.Invoices = append(r.Invoices, inv)
	return r.Err
}

func (r *RecordingAnalyticsTracker) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Invoices)
}

// RecordingWebhookPublisher remembers every published webhook event
type RecordingWebhookPublisher struct {
	mu      sync.Mutex
	journal *Journal
	Err     error
	Events  []*types.WebhookEvent
}

func NewRecordingWebhookPublisher(journal *Journal) *RecordingWebhookPublisher {
	return &RecordingWebhookPublisher{journal: journal}
}

func (r *RecordingWebhookPublisher) PublishWebhook(ctx context.Context, event *types.WebhookEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.journal.Record("webhook:" + event.EventName)
	r.Events = append(r.Events, event)
	return r.Err
}

func (r *RecordingWebhookPublisher) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Events)
}
