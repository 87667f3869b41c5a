package interfaces

import (
	"context"

	"github.com/flexprice/invoicer/internal/domain/coupon"
	"github.com/flexprice/invoicer/internal/domain/creditnote"
	"github.com/flexprice/invoicer/internal/domain/invoice"
	"github.com/flexprice/invoicer/internal/domain/plan"
	"github.com/flexprice/invoicer/internal/domain/subscription"
	"github.com/flexprice/invoicer/internal/domain/wallet"
	"github.com/flexprice/invoicer/internal/period"
	"github.com/flexprice/invoicer/internal/types"
)

// SubscriptionFeeComputer prices the plan amount of a subscription over a
// billing period. The returned fee is persisted by the caller.
type SubscriptionFeeComputer interface {
	ComputeSubscriptionFee(ctx context.Context, inv *invoice.Invoice, sub *subscription.Subscription, boundaries period.Boundaries) (*invoice.Fee, error)
}

// ChargeFeeComputer prices the usage of one plan charge over the charges
// period. The returned fee is persisted by the caller.
type ChargeFeeComputer interface {
	ComputeChargeFee(ctx context.Context, inv *invoice.Invoice, sub *subscription.Subscription, charge *plan.Charge, boundaries period.Boundaries) (*invoice.Fee, error)
}

// CreditNoteResult is what credit notes took off an invoice
type CreditNoteResult struct {
	Credits            []*invoice.Credit
	TotalConsumedCents int64
}

// CreditNoteApplier consumes available credit notes against an invoice.
// inv carries the amount still to be paid.
type CreditNoteApplier interface {
	ApplyCreditNotes(ctx context.Context, inv *invoice.Invoice, notes []*creditnote.CreditNote) (*CreditNoteResult, error)
}

// CouponResult is what a single coupon took off an invoice
type CouponResult struct {
	Credit        *invoice.Credit
	ConsumedCents int64
}

// CouponApplier applies one coupon to an invoice. inv carries the amount
// still to be paid.
type CouponApplier interface {
	ApplyCoupon(ctx context.Context, inv *invoice.Invoice, applied *coupon.AppliedCoupon) (*CouponResult, error)
}

// PrepaidCreditResult is what a wallet paid for an invoice
type PrepaidCreditResult struct {
	Transaction   *wallet.Transaction
	ConsumedCents int64
}

// PrepaidCreditApplier debits a wallet for an invoice. inv carries the
// amount still to be paid.
type PrepaidCreditApplier interface {
	ApplyPrepaidCredits(ctx context.Context, inv *invoice.Invoice, w *wallet.Wallet) (*PrepaidCreditResult, error)
}

// PaymentCreator requests collection of a finalized invoice
type PaymentCreator interface {
	CreatePayment(ctx context.Context, inv *invoice.Invoice) error
}

// AnalyticsTracker records business events
type AnalyticsTracker interface {
	TrackInvoiceCreated(ctx context.Context, inv *invoice.Invoice) error
}

// WebhookPublisher hands a webhook event over for delivery
type WebhookPublisher interface {
	PublishWebhook(ctx context.Context, event *types.WebhookEvent) error
}
