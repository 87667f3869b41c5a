package invoice

import (
	"context"
	"time"

	"github.com/flexprice/invoicer/internal/types"
)

// Repository defines the interface for invoice persistence operations
type Repository interface {
	// Create creates a new invoice and links it to its subscriptions
	Create(ctx context.Context, invoice *Invoice) error

	// Get retrieves an invoice by ID with its subscription IDs
	Get(ctx context.Context, id string) (*Invoice, error)

	// Update persists the computed amounts, status and issuing date
	Update(ctx context.Context, invoice *Invoice) error

	// CountBySubscription counts the invoices linked to a subscription,
	// leaving out excludeInvoiceID
	CountBySubscription(ctx context.Context, subscriptionID string, excludeInvoiceID string) (int, error)
}

// FeeRepository defines the interface for fee persistence operations
type FeeRepository interface {
	Create(ctx context.Context, fee *Fee) error

	ListByInvoice(ctx context.Context, invoiceID string) ([]*Fee, error)

	// ExistsSubscriptionFee reports whether a subscription fee was issued for
	// the subscription on an invoice with the given issuing date
	ExistsSubscriptionFee(ctx context.Context, subscriptionID string, issuingDate time.Time) (bool, error)

	// HasSubscriptionFee reports whether the subscription was ever billed a
	// subscription fee
	HasSubscriptionFee(ctx context.Context, subscriptionID string) (bool, error)
}

// CreditRepository defines the interface for invoice credit persistence
type CreditRepository interface {
	Create(ctx context.Context, credit *Credit) error
	ListByInvoice(ctx context.Context, invoiceID string) ([]*Credit, error)

	// SumBySource totals the credits ever taken from one credit source
	SumBySource(ctx context.Context, source types.CreditSource, sourceID string) (int64, error)
}
