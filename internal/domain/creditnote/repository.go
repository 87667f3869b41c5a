package creditnote

import "context"

// Repository defines the interface for credit note persistence operations
type Repository interface {
	Create(ctx context.Context, note *CreditNote) error
	// ListAvailableByCustomer returns the customer's credit notes that still
	// carry balance, oldest first. Inside a transaction the rows are locked.
	ListAvailableByCustomer(ctx context.Context, customerID string) ([]*CreditNote, error)
	Update(ctx context.Context, note *CreditNote) error
}
