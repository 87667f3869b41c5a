package wallet

import "context"

// Repository defines the interface for wallet persistence operations
type Repository interface {
	Create(ctx context.Context, w *Wallet) error
	// GetActiveByCustomer returns the customer's active wallet or a not found
	// error. Inside a transaction the row is locked.
	GetActiveByCustomer(ctx context.Context, customerID string) (*Wallet, error)
	Update(ctx context.Context, w *Wallet) error
	CreateTransaction(ctx context.Context, txn *Transaction) error
}
