package customer

import "context"

// Repository defines the interface for customer persistence operations
type Repository interface {
	Create(ctx context.Context, customer *Customer) error
	// Get retrieves a customer by ID with its organization loaded
	Get(ctx context.Context, id string) (*Customer, error)
	CreateOrganization(ctx context.Context, org *Organization) error
}
