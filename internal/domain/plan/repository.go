package plan

import "context"

// Repository defines the interface for plan persistence operations
type Repository interface {
	Create(ctx context.Context, plan *Plan) error
	// Get retrieves a plan by ID along with its charges
	Get(ctx context.Context, id string) (*Plan, error)
	CreateCharge(ctx context.Context, charge *Charge) error
}
