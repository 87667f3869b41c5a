package addon

import "context"

// Repository defines the interface for applied add-on persistence
type Repository interface {
	Create(ctx context.Context, applied *AppliedAddOn) error
	Get(ctx context.Context, id string) (*AppliedAddOn, error)
}
