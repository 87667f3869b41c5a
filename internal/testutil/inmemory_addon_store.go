package testutil

import (
	"context"

	"github.com/flexprice/invoicer/internal/domain/addon"
	ierr "github.com/flexprice/invoicer/internal/errors"
)

// InMemoryAppliedAddOnStore implements addon.Repository
type InMemoryAppliedAddOnStore struct {
	*InMemoryStore[addon.AppliedAddOn]
}

func NewInMemoryAppliedAddOnStore() *InMemoryAppliedAddOnStore {
	return &InMemoryAppliedAddOnStore{
		InMemoryStore: NewInMemoryStore[addon.AppliedAddOn](),
	}
}

func (s *InMemoryAppliedAddOnStore) Create(ctx context.Context, a *addon.AppliedAddOn) error {
	if a == nil {
		return ierr.NewError("applied add-on cannot be nil").
			WithHint("Applied add-on cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, a.ID, *a)
}

func (s *InMemoryAppliedAddOnStore) Get(ctx context.Context, id string) (*addon.AppliedAddOn, error) {
	a, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
