package testutil

import (
	"context"

	"github.com/flexprice/invoicer/internal/domain/creditnote"
)

// InMemoryCreditNoteStore implements creditnote.Repository
type InMemoryCreditNoteStore struct {
	*InMemoryStore[creditnote.CreditNote]
}

func NewInMemoryCreditNoteStore() *InMemoryCreditNoteStore {
	return &InMemoryCreditNoteStore{
		InMemoryStore: NewInMemoryStore[creditnote.CreditNote](),
	}
}

func (s *InMemoryCreditNoteStore) Create(ctx context.Context, note *creditnote.CreditNote) error {
	return s.InMemoryStore.Create(ctx, note.ID, *note)
}

func (s *InMemoryCreditNoteStore) Get(ctx context.Context, id string) (*creditnote.CreditNote, error) {
	note, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &note, nil
}

func (s *InMemoryCreditNoteStore) ListAvailableByCustomer(ctx context.Context, customerID string) ([]*creditnote.CreditNote, error) {
	notes := s.List(ctx,
		func(_ context.Context, n creditnote.CreditNote) bool {
			return n.CustomerID == customerID && n.IsAvailable()
		},
		func(a, b creditnote.CreditNote) bool { return olderThan(a.BaseModel, b.BaseModel, a.ID, b.ID) },
	)
	return toPointers(notes), nil
}

func (s *InMemoryCreditNoteStore) Update(ctx context.Context, note *creditnote.CreditNote) error {
	return s.InMemoryStore.Update(ctx, note.ID, *note)
}
