package testutil

import (
	"context"
	"slices"
	"time"

	"github.com/flexprice/invoicer/internal/domain/invoice"
	ierr "github.com/flexprice/invoicer/internal/errors"
	"github.com/flexprice/invoicer/internal/types"
)

// InMemoryInvoiceStore implements invoice.Repository
type InMemoryInvoiceStore struct {
	*InMemoryStore[invoice.Invoice]
}

func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		InMemoryStore: NewInMemoryStore[invoice.Invoice](),
	}
}

func (s *InMemoryInvoiceStore) Create(ctx context.Context, inv *invoice.Invoice) error {
	return s.InMemoryStore.Create(ctx, inv.ID, detachInvoice(inv))
}

func (s *InMemoryInvoiceStore) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	inv, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	inv.SubscriptionIDs = slices.Clone(inv.SubscriptionIDs)
	return &inv, nil
}

func (s *InMemoryInvoiceStore) Update(ctx context.Context, inv *invoice.Invoice) error {
	return s.InMemoryStore.Update(ctx, inv.ID, detachInvoice(inv))
}

func (s *InMemoryInvoiceStore) CountBySubscription(ctx context.Context, subscriptionID string, excludeInvoiceID string) (int, error) {
	return s.Count(ctx, func(_ context.Context, inv invoice.Invoice) bool {
		return inv.ID != excludeInvoiceID && slices.Contains(inv.SubscriptionIDs, subscriptionID)
	}), nil
}

func detachInvoice(inv *invoice.Invoice) invoice.Invoice {
	cp := *inv
	cp.SubscriptionIDs = slices.Clone(inv.SubscriptionIDs)
	cp.Fees, cp.Credits = nil, nil
	return cp
}

// InMemoryFeeStore implements invoice.FeeRepository
type InMemoryFeeStore struct {
	*InMemoryStore[invoice.Fee]
	invoices *InMemoryInvoiceStore
}

func NewInMemoryFeeStore(invoices *InMemoryInvoiceStore) *InMemoryFeeStore {
	return &InMemoryFeeStore{
		InMemoryStore: NewInMemoryStore[invoice.Fee](),
		invoices:      invoices,
	}
}

func (s *InMemoryFeeStore) Create(ctx context.Context, fee *invoice.Fee) error {
	if fee.IdempotencyKey != "" {
		dup := s.Count(ctx, func(_ context.Context, f invoice.Fee) bool {
			return f.IdempotencyKey == fee.IdempotencyKey
		})
		if dup > 0 {
			return ierr.NewError("fee already exists").
				WithHintf("A fee with idempotency key %s already exists", fee.IdempotencyKey).
				Mark(ierr.ErrAlreadyExists)
		}
	}
	return s.InMemoryStore.Create(ctx, fee.ID, *fee)
}

func (s *InMemoryFeeStore) ListByInvoice(ctx context.Context, invoiceID string) ([]*invoice.Fee, error) {
	fees := s.List(ctx,
		func(_ context.Context, f invoice.Fee) bool { return f.InvoiceID == invoiceID },
		func(a, b invoice.Fee) bool { return olderThan(a.BaseModel, b.BaseModel, a.ID, b.ID) },
	)
	return toPointers(fees), nil
}

func (s *InMemoryFeeStore) ExistsSubscriptionFee(ctx context.Context, subscriptionID string, issuingDate time.Time) (bool, error) {
	n := s.Count(ctx, func(ctx context.Context, f invoice.Fee) bool {
		if f.SubscriptionID != subscriptionID || f.FeeType != types.FeeTypeSubscription {
			return false
		}
		inv, err := s.invoices.InMemoryStore.Get(ctx, f.InvoiceID)
		return err == nil && inv.IssuingDate.Equal(issuingDate)
	})
	return n > 0, nil
}

func (s *InMemoryFeeStore) HasSubscriptionFee(ctx context.Context, subscriptionID string) (bool, error) {
	n := s.Count(ctx, func(_ context.Context, f invoice.Fee) bool {
		return f.SubscriptionID == subscriptionID && f.FeeType == types.FeeTypeSubscription
	})
	return n > 0, nil
}

// InMemoryCreditStore implements invoice.CreditRepository
type InMemoryCreditStore struct {
	*InMemoryStore[invoice.Credit]
}

func NewInMemoryCreditStore() *InMemoryCreditStore {
	return &InMemoryCreditStore{
		InMemoryStore: NewInMemoryStore[invoice.Credit](),
	}
}

func (s *InMemoryCreditStore) Create(ctx context.Context, c *invoice.Credit) error {
	return s.InMemoryStore.Create(ctx, c.ID, *c)
}

func (s *InMemoryCreditStore) ListByInvoice(ctx context.Context, invoiceID string) ([]*invoice.Credit, error) {
	credits := s.List(ctx,
		func(_ context.Context, c invoice.Credit) bool { return c.InvoiceID == invoiceID },
		func(a, b invoice.Credit) bool { return olderThan(a.BaseModel, b.BaseModel, a.ID, b.ID) },
	)
	return toPointers(credits), nil
}

func (s *InMemoryCreditStore) SumBySource(ctx context.Context, source types.CreditSource, sourceID string) (int64, error) {
	var total int64
	for _, c := range s.List(ctx, func(_ context.Context, c invoice.Credit) bool {
		return c.Source == source && c.SourceID == sourceID
	}, nil) {
		total += c.AmountCents
	}
	return total, nil
}

func olderThan(a, b types.BaseModel, aID, bID string) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return aID < bID
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

func toPointers[T any](items []T) []*T {
	out := make([]*T, len(items))
	for i := range items {
		out[i] = &items[i]
	}
	return out
}
