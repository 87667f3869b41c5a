package testutil

import (
	"context"
	"time"

	"github.com/flexprice/invoicer/internal/domain/usage"
	"github.com/shopspring/decimal"
)

// InMemoryUsageStore implements usage.Reader over recorded events
type InMemoryUsageStore struct {
	*InMemoryStore[usage.Event]
}

func NewInMemoryUsageStore() *InMemoryUsageStore {
	return &InMemoryUsageStore{
		InMemoryStore: NewInMemoryStore[usage.Event](),
	}
}

func (s *InMemoryUsageStore) InsertEvent(ctx context.Context, event *usage.Event) error {
	return s.InMemoryStore.Create(ctx, event.ID, *event)
}

func (s *InMemoryUsageStore) SumUnits(ctx context.Context, subscriptionID, code string, from, to time.Time) (decimal.Decimal, error) {
	events := s.List(ctx, func(_ context.Context, e usage.Event) bool {
		return e.SubscriptionID == subscriptionID &&
			e.Code == code &&
			!e.Timestamp.Before(from) &&
			!e.Timestamp.After(to)
	}, nil)

	total := decimal.Zero
	for _, e := range events {
		total = total.Add(e.Value)
	}
	return total, nil
}
