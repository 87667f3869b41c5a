package testutil

import (
	"context"

	"github.com/flexprice/invoicer/internal/domain/plan"
	"github.com/flexprice/invoicer/internal/types"
)

// InMemoryPlanStore implements plan.Repository
type InMemoryPlanStore struct {
	plans   *InMemoryStore[plan.Plan]
	charges *InMemoryStore[plan.Charge]
}

func NewInMemoryPlanStore() *InMemoryPlanStore {
	return &InMemoryPlanStore{
		plans:   NewInMemoryStore[plan.Plan](),
		charges: NewInMemoryStore[plan.Charge](),
	}
}

func (s *InMemoryPlanStore) Create(ctx context.Context, p *plan.Plan) error {
	if err := s.plans.Create(ctx, p.ID, *p); err != nil {
		return err
	}
	for _, c := range p.Charges {
		if err := s.CreateCharge(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (s *InMemoryPlanStore) Get(ctx context.Context, id string) (*plan.Plan, error) {
	p, err := s.plans.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	charges := s.charges.List(ctx,
		func(_ context.Context, c plan.Charge) bool {
			return c.PlanID == id && c.Status == types.StatusPublished
		},
		func(a, b plan.Charge) bool {
			if a.CreatedAt.Equal(b.CreatedAt) {
				return a.ID < b.ID
			}
			return a.CreatedAt.Before(b.CreatedAt)
		},
	)

	p.Charges = make([]*plan.Charge, len(charges))
	for i := range charges {
		p.Charges[i] = &charges[i]
	}
	return &p, nil
}

func (s *InMemoryPlanStore) CreateCharge(ctx context.Context, c *plan.Charge) error {
	return s.charges.Create(ctx, c.ID, *c)
}

func (s *InMemoryPlanStore) Snapshot() func() {
	restorePlans := s.plans.Snapshot()
	restoreCharges := s.charges.Snapshot()
	return func() {
		restorePlans()
		restoreCharges()
	}
}

func (s *InMemoryPlanStore) Clear() {
	s.plans.Clear()
	s.charges.Clear()
}
