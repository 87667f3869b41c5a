package testutil

import (
	"context"

	"github.com/flexprice/invoicer/internal/domain/customer"
)

// InMemoryCustomerStore implements customer.Repository
type InMemoryCustomerStore struct {
	customers     *InMemoryStore[customer.Customer]
	organizations *InMemoryStore[customer.Organization]
}

func NewInMemoryCustomerStore() *InMemoryCustomerStore {
	return &InMemoryCustomerStore{
		customers:     NewInMemoryStore[customer.Customer](),
		organizations: NewInMemoryStore[customer.Organization](),
	}
}

func (s *InMemoryCustomerStore) Create(ctx context.Context, c *customer.Customer) error {
	cp := *c
	cp.Organization = nil
	return s.customers.Create(ctx, c.ID, cp)
}

func (s *InMemoryCustomerStore) Get(ctx context.Context, id string) (*customer.Customer, error) {
	c, err := s.customers.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	org, err := s.organizations.Get(ctx, c.OrganizationID)
	if err != nil {
		return nil, err
	}
	c.Organization = &org
	return &c, nil
}

func (s *InMemoryCustomerStore) CreateOrganization(ctx context.Context, org *customer.Organization) error {
	return s.organizations.Create(ctx, org.ID, *org)
}

func (s *InMemoryCustomerStore) Snapshot() func() {
	restoreCustomers := s.customers.Snapshot()
	restoreOrganizations := s.organizations.Snapshot()
	return func() {
		restoreCustomers()
		restoreOrganizations()
	}
}

func (s *InMemoryCustomerStore) Clear() {
	s.customers.Clear()
	s.organizations.Clear()
}
