package testutil

import (
	"context"
	"time"

	"github.com/flexprice/invoicer/internal/config"
	"github.com/flexprice/invoicer/internal/logger"
	"github.com/flexprice/invoicer/internal/types"
	"github.com/flexprice/invoicer/internal/validator"
	"github.com/stretchr/testify/suite"
)

// Stores holds every in-memory repository used by service tests
type Stores struct {
	PlanRepo         *InMemoryPlanStore
	CustomerRepo     *InMemoryCustomerStore
	SubscriptionRepo *InMemorySubscriptionStore
	InvoiceRepo      *InMemoryInvoiceStore
	FeeRepo          *InMemoryFeeStore
	CreditRepo       *InMemoryCreditStore
	CreditNoteRepo   *InMemoryCreditNoteStore
	CouponRepo       *InMemoryAppliedCouponStore
	WalletRepo       *InMemoryWalletStore
	UsageRepo        *InMemoryUsageStore
	AddOnRepo        *InMemoryAppliedAddOnStore
}

func (s Stores) all() []Snapshotter {
	return []Snapshotter{
		s.PlanRepo,
		s.CustomerRepo,
		s.SubscriptionRepo,
		s.InvoiceRepo,
		s.FeeRepo,
		s.CreditRepo,
		s.CreditNoteRepo,
		s.CouponRepo,
		s.WalletRepo,
		s.UsageRepo,
		s.AddOnRepo,
	}
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	stores  Stores
	db      *MockPostgresClient
	journal *Journal
	logger  *logger.Logger
	config  *config.Configuration
	now     time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()

	s.config = config.GetDefaultConfig()
	s.logger = logger.NewNoopLogger()
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.setupContext()
	s.setupStores()
	s.now = time.Now().UTC()
}

func (s *BaseServiceTestSuite) setupContext() {
	s.ctx = context.Background()
	s.ctx = context.WithValue(s.ctx, types.CtxTenantID, types.DefaultTenantID)
	s.ctx = context.WithValue(s.ctx, types.CtxUserID, types.DefaultUserID)
	s.ctx = context.WithValue(s.ctx, types.CtxRequestID, types.GenerateUUID())
}

func (s *BaseServiceTestSuite) setupStores() {
	invoices := NewInMemoryInvoiceStore()
	s.stores = Stores{
		PlanRepo:         NewInMemoryPlanStore(),
		CustomerRepo:     NewInMemoryCustomerStore(),
		SubscriptionRepo: NewInMemorySubscriptionStore(),
		InvoiceRepo:      invoices,
		FeeRepo:          NewInMemoryFeeStore(invoices),
		CreditRepo:       NewInMemoryCreditStore(),
		CreditNoteRepo:   NewInMemoryCreditNoteStore(),
		CouponRepo:       NewInMemoryAppliedCouponStore(),
		WalletRepo:       NewInMemoryWalletStore(),
		UsageRepo:        NewInMemoryUsageStore(),
		AddOnRepo:        NewInMemoryAppliedAddOnStore(),
	}

	s.journal = NewJournal()
	s.db = NewMockPostgresClient(s.logger, s.journal, s.stores.all()...)
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetDB returns the test database client
func (s *BaseServiceTestSuite) GetDB() *MockPostgresClient {
	return s.db
}

// GetJournal returns the ordered log of commits and side effects
func (s *BaseServiceTestSuite) GetJournal() *Journal {
	return s.journal
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}
