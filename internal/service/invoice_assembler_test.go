package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/flexprice/invoicer/internal/credit"
	"github.com/flexprice/invoicer/internal/domain/coupon"
	"github.com/flexprice/invoicer/internal/domain/creditnote"
	"github.com/flexprice/invoicer/internal/domain/customer"
	"github.com/flexprice/invoicer/internal/domain/invoice"
	"github.com/flexprice/invoicer/internal/domain/plan"
	"github.com/flexprice/invoicer/internal/domain/subscription"
	"github.com/flexprice/invoicer/internal/domain/wallet"
	ierr "github.com/flexprice/invoicer/internal/errors"
	"github.com/flexprice/invoicer/internal/interfaces"
	"github.com/flexprice/invoicer/internal/metrics"
	"github.com/flexprice/invoicer/internal/period"
	"github.com/flexprice/invoicer/internal/sentry"
	"github.com/flexprice/invoicer/internal/testutil"
	"github.com/flexprice/invoicer/internal/types"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type InvoiceAssemblerSuite struct {
	testutil.BaseServiceTestSuite
	assembler InvoiceAssembler
	params    ServiceParams
	registry  *prometheus.Registry

	payments  *testutil.RecordingPaymentCreator
	analytics *testutil.RecordingAnalyticsTracker
	webhooks  *testutil.RecordingWebhookPublisher

	subscriptionFeeCents int64
	chargeFeeCents       int64
	subscriptionFeeCalls int
	chargeFeeCalls       int
	chargeFeeErr         error

	testData struct {
		org      *customer.Organization
		customer *customer.Customer
		plan     *plan.Plan
		sub      *subscription.Subscription
		invoice  *invoice.Invoice
		now      time.Time
	}
}

func TestInvoiceAssembler(t *testing.T) {
	suite.Run(t, new(InvoiceAssemblerSuite))
}

func (s *InvoiceAssemblerSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.subscriptionFeeCents = 1000
	s.chargeFeeCents = 0
	s.subscriptionFeeCalls = 0
	s.chargeFeeCalls = 0
	s.chargeFeeErr = nil
	s.setupAssembler()
	s.setupTestData()
}

func (s *InvoiceAssemblerSuite) setupAssembler() {
	stores := s.GetStores()
	journal := s.GetJournal()
	log := s.GetLogger()

	s.payments = testutil.NewRecordingPaymentCreator(journal)
	s.analytics = testutil.NewRecordingAnalyticsTracker(journal)
	s.webhooks = testutil.NewRecordingWebhookPublisher(journal)
	s.registry = prometheus.NewRegistry()

	subscriptionFees := testutil.SubscriptionFeeFunc(func(ctx context.Context, inv *invoice.Invoice, sub *subscription.Subscription, b period.Boundaries) (*invoice.Fee, error) {
		s.subscriptionFeeCalls++
		return s.newFee(ctx, s.subscriptionFeeCents, sub, b.FromDatetime, b.ToDatetime), nil
	})
	chargeFees := testutil.ChargeFeeFunc(func(ctx context.Context, inv *invoice.Invoice, sub *subscription.Subscription, charge *plan.Charge, b period.Boundaries) (*invoice.Fee, error) {
		s.chargeFeeCalls++
		if s.chargeFeeErr != nil {
			return nil, s.chargeFeeErr
		}
		return s.newFee(ctx, s.chargeFeeCents, sub, b.ChargesFromDatetime, b.ChargesToDatetime), nil
	})

	s.params = ServiceParams{
		Logger:                  log,
		Config:                  s.GetConfig(),
		DB:                      s.GetDB(),
		Metrics:                 metrics.NewInvoicingMetrics(s.registry),
		Sentry:                  sentry.NewSentryService(s.GetConfig(), log),
		PlanRepo:                stores.PlanRepo,
		CustomerRepo:            stores.CustomerRepo,
		SubRepo:                 stores.SubscriptionRepo,
		InvoiceRepo:             stores.InvoiceRepo,
		FeeRepo:                 stores.FeeRepo,
		CreditRepo:              stores.CreditRepo,
		CreditNoteRepo:          stores.CreditNoteRepo,
		CouponRepo:              stores.CouponRepo,
		WalletRepo:              stores.WalletRepo,
		AddOnRepo:               stores.AddOnRepo,
		SubscriptionFeeComputer: subscriptionFees,
		ChargeFeeComputer:       chargeFees,
		CreditNoteApplier: &spyCreditNoteApplier{
			inner:   credit.NewCreditNoteService(stores.CreditNoteRepo, stores.CreditRepo, log),
			journal: journal,
		},
		CouponApplier: &spyCouponApplier{
			inner:   credit.NewAppliedCouponService(stores.CouponRepo, stores.CreditRepo, log),
			journal: journal,
		},
		PrepaidCreditApplier: &spyPrepaidCreditApplier{
			inner:   credit.NewPrepaidCreditService(stores.WalletRepo, log),
			journal: journal,
		},
		PaymentCreator:   s.payments,
		AnalyticsTracker: s.analytics,
		WebhookPublisher: s.webhooks,
	}
	s.assembler = NewInvoiceAssembler(s.params)
}

// setupTestData creates an active calendar monthly pay in arrear EUR
// subscription billed on 2022-03-01 for February.
func (s *InvoiceAssemblerSuite) setupTestData() {
	ctx := s.GetContext()
	stores := s.GetStores()
	s.testData.now = time.Date(2022, 3, 1, 10, 0, 0, 0, time.UTC)

	s.testData.org = &customer.Organization{
		ID:         "org_1",
		Name:       "Acme",
		VatRate:    lo.ToPtr(decimal.NewFromInt(20)),
		WebhookURL: lo.ToPtr("https://example.com/hooks"),
		BaseModel:  types.GetDefaultBaseModel(ctx),
	}
	s.NoError(stores.CustomerRepo.CreateOrganization(ctx, s.testData.org))

	s.testData.customer = &customer.Customer{
		ID:              "cust_1",
		OrganizationID:  s.testData.org.ID,
		ExternalID:      "ext_cust_1",
		Name:            "Wile E. Coyote",
		PaymentProvider: lo.ToPtr("stripe"),
		BaseModel:       types.GetDefaultBaseModel(ctx),
	}
	s.NoError(stores.CustomerRepo.Create(ctx, s.testData.customer))

	s.testData.plan = plan.NewPlan(ctx, "basic", types.BillingIntervalMonthly, 1000, "EUR")
	s.NoError(stores.PlanRepo.Create(ctx, s.testData.plan))

	s.testData.sub = s.createSubscription("sub_1", s.testData.plan.ID, func(sub *subscription.Subscription) {})
	s.testData.invoice = s.createInvoice("inv_1", s.testData.sub.ID)
}

func (s *InvoiceAssemblerSuite) createSubscription(id, planID string, mutate func(*subscription.Subscription)) *subscription.Subscription {
	ctx := s.GetContext()
	started := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	sub := &subscription.Subscription{
		ID:                 id,
		ExternalID:         "ext_" + id,
		CustomerID:         s.testData.customer.ID,
		PlanID:             planID,
		SubscriptionStatus: types.SubscriptionStatusActive,
		BillingTime:        types.BillingTimeCalendar,
		SubscriptionDate:   started,
		StartedAt:          started,
		BaseModel:          types.GetDefaultBaseModel(ctx),
	}
	sub.CreatedAt = started
	mutate(sub)
	s.NoError(s.GetStores().SubscriptionRepo.Create(ctx, sub))
	return sub
}

func (s *InvoiceAssemblerSuite) createInvoice(id string, subIDs ...string) *invoice.Invoice {
	ctx := s.GetContext()
	inv := &invoice.Invoice{
		ID:              id,
		InvoiceType:     types.InvoiceTypeSubscription,
		InvoiceStatus:   types.InvoiceStatusPending,
		SubscriptionIDs: subIDs,
		BaseModel:       types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().InvoiceRepo.Create(ctx, inv))
	return inv
}

func (s *InvoiceAssemblerSuite) createCreditNote(id string, balance int64, createdAt time.Time) *creditnote.CreditNote {
	ctx := s.GetContext()
	note := &creditnote.CreditNote{
		ID:                 id,
		CustomerID:         s.testData.customer.ID,
		InvoiceID:          "inv_old",
		CreditStatus:       types.CreditNoteStatusAvailable,
		TotalAmountCents:   balance,
		BalanceAmountCents: balance,
		AmountCurrency:     "EUR",
		BaseModel:          types.GetDefaultBaseModel(ctx),
	}
	note.CreatedAt = createdAt
	s.NoError(s.GetStores().CreditNoteRepo.Create(ctx, note))
	return note
}

func (s *InvoiceAssemblerSuite) createCoupon(id string, mutate func(*coupon.AppliedCoupon)) *coupon.AppliedCoupon {
	ctx := s.GetContext()
	c := &coupon.AppliedCoupon{
		ID:             id,
		CouponID:       "coupon_" + id,
		CouponCode:     "CODE_" + id,
		CustomerID:     s.testData.customer.ID,
		CouponStatus:   types.AppliedCouponStatusActive,
		CouponType:     types.CouponTypeFixedAmount,
		Frequency:      types.CouponFrequencyOnce,
		AmountCents:    200,
		AmountCurrency: "EUR",
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}
	mutate(c)
	s.NoError(s.GetStores().CouponRepo.Create(ctx, c))
	return c
}

func (s *InvoiceAssemblerSuite) createWallet(id string, balance int64) *wallet.Wallet {
	ctx := s.GetContext()
	w := &wallet.Wallet{
		ID:             id,
		CustomerID:     s.testData.customer.ID,
		WalletStatus:   types.WalletStatusActive,
		Currency:       "EUR",
		RateAmount:     decimal.NewFromInt(1),
		CreditsBalance: decimal.NewFromInt(balance).Div(decimal.NewFromInt(100)),
		BalanceCents:   balance,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().WalletRepo.Create(ctx, w))
	return w
}

func (s *InvoiceAssemblerSuite) newFee(ctx context.Context, amount int64, sub *subscription.Subscription, from, to time.Time) *invoice.Fee {
	rate := sub.Customer.ApplicableVatRate()
	return &invoice.Fee{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_FEE),
		AmountCents:    amount,
		AmountCurrency: sub.Plan.AmountCurrency,
		VatRate:        rate,
		VatAmountCents: types.VatAmountCents(amount, rate),
		Units:          decimal.NewFromInt(1),
		FromDatetime:   from,
		ToDatetime:     to,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}
}

func (s *InvoiceAssemblerSuite) storedInvoice(id string) *invoice.Invoice {
	inv, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), id)
	s.Require().NoError(err)
	return inv
}

func (s *InvoiceAssemblerSuite) TestAssembleWithoutCredits() {
	inv, err := s.assembler.Assemble(s.GetContext(), s.testData.invoice.ID, s.testData.now)
	s.Require().NoError(err)

	s.Equal(int64(1000), inv.AmountCents)
	s.Equal(int64(200), inv.VatAmountCents)
	s.Equal(int64(1200), inv.TotalAmountCents)
	s.Equal(int64(0), inv.CreditAmountCents)
	s.Equal(types.InvoiceStatusPending, inv.InvoiceStatus)
	s.Equal("EUR", inv.AmountCurrency)
	s.Equal(s.testData.customer.ID, inv.CustomerID)
	s.Equal(types.Date(2022, time.March, 1), inv.IssuingDate)
	s.Require().Len(inv.Fees, 1)
	s.Equal(types.FeeTypeSubscription, inv.Fees[0].FeeType)
	s.NotEmpty(inv.Fees[0].IdempotencyKey)

	stored := s.storedInvoice(inv.ID)
	s.Equal(inv.TotalAmountCents, stored.TotalAmountCents)
	s.Equal(types.InvoiceStatusPending, stored.InvoiceStatus)
}

func (s *InvoiceAssemblerSuite) TestCreditWaterfallOrder() {
	s.createCreditNote("cn_1", 300, s.testData.now.Add(-48*time.Hour))
	s.createCoupon("ac_1", func(c *coupon.AppliedCoupon) {})
	w := s.createWallet("wallet_1", 1000)

	inv, err := s.assembler.Assemble(s.GetContext(), s.testData.invoice.ID, s.testData.now)
	s.Require().NoError(err)

	// every step sees the amounts left by the previous one, VAT included
	s.Equal([]string{
		"credit_notes:1000:200",
		"coupon:700:140",
		"wallet:500:100",
		testutil.JournalCommit,
		"webhook:" + types.WebhookEventInvoiceCreated,
		"analytics:" + inv.ID,
	}, s.GetJournal().Entries())

	s.Equal(int64(0), inv.AmountCents)
	s.Equal(int64(0), inv.VatAmountCents)
	s.Equal(int64(0), inv.TotalAmountCents)
	s.Equal(int64(1000), inv.CreditAmountCents)
	s.Equal(types.InvoiceStatusSucceeded, inv.InvoiceStatus)
	s.Len(inv.Credits, 2)

	note, err := s.GetStores().CreditNoteRepo.Get(s.GetContext(), "cn_1")
	s.Require().NoError(err)
	s.Equal(int64(0), note.BalanceAmountCents)
	s.Equal(types.CreditNoteStatusConsumed, note.CreditStatus)

	applied, err := s.GetStores().CouponRepo.Get(s.GetContext(), "ac_1")
	s.Require().NoError(err)
	s.Equal(types.AppliedCouponStatusTerminated, applied.CouponStatus)

	storedWallet, err := s.GetStores().WalletRepo.Get(s.GetContext(), w.ID)
	s.Require().NoError(err)
	s.Equal(int64(500), storedWallet.BalanceCents)
	s.Require().Len(s.GetStores().WalletRepo.Transactions(s.GetContext(), w.ID), 1)

	// nothing left to collect
	s.Equal(0, s.payments.Calls())
}

func (s *InvoiceAssemblerSuite) TestCreditNotesAreConsumedOldestFirst() {
	s.createCreditNote("cn_new", 800, s.testData.now.Add(-time.Hour))
	s.createCreditNote("cn_old", 600, s.testData.now.Add(-72*time.Hour))

	inv, err := s.assembler.Assemble(s.GetContext(), s.testData.invoice.ID, s.testData.now)
	s.Require().NoError(err)
	s.Equal(int64(0), inv.AmountCents)

	older, err := s.GetStores().CreditNoteRepo.Get(s.GetContext(), "cn_old")
	s.Require().NoError(err)
	s.Equal(int64(0), older.BalanceAmountCents)

	newer, err := s.GetStores().CreditNoteRepo.Get(s.GetContext(), "cn_new")
	s.Require().NoError(err)
	s.Equal(int64(400), newer.BalanceAmountCents)
	s.Equal(types.CreditNoteStatusAvailable, newer.CreditStatus)
}

func (s *InvoiceAssemblerSuite) TestCouponInOtherCurrencyIsSkipped() {
	s.createCoupon("ac_usd", func(c *coupon.AppliedCoupon) {
		c.AmountCurrency = "USD"
	})
	s.createCoupon("ac_pct", func(c *coupon.AppliedCoupon) {
		c.CouponType = types.CouponTypePercentage
		c.AmountCents = 0
		c.AmountCurrency = "USD"
		c.PercentageRate = decimal.NewFromInt(10)
		c.CreatedAt = c.CreatedAt.Add(time.Second)
	})

	inv, err := s.assembler.Assemble(s.GetContext(), s.testData.invoice.ID, s.testData.now)
	s.Require().NoError(err)

	// only the percentage coupon applies
	s.Equal(int64(900), inv.AmountCents)
	s.Equal(int64(180), inv.VatAmountCents)
	s.Equal(int64(1080), inv.TotalAmountCents)

	skipped, err := s.GetStores().CouponRepo.Get(s.GetContext(), "ac_usd")
	s.Require().NoError(err)
	s.Equal(types.AppliedCouponStatusActive, skipped.CouponStatus)
}

func (s *InvoiceAssemblerSuite) TestCouponsStopOnceAmountIsCovered() {
	s.createCoupon("ac_big", func(c *coupon.AppliedCoupon) {
		c.AmountCents = 5000
	})
	s.createCoupon("ac_next", func(c *coupon.AppliedCoupon) {
		c.CreatedAt = c.CreatedAt.Add(time.Second)
	})
	s.createWallet("wallet_1", 1000)

	inv, err := s.assembler.Assemble(s.GetContext(), s.testData.invoice.ID, s.testData.now)
	s.Require().NoError(err)
	s.Equal(int64(0), inv.TotalAmountCents)
	s.Equal(int64(1000), inv.CreditAmountCents)

	next, err := s.GetStores().CouponRepo.Get(s.GetContext(), "ac_next")
	s.Require().NoError(err)
	s.Equal(types.AppliedCouponStatusActive, next.CouponStatus)
	s.False(lo.ContainsBy(s.GetJournal().Entries(), func(entry string) bool {
		return strings.HasPrefix(entry, "wallet:")
	}), "the wallet is not touched once coupons cover the invoice")
}

// twoFeeInvoice bills two subscriptions of 101 cents each, so the fee VAT
// sums to 42 while the invoice amount only owes 41.
func (s *InvoiceAssemblerSuite) twoFeeInvoice() *invoice.Invoice {
	s.subscriptionFeeCents = 101
	first := s.createSubscription("sub_vat_a", s.testData.plan.ID, func(*subscription.Subscription) {})
	second := s.createSubscription("sub_vat_b", s.testData.plan.ID, func(*subscription.Subscription) {})
	return s.createInvoice("inv_vat", first.ID, second.ID)
}

func (s *InvoiceAssemblerSuite) TestVatRecomputedAfterStepConsumingNothing() {
	inv := s.twoFeeInvoice()
	s.createCoupon("ac_tiny", func(c *coupon.AppliedCoupon) {
		c.CouponType = types.CouponTypePercentage
		c.AmountCents = 0
		c.PercentageRate = decimal.RequireFromString("0.1")
	})

	assembled, err := s.assembler.Assemble(s.GetContext(), inv.ID, s.testData.now)
	s.Require().NoError(err)

	s.Require().Len(assembled.Fees, 2)
	s.Equal(int64(202), assembled.AmountCents)
	s.Equal(int64(41), assembled.VatAmountCents)
	s.Equal(int64(243), assembled.TotalAmountCents)
	s.Equal(int64(0), assembled.CreditAmountCents)
}

func (s *InvoiceAssemblerSuite) TestVatRecomputedFromRemainingAmount() {
	inv := s.twoFeeInvoice()
	s.createCreditNote("cn_cent", 1, s.testData.now.Add(-time.Hour))

	assembled, err := s.assembler.Assemble(s.GetContext(), inv.ID, s.testData.now)
	s.Require().NoError(err)

	s.Equal(int64(201), assembled.AmountCents)
	s.Equal(types.VatAmountCents(201, decimal.NewFromInt(20)), assembled.VatAmountCents)
	s.Equal(int64(41), assembled.VatAmountCents)
	s.Equal(int64(242), assembled.TotalAmountCents)
	s.Equal(assembled.AmountCents+assembled.VatAmountCents, assembled.TotalAmountCents)
}

func (s *InvoiceAssemblerSuite) TestCreditNotesLeftUntouchedWhenNothingIsDue() {
	s.subscriptionFeeCents = 0
	s.createCreditNote("cn_1", 300, s.testData.now.Add(-time.Hour))
	s.createCoupon("ac_1", func(c *coupon.AppliedCoupon) {})

	inv, err := s.assembler.Assemble(s.GetContext(), s.testData.invoice.ID, s.testData.now)
	s.Require().NoError(err)

	s.Equal(int64(0), inv.TotalAmountCents)
	s.Equal(int64(0), inv.CreditAmountCents)
	s.Equal(types.InvoiceStatusSucceeded, inv.InvoiceStatus)
	s.Empty(inv.Credits)
	s.Contains(s.GetJournal().Entries(), "credit_notes:0:0")
	s.NotContains(s.GetJournal().Entries(), "coupon:0:0")

	note, err := s.GetStores().CreditNoteRepo.Get(s.GetContext(), "cn_1")
	s.Require().NoError(err)
	s.Equal(int64(300), note.BalanceAmountCents)
	s.Equal(types.CreditNoteStatusAvailable, note.CreditStatus)

	applied, err := s.GetStores().CouponRepo.Get(s.GetContext(), "ac_1")
	s.Require().NoError(err)
	s.Equal(types.AppliedCouponStatusActive, applied.CouponStatus)
}

func (s *InvoiceAssemblerSuite) TestFixedCouponRemainderCarriesOver() {
	ctx := s.GetContext()
	s.createCoupon("ac_half", func(c *coupon.AppliedCoupon) {
		c.AmountCents = 1500
	})

	inv, err := s.assembler.Assemble(ctx, s.testData.invoice.ID, s.testData.now)
	s.Require().NoError(err)
	s.Equal(int64(1000), inv.CreditAmountCents)

	applied, err := s.GetStores().CouponRepo.Get(ctx, "ac_half")
	s.Require().NoError(err)
	s.Equal(types.AppliedCouponStatusActive, applied.CouponStatus)

	sub := s.createSubscription("sub_next", s.testData.plan.ID, func(*subscription.Subscription) {})
	next := s.createInvoice("inv_next", sub.ID)
	inv, err = s.assembler.Assemble(ctx, next.ID, s.testData.now)
	s.Require().NoError(err)
	s.Equal(int64(500), inv.CreditAmountCents)
	s.Equal(int64(500), inv.AmountCents)

	applied, err = s.GetStores().CouponRepo.Get(ctx, "ac_half")
	s.Require().NoError(err)
	s.Equal(types.AppliedCouponStatusTerminated, applied.CouponStatus)
}

func (s *InvoiceAssemblerSuite) TestFeeComputerWithoutFee() {
	s.params.SubscriptionFeeComputer = testutil.SubscriptionFeeFunc(func(context.Context, *invoice.Invoice, *subscription.Subscription, period.Boundaries) (*invoice.Fee, error) {
		return nil, nil
	})
	s.assembler = NewInvoiceAssembler(s.params)

	_, err := s.assembler.Assemble(s.GetContext(), s.testData.invoice.ID, s.testData.now)
	s.Require().Error(err)
	s.True(ierr.IsDelegate(err))
	s.Contains(s.GetJournal().Entries(), testutil.JournalRollback)
	s.Equal(0, s.analytics.Calls())
}

func (s *InvoiceAssemblerSuite) TestChargeComputerWithoutFee() {
	ctx := s.GetContext()
	s.NoError(s.GetStores().PlanRepo.CreateCharge(ctx, &plan.Charge{
		ID:                 "charge_basic",
		PlanID:             s.testData.plan.ID,
		BillableMetricCode: "api_calls",
		ChargeModel:        types.ChargeModelStandard,
		AmountCurrency:     "EUR",
		UnitAmount:         decimal.NewFromInt(2),
		BaseModel:          types.GetDefaultBaseModel(ctx),
	}))
	s.params.ChargeFeeComputer = testutil.ChargeFeeFunc(func(context.Context, *invoice.Invoice, *subscription.Subscription, *plan.Charge, period.Boundaries) (*invoice.Fee, error) {
		return nil, nil
	})
	s.assembler = NewInvoiceAssembler(s.params)

	_, err := s.assembler.Assemble(ctx, s.testData.invoice.ID, s.testData.now)
	s.Require().Error(err)
	s.True(ierr.IsDelegate(err))

	fees, err := s.GetStores().FeeRepo.ListByInvoice(ctx, s.testData.invoice.ID)
	s.Require().NoError(err)
	s.Empty(fees)
}

func (s *InvoiceAssemblerSuite) TestCreditBeyondAmountDueIsDelegateFailure() {
	s.createCoupon("ac_1", func(c *coupon.AppliedCoupon) {})
	s.params.CouponApplier = overConsumingCouponApplier{consumed: 5000}
	s.assembler = NewInvoiceAssembler(s.params)

	_, err := s.assembler.Assemble(s.GetContext(), s.testData.invoice.ID, s.testData.now)
	s.Require().Error(err)
	s.True(ierr.IsDelegate(err))
	s.Contains(s.GetJournal().Entries(), testutil.JournalRollback)
	s.Equal(int64(0), s.storedInvoice(s.testData.invoice.ID).CreditAmountCents)
}

func (s *InvoiceAssemblerSuite) TestPayInAdvanceSubscriptionFeeIsNotDuplicated() {
	ctx := s.GetContext()
	advance := plan.NewPlan(ctx, "advance", types.BillingIntervalMonthly, 1000, "EUR")
	advance.PayInAdvance = true
	s.NoError(s.GetStores().PlanRepo.Create(ctx, advance))

	sub := s.createSubscription("sub_adv", advance.ID, func(sub *subscription.Subscription) {})
	first := s.createInvoice("inv_adv_1", sub.ID)
	second := s.createInvoice("inv_adv_2", sub.ID)

	inv, err := s.assembler.Assemble(ctx, first.ID, s.testData.now)
	s.Require().NoError(err)
	s.Len(inv.Fees, 1)

	inv, err = s.assembler.Assemble(ctx, second.ID, s.testData.now)
	s.Require().NoError(err)
	s.Empty(inv.Fees)
	s.Equal(types.InvoiceStatusSucceeded, inv.InvoiceStatus)
	s.Equal(1, s.subscriptionFeeCalls)

	billed, err := s.GetStores().FeeRepo.HasSubscriptionFee(ctx, sub.ID)
	s.Require().NoError(err)
	s.True(billed)
}

func (s *InvoiceAssemblerSuite) TestSubscriptionFeeEligibility() {
	ctx := s.GetContext()
	terminatedAt := time.Date(2022, 3, 1, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		interval     types.BillingInterval
		payInAdvance bool
		billMonthly  bool
		status       types.SubscriptionStatus
		started      time.Time
		timestamp    time.Time
		wantFee      bool
	}{
		{
			name:      "active pay in arrear",
			interval:  types.BillingIntervalMonthly,
			status:    types.SubscriptionStatusActive,
			timestamp: s.testData.now,
			wantFee:   true,
		},
		{
			name:      "terminated pay in arrear still owes the period",
			interval:  types.BillingIntervalMonthly,
			status:    types.SubscriptionStatusTerminated,
			timestamp: s.testData.now,
			wantFee:   true,
		},
		{
			name:         "terminated pay in advance",
			interval:     types.BillingIntervalMonthly,
			payInAdvance: true,
			status:       types.SubscriptionStatusTerminated,
			timestamp:    s.testData.now,
			wantFee:      false,
		},
		{
			name:      "pending subscription",
			interval:  types.BillingIntervalMonthly,
			status:    types.SubscriptionStatusPending,
			timestamp: s.testData.now,
			wantFee:   false,
		},
		{
			name:        "yearly with monthly charges outside the first month",
			interval:    types.BillingIntervalYearly,
			billMonthly: true,
			status:      types.SubscriptionStatusActive,
			timestamp:   s.testData.now,
			wantFee:     false,
		},
		{
			name:        "yearly with monthly charges in the first month",
			interval:    types.BillingIntervalYearly,
			billMonthly: true,
			status:      types.SubscriptionStatusActive,
			timestamp:   time.Date(2022, 1, 1, 10, 0, 0, 0, time.UTC),
			wantFee:     true,
		},
		{
			name:         "yearly in advance never billed",
			interval:     types.BillingIntervalYearly,
			payInAdvance: true,
			billMonthly:  true,
			status:       types.SubscriptionStatusActive,
			timestamp:    s.testData.now,
			wantFee:      true,
		},
	}

	for i, tt := range tests {
		s.Run(tt.name, func() {
			p := plan.NewPlan(ctx, fmt.Sprintf("plan_%d", i), tt.interval, 1000, "EUR")
			p.PayInAdvance = tt.payInAdvance
			p.BillChargesMonthly = tt.billMonthly
			s.NoError(s.GetStores().PlanRepo.Create(ctx, p))

			sub := s.createSubscription(fmt.Sprintf("sub_elig_%d", i), p.ID, func(sub *subscription.Subscription) {
				sub.SubscriptionStatus = tt.status
				if tt.status == types.SubscriptionStatusTerminated {
					sub.TerminatedAt = lo.ToPtr(terminatedAt)
				}
			})
			inv := s.createInvoice(fmt.Sprintf("inv_elig_%d", i), sub.ID)

			before := s.subscriptionFeeCalls
			_, err := s.assembler.Assemble(ctx, inv.ID, tt.timestamp)
			s.Require().NoError(err)
			s.Equal(tt.wantFee, s.subscriptionFeeCalls > before)
		})
	}
}

func (s *InvoiceAssemblerSuite) TestChargeFeeEligibility() {
	ctx := s.GetContext()
	s.chargeFeeCents = 50

	tests := []struct {
		name         string
		payInAdvance bool
		backdated    bool
		predecessor  bool
		priorInvoice bool
		wantCharges  bool
	}{
		{name: "pay in arrear", wantCharges: true},
		{name: "backdated pay in advance", payInAdvance: true, backdated: true, wantCharges: true},
		{name: "first pay in advance invoice", payInAdvance: true, wantCharges: false},
		{name: "first invoice of an upgrade", payInAdvance: true, backdated: true, predecessor: true, wantCharges: false},
		{name: "later pay in advance invoice", payInAdvance: true, priorInvoice: true, wantCharges: true},
	}

	for i, tt := range tests {
		s.Run(tt.name, func() {
			p := plan.NewPlan(ctx, fmt.Sprintf("charged_%d", i), types.BillingIntervalMonthly, 1000, "EUR")
			p.PayInAdvance = tt.payInAdvance
			p.Charges = []*plan.Charge{{
				ID:                 fmt.Sprintf("charge_%d", i),
				PlanID:             p.ID,
				BillableMetricCode: "api_calls",
				ChargeModel:        types.ChargeModelStandard,
				AmountCurrency:     "EUR",
				UnitAmount:         decimal.NewFromInt(1),
				BaseModel:          types.GetDefaultBaseModel(ctx),
			}}
			s.NoError(s.GetStores().PlanRepo.Create(ctx, p))

			subID := fmt.Sprintf("sub_charge_%d", i)
			sub := s.createSubscription(subID, p.ID, func(sub *subscription.Subscription) {
				if tt.backdated {
					sub.CreatedAt = sub.StartedAt.AddDate(0, 0, 10)
				}
				if tt.predecessor {
					sub.PreviousSubscriptionID = lo.ToPtr("sub_previous")
				}
			})
			if tt.priorInvoice {
				s.createInvoice(fmt.Sprintf("inv_prior_%d", i), sub.ID)
			}
			inv := s.createInvoice(fmt.Sprintf("inv_charge_%d", i), sub.ID)

			before := s.chargeFeeCalls
			_, err := s.assembler.Assemble(ctx, inv.ID, s.testData.now)
			s.Require().NoError(err)
			s.Equal(tt.wantCharges, s.chargeFeeCalls > before)
		})
	}
}

func (s *InvoiceAssemblerSuite) TestIssuingDateFollowsCustomerTimezone() {
	ctx := s.GetContext()
	s.testData.org.Timezone = lo.ToPtr("America/Los_Angeles")
	org := *s.testData.org
	org.ID = "org_la"
	s.NoError(s.GetStores().CustomerRepo.CreateOrganization(ctx, &org))

	cust := *s.testData.customer
	cust.ID = "cust_la"
	cust.OrganizationID = org.ID
	s.NoError(s.GetStores().CustomerRepo.Create(ctx, &cust))
	s.testData.customer = &cust

	sub := s.createSubscription("sub_la", s.testData.plan.ID, func(sub *subscription.Subscription) {})
	inv := s.createInvoice("inv_la", sub.ID)

	assembled, err := s.assembler.Assemble(ctx, inv.ID, time.Date(2022, 3, 1, 3, 0, 0, 0, time.UTC))
	s.Require().NoError(err)
	s.Equal(types.Date(2022, time.February, 28), assembled.IssuingDate)
}

func (s *InvoiceAssemblerSuite) TestDeferredActionsRunAfterCommit() {
	inv, err := s.assembler.Assemble(s.GetContext(), s.testData.invoice.ID, s.testData.now)
	s.Require().NoError(err)

	s.Equal([]string{
		testutil.JournalCommit,
		"webhook:" + types.WebhookEventInvoiceCreated,
		"payment:" + inv.ID,
		"analytics:" + inv.ID,
	}, s.GetJournal().Entries())

	s.Require().Len(s.webhooks.Events, 1)
	event := s.webhooks.Events[0]
	s.Equal("https://example.com/hooks", event.WebhookURL)
	s.Contains(string(event.Payload), `"total_amount_cents":1200`)
}

func (s *InvoiceAssemblerSuite) TestDeferredActionFailureKeepsInvoice() {
	s.payments.Err = errors.New("provider unavailable")

	inv, err := s.assembler.Assemble(s.GetContext(), s.testData.invoice.ID, s.testData.now)
	s.Require().NoError(err)
	s.Equal(int64(1200), inv.TotalAmountCents)
	s.Equal(1, s.payments.Calls())
	s.Equal(1, s.analytics.Calls())

	expected := `
# HELP invoicer_deferred_action_failures_total Post commit actions that returned an error.
# TYPE invoicer_deferred_action_failures_total counter
invoicer_deferred_action_failures_total{action="payment"} 1
`
	s.NoError(promtest.GatherAndCompare(s.registry, strings.NewReader(expected), "invoicer_deferred_action_failures_total"))
}

func (s *InvoiceAssemblerSuite) TestNoWebhookWithoutURL() {
	ctx := s.GetContext()
	org := customer.Organization{ID: "org_quiet", Name: "Quiet", BaseModel: types.GetDefaultBaseModel(ctx)}
	s.NoError(s.GetStores().CustomerRepo.CreateOrganization(ctx, &org))

	cust := customer.Customer{ID: "cust_quiet", OrganizationID: org.ID, BaseModel: types.GetDefaultBaseModel(ctx)}
	s.NoError(s.GetStores().CustomerRepo.Create(ctx, &cust))
	s.testData.customer = &cust

	sub := s.createSubscription("sub_quiet", s.testData.plan.ID, func(sub *subscription.Subscription) {})
	inv := s.createInvoice("inv_quiet", sub.ID)

	_, err := s.assembler.Assemble(ctx, inv.ID, s.testData.now)
	s.Require().NoError(err)
	s.Equal(0, s.webhooks.Calls())
	s.Equal(0, s.payments.Calls())
	s.Equal(1, s.analytics.Calls())
}

func (s *InvoiceAssemblerSuite) TestDelegateFailureRollsBackEverything() {
	ctx := s.GetContext()
	s.createCreditNote("cn_1", 300, s.testData.now.Add(-time.Hour))
	s.createWallet("wallet_1", 1000)
	s.params.PrepaidCreditApplier = failingPrepaidCreditApplier{}
	s.assembler = NewInvoiceAssembler(s.params)

	_, err := s.assembler.Assemble(ctx, s.testData.invoice.ID, s.testData.now)
	s.Require().Error(err)
	s.True(ierr.IsDelegate(err))
	s.True(ierr.IsRetryable(err))

	stored := s.storedInvoice(s.testData.invoice.ID)
	s.Equal(int64(0), stored.TotalAmountCents)
	s.True(stored.IssuingDate.IsZero())

	fees, err := s.GetStores().FeeRepo.ListByInvoice(ctx, s.testData.invoice.ID)
	s.Require().NoError(err)
	s.Empty(fees)

	note, err := s.GetStores().CreditNoteRepo.Get(ctx, "cn_1")
	s.Require().NoError(err)
	s.Equal(int64(300), note.BalanceAmountCents)

	credits, err := s.GetStores().CreditRepo.ListByInvoice(ctx, s.testData.invoice.ID)
	s.Require().NoError(err)
	s.Empty(credits)

	entries := s.GetJournal().Entries()
	s.Contains(entries, testutil.JournalRollback)
	s.NotContains(entries, testutil.JournalCommit)
	s.Equal(0, s.analytics.Calls())
	s.Equal(0, s.webhooks.Calls())

	// fees and credits of a rolled back assembly are never counted
	for _, name := range []string{"invoicer_fees_created_total", "invoicer_credits_applied_cents_total"} {
		count, err := promtest.GatherAndCount(s.registry, name)
		s.Require().NoError(err)
		s.Zero(count, name)
	}
}

func (s *InvoiceAssemblerSuite) TestChargeDelegateFailure() {
	ctx := s.GetContext()
	s.chargeFeeErr = errors.New("usage store timeout")

	s.NoError(s.GetStores().PlanRepo.CreateCharge(ctx, &plan.Charge{
		ID:                 "charge_basic",
		PlanID:             s.testData.plan.ID,
		BillableMetricCode: "api_calls",
		ChargeModel:        types.ChargeModelStandard,
		AmountCurrency:     "EUR",
		UnitAmount:         decimal.NewFromInt(2),
		BaseModel:          types.GetDefaultBaseModel(ctx),
	}))

	_, err := s.assembler.Assemble(ctx, s.testData.invoice.ID, s.testData.now)
	s.Require().Error(err)
	s.True(ierr.IsDelegate(err))

	fees, err := s.GetStores().FeeRepo.ListByInvoice(ctx, s.testData.invoice.ID)
	s.Require().NoError(err)
	s.Empty(fees, "the subscription fee created before the failure is rolled back")
}

func (s *InvoiceAssemblerSuite) TestInvalidFeeReportsRecord() {
	s.subscriptionFeeCents = -10

	_, err := s.assembler.Assemble(s.GetContext(), s.testData.invoice.ID, s.testData.now)
	s.Require().Error(err)
	s.True(ierr.IsValidation(err))
	s.False(ierr.IsRetryable(err))

	rec, ok := ierr.InvalidRecord(err)
	s.Require().True(ok)
	s.Equal("fee", rec.RecordType)
	s.NotEmpty(rec.RecordID)
	s.Equal("amount_cents", rec.Field)
	s.Contains(s.GetJournal().Entries(), testutil.JournalRollback)
}

func (s *InvoiceAssemblerSuite) TestUnknownIntervalIsConfigurationError() {
	ctx := s.GetContext()
	broken := plan.NewPlan(ctx, "broken", types.BillingInterval("daily"), 1000, "EUR")
	s.NoError(s.GetStores().PlanRepo.Create(ctx, broken))

	sub := s.createSubscription("sub_broken", broken.ID, func(sub *subscription.Subscription) {})
	inv := s.createInvoice("inv_broken", sub.ID)

	_, err := s.assembler.Assemble(ctx, inv.ID, s.testData.now)
	s.Require().Error(err)
	s.True(ierr.IsConfiguration(err))
	s.False(ierr.IsRetryable(err))
}

func (s *InvoiceAssemblerSuite) TestMissingInvoice() {
	_, err := s.assembler.Assemble(s.GetContext(), "inv_missing", s.testData.now)
	s.Require().Error(err)
	s.True(ierr.IsNotFound(err))
}

type spyCreditNoteApplier struct {
	inner   interfaces.CreditNoteApplier
	journal *testutil.Journal
}

func (a *spyCreditNoteApplier) ApplyCreditNotes(ctx context.Context, inv *invoice.Invoice, notes []*creditnote.CreditNote) (*interfaces.CreditNoteResult, error) {
	a.journal.Record(fmt.Sprintf("credit_notes:%d:%d", inv.AmountCents, inv.VatAmountCents))
	return a.inner.ApplyCreditNotes(ctx, inv, notes)
}

type spyCouponApplier struct {
	inner   interfaces.CouponApplier
	journal *testutil.Journal
}

func (a *spyCouponApplier) ApplyCoupon(ctx context.Context, inv *invoice.Invoice, applied *coupon.AppliedCoupon) (*interfaces.CouponResult, error) {
	a.journal.Record(fmt.Sprintf("coupon:%d:%d", inv.AmountCents, inv.VatAmountCents))
	return a.inner.ApplyCoupon(ctx, inv, applied)
}

type spyPrepaidCreditApplier struct {
	inner   interfaces.PrepaidCreditApplier
	journal *testutil.Journal
}

func (a *spyPrepaidCreditApplier) ApplyPrepaidCredits(ctx context.Context, inv *invoice.Invoice, w *wallet.Wallet) (*interfaces.PrepaidCreditResult, error) {
	a.journal.Record(fmt.Sprintf("wallet:%d:%d", inv.AmountCents, inv.VatAmountCents))
	return a.inner.ApplyPrepaidCredits(ctx, inv, w)
}

type failingPrepaidCreditApplier struct{}

func (failingPrepaidCreditApplier) ApplyPrepaidCredits(ctx context.Context, inv *invoice.Invoice, w *wallet.Wallet) (*interfaces.PrepaidCreditResult, error) {
	return nil, errors.New("wallet ledger unavailable")
}

type overConsumingCouponApplier struct {
	consumed int64
}

func (a overConsumingCouponApplier) ApplyCoupon(ctx context.Context, inv *invoice.Invoice, applied *coupon.AppliedCoupon) (*interfaces.CouponResult, error) {
	return &interfaces.CouponResult{ConsumedCents: a.consumed}, nil
}
