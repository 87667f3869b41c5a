package service

import (
	"github.com/flexprice/invoicer/internal/config"
	"github.com/flexprice/invoicer/internal/domain/addon"
	"github.com/flexprice/invoicer/internal/domain/coupon"
	"github.com/flexprice/invoicer/internal/domain/creditnote"
	"github.com/flexprice/invoicer/internal/domain/customer"
	"github.com/flexprice/invoicer/internal/domain/invoice"
	"github.com/flexprice/invoicer/internal/domain/plan"
	"github.com/flexprice/invoicer/internal/domain/subscription"
	"github.com/flexprice/invoicer/internal/domain/wallet"
	"github.com/flexprice/invoicer/internal/interfaces"
	"github.com/flexprice/invoicer/internal/logger"
	"github.com/flexprice/invoicer/internal/metrics"
	"github.com/flexprice/invoicer/internal/postgres"
	"github.com/flexprice/invoicer/internal/sentry"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger  *logger.Logger
	Config  *config.Configuration
	DB      postgres.IClient
	Metrics *metrics.InvoicingMetrics
	Sentry  *sentry.Service

	// Repositories
	PlanRepo       plan.Repository
	CustomerRepo   customer.Repository
	SubRepo        subscription.Repository
	InvoiceRepo    invoice.Repository
	FeeRepo        invoice.FeeRepository
	CreditRepo     invoice.CreditRepository
	CreditNoteRepo creditnote.Repository
	CouponRepo     coupon.Repository
	WalletRepo     wallet.Repository
	AddOnRepo      addon.Repository

	// Fee and credit collaborators
	SubscriptionFeeComputer interfaces.SubscriptionFeeComputer
	ChargeFeeComputer       interfaces.ChargeFeeComputer
	CreditNoteApplier       interfaces.CreditNoteApplier
	CouponApplier           interfaces.CouponApplier
	PrepaidCreditApplier    interfaces.PrepaidCreditApplier

	// Post commit collaborators
	PaymentCreator   interfaces.PaymentCreator
	AnalyticsTracker interfaces.AnalyticsTracker
	WebhookPublisher interfaces.WebhookPublisher
}

// Common service params
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	metrics *metrics.InvoicingMetrics,
	sentry *sentry.Service,
	planRepo plan.Repository,
	customerRepo customer.Repository,
	subRepo subscription.Repository,
	invoiceRepo invoice.Repository,
	feeRepo invoice.FeeRepository,
	creditRepo invoice.CreditRepository,
	creditNoteRepo creditnote.Repository,
	couponRepo coupon.Repository,
	walletRepo wallet.Repository,
	addOnRepo addon.Repository,
	subscriptionFeeComputer interfaces.SubscriptionFeeComputer,
	chargeFeeComputer interfaces.ChargeFeeComputer,
	creditNoteApplier interfaces.CreditNoteApplier,
	couponApplier interfaces.CouponApplier,
	prepaidCreditApplier interfaces.PrepaidCreditApplier,
	paymentCreator interfaces.PaymentCreator,
	analyticsTracker interfaces.AnalyticsTracker,
	webhookPublisher interfaces.WebhookPublisher,
) ServiceParams {
	return ServiceParams{
		Logger:                  logger,
		Config:                  config,
		DB:                      db,
		Metrics:                 metrics,
		Sentry:                  sentry,
		PlanRepo:                planRepo,
		CustomerRepo:            customerRepo,
		SubRepo:                 subRepo,
		InvoiceRepo:             invoiceRepo,
		FeeRepo:                 feeRepo,
		CreditRepo:              creditRepo,
		CreditNoteRepo:          creditNoteRepo,
		CouponRepo:              couponRepo,
		WalletRepo:              walletRepo,
		AddOnRepo:               addOnRepo,
		SubscriptionFeeComputer: subscriptionFeeComputer,
		ChargeFeeComputer:       chargeFeeComputer,
		CreditNoteApplier:       creditNoteApplier,
		CouponApplier:           couponApplier,
		PrepaidCreditApplier:    prepaidCreditApplier,
		PaymentCreator:          paymentCreator,
		AnalyticsTracker:        analyticsTracker,
		WebhookPublisher:        webhookPublisher,
	}
}
