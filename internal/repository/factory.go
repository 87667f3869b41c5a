package repository

import (
	"github.com/flexprice/invoicer/internal/domain/addon"
	"github.com/flexprice/invoicer/internal/domain/coupon"
	"github.com/flexprice/invoicer/internal/domain/creditnote"
	"github.com/flexprice/invoicer/internal/domain/customer"
	"github.com/flexprice/invoicer/internal/domain/invoice"
	"github.com/flexprice/invoicer/internal/domain/plan"
	"github.com/flexprice/invoicer/internal/domain/subscription"
	"github.com/flexprice/invoicer/internal/domain/usage"
	"github.com/flexprice/invoicer/internal/domain/wallet"
	"github.com/flexprice/invoicer/internal/logger"
	"github.com/flexprice/invoicer/internal/postgres"
	postgresRepo "github.com/flexprice/invoicer/internal/repository/postgres"
	"go.uber.org/fx"
)

// Module provides every postgres backed repository
func Module() fx.Option {
	return fx.Provide(
		NewPlanRepository,
		NewCustomerRepository,
		NewSubscriptionRepository,
		NewInvoiceRepository,
		NewFeeRepository,
		NewCreditRepository,
		NewCreditNoteRepository,
		NewAppliedCouponRepository,
		NewWalletRepository,
		NewAppliedAddOnRepository,
		NewUsageReader,
	)
}

func NewPlanRepository(db postgres.IClient, logger *logger.Logger) plan.Repository {
	return postgresRepo.NewPlanRepository(db, logger)
}

func NewCustomerRepository(db postgres.IClient, logger *logger.Logger) customer.Repository {
	return postgresRepo.NewCustomerRepository(db, logger)
}

func NewSubscriptionRepository(db postgres.IClient, logger *logger.Logger) subscription.Repository {
	return postgresRepo.NewSubscriptionRepository(db, logger)
}

func NewInvoiceRepository(db postgres.IClient, logger *logger.Logger) invoice.Repository {
	return postgresRepo.NewInvoiceRepository(db, logger)
}

func NewFeeRepository(db postgres.IClient, logger *logger.Logger) invoice.FeeRepository {
	return postgresRepo.NewFeeRepository(db, logger)
}

func NewCreditRepository(db postgres.IClient, logger *logger.Logger) invoice.CreditRepository {
	return postgresRepo.NewCreditRepository(db, logger)
}

func NewCreditNoteRepository(db postgres.IClient, logger *logger.Logger) creditnote.Repository {
	return postgresRepo.NewCreditNoteRepository(db, logger)
}

func NewAppliedCouponRepository(db postgres.IClient, logger *logger.Logger) coupon.Repository {
	return postgresRepo.NewAppliedCouponRepository(db, logger)
}

func NewWalletRepository(db postgres.IClient, logger *logger.Logger) wallet.Repository {
	return postgresRepo.NewWalletRepository(db, logger)
}

func NewAppliedAddOnRepository(db postgres.IClient, logger *logger.Logger) addon.Repository {
	return postgresRepo.NewAppliedAddOnRepository(db, logger)
}

func NewUsageReader(db postgres.IClient, logger *logger.Logger) usage.Reader {
	return postgresRepo.NewUsageReader(db, logger)
}
