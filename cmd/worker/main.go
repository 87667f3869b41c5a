package main

import (
	"context"
	"time"

	"github.com/flexprice/invoicer/internal/analytics"
	"github.com/flexprice/invoicer/internal/api"
	"github.com/flexprice/invoicer/internal/config"
	"github.com/flexprice/invoicer/internal/credit"
	"github.com/flexprice/invoicer/internal/fees"
	"github.com/flexprice/invoicer/internal/logger"
	"github.com/flexprice/invoicer/internal/metrics"
	"github.com/flexprice/invoicer/internal/migration"
	"github.com/flexprice/invoicer/internal/payment"
	"github.com/flexprice/invoicer/internal/postgres"
	"github.com/flexprice/invoicer/internal/repository"
	"github.com/flexprice/invoicer/internal/sentry"
	"github.com/flexprice/invoicer/internal/service"
	"github.com/flexprice/invoicer/internal/temporal"
	"github.com/flexprice/invoicer/internal/webhook"
	"go.uber.org/fx"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			config.NewConfig,
			logger.NewLogger,
		),
		sentry.Module(),
		metrics.Module,
		postgres.Module(),
		migration.Module,
		repository.Module(),
	)

	// Pub/sub transport and webhook publisher, needed by the post commit
	// collaborators below
	opts = append(opts, webhook.Module)

	// Service layer
	opts = append(opts,
		fx.Provide(
			// Fee and credit collaborators
			fees.NewSubscriptionFeeService,
			fees.NewChargeFeeService,
			credit.NewCreditNoteService,
			credit.NewAppliedCouponService,
			credit.NewPrepaidCreditService,

			// Post commit collaborators
			payment.NewRequester,
			analytics.NewTracker,

			service.NewServiceParams,
			service.NewInvoiceAssembler,
			service.NewBatchAssembler,
			service.NewAddOnInvoicer,
		),
	)

	// Temporal
	opts = append(opts,
		fx.Provide(
			temporal.NewTemporalClient,
			temporal.NewService,
			temporal.NewInvoiceActivities,
			temporal.NewWorker,
		),
		fx.Invoke(
			registerTemporalHooks,
		),
	)

	// HTTP
	opts = append(opts,
		fx.Provide(
			provideHandlers,
			api.NewRouter,
		),
		fx.Invoke(
			registerDatabaseHooks,
			api.RegisterServer,
		),
	)

	app := fx.New(opts...)
	app.Run()
}

func provideHandlers(db *postgres.DB, temporalService *temporal.Service, logger *logger.Logger) api.Handlers {
	return api.Handlers{
		Health:   api.NewHealthHandler(db, logger),
		Invoices: api.NewInvoiceHandler(temporalService, logger),
	}
}

// stop hooks run in reverse, so the worker drains before the client closes
func registerTemporalHooks(lc fx.Lifecycle, client *temporal.TemporalClient, worker *temporal.Worker) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			client.Close()
			return nil
		},
	})
	worker.RegisterWithLifecycle(lc)
}

func registerDatabaseHooks(lc fx.Lifecycle, db *postgres.DB) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			db.Close()
			return nil
		},
	})
}
