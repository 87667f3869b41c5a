package postgres

import (
	"context"

	"github.com/flexprice/invoicer/internal/config"
	"github.com/flexprice/invoicer/internal/logger"
	sentryService "github.com/flexprice/invoicer/internal/sentry"
	"go.uber.org/fx"
)

// IClient defines the interface for postgres client operations
type IClient interface {
	// WithTx wraps the given function in a transaction. Nested calls run in a
	// savepoint of the outer transaction.
	WithTx(ctx context.Context, fn func(context.Context) error) error

	// Querier returns the transaction carried by ctx, or the pool
	Querier(ctx context.Context) Querier
}

var _ IClient = (*DB)(nil)

// Module provides an fx.Option wiring the connection pool and its client
func Module() fx.Option {
	return fx.Options(
		fx.Provide(
			NewDB,
			NewClient,
		),
	)
}

// NewClient exposes db as an IClient instrumented with sentry spans
func NewClient(db *DB, sentry *sentryService.Service, cfg *config.Configuration, logger *logger.Logger) IClient {
	if !cfg.Sentry.Enabled {
		return db
	}
	return NewSentryClient(db, sentry, logger)
}
