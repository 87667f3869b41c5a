package postgres

import (
	"context"

	"github.com/flexprice/invoicer/internal/logger"
	sentryService "github.com/flexprice/invoicer/internal/sentry"
	"github.com/getsentry/sentry-go"
)

// SentryClient reports every unit of work as a sentry span and leaves a
// breadcrumb when one is rolled back
type SentryClient struct {
	client IClient
	sentry *sentryService.Service
	logger *logger.Logger
}

func NewSentryClient(client IClient, sentry *sentryService.Service, logger *logger.Logger) IClient {
	return &SentryClient{
		client: client,
		sentry: sentry,
		logger: logger,
	}
}

func (c *SentryClient) WithTx(ctx context.Context, fn func(context.Context) error) error {
	nested := false
	if _, ok := GetTx(ctx); ok {
		nested = true
	}

	span, spanCtx := c.sentry.StartSpan(ctx, "db.postgres", "postgres.transaction", map[string]interface{}{
		"nested": nested,
	})
	defer sentryService.FinishSpan(span)

	err := c.client.WithTx(spanCtx, fn)
	if err != nil {
		if span != nil {
			span.Status = sentry.SpanStatusAborted
		}
		c.sentry.AddBreadcrumb("postgres", "transaction rolled back", map[string]interface{}{
			"nested": nested,
			"error":  err.Error(),
		})
		return err
	}

	if span != nil {
		span.Status = sentry.SpanStatusOK
	}
	return nil
}

func (c *SentryClient) Querier(ctx context.Context) Querier {
	return c.client.Querier(ctx)
}
