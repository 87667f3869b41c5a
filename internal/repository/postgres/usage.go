package postgres

import (
	"context"
	"time"

	"github.com/flexprice/invoicer/internal/domain/usage"
	"github.com/flexprice/invoicer/internal/logger"
	"github.com/flexprice/invoicer/internal/postgres"
	"github.com/shopspring/decimal"
)

type usageReader struct {
	db     postgres.IClient
	logger *logger.Logger
}

func NewUsageReader(db postgres.IClient, logger *logger.Logger) usage.Reader {
	return &usageReader{db: db, logger: logger}
}

func (r *usageReader) SumUnits(ctx context.Context, subscriptionID, code string, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.Querier(ctx).GetContext(ctx, &total, `
		SELECT COALESCE(SUM(value), 0) FROM events
		WHERE subscription_id = $1
		  AND code = $2
		  AND timestamp BETWEEN $3 AND $4
	`, subscriptionID, code, from, to)
	if err != nil {
		return decimal.Zero, translateError(err, "event", "")
	}
	return total, nil
}
