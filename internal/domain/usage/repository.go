package usage

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Event is one usage measurement reported for a subscription
type Event struct {
	ID             string          `db:"id" json:"id"`
	TransactionID  string          `db:"transaction_id" json:"transaction_id"`
	SubscriptionID string          `db:"subscription_id" json:"subscription_id"`
	Code           string          `db:"code" json:"code"`
	Value          decimal.Decimal `db:"value" json:"value"`
	Timestamp      time.Time       `db:"timestamp" json:"timestamp"`
}

// Reader aggregates recorded usage
type Reader interface {
	// SumUnits adds up the values of events with metric code reported for the
	// subscription within [from, to]
	SumUnits(ctx context.Context, subscriptionID, code string, from, to time.Time) (decimal.Decimal, error)
}
