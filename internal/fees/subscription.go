package fees

import (
	"context"

	"github.com/flexprice/invoicer/internal/domain/invoice"
	"github.com/flexprice/invoicer/internal/domain/subscription"
	"github.com/flexprice/invoicer/internal/interfaces"
	"github.com/flexprice/invoicer/internal/logger"
	"github.com/flexprice/invoicer/internal/period"
	"github.com/flexprice/invoicer/internal/types"
	"github.com/shopspring/decimal"
)

type subscriptionFeeService struct {
	logger *logger.Logger
}

// NewSubscriptionFeeService prices the plan amount of a subscription. A
// period shorter than the plan interval is prorated by day.
func NewSubscriptionFeeService(logger *logger.Logger) interfaces.SubscriptionFeeComputer {
	return &subscriptionFeeService{logger: logger}
}

func (s *subscriptionFeeService) ComputeSubscriptionFee(
	ctx context.Context,
	inv *invoice.Invoice,
	sub *subscription.Subscription,
	boundaries period.Boundaries,
) (*invoice.Fee, error) {
	resolver, err := period.NewResolver(sub, boundaries.Timestamp, false)
	if err != nil {
		return nil, err
	}

	amount := sub.Plan.AmountCents
	covered, full := resolver.DaysCovered(boundaries.FromDatetime, boundaries.ToDatetime)
	if covered < full {
		from := boundaries.FromDatetime
		amount = resolver.SinglePriceDay(&from).
			Mul(decimal.NewFromInt(int64(covered))).
			Round(0).
			IntPart()

		s.logger.Debugw("prorated subscription fee",
			"subscription_id", sub.ID,
			"days_covered", covered,
			"period_days", full,
			"amount_cents", amount)
	}

	vatRate := vatRateOf(sub)
	return &invoice.Fee{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_FEE),
		InvoiceID:      inv.ID,
		SubscriptionID: sub.ID,
		FeeType:        types.FeeTypeSubscription,
		AmountCents:    amount,
		AmountCurrency: sub.Plan.AmountCurrency,
		VatRate:        vatRate,
		VatAmountCents: types.VatAmountCents(amount, vatRate),
		Units:          decimal.NewFromInt(1),
		FromDatetime:   boundaries.FromDatetime,
		ToDatetime:     boundaries.ToDatetime,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}, nil
}

func vatRateOf(sub *subscription.Subscription) decimal.Decimal {
	if sub.Customer == nil {
		return decimal.Zero
	}
	return sub.Customer.ApplicableVatRate()
}
