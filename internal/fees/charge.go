package fees

import (
	"context"

	"github.com/flexprice/invoicer/internal/domain/invoice"
	"github.com/flexprice/invoicer/internal/domain/plan"
	"github.com/flexprice/invoicer/internal/domain/subscription"
	"github.com/flexprice/invoicer/internal/domain/usage"
	ierr "github.com/flexprice/invoicer/internal/errors"
	"github.com/flexprice/invoicer/internal/interfaces"
	"github.com/flexprice/invoicer/internal/logger"
	"github.com/flexprice/invoicer/internal/period"
	"github.com/flexprice/invoicer/internal/types"
	"github.com/samber/lo"
)

type chargeFeeService struct {
	usage  usage.Reader
	logger *logger.Logger
}

// NewChargeFeeService prices plan charges from recorded usage
func NewChargeFeeService(reader usage.Reader, logger *logger.Logger) interfaces.ChargeFeeComputer {
	return &chargeFeeService{usage: reader, logger: logger}
}

func (s *chargeFeeService) ComputeChargeFee(
	ctx context.Context,
	inv *invoice.Invoice,
	sub *subscription.Subscription,
	charge *plan.Charge,
	boundaries period.Boundaries,
) (*invoice.Fee, error) {
	if charge.ChargeModel != types.ChargeModelStandard {
		return nil, ierr.NewError("unsupported charge model").
			WithHintf("Charge model %q cannot be priced", charge.ChargeModel).
			WithReportableDetails(map[string]any{
				"charge_id":    charge.ID,
				"charge_model": charge.ChargeModel,
			}).
			Mark(ierr.ErrConfiguration)
	}

	units, err := s.usage.SumUnits(ctx, sub.ID, charge.BillableMetricCode,
		boundaries.ChargesFromDatetime, boundaries.ChargesToDatetime)
	if err != nil {
		return nil, err
	}

	amount := units.Mul(charge.UnitAmount).Round(0).IntPart()
	vatRate := vatRateOf(sub)

	s.logger.Debugw("computed charge fee",
		"subscription_id", sub.ID,
		"charge_id", charge.ID,
		"units", units.String(),
		"amount_cents", amount)

	return &invoice.Fee{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_FEE),
		InvoiceID:      inv.ID,
		SubscriptionID: sub.ID,
		ChargeID:       lo.ToPtr(charge.ID),
		FeeType:        types.FeeTypeCharge,
		AmountCents:    amount,
		AmountCurrency: lo.CoalesceOrEmpty(charge.AmountCurrency, sub.Plan.AmountCurrency),
		VatRate:        vatRate,
		VatAmountCents: types.VatAmountCents(amount, vatRate),
		Units:          units,
		FromDatetime:   boundaries.ChargesFromDatetime,
		ToDatetime:     boundaries.ChargesToDatetime,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}, nil
}
