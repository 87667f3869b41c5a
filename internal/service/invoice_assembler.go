package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/flexprice/invoicer/internal/cache"
	"github.com/flexprice/invoicer/internal/domain/customer"
	"github.com/flexprice/invoicer/internal/domain/invoice"
	"github.com/flexprice/invoicer/internal/domain/plan"
	"github.com/flexprice/invoicer/internal/domain/subscription"
	ierr "github.com/flexprice/invoicer/internal/errors"
	"github.com/flexprice/invoicer/internal/idempotency"
	"github.com/flexprice/invoicer/internal/period"
	"github.com/flexprice/invoicer/internal/sentry"
	"github.com/flexprice/invoicer/internal/types"
	webhookDto "github.com/flexprice/invoicer/internal/webhook/dto"
	"github.com/samber/lo"
)

// InvoiceAssembler turns a drafted invoice into a finalized one
type InvoiceAssembler interface {
	// Assemble creates the fees of every subscription on the invoice, applies
	// credit notes, coupons and prepaid credits in that order and finalizes
	// the totals. Everything is persisted in one transaction; webhooks,
	// payments and analytics only run after it commits.
	Assemble(ctx context.Context, invoiceID string, timestamp time.Time) (*invoice.Invoice, error)
}

type invoiceAssembler struct {
	ServiceParams
	idempotencyKeys *idempotency.Generator
}

func NewInvoiceAssembler(params ServiceParams) InvoiceAssembler {
	return &invoiceAssembler{
		ServiceParams:   params,
		idempotencyKeys: idempotency.NewGenerator(),
	}
}

// assembly is the state of one invoice being assembled
type assembly struct {
	invoice       *invoice.Invoice
	customer      *customer.Customer
	subscriptions []*subscription.Subscription
	timestamp     time.Time
	issuingDate   time.Time
	amounts       amounts
	deferred      deferredActions
	webhookEvent  string

	feesCreated map[types.FeeType]int
	credited    map[types.CreditSource]int64
}

func newAssembly(inv *invoice.Invoice, timestamp time.Time, webhookEvent string) *assembly {
	return &assembly{
		invoice:      inv,
		timestamp:    timestamp,
		webhookEvent: webhookEvent,
		feesCreated:  make(map[types.FeeType]int),
		credited:     make(map[types.CreditSource]int64),
	}
}

// errNoResult is the cause of a delegate failure when a collaborator
// returns neither a result nor an error
var errNoResult = ierr.NewError("collaborator returned no result").Error()

// consume takes what a credit source consumed off the running amounts
func (a *assembly) consume(source types.CreditSource, cents int64) error {
	next, err := a.amounts.credit(cents)
	if err != nil {
		return err
	}
	a.amounts = next
	a.credited[source] += cents
	return nil
}

func (s *invoiceAssembler) Assemble(ctx context.Context, invoiceID string, timestamp time.Time) (*invoice.Invoice, error) {
	start := time.Now()
	span, ctx := s.Sentry.StartSpan(ctx, "invoice.assemble", "assemble_invoice", map[string]interface{}{
		"invoice_id": invoiceID,
	})
	defer sentry.FinishSpan(span)

	s.Logger.Infow("assembling invoice",
		"invoice_id", invoiceID,
		"timestamp", timestamp)

	var a *assembly
	err := s.DB.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		a, err = s.load(txCtx, invoiceID, timestamp)
		if err != nil {
			return err
		}

		for _, sub := range a.subscriptions {
			if err := s.createFees(txCtx, a, sub); err != nil {
				return err
			}
		}

		fees, err := s.FeeRepo.ListByInvoice(txCtx, a.invoice.ID)
		if err != nil {
			return err
		}
		a.invoice.Fees = fees
		a.amounts = aggregateFees(fees, a.customer.ApplicableVatRate())

		if err := s.applyCreditNotes(txCtx, a); err != nil {
			return err
		}
		if err := s.applyCoupons(txCtx, a); err != nil {
			return err
		}
		if err := s.applyPrepaidCredits(txCtx, a); err != nil {
			return err
		}

		return s.finalize(txCtx, a)
	})

	s.Metrics.ObserveAssembly(err, time.Since(start))
	if err != nil {
		s.Logger.Errorw("failed to assemble invoice",
			"invoice_id", invoiceID,
			"error", err)
		s.Sentry.CaptureException(err, map[string]string{"invoice_id": invoiceID})
		return nil, err
	}

	for feeType, n := range a.feesCreated {
		for range n {
			s.Metrics.IncFeeCreated(feeType)
		}
	}
	for source, cents := range a.credited {
		s.Metrics.AddCreditApplied(source, cents)
	}

	s.Logger.Infow("assembled invoice",
		"invoice_id", a.invoice.ID,
		"status", a.invoice.InvoiceStatus,
		"amount_cents", a.invoice.AmountCents,
		"vat_amount_cents", a.invoice.VatAmountCents,
		"credit_amount_cents", a.invoice.CreditAmountCents,
		"total_amount_cents", a.invoice.TotalAmountCents,
		"fees", len(a.invoice.Fees))

	s.runDeferred(ctx, a.invoice.ID, a.deferred)
	return a.invoice, nil
}

// load reads the invoice with its subscriptions, their plans and the customer.
// The customer and the currency come from the first subscription.
func (s *invoiceAssembler) load(ctx context.Context, invoiceID string, timestamp time.Time) (*assembly, error) {
	inv, err := s.InvoiceRepo.Get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if len(inv.SubscriptionIDs) == 0 {
		return nil, ierr.NewRecordInvalid("invoice", inv.ID, "subscription_ids", "must not be empty")
	}

	a := newAssembly(inv, timestamp, types.WebhookEventInvoiceCreated)

	plans := make(map[string]*plan.Plan)
	loadPlan := func(id string) (*plan.Plan, error) {
		if p, ok := plans[id]; ok {
			return p, nil
		}
		p, err := s.PlanRepo.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		plans[id] = p
		return p, nil
	}

	for _, subID := range inv.SubscriptionIDs {
		sub, err := s.SubRepo.Get(ctx, subID)
		if err != nil {
			return nil, err
		}
		if sub.Plan, err = loadPlan(sub.PlanID); err != nil {
			return nil, err
		}

		if a.customer == nil {
			if a.customer, err = s.CustomerRepo.Get(ctx, sub.CustomerID); err != nil {
				return nil, err
			}
		}
		sub.Customer = a.customer

		if sub.NextSubscriptionID != nil {
			next, err := s.SubRepo.Get(ctx, *sub.NextSubscriptionID)
			if err != nil {
				return nil, err
			}
			if next.Plan, err = loadPlan(next.PlanID); err != nil {
				return nil, err
			}
			sub.NextSubscription = next
		}

		a.subscriptions = append(a.subscriptions, sub)
	}

	loc, err := cache.LoadLocation(a.customer.ApplicableTimezone())
	if err != nil {
		return nil, err
	}
	a.issuingDate = types.DateIn(timestamp, loc)

	if inv.IssuingDate.IsZero() {
		inv.IssuingDate = a.issuingDate
	}
	inv.CustomerID = lo.CoalesceOrEmpty(inv.CustomerID, a.customer.ID)
	inv.OrganizationID = lo.CoalesceOrEmpty(inv.OrganizationID, a.customer.OrganizationID)
	inv.AmountCurrency = lo.CoalesceOrEmpty(inv.AmountCurrency, a.subscriptions[0].Plan.AmountCurrency)

	return a, nil
}

func (s *invoiceAssembler) createFees(ctx context.Context, a *assembly, sub *subscription.Subscription) error {
	// an upgrade also bills the usage of the period still in progress
	currentUsage := sub.IsTerminated() && sub.IsUpgraded()

	resolver, err := period.NewResolver(sub, a.timestamp, currentUsage)
	if err != nil {
		return err
	}
	boundaries := resolver.Boundaries()

	s.Logger.Debugw("resolved billing period",
		"invoice_id", a.invoice.ID,
		"subscription_id", sub.ID,
		"from", boundaries.FromDatetime,
		"to", boundaries.ToDatetime,
		"charges_from", boundaries.ChargesFromDatetime,
		"charges_to", boundaries.ChargesToDatetime)

	billSubscription, err := s.shouldCreateSubscriptionFee(ctx, a, sub, resolver)
	if err != nil {
		return err
	}
	if billSubscription {
		if err := s.createSubscriptionFee(ctx, a, sub, boundaries); err != nil {
			return err
		}
	}

	billCharges, err := s.shouldCreateChargeFees(ctx, a, sub)
	if err != nil {
		return err
	}
	if billCharges {
		for _, charge := range sub.Plan.Charges {
			if err := s.createChargeFee(ctx, a, sub, charge, boundaries); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *invoiceAssembler) shouldCreateSubscriptionFee(ctx context.Context, a *assembly, sub *subscription.Subscription, resolver *period.Resolver) (bool, error) {
	p := sub.Plan

	// the subscription creation flow may already have billed this period
	if p.PayInAdvance {
		exists, err := s.FeeRepo.ExistsSubscriptionFee(ctx, sub.ID, a.issuingDate)
		if err != nil {
			return false, err
		}
		if exists {
			return false, nil
		}
	}

	if p.IsYearly() && p.BillChargesMonthly {
		if resolver.FirstMonthInYearlyPeriod() {
			return true, nil
		}
		if !p.PayInAdvance {
			return false, nil
		}
		billed, err := s.FeeRepo.HasSubscriptionFee(ctx, sub.ID)
		if err != nil {
			return false, err
		}
		return !billed, nil
	}

	if sub.IsActive() {
		return true, nil
	}
	return sub.IsTerminated() && p.IsPayInArrear(), nil
}

func (s *invoiceAssembler) shouldCreateChargeFees(ctx context.Context, a *assembly, sub *subscription.Subscription) (bool, error) {
	if !sub.Plan.PayInAdvance {
		return true, nil
	}

	// a backdated subscription owes the usage of the periods it skipped
	if sub.StartedInPast() && !sub.HasPredecessor() {
		return true, nil
	}

	// the previous plan of an upgrade already billed this usage
	count, err := s.InvoiceRepo.CountBySubscription(ctx, sub.ID, a.invoice.ID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *invoiceAssembler) createSubscriptionFee(ctx context.Context, a *assembly, sub *subscription.Subscription, boundaries period.Boundaries) error {
	fee, err := s.SubscriptionFeeComputer.ComputeSubscriptionFee(ctx, a.amounts.view(a.invoice), sub, boundaries)
	if err == nil && fee == nil {
		err = errNoResult
	}
	if err != nil {
		return ierr.NewDelegateFailure(err, "subscription fee computation", map[string]any{
			"invoice_id":      a.invoice.ID,
			"subscription_id": sub.ID,
		})
	}

	fee.SubscriptionID = sub.ID
	fee.FeeType = types.FeeTypeSubscription
	fee.IdempotencyKey = s.idempotencyKeys.SubscriptionFeeKey(sub.ID, boundaries.FromDatetime, boundaries.ToDatetime)
	return s.persistFee(ctx, a, fee)
}

func (s *invoiceAssembler) createChargeFee(ctx context.Context, a *assembly, sub *subscription.Subscription, charge *plan.Charge, boundaries period.Boundaries) error {
	fee, err := s.ChargeFeeComputer.ComputeChargeFee(ctx, a.amounts.view(a.invoice), sub, charge, boundaries)
	if err == nil && fee == nil {
		err = errNoResult
	}
	if err != nil {
		return ierr.NewDelegateFailure(err, "charge fee computation", map[string]any{
			"invoice_id":      a.invoice.ID,
			"subscription_id": sub.ID,
			"charge_id":       charge.ID,
		})
	}

	fee.SubscriptionID = sub.ID
	fee.FeeType = types.FeeTypeCharge
	fee.ChargeID = lo.ToPtr(charge.ID)
	fee.IdempotencyKey = s.idempotencyKeys.ChargeFeeKey(sub.ID, charge.ID, boundaries.ChargesFromDatetime, boundaries.ChargesToDatetime)
	return s.persistFee(ctx, a, fee)
}

// persistFee attaches fee to the invoice. A fee whose idempotency key was
// already used is not created again.
func (s *invoiceAssembler) persistFee(ctx context.Context, a *assembly, fee *invoice.Fee) error {
	if fee.ID == "" {
		fee.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_FEE)
	}
	fee.InvoiceID = a.invoice.ID
	fee.AmountCurrency = lo.CoalesceOrEmpty(fee.AmountCurrency, a.invoice.AmountCurrency)

	if err := fee.Validate(); err != nil {
		return err
	}

	// savepoint so a duplicate key does not abort the outer transaction
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		return s.FeeRepo.Create(ctx, fee)
	})
	if ierr.IsAlreadyExists(err) {
		s.Logger.Warnw("fee already billed, skipping",
			"invoice_id", a.invoice.ID,
			"subscription_id", fee.SubscriptionID,
			"fee_type", fee.FeeType,
			"idempotency_key", fee.IdempotencyKey)
		return nil
	}
	if err != nil {
		return err
	}

	a.feesCreated[fee.FeeType]++
	return nil
}

func (s *invoiceAssembler) applyCreditNotes(ctx context.Context, a *assembly) error {
	notes, err := s.CreditNoteRepo.ListAvailableByCustomer(ctx, a.customer.ID)
	if err != nil {
		return err
	}
	if len(notes) == 0 {
		return nil
	}

	result, err := s.CreditNoteApplier.ApplyCreditNotes(ctx, a.amounts.view(a.invoice), notes)
	if err == nil && result == nil {
		err = errNoResult
	}
	if err == nil {
		err = a.consume(types.CreditSourceCreditNote, result.TotalConsumedCents)
	}
	if err != nil {
		return ierr.NewDelegateFailure(err, "credit note application", map[string]any{
			"invoice_id": a.invoice.ID,
		})
	}
	return nil
}

func (s *invoiceAssembler) applyCoupons(ctx context.Context, a *assembly) error {
	if !a.amounts.positive() {
		return nil
	}

	coupons, err := s.CouponRepo.ListActiveByCustomer(ctx, a.customer.ID)
	if err != nil {
		return err
	}

	for _, applied := range coupons {
		if !a.amounts.positive() {
			break
		}
		if applied.IsFixedAmount() && applied.AmountCurrency != a.invoice.AmountCurrency {
			s.Logger.Debugw("skipping coupon in another currency",
				"invoice_id", a.invoice.ID,
				"applied_coupon_id", applied.ID,
				"coupon_currency", applied.AmountCurrency,
				"invoice_currency", a.invoice.AmountCurrency)
			continue
		}

		result, err := s.CouponApplier.ApplyCoupon(ctx, a.amounts.view(a.invoice), applied)
		if err == nil && result == nil {
			err = errNoResult
		}
		if err == nil {
			err = a.consume(types.CreditSourceAppliedCoupon, result.ConsumedCents)
		}
		if err != nil {
			return ierr.NewDelegateFailure(err, "coupon application", map[string]any{
				"invoice_id":        a.invoice.ID,
				"applied_coupon_id": applied.ID,
			})
		}
	}
	return nil
}

func (s *invoiceAssembler) applyPrepaidCredits(ctx context.Context, a *assembly) error {
	if !a.amounts.positive() {
		return nil
	}

	w, err := s.WalletRepo.GetActiveByCustomer(ctx, a.customer.ID)
	if ierr.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if !w.IsActive() || w.BalanceCents <= 0 {
		return nil
	}

	result, err := s.PrepaidCreditApplier.ApplyPrepaidCredits(ctx, a.amounts.view(a.invoice), w)
	if err == nil && result == nil {
		err = errNoResult
	}
	if err == nil {
		err = a.consume(types.CreditSourceWallet, result.ConsumedCents)
	}
	if err != nil {
		return ierr.NewDelegateFailure(err, "prepaid credit application", map[string]any{
			"invoice_id": a.invoice.ID,
			"wallet_id":  w.ID,
		})
	}
	return nil
}

// finalize writes the totals and collects the post commit actions
func (s *invoiceAssembler) finalize(ctx context.Context, a *assembly) error {
	inv := a.amounts.view(a.invoice)
	inv.InvoiceStatus = types.InvoiceStatusPending
	if inv.TotalAmountCents == 0 {
		inv.InvoiceStatus = types.InvoiceStatusSucceeded
	}

	if err := inv.Validate(); err != nil {
		return err
	}
	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return err
	}

	credits, err := s.CreditRepo.ListByInvoice(ctx, inv.ID)
	if err != nil {
		return err
	}
	inv.Credits = credits
	a.invoice = inv

	if url := a.customer.WebhookURL(); url != "" {
		a.deferred.add(actionWebhook, func(ctx context.Context) error {
			return s.publishInvoiceEvent(ctx, inv, url, a.webhookEvent)
		})
	}
	if a.customer.HasPaymentProvider() && inv.TotalAmountCents > 0 {
		a.deferred.add(actionPayment, func(ctx context.Context) error {
			return s.PaymentCreator.CreatePayment(ctx, inv)
		})
	}
	a.deferred.add(actionAnalytics, func(ctx context.Context) error {
		return s.AnalyticsTracker.TrackInvoiceCreated(ctx, inv)
	})
	return nil
}

func (s *invoiceAssembler) publishInvoiceEvent(ctx context.Context, inv *invoice.Invoice, url, event string) error {
	payload, err := json.Marshal(webhookDto.NewInvoiceWebhookPayload(inv, event))
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to marshal invoice webhook payload").
			Mark(ierr.ErrSystem)
	}

	return s.WebhookPublisher.PublishWebhook(ctx, &types.WebhookEvent{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_WEBHOOK_EVENT),
		EventName:  event,
		TenantID:   lo.CoalesceOrEmpty(types.GetTenantID(ctx), inv.TenantID),
		WebhookURL: url,
		Timestamp:  time.Now().UTC(),
		Payload:    json.RawMessage(payload),
	})
}
