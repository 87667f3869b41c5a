package period

import (
	"time"

	"github.com/flexprice/invoicer/internal/cache"
	"github.com/flexprice/invoicer/internal/domain/plan"
	"github.com/flexprice/invoicer/internal/domain/subscription"
	ierr "github.com/flexprice/invoicer/internal/errors"
	"github.com/flexprice/invoicer/internal/types"
	"github.com/shopspring/decimal"
)

// Boundaries are the instants a generated fee covers. All values are UTC.
type Boundaries struct {
	FromDatetime        time.Time `json:"from_datetime"`
	ToDatetime          time.Time `json:"to_datetime"`
	ChargesFromDatetime time.Time `json:"charges_from_datetime"`
	ChargesToDatetime   time.Time `json:"charges_to_datetime"`
	Timestamp           time.Time `json:"timestamp"`
}

// Resolver computes the billing period of a subscription for a billing
// instant. Dates are computed in the customer's timezone and every instant
// it returns is in UTC.
type Resolver struct {
	subscription *subscription.Subscription
	plan         *plan.Plan
	location     *time.Location
	billingAt    time.Time
	currentUsage bool

	cadence       cadence
	chargeCadence cadence
	monthly       cadence

	// billingDate is the local calendar date of billingAt
	billingDate time.Time
	// closedDate is the last day covered when billing a closed period
	closedDate time.Time
}

// NewResolver builds a resolver for sub at billingAt. The subscription must
// have its Plan loaded, and its Customer when periods should follow the
// customer's timezone. With currentUsage the period still in progress is
// resolved instead of the one that just closed.
func NewResolver(sub *subscription.Subscription, billingAt time.Time, currentUsage bool) (*Resolver, error) {
	if sub == nil || sub.Plan == nil {
		return nil, ierr.NewError("subscription plan not loaded").
			WithHint("A subscription and its plan are required to compute billing periods").
			Mark(ierr.ErrConfiguration)
	}

	tz := "UTC"
	if sub.Customer != nil {
		tz = sub.Customer.ApplicableTimezone()
	}
	loc, err := cache.LoadLocation(tz)
	if err != nil {
		return nil, err
	}

	calendar := sub.IsCalendar()
	anchor := types.DateOf(sub.SubscriptionDate)

	base, err := newCadence(sub.Plan.Interval, calendar, anchor)
	if err != nil {
		return nil, ierr.WithError(err).
			WithReportableDetails(map[string]any{
				"subscription_id": sub.ID,
				"plan_id":         sub.Plan.ID,
			}).
			Mark(ierr.ErrConfiguration)
	}
	monthly, err := newCadence(types.BillingIntervalMonthly, calendar, anchor)
	if err != nil {
		return nil, err
	}

	charges := base
	if sub.Plan.IsYearly() && sub.Plan.BillChargesMonthly {
		charges = monthly
	}

	billingDate := types.DateIn(billingAt, loc)
	closedDate := billingDate.AddDate(0, 0, -1)
	if currentUsage {
		closedDate = billingDate
	}

	return &Resolver{
		subscription:  sub,
		plan:          sub.Plan,
		location:      loc,
		billingAt:     billingAt,
		currentUsage:  currentUsage,
		cadence:       base,
		chargeCadence: charges,
		monthly:       monthly,
		billingDate:   billingDate,
		closedDate:    closedDate,
	}, nil
}

// Boundaries returns every boundary of the resolved period at once
func (r *Resolver) Boundaries() Boundaries {
	return Boundaries{
		FromDatetime:        r.FromDatetime(),
		ToDatetime:          r.ToDatetime(),
		ChargesFromDatetime: r.ChargesFromDatetime(),
		ChargesToDatetime:   r.ChargesToDatetime(),
		Timestamp:           r.billingAt.UTC(),
	}
}

// FromDatetime is the start of the subscription fee period, never earlier
// than the subscription start.
func (r *Resolver) FromDatetime() time.Time {
	return r.clipStart(types.StartOfDayIn(r.fromDate(), r.location))
}

// ToDatetime is the end of the subscription fee period, never later than the
// termination instant and never before FromDatetime.
func (r *Resolver) ToDatetime() time.Time {
	to := r.clipEnd(types.EndOfDayIn(r.toDate(), r.location))
	if from := r.FromDatetime(); to.Before(from) {
		return from
	}
	return to
}

// ChargesFromDatetime is the start of the usage period
func (r *Resolver) ChargesFromDatetime() time.Time {
	return r.clipStart(types.StartOfDayIn(r.chargesFromDate(), r.location))
}

// ChargesToDatetime is the end of the usage period
func (r *Resolver) ChargesToDatetime() time.Time {
	to := r.clipEnd(types.EndOfDayIn(r.chargesToDate(), r.location))
	if from := r.ChargesFromDatetime(); to.Before(from) {
		return from
	}
	return to
}

// NextEndOfPeriod returns the last instant of the period containing t
func (r *Resolver) NextEndOfPeriod(t time.Time) time.Time {
	start := r.cadence.periodStart(types.DateIn(t, r.location))
	return types.EndOfDayIn(r.cadence.periodEnd(start), r.location)
}

// PreviousBeginningOfPeriod returns the first instant of the period being
// billed, or of the period containing the billing instant when currentPeriod
// is set.
func (r *Resolver) PreviousBeginningOfPeriod(currentPeriod bool) time.Time {
	date := r.closedDate
	if currentPeriod {
		date = r.billingDate
	}
	return types.StartOfDayIn(r.cadence.periodStart(date), r.location)
}

// SinglePriceDay returns the plan amount for one day of the period containing
// from. A nil from uses the resolved fee period.
func (r *Resolver) SinglePriceDay(from *time.Time) decimal.Decimal {
	date := r.fromDate()
	if from != nil {
		date = types.DateIn(*from, r.location)
	}
	return decimal.NewFromInt(r.plan.AmountCents).
		Div(decimal.NewFromInt(int64(r.cadence.durationOf(date))))
}

// DaysCovered returns the number of local calendar days from from through to
// and the day count of the full period containing from.
func (r *Resolver) DaysCovered(from, to time.Time) (int, int) {
	fromDate := types.DateIn(from, r.location)
	covered := types.DaysBetween(fromDate, types.DateIn(to, r.location)) + 1
	return covered, r.cadence.durationOf(fromDate)
}

// ChargesDurationInDays returns the day count of the full usage period
func (r *Resolver) ChargesDurationInDays() int {
	return r.chargeCadence.durationOf(r.chargesFromDate())
}

// FirstMonthInYearlyPeriod reports whether the billing instant falls in the
// first month of a yearly period.
func (r *Resolver) FirstMonthInYearlyPeriod() bool {
	if !r.plan.IsYearly() {
		return false
	}
	return r.cadence.periodStart(r.billingDate).Equal(r.monthly.periodStart(r.billingDate))
}

func (r *Resolver) fromDate() time.Time {
	if r.plan.PayInAdvance || r.terminatedPayInArrear() {
		return r.cadence.periodStart(r.billingDate)
	}
	return r.cadence.periodStart(r.closedDate)
}

func (r *Resolver) toDate() time.Time {
	return r.cadence.periodEnd(r.fromDate())
}

func (r *Resolver) chargesFromDate() time.Time {
	if r.terminatedPayInArrear() || (r.plan.PayInAdvance && r.terminatedWithoutSuccessor()) {
		return r.chargeCadence.periodStart(r.billingDate)
	}
	return r.chargeCadence.periodStart(r.closedDate)
}

func (r *Resolver) chargesToDate() time.Time {
	return r.chargeCadence.periodEnd(r.chargesFromDate())
}

// terminatedPayInArrear is a subscription terminated mid period whose plan
// bills in arrear. A downgrade runs until the period ends and is billed like
// any closed period.
func (r *Resolver) terminatedPayInArrear() bool {
	return r.subscription.IsTerminated() &&
		r.plan.IsPayInArrear() &&
		!r.subscription.IsDowngraded()
}

func (r *Resolver) terminatedWithoutSuccessor() bool {
	return r.subscription.IsTerminated() && !r.subscription.HasSuccessor()
}

func (r *Resolver) clipStart(t time.Time) time.Time {
	if started := r.subscription.StartedAt.UTC(); t.Before(started) {
		return started
	}
	return t
}

func (r *Resolver) clipEnd(t time.Time) time.Time {
	if !r.subscription.IsTerminated() || r.subscription.TerminatedAt == nil {
		return t
	}
	if terminated := r.subscription.TerminatedAt.UTC(); t.After(terminated) {
		return terminated
	}
	return t
}
