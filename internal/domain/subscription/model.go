package subscription

import (
	"time"

	"github.com/flexprice/invoicer/internal/domain/customer"
	"github.com/flexprice/invoicer/internal/domain/plan"
	ierr "github.com/flexprice/invoicer/internal/errors"
	"github.com/flexprice/invoicer/internal/types"
)

// Subscription binds a customer to a plan
type Subscription struct {
	ID                 string                   `db:"id" json:"id"`
	ExternalID         string                   `db:"external_id" json:"external_id"`
	CustomerID         string                   `db:"customer_id" json:"customer_id"`
	PlanID             string                   `db:"plan_id" json:"plan_id"`
	SubscriptionStatus types.SubscriptionStatus `db:"subscription_status" json:"subscription_status"`
	BillingTime        types.BillingTime        `db:"billing_time" json:"billing_time"`

	// SubscriptionDate anchors anniversary billing. Only its calendar date matters.
	SubscriptionDate time.Time  `db:"subscription_date" json:"subscription_date"`
	StartedAt        time.Time  `db:"started_at" json:"started_at"`
	TerminatedAt     *time.Time `db:"terminated_at" json:"terminated_at,omitempty"`

	PreviousSubscriptionID *string `db:"previous_subscription_id" json:"previous_subscription_id,omitempty"`
	NextSubscriptionID     *string `db:"next_subscription_id" json:"next_subscription_id,omitempty"`

	// Associations loaded by the caller; repositories never populate them
	Plan             *plan.Plan         `db:"-" json:"plan,omitempty"`
	Customer         *customer.Customer `db:"-" json:"customer,omitempty"`
	NextSubscription *Subscription      `db:"-" json:"next_subscription,omitempty"`

	types.BaseModel
}

func (s *Subscription) IsActive() bool {
	return s.SubscriptionStatus == types.SubscriptionStatusActive
}

func (s *Subscription) IsTerminated() bool {
	return s.SubscriptionStatus == types.SubscriptionStatusTerminated
}

func (s *Subscription) IsCalendar() bool {
	return s.BillingTime == types.BillingTimeCalendar
}

// HasPredecessor reports whether this subscription replaced another one
func (s *Subscription) HasPredecessor() bool {
	return s.PreviousSubscriptionID != nil && *s.PreviousSubscriptionID != ""
}

// HasSuccessor reports whether another subscription replaces this one
func (s *Subscription) HasSuccessor() bool {
	return s.NextSubscriptionID != nil && *s.NextSubscriptionID != ""
}

// StartedInPast reports whether the subscription was backdated, i.e. its
// start date precedes the date it was recorded.
func (s *Subscription) StartedInPast() bool {
	return types.DateOf(s.StartedAt.UTC()).Before(types.DateOf(s.CreatedAt.UTC()))
}

// IsUpgraded reports whether the successor plan costs at least as much per
// year as the current one. It requires Plan and NextSubscription.Plan.
func (s *Subscription) IsUpgraded() bool {
	next := s.NextSubscription
	if next == nil || next.Plan == nil || s.Plan == nil {
		return false
	}
	return s.Plan.YearlyAmountCents() <= next.Plan.YearlyAmountCents()
}

// IsDowngraded is the complement of IsUpgraded for subscriptions that have a
// successor.
func (s *Subscription) IsDowngraded() bool {
	next := s.NextSubscription
	if next == nil || next.Plan == nil || s.Plan == nil {
		return false
	}
	return s.Plan.YearlyAmountCents() > next.Plan.YearlyAmountCents()
}

func (s *Subscription) Validate() error {
	if err := s.SubscriptionStatus.Validate(); err != nil {
		return err
	}
	if err := s.BillingTime.Validate(); err != nil {
		return err
	}
	if s.IsTerminated() && s.TerminatedAt == nil {
		return ierr.NewRecordInvalid("subscription", s.ID, "terminated_at", "must be set on a terminated subscription")
	}
	if !s.IsTerminated() && s.TerminatedAt != nil {
		return ierr.NewRecordInvalid("subscription", s.ID, "terminated_at", "must be empty unless terminated")
	}
	if s.TerminatedAt != nil && s.TerminatedAt.Before(s.StartedAt) {
		return ierr.NewRecordInvalid("subscription", s.ID, "terminated_at", "must not precede started_at")
	}
	return nil
}
