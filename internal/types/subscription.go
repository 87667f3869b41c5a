package types

import (
	ierr "github.com/flexprice/invoicer/internal/errors"
	"github.com/samber/lo"
)

// SubscriptionStatus is the lifecycle status of a subscription
type SubscriptionStatus string

const (
	SubscriptionStatusPending    SubscriptionStatus = "pending"
	SubscriptionStatusActive     SubscriptionStatus = "active"
	SubscriptionStatusTerminated SubscriptionStatus = "terminated"
	SubscriptionStatusCanceled   SubscriptionStatus = "canceled"
)

func (s SubscriptionStatus) String() string {
	return string(s)
}

func (s SubscriptionStatus) Validate() error {
	allowed := []SubscriptionStatus{
		SubscriptionStatusPending,
		SubscriptionStatusActive,
		SubscriptionStatusTerminated,
		SubscriptionStatusCanceled,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid subscription status").
			WithHint("Invalid subscription status").
			WithReportableDetails(map[string]any{
				"status":         s,
				"allowed_status": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// BillingTime decides how period boundaries are anchored
type BillingTime string

const (
	// BillingTimeCalendar aligns periods to calendar weeks, months and years
	BillingTimeCalendar BillingTime = "calendar"
	// BillingTimeAnniversary aligns periods to the subscription date
	BillingTimeAnniversary BillingTime = "anniversary"
)

func (b BillingTime) String() string {
	return string(b)
}

func (b BillingTime) Validate() error {
	allowed := []BillingTime{
		BillingTimeCalendar,
		BillingTimeAnniversary,
	}
	if !lo.Contains(allowed, b) {
		return ierr.NewError("invalid billing time").
			WithHint("Billing time must be calendar or anniversary").
			WithReportableDetails(map[string]any{
				"billing_time":   b,
				"allowed_values": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
