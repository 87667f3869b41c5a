package service

import (
	"context"
)

const (
	actionWebhook   = "webhook"
	actionPayment   = "payment"
	actionAnalytics = "analytics"
)

// deferredAction is a side effect that must only happen once the invoice
// transaction has committed
type deferredAction struct {
	name string
	run  func(ctx context.Context) error
}

type deferredActions []deferredAction

func (d *deferredActions) add(name string, run func(ctx context.Context) error) {
	*d = append(*d, deferredAction{name: name, run: run})
}

// runDeferred executes actions in order. A failing action is logged and
// counted and never fails the assembly.
func (s *invoiceAssembler) runDeferred(ctx context.Context, invoiceID string, actions deferredActions) {
	for _, action := range actions {
		if err := action.run(ctx); err != nil {
			s.Logger.Errorw("post commit action failed",
				"invoice_id", invoiceID,
				"action", action.name,
				"error", err)
			s.Metrics.IncDeferredFailure(action.name)
			s.Sentry.CaptureException(err, map[string]string{
				"invoice_id": invoiceID,
				"action":     action.name,
			})
		}
	}
}
