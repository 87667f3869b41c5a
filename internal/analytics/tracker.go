package analytics

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/flexprice/invoicer/internal/config"
	"github.com/flexprice/invoicer/internal/domain/invoice"
	ierr "github.com/flexprice/invoicer/internal/errors"
	"github.com/flexprice/invoicer/internal/interfaces"
	"github.com/flexprice/invoicer/internal/logger"
	"github.com/flexprice/invoicer/internal/pubsub"
	"github.com/flexprice/invoicer/internal/types"
	"github.com/samber/lo"
)

// Event is one business event on the analytics stream
type Event struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	TenantID   string         `json:"tenant_id"`
	Timestamp  time.Time      `json:"timestamp"`
	Properties map[string]any `json:"properties"`
}

type tracker struct {
	pubSub pubsub.Publisher
	config *config.AnalyticsConfig
	logger *logger.Logger
}

// NewTracker publishes analytics events on the configured topic. A disabled
// tracker accepts events and drops them.
func NewTracker(pubSub pubsub.Publisher, cfg *config.Configuration, logger *logger.Logger) interfaces.AnalyticsTracker {
	return &tracker{
		pubSub: pubSub,
		config: &cfg.Analytics,
		logger: logger,
	}
}

func (t *tracker) TrackInvoiceCreated(ctx context.Context, inv *invoice.Invoice) error {
	if !t.config.Enabled {
		return nil
	}

	event := &Event{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_EVENT),
		Name:      types.AnalyticsEventInvoiceCreated,
		TenantID:  lo.CoalesceOrEmpty(types.GetTenantID(ctx), inv.TenantID),
		Timestamp: time.Now().UTC(),
		Properties: map[string]any{
			"invoice_id":          inv.ID,
			"organization_id":     inv.OrganizationID,
			"customer_id":         inv.CustomerID,
			"invoice_type":        inv.InvoiceType,
			"status":              inv.InvoiceStatus,
			"amount_cents":        inv.AmountCents,
			"vat_amount_cents":    inv.VatAmountCents,
			"credit_amount_cents": inv.CreditAmountCents,
			"total_amount_cents":  inv.TotalAmountCents,
			"currency":            inv.AmountCurrency,
			"issuing_date":        inv.IssuingDate.Format(time.DateOnly),
		},
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to marshal analytics event").
			Mark(ierr.ErrSystem)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("tenant_id", event.TenantID)
	msg.Metadata.Set("event_name", event.Name)

	if err := t.pubSub.Publish(ctx, t.config.Topic, msg); err != nil {
		return ierr.WithError(err).
			WithHintf("Failed to track %s", event.Name).
			Mark(ierr.ErrSystem)
	}

	t.logger.Debugw("tracked analytics event",
		"event_id", event.ID,
		"event_name", event.Name,
		"invoice_id", inv.ID)
	return nil
}
