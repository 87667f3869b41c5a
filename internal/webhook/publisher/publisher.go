package publisher

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/flexprice/invoicer/internal/config"
	ierr "github.com/flexprice/invoicer/internal/errors"
	"github.com/flexprice/invoicer/internal/interfaces"
	"github.com/flexprice/invoicer/internal/logger"
	"github.com/flexprice/invoicer/internal/pubsub"
	"github.com/flexprice/invoicer/internal/types"
	"github.com/samber/lo"
)

// WebhookPublisher hands webhook events to the pub/sub topic read by the
// delivery service
type WebhookPublisher interface {
	interfaces.WebhookPublisher
	Close() error
}

type webhookPublisher struct {
	pubSub pubsub.Publisher
	config *config.Webhook
	logger *logger.Logger
}

func NewPublisher(
	pubSub pubsub.Publisher,
	cfg *config.Configuration,
	logger *logger.Logger,
) WebhookPublisher {
	return &webhookPublisher{
		pubSub: pubSub,
		config: &cfg.Webhook,
		logger: logger,
	}
}

func (p *webhookPublisher) PublishWebhook(ctx context.Context, event *types.WebhookEvent) error {
	if !p.config.Enabled || lo.Contains(p.config.ExcludedEvents, event.EventName) {
		p.logger.Debugw("webhook event not published",
			"event_id", event.ID,
			"event_name", event.EventName,
			"enabled", p.config.Enabled)
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to marshal webhook event").
			Mark(ierr.ErrSystem)
	}

	messageID := lo.CoalesceOrEmpty(event.ID, watermill.NewUUID())
	msg := message.NewMessage(messageID, payload)
	msg.Metadata.Set("tenant_id", event.TenantID)
	msg.Metadata.Set("event_name", event.EventName)

	p.logger.Debugw("publishing webhook event",
		"event_id", messageID,
		"event_name", event.EventName,
		"tenant_id", event.TenantID,
		"topic", p.config.Topic)

	if err := p.pubSub.Publish(ctx, p.config.Topic, msg); err != nil {
		return ierr.WithError(err).
			WithHintf("Failed to publish webhook event %s", event.EventName).
			WithReportableDetails(map[string]any{
				"event_id":   messageID,
				"event_name": event.EventName,
			}).
			Mark(ierr.ErrSystem)
	}

	p.logger.Infow("published webhook event",
		"event_id", messageID,
		"event_name", event.EventName,
		"tenant_id", event.TenantID)
	return nil
}

func (p *webhookPublisher) Close() error {
	return p.pubSub.Close()
}
