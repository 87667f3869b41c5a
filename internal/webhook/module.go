package webhook

import (
	"context"

	"github.com/flexprice/invoicer/internal/config"
	ierr "github.com/flexprice/invoicer/internal/errors"
	"github.com/flexprice/invoicer/internal/interfaces"
	"github.com/flexprice/invoicer/internal/logger"
	"github.com/flexprice/invoicer/internal/pubsub"
	"github.com/flexprice/invoicer/internal/pubsub/kafka"
	"github.com/flexprice/invoicer/internal/pubsub/memory"
	"github.com/flexprice/invoicer/internal/types"
	"github.com/flexprice/invoicer/internal/webhook/publisher"
	"go.uber.org/fx"
)

// Module provides the pub/sub transport and the webhook publisher
var Module = fx.Options(
	fx.Provide(
		providePubSub,
		publisher.NewPublisher,
		func(p publisher.WebhookPublisher) interfaces.WebhookPublisher { return p },
	),
	fx.Invoke(registerHooks),
)

func providePubSub(cfg *config.Configuration, logger *logger.Logger) (pubsub.Publisher, error) {
	switch cfg.Webhook.PubSub {
	case types.PubSubTypeMemory, "":
		return memory.NewPubSub(logger), nil
	case types.PubSubTypeKafka:
		return kafka.NewPublisher(cfg, logger)
	}
	return nil, ierr.NewError("unsupported pubsub type").
		WithHintf("Pub/sub backend %q is not supported", cfg.Webhook.PubSub).
		Mark(ierr.ErrConfiguration)
}

func registerHooks(lc fx.Lifecycle, p publisher.WebhookPublisher, logger *logger.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info("closing webhook publisher")
			return p.Close()
		},
	})
}
