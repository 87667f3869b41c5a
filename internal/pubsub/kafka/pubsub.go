package kafka

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/flexprice/invoicer/internal/config"
	"github.com/flexprice/invoicer/internal/kafka"
	"github.com/flexprice/invoicer/internal/logger"
	"github.com/flexprice/invoicer/internal/pubsub"
)

// Publisher hands messages to a Kafka producer. The worker only produces;
// the webhook, payment and analytics topics are consumed by other services.
type Publisher struct {
	producer *kafka.Producer
	logger   *logger.Logger
}

func NewPublisher(cfg *config.Configuration, logger *logger.Logger) (pubsub.Publisher, error) {
	producer, err := kafka.NewProducer(cfg)
	if err != nil {
		return nil, err
	}

	return &Publisher{
		producer: producer,
		logger:   logger,
	}, nil
}

func (p *Publisher) Publish(ctx context.Context, topic string, msg *message.Message) error {
	return p.producer.Publish(topic, msg)
}

func (p *Publisher) Close() error {
	if err := p.producer.Close(); err != nil {
		p.logger.Errorw("failed to close kafka producer", "error", err)
		return err
	}
	return nil
}
