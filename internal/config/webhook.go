package config

import "github.com/flexprice/invoicer/internal/types"

// Webhook represents the configuration for the webhook system
type Webhook struct {
	Enabled bool             `mapstructure:"enabled"`
	Topic   string           `mapstructure:"topic" validate:"required_if=Enabled true"`
	PubSub  types.PubSubType `mapstructure:"pubsub" validate:"omitempty,oneof=memory kafka"`
	// ExcludedEvents are event names never published for any organization
	ExcludedEvents []string `mapstructure:"excluded_events"`
}

// AnalyticsConfig configures the analytics event stream
type AnalyticsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Topic   string `mapstructure:"topic" validate:"required_if=Enabled true"`
}

// PaymentConfig configures the topic payment requests are published on
type PaymentConfig struct {
	Topic string `mapstructure:"topic" validate:"required"`
}
