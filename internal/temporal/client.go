package temporal

import (
	"context"
	"crypto/tls"

	"github.com/flexprice/invoicer/internal/config"
	ierr "github.com/flexprice/invoicer/internal/errors"
	"github.com/flexprice/invoicer/internal/logger"
	"go.temporal.io/sdk/client"
)

// APIKeyProvider provides headers for API key authentication
type APIKeyProvider struct {
	APIKey    string
	Namespace string
}

// GetHeaders implements client.HeadersProvider
func (a *APIKeyProvider) GetHeaders(_ context.Context) (map[string]string, error) {
	return map[string]string{
		"Authorization":      "Bearer " + a.APIKey,
		"temporal-namespace": a.Namespace,
	}, nil
}

// TemporalClient wraps the Temporal SDK client for application use.
type TemporalClient struct {
	Client client.Client
}

// NewTemporalClient dials the configured Temporal frontend. The API key
// header is only sent when a key is configured.
func NewTemporalClient(cfg *config.Configuration, log *logger.Logger) (*TemporalClient, error) {
	clientOptions := client.Options{
		HostPort:  cfg.Temporal.Address,
		Namespace: cfg.Temporal.Namespace,
		Logger:    log.GetTemporalLogger(),
	}

	if cfg.Temporal.APIKey != "" {
		clientOptions.HeadersProvider = &APIKeyProvider{
			APIKey:    cfg.Temporal.APIKey,
			Namespace: cfg.Temporal.Namespace,
		}
	}

	if cfg.Temporal.TLS {
		clientOptions.ConnectionOptions.TLS = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	c, err := client.Dial(clientOptions)
	if err != nil {
		log.Errorw("failed to create temporal client",
			"address", cfg.Temporal.Address,
			"error", err)
		return nil, ierr.WithError(err).
			WithHintf("Failed to connect to temporal at %s", cfg.Temporal.Address).
			Mark(ierr.ErrSystem)
	}

	log.Infow("temporal client created",
		"address", cfg.Temporal.Address,
		"namespace", cfg.Temporal.Namespace)
	return &TemporalClient{Client: c}, nil
}

// Close releases the client connection
func (c *TemporalClient) Close() {
	if c != nil && c.Client != nil {
		c.Client.Close()
	}
}
