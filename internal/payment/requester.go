package payment

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
)

// Request asks the payment integration to collect an invoice
type Request struct {
	ID             string    `json:"id"`
	InvoiceID      string    `json:"invoice_id"`
	CustomerID     string    `json:"customer_id"`
	OrganizationID string    `json:"organization_id"`
	AmountCents    int64     `json:"amount_cents"`
	Currency       string    `json:"currency"`
	RequestedAt    time.Time `json:"requested_at"`
}

type requester struct {
	pubSub pubsub.Publisher
	topic  string
	logger *logger.Logger
}

// NewRequester publishes a payment request per finalized invoice. The
// integration consuming the topic owns the provider protocol.
func NewRequester(pubSub pubsub.Publisher, cfg *config.Configuration, logger *logger.Logger) interfaces.PaymentCreator {
	return &requester{
		pubSub: pubSub,
		topic:  cfg.Payment.Topic,
		logger: logger,
	}
}

func (r *requester) CreatePayment(ctx context.Context, inv *invoice.Invoice) error {
	req := &Request{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT_REQUEST),
		InvoiceID:      inv.ID,
		CustomerID:     inv.CustomerID,
		OrganizationID: inv.OrganizationID,
		AmountCents:    inv.TotalAmountCents,
		Currency:       inv.AmountCurrency,
		RequestedAt:    time.Now().UTC(),
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to marshal payment request").
			Mark(ierr.ErrSystem)
	}

	// the invoice id keys the message so consumers can drop redeliveries
	msg := message.NewMessage(req.ID, payload)
	msg.Metadata.Set("invoice_id", inv.ID)

	if err := r.pubSub.Publish(ctx, r.topic, msg); err != nil {
		return ierr.WithError(err).
			WithHintf("Failed to request payment for invoice %s", inv.ID).
			Mark(ierr.ErrSystem)
	}

	r.logger.Infow("requested invoice payment",
		"invoice_id", inv.ID,
		"amount_cents", inv.TotalAmountCents,
		"currency", inv.AmountCurrency)
	return nil
}
