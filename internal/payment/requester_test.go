package payment

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/flexprice/invoicer/internal/config"
	"github.com/flexprice/invoicer/internal/domain/invoice"
	"github.com/flexprice/invoicer/internal/logger"
	"github.com/flexprice/invoicer/internal/pubsub/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePayment(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log := logger.NewNoopLogger()
	cfg := config.GetDefaultConfig()
	ps := memory.NewPubSub(log)
	defer ps.Close()

	inv := &invoice.Invoice{
		ID:               "inv_1",
		CustomerID:       "cust_1",
		OrganizationID:   "org_1",
		AmountCents:      1000,
		VatAmountCents:   200,
		TotalAmountCents: 1200,
		AmountCurrency:   "EUR",
	}
	require.NoError(t, NewRequester(ps, cfg, log).CreatePayment(ctx, inv))

	messages, err := ps.Subscribe(ctx, cfg.Payment.Topic)
	require.NoError(t, err)

	select {
	case msg := <-messages:
		msg.Ack()
		assert.Equal(t, "inv_1", msg.Metadata.Get("invoice_id"))

		var req Request
		require.NoError(t, json.Unmarshal(msg.Payload, &req))
		assert.Equal(t, int64(1200), req.AmountCents)
		assert.Equal(t, "EUR", req.Currency)
		assert.Equal(t, "cust_1", req.CustomerID)
		assert.Equal(t, msg.UUID, req.ID)
	case <-time.After(time.Second):
		t.Fatal("no payment request published")
	}
}
