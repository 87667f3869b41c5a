package types

import (
	"encoding/json"
	"time"
)

// WebhookEvent represents a webhook event to be delivered to the
// organization endpoint in WebhookURL
type WebhookEvent struct {
	ID         string          `json:"id"`
	EventName  string          `json:"event_name"`
	TenantID   string          `json:"tenant_id"`
	WebhookURL string          `json:"webhook_url"`
	Timestamp  time.Time       `json:"timestamp"`
	Payload    json.RawMessage `json:"payload"`
}

// invoice event names
const (
	WebhookEventInvoiceCreated    = "invoice.created"
	WebhookEventInvoiceAddOnAdded = "invoice.add_on_added"
)

// analytics event names
const (
	AnalyticsEventInvoiceCreated = "invoice_created"
)
