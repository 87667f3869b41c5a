package customer

import (
	"github.com/flexprice/invoicer/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Organization is the tenant issuing invoices
type Organization struct {
	ID         string           `db:"id" json:"id"`
	Name       string           `db:"name" json:"name"`
	Timezone   *string          `db:"timezone" json:"timezone,omitempty"`
	VatRate    *decimal.Decimal `db:"vat_rate" json:"vat_rate,omitempty"`
	WebhookURL *string          `db:"webhook_url" json:"webhook_url,omitempty"`
	types.BaseModel
}

// Customer is the billed party of a subscription
type Customer struct {
	ID             string           `db:"id" json:"id"`
	OrganizationID string           `db:"organization_id" json:"organization_id"`
	ExternalID     string           `db:"external_id" json:"external_id"`
	Name           string           `db:"name" json:"name"`
	Timezone       *string          `db:"timezone" json:"timezone,omitempty"`
	VatRate        *decimal.Decimal `db:"vat_rate" json:"vat_rate,omitempty"`
	// PaymentProvider names the provider collecting this customer's invoices
	PaymentProvider *string `db:"payment_provider" json:"payment_provider,omitempty"`

	Organization *Organization `db:"-" json:"organization,omitempty"`
	types.BaseModel
}

// ApplicableTimezone returns the customer timezone, falling back to the
// organization's and then to UTC.
func (c *Customer) ApplicableTimezone() string {
	if tz := lo.FromPtr(c.Timezone); tz != "" {
		return tz
	}
	if c.Organization != nil {
		if tz := lo.FromPtr(c.Organization.Timezone); tz != "" {
			return tz
		}
	}
	return "UTC"
}

// ApplicableVatRate returns the VAT percentage charged to the customer
func (c *Customer) ApplicableVatRate() decimal.Decimal {
	if c.VatRate != nil {
		return *c.VatRate
	}
	if c.Organization != nil && c.Organization.VatRate != nil {
		return *c.Organization.VatRate
	}
	return decimal.Zero
}

// HasPaymentProvider reports whether invoices should be pushed for collection
func (c *Customer) HasPaymentProvider() bool {
	return lo.FromPtr(c.PaymentProvider) != ""
}

// WebhookURL returns the organization's webhook endpoint, if any
func (c *Customer) WebhookURL() string {
	if c.Organization == nil {
		return ""
	}
	return lo.FromPtr(c.Organization.WebhookURL)
}
