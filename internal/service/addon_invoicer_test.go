package service

import (
	"context"
	"time"

	"github.com/flexprice/invoicer/internal/domain/addon"
	"github.com/flexprice/invoicer/internal/domain/customer"
	"github.com/flexprice/invoicer/internal/domain/invoice"
	ierr "github.com/flexprice/invoicer/internal/errors"
	"github.com/flexprice/invoicer/internal/testutil"
	"github.com/flexprice/invoicer/internal/types"
	"github.com/samber/lo"
)

func (s *InvoiceAssemblerSuite) createAppliedAddOn(id, customerID string, amount int64) *addon.AppliedAddOn {
	ctx := s.GetContext()
	applied := &addon.AppliedAddOn{
		ID:             id,
		AddOnID:        "addon_setup",
		AddOnCode:      "setup",
		Name:           "Setup fee",
		CustomerID:     customerID,
		AmountCents:    amount,
		AmountCurrency: "EUR",
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().AddOnRepo.Create(ctx, applied))
	return applied
}

func (s *InvoiceAssemblerSuite) TestInvoiceAddOn() {
	ctx := s.GetContext()
	applied := s.createAppliedAddOn("aaddon_1", s.testData.customer.ID, 200)

	inv, err := NewAddOnInvoicer(s.params).Invoice(ctx, applied.ID, s.testData.now)
	s.Require().NoError(err)

	s.Equal(types.InvoiceTypeAddOn, inv.InvoiceType)
	s.Equal(types.InvoiceStatusPending, inv.InvoiceStatus)
	s.Equal(s.testData.customer.ID, inv.CustomerID)
	s.Equal(types.Date(2022, time.March, 1), inv.IssuingDate)
	s.Equal(int64(200), inv.AmountCents)
	s.Equal(int64(40), inv.VatAmountCents)
	s.Equal(int64(240), inv.TotalAmountCents)
	s.Equal("EUR", inv.AmountCurrency)

	s.Require().Len(inv.Fees, 1)
	fee := inv.Fees[0]
	s.Equal(types.FeeTypeAddOn, fee.FeeType)
	s.Equal(applied.ID, lo.FromPtr(fee.AppliedAddOnID))
	s.Empty(fee.SubscriptionID)
	s.Equal(int64(40), fee.VatAmountCents)

	stored, err := s.GetStores().InvoiceRepo.Get(ctx, inv.ID)
	s.Require().NoError(err)
	s.Equal(int64(240), stored.TotalAmountCents)

	s.Equal([]string{
		testutil.JournalCommit,
		"webhook:" + types.WebhookEventInvoiceAddOnAdded,
		"payment:" + inv.ID,
		"analytics:" + inv.ID,
	}, s.GetJournal().Entries())
	s.Require().Len(s.webhooks.Events, 1)
	s.Contains(string(s.webhooks.Events[0].Payload), `"invoice_type":"add_on"`)
}

func (s *InvoiceAssemblerSuite) TestInvoiceAddOnWithoutWebhookURL() {
	ctx := s.GetContext()
	org := customer.Organization{ID: "org_quiet", Name: "Quiet", BaseModel: types.GetDefaultBaseModel(ctx)}
	s.NoError(s.GetStores().CustomerRepo.CreateOrganization(ctx, &org))
	cust := customer.Customer{ID: "cust_quiet", OrganizationID: org.ID, BaseModel: types.GetDefaultBaseModel(ctx)}
	s.NoError(s.GetStores().CustomerRepo.Create(ctx, &cust))

	applied := s.createAppliedAddOn("aaddon_quiet", cust.ID, 200)

	inv, err := NewAddOnInvoicer(s.params).Invoice(ctx, applied.ID, s.testData.now)
	s.Require().NoError(err)
	s.Equal(int64(200), inv.TotalAmountCents)
	s.Equal(0, s.webhooks.Calls())
	s.Equal(0, s.payments.Calls())
	s.Equal(1, s.analytics.Calls())
}

func (s *InvoiceAssemblerSuite) TestInvoiceAddOnIssuingDateFollowsCustomerTimezone() {
	ctx := s.GetContext()
	org := *s.testData.org
	org.ID = "org_la"
	org.Timezone = lo.ToPtr("America/Los_Angeles")
	s.NoError(s.GetStores().CustomerRepo.CreateOrganization(ctx, &org))

	cust := *s.testData.customer
	cust.ID = "cust_la"
	cust.OrganizationID = org.ID
	s.NoError(s.GetStores().CustomerRepo.Create(ctx, &cust))

	applied := s.createAppliedAddOn("aaddon_la", cust.ID, 200)

	inv, err := NewAddOnInvoicer(s.params).Invoice(ctx, applied.ID, time.Date(2022, 11, 25, 1, 0, 0, 0, time.UTC))
	s.Require().NoError(err)
	s.Equal(types.Date(2022, time.November, 24), inv.IssuingDate)
}

func (s *InvoiceAssemblerSuite) TestInvoiceAddOnOnlyOnce() {
	ctx := s.GetContext()
	applied := s.createAppliedAddOn("aaddon_1", s.testData.customer.ID, 200)
	invoicer := NewAddOnInvoicer(s.params)

	first, err := invoicer.Invoice(ctx, applied.ID, s.testData.now)
	s.Require().NoError(err)
	s.GetJournal().Clear()

	_, err = invoicer.Invoice(ctx, applied.ID, s.testData.now.Add(time.Hour))
	s.Require().Error(err)
	s.True(ierr.IsAlreadyExists(err))
	s.False(ierr.IsRetryable(err))
	s.Equal([]string{testutil.JournalRollback}, s.GetJournal().Entries())

	addOnInvoices := s.GetStores().InvoiceRepo.Count(ctx, func(_ context.Context, inv invoice.Invoice) bool {
		return inv.InvoiceType == types.InvoiceTypeAddOn
	})
	s.Equal(1, addOnInvoices)

	fees, err := s.GetStores().FeeRepo.ListByInvoice(ctx, first.ID)
	s.Require().NoError(err)
	s.Len(fees, 1)
}

func (s *InvoiceAssemblerSuite) TestInvoiceMissingAddOn() {
	_, err := NewAddOnInvoicer(s.params).Invoice(s.GetContext(), "aaddon_missing", s.testData.now)
	s.Require().Error(err)
	s.True(ierr.IsNotFound(err))
	s.Equal(0, s.analytics.Calls())
}
