package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ierr "github.com/flexprice/invoicer/internal/errors"
	"github.com/flexprice/invoicer/internal/logger"
	"github.com/flexprice/invoicer/internal/metrics"
	"github.com/flexprice/invoicer/internal/temporal"
	"github.com/flexprice/invoicer/internal/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

type fakeStarter struct {
	tenantID  string
	invoiceID string
	timestamp time.Time
	batchID   string
	batch     []temporal.AssembleInvoiceInput
	addOnID   string
	err       error
}

func (f *fakeStarter) StartInvoiceAssembly(ctx context.Context, invoiceID string, timestamp time.Time) (string, error) {
	f.tenantID = types.GetTenantID(ctx)
	f.invoiceID = invoiceID
	f.timestamp = timestamp
	return "run_1", f.err
}

func (f *fakeStarter) StartBatchAssembly(ctx context.Context, batchID string, reqs []temporal.AssembleInvoiceInput) (string, error) {
	f.tenantID = types.GetTenantID(ctx)
	f.batchID = batchID
	f.batch = reqs
	return "run_batch", f.err
}

func (f *fakeStarter) StartAddOnInvoicing(ctx context.Context, appliedAddOnID string, timestamp time.Time) (string, error) {
	f.tenantID = types.GetTenantID(ctx)
	f.addOnID = appliedAddOnID
	f.timestamp = timestamp
	return "run_add_on", f.err
}

func newTestRouter(t *testing.T, ping pingFunc, starter *fakeStarter) http.Handler {
	t.Helper()
	log := logger.NewNoopLogger()
	registry := prometheus.NewRegistry()
	metrics.NewInvoicingMetrics(registry).ObserveAssembly(nil, time.Second)

	router := NewRouter(Handlers{
		Health:   NewHealthHandler(ping, log),
		Invoices: NewInvoiceHandler(starter, log),
	}, registry, log)
	return router
}

func serve(h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	healthy := newTestRouter(t, func(context.Context) error { return nil }, &fakeStarter{})
	rec := serve(healthy, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	down := newTestRouter(t, func(context.Context) error { return errors.New("connection refused") }, &fakeStarter{})
	rec = serve(down, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t, func(context.Context) error { return nil }, &fakeStarter{})

	rec := serve(router, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `invoicer_invoice_assemblies_total{outcome="succeeded"} 1`)
}

func TestAssembleInvoice(t *testing.T) {
	starter := &fakeStarter{}
	router := newTestRouter(t, func(context.Context) error { return nil }, starter)

	rec := serve(router, http.MethodPost, "/v1/invoices/inv_1/assemble",
		`{"timestamp":"2022-03-01T10:00:00Z"}`,
		map[string]string{HeaderTenantID: "tenant_1"})

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"run_id":"run_1"}`, rec.Body.String())
	assert.Equal(t, "inv_1", starter.invoiceID)
	assert.Equal(t, "tenant_1", starter.tenantID)
	assert.True(t, starter.timestamp.Equal(time.Date(2022, 3, 1, 10, 0, 0, 0, time.UTC)))
}

func TestAssembleInvoice_DefaultsTimestamp(t *testing.T) {
	starter := &fakeStarter{}
	router := newTestRouter(t, func(context.Context) error { return nil }, starter)

	before := time.Now().UTC()
	rec := serve(router, http.MethodPost, "/v1/invoices/inv_1/assemble", "", nil)

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.False(t, starter.timestamp.Before(before))
}

func TestAssembleInvoice_ErrorStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantHint   string
	}{
		{
			name:       "missing invoice",
			err:        ierr.NewError("invoice not found").WithHint("Invoice inv_1 was not found").Mark(ierr.ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantHint:   "Invoice inv_1 was not found",
		},
		{
			name:       "temporal unavailable",
			err:        ierr.NewError("dial failed").WithHint("Failed to start the assembly").Mark(ierr.ErrSystem),
			wantStatus: http.StatusInternalServerError,
			wantHint:   "Failed to start the assembly",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, func(context.Context) error { return nil }, &fakeStarter{err: tt.err})

			rec := serve(router, http.MethodPost, "/v1/invoices/inv_1/assemble", "", nil)
			require.Equal(t, tt.wantStatus, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantHint, resp.Error.Display)
		})
	}
}

func TestAssembleInvoices(t *testing.T) {
	starter := &fakeStarter{}
	router := newTestRouter(t, func(context.Context) error { return nil }, starter)

	rec := serve(router, http.MethodPost, "/v1/invoices/assemble",
		`{"batch_id":"2022-03","invoices":[{"invoice_id":"inv_1","timestamp":"2022-03-01T10:00:00Z"},{"invoice_id":"inv_2"}]}`,
		nil)

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "2022-03", starter.batchID)
	require.Len(t, starter.batch, 2)
	assert.Equal(t, "inv_1", starter.batch[0].InvoiceID)
	assert.Equal(t, "inv_2", starter.batch[1].InvoiceID)
	assert.False(t, starter.batch[1].Timestamp.IsZero())
}

func TestAssembleInvoices_RejectsInvalidBody(t *testing.T) {
	starter := &fakeStarter{}
	router := newTestRouter(t, func(context.Context) error { return nil }, starter)

	for _, body := range []string{
		`{"invoices":[{"invoice_id":"inv_1"}]}`,
		`{"batch_id":"b1","invoices":[]}`,
		`{"batch_id":"b1","invoices":[{"timestamp":"2022-03-01T10:00:00Z"}]}`,
	} {
		rec := serve(router, http.MethodPost, "/v1/invoices/assemble", body, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	assert.Empty(t, starter.batchID)
}

func TestInvoiceAddOn(t *testing.T) {
	starter := &fakeStarter{}
	router := newTestRouter(t, func(context.Context) error { return nil }, starter)

	rec := serve(router, http.MethodPost, "/v1/applied_add_ons/aaddon_1/invoice",
		`{"timestamp":"2022-11-25T01:00:00Z"}`,
		map[string]string{HeaderTenantID: "tenant_1"})

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"run_id":"run_add_on"}`, rec.Body.String())
	assert.Equal(t, "aaddon_1", starter.addOnID)
	assert.Equal(t, "tenant_1", starter.tenantID)
	assert.True(t, starter.timestamp.Equal(time.Date(2022, 11, 25, 1, 0, 0, 0, time.UTC)))

	rec = serve(router, http.MethodPost, "/v1/applied_add_ons/aaddon_1/invoice", `{"timestamp":"yesterday"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
