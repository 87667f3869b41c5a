package metrics

import (
	"context"
	"time"

	ierr "github.com/flexprice/invoicer/internal/errors"
	"github.com/flexprice/invoicer/internal/types"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSucceeded     = "succeeded"
	OutcomeValidation    = "validation_failure"
	OutcomeConfiguration = "configuration_error"
	OutcomeDelegate      = "delegate_failure"
	OutcomeCanceled      = "canceled"
	OutcomeUnknown       = "unknown"
)

// InvoicingMetrics are the prometheus instruments of invoice assembly
type InvoicingMetrics struct {
	assemblies      *prometheus.CounterVec
	assemblyLatency *prometheus.HistogramVec
	feesCreated     *prometheus.CounterVec
	creditsApplied  *prometheus.CounterVec
	deferredFailed  *prometheus.CounterVec
}

// NewInvoicingMetrics registers the invoicing instruments with registerer,
// which defaults to the global prometheus registerer.
func NewInvoicingMetrics(registerer prometheus.Registerer) *InvoicingMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &InvoicingMetrics{
		assemblies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "invoicer",
			Name:      "invoice_assemblies_total",
			Help:      "Invoice assemblies by outcome.",
		}, []string{"outcome"}),
		assemblyLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "invoicer",
			Name:      "invoice_assembly_duration_seconds",
			Help:      "Time spent assembling one invoice, transaction included.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		feesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "invoicer",
			Name:      "fees_created_total",
			Help:      "Fees attached to assembled invoices.",
		}, []string{"fee_type"}),
		creditsApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "invoicer",
			Name:      "credits_applied_cents_total",
			Help:      "Amount in minor units taken off invoices by credit source.",
		}, []string{"source"}),
		deferredFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "invoicer",
			Name:      "deferred_action_failures_total",
			Help:      "Post commit actions that returned an error.",
		}, []string{"action"}),
	}

	registerer.MustRegister(
		m.assemblies,
		m.assemblyLatency,
		m.feesCreated,
		m.creditsApplied,
		m.deferredFailed,
	)
	return m
}

// ObserveAssembly records one finished assembly
func (m *InvoicingMetrics) ObserveAssembly(err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := ClassifyOutcome(err)
	m.assemblies.WithLabelValues(outcome).Inc()
	m.assemblyLatency.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

func (m *InvoicingMetrics) IncFeeCreated(feeType types.FeeType) {
	if m == nil {
		return
	}
	m.feesCreated.WithLabelValues(string(feeType)).Inc()
}

func (m *InvoicingMetrics) AddCreditApplied(source types.CreditSource, amountCents int64) {
	if m == nil || amountCents <= 0 {
		return
	}
	m.creditsApplied.WithLabelValues(string(source)).Add(float64(amountCents))
}

func (m *InvoicingMetrics) IncDeferredFailure(action string) {
	if m == nil {
		return
	}
	m.deferredFailed.WithLabelValues(action).Inc()
}

// ClassifyOutcome maps an assembly error onto the outcome label
func ClassifyOutcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSucceeded
	case ierr.IsValidation(err):
		return OutcomeValidation
	case ierr.IsConfiguration(err):
		return OutcomeConfiguration
	case ierr.IsDelegate(err):
		return OutcomeDelegate
	case ierr.Is(err, context.Canceled), ierr.Is(err, context.DeadlineExceeded):
		return OutcomeCanceled
	default:
		return OutcomeUnknown
	}
}
