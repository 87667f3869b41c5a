package api

import (
	"context"
	"net/http"
	"time"

	ierr "github.com/flexprice/invoicer/internal/errors"
	"github.com/flexprice/invoicer/internal/logger"
	"github.com/flexprice/invoicer/internal/temporal"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db     Pinger
	logger *logger.Logger
}

func NewHealthHandler(db Pinger, logger *logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		logger: logger,
	}
}

// Health reports 503 while the database is unreachable
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Warnw("health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// AssemblyStarter starts invoice assembly runs in the background
type AssemblyStarter interface {
	StartInvoiceAssembly(ctx context.Context, invoiceID string, timestamp time.Time) (string, error)
	StartBatchAssembly(ctx context.Context, batchID string, reqs []temporal.AssembleInvoiceInput) (string, error)
	StartAddOnInvoicing(ctx context.Context, appliedAddOnID string, timestamp time.Time) (string, error)
}

type AssembleInvoiceRequest struct {
	// Timestamp defaults to the time the request is received
	Timestamp *time.Time `json:"timestamp"`
}

type AssembleInvoicesRequest struct {
	BatchID  string                 `json:"batch_id" binding:"required"`
	Invoices []AssembleBatchInvoice `json:"invoices" binding:"required,min=1,dive"`
}

type AssembleBatchInvoice struct {
	InvoiceID string     `json:"invoice_id" binding:"required"`
	Timestamp *time.Time `json:"timestamp"`
}

type AssemblyResponse struct {
	RunID string `json:"run_id"`
}

type InvoiceHandler struct {
	starter AssemblyStarter
	logger  *logger.Logger
}

func NewInvoiceHandler(starter AssemblyStarter, logger *logger.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		starter: starter,
		logger:  logger,
	}
}

// bindTimestamp reads the optional body of the single run endpoints
func bindTimestamp(c *gin.Context) (time.Time, bool) {
	var req AssembleInvoiceRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(ierr.WithError(err).
				WithHint("Invalid request format").
				Mark(ierr.ErrValidation))
			return time.Time{}, false
		}
	}
	return lo.FromPtrOr(req.Timestamp, time.Now().UTC()), true
}

func (h *InvoiceHandler) AssembleInvoice(c *gin.Context) {
	timestamp, ok := bindTimestamp(c)
	if !ok {
		return
	}

	runID, err := h.starter.StartInvoiceAssembly(c.Request.Context(), c.Param("id"), timestamp)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusAccepted, AssemblyResponse{RunID: runID})
}

func (h *InvoiceHandler) AssembleInvoices(c *gin.Context) {
	var req AssembleInvoicesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	now := time.Now().UTC()
	inputs := lo.Map(req.Invoices, func(inv AssembleBatchInvoice, _ int) temporal.AssembleInvoiceInput {
		return temporal.AssembleInvoiceInput{
			InvoiceID: inv.InvoiceID,
			Timestamp: lo.FromPtrOr(inv.Timestamp, now),
		}
	})

	runID, err := h.starter.StartBatchAssembly(c.Request.Context(), req.BatchID, inputs)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusAccepted, AssemblyResponse{RunID: runID})
}

// InvoiceAddOn bills the applied add-on named in the path on a new invoice
func (h *InvoiceHandler) InvoiceAddOn(c *gin.Context) {
	timestamp, ok := bindTimestamp(c)
	if !ok {
		return
	}

	runID, err := h.starter.StartAddOnInvoicing(c.Request.Context(), c.Param("id"), timestamp)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusAccepted, AssemblyResponse{RunID: runID})
}
