package temporal

import (
	"context"
	"fmt"
	"time"

	"github.com/flexprice/invoicer/internal/config"
	ierr "github.com/flexprice/invoicer/internal/errors"
	"github.com/flexprice/invoicer/internal/logger"
	"github.com/flexprice/invoicer/internal/types"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/sdk/client"
)

// Service starts invoicing workflows
type Service struct {
	client *TemporalClient
	log    *logger.Logger
	cfg    *config.Configuration
}

func NewService(client *TemporalClient, cfg *config.Configuration, log *logger.Logger) *Service {
	return &Service{
		client: client,
		log:    log,
		cfg:    cfg,
	}
}

func (s *Service) options() WorkflowOptions {
	return WorkflowOptions{
		MaxAttempts:         s.cfg.Temporal.MaxAttempts,
		StartToCloseTimeout: s.cfg.Billing.AssemblyTimeout,
	}
}

// StartInvoiceAssembly starts the assembly of one invoice and returns the run
// id. One run per invoice and timestamp may be open at a time.
func (s *Service) StartInvoiceAssembly(ctx context.Context, invoiceID string, timestamp time.Time) (string, error) {
	input := AssembleInvoiceWorkflowInput{
		AssembleInvoiceInput: AssembleInvoiceInput{
			InvoiceID: invoiceID,
			TenantID:  types.GetTenantID(ctx),
			Timestamp: timestamp,
		},
		Options: s.options(),
	}
	if err := input.Validate(); err != nil {
		return "", err
	}

	workflowID := fmt.Sprintf("assemble-invoice-%s-%d", invoiceID, timestamp.Unix())
	run, err := s.client.Client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:                    workflowID,
		TaskQueue:             s.cfg.Temporal.TaskQueue,
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE_FAILED_ONLY,
	}, WorkflowAssembleInvoice, input)
	if err != nil {
		s.log.Errorw("failed to start invoice assembly workflow",
			"workflow_id", workflowID,
			"error", err)
		return "", ierr.WithError(err).
			WithHintf("Failed to start the assembly of invoice %s", invoiceID).
			Mark(ierr.ErrSystem)
	}

	s.log.Infow("started invoice assembly workflow",
		"workflow_id", workflowID,
		"run_id", run.GetRunID())
	return run.GetRunID(), nil
}

// StartBatchAssembly starts one workflow assembling every invoice in reqs
func (s *Service) StartBatchAssembly(ctx context.Context, batchID string, reqs []AssembleInvoiceInput) (string, error) {
	if batchID == "" {
		return "", ierr.NewError("batch id is required").
			WithHint("A batch id is required to assemble invoices").
			Mark(ierr.ErrValidation)
	}

	input := AssembleInvoicesWorkflowInput{
		AssembleInvoicesInput: AssembleInvoicesInput{
			TenantID: types.GetTenantID(ctx),
			Invoices: reqs,
		},
		Options: s.options(),
	}

	workflowID := "assemble-invoices-" + batchID
	run, err := s.client.Client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:                    workflowID,
		TaskQueue:             s.cfg.Temporal.TaskQueue,
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE,
	}, WorkflowAssembleInvoices, input)
	if err != nil {
		s.log.Errorw("failed to start batch assembly workflow",
			"workflow_id", workflowID,
			"error", err)
		return "", ierr.WithError(err).
			WithHintf("Failed to start invoice batch %s", batchID).
			Mark(ierr.ErrSystem)
	}

	s.log.Infow("started batch assembly workflow",
		"workflow_id", workflowID,
		"invoices", len(reqs),
		"run_id", run.GetRunID())
	return run.GetRunID(), nil
}

// StartAddOnInvoicing starts billing an applied add-on and returns the run id.
// An applied add-on has a single workflow id, so it is only ever billed once.
func (s *Service) StartAddOnInvoicing(ctx context.Context, appliedAddOnID string, timestamp time.Time) (string, error) {
	input := InvoiceAddOnWorkflowInput{
		InvoiceAddOnInput: InvoiceAddOnInput{
			AppliedAddOnID: appliedAddOnID,
			TenantID:       types.GetTenantID(ctx),
			Timestamp:      timestamp,
		},
		Options: s.options(),
	}
	if err := input.Validate(); err != nil {
		return "", err
	}

	workflowID := "invoice-add-on-" + appliedAddOnID
	run, err := s.client.Client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:                    workflowID,
		TaskQueue:             s.cfg.Temporal.TaskQueue,
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE_FAILED_ONLY,
	}, WorkflowInvoiceAddOn, input)
	if err != nil {
		s.log.Errorw("failed to start add-on invoicing workflow",
			"workflow_id", workflowID,
			"error", err)
		return "", ierr.WithError(err).
			WithHintf("Failed to start invoicing add-on %s", appliedAddOnID).
			Mark(ierr.ErrSystem)
	}

	s.log.Infow("started add-on invoicing workflow",
		"workflow_id", workflowID,
		"run_id", run.GetRunID())
	return run.GetRunID(), nil
}
