package temporal

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// WorkflowOptions are the activity settings a workflow run is started with
type WorkflowOptions struct {
	MaxAttempts         int32         `json:"max_attempts"`
	StartToCloseTimeout time.Duration `json:"start_to_close_timeout"`
}

// AssembleInvoiceWorkflowInput carries one invoice plus the retry settings
// taken from configuration when the run was started.
type AssembleInvoiceWorkflowInput struct {
	AssembleInvoiceInput
	Options WorkflowOptions `json:"options"`
}

// AssembleInvoicesWorkflowInput carries a batch plus its retry settings
type AssembleInvoicesWorkflowInput struct {
	AssembleInvoicesInput
	Options WorkflowOptions `json:"options"`
}

// InvoiceAddOnWorkflowInput carries an applied add-on plus its retry settings
type InvoiceAddOnWorkflowInput struct {
	InvoiceAddOnInput
	Options WorkflowOptions `json:"options"`
}

func activityContext(ctx workflow.Context, opts WorkflowOptions) workflow.Context {
	timeout := opts.StartToCloseTimeout
	if timeout <= 0 {
		timeout = 3 * time.Minute
	}

	return workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: timeout,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    opts.MaxAttempts,
		},
	})
}

// AssembleInvoiceWorkflow assembles one invoice. Retries of the activity
// restart the whole assembly since a failed attempt leaves nothing behind.
func AssembleInvoiceWorkflow(ctx workflow.Context, input AssembleInvoiceWorkflowInput) (*AssembleInvoiceResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting invoice assembly workflow", "invoiceID", input.InvoiceID)

	if err := input.Validate(); err != nil {
		return nil, toApplicationError(err)
	}

	ctx = activityContext(ctx, input.Options)

	var a *InvoiceActivities
	var result AssembleInvoiceResult
	if err := workflow.ExecuteActivity(ctx, a.AssembleInvoice, input.AssembleInvoiceInput).Get(ctx, &result); err != nil {
		logger.Error("Invoice assembly failed", "invoiceID", input.InvoiceID, "error", err)
		return nil, err
	}

	logger.Info("Invoice assembled",
		"invoiceID", result.InvoiceID,
		"status", result.Status,
		"totalAmountCents", result.TotalAmountCents)
	return &result, nil
}

// AssembleInvoicesWorkflow assembles a batch of invoices in one activity
func AssembleInvoicesWorkflow(ctx workflow.Context, input AssembleInvoicesWorkflowInput) ([]AssembleInvoiceResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting batch invoice assembly workflow", "count", len(input.Invoices))

	ctx = activityContext(ctx, input.Options)

	var a *InvoiceActivities
	var results []AssembleInvoiceResult
	if err := workflow.ExecuteActivity(ctx, a.AssembleInvoices, input.AssembleInvoicesInput).Get(ctx, &results); err != nil {
		logger.Error("Batch invoice assembly failed", "error", err)
		return nil, err
	}
	return results, nil
}

// InvoiceAddOnWorkflow bills one applied add-on on an invoice of its own
func InvoiceAddOnWorkflow(ctx workflow.Context, input InvoiceAddOnWorkflowInput) (*AssembleInvoiceResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting add-on invoicing workflow", "appliedAddOnID", input.AppliedAddOnID)

	if err := input.Validate(); err != nil {
		return nil, toApplicationError(err)
	}

	ctx = activityContext(ctx, input.Options)

	var a *InvoiceActivities
	var result AssembleInvoiceResult
	if err := workflow.ExecuteActivity(ctx, a.InvoiceAddOn, input.InvoiceAddOnInput).Get(ctx, &result); err != nil {
		logger.Error("Add-on invoicing failed", "appliedAddOnID", input.AppliedAddOnID, "error", err)
		return nil, err
	}
	return &result, nil
}
