package temporal

import (
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"
)

// RegisterWorkflowsAndActivities registers the invoicing workflows and
// activities with a Temporal worker.
func RegisterWorkflowsAndActivities(w worker.Registry, activities *InvoiceActivities) {
	w.RegisterWorkflowWithOptions(AssembleInvoiceWorkflow, workflow.RegisterOptions{Name: WorkflowAssembleInvoice})
	w.RegisterWorkflowWithOptions(AssembleInvoicesWorkflow, workflow.RegisterOptions{Name: WorkflowAssembleInvoices})
	w.RegisterWorkflowWithOptions(InvoiceAddOnWorkflow, workflow.RegisterOptions{Name: WorkflowInvoiceAddOn})
	w.RegisterActivity(activities)
}
