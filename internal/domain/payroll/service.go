package payroll

import "context"

type PolicyService interface {
	// GetPolicy returns the stored policy, persisting the default on first access
	GetPolicy(ctx context.Context, storeID string) (PolicyResponse, error)
	UpdatePolicy(ctx context.Context, storeID string, req UpdatePolicyRequest) (PolicyResponse, error)
}

type PayrollService interface {
	// Calculate prices closed attendance of a period into a DRAFT payroll
	Calculate(ctx context.Context, req CalculatePayrollRequest) (PayrollResponse, error)
	// Recalculate is Calculate without the caller's store authority check, for scheduled runs
	Recalculate(ctx context.Context, req CalculatePayrollRequest) (PayrollResponse, error)
	GetPayroll(ctx context.Context, id string) (PayrollResponse, error)
	ListPayrolls(ctx context.Context, filter PayrollFilter) (ListPayrollResponse, error)

	// Lifecycle, store master of the payroll's store only
	Confirm(ctx context.Context, id string) (PayrollResponse, error)
	MarkPaid(ctx context.Context, id string, req MarkPaidRequest) (PayrollResponse, error)
	Cancel(ctx context.Context, id string, req CancelPayrollRequest) (PayrollResponse, error)
}
