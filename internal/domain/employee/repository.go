package employee

import "context"

type EmployeeRepository interface {
	// Exists reports whether the employee record is present
	Exists(ctx context.Context, employeeID string) (bool, error)
}

type WageAssignmentRepository interface {
	// GetHourlyWage returns ErrWageAssignmentNotFound when the employee does not work at the store.
	GetHourlyWage(ctx context.Context, employeeID string, storeID string) (int64, error)

	// ListActive returns every active employee/store relation, used by periodic payroll runs
	ListActive(ctx context.Context) ([]WageAssignment, error)
}
