package payroll

import (
	"context"
	"time"
)

type PolicyRepository interface {
	// Get returns ErrPolicyNotFound when the store has none stored
	Get(ctx context.Context, storeID string) (PayrollPolicy, error)
	// Upsert overwrites the whole row; last writer wins
	Upsert(ctx context.Context, policy PayrollPolicy) (PayrollPolicy, error)
}

type PayrollRepository interface {
	// Create inserts the payroll together with its details
	Create(ctx context.Context, payroll Payroll) (Payroll, error)

	// GetByID loads the payroll with details, ErrPayrollNotFound when missing
	GetByID(ctx context.Context, id string) (Payroll, error)

	// GetActiveByPeriod returns the non-cancelled payroll for the exact period, or nil
	GetActiveByPeriod(ctx context.Context, employeeID string, storeID string, startDate time.Time, endDate time.Time) (*Payroll, error)

	// Update writes payroll if its stored version still equals payroll.Version
	// and returns it with the bumped version. A stale version yields
	// ErrPayrollVersionConflict. Details are replaced only when replaceDetails is set.
	Update(ctx context.Context, payroll Payroll, replaceDetails bool) (Payroll, error)

	// List retrieves payrolls (without details) with filters and pagination
	List(ctx context.Context, filter PayrollFilter) ([]Payroll, int64, error)
}
