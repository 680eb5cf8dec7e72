package employee

import "time"

// WageAssignment is the employment relation of an employee at a store.
// HourlyWage is in the smallest currency unit.
type WageAssignment struct {
	EmployeeID string
	StoreID    string
	HourlyWage int64
	Active     bool
	UpdatedAt  time.Time
}
