package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaxPolicyType enum
type TaxPolicyType string

const (
	TaxPolicyFlatWithholding TaxPolicyType = "FLAT_WITHHOLDING"
	TaxPolicyInsuranceBased  TaxPolicyType = "INSURANCE_BASED"
)

func (t TaxPolicyType) Valid() bool {
	return t == TaxPolicyFlatWithholding || t == TaxPolicyInsuranceBased
}

// PayrollPolicy - Store wage rules
type PayrollPolicy struct {
	StoreID                string
	TaxPolicyType          TaxPolicyType
	NightWorkRate          decimal.Decimal
	NightWorkStartTime     string // HH:MM
	NightWorkEndTime       string // HH:MM, next morning when before start; 00:00 closes at midnight
	OvertimeRate           decimal.Decimal
	RegularHoursPerDay     decimal.Decimal
	WeeklyAllowanceEnabled bool
	InsuranceTaxRate       *decimal.Decimal // only read for INSURANCE_BASED
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// DefaultPolicy is what a store gets before its owner configures anything.
func DefaultPolicy(storeID string) PayrollPolicy {
	return PayrollPolicy{
		StoreID:                storeID,
		TaxPolicyType:          TaxPolicyFlatWithholding,
		NightWorkRate:          decimal.RequireFromString("1.5"),
		NightWorkStartTime:     "22:00",
		NightWorkEndTime:       "00:00",
		OvertimeRate:           decimal.RequireFromString("1.5"),
		RegularHoursPerDay:     decimal.NewFromInt(8),
		WeeklyAllowanceEnabled: true,
	}
}

// PayrollDetail - Priced breakdown of one attendance record
type PayrollDetail struct {
	ID             string
	PayrollID      string
	AttendanceID   string
	WorkDate       time.Time
	StartTime      time.Time
	EndTime        time.Time
	TotalHours     decimal.Decimal
	RegularHours   decimal.Decimal
	OvertimeHours  decimal.Decimal
	NightHours     decimal.Decimal
	BaseHourlyWage int64
	RegularWage    int64
	OvertimeWage   int64
	NightWorkWage  int64
	DailyWage      int64
}

// Payroll - Aggregated wages of one employee at one store over a period
type Payroll struct {
	ID         string
	EmployeeID string
	StoreID    string
	StartDate  time.Time
	EndDate    time.Time

	TotalHours    decimal.Decimal
	RegularHours  decimal.Decimal
	OvertimeHours decimal.Decimal
	NightHours    decimal.Decimal

	RegularWage     int64
	OvertimeWage    int64
	NightWorkWage   int64
	WeeklyAllowance int64
	GrossWage       int64

	TaxPolicyType TaxPolicyType
	TaxRate       decimal.Decimal
	TaxAmount     int64
	Deductions    int64
	NetWage       int64

	Status       PayrollStatus
	PaymentDate  *time.Time
	CancelReason *string
	ConfirmedAt  *time.Time

	// Optimistic lock; every write bumps it
	Version int

	CreatedAt time.Time
	UpdatedAt time.Time

	Details []PayrollDetail
}
