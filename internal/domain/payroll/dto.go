package payroll

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/albamate/albamate-backend/internal/pkg/validator"
)

// ========================================
// POLICY DTOs
// ========================================

// UpdatePolicyRequest is a partial update; nil fields keep their stored value.
type UpdatePolicyRequest struct {
	TaxPolicyType          *string  `json:"tax_policy_type,omitempty" validate:"omitempty,oneof=FLAT_WITHHOLDING INSURANCE_BASED"`
	NightWorkRate          *float64 `json:"night_work_rate,omitempty" validate:"omitempty,gte=1,lte=3"`
	NightWorkStartTime     *string  `json:"night_work_start_time,omitempty" validate:"omitempty,clock"`
	NightWorkEndTime       *string  `json:"night_work_end_time,omitempty" validate:"omitempty,clock"`
	OvertimeRate           *float64 `json:"overtime_rate,omitempty" validate:"omitempty,gte=1,lte=3"`
	RegularHoursPerDay     *float64 `json:"regular_hours_per_day,omitempty" validate:"omitempty,gte=1,lte=12"`
	WeeklyAllowanceEnabled *bool    `json:"weekly_allowance_enabled,omitempty"`
	InsuranceTaxRate       *float64 `json:"insurance_tax_rate,omitempty" validate:"omitempty,gte=0,lte=1"`
}

func (r *UpdatePolicyRequest) Validate() error {
	return validator.Struct(r)
}

// Apply merges the set fields of r into p.
func (r UpdatePolicyRequest) Apply(p PayrollPolicy) PayrollPolicy {
	if r.TaxPolicyType != nil {
		p.TaxPolicyType = TaxPolicyType(*r.TaxPolicyType)
	}
	if r.NightWorkRate != nil {
		p.NightWorkRate = decimal.NewFromFloat(*r.NightWorkRate)
	}
	if r.NightWorkStartTime != nil {
		p.NightWorkStartTime = *r.NightWorkStartTime
	}
	if r.NightWorkEndTime != nil {
		p.NightWorkEndTime = *r.NightWorkEndTime
	}
	if r.OvertimeRate != nil {
		p.OvertimeRate = decimal.NewFromFloat(*r.OvertimeRate)
	}
	if r.RegularHoursPerDay != nil {
		p.RegularHoursPerDay = decimal.NewFromFloat(*r.RegularHoursPerDay)
	}
	if r.WeeklyAllowanceEnabled != nil {
		p.WeeklyAllowanceEnabled = *r.WeeklyAllowanceEnabled
	}
	if r.InsuranceTaxRate != nil {
		rate := decimal.NewFromFloat(*r.InsuranceTaxRate)
		p.InsuranceTaxRate = &rate
	}
	return p
}

type PolicyResponse struct {
	StoreID                string  `json:"store_id"`
	TaxPolicyType          string  `json:"tax_policy_type"`
	NightWorkRate          string  `json:"night_work_rate"`
	NightWorkStartTime     string  `json:"night_work_start_time"`
	NightWorkEndTime       string  `json:"night_work_end_time"`
	OvertimeRate           string  `json:"overtime_rate"`
	RegularHoursPerDay     string  `json:"regular_hours_per_day"`
	WeeklyAllowanceEnabled bool    `json:"weekly_allowance_enabled"`
	InsuranceTaxRate       *string `json:"insurance_tax_rate,omitempty"`
	UpdatedAt              *string `json:"updated_at,omitempty"`
}

func NewPolicyResponse(p PayrollPolicy) PolicyResponse {
	resp := PolicyResponse{
		StoreID:                p.StoreID,
		TaxPolicyType:          string(p.TaxPolicyType),
		NightWorkRate:          p.NightWorkRate.String(),
		NightWorkStartTime:     p.NightWorkStartTime,
		NightWorkEndTime:       p.NightWorkEndTime,
		OvertimeRate:           p.OvertimeRate.String(),
		RegularHoursPerDay:     p.RegularHoursPerDay.String(),
		WeeklyAllowanceEnabled: p.WeeklyAllowanceEnabled,
	}
	if p.InsuranceTaxRate != nil {
		rate := p.InsuranceTaxRate.String()
		resp.InsuranceTaxRate = &rate
	}
	if !p.UpdatedAt.IsZero() {
		updated := p.UpdatedAt.Format(time.RFC3339)
		resp.UpdatedAt = &updated
	}
	return resp
}

// ========================================
// PAYROLL DTOs
// ========================================

type CalculatePayrollRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	StoreID    string `json:"store_id" validate:"required"`
	StartDate  string `json:"start_date" validate:"required,datetime=2006-01-02"` // YYYY-MM-DD
	EndDate    string `json:"end_date" validate:"required,datetime=2006-01-02"`   // YYYY-MM-DD
	Deductions int64  `json:"deductions" validate:"gte=0"`
}

func (r *CalculatePayrollRequest) Validate() error {
	if err := validator.Struct(r); err != nil {
		return err
	}

	start, _ := validator.IsValidDate(r.StartDate)
	end, _ := validator.IsValidDate(r.EndDate)
	if start.After(end) {
		return validator.Field("end_date", "must not be before start_date")
	}
	return nil
}

// Period returns the inclusive calendar dates of the request at midnight in loc.
func (r CalculatePayrollRequest) Period(loc *time.Location) (time.Time, time.Time) {
	start, _ := time.ParseInLocation("2006-01-02", r.StartDate, loc)
	end, _ := time.ParseInLocation("2006-01-02", r.EndDate, loc)
	return start, end
}

type MarkPaidRequest struct {
	PaymentDate string `json:"payment_date" validate:"required,datetime=2006-01-02"` // YYYY-MM-DD
}

func (r *MarkPaidRequest) Validate() error {
	return validator.Struct(r)
}

type CancelPayrollRequest struct {
	Reason string `json:"reason" validate:"required"`
}

func (r *CancelPayrollRequest) Validate() error {
	if validator.IsEmpty(r.Reason) {
		return validator.Field("reason", "is required")
	}
	return nil
}

type PayrollFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	StoreID    *string `json:"store_id,omitempty"`
	Status     *string `json:"status,omitempty" validate:"omitempty,oneof=DRAFT CONFIRMED PAID CANCELLED"`

	// Pagination
	Page  int `json:"page" validate:"gte=0"`
	Limit int `json:"limit" validate:"gte=0,lte=100"`
}

func (f *PayrollFilter) Validate() error {
	if err := validator.Struct(f); err != nil {
		return err
	}
	if f.Page == 0 {
		f.Page = 1 // Default page
	}
	if f.Limit == 0 {
		f.Limit = 20 // Default limit
	}
	return nil
}

type PayrollDetailResponse struct {
	AttendanceID   string `json:"attendance_id"`
	WorkDate       string `json:"work_date"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	TotalHours     string `json:"total_hours"`
	RegularHours   string `json:"regular_hours"`
	OvertimeHours  string `json:"overtime_hours"`
	NightHours     string `json:"night_hours"`
	BaseHourlyWage int64  `json:"base_hourly_wage"`
	RegularWage    int64  `json:"regular_wage"`
	OvertimeWage   int64  `json:"overtime_wage"`
	NightWorkWage  int64  `json:"night_work_wage"`
	DailyWage      int64  `json:"daily_wage"`
}

type PayrollResponse struct {
	ID              string                  `json:"id"`
	EmployeeID      string                  `json:"employee_id"`
	StoreID         string                  `json:"store_id"`
	StartDate       string                  `json:"start_date"`
	EndDate         string                  `json:"end_date"`
	TotalHours      string                  `json:"total_hours"`
	RegularHours    string                  `json:"regular_hours"`
	OvertimeHours   string                  `json:"overtime_hours"`
	NightHours      string                  `json:"night_hours"`
	RegularWage     int64                   `json:"regular_wage"`
	OvertimeWage    int64                   `json:"overtime_wage"`
	NightWorkWage   int64                   `json:"night_work_wage"`
	WeeklyAllowance int64                   `json:"weekly_allowance"`
	GrossWage       int64                   `json:"gross_wage"`
	TaxPolicyType   string                  `json:"tax_policy_type"`
	TaxRate         string                  `json:"tax_rate"`
	TaxAmount       int64                   `json:"tax_amount"`
	Deductions      int64                   `json:"deductions"`
	NetWage         int64                   `json:"net_wage"`
	Status          string                  `json:"status"`
	PaymentDate     *string                 `json:"payment_date,omitempty"`
	CancelReason    *string                 `json:"cancel_reason,omitempty"`
	ConfirmedAt     *string                 `json:"confirmed_at,omitempty"`
	Version         int                     `json:"version"`
	CreatedAt       string                  `json:"created_at"`
	UpdatedAt       string                  `json:"updated_at"`
	Details         []PayrollDetailResponse `json:"details,omitempty"`
}

func NewPayrollResponse(p Payroll, loc *time.Location) PayrollResponse {
	resp := PayrollResponse{
		ID:              p.ID,
		EmployeeID:      p.EmployeeID,
		StoreID:         p.StoreID,
		StartDate:       p.StartDate.Format("2006-01-02"),
		EndDate:         p.EndDate.Format("2006-01-02"),
		TotalHours:      p.TotalHours.StringFixed(2),
		RegularHours:    p.RegularHours.StringFixed(2),
		OvertimeHours:   p.OvertimeHours.StringFixed(2),
		NightHours:      p.NightHours.StringFixed(2),
		RegularWage:     p.RegularWage,
		OvertimeWage:    p.OvertimeWage,
		NightWorkWage:   p.NightWorkWage,
		WeeklyAllowance: p.WeeklyAllowance,
		GrossWage:       p.GrossWage,
		TaxPolicyType:   string(p.TaxPolicyType),
		TaxRate:         p.TaxRate.String(),
		TaxAmount:       p.TaxAmount,
		Deductions:      p.Deductions,
		NetWage:         p.NetWage,
		Status:          string(p.Status),
		CancelReason:    p.CancelReason,
		Version:         p.Version,
		CreatedAt:       p.CreatedAt.In(loc).Format(time.RFC3339),
		UpdatedAt:       p.UpdatedAt.In(loc).Format(time.RFC3339),
	}
	if p.PaymentDate != nil {
		paid := p.PaymentDate.Format("2006-01-02")
		resp.PaymentDate = &paid
	}
	if p.ConfirmedAt != nil {
		confirmed := p.ConfirmedAt.In(loc).Format(time.RFC3339)
		resp.ConfirmedAt = &confirmed
	}
	for _, d := range p.Details {
		resp.Details = append(resp.Details, PayrollDetailResponse{
			AttendanceID:   d.AttendanceID,
			WorkDate:       d.WorkDate.Format("2006-01-02"),
			StartTime:      d.StartTime.In(loc).Format(time.RFC3339),
			EndTime:        d.EndTime.In(loc).Format(time.RFC3339),
			TotalHours:     d.TotalHours.StringFixed(2),
			RegularHours:   d.RegularHours.StringFixed(2),
			OvertimeHours:  d.OvertimeHours.StringFixed(2),
			NightHours:     d.NightHours.StringFixed(2),
			BaseHourlyWage: d.BaseHourlyWage,
			RegularWage:    d.RegularWage,
			OvertimeWage:   d.OvertimeWage,
			NightWorkWage:  d.NightWorkWage,
			DailyWage:      d.DailyWage,
		})
	}
	return resp
}

type ListPayrollResponse struct {
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
	Payrolls   []PayrollResponse `json:"payrolls"`
}
