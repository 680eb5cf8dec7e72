package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/albamate/albamate-backend/internal/domain/attendance"
	"github.com/albamate/albamate-backend/internal/domain/payroll"
	"github.com/albamate/albamate-backend/internal/domain/user"
	"github.com/albamate/albamate-backend/internal/pkg/apperror"
	"github.com/albamate/albamate-backend/internal/pkg/database"
)

type PayrollServiceImpl struct {
	db database.Transactor
	payroll.PayrollRepository
	policies    payroll.PolicyRepository
	attendances attendance.AttendanceRepository
	authz       user.AuthorizationChecker
	calculator  *WageCalculator
	allowance   AllowancePolicy
	taxRates    TaxRateProvider
	loc         *time.Location
	now         func() time.Time
}

func NewPayrollService(
	db database.Transactor,
	payrollRepo payroll.PayrollRepository,
	policyRepo payroll.PolicyRepository,
	attendanceRepo attendance.AttendanceRepository,
	authz user.AuthorizationChecker,
	allowance AllowancePolicy,
	taxRates TaxRateProvider,
	loc *time.Location,
) payroll.PayrollService {
	return &PayrollServiceImpl{
		db:                db,
		PayrollRepository: payrollRepo,
		policies:          policyRepo,
		attendances:       attendanceRepo,
		authz:             authz,
		calculator:        NewWageCalculator(loc),
		allowance:         allowance,
		taxRates:          taxRates,
		loc:               loc,
		now:               time.Now,
	}
}

// Calculate implements payroll.PayrollService.
func (s *PayrollServiceImpl) Calculate(ctx context.Context, req payroll.CalculatePayrollRequest) (payroll.PayrollResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollResponse{}, err
	}

	if err := requireStoreMaster(ctx, s.authz, req.StoreID); err != nil {
		return payroll.PayrollResponse{}, err
	}

	return s.Recalculate(ctx, req)
}

// Recalculate implements payroll.PayrollService.
func (s *PayrollServiceImpl) Recalculate(ctx context.Context, req payroll.CalculatePayrollRequest) (payroll.PayrollResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollResponse{}, err
	}

	startDate, endDate := req.Period(s.loc)

	policy, err := effectivePolicy(ctx, s.policies, req.StoreID)
	if err != nil {
		return payroll.PayrollResponse{}, err
	}

	// Rate is resolved before any work so a misconfigured store fails fast.
	taxRate, err := s.taxRates.TaxRate(ctx, policy)
	if err != nil {
		return payroll.PayrollResponse{}, err
	}

	records, err := s.attendances.ListClosedByPeriod(ctx, req.EmployeeID, req.StoreID, startDate, endDate.AddDate(0, 0, 1))
	if err != nil {
		return payroll.PayrollResponse{}, fmt.Errorf("failed to list attendance for payroll: %w", err)
	}

	calculated, err := s.aggregate(records, policy)
	if err != nil {
		return payroll.PayrollResponse{}, err
	}

	calculated.EmployeeID = req.EmployeeID
	calculated.StoreID = req.StoreID
	calculated.StartDate = startDate
	calculated.EndDate = endDate
	calculated.TaxPolicyType = policy.TaxPolicyType
	calculated.TaxRate = taxRate
	calculated.TaxAmount = taxAmount(calculated.GrossWage, taxRate)
	calculated.Deductions = req.Deductions
	calculated.NetWage = calculated.GrossWage - calculated.TaxAmount - calculated.Deductions
	calculated.Status = payroll.PayrollStatusDraft

	var saved payroll.Payroll
	err = s.db.WithinTransaction(ctx, func(txCtx context.Context) error {
		existing, err := s.PayrollRepository.GetActiveByPeriod(txCtx, req.EmployeeID, req.StoreID, startDate, endDate)
		if err != nil {
			return fmt.Errorf("failed to get payroll for period: %w", err)
		}

		nowUTC := s.now().UTC()
		if existing != nil {
			if existing.Status != payroll.PayrollStatusDraft {
				return apperror.Detail(payroll.ErrPayrollAlreadyConfirmed,
					fmt.Sprintf("payroll %s for this period is %s", existing.ID, existing.Status))
			}

			// Recompute in place; the draft keeps its identity.
			calculated.ID = existing.ID
			calculated.Version = existing.Version
			calculated.CreatedAt = existing.CreatedAt
			calculated.UpdatedAt = nowUTC
			assignDetails(&calculated)

			saved, err = s.PayrollRepository.Update(txCtx, calculated, true)
			return err
		}

		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate payroll id: %w", err)
		}
		calculated.ID = id.String()
		calculated.Version = 1
		calculated.CreatedAt = nowUTC
		calculated.UpdatedAt = nowUTC
		assignDetails(&calculated)

		saved, err = s.PayrollRepository.Create(txCtx, calculated)
		if err != nil {
			return fmt.Errorf("failed to create payroll: %w", err)
		}
		return nil
	})
	if err != nil {
		slog.Error("payroll calculation failed",
			"employee_id", req.EmployeeID,
			"store_id", req.StoreID,
			"start_date", req.StartDate,
			"end_date", req.EndDate,
			"error", err,
		)
		return payroll.PayrollResponse{}, err
	}

	slog.Info("payroll calculated",
		"payroll_id", saved.ID,
		"employee_id", saved.EmployeeID,
		"store_id", saved.StoreID,
		"records", len(saved.Details),
		"gross_wage", saved.GrossWage,
		"net_wage", saved.NetWage,
		"version", saved.Version,
	)

	return payroll.NewPayrollResponse(saved, s.loc), nil
}

// aggregate prices every record and sums the buckets; tax is left to the caller.
func (s *PayrollServiceImpl) aggregate(records []attendance.Attendance, policy payroll.PayrollPolicy) (payroll.Payroll, error) {
	p := payroll.Payroll{
		TotalHours:    decimal.Zero,
		RegularHours:  decimal.Zero,
		OvertimeHours: decimal.Zero,
		NightHours:    decimal.Zero,
		Details:       make([]payroll.PayrollDetail, 0, len(records)),
	}

	for _, record := range records {
		detail, err := s.calculator.Calculate(record, policy)
		if err != nil {
			return payroll.Payroll{}, err
		}

		p.TotalHours = p.TotalHours.Add(detail.TotalHours)
		p.RegularHours = p.RegularHours.Add(detail.RegularHours)
		p.OvertimeHours = p.OvertimeHours.Add(detail.OvertimeHours)
		p.NightHours = p.NightHours.Add(detail.NightHours)
		p.RegularWage += detail.RegularWage
		p.OvertimeWage += detail.OvertimeWage
		p.NightWorkWage += detail.NightWorkWage
		p.Details = append(p.Details, detail)
	}

	if policy.WeeklyAllowanceEnabled && s.allowance != nil {
		p.WeeklyAllowance = s.allowance.WeeklyAllowance(p.Details)
	}

	p.GrossWage = p.RegularWage + p.OvertimeWage + p.NightWorkWage + p.WeeklyAllowance
	return p, nil
}

var detailNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("albamate.payroll_details"))

// assignDetails links details to p. A detail id is derived from the payroll
// and attendance ids, so recomputing a draft keeps its detail ids.
func assignDetails(p *payroll.Payroll) {
	for i := range p.Details {
		p.Details[i].ID = uuid.NewSHA1(detailNamespace, []byte(p.ID+"/"+p.Details[i].AttendanceID)).String()
		p.Details[i].PayrollID = p.ID
	}
}

// GetPayroll implements payroll.PayrollService.
func (s *PayrollServiceImpl) GetPayroll(ctx context.Context, id string) (payroll.PayrollResponse, error) {
	p, err := s.PayrollRepository.GetByID(ctx, id)
	if err != nil {
		return payroll.PayrollResponse{}, err
	}
	return payroll.NewPayrollResponse(p, s.loc), nil
}

// ListPayrolls implements payroll.PayrollService.
func (s *PayrollServiceImpl) ListPayrolls(ctx context.Context, filter payroll.PayrollFilter) (payroll.ListPayrollResponse, error) {
	if err := filter.Validate(); err != nil {
		return payroll.ListPayrollResponse{}, err
	}

	payrolls, total, err := s.PayrollRepository.List(ctx, filter)
	if err != nil {
		return payroll.ListPayrollResponse{}, fmt.Errorf("failed to list payrolls: %w", err)
	}

	responses := make([]payroll.PayrollResponse, 0, len(payrolls))
	for _, p := range payrolls {
		responses = append(responses, payroll.NewPayrollResponse(p, s.loc))
	}

	totalPages := int(total) / filter.Limit
	if int(total)%filter.Limit != 0 {
		totalPages++
	}

	return payroll.ListPayrollResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Payrolls:   responses,
	}, nil
}

// Confirm implements payroll.PayrollService.
func (s *PayrollServiceImpl) Confirm(ctx context.Context, id string) (payroll.PayrollResponse, error) {
	return s.transition(ctx, id, payroll.PayrollStatusConfirmed, func(p *payroll.Payroll, now time.Time) {
		p.ConfirmedAt = &now
	})
}

// MarkPaid implements payroll.PayrollService.
func (s *PayrollServiceImpl) MarkPaid(ctx context.Context, id string, req payroll.MarkPaidRequest) (payroll.PayrollResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollResponse{}, err
	}
	paymentDate, _ := time.ParseInLocation("2006-01-02", req.PaymentDate, s.loc)

	return s.transition(ctx, id, payroll.PayrollStatusPaid, func(p *payroll.Payroll, _ time.Time) {
		p.PaymentDate = &paymentDate
	})
}

// Cancel implements payroll.PayrollService.
func (s *PayrollServiceImpl) Cancel(ctx context.Context, id string, req payroll.CancelPayrollRequest) (payroll.PayrollResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollResponse{}, err
	}
	reason := req.Reason

	return s.transition(ctx, id, payroll.PayrollStatusCancelled, func(p *payroll.Payroll, _ time.Time) {
		p.CancelReason = &reason
	})
}

// transition loads the payroll, applies the status move and writes it back
// guarded by the version it was read at.
func (s *PayrollServiceImpl) transition(ctx context.Context, id string, next payroll.PayrollStatus, apply func(p *payroll.Payroll, now time.Time)) (payroll.PayrollResponse, error) {
	var (
		saved payroll.Payroll
		from  payroll.PayrollStatus
	)
	err := s.db.WithinTransaction(ctx, func(txCtx context.Context) error {
		p, err := s.PayrollRepository.GetByID(txCtx, id)
		if err != nil {
			return err
		}

		if err := requireStoreMaster(txCtx, s.authz, p.StoreID); err != nil {
			return err
		}

		from = p.Status
		if err := p.Transition(next); err != nil {
			return err
		}

		nowUTC := s.now().UTC()
		apply(&p, nowUTC)
		p.UpdatedAt = nowUTC

		saved, err = s.PayrollRepository.Update(txCtx, p, false)
		return err
	})
	if err != nil {
		slog.Warn("payroll status change rejected",
			"payroll_id", id,
			"to", next,
			"error", err,
		)
		return payroll.PayrollResponse{}, err
	}

	slog.Info("payroll status changed",
		"payroll_id", saved.ID,
		"from", from,
		"to", saved.Status,
		"version", saved.Version,
	)
	return payroll.NewPayrollResponse(saved, s.loc), nil
}
