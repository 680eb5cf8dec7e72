package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/albamate/albamate-backend/internal/domain/payroll"
	"github.com/albamate/albamate-backend/internal/pkg/database"
)

type payrollRepository struct {
	db *database.DB
}

const payrollColumns = `
	id, employee_id, store_id, start_date, end_date,
	total_hours, regular_hours, overtime_hours, night_hours,
	regular_wage, overtime_wage, night_work_wage, weekly_allowance, gross_wage,
	tax_policy_type, tax_rate, tax_amount, deductions, net_wage,
	status, payment_date, cancel_reason, confirmed_at, version,
	created_at, updated_at`

func scanPayroll(row pgx.Row) (payroll.Payroll, error) {
	var p payroll.Payroll
	err := row.Scan(
		&p.ID, &p.EmployeeID, &p.StoreID, &p.StartDate, &p.EndDate,
		&p.TotalHours, &p.RegularHours, &p.OvertimeHours, &p.NightHours,
		&p.RegularWage, &p.OvertimeWage, &p.NightWorkWage, &p.WeeklyAllowance, &p.GrossWage,
		&p.TaxPolicyType, &p.TaxRate, &p.TaxAmount, &p.Deductions, &p.NetWage,
		&p.Status, &p.PaymentDate, &p.CancelReason, &p.ConfirmedAt, &p.Version,
		&p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

// Create implements payroll.PayrollRepository.
func (r *payrollRepository) Create(ctx context.Context, p payroll.Payroll) (payroll.Payroll, error) {
	var created payroll.Payroll
	err := r.inTx(ctx, func(q database.Querier) error {
		query := `
			INSERT INTO payrolls (
				id, employee_id, store_id, start_date, end_date,
				total_hours, regular_hours, overtime_hours, night_hours,
				regular_wage, overtime_wage, night_work_wage, weekly_allowance, gross_wage,
				tax_policy_type, tax_rate, tax_amount, deductions, net_wage,
				status, payment_date, cancel_reason, confirmed_at, version,
				created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
				$14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26
			) RETURNING ` + payrollColumns

		var err error
		created, err = scanPayroll(q.QueryRow(ctx, query,
			p.ID, p.EmployeeID, p.StoreID, p.StartDate, p.EndDate,
			p.TotalHours, p.RegularHours, p.OvertimeHours, p.NightHours,
			p.RegularWage, p.OvertimeWage, p.NightWorkWage, p.WeeklyAllowance, p.GrossWage,
			p.TaxPolicyType, p.TaxRate, p.TaxAmount, p.Deductions, p.NetWage,
			p.Status, p.PaymentDate, p.CancelReason, p.ConfirmedAt, p.Version,
			p.CreatedAt, p.UpdatedAt,
		))
		if err != nil {
			if isUniqueViolation(err, "payrolls_active_period_idx") {
				return payroll.ErrPayrollVersionConflict
			}
			return fmt.Errorf("failed to insert payroll: %w", err)
		}

		if err := insertDetails(ctx, q, p.ID, p.Details); err != nil {
			return err
		}
		created.Details = p.Details
		return nil
	})
	if err != nil {
		return payroll.Payroll{}, err
	}

	return created, nil
}

// GetByID implements payroll.PayrollRepository.
func (r *payrollRepository) GetByID(ctx context.Context, id string) (payroll.Payroll, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payrollColumns + ` FROM payrolls WHERE id = $1`

	p, err := scanPayroll(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Payroll{}, payroll.ErrPayrollNotFound
		}
		return payroll.Payroll{}, fmt.Errorf("failed to get payroll: %w", err)
	}

	p.Details, err = getDetails(ctx, q, p.ID)
	if err != nil {
		return payroll.Payroll{}, err
	}

	return p, nil
}

// GetActiveByPeriod implements payroll.PayrollRepository.
func (r *payrollRepository) GetActiveByPeriod(ctx context.Context, employeeID string, storeID string, startDate time.Time, endDate time.Time) (*payroll.Payroll, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + payrollColumns + `
		FROM payrolls
		WHERE employee_id = $1
		  AND store_id = $2
		  AND start_date = $3
		  AND end_date = $4
		  AND status <> 'CANCELLED'
		FOR UPDATE
	`

	p, err := scanPayroll(q.QueryRow(ctx, query, employeeID, storeID, startDate, endDate))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payroll by period: %w", err)
	}

	return &p, nil
}

// Update implements payroll.PayrollRepository.
func (r *payrollRepository) Update(ctx context.Context, p payroll.Payroll, replaceDetails bool) (payroll.Payroll, error) {
	var updated payroll.Payroll
	err := r.inTx(ctx, func(q database.Querier) error {
		query := `
			UPDATE payrolls SET
				total_hours = $3, regular_hours = $4, overtime_hours = $5, night_hours = $6,
				regular_wage = $7, overtime_wage = $8, night_work_wage = $9,
				weekly_allowance = $10, gross_wage = $11,
				tax_policy_type = $12, tax_rate = $13, tax_amount = $14,
				deductions = $15, net_wage = $16,
				status = $17, payment_date = $18, cancel_reason = $19, confirmed_at = $20,
				updated_at = $21,
				version = version + 1
			WHERE id = $1 AND version = $2
			RETURNING ` + payrollColumns

		var err error
		updated, err = scanPayroll(q.QueryRow(ctx, query,
			p.ID, p.Version,
			p.TotalHours, p.RegularHours, p.OvertimeHours, p.NightHours,
			p.RegularWage, p.OvertimeWage, p.NightWorkWage,
			p.WeeklyAllowance, p.GrossWage,
			p.TaxPolicyType, p.TaxRate, p.TaxAmount,
			p.Deductions, p.NetWage,
			p.Status, p.PaymentDate, p.CancelReason, p.ConfirmedAt,
			p.UpdatedAt,
		))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return r.missingOrStale(ctx, q, p.ID)
			}
			return fmt.Errorf("failed to update payroll: %w", err)
		}

		if !replaceDetails {
			updated.Details = p.Details
			return nil
		}

		if _, err := q.Exec(ctx, `DELETE FROM payroll_details WHERE payroll_id = $1`, p.ID); err != nil {
			return fmt.Errorf("failed to delete payroll details: %w", err)
		}
		if err := insertDetails(ctx, q, p.ID, p.Details); err != nil {
			return err
		}
		updated.Details = p.Details
		return nil
	})
	if err != nil {
		return payroll.Payroll{}, err
	}

	return updated, nil
}

// missingOrStale tells a deleted payroll apart from a lost compare-and-set.
func (r *payrollRepository) missingOrStale(ctx context.Context, q database.Querier, id string) error {
	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM payrolls WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check payroll: %w", err)
	}
	if !exists {
		return payroll.ErrPayrollNotFound
	}
	return payroll.ErrPayrollVersionConflict
}

// List implements payroll.PayrollRepository.
func (r *payrollRepository) List(ctx context.Context, filter payroll.PayrollFilter) ([]payroll.Payroll, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "1 = 1"
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		baseWhere += fmt.Sprintf(" AND employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.StoreID != nil && *filter.StoreID != "" {
		baseWhere += fmt.Sprintf(" AND store_id = $%d", argIdx)
		args = append(args, *filter.StoreID)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM payrolls WHERE `+baseWhere, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count payrolls: %w", err)
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM payrolls
		WHERE %s
		ORDER BY start_date DESC, created_at DESC
		LIMIT $%d OFFSET $%d
	`, payrollColumns, baseWhere, argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payrolls: %w", err)
	}
	defer rows.Close()

	var payrolls []payroll.Payroll
	for rows.Next() {
		p, err := scanPayroll(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll: %w", err)
		}
		payrolls = append(payrolls, p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating payrolls: %w", err)
	}

	return payrolls, total, nil
}

// inTx runs fn in the caller's transaction, or in a new one when there is none,
// so a payroll row and its details are always written together.
func (r *payrollRepository) inTx(ctx context.Context, fn func(q database.Querier) error) error {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return fn(tx)
	}
	return WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		return fn(tx)
	})
}

func insertDetails(ctx context.Context, q database.Querier, payrollID string, details []payroll.PayrollDetail) error {
	query := `
		INSERT INTO payroll_details (
			id, payroll_id, attendance_id, work_date, start_time, end_time,
			total_hours, regular_hours, overtime_hours, night_hours,
			base_hourly_wage, regular_wage, overtime_wage, night_work_wage, daily_wage
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
		)
	`

	for _, d := range details {
		_, err := q.Exec(ctx, query,
			d.ID, payrollID, d.AttendanceID, d.WorkDate, d.StartTime, d.EndTime,
			d.TotalHours, d.RegularHours, d.OvertimeHours, d.NightHours,
			d.BaseHourlyWage, d.RegularWage, d.OvertimeWage, d.NightWorkWage, d.DailyWage,
		)
		if err != nil {
			return fmt.Errorf("failed to insert payroll detail for attendance %s: %w", d.AttendanceID, err)
		}
	}

	return nil
}

func getDetails(ctx context.Context, q database.Querier, payrollID string) ([]payroll.PayrollDetail, error) {
	query := `
		SELECT id, payroll_id, attendance_id, work_date, start_time, end_time,
			   total_hours, regular_hours, overtime_hours, night_hours,
			   base_hourly_wage, regular_wage, overtime_wage, night_work_wage, daily_wage
		FROM payroll_details
		WHERE payroll_id = $1
		ORDER BY start_time ASC
	`

	rows, err := q.Query(ctx, query, payrollID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payroll details: %w", err)
	}
	defer rows.Close()

	var details []payroll.PayrollDetail
	for rows.Next() {
		var d payroll.PayrollDetail
		if err := rows.Scan(
			&d.ID, &d.PayrollID, &d.AttendanceID, &d.WorkDate, &d.StartTime, &d.EndTime,
			&d.TotalHours, &d.RegularHours, &d.OvertimeHours, &d.NightHours,
			&d.BaseHourlyWage, &d.RegularWage, &d.OvertimeWage, &d.NightWorkWage, &d.DailyWage,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payroll detail: %w", err)
		}
		details = append(details, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payroll details: %w", err)
	}

	return details, nil
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}
