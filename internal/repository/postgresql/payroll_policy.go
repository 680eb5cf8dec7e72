package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/albamate/albamate-backend/internal/domain/payroll"
	"github.com/albamate/albamate-backend/internal/pkg/database"
)

type payrollPolicyRepository struct {
	db *database.DB
}

const policyColumns = `
	store_id, tax_policy_type, night_work_rate, night_work_start_time, night_work_end_time,
	overtime_rate, regular_hours_per_day, weekly_allowance_enabled, insurance_tax_rate,
	created_at, updated_at`

func scanPolicy(row pgx.Row) (payroll.PayrollPolicy, error) {
	var p payroll.PayrollPolicy
	err := row.Scan(
		&p.StoreID, &p.TaxPolicyType, &p.NightWorkRate, &p.NightWorkStartTime, &p.NightWorkEndTime,
		&p.OvertimeRate, &p.RegularHoursPerDay, &p.WeeklyAllowanceEnabled, &p.InsuranceTaxRate,
		&p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

// Get implements payroll.PolicyRepository.
func (r *payrollPolicyRepository) Get(ctx context.Context, storeID string) (payroll.PayrollPolicy, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + policyColumns + ` FROM payroll_policies WHERE store_id = $1`

	p, err := scanPolicy(q.QueryRow(ctx, query, storeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollPolicy{}, payroll.ErrPolicyNotFound
		}
		return payroll.PayrollPolicy{}, fmt.Errorf("failed to get payroll policy: %w", err)
	}

	return p, nil
}

// Upsert implements payroll.PolicyRepository.
func (r *payrollPolicyRepository) Upsert(ctx context.Context, p payroll.PayrollPolicy) (payroll.PayrollPolicy, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_policies (
			store_id, tax_policy_type, night_work_rate, night_work_start_time, night_work_end_time,
			overtime_rate, regular_hours_per_day, weekly_allowance_enabled, insurance_tax_rate,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (store_id) DO UPDATE SET
			tax_policy_type = EXCLUDED.tax_policy_type,
			night_work_rate = EXCLUDED.night_work_rate,
			night_work_start_time = EXCLUDED.night_work_start_time,
			night_work_end_time = EXCLUDED.night_work_end_time,
			overtime_rate = EXCLUDED.overtime_rate,
			regular_hours_per_day = EXCLUDED.regular_hours_per_day,
			weekly_allowance_enabled = EXCLUDED.weekly_allowance_enabled,
			insurance_tax_rate = EXCLUDED.insurance_tax_rate,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + policyColumns

	saved, err := scanPolicy(q.QueryRow(ctx, query,
		p.StoreID, p.TaxPolicyType, p.NightWorkRate, p.NightWorkStartTime, p.NightWorkEndTime,
		p.OvertimeRate, p.RegularHoursPerDay, p.WeeklyAllowanceEnabled, p.InsuranceTaxRate,
		p.CreatedAt, p.UpdatedAt,
	))
	if err != nil {
		return payroll.PayrollPolicy{}, fmt.Errorf("failed to upsert payroll policy: %w", err)
	}

	return saved, nil
}

func NewPayrollPolicyRepository(db *database.DB) payroll.PolicyRepository {
	return &payrollPolicyRepository{db: db}
}
