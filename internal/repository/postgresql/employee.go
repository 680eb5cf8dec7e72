package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/albamate/albamate-backend/internal/domain/employee"
	"github.com/albamate/albamate-backend/internal/pkg/database"
)

type employeeRepository struct {
	db *database.DB
}

// Exists implements employee.EmployeeRepository.
func (r *employeeRepository) Exists(ctx context.Context, employeeID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM employees WHERE id = $1 AND deleted_at IS NULL)`,
		employeeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check employee: %w", err)
	}

	return exists, nil
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepository{db: db}
}

type wageAssignmentRepository struct {
	db *database.DB
}

// GetHourlyWage implements employee.WageAssignmentRepository.
func (r *wageAssignmentRepository) GetHourlyWage(ctx context.Context, employeeID string, storeID string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT hourly_wage
		FROM wage_assignments
		WHERE employee_id = $1
		  AND store_id = $2
		  AND active
	`

	var wage int64
	if err := q.QueryRow(ctx, query, employeeID, storeID).Scan(&wage); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, employee.ErrWageAssignmentNotFound
		}
		return 0, fmt.Errorf("failed to get hourly wage: %w", err)
	}

	return wage, nil
}

// ListActive implements employee.WageAssignmentRepository.
func (r *wageAssignmentRepository) ListActive(ctx context.Context) ([]employee.WageAssignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT wa.employee_id, wa.store_id, wa.hourly_wage, wa.active, wa.updated_at
		FROM wage_assignments wa
		JOIN employees e ON e.id = wa.employee_id
		WHERE wa.active
		  AND e.deleted_at IS NULL
		ORDER BY wa.store_id, wa.employee_id
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list wage assignments: %w", err)
	}
	defer rows.Close()

	var assignments []employee.WageAssignment
	for rows.Next() {
		var wa employee.WageAssignment
		if err := rows.Scan(&wa.EmployeeID, &wa.StoreID, &wa.HourlyWage, &wa.Active, &wa.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan wage assignment: %w", err)
		}
		assignments = append(assignments, wa)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wage assignments: %w", err)
	}

	return assignments, nil
}

func NewWageAssignmentRepository(db *database.DB) employee.WageAssignmentRepository {
	return &wageAssignmentRepository{db: db}
}
