package postgresql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albamate/albamate-backend/internal/domain/attendance"
	"github.com/albamate/albamate-backend/internal/domain/employee"
	"github.com/albamate/albamate-backend/internal/domain/payroll"
	"github.com/albamate/albamate-backend/internal/domain/store"
	"github.com/albamate/albamate-backend/internal/repository/postgresql"
)

func newAttendance(t *testing.T, in time.Time, out *time.Time) attendance.Attendance {
	t.Helper()
	id, err := uuid.NewV7()
	require.NoError(t, err)
	return attendance.Attendance{
		ID:                id.String(),
		EmployeeID:        "emp-1",
		StoreID:           "store-1",
		WorkDate:          attendance.WorkDateOf(in, time.UTC),
		CheckInTime:       in,
		CheckOutTime:      out,
		AppliedHourlyWage: 10000,
		CreatedAt:         in,
		UpdatedAt:         in,
	}
}

func TestCollaboratorRepositories(t *testing.T) {
	setupTestData(t)
	ctx := context.Background()

	loc, err := postgresql.NewStoreRepository(testDB).GetLocation(ctx, "store-1")
	require.NoError(t, err)
	assert.InDelta(t, 100, loc.RadiusMeters, 1e-9)

	_, err = postgresql.NewStoreRepository(testDB).GetLocation(ctx, "nowhere")
	assert.ErrorIs(t, err, store.ErrStoreNotFound)

	exists, err := postgresql.NewEmployeeRepository(testDB).Exists(ctx, "emp-1")
	require.NoError(t, err)
	assert.True(t, exists)

	wages := postgresql.NewWageAssignmentRepository(testDB)
	wage, err := wages.GetHourlyWage(ctx, "emp-1", "store-1")
	require.NoError(t, err)
	assert.Equal(t, int64(10000), wage)

	_, err = wages.GetHourlyWage(ctx, "emp-1", "nowhere")
	assert.ErrorIs(t, err, employee.ErrWageAssignmentNotFound)

	active, err := wages.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	authz := postgresql.NewAuthorizationChecker(testDB)
	isMaster, err := authz.IsStoreMaster(ctx, "master-1", "store-1")
	require.NoError(t, err)
	assert.True(t, isMaster)
	isMaster, err = authz.IsStoreMaster(ctx, "emp-1", "store-1")
	require.NoError(t, err)
	assert.False(t, isMaster)
}

func TestAttendanceRepository(t *testing.T) {
	setupTestData(t)
	ctx := context.Background()
	repo := postgresql.NewAttendanceRepository(testDB)

	in := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	created, err := repo.Create(ctx, newAttendance(t, in, nil))
	require.NoError(t, err)

	t.Run("same work date is a duplicate check-in", func(t *testing.T) {
		_, err := repo.Create(ctx, newAttendance(t, in.Add(time.Hour), nil))
		assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)
	})

	t.Run("open record lookup", func(t *testing.T) {
		open, err := repo.GetOpenRecord(ctx, "emp-1")
		require.NoError(t, err)
		require.NotNil(t, open)
		assert.Equal(t, created.ID, open.ID)
	})

	t.Run("close and list", func(t *testing.T) {
		out := in.Add(8 * time.Hour)
		created.CheckOutTime = &out
		created.UpdatedAt = out
		require.NoError(t, repo.Update(ctx, created))

		open, err := repo.GetOpenRecord(ctx, "emp-1")
		require.NoError(t, err)
		assert.Nil(t, open)

		closed, err := repo.ListClosedByPeriod(ctx, "emp-1", "store-1", in, in.AddDate(0, 0, 1))
		require.NoError(t, err)
		require.Len(t, closed, 1)
		assert.Equal(t, int64(480), closed[0].WorkedMinutes())

		byDate, err := repo.GetByEmployeeAndDate(ctx, "emp-1", created.WorkDate)
		require.NoError(t, err)
		require.NotNil(t, byDate)

		emp := "emp-1"
		list, total, err := repo.List(ctx, attendance.AttendanceFilter{EmployeeID: &emp, Page: 1, Limit: 20})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Len(t, list, 1)
	})

	t.Run("check-out before check-in is refused by the schema", func(t *testing.T) {
		nextDay := in.AddDate(0, 0, 1)
		early := nextDay.Add(-time.Minute)
		_, err := repo.Create(ctx, newAttendance(t, nextDay, &early))
		assert.Error(t, err)
	})

	t.Run("missing record", func(t *testing.T) {
		_, err := repo.GetByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
	})
}

func TestPayrollRepository(t *testing.T) {
	setupTestData(t)
	ctx := context.Background()
	attendances := postgresql.NewAttendanceRepository(testDB)
	repo := postgresql.NewPayrollRepository(testDB)
	tx := postgresql.NewTransactor(testDB)

	in := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	out := in.Add(10 * time.Hour)
	att, err := attendances.Create(ctx, newAttendance(t, in, &out))
	require.NoError(t, err)

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	p := payroll.Payroll{
		ID:            uuid.NewString(),
		EmployeeID:    "emp-1",
		StoreID:       "store-1",
		StartDate:     start,
		EndDate:       end,
		TotalHours:    decimal.NewFromInt(10),
		RegularHours:  decimal.NewFromInt(8),
		OvertimeHours: decimal.NewFromInt(2),
		NightHours:    decimal.Zero,
		RegularWage:   80000,
		OvertimeWage:  30000,
		GrossWage:     110000,
		TaxPolicyType: payroll.TaxPolicyFlatWithholding,
		TaxRate:       decimal.RequireFromString("0.033"),
		TaxAmount:     3630,
		NetWage:       106370,
		Status:        payroll.PayrollStatusDraft,
		Version:       1,
		CreatedAt:     out,
		UpdatedAt:     out,
		Details: []payroll.PayrollDetail{{
			ID:             uuid.NewString(),
			AttendanceID:   att.ID,
			WorkDate:       att.WorkDate,
			StartTime:      in,
			EndTime:        out,
			TotalHours:     decimal.NewFromInt(10),
			RegularHours:   decimal.NewFromInt(8),
			OvertimeHours:  decimal.NewFromInt(2),
			NightHours:     decimal.Zero,
			BaseHourlyWage: 10000,
			RegularWage:    80000,
			OvertimeWage:   30000,
			DailyWage:      110000,
		}},
	}

	created, err := repo.Create(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, 1, created.Version)

	loaded, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Details, 1)
	assert.True(t, loaded.TaxRate.Equal(decimal.RequireFromString("0.033")))
	assert.Equal(t, "2024-03-31", loaded.EndDate.Format("2006-01-02"))

	active, err := repo.GetActiveByPeriod(ctx, "emp-1", "store-1", start, end)
	require.NoError(t, err)
	require.NotNil(t, active)

	// Compare-and-set inside a transaction
	err = tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		loaded.Status = payroll.PayrollStatusConfirmed
		confirmed, err := repo.Update(txCtx, loaded, false)
		if err != nil {
			return err
		}
		assert.Equal(t, 2, confirmed.Version)
		return nil
	})
	require.NoError(t, err)

	// loaded still carries version 1
	_, err = repo.Update(ctx, loaded, false)
	assert.True(t, errors.Is(err, payroll.ErrPayrollVersionConflict))

	list, total, err := repo.List(ctx, payroll.PayrollFilter{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, payroll.PayrollStatusConfirmed, list[0].Status)
}

func TestPayrollPolicyRepository(t *testing.T) {
	setupTestData(t)
	ctx := context.Background()
	repo := postgresql.NewPayrollPolicyRepository(testDB)

	_, err := repo.Get(ctx, "store-1")
	assert.ErrorIs(t, err, payroll.ErrPolicyNotFound)

	policy := payroll.DefaultPolicy("store-1")
	policy.CreatedAt = time.Now().UTC()
	policy.UpdatedAt = policy.CreatedAt
	_, err = repo.Upsert(ctx, policy)
	require.NoError(t, err)

	rate := decimal.RequireFromString("0.094")
	policy.TaxPolicyType = payroll.TaxPolicyInsuranceBased
	policy.InsuranceTaxRate = &rate
	_, err = repo.Upsert(ctx, policy)
	require.NoError(t, err)

	stored, err := repo.Get(ctx, "store-1")
	require.NoError(t, err)
	assert.Equal(t, payroll.TaxPolicyInsuranceBased, stored.TaxPolicyType)
	require.NotNil(t, stored.InsuranceTaxRate)
	assert.True(t, stored.InsuranceTaxRate.Equal(rate))
	assert.True(t, stored.NightWorkRate.Equal(decimal.RequireFromString("1.5")))
}
