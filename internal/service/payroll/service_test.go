package payroll

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albamate/albamate-backend/internal/domain/attendance"
	"github.com/albamate/albamate-backend/internal/domain/payroll"
	"github.com/albamate/albamate-backend/internal/domain/user"
	"github.com/albamate/albamate-backend/internal/pkg/apperror"
	"github.com/albamate/albamate-backend/internal/pkg/validator"
)

type payrollFixture struct {
	svc         *PayrollServiceImpl
	payrolls    *memPayrollRepo
	policies    *memPolicyRepo
	attendances *fakeAttendance
}

func newPayrollFixture(t *testing.T, records ...attendance.Attendance) *payrollFixture {
	t.Helper()
	f := &payrollFixture{
		payrolls:    newMemPayrollRepo(),
		policies:    newMemPolicyRepo(),
		attendances: &fakeAttendance{records: records},
	}
	svc := NewPayrollService(
		fakeTx{},
		f.payrolls,
		f.policies,
		f.attendances,
		masterAuthz(),
		NewThresholdAllowance(15, 8),
		NewConfiguredTaxRates(0.033, nil),
		kst,
	).(*PayrollServiceImpl)
	svc.now = func() time.Time { return time.Date(2024, 4, 1, 10, 0, 0, 0, kst) }
	f.svc = svc
	return f
}

func marchRequest() payroll.CalculatePayrollRequest {
	return payroll.CalculatePayrollRequest{
		EmployeeID: "emp-1",
		StoreID:    "store-1",
		StartDate:  "2024-03-01",
		EndDate:    "2024-03-31",
	}
}

func tenHourDay(id string, day int) attendance.Attendance {
	in := time.Date(2024, 3, day, 9, 0, 0, 0, kst)
	out := time.Date(2024, 3, day, 19, 0, 0, 0, kst).UTC()
	return closedRecord(id, in, out, 10000)
}

func TestCalculate_SingleDay(t *testing.T) {
	f := newPayrollFixture(t, tenHourDay("att-1", 4))
	ctx := masterCtx(t)

	resp, err := f.svc.Calculate(ctx, marchRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(80000), resp.RegularWage)
	assert.Equal(t, int64(30000), resp.OvertimeWage)
	assert.Equal(t, int64(0), resp.NightWorkWage)
	assert.Equal(t, int64(0), resp.WeeklyAllowance)
	assert.Equal(t, int64(110000), resp.GrossWage)
	assert.Equal(t, int64(3630), resp.TaxAmount)
	assert.Equal(t, int64(106370), resp.NetWage)
	assert.Equal(t, "DRAFT", resp.Status)
	assert.Equal(t, 1, resp.Version)
	require.Len(t, resp.Details, 1)
	assert.Equal(t, "att-1", resp.Details[0].AttendanceID)
}

func TestCalculate_TotalsAndAllowance(t *testing.T) {
	// Mon-Wed of one week: 30h, plus one day the next week
	f := newPayrollFixture(t,
		tenHourDay("a1", 4), tenHourDay("a2", 5), tenHourDay("a3", 6), tenHourDay("a4", 11),
	)
	ctx := masterCtx(t)

	req := marchRequest()
	req.Deductions = 5000
	resp, err := f.svc.Calculate(ctx, req)
	require.NoError(t, err)

	var daily int64
	for _, d := range resp.Details {
		daily += d.DailyWage
	}
	assert.Equal(t, resp.RegularWage+resp.OvertimeWage+resp.NightWorkWage, daily)
	assert.Equal(t, resp.RegularWage+resp.OvertimeWage+resp.NightWorkWage+resp.WeeklyAllowance, resp.GrossWage)
	assert.Equal(t, resp.GrossWage-resp.TaxAmount-resp.Deductions, resp.NetWage)

	// 30h of 40 -> 0.75 × 8h × 10000
	assert.Equal(t, int64(60000), resp.WeeklyAllowance)
	assert.Equal(t, "40.00", resp.TotalHours)
	assert.Equal(t, int64(5000), resp.Deductions)
}

func TestCalculate_AllowanceDisabled(t *testing.T) {
	f := newPayrollFixture(t, tenHourDay("a1", 4), tenHourDay("a2", 5))
	ctx := masterCtx(t)

	policy := payroll.DefaultPolicy("store-1")
	policy.WeeklyAllowanceEnabled = false
	_, err := f.policies.Upsert(ctx, policy)
	require.NoError(t, err)

	resp, err := f.svc.Calculate(ctx, marchRequest())
	require.NoError(t, err)
	assert.Zero(t, resp.WeeklyAllowance)
}

func TestCalculate_PeriodBoundsAreInclusive(t *testing.T) {
	first := closedRecord("first", time.Date(2024, 3, 1, 0, 0, 0, 0, kst), time.Date(2024, 3, 1, 4, 0, 0, 0, kst).UTC(), 10000)
	last := closedRecord("last", time.Date(2024, 3, 31, 23, 0, 0, 0, kst), time.Date(2024, 4, 1, 2, 0, 0, 0, kst).UTC(), 10000)
	outside := closedRecord("outside", time.Date(2024, 4, 1, 0, 0, 0, 0, kst), time.Date(2024, 4, 1, 1, 0, 0, 0, kst).UTC(), 10000)

	f := newPayrollFixture(t, first, last, outside)
	resp, err := f.svc.Calculate(masterCtx(t), marchRequest())
	require.NoError(t, err)

	ids := []string{}
	for _, d := range resp.Details {
		ids = append(ids, d.AttendanceID)
	}
	assert.ElementsMatch(t, []string{"first", "last"}, ids)
}

func TestCalculate_RecomputeKeepsDraftIdentity(t *testing.T) {
	f := newPayrollFixture(t, tenHourDay("a1", 4))
	ctx := masterCtx(t)

	first, err := f.svc.Calculate(ctx, marchRequest())
	require.NoError(t, err)

	f.attendances.records = append(f.attendances.records, tenHourDay("a2", 5))
	second, err := f.svc.Calculate(ctx, marchRequest())
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Version+1, second.Version)
	assert.Len(t, second.Details, 2)
	assert.Len(t, f.payrolls.payrolls, 1)
}

func TestCalculate_RecomputeUnchangedIsStable(t *testing.T) {
	f := newPayrollFixture(t, tenHourDay("a1", 4), tenHourDay("a2", 5))
	ctx := masterCtx(t)

	first, err := f.svc.Calculate(ctx, marchRequest())
	require.NoError(t, err)
	stored, err := f.payrolls.GetByID(ctx, first.ID)
	require.NoError(t, err)
	firstDetails := append([]payroll.PayrollDetail(nil), stored.Details...)

	second, err := f.svc.Calculate(ctx, marchRequest())
	require.NoError(t, err)
	stored, err = f.payrolls.GetByID(ctx, second.ID)
	require.NoError(t, err)

	require.Len(t, firstDetails, 2)
	assert.NotEmpty(t, firstDetails[0].ID)
	assert.NotEqual(t, firstDetails[0].ID, firstDetails[1].ID)
	assert.Equal(t, firstDetails, stored.Details)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Details, second.Details)
	assert.Equal(t, first.TotalHours, second.TotalHours)
	assert.Equal(t, first.GrossWage, second.GrossWage)
	assert.Equal(t, first.TaxAmount, second.TaxAmount)
	assert.Equal(t, first.NetWage, second.NetWage)
	assert.Equal(t, first.Version+1, second.Version)
}

func TestCalculate_RequiresMasterOfStore(t *testing.T) {
	t.Run("master of another store", func(t *testing.T) {
		f := newPayrollFixture(t, tenHourDay("a1", 4))
		_, err := f.svc.Calculate(callerCtx(t, "master-2"), marchRequest())
		assert.ErrorIs(t, err, user.ErrStoreMasterRequired)
		assert.Empty(t, f.payrolls.payrolls)
	})

	t.Run("no caller", func(t *testing.T) {
		f := newPayrollFixture(t, tenHourDay("a1", 4))
		_, err := f.svc.Calculate(context.Background(), marchRequest())
		assert.ErrorIs(t, err, user.ErrUserIDRequired)
		assert.Empty(t, f.payrolls.payrolls)
	})

	t.Run("scheduled recalculation needs no caller", func(t *testing.T) {
		f := newPayrollFixture(t, tenHourDay("a1", 4))
		resp, err := f.svc.Recalculate(context.Background(), marchRequest())
		require.NoError(t, err)
		assert.Equal(t, "DRAFT", resp.Status)
	})
}

func TestCalculate_ConfirmedPeriodIsLocked(t *testing.T) {
	f := newPayrollFixture(t, tenHourDay("a1", 4))
	ctx := masterCtx(t)

	draft, err := f.svc.Calculate(ctx, marchRequest())
	require.NoError(t, err)
	_, err = f.svc.Confirm(ctx, draft.ID)
	require.NoError(t, err)

	_, err = f.svc.Calculate(ctx, marchRequest())
	assert.ErrorIs(t, err, payroll.ErrPayrollAlreadyConfirmed)
}

func TestCalculate_CancelledPeriodGetsNewDraft(t *testing.T) {
	f := newPayrollFixture(t, tenHourDay("a1", 4))
	ctx := masterCtx(t)

	draft, err := f.svc.Calculate(ctx, marchRequest())
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, draft.ID, payroll.CancelPayrollRequest{Reason: "wrong period"})
	require.NoError(t, err)

	fresh, err := f.svc.Calculate(ctx, marchRequest())
	require.NoError(t, err)
	assert.NotEqual(t, draft.ID, fresh.ID)
	assert.Equal(t, "DRAFT", fresh.Status)
}

func TestCalculate_Validation(t *testing.T) {
	f := newPayrollFixture(t)
	req := marchRequest()
	req.StartDate, req.EndDate = req.EndDate, req.StartDate

	_, err := f.svc.Calculate(masterCtx(t), req)
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "end_date", verrs[0].Field)
	assert.Empty(t, f.payrolls.payrolls)
}

func TestCalculate_InsuranceBased(t *testing.T) {
	ctx := masterCtx(t)

	t.Run("uses store rate", func(t *testing.T) {
		f := newPayrollFixture(t, tenHourDay("a1", 4))
		rate := decimal.RequireFromString("0.1")
		policy := payroll.DefaultPolicy("store-1")
		policy.TaxPolicyType = payroll.TaxPolicyInsuranceBased
		policy.InsuranceTaxRate = &rate
		_, err := f.policies.Upsert(ctx, policy)
		require.NoError(t, err)

		resp, err := f.svc.Calculate(ctx, marchRequest())
		require.NoError(t, err)
		assert.Equal(t, int64(11000), resp.TaxAmount)
		assert.Equal(t, "INSURANCE_BASED", resp.TaxPolicyType)
	})

	t.Run("no rate anywhere", func(t *testing.T) {
		f := newPayrollFixture(t, tenHourDay("a1", 4))
		policy := payroll.DefaultPolicy("store-1")
		policy.TaxPolicyType = payroll.TaxPolicyInsuranceBased
		_, err := f.policies.Upsert(ctx, policy)
		require.NoError(t, err)

		_, err = f.svc.Calculate(ctx, marchRequest())
		assert.ErrorIs(t, err, payroll.ErrInsuranceRateUnavailable)
		assert.Empty(t, f.payrolls.payrolls)
	})
}

func TestLifecycle(t *testing.T) {
	ctx := masterCtx(t)

	t.Run("draft to confirmed to paid", func(t *testing.T) {
		f := newPayrollFixture(t, tenHourDay("a1", 4))
		draft, err := f.svc.Calculate(ctx, marchRequest())
		require.NoError(t, err)

		confirmed, err := f.svc.Confirm(ctx, draft.ID)
		require.NoError(t, err)
		assert.Equal(t, "CONFIRMED", confirmed.Status)
		assert.NotNil(t, confirmed.ConfirmedAt)

		paid, err := f.svc.MarkPaid(ctx, draft.ID, payroll.MarkPaidRequest{PaymentDate: "2024-04-10"})
		require.NoError(t, err)
		assert.Equal(t, "PAID", paid.Status)
		require.NotNil(t, paid.PaymentDate)
		assert.Equal(t, "2024-04-10", *paid.PaymentDate)
		assert.Len(t, paid.Details, 1)
	})

	t.Run("paid cannot be cancelled", func(t *testing.T) {
		f := newPayrollFixture(t, tenHourDay("a1", 4))
		draft, err := f.svc.Calculate(ctx, marchRequest())
		require.NoError(t, err)
		_, err = f.svc.Confirm(ctx, draft.ID)
		require.NoError(t, err)
		_, err = f.svc.MarkPaid(ctx, draft.ID, payroll.MarkPaidRequest{PaymentDate: "2024-04-10"})
		require.NoError(t, err)

		_, err = f.svc.Cancel(ctx, draft.ID, payroll.CancelPayrollRequest{Reason: "late"})
		assert.ErrorIs(t, err, payroll.ErrInvalidStatusTransition)
		assert.Contains(t, err.Error(), "PAID -> CANCELLED")
	})

	t.Run("draft cannot be paid", func(t *testing.T) {
		f := newPayrollFixture(t, tenHourDay("a1", 4))
		draft, err := f.svc.Calculate(ctx, marchRequest())
		require.NoError(t, err)

		_, err = f.svc.MarkPaid(ctx, draft.ID, payroll.MarkPaidRequest{PaymentDate: "2024-04-10"})
		assert.ErrorIs(t, err, payroll.ErrInvalidStatusTransition)
		assert.Equal(t, apperror.CodeInvalidState, apperror.CodeOf(err))
	})

	t.Run("cancelled rejects confirm", func(t *testing.T) {
		f := newPayrollFixture(t, tenHourDay("a1", 4))
		draft, err := f.svc.Calculate(ctx, marchRequest())
		require.NoError(t, err)

		cancelled, err := f.svc.Cancel(ctx, draft.ID, payroll.CancelPayrollRequest{Reason: " duplicate run "})
		require.NoError(t, err)
		require.NotNil(t, cancelled.CancelReason)
		assert.Equal(t, " duplicate run ", *cancelled.CancelReason)

		_, err = f.svc.Confirm(ctx, draft.ID)
		assert.ErrorIs(t, err, payroll.ErrInvalidStatusTransition)
	})

	t.Run("cancel needs a reason", func(t *testing.T) {
		f := newPayrollFixture(t, tenHourDay("a1", 4))
		draft, err := f.svc.Calculate(ctx, marchRequest())
		require.NoError(t, err)

		_, err = f.svc.Cancel(ctx, draft.ID, payroll.CancelPayrollRequest{})
		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Equal(t, "reason", verrs[0].Field)

		stored, err := f.payrolls.GetByID(ctx, draft.ID)
		require.NoError(t, err)
		assert.Equal(t, payroll.PayrollStatusDraft, stored.Status)
	})

	t.Run("pay needs a date", func(t *testing.T) {
		f := newPayrollFixture(t)
		_, err := f.svc.MarkPaid(ctx, "any", payroll.MarkPaidRequest{})
		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Equal(t, "payment_date", verrs[0].Field)
	})

	t.Run("master of another store cannot move it", func(t *testing.T) {
		f := newPayrollFixture(t, tenHourDay("a1", 4))
		draft, err := f.svc.Calculate(ctx, marchRequest())
		require.NoError(t, err)

		other := callerCtx(t, "master-2")
		_, err = f.svc.Confirm(other, draft.ID)
		assert.ErrorIs(t, err, user.ErrStoreMasterRequired)
		_, err = f.svc.Cancel(other, draft.ID, payroll.CancelPayrollRequest{Reason: "not mine"})
		assert.ErrorIs(t, err, user.ErrStoreMasterRequired)

		stored, err := f.payrolls.GetByID(ctx, draft.ID)
		require.NoError(t, err)
		assert.Equal(t, payroll.PayrollStatusDraft, stored.Status)
		assert.Equal(t, 1, stored.Version)
	})

	t.Run("unknown payroll", func(t *testing.T) {
		f := newPayrollFixture(t)
		_, err := f.svc.Confirm(ctx, "missing")
		assert.ErrorIs(t, err, payroll.ErrPayrollNotFound)
	})
}

// versionRacingRepo bumps the stored version between read and write.
type versionRacingRepo struct {
	*memPayrollRepo
}

func (r versionRacingRepo) GetByID(ctx context.Context, id string) (payroll.Payroll, error) {
	p, err := r.memPayrollRepo.GetByID(ctx, id)
	if err == nil {
		r.memPayrollRepo.bumpVersion(id)
	}
	return p, err
}

func TestLifecycle_VersionConflict(t *testing.T) {
	f := newPayrollFixture(t, tenHourDay("a1", 4))
	ctx := masterCtx(t)

	draft, err := f.svc.Calculate(ctx, marchRequest())
	require.NoError(t, err)

	f.svc.PayrollRepository = versionRacingRepo{f.payrolls}
	_, err = f.svc.Confirm(ctx, draft.ID)
	assert.ErrorIs(t, err, payroll.ErrPayrollVersionConflict)
	assert.Equal(t, apperror.CodeConflict, apperror.CodeOf(err))

	stored, err := f.payrolls.GetByID(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, payroll.PayrollStatusDraft, stored.Status)
}

func TestListPayrolls(t *testing.T) {
	f := newPayrollFixture(t, tenHourDay("a1", 4))
	ctx := masterCtx(t)

	_, err := f.svc.Calculate(ctx, marchRequest())
	require.NoError(t, err)

	status := "DRAFT"
	resp, err := f.svc.ListPayrolls(ctx, payroll.PayrollFilter{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.TotalCount)
	assert.Equal(t, 1, resp.TotalPages)
	assert.Empty(t, resp.Payrolls[0].Details)

	got, err := f.svc.GetPayroll(ctx, resp.Payrolls[0].ID)
	require.NoError(t, err)
	assert.Len(t, got.Details, 1)
}
