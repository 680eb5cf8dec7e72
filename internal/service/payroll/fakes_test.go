package payroll

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/require"

	"github.com/albamate/albamate-backend/internal/domain/attendance"
	"github.com/albamate/albamate-backend/internal/domain/payroll"
	"github.com/albamate/albamate-backend/internal/domain/store"
)

type fakeTx struct{}

func (fakeTx) WithinTransaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type memPayrollRepo struct {
	mu       sync.Mutex
	payrolls map[string]payroll.Payroll
}

func newMemPayrollRepo() *memPayrollRepo {
	return &memPayrollRepo{payrolls: map[string]payroll.Payroll{}}
}

func (r *memPayrollRepo) Create(ctx context.Context, p payroll.Payroll) (payroll.Payroll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payrolls[p.ID] = p
	return p, nil
}

func (r *memPayrollRepo) GetByID(ctx context.Context, id string) (payroll.Payroll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payrolls[id]
	if !ok {
		return payroll.Payroll{}, payroll.ErrPayrollNotFound
	}
	return p, nil
}

func (r *memPayrollRepo) GetActiveByPeriod(ctx context.Context, employeeID, storeID string, start, end time.Time) (*payroll.Payroll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payrolls {
		if p.EmployeeID == employeeID && p.StoreID == storeID &&
			p.StartDate.Equal(start) && p.EndDate.Equal(end) &&
			p.Status != payroll.PayrollStatusCancelled {
			found := p
			return &found, nil
		}
	}
	return nil, nil
}

func (r *memPayrollRepo) Update(ctx context.Context, p payroll.Payroll, replaceDetails bool) (payroll.Payroll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.payrolls[p.ID]
	if !ok {
		return payroll.Payroll{}, payroll.ErrPayrollNotFound
	}
	if stored.Version != p.Version {
		return payroll.Payroll{}, payroll.ErrPayrollVersionConflict
	}
	if !replaceDetails {
		p.Details = stored.Details
	}
	p.Version++
	r.payrolls[p.ID] = p
	return p, nil
}

func (r *memPayrollRepo) List(ctx context.Context, filter payroll.PayrollFilter) ([]payroll.Payroll, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []payroll.Payroll
	for _, p := range r.payrolls {
		if filter.Status != nil && string(p.Status) != *filter.Status {
			continue
		}
		p.Details = nil
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, int64(len(out)), nil
}

// bumpVersion simulates a concurrent writer.
func (r *memPayrollRepo) bumpVersion(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.payrolls[id]
	p.Version++
	r.payrolls[id] = p
}

type memPolicyRepo struct {
	mu       sync.Mutex
	policies map[string]payroll.PayrollPolicy
	upserts  int
}

func newMemPolicyRepo() *memPolicyRepo {
	return &memPolicyRepo{policies: map[string]payroll.PayrollPolicy{}}
}

func (r *memPolicyRepo) Get(ctx context.Context, storeID string) (payroll.PayrollPolicy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.policies[storeID]
	if !ok {
		return payroll.PayrollPolicy{}, payroll.ErrPolicyNotFound
	}
	return p, nil
}

func (r *memPolicyRepo) Upsert(ctx context.Context, p payroll.PayrollPolicy) (payroll.PayrollPolicy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.policies[p.StoreID] = p
	r.upserts++
	return p, nil
}

// fakeAttendance serves ListClosedByPeriod from a fixed slice; other reads are unused here.
type fakeAttendance struct {
	records []attendance.Attendance
}

func (f *fakeAttendance) ListClosedByPeriod(ctx context.Context, employeeID, storeID string, from, to time.Time) ([]attendance.Attendance, error) {
	var out []attendance.Attendance
	for _, a := range f.records {
		if a.EmployeeID == employeeID && a.StoreID == storeID && !a.IsOpen() &&
			!a.CheckInTime.Before(from) && a.CheckInTime.Before(to) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAttendance) Create(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	f.records = append(f.records, a)
	return a, nil
}

func (f *fakeAttendance) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	return attendance.Attendance{}, attendance.ErrAttendanceNotFound
}

func (f *fakeAttendance) GetOpenRecord(ctx context.Context, employeeID string) (*attendance.Attendance, error) {
	return nil, nil
}

func (f *fakeAttendance) GetByEmployeeAndDate(ctx context.Context, employeeID string, workDate time.Time) (*attendance.Attendance, error) {
	return nil, nil
}

func (f *fakeAttendance) Update(ctx context.Context, a attendance.Attendance) error {
	return nil
}

func (f *fakeAttendance) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	return f.records, int64(len(f.records)), nil
}

type fakeStores map[string]bool

func (f fakeStores) GetLocation(ctx context.Context, storeID string) (store.StoreLocation, error) {
	if !f[storeID] {
		return store.StoreLocation{}, store.ErrStoreNotFound
	}
	return store.StoreLocation{StoreID: storeID, RadiusMeters: 100}, nil
}

type fakeAuthz map[string]bool // userID|storeID -> master

func (f fakeAuthz) IsStoreMaster(ctx context.Context, userID, storeID string) (bool, error) {
	return f[userID+"|"+storeID], nil
}

func masterAuthz() fakeAuthz {
	return fakeAuthz{"master-1|store-1": true, "master-2|store-2": true}
}

// callerCtx carries a verified token for userID, as the auth middleware leaves it.
func callerCtx(t *testing.T, userID string) context.Context {
	t.Helper()
	token := jwt.New()
	require.NoError(t, token.Set("user_id", userID))
	return jwtauth.NewContext(context.Background(), token, nil)
}

func masterCtx(t *testing.T) context.Context {
	return callerCtx(t, "master-1")
}
