package attendance

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/albamate/albamate-backend/internal/domain/attendance"
	"github.com/albamate/albamate-backend/internal/domain/employee"
	"github.com/albamate/albamate-backend/internal/domain/store"
)

// fakeTx runs fn inline; the in-memory repositories are already serialized.
type fakeTx struct{}

func (fakeTx) WithinTransaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type memAttendanceRepo struct {
	mu      sync.Mutex
	records map[string]attendance.Attendance
}

func newMemAttendanceRepo() *memAttendanceRepo {
	return &memAttendanceRepo{records: map[string]attendance.Attendance{}}
}

func (r *memAttendanceRepo) Create(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.records {
		if existing.EmployeeID == a.EmployeeID && existing.WorkDate.Equal(a.WorkDate) {
			return attendance.Attendance{}, attendance.ErrAlreadyCheckedIn
		}
	}
	r.records[a.ID] = a
	return a, nil
}

func (r *memAttendanceRepo) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.records[id]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return a, nil
}

func (r *memAttendanceRepo) GetOpenRecord(ctx context.Context, employeeID string) (*attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *attendance.Attendance
	for _, a := range r.records {
		if a.EmployeeID != employeeID || !a.IsOpen() {
			continue
		}
		if latest == nil || a.CheckInTime.After(latest.CheckInTime) {
			found := a
			latest = &found
		}
	}
	return latest, nil
}

func (r *memAttendanceRepo) GetByEmployeeAndDate(ctx context.Context, employeeID string, workDate time.Time) (*attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.records {
		if a.EmployeeID == employeeID && a.WorkDate.Equal(workDate) {
			found := a
			return &found, nil
		}
	}
	return nil, nil
}

func (r *memAttendanceRepo) Update(ctx context.Context, a attendance.Attendance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[a.ID]; !ok {
		return attendance.ErrAttendanceNotFound
	}
	r.records[a.ID] = a
	return nil
}

func (r *memAttendanceRepo) ListClosedByPeriod(ctx context.Context, employeeID, storeID string, from, to time.Time) ([]attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []attendance.Attendance
	for _, a := range r.records {
		if a.EmployeeID == employeeID && a.StoreID == storeID && !a.IsOpen() &&
			!a.CheckInTime.Before(from) && a.CheckInTime.Before(to) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckInTime.Before(out[j].CheckInTime) })
	return out, nil
}

func (r *memAttendanceRepo) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []attendance.Attendance
	for _, a := range r.records {
		if filter.EmployeeID != nil && a.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.StoreID != nil && a.StoreID != *filter.StoreID {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckInTime.After(out[j].CheckInTime) })
	return out, int64(len(out)), nil
}

func (r *memAttendanceRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

type fakeEmployees map[string]bool

func (f fakeEmployees) Exists(ctx context.Context, employeeID string) (bool, error) {
	return f[employeeID], nil
}

type fakeWages map[string]int64 // employeeID|storeID -> wage

func (f fakeWages) GetHourlyWage(ctx context.Context, employeeID, storeID string) (int64, error) {
	wage, ok := f[employeeID+"|"+storeID]
	if !ok {
		return 0, employee.ErrWageAssignmentNotFound
	}
	return wage, nil
}

func (f fakeWages) ListActive(ctx context.Context) ([]employee.WageAssignment, error) {
	return nil, nil
}

type fakeStores map[string]store.StoreLocation

func (f fakeStores) GetLocation(ctx context.Context, storeID string) (store.StoreLocation, error) {
	loc, ok := f[storeID]
	if !ok {
		return store.StoreLocation{}, store.ErrStoreNotFound
	}
	return loc, nil
}

type fakeAuthz map[string]bool // userID|storeID -> master

func (f fakeAuthz) IsStoreMaster(ctx context.Context, userID, storeID string) (bool, error) {
	return f[userID+"|"+storeID], nil
}
