package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance records.
type AttendanceRepository interface {
	// Create inserts a new record. A second record for the same employee and
	// work date fails with ErrAlreadyCheckedIn.
	Create(ctx context.Context, attendance Attendance) (Attendance, error)

	// GetByID returns ErrAttendanceNotFound when missing
	GetByID(ctx context.Context, id string) (Attendance, error)

	// GetOpenRecord returns the most recent record without check-out, or nil
	GetOpenRecord(ctx context.Context, employeeID string) (*Attendance, error)

	// GetByEmployeeAndDate retrieves attendance for specific employee on specific work date.
	// Used to prevent double check-in
	GetByEmployeeAndDate(ctx context.Context, employeeID string, workDate time.Time) (*Attendance, error)

	// Update writes check-out fields of an existing record
	Update(ctx context.Context, attendance Attendance) error

	// ListClosedByPeriod returns closed records with from <= check_in_time < to, oldest first
	ListClosedByPeriod(ctx context.Context, employeeID string, storeID string, from time.Time, to time.Time) ([]Attendance, error)

	// List retrieves attendance records with filters and pagination
	List(ctx context.Context, filter AttendanceFilter) ([]Attendance, int64, error)
}
