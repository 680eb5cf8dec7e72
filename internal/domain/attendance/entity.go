package attendance

import (
	"time"

	"github.com/albamate/albamate-backend/internal/pkg/geo"
)

// State is the per-day attendance state of an employee.
type State string

const (
	StateNoRecord State = "NO_RECORD"
	StateOpen     State = "OPEN"
	StateClosed   State = "CLOSED"
)

type Attendance struct {
	ID         string
	EmployeeID string
	StoreID    string

	// WorkDate is the calendar day of CheckInTime in the engine time zone,
	// truncated to midnight. One record per employee per WorkDate.
	WorkDate time.Time

	// Absolute instants, stored in UTC
	CheckInTime  time.Time
	CheckOutTime *time.Time

	CheckInLatitude   *float64
	CheckInLongitude  *float64
	CheckOutLatitude  *float64
	CheckOutLongitude *float64
	LocationVerified  bool

	// Snapshot of the store hourly wage at check-in; later wage changes never touch it.
	AppliedHourlyWage int64

	// Set only for records registered by a store master.
	RegisteredBy *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// StateOf maps a possibly missing record to its state.
func StateOf(a *Attendance) State {
	switch {
	case a == nil:
		return StateNoRecord
	case a.CheckOutTime == nil:
		return StateOpen
	default:
		return StateClosed
	}
}

func (a Attendance) IsOpen() bool {
	return a.CheckOutTime == nil
}

func (a Attendance) CheckInCoordinate() *geo.Coordinate {
	return geo.NewCoordinate(a.CheckInLatitude, a.CheckInLongitude)
}

func (a Attendance) CheckOutCoordinate() *geo.Coordinate {
	return geo.NewCoordinate(a.CheckOutLatitude, a.CheckOutLongitude)
}

// WorkedMinutes counts whole minutes between check-in and check-out; 0 while open.
func (a Attendance) WorkedMinutes() int64 {
	if a.CheckOutTime == nil || !a.CheckOutTime.After(a.CheckInTime) {
		return 0
	}
	return int64(a.CheckOutTime.Sub(a.CheckInTime) / time.Minute)
}

// WorkingHours is WorkedMinutes / 60 with the fraction kept, or nil while open.
func (a Attendance) WorkingHours() *float64 {
	if a.CheckOutTime == nil {
		return nil
	}
	h := float64(a.WorkedMinutes()) / 60.0
	return &h
}

// WorkDateOf truncates t to midnight of its calendar day in loc.
func WorkDateOf(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
