package attendance

import "context"

// AttendanceService is the check-in/check-out state machine
type AttendanceService interface {
	// CheckIn opens today's record without a geofence check
	CheckIn(ctx context.Context, req CheckInRequest) (AttendanceResponse, error)

	// CheckInWithVerification opens today's record only inside the store radius
	CheckInWithVerification(ctx context.Context, req CheckInRequest) (AttendanceResponse, error)

	// CheckOut closes today's open record
	CheckOut(ctx context.Context, req CheckOutRequest) (AttendanceResponse, error)

	// CheckOutWithVerification closes today's open record only inside the store radius
	CheckOutWithVerification(ctx context.Context, req CheckOutRequest) (AttendanceResponse, error)

	// RegisterManualAttendance lets a store master record attendance on behalf of an employee
	RegisterManualAttendance(ctx context.Context, req ManualAttendanceRequest) (AttendanceResponse, error)

	GetAttendance(ctx context.Context, id string) (AttendanceResponse, error)

	ListAttendances(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)
}
