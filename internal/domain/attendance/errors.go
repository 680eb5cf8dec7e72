package attendance

import (
	"net/http"

	"github.com/albamate/albamate-backend/internal/pkg/apperror"
)

// Attendance domain errors
var (
	// Check-in errors
	ErrAlreadyCheckedIn = apperror.New(
		apperror.CodeInvalidState,
		"you have already checked in today",
		http.StatusConflict,
	)
	ErrOutOfRange = apperror.New(
		apperror.CodeLocationVerification,
		"you are outside the allowed radius of the store",
		http.StatusBadRequest,
	)

	// Check-out errors
	ErrNotCheckedIn = apperror.New(
		apperror.CodeInvalidState,
		"you have not checked in yet",
		http.StatusConflict,
	)
	ErrAlreadyCheckedOut = apperror.New(
		apperror.CodeInvalidState,
		"you have already checked out",
		http.StatusConflict,
	)
	ErrInvalidAttendanceTime = apperror.New(
		apperror.CodeInvalidState,
		"check-out time must be after check-in time",
		http.StatusConflict,
	)

	// General errors
	ErrAttendanceNotFound = apperror.New(
		apperror.CodeNotFound,
		"attendance record not found",
		http.StatusNotFound,
	)
)
