package payroll

import (
	"net/http"

	"github.com/albamate/albamate-backend/internal/pkg/apperror"
)

var (
	ErrPayrollNotFound = apperror.New(
		apperror.CodeNotFound,
		"payroll not found",
		http.StatusNotFound,
	)
	ErrPolicyNotFound = apperror.New(
		apperror.CodeNotFound,
		"payroll policy not found",
		http.StatusNotFound,
	)
	ErrInvalidStatusTransition = apperror.New(
		apperror.CodeInvalidState,
		"invalid payroll status transition",
		http.StatusConflict,
	)
	ErrPayrollAlreadyConfirmed = apperror.New(
		apperror.CodeInvalidState,
		"payroll for this period is already confirmed, cannot recalculate",
		http.StatusConflict,
	)
	ErrPayrollVersionConflict = apperror.New(
		apperror.CodeConflict,
		"payroll was modified concurrently, reload and retry",
		http.StatusConflict,
	)
	ErrInsuranceRateUnavailable = apperror.New(
		apperror.CodeInvalidState,
		"no insurance tax rate is configured for this store",
		http.StatusConflict,
	)
	ErrInvalidPolicy = apperror.New(
		apperror.CodeInvalidInput,
		"payroll policy is invalid",
		http.StatusBadRequest,
	)
	ErrAttendanceNotClosed = apperror.New(
		apperror.CodeInvalidState,
		"attendance record has no check-out time",
		http.StatusConflict,
	)
)
