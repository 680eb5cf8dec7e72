package employee

import (
	"net/http"

	"github.com/albamate/albamate-backend/internal/pkg/apperror"
)

var (
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"employee not found",
		http.StatusNotFound,
	)
	ErrWageAssignmentNotFound = apperror.New(
		apperror.CodeNotFound,
		"employee is not assigned to this store",
		http.StatusNotFound,
	)
)
