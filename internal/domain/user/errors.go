package user

import (
	"net/http"

	"github.com/albamate/albamate-backend/internal/pkg/apperror"
)

var (
	ErrStoreMasterRequired = apperror.New(
		apperror.CodeForbidden,
		"store master authority is required for this store",
		http.StatusForbidden,
	)
	ErrUserIDRequired = apperror.New(
		apperror.CodeInvalidInput,
		"user id is required",
		http.StatusBadRequest,
	)
)
