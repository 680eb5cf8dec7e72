package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/albamate/albamate-backend/internal/pkg/apperror"
	"github.com/albamate/albamate-backend/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.HTTPStatus < http.StatusInternalServerError {
		writeError(w, appErr.HTTPStatus, appErr.Code, appErr.Message, nil)
		return
	}

	slog.Error("unhandled error", "error", err)
	InternalServerError(w, "An unexpected error occurred")
}
