package apperror

const (
	// Client errors (4xx)
	CodeInvalidInput         = "INVALID_INPUT"
	CodeForbidden            = "FORBIDDEN"
	CodeNotFound             = "NOT_FOUND"
	CodeConflict             = "CONFLICT"
	CodeInvalidState         = "INVALID_STATE"
	CodeLocationVerification = "LOCATION_VERIFICATION_FAILED"

	// Server errors (5xx)
	CodeInternalError = "INTERNAL_ERROR"
)
