package store

import (
	"net/http"

	"github.com/albamate/albamate-backend/internal/pkg/apperror"
)

var (
	ErrStoreNotFound = apperror.New(
		apperror.CodeNotFound,
		"store not found",
		http.StatusNotFound,
	)
)
