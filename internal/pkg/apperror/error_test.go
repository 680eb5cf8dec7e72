package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetail_KeepsIdentityOfBase(t *testing.T) {
	base := New(CodeInvalidState, "invalid transition", http.StatusConflict)

	detailed := Detail(base, "invalid transition: PAID -> CONFIRMED")

	assert.True(t, errors.Is(detailed, base))
	assert.Equal(t, CodeInvalidState, detailed.Code)
	assert.Equal(t, http.StatusConflict, detailed.HTTPStatus)
	assert.Contains(t, detailed.Error(), "PAID -> CONFIRMED")
}

func TestCodeOf(t *testing.T) {
	base := New(CodeNotFound, "store not found", http.StatusNotFound)
	wrapped := fmt.Errorf("check in: %w", base)

	assert.Equal(t, CodeNotFound, CodeOf(wrapped))
	assert.True(t, Is(wrapped, CodeNotFound))
	assert.Equal(t, "", CodeOf(errors.New("plain")))
}

func TestWrap_Nil(t *testing.T) {
	assert.Nil(t, Wrap(nil, CodeInternalError, "x", http.StatusInternalServerError))
}
