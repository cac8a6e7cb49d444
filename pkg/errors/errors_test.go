package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesByCode(t *testing.T) {
	cloned := Clone(ErrConflict, "franchise number already registered")
	wrapped := fmt.Errorf("register: %w", cloned)

	assert.True(t, errors.Is(wrapped, ErrConflict))
	assert.False(t, errors.Is(wrapped, ErrNotFound))
	assert.Equal(t, "conflict", ErrConflict.Message)
}

func TestFromErrorFallsBackToInternal(t *testing.T) {
	appErr := FromError(sql.ErrConnDone)
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.ErrorIs(t, appErr, sql.ErrConnDone)

	assert.Nil(t, FromError(nil))
}

func TestValidationHelper(t *testing.T) {
	err := Validation(errors.New("bad"), "invalid payload")
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, "invalid payload: bad", err.Error())
}
