package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError_Nil(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))
}

func TestToDomainError_PassesThroughWrappedDomainError(t *testing.T) {
	base := NewForbidden("insufficient role")
	wrapped := fmt.Errorf("handler: %w", base)

	de := ToDomainError(wrapped)
	require.NotNil(t, de)
	assert.Equal(t, "FORBIDDEN", de.Code)
	assert.Equal(t, http.StatusForbidden, de.HTTPStatus)
}

func TestToDomainError_FiberError(t *testing.T) {
	de := ToDomainError(fiber.NewError(http.StatusNotFound, "Cannot GET /nope"))
	require.NotNil(t, de)
	assert.Equal(t, "NOT_FOUND", de.Code)
	assert.Equal(t, http.StatusNotFound, de.HTTPStatus)
	assert.Equal(t, "Cannot GET /nope", de.Message)
}

func TestToDomainError_UnknownErrorIsInternal(t *testing.T) {
	cause := errors.New("boom")
	de := ToDomainError(cause)
	require.NotNil(t, de)
	assert.Equal(t, "INTERNAL_ERROR", de.Code)
	assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
	assert.ErrorIs(t, de, cause)
}

func TestNewUnavailable_Unwraps(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := NewUnavailable("account store unavailable", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusServiceUnavailable, ToDomainError(err).HTTPStatus)
}

type signupPayload struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
	Role     string `validate:"omitempty,oneof=VIEWER EDITOR ADMIN"`
}

func TestValidateStruct(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, ValidateStruct(signupPayload{Email: "a@example.com", Password: "longenough"}))
	})

	t.Run("field details", func(t *testing.T) {
		err := ValidateStruct(signupPayload{Email: "nope", Password: "short", Role: "ROOT"})
		require.Error(t, err)

		de := ToDomainError(err)
		assert.Equal(t, "VALIDATION_FAILED", de.Code)
		assert.Equal(t, http.StatusBadRequest, de.HTTPStatus)
		assert.Equal(t, "must be a valid email address", de.Details["Email"])
		assert.Equal(t, "must be at least 8 characters", de.Details["Password"])
		assert.Equal(t, "must be one of: VIEWER EDITOR ADMIN", de.Details["Role"])
	})
}
