package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToHTTPStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"nil error", nil, http.StatusOK},
		{"validation", ErrValidation, http.StatusBadRequest},
		{"avatar required", ErrAvatarRequired, http.StatusBadRequest},
		{"upload rejected", ErrUploadRejected, http.StatusBadRequest},
		{"invalid credentials", ErrInvalidCredentials, http.StatusUnauthorized},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"invalid token", ErrTokenInvalid, http.StatusUnauthorized},
		{"expired token", ErrTokenExpired, http.StatusUnauthorized},
		{"stale refresh token", ErrStaleRefreshToken, http.StatusUnauthorized},
		{"user not found", ErrUserNotFound, http.StatusNotFound},
		{"email exists", ErrEmailExists, http.StatusConflict},
		{"username exists", ErrUserNameExists, http.StatusConflict},
		{"internal", ErrInternal, http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped domain error", fmt.Errorf("context: %w", ErrEmailExists), http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, ToHTTPStatus(tt.err))
		})
	}
}

func TestWrapError_MatchesByCode(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	wrapped := WrapError(ErrInternal, cause)

	assert.ErrorIs(t, wrapped, ErrInternal)
	assert.ErrorIs(t, wrapped, cause)
	assert.NotErrorIs(t, wrapped, ErrTokenInvalid)
}

// Client-facing messages must never include the wrapped internal error.
func TestGetErrorMessage_HidesCause(t *testing.T) {
	cause := errors.New("pq: connection reset by peer")
	wrapped := WrapError(ErrInternal, cause)

	msg := GetErrorMessage(wrapped)
	assert.Equal(t, ErrInternal.Message, msg)
	assert.NotContains(t, msg, "connection reset")

	assert.Equal(t, ErrInternal.Message, GetErrorMessage(errors.New("raw failure")))
	assert.Empty(t, GetErrorMessage(nil))
}

func TestDomainError_Error(t *testing.T) {
	assert.Equal(t, "email is already taken", ErrEmailExists.Error())

	wrapped := WrapError(ErrUploadRejected, errors.New("bucket missing"))
	assert.Equal(t, "media upload was rejected by storage: bucket missing", wrapped.Error())
}

func TestIsDomainError(t *testing.T) {
	assert.True(t, IsDomainError(ErrValidation))
	assert.True(t, IsDomainError(fmt.Errorf("wrap: %w", ErrValidation)))
	assert.False(t, IsDomainError(errors.New("plain")))

	assert.Equal(t, "VALIDATION_FAILED", GetDomainError(ErrValidation).Code)
	assert.Nil(t, GetDomainError(errors.New("plain")))
}
