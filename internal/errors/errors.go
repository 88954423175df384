package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError represents a domain-specific error with a code and message
type DomainError struct {
	Code    string
	Message string
	Err     error // underlying error for wrapping
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is and errors.As
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches domain errors by code so wrapped copies still compare equal to
// the predefined values below.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if errors.As(target, &other) {
		return e.Code == other.Code
	}
	return false
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WrapError wraps an existing error with domain error context
func WrapError(domainErr *DomainError, err error) *DomainError {
	return &DomainError{
		Code:    domainErr.Code,
		Message: domainErr.Message,
		Err:     err,
	}
}

// Predefined domain errors
var (
	// Validation errors
	ErrValidation     = NewDomainError("VALIDATION_FAILED", "all fields are required")
	ErrAvatarRequired = NewDomainError("VALIDATION_FAILED", "avatar image is required")
	ErrUploadRejected = NewDomainError("UPLOAD_REJECTED", "media upload was rejected by storage")

	// Uniqueness conflicts
	ErrEmailExists    = NewDomainError("EMAIL_EXISTS", "email is already taken")
	ErrUserNameExists = NewDomainError("USERNAME_EXISTS", "username is already taken")

	// Authentication errors
	ErrInvalidCredentials = NewDomainError("INVALID_CREDENTIALS", "email or password is incorrect")
	ErrUnauthorized       = NewDomainError("UNAUTHORIZED", "unauthorized")
	ErrTokenInvalid       = NewDomainError("INVALID_TOKEN", "invalid token")
	ErrTokenExpired       = NewDomainError("TOKEN_EXPIRED", "token has expired")
	ErrStaleRefreshToken  = NewDomainError("STALE_REFRESH_TOKEN", "refresh token is no longer valid")

	// User errors
	ErrUserNotFound = NewDomainError("USER_NOT_FOUND", "user not found")

	// System errors
	ErrInternal = NewDomainError("INTERNAL_ERROR", "internal server error")
)

// IsDomainError checks if an error is a domain error
func IsDomainError(err error) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr)
}

// GetDomainError extracts the domain error from an error
func GetDomainError(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// ToHTTPStatus maps domain errors to HTTP status codes.
// This should only be used in the handler/presentation layer.
func ToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErrorToHTTPStatus(domainErr)
	}

	// Default to internal server error for unknown errors
	return http.StatusInternalServerError
}

func domainErrorToHTTPStatus(err *DomainError) int {
	switch err.Code {
	// 400 Bad Request
	case "VALIDATION_FAILED", "UPLOAD_REJECTED":
		return http.StatusBadRequest

	// 401 Unauthorized
	case "UNAUTHORIZED", "INVALID_CREDENTIALS", "INVALID_TOKEN",
		"TOKEN_EXPIRED", "STALE_REFRESH_TOKEN":
		return http.StatusUnauthorized

	// 404 Not Found
	case "USER_NOT_FOUND":
		return http.StatusNotFound

	// 409 Conflict
	case "EMAIL_EXISTS", "USERNAME_EXISTS":
		return http.StatusConflict

	// 500 Internal Server Error (default)
	default:
		return http.StatusInternalServerError
	}
}

// GetErrorMessage safely extracts the client-facing error message. Wrapped
// underlying errors are never exposed to clients.
func GetErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}

	return ErrInternal.Message
}
