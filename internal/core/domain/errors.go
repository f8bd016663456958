package domain

import (
	"net/http"
	"sort"
	"strings"
)

// AppError is an error that carries the HTTP status it maps to
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches AppErrors by code and message so wrapped copies still compare equal
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// NewError creates an AppError
func NewError(code int, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap attaches a cause to a copy of the AppError
func (e *AppError) Wrap(err error) *AppError {
	return &AppError{Code: e.Code, Message: e.Message, Err: err}
}

// Common errors
var (
	ErrBadRequest   = NewError(http.StatusBadRequest, "Invalid request body")
	ErrUnauthorized = NewError(http.StatusUnauthorized, "Unauthorized")
	ErrForbidden    = NewError(http.StatusForbidden, "Forbidden")
	ErrAdminOnly    = NewError(http.StatusForbidden, "Forbidden: Admins only")
	ErrInternal     = NewError(http.StatusInternalServerError, "Internal Server Error")
)

// Auth errors
var (
	ErrUserAlreadyExists  = NewError(http.StatusConflict, "User already registered")
	ErrEmailAlreadyExists = NewError(http.StatusConflict, "Email already in use")
	ErrInvalidCredentials = NewError(http.StatusUnauthorized, "Invalid login credential")
	ErrUnknownCredentials = NewError(http.StatusNotFound, "Invalid login credential")
	ErrUserNotFound       = NewError(http.StatusNotFound, "User not found")
	ErrInvalidResetToken  = NewError(http.StatusBadRequest, "Invalid or expired token")
	ErrPasswordTooShort   = NewError(http.StatusBadRequest, "Password must be at least 8 characters")
	ErrResetEmailFailed   = NewError(http.StatusInternalServerError, "Failed to send reset email")
	ErrAvatarUploadFailed = NewError(http.StatusInternalServerError, "Failed to upload avatar")
)

// Leave errors
var (
	ErrLeaveNotFound = NewError(http.StatusNotFound, "Leave request not found")
	ErrInvalidStatus = NewError(http.StatusBadRequest, "Invalid status")
	ErrInvalidDates  = NewError(http.StatusBadRequest, "Invalid start or end date.")
)

// ValidationError holds per-field messages from schema validation
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
