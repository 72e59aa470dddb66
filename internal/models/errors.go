package models

import (
	"errors"
	"fmt"
)

// Error codes shared by every layer. The HTTP layer maps them to statuses.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeTokenMalformed     = "TOKEN_MALFORMED"
	CodeTokenBadSignature  = "TOKEN_BAD_SIGNATURE"
	CodeTokenKindMismatch  = "TOKEN_KIND_MISMATCH"
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeInternal           = "INTERNAL_ERROR"
)

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an AppError with the same code, so detailed
// errors still match the package sentinels with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is checks.
var (
	ErrValidation         = &AppError{Code: CodeValidation, Message: "validation failed"}
	ErrInvalidCredentials = &AppError{Code: CodeInvalidCredentials, Message: "invalid credentials"}
	ErrInvalidToken       = &AppError{Code: CodeInvalidToken, Message: "invalid token"}
	ErrTokenExpired       = &AppError{Code: CodeTokenExpired, Message: "token expired"}
	ErrTokenMalformed     = &AppError{Code: CodeTokenMalformed, Message: "token malformed"}
	ErrTokenBadSignature  = &AppError{Code: CodeTokenBadSignature, Message: "token signature invalid"}
	ErrTokenKindMismatch  = &AppError{Code: CodeTokenKindMismatch, Message: "token kind mismatch"}
	ErrUnauthenticated    = &AppError{Code: CodeUnauthenticated, Message: "authentication required"}
	ErrForbidden          = &AppError{Code: CodeForbidden, Message: "forbidden"}
	ErrNotFound           = &AppError{Code: CodeNotFound, Message: "not found"}
	ErrConflict           = &AppError{Code: CodeConflict, Message: "conflict"}
)

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

func NewUnauthenticatedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthenticated,
		Message: message,
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
	}
}

func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// CodeOf returns the AppError code carried by err, or CodeInternal.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}
