package domain

import (
	"errors"
	"fmt"
)

// Stable error codes returned to API callers.
const (
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeDuplicateEmail     = "DUPLICATE_EMAIL"
	CodeNotFound           = "NOT_FOUND"
	CodeSelfDeletion       = "SELF_DELETION"
	CodeForbidden          = "FORBIDDEN"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeValidation         = "VALIDATION_ERROR"
	CodeAccountLocked      = "ACCOUNT_LOCKED"
	CodeStorage            = "STORAGE_ERROR"
	CodeInternal           = "INTERNAL_ERROR"
)

// AppError is the base domain error type.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// Expected reports whether the error is a domain outcome rather than an
// infrastructure failure.
func (e *AppError) Expected() bool { return e.Status < 500 }

// AsAppError unwraps err to an *AppError if there is one in the chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given AppError code.
func HasCode(err error, code string) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// Standard domain error constructors.

// ErrInvalidCredentials is the single opaque login failure. Callers must not
// be able to tell an unknown email from a wrong password or a disabled account.
func ErrInvalidCredentials() *AppError {
	return &AppError{Code: CodeInvalidCredentials, Message: "invalid credentials", Status: 401}
}

func ErrDuplicateEmail(email string) *AppError {
	return &AppError{Code: CodeDuplicateEmail, Message: fmt.Sprintf("email %s is already registered", email), Status: 409}
}

func ErrNotFound(entity, id string) *AppError {
	return &AppError{Code: CodeNotFound, Message: fmt.Sprintf("%s %s not found", entity, id), Status: 404}
}

func ErrSelfDeletion() *AppError {
	return &AppError{Code: CodeSelfDeletion, Message: "you cannot delete your own account", Status: 400}
}

func ErrValidation(msg string) *AppError {
	return &AppError{Code: CodeValidation, Message: msg, Status: 400}
}

func ErrUnauthorized(msg string) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: msg, Status: 401}
}

func ErrForbidden(msg string) *AppError {
	return &AppError{Code: CodeForbidden, Message: msg, Status: 403}
}

func ErrAccountLocked(msg string) *AppError {
	return &AppError{Code: CodeAccountLocked, Message: msg, Status: 429}
}

// ErrStorage wraps an unexpected persistence failure. The message is generic;
// the cause is kept for logs only.
func ErrStorage(op string, cause error) *AppError {
	return &AppError{Code: CodeStorage, Message: "storage failure during " + op, Status: 500, Cause: cause}
}

func ErrInternal(msg string, cause error) *AppError {
	return &AppError{Code: CodeInternal, Message: msg, Status: 500, Cause: cause}
}
