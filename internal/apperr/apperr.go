package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type AppError struct {
	Code    Code   `json:"error"`
	Message string `json:"description"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Cause }

func New(code Code, message string) error {
	return &AppError{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) error {
	return &AppError{Code: code, Message: message, Cause: cause}
}

// Sentinel errors shared by repos, the token issuer and the handlers.
var (
	ErrConflict           = New(CodeConflict, "a user with that username or email already exists")
	ErrInvalidCredentials = New(CodeInvalidCredentials, "invalid credentials")
	ErrTokenInvalid       = New(CodeTokenInvalid, "signature verification failed")
	ErrTokenExpired       = New(CodeTokenExpired, "the token has expired")
	ErrTokenRevoked       = New(CodeTokenRevoked, "the token has been revoked")
	ErrFreshRequired      = New(CodeFreshRequired, "a fresh token is required")
	ErrForbidden          = New(CodeForbidden, "admins only")
	ErrNotFound           = New(CodeNotFound, "not found")
	ErrResetTokenInvalid  = New(CodeResetTokenInvalid, "invalid or expired token")
)

// Status maps an error code to the HTTP status the handlers answer with.
func Status(code Code) int {
	switch code {
	case CodeConflict:
		return http.StatusConflict
	case CodeInvalidCredentials, CodeTokenInvalid, CodeTokenExpired, CodeTokenRevoked, CodeFreshRequired:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeResetTokenInvalid, CodeInvalidArgument:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// From extracts the AppError from err, wrapping unknown errors as INTERNAL
// so the transport never leaks storage details to the client.
func From(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return &AppError{Code: CodeInternal, Message: "internal server error", Cause: err}
}
