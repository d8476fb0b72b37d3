package common

import (
	"errors"
	"fmt"
)

type Code string

const (
	CodeValidation           Code = "validation_error"
	CodeUnauthorized         Code = "unauthorized"
	CodeForbidden            Code = "forbidden"
	CodeNotFound             Code = "not_found"
	CodeInvalidTransition    Code = "invalid_transition"
	CodeDuplicateApplication Code = "duplicate_application"
	CodeDuplicateInvite      Code = "duplicate_invite"
	CodeConflict             Code = "conflict"
	CodeRateLimited          Code = "rate_limited"
	CodeInternal             Code = "internal_error"
)

// Error is the single error type surfaced by services and repositories.
// Existing carries the already-persisted entity when a uniqueness rule was hit,
// so callers can reconcile instead of treating the response as opaque.
type Error struct {
	Code     Code
	Message  string
	Fields   map[string]string
	Existing any
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

func NewValidationError(message string, fields map[string]string) *Error {
	return &Error{Code: CodeValidation, Message: message, Fields: fields}
}

func NewDuplicateError(code Code, message string, existing any) *Error {
	return &Error{Code: code, Message: message, Existing: existing}
}

func Is(err error, code Code) bool {
	return CodeOf(err) == code
}

// CodeOf returns CodeInternal for errors that did not come from this package.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}
