// Package apperr defines the error taxonomy surfaced by the chat core.
// Every failure reported to a caller carries one of the codes below so the
// transport layer can map it without inspecting messages.
package apperr

import (
	"errors"
	"fmt"
)

type Code string

const (
	CodeUnknown          Code = "UNKNOWN"
	CodeInvalidInput     Code = "INVALID_INPUT"
	CodeNotFound         Code = "NOT_FOUND"
	CodeConflict         Code = "CONFLICT"
	CodePermissionDenied Code = "PERMISSION_DENIED"
	CodeStoreUnavailable Code = "STORE_UNAVAILABLE"
)

// Error is a coded application error. Cause is kept for logs and is never
// serialized to clients.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches any *Error with the same code, so errors.Is(err, apperr.ErrNotFound)
// works regardless of the message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code && t.Message == ""
}

func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) error {
	return &Error{Code: code, Message: message, Cause: cause}
}

func InvalidInput(format string, args ...any) error {
	return New(CodeInvalidInput, fmt.Sprintf(format, args...))
}

func NotFound(format string, args ...any) error {
	return New(CodeNotFound, fmt.Sprintf(format, args...))
}

func Conflict(format string, args ...any) error {
	return New(CodeConflict, fmt.Sprintf(format, args...))
}

func PermissionDenied(format string, args ...any) error {
	return New(CodePermissionDenied, fmt.Sprintf(format, args...))
}

func StoreUnavailable(message string, cause error) error {
	return Wrap(CodeStoreUnavailable, message, cause)
}

// Sentinels for errors.Is comparisons.
var (
	ErrInvalidInput     = &Error{Code: CodeInvalidInput}
	ErrNotFound         = &Error{Code: CodeNotFound}
	ErrConflict         = &Error{Code: CodeConflict}
	ErrPermissionDenied = &Error{Code: CodePermissionDenied}
	ErrStoreUnavailable = &Error{Code: CodeStoreUnavailable}
)

// CodeOf returns the code of the first *Error in err's chain, or CodeUnknown.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}
