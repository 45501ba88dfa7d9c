// Package errors provides coded domain errors for the GlazePal core.
//
// Every failure that reaches an edit or read boundary is converted into an
// *Error so callers can show a message without inspecting internals:
//
//	// In the planner - reject before anything is written
//	if base == nil {
//	    return nil, errors.Validation("please fill in all required fields")
//	}
//
//	// At the boundary - classify with errors.Is
//	if errors.Is(err, errors.ErrValidation) {
//	    showBlockingMessage(errors.UserMessage(err))
//	}
//
//	// Or switch on the code directly
//	var domainErr *errors.Error
//	if errors.As(err, &domainErr) {
//	    switch domainErr.Code {
//	    case errors.CodeTransaction:
//	        // the batch was rejected, nothing was applied
//	    case errors.CodeNotFound:
//	        // render the terminal "not found" state
//	    }
//	}
package errors

import (
	"errors"
	"fmt"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
	New    = errors.New
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the core.
const (
	CodeNotFound      Code = "NOT_FOUND"
	CodeAlreadyExists Code = "ALREADY_EXISTS"
	CodeValidation    Code = "VALIDATION"
	CodeTransaction   Code = "TRANSACTION"
	CodeBusy          Code = "BUSY"
	CodeInternal      Code = "INTERNAL"
)

// Title returns the heading a client shows above the message for this code.
func (c Code) Title() string {
	switch c {
	case CodeValidation:
		return "Missing information"
	case CodeNotFound:
		return "Not found"
	case CodeBusy:
		return "Please wait"
	default:
		return "Failed to save"
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error  // unexported, for wrapping
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// WithDetails returns a new error with additional details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		cause:   e.cause,
	}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrNotFound      = &Error{Code: CodeNotFound, Message: "not found"}
	ErrAlreadyExists = &Error{Code: CodeAlreadyExists, Message: "already exists"}
	ErrValidation    = &Error{Code: CodeValidation, Message: "validation error"}
	ErrTransaction   = &Error{Code: CodeTransaction, Message: "transaction failed"}
	ErrBusy          = &Error{Code: CodeBusy, Message: "action already in progress"}
	ErrInternal      = &Error{Code: CodeInternal, Message: "internal error"}
)

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// AlreadyExistsf creates an already exists error with formatted message.
func AlreadyExistsf(format string, args ...any) *Error {
	return &Error{Code: CodeAlreadyExists, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// Busy creates an error for a duplicate submission of an in-flight action.
func Busy(msg string) *Error {
	return &Error{Code: CodeBusy, Message: msg}
}

// Internalf creates an internal error with formatted message.
func Internalf(format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}

// CodeOf returns the code of the first *Error in err's chain,
// or CodeInternal when there is none.
func CodeOf(err error) Code {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeInternal
}

// UserMessage returns the text shown to a user for err.
// Domain errors show their own message; anything else shows its Error()
// text so failures are never swallowed silently.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Error()
	}
	return err.Error()
}
