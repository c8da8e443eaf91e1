// Package errors provides the closed set of coded domain errors for the
// lending engine and its HTTP surface.
//
// Usage:
//
//	// In services - return typed errors
//	if hasActiveLoan {
//	    return errors.DuplicateActiveLoan("user already has an active loan for this book")
//	}
//
//	// In handlers - check with errors.Is
//	if errors.Is(err, errors.ErrBookUnavailable) {
//	    ...
//	}
//
//	// Or switch on the Code for exhaustive handling
//	var domainErr *errors.Error
//	if errors.As(err, &domainErr) {
//	    switch domainErr.Code {
//	    case errors.CodeUnknownISBN:
//	        ...
//	    }
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Lending rule violations. Each maps one-to-one to a gate in the loan or
// reservation pipeline so callers can tell every failure apart.
const (
	CodeUnknownISBN          Code = "UNKNOWN_ISBN"
	CodeBookUnavailable      Code = "BOOK_UNAVAILABLE"
	CodeDuplicateActiveLoan  Code = "DUPLICATE_ACTIVE_LOAN"
	CodeLoanNotFound         Code = "LOAN_NOT_FOUND"
	CodeNotBorrower          Code = "NOT_BORROWER"
	CodeExtensionTooEarly    Code = "EXTENSION_TOO_EARLY"
	CodeMaxExtensions        Code = "MAX_EXTENSIONS_REACHED"
	CodeNoActiveLoans        Code = "NO_ACTIVE_LOANS"
	CodeDuplicateReservation Code = "DUPLICATE_RESERVATION"
	CodeBookAvailable        Code = "BOOK_AVAILABLE"
	CodeUnreturnedLoan       Code = "UNRETURNED_LOAN_EXISTS"
	CodeNoSuitableCopy       Code = "NO_SUITABLE_COPY"
	CodePersistenceFailed    Code = "PERSISTENCE_FAILED"
	CodeGateway              Code = "GATEWAY"
)

// Ambient codes shared with the auth and catalog surfaces.
const (
	CodeNotFound           Code = "NOT_FOUND"
	CodeAlreadyExists      Code = "ALREADY_EXISTS"
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeForbidden          Code = "FORBIDDEN"
	CodeValidation         Code = "VALIDATION"
	CodeConflict           Code = "CONFLICT"
	CodeInternal           Code = "INTERNAL"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeTokenExpired       Code = "TOKEN_EXPIRED"
)

// HTTPStatus returns the appropriate HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeUnknownISBN, CodeLoanNotFound, CodeNoActiveLoans, CodeNotFound:
		return http.StatusNotFound
	case CodeBookUnavailable, CodeDuplicateActiveLoan, CodeDuplicateReservation,
		CodeBookAvailable, CodeUnreturnedLoan, CodeMaxExtensions,
		CodeAlreadyExists, CodeConflict:
		return http.StatusConflict
	case CodeExtensionTooEarly:
		return http.StatusUnprocessableEntity
	case CodeNotBorrower, CodeForbidden:
		return http.StatusForbidden
	case CodeValidation:
		return http.StatusBadRequest
	case CodeUnauthorized, CodeInvalidCredentials, CodeTokenExpired:
		return http.StatusUnauthorized
	case CodeGateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
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

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
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
	ErrUnknownISBN          = &Error{Code: CodeUnknownISBN, Message: "no copies found for ISBN"}
	ErrBookUnavailable      = &Error{Code: CodeBookUnavailable, Message: "no available copies"}
	ErrDuplicateActiveLoan  = &Error{Code: CodeDuplicateActiveLoan, Message: "user already has an active loan for this book"}
	ErrLoanNotFound         = &Error{Code: CodeLoanNotFound, Message: "loan not found"}
	ErrNotBorrower          = &Error{Code: CodeNotBorrower, Message: "only the borrower can extend the loan"}
	ErrExtensionTooEarly    = &Error{Code: CodeExtensionTooEarly, Message: "loan cannot be extended yet"}
	ErrMaxExtensions        = &Error{Code: CodeMaxExtensions, Message: "loan has reached the maximum number of extensions"}
	ErrNoActiveLoans        = &Error{Code: CodeNoActiveLoans, Message: "no active loans"}
	ErrDuplicateReservation = &Error{Code: CodeDuplicateReservation, Message: "user already has an active reservation for this book"}
	ErrBookAvailable        = &Error{Code: CodeBookAvailable, Message: "book is available and should be borrowed instead"}
	ErrUnreturnedLoan       = &Error{Code: CodeUnreturnedLoan, Message: "user has an unreturned loan for this book"}
	ErrNoSuitableCopy       = &Error{Code: CodeNoSuitableCopy, Message: "no suitable copy found for reservation"}
	ErrPersistenceFailed    = &Error{Code: CodePersistenceFailed, Message: "backend returned an invalid record"}
	ErrGateway              = &Error{Code: CodeGateway, Message: "gateway error"}

	ErrNotFound           = &Error{Code: CodeNotFound, Message: "not found"}
	ErrAlreadyExists      = &Error{Code: CodeAlreadyExists, Message: "already exists"}
	ErrUnauthorized       = &Error{Code: CodeUnauthorized, Message: "unauthorized"}
	ErrForbidden          = &Error{Code: CodeForbidden, Message: "forbidden"}
	ErrValidation         = &Error{Code: CodeValidation, Message: "validation error"}
	ErrConflict           = &Error{Code: CodeConflict, Message: "conflict"}
	ErrInternal           = &Error{Code: CodeInternal, Message: "internal error"}
	ErrInvalidCredentials = &Error{Code: CodeInvalidCredentials, Message: "invalid credentials"}
	ErrTokenExpired       = &Error{Code: CodeTokenExpired, Message: "token expired"}
)

// Constructor functions for creating errors with custom messages.

// UnknownISBN creates an unknown ISBN error.
func UnknownISBN(msg string) *Error {
	return &Error{Code: CodeUnknownISBN, Message: msg}
}

// UnknownISBNf creates an unknown ISBN error with formatted message.
func UnknownISBNf(format string, args ...any) *Error {
	return &Error{Code: CodeUnknownISBN, Message: fmt.Sprintf(format, args...)}
}

// BookUnavailable creates a book unavailable error.
func BookUnavailable(msg string) *Error {
	return &Error{Code: CodeBookUnavailable, Message: msg}
}

// DuplicateActiveLoan creates a duplicate active loan error.
func DuplicateActiveLoan(msg string) *Error {
	return &Error{Code: CodeDuplicateActiveLoan, Message: msg}
}

// LoanNotFound creates a loan not found error.
func LoanNotFound(msg string) *Error {
	return &Error{Code: CodeLoanNotFound, Message: msg}
}

// LoanNotFoundf creates a loan not found error with formatted message.
func LoanNotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeLoanNotFound, Message: fmt.Sprintf(format, args...)}
}

// NotBorrower creates a not borrower error.
func NotBorrower(msg string) *Error {
	return &Error{Code: CodeNotBorrower, Message: msg}
}

// ExtensionTooEarly creates an extension too early error.
// The message must carry the first allowable extension date for the caller.
func ExtensionTooEarly(msg string) *Error {
	return &Error{Code: CodeExtensionTooEarly, Message: msg}
}

// ExtensionTooEarlyf creates an extension too early error with formatted message.
func ExtensionTooEarlyf(format string, args ...any) *Error {
	return &Error{Code: CodeExtensionTooEarly, Message: fmt.Sprintf(format, args...)}
}

// MaxExtensions creates a max extensions reached error.
func MaxExtensions(msg string) *Error {
	return &Error{Code: CodeMaxExtensions, Message: msg}
}

// NoActiveLoans creates a no active loans error.
func NoActiveLoans(msg string) *Error {
	return &Error{Code: CodeNoActiveLoans, Message: msg}
}

// DuplicateReservation creates a duplicate reservation error.
func DuplicateReservation(msg string) *Error {
	return &Error{Code: CodeDuplicateReservation, Message: msg}
}

// BookAvailable creates a book available error.
func BookAvailable(msg string) *Error {
	return &Error{Code: CodeBookAvailable, Message: msg}
}

// UnreturnedLoan creates an unreturned loan error.
func UnreturnedLoan(msg string) *Error {
	return &Error{Code: CodeUnreturnedLoan, Message: msg}
}

// NoSuitableCopy creates a no suitable copy error.
func NoSuitableCopy(msg string) *Error {
	return &Error{Code: CodeNoSuitableCopy, Message: msg}
}

// NoSuitableCopyf creates a no suitable copy error with formatted message.
func NoSuitableCopyf(format string, args ...any) *Error {
	return &Error{Code: CodeNoSuitableCopy, Message: fmt.Sprintf(format, args...)}
}

// PersistenceFailed creates a persistence failed error.
func PersistenceFailed(msg string) *Error {
	return &Error{Code: CodePersistenceFailed, Message: msg}
}

// Gateway wraps a backend failure as a gateway error, keeping it
// distinguishable from business-rule violations.
func Gateway(err error, msg string) *Error {
	return &Error{Code: CodeGateway, Message: msg, cause: err}
}

// Gatewayf wraps a backend failure with a formatted message.
func Gatewayf(err error, format string, args ...any) *Error {
	return &Error{Code: CodeGateway, Message: fmt.Sprintf(format, args...), cause: err}
}

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// AlreadyExists creates an already exists error.
func AlreadyExists(msg string) *Error {
	return &Error{Code: CodeAlreadyExists, Message: msg}
}

// Unauthorized creates an unauthorized error.
func Unauthorized(msg string) *Error {
	return &Error{Code: CodeUnauthorized, Message: msg}
}

// Forbidden creates a forbidden error.
func Forbidden(msg string) *Error {
	return &Error{Code: CodeForbidden, Message: msg}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with a formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// Conflict creates a conflict error.
func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Internalf creates an internal error with formatted message.
func Internalf(format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}

// InvalidCredentials creates an invalid credentials error.
func InvalidCredentials(msg string) *Error {
	return &Error{Code: CodeInvalidCredentials, Message: msg}
}

// TokenExpired creates a token expired error.
func TokenExpired(msg string) *Error {
	return &Error{Code: CodeTokenExpired, Message: msg}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}
