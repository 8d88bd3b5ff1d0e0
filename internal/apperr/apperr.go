// Package apperr holds the typed failure taxonomy returned by every workflow.
// Callers branch on Kind or on the exported sentinels, never on message text.
package apperr

import (
	"errors"
	"fmt"
)

type Kind uint8

const (
	Internal Kind = iota
	NotFound
	Forbidden
	Unauthorized
	Duplicate
	InvalidArgument
	InvalidTransition
	Expired
	RateLimited
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case Forbidden:
		return "forbidden"
	case Unauthorized:
		return "unauthorized"
	case Duplicate:
		return "duplicate"
	case InvalidArgument:
		return "invalid_argument"
	case InvalidTransition:
		return "invalid_transition"
	case Expired:
		return "expired"
	case RateLimited:
		return "rate_limited"
	default:
		return "internal"
	}
}

// Error is a failure with a kind and a stable machine-readable code.
type Error struct {
	Kind    Kind
	Code    string
	Message string

	sentinel *Error
}

func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target is the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e == t || (e.sentinel != nil && e.sentinel == t)
}

func newSentinel(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

// Wrap returns a copy of sentinel with detail appended to the message.
// errors.Is(Wrap(s, ...), s) holds.
func Wrap(sentinel *Error, format string, args ...any) *Error {
	return &Error{
		Kind:     sentinel.Kind,
		Code:     sentinel.Code,
		Message:  sentinel.Message + ": " + fmt.Sprintf(format, args...),
		sentinel: sentinel,
	}
}

// KindOf returns the kind of the first *Error in err's chain, Internal otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return Internal
}

// CodeOf returns the code of the first *Error in err's chain, "internal" otherwise.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return "internal"
}

// Registration and verification.
var (
	ErrAlreadyRegistered    = newSentinel(Duplicate, "already_registered", "email is already in use and verified")
	ErrInvalidManagingAdmin = newSentinel(InvalidArgument, "invalid_managing_admin", "selected managing administrator not found or is not an administrator")
	ErrAccountNotFound      = newSentinel(NotFound, "account_not_found", "account not found")
	ErrAlreadyVerified      = newSentinel(InvalidTransition, "already_verified", "account is already verified")
	ErrInvalidCode          = newSentinel(InvalidArgument, "invalid_code", "invalid verification code")
	ErrCodeExpired          = newSentinel(Expired, "code_expired", "verification code has expired, request a new one")
	ErrInvalidCredentials   = newSentinel(Unauthorized, "invalid_credentials", "invalid email or password")
	ErrNotVerified          = newSentinel(Forbidden, "not_verified", "account not verified, check your email for the verification code")
	ErrTooManyCodeRequests  = newSentinel(RateLimited, "too_many_code_requests", "too many verification code requests, try again later")
)

// Scoping.
var (
	ErrMissingIdentifier     = newSentinel(InvalidArgument, "missing_identifier", "administrator identifier is required")
	ErrMalformedIdentifier   = newSentinel(InvalidArgument, "malformed_identifier", "identifier is malformed")
	ErrAdministratorNotFound = newSentinel(NotFound, "administrator_not_found", "administrator not found")
)

// Departments and employees.
var (
	ErrDepartmentNotFound    = newSentinel(NotFound, "department_not_found", "department not found")
	ErrDuplicateDepartment   = newSentinel(Duplicate, "duplicate_department", "department with this name already exists")
	ErrHasEmployees          = newSentinel(InvalidTransition, "has_employees", "department still has employees")
	ErrEmployeeNotFound      = newSentinel(NotFound, "employee_not_found", "employee not found")
	ErrEmailInUse            = newSentinel(Duplicate, "email_in_use", "email is already in use")
	ErrSelfDeletionForbidden = newSentinel(Forbidden, "self_deletion_forbidden", "administrator cannot delete their own account")
	ErrInvalidInput          = newSentinel(InvalidArgument, "invalid_input", "invalid input")
)

// Leave requests.
var (
	ErrLeaveRequestNotFound = newSentinel(NotFound, "leave_request_not_found", "leave request not found")
	ErrForbidden            = newSentinel(Forbidden, "forbidden", "not allowed to modify this leave request")
	ErrInvalidRange         = newSentinel(InvalidArgument, "invalid_range", "invalid leave date range")
	ErrInvalidTransition    = newSentinel(InvalidTransition, "invalid_transition", "only pending leave requests can change status")
	ErrInvalidTargetStatus  = newSentinel(InvalidArgument, "invalid_target_status", "target status must be APPROVED or REJECTED")
)

// ErrInternal is the generic failure shown to callers for unexpected errors.
var ErrInternal = newSentinel(Internal, "internal", "internal error")
