package errors

import (
	stderrors "errors"
	"fmt"
)

// Operation names the adapter call that failed
type Operation string

const (
	OpList   Operation = "list"
	OpGetOne Operation = "getOne"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
	OpLogin  Operation = "login"
	OpLogout Operation = "logout"
	OpMe     Operation = "me"
)

// RemoteOperationError is returned when the API answers with a non-2xx
// status, a success=false envelope, or cannot be reached at all.
type RemoteOperationError struct {
	Resource   string
	Operation  Operation
	Message    string
	StatusCode int // 0 when the request never got a response
	Err        error
}

func (e *RemoteOperationError) Error() string {
	if e.Resource == "" {
		return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Operation, e.Resource, e.Message)
}

func (e *RemoteOperationError) Unwrap() error {
	return e.Err
}

// ErrUnauthenticated is matched by every AuthenticationError
var ErrUnauthenticated = stderrors.New("session expired or not logged in")

// AuthenticationError is returned for a 401 from any authenticated call.
// Receiving one always forces a logout.
type AuthenticationError struct {
	Resource  string
	Operation Operation
	Message   string
}

func (e *AuthenticationError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = ErrUnauthenticated.Error()
	}
	if e.Resource == "" {
		return fmt.Sprintf("%s: %s", e.Operation, msg)
	}
	return fmt.Sprintf("%s %s: %s", e.Operation, e.Resource, msg)
}

func (e *AuthenticationError) Is(target error) bool {
	return target == ErrUnauthenticated
}

// ValidationError is raised before a network call is attempted, e.g. for a
// missing identifier, a missing payload or a disallowed status transition.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for the given field
func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsAuthentication reports whether err is or wraps an AuthenticationError
func IsAuthentication(err error) bool {
	return stderrors.Is(err, ErrUnauthenticated)
}

// IsValidation reports whether err is or wraps a ValidationError
func IsValidation(err error) bool {
	var v *ValidationError
	return stderrors.As(err, &v)
}

// AsRemote extracts a RemoteOperationError from err
func AsRemote(err error) (*RemoteOperationError, bool) {
	var r *RemoteOperationError
	if stderrors.As(err, &r) {
		return r, true
	}
	return nil, false
}
