// Package errors is the domain error taxonomy of the console.
package errors

import (
	stderrors "errors"
	"net/http"
	"strings"
)

var (
	ErrInvalidCredentials = stderrors.New("Invalid credentials")
	ErrNotAuthenticated   = stderrors.New("Not authenticated")
	ErrNotFound           = stderrors.New("Not found")
	ErrInvalidParent      = stderrors.New("Parent organization not found in tenant")
	ErrDuplicateEmail     = stderrors.New("Email already exists in tenant")
	ErrForbidden          = stderrors.New("Access Denied")
	ErrTooManyAttempts    = stderrors.New("Too many login attempts")
)

// NotFoundError names the kind and id of a missing record. It matches ErrNotFound.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	if e.Kind == "" {
		return ErrNotFound.Error()
	}
	return strings.ToUpper(e.Kind[:1]) + e.Kind[1:] + " not found"
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NotFound returns a *NotFoundError for the record kind and id.
func NotFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// TenantCreationFailedError is returned by the onboarding pipeline for any failure.
type TenantCreationFailedError struct {
	Reason string
	Err    error
}

func (e *TenantCreationFailedError) Error() string {
	return "Failed to create tenant: " + e.Reason
}

func (e *TenantCreationFailedError) Unwrap() error {
	return e.Err
}

// NewTenantCreationFailed wraps err, using its message as the reason.
func NewTenantCreationFailed(err error) *TenantCreationFailedError {
	return &TenantCreationFailedError{Reason: err.Error(), Err: err}
}

// ValidationResult is the outcome of validating an onboarding request.
type ValidationResult struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors"`
}

// Add records a validation failure.
func (r *ValidationResult) Add(msg string) {
	r.Errors = append(r.Errors, msg)
	r.IsValid = false
}

// ValidationFailedError rejects a payload at the HTTP boundary.
type ValidationFailedError struct {
	Errors []string
}

func (e *ValidationFailedError) Error() string {
	if len(e.Errors) == 0 {
		return "Validation failed"
	}
	return "Validation failed: " + strings.Join(e.Errors, "; ")
}

// HTTPStatus maps an error of the taxonomy to a response status code.
func HTTPStatus(err error) int {
	var validation *ValidationFailedError
	var creation *TenantCreationFailedError

	switch {
	case err == nil:
		return http.StatusOK
	case stderrors.As(err, &validation):
		return http.StatusUnprocessableEntity
	case stderrors.Is(err, ErrInvalidCredentials), stderrors.Is(err, ErrNotAuthenticated):
		return http.StatusUnauthorized
	case stderrors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case stderrors.Is(err, ErrTooManyAttempts):
		return http.StatusTooManyRequests
	case stderrors.Is(err, ErrInvalidParent), stderrors.Is(err, ErrDuplicateEmail):
		return http.StatusUnprocessableEntity
	case stderrors.As(err, &creation):
		return http.StatusInternalServerError
	case stderrors.Is(err, ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
