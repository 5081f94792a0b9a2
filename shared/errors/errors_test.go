package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTenantCreationFailedError(t *testing.T) {
	cause := fmt.Errorf("organization %q: %w", "Sales", ErrInvalidParent)
	err := NewTenantCreationFailed(cause)

	assert.Equal(t, "Failed to create tenant: "+cause.Error(), err.Error())
	assert.True(t, stderrors.Is(err, ErrInvalidParent))

	var target *TenantCreationFailedError
	assert.True(t, stderrors.As(fmt.Errorf("onboard: %w", err), &target))
}

func TestNotFound(t *testing.T) {
	err := NotFound("legal entity", "le-1")

	assert.Equal(t, "Legal entity not found", err.Error())
	assert.True(t, stderrors.Is(err, ErrNotFound))

	var nf *NotFoundError
	assert.True(t, stderrors.As(err, &nf))
	assert.Equal(t, "le-1", nf.ID)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"credentials", ErrInvalidCredentials, http.StatusUnauthorized},
		{"unauthenticated", fmt.Errorf("me: %w", ErrNotAuthenticated), http.StatusUnauthorized},
		{"forbidden", ErrForbidden, http.StatusForbidden},
		{"not found", NotFound("organization", "o1"), http.StatusNotFound},
		{"rate limited", ErrTooManyAttempts, http.StatusTooManyRequests},
		{"validation", &ValidationFailedError{Errors: []string{"x"}}, http.StatusUnprocessableEntity},
		{"invalid parent", ErrInvalidParent, http.StatusUnprocessableEntity},
		{"onboarding", NewTenantCreationFailed(stderrors.New("boom")), http.StatusInternalServerError},
		{"onboarding validation", NewTenantCreationFailed(ErrDuplicateEmail), http.StatusUnprocessableEntity},
		{"unknown", stderrors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestValidationResult_Add(t *testing.T) {
	r := ValidationResult{IsValid: true}
	r.Add("Tenant email is required")

	assert.False(t, r.IsValid)
	assert.Equal(t, []string{"Tenant email is required"}, r.Errors)
}
