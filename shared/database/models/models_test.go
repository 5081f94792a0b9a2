package models

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

// A column default makes gorm drop a false bool from INSERT, so inactive
// rows would be stored as active.
func TestBoolColumnsHaveNoDefault(t *testing.T) {
	cases := []struct {
		model  interface{}
		fields []string
	}{
		{&Tenant{}, []string{"Active", "OnboardingCompleted"}},
		{&Organization{}, []string{"Active"}},
		{&Role{}, []string{"Active", "Custom"}},
		{&User{}, []string{"Active", "IsAdmin", "EmailVerified", "PasswordSet", "PasswordResetRequired"}},
	}

	cache := &sync.Map{}
	for _, tc := range cases {
		s, err := schema.Parse(tc.model, cache, schema.NamingStrategy{})
		require.NoError(t, err)

		for _, name := range tc.fields {
			field := s.LookUpField(name)
			require.NotNil(t, field, "%s.%s", s.Name, name)
			assert.False(t, field.HasDefaultValue, "%s.%s has a default", s.Name, name)
			assert.True(t, field.NotNull, "%s.%s is nullable", s.Name, name)
		}
	}
}
