package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Hour, 24*time.Hour)
	subject := Subject{UserID: "u1", Email: "a@acme.com", TenantID: "t1", OrganizationID: "o1", UserRole: "tenant_admin"}

	access, err := m.GenerateJWT(subject)
	require.NoError(t, err)
	refresh, err := m.GenerateRefreshJWT(subject)
	require.NoError(t, err)

	claims, err := m.ValidateJWT(access)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "t1", claims.TenantID)
	assert.Equal(t, "tenant_admin", claims.UserRole)
	assert.False(t, m.IsTokenExpired(access))

	_, err = m.ValidateJWT(refresh)
	assert.ErrorIs(t, err, ErrWrongTokenType)
	claims, err = m.ValidateRefreshJWT(refresh)
	require.NoError(t, err)
	assert.Equal(t, "a@acme.com", claims.Email)
}

func TestTokenManager_RejectsForeignSignature(t *testing.T) {
	token, err := NewTokenManager("one", time.Hour, time.Hour).GenerateJWT(Subject{UserID: "u1"})
	require.NoError(t, err)

	_, err = NewTokenManager("two", time.Hour, time.Hour).ValidateJWT(token)
	assert.Error(t, err)
}

func TestTokenManager_Expired(t *testing.T) {
	m := NewTokenManager("secret", -time.Minute, time.Hour)
	token, err := m.GenerateJWT(Subject{UserID: "u1"})
	require.NoError(t, err)

	_, err = m.ValidateJWT(token)
	assert.Error(t, err)
	assert.True(t, m.IsTokenExpired(token))
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("admin123")
	require.NoError(t, err)
	assert.NotEqual(t, "admin123", hash)

	assert.True(t, CheckPassword(hash, "admin123"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.False(t, CheckPassword("", "admin123"))
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("jane@acme.com"))
	assert.Error(t, ValidateEmail(""))
	assert.Error(t, ValidateEmail("not-an-email"))
	assert.Error(t, ValidateEmail("Jane <jane@acme.com>"))
}

func TestValidateRequired(t *testing.T) {
	assert.NoError(t, ValidateRequired("Acme", "Tenant name"))

	err := ValidateRequired("  \t", "Tenant name")
	require.Error(t, err)
	assert.Equal(t, "Tenant name is required", err.Error())
}

func TestGenerateRandomToken(t *testing.T) {
	a, err := GenerateRandomToken(16)
	require.NoError(t, err)
	b, err := GenerateRandomToken(16)
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}
