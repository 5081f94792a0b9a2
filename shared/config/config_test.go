package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("STORE_TYPE", "")
	t.Setenv("MOCK_API_BASE_DELAY_MS", "")
	t.Setenv("DEFAULT_TENANT_PLAN", "")

	LoadConfig()
	c := GetConfig()
	require.NotNil(t, c)

	assert.Equal(t, "memory", c.StoreType)
	assert.Equal(t, "Standard", c.DefaultTenantPlan)
	assert.Equal(t, 800*time.Millisecond, c.GetMockAPIBaseDelay())
	assert.Equal(t, 300*time.Millisecond, c.GetMockAPIReadDelay())
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("STORE_TYPE", "Postgres")
	t.Setenv("MOCK_API_BASE_DELAY_MS", "0")
	t.Setenv("JWT_EXPIRE_HOURS", "2")
	t.Setenv("REPORT_ARCHIVE_ENABLED", "true")
	t.Setenv("REDIS_DB", "3")

	LoadConfig()
	c := GetConfig()

	assert.Equal(t, "postgres", c.StoreType)
	assert.Equal(t, time.Duration(0), c.GetMockAPIBaseDelay())
	assert.Equal(t, 2*time.Hour, c.GetJWTExpireDuration())
	assert.True(t, c.ReportArchiveEnabled)
	assert.Equal(t, 3, c.GetRedisDB())
}

func TestConfig_InvalidNumbersFallBack(t *testing.T) {
	c := &Config{
		JWTExpireHours:            "abc",
		LoginRateLimitMaxAttempts: "-1",
		MockAPIReadDelayMS:        "",
	}

	assert.Equal(t, 24*time.Hour, c.GetJWTExpireDuration())
	assert.Equal(t, 5, c.GetLoginRateLimitMaxAttempts())
	assert.Equal(t, 300*time.Millisecond, c.GetMockAPIReadDelay())
}
