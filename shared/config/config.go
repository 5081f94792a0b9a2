package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	ServerPort string
	GinMode    string

	// Store: "memory" keeps everything in process, "postgres" uses gorm
	StoreType    string
	SeedDemoData bool

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret            string
	JWTExpireHours       string
	JWTRefreshExpireDays string

	// Session cache: "memory" or "redis"
	SessionCache  string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       string

	// MinIO (setup report archive)
	ReportArchiveEnabled bool
	MinIOServerURL       string
	MinIORootUser        string
	MinIORootPassword    string
	MinIOUseSSL          bool
	MinIOBucketName      string

	// Frontend / tenancy
	FrontendURL       string
	TenantRegionURL   string
	DefaultTenantPlan string

	// Simulated latency of the mock API
	MockAPIBaseDelayMS string
	MockAPIReadDelayMS string

	// Login Rate Limiting
	LoginRateLimitMaxAttempts   string
	LoginRateLimitWindowSeconds string
	LoginRateLimitBlockMinutes  string

	// Logging
	LogLevel       string
	LogDevelopment bool
}

var cfg *Config

// envPaths are tried in order; the first readable file wins.
var envPaths = []string{
	".env",
	"../.env",
	"../../.env",
}

// LoadConfig loads configuration from .env files and environment variables.
// It returns the path of the .env file that was used, or "" when only the
// process environment was read.
func LoadConfig() string {
	loadedFrom := ""
	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			loadedFrom = path
			break
		}
	}

	cfg = &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		GinMode:    getEnv("GIN_MODE", "debug"),

		StoreType:    strings.ToLower(getEnv("STORE_TYPE", "memory")),
		SeedDemoData: getEnvAsBool("SEED_DEMO_DATA", true),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "tenantconsole"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:            getEnv("JWT_SECRET", "your-secret-key-change-this"),
		JWTExpireHours:       getEnv("JWT_EXPIRE_HOURS", "3"),
		JWTRefreshExpireDays: getEnv("JWT_REFRESH_EXPIRE_DAYS", "1"),

		SessionCache:  strings.ToLower(getEnv("SESSION_CACHE", "memory")),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnv("REDIS_DB", "0"),

		ReportArchiveEnabled: getEnvAsBool("REPORT_ARCHIVE_ENABLED", false),
		MinIOServerURL:       getEnv("MINIO_SERVER_URL", "http://localhost:9000"),
		MinIORootUser:        getEnv("MINIO_ROOT_USER", "minioadmin"),
		MinIORootPassword:    getEnv("MINIO_ROOT_PASSWORD", "minioadmin"),
		MinIOUseSSL:          getEnvAsBool("MINIO_USE_SSL", false),
		MinIOBucketName:      getEnv("MINIO_BUCKET_NAME", "tenant-setup-reports"),

		FrontendURL:       getEnv("FRONTEND_URL", "http://localhost:3000"),
		TenantRegionURL:   getEnv("TENANT_REGION_URL", "https://api.example.com"),
		DefaultTenantPlan: getEnv("DEFAULT_TENANT_PLAN", "Standard"),

		MockAPIBaseDelayMS: getEnv("MOCK_API_BASE_DELAY_MS", "800"),
		MockAPIReadDelayMS: getEnv("MOCK_API_READ_DELAY_MS", "300"),

		LoginRateLimitMaxAttempts:   getEnv("LOGIN_RATE_LIMIT_MAX_ATTEMPTS", "5"),
		LoginRateLimitWindowSeconds: getEnv("LOGIN_RATE_LIMIT_WINDOW_SECONDS", "300"),
		LoginRateLimitBlockMinutes:  getEnv("LOGIN_RATE_LIMIT_BLOCK_MINUTES", "30"),

		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogDevelopment: getEnvAsBool("LOG_DEVELOPMENT", false),
	}

	return loadedFrom
}

// GetConfig returns the current configuration
func GetConfig() *Config {
	if cfg == nil {
		LoadConfig()
	}
	return cfg
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func atoiOr(value string, defaultValue int) int {
	if n, err := strconv.Atoi(value); err == nil && n >= 0 {
		return n
	}
	return defaultValue
}

// GetJWTExpireDuration returns the access token lifetime
func (c *Config) GetJWTExpireDuration() time.Duration {
	return time.Duration(atoiOr(c.JWTExpireHours, 24)) * time.Hour
}

// GetJWTRefreshExpireDuration returns the refresh token lifetime
func (c *Config) GetJWTRefreshExpireDuration() time.Duration {
	return time.Duration(atoiOr(c.JWTRefreshExpireDays, 7)) * 24 * time.Hour
}

// GetMockAPIBaseDelay returns the simulated round trip of write-heavy calls
func (c *Config) GetMockAPIBaseDelay() time.Duration {
	return time.Duration(atoiOr(c.MockAPIBaseDelayMS, 800)) * time.Millisecond
}

// GetMockAPIReadDelay returns the simulated round trip of light read calls
func (c *Config) GetMockAPIReadDelay() time.Duration {
	return time.Duration(atoiOr(c.MockAPIReadDelayMS, 300)) * time.Millisecond
}

// GetLoginRateLimitMaxAttempts returns the login attempts allowed per window
func (c *Config) GetLoginRateLimitMaxAttempts() int {
	return atoiOr(c.LoginRateLimitMaxAttempts, 5)
}

// GetLoginRateLimitWindow returns the login rate limit window
func (c *Config) GetLoginRateLimitWindow() time.Duration {
	return time.Duration(atoiOr(c.LoginRateLimitWindowSeconds, 300)) * time.Second
}

// GetLoginRateLimitBlock returns how long a client stays blocked
func (c *Config) GetLoginRateLimitBlock() time.Duration {
	return time.Duration(atoiOr(c.LoginRateLimitBlockMinutes, 30)) * time.Minute
}

// GetRedisDB returns the redis database number
func (c *Config) GetRedisDB() int {
	return atoiOr(c.RedisDB, 0)
}
