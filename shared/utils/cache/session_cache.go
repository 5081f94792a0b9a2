package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"tenantconsole-backend/shared/config"
)

var ErrSessionNotFound = errors.New("session not found")

// Session is what the console remembers about an issued access token.
type Session struct {
	UserID    string    `json:"user_id"`
	TenantID  string    `json:"tenant_id"`
	Email     string    `json:"email"`
	UserRole  string    `json:"user_role"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionCache tracks live sessions by token id. Deleting a session
// revokes its token before expiry.
type SessionCache interface {
	Set(ctx context.Context, id string, s *Session, ttl time.Duration) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

// GenerateSessionKey generates a cache key for a session
func GenerateSessionKey(id string) string {
	return fmt.Sprintf("console:session:%s", id)
}

// RedisSessionCache stores sessions in redis with TTL.
type RedisSessionCache struct {
	client *redis.Client
}

// NewRedisSessionCache connects to redis and verifies the connection.
func NewRedisSessionCache(ctx context.Context, cfg *config.Config, log *zap.Logger) (*RedisSessionCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.GetRedisDB(),
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info("redis session cache initialized",
		zap.String("addr", client.Options().Addr),
		zap.Int("db", cfg.GetRedisDB()))

	return &RedisSessionCache{client: client}, nil
}

func (c *RedisSessionCache) Set(ctx context.Context, id string, s *Session, ttl time.Duration) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return c.client.Set(ctx, GenerateSessionKey(id), data, ttl).Err()
}

func (c *RedisSessionCache) Get(ctx context.Context, id string) (*Session, error) {
	data, err := c.client.Get(ctx, GenerateSessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

func (c *RedisSessionCache) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, GenerateSessionKey(id)).Err()
}

// Close closes the redis client.
func (c *RedisSessionCache) Close() error {
	return c.client.Close()
}

type memoryEntry struct {
	session   Session
	expiresAt time.Time
}

// MemorySessionCache keeps sessions in process with the same TTL semantics
// as the redis cache. Expired entries are dropped lazily and by Cleanup.
type MemorySessionCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemorySessionCache() *MemorySessionCache {
	return &MemorySessionCache{entries: make(map[string]memoryEntry), now: time.Now}
}

func (c *MemorySessionCache) Set(ctx context.Context, id string, s *Session, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[id] = memoryEntry{session: *s, expiresAt: c.now().Add(ttl)}
	return nil
}

func (c *MemorySessionCache) Get(ctx context.Context, id string) (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, id)
		return nil, ErrSessionNotFound
	}
	s := e.session
	return &s, nil
}

func (c *MemorySessionCache) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, id)
	return nil
}

// Cleanup drops expired sessions.
func (c *MemorySessionCache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for id, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, id)
		}
	}
}

// New returns the session cache selected by SESSION_CACHE.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (SessionCache, error) {
	if cfg.SessionCache == "redis" {
		return NewRedisSessionCache(ctx, cfg, log)
	}
	log.Info("using in-memory session cache")
	return NewMemorySessionCache(), nil
}
