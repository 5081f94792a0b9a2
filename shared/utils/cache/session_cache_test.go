package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySessionCache(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemorySessionCache()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "jti-1", &Session{UserID: "u1", UserRole: "user"}, time.Hour))

	s, err := c.Get(ctx, "jti-1")
	require.NoError(t, err)
	assert.Equal(t, "u1", s.UserID)

	t.Run("expired session is gone", func(t *testing.T) {
		now = now.Add(2 * time.Hour)
		_, err := c.Get(ctx, "jti-1")
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("delete revokes", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "jti-2", &Session{UserID: "u2"}, time.Hour))
		require.NoError(t, c.Delete(ctx, "jti-2"))
		_, err := c.Get(ctx, "jti-2")
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("cleanup drops expired entries", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "jti-3", &Session{UserID: "u3"}, time.Minute))
		now = now.Add(time.Hour)
		c.Cleanup()
		assert.Empty(t, c.entries)
	})
}

func TestGenerateSessionKey(t *testing.T) {
	assert.Equal(t, "console:session:abc", GenerateSessionKey("abc"))
}
