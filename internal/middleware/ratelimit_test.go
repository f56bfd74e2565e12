package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestCheckRateLimitEnforcesLimit(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	rdb := setupRedis(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := CheckRateLimit(ctx, rdb, "create_blog", "user:1", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should be allowed", i+1)
	}

	allowed, err := CheckRateLimit(ctx, rdb, "create_blog", "user:1", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed, "fourth request should be blocked")
}

func TestCheckRateLimitIsolatesResources(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	rdb := setupRedis(t)
	ctx := context.Background()

	_, err := CheckRateLimit(ctx, rdb, "create_blog", "user:1", 1, time.Minute)
	require.NoError(t, err)

	allowed, err := CheckRateLimit(ctx, rdb, "upload_image", "user:1", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed, "a different resource has its own counter")

	allowed, err = CheckRateLimit(ctx, rdb, "create_blog", "user:2", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed, "a different user has their own counter")
}

func TestCheckRateLimitBypassedOutsideProduction(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		allowed, err := CheckRateLimit(ctx, nil, "create_blog", "user:1", 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	}
}

func TestCheckRateLimitNilRedis(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	_, err := CheckRateLimit(context.Background(), nil, "create_blog", "user:1", 1, time.Minute)
	assert.Error(t, err)
}
