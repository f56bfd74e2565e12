package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestAsideMissThenHit(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	fetches := 0
	fetch := func(dest *payload) func() error {
		return func() error {
			fetches++
			dest.Name = "fetched"
			dest.Count = 7
			return nil
		}
	}

	var first payload
	require.NoError(t, Aside(ctx, "test:key", &first, UserTTL, fetch(&first)))
	assert.Equal(t, 1, fetches)
	assert.Equal(t, "fetched", first.Name)

	var second payload
	require.NoError(t, Aside(ctx, "test:key", &second, UserTTL, fetch(&second)))
	assert.Equal(t, 1, fetches, "second read should come from cache")
	assert.Equal(t, 7, second.Count)
}

func TestAsidePropagatesFetchError(t *testing.T) {
	setupMiniredis(t)

	var dest payload
	wantErr := errors.New("db down")
	err := Aside(context.Background(), "test:fail", &dest, UserTTL, func() error {
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)
}

func TestAsideFailsOpenWithoutRedis(t *testing.T) {
	SetClient(nil)

	fetches := 0
	var dest payload
	fetch := func() error {
		fetches++
		dest.Name = "direct"
		return nil
	}

	require.NoError(t, Aside(context.Background(), "test:noredis", &dest, UserTTL, fetch))
	require.NoError(t, Aside(context.Background(), "test:noredis", &dest, UserTTL, fetch))
	assert.Equal(t, 2, fetches, "every read should hit the fetch function")
}

func TestInvalidatePublicFeed(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, PublicFeedKey(), payload{Name: "feed"}, PublicFeedTTL))

	InvalidatePublicFeed(ctx)

	assert.False(t, mr.Exists(PublicFeedKey()))
}

func TestInvalidateUser(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, UserKey(3), payload{Name: "user"}, UserTTL))

	InvalidateUser(ctx, 3)

	assert.False(t, mr.Exists(UserKey(3)))
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "user:3", UserKey(3))
	assert.Equal(t, "blogs:public:first", PublicFeedKey())
}
