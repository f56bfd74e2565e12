package cache

import (
	"context"
	"fmt"
	"time"
)

// Blog details are never cached: the liked flag is viewer-specific and
// the view counter moves on every non-owner read. Only user records and
// the shared public feed page get keys.
const (
	UserKeyPrefix     = "user:%d"
	PublicFeedKeyName = "blogs:public:first"
)

const (
	UserTTL       = 5 * time.Minute
	PublicFeedTTL = 60 * time.Second
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

// PublicFeedKey is the cache key for the unfiltered first page of the public feed.
func PublicFeedKey() string {
	return PublicFeedKeyName
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidatePublicFeed(ctx context.Context) {
	Invalidate(ctx, PublicFeedKey())
}
