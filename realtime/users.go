package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/michat/michat-api/cache"
	"github.com/michat/michat-api/databases"
	"github.com/michat/michat-api/models"
)

const userCacheTTL = 5 * time.Second

// CachedUserLoader keeps hot user documents out of mongo on the send path.
// The TTL is short and every moderation mutation invalidates, so ban/mute
// still bite on the next send.
type CachedUserLoader struct {
	db    databases.UserDatabase
	cache cache.Cache
}

var _ UserLoader = (*CachedUserLoader)(nil)

// NewCachedUserLoader wraps the user database with the given cache
func NewCachedUserLoader(db databases.UserDatabase, c cache.Cache) *CachedUserLoader {
	return &CachedUserLoader{db: db, cache: c}
}

// FindByID returns the cached user document, falling back to the database on
// a miss or cache failure
func (l *CachedUserLoader) FindByID(ctx context.Context, id int64) (*models.User, error) {
	key := userCacheKey(id)

	if raw, err := l.cache.Get(ctx, key); err == nil {
		var user models.User
		if err := json.Unmarshal([]byte(raw), &user); err == nil {
			return &user, nil
		}
	} else if err != cache.ErrMiss {
		zap.S().Debugw("user cache read failed", "user_id", id, "error", err)
	}

	user, err := l.db.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(user); err == nil {
		if err := l.cache.Set(ctx, key, string(b), userCacheTTL); err != nil {
			zap.S().Debugw("user cache write failed", "user_id", id, "error", err)
		}
	}
	return user, nil
}

// Invalidate drops the cached document so the next admission check sees
// fresh moderation state
func (l *CachedUserLoader) Invalidate(ctx context.Context, id int64) {
	if _, err := l.cache.Del(ctx, userCacheKey(id)); err != nil {
		zap.S().Warnw("user cache invalidation failed", "user_id", id, "error", err)
	}
}

func userCacheKey(id int64) string {
	return fmt.Sprintf("user:%d", id)
}
