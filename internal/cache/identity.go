package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/notevault/notevault/internal/model"
)

const (
	// identityCachePrefix is the Redis key prefix for verified API keys.
	identityCachePrefix = "auth:key:"
	// identityCacheTTL bounds how long a verified key skips the argon2 check.
	identityCacheTTL = 5 * time.Minute
)

// cachedIdentity is the Redis representation of a resolved API key owner.
type cachedIdentity struct {
	UserID int64 `json:"user_id"`
	KeyID  int64 `json:"key_id"`
}

// GetIdentity retrieves a cached API-key identity by cache key.
// Returns nil on cache miss; misses and corrupted entries are not errors.
func (c *Cache) GetIdentity(ctx context.Context, cacheKey string) (*model.Identity, error) {
	data, err := c.client.Get(ctx, identityCachePrefix+cacheKey).Bytes()
	if err != nil {
		return nil, nil //nolint:nilerr
	}

	var cached cachedIdentity
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, nil //nolint:nilerr
	}

	return &model.Identity{
		UserID: cached.UserID,
		KeyID:  cached.KeyID,
	}, nil
}

// SetIdentity caches a resolved API-key identity.
func (c *Cache) SetIdentity(ctx context.Context, cacheKey string, id *model.Identity) error {
	data, err := json.Marshal(cachedIdentity{
		UserID: id.UserID,
		KeyID:  id.KeyID,
	})
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}

	return c.client.Set(ctx, identityCachePrefix+cacheKey, data, identityCacheTTL).Err()
}
