// session/identity_cache.go
package session

import (
	"checkout_kiosk/directory"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// IdentityCache keeps recent directory answers in Redis so repeat scans of
// the same badge skip the directory round-trip.
type IdentityCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewIdentityCache(rdb *redis.Client, ttl time.Duration) *IdentityCache {
	return &IdentityCache{rdb: rdb, ttl: ttl}
}

type cachedIdentity struct {
	Name       string `json:"name"`
	ResolvedAt int64  `json:"at"`
}

func identityKey(id string) string { return fmt.Sprintf("kiosk:identity:%s", id) }

func (c *IdentityCache) GetName(ctx context.Context, id string) (string, error) {
	b, err := c.rdb.Get(ctx, identityKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return "", directory.ErrCacheMiss
	}
	if err != nil {
		return "", err
	}
	var ci cachedIdentity
	if err := json.Unmarshal(b, &ci); err != nil {
		return "", err
	}
	return ci.Name, nil
}

func (c *IdentityCache) SetName(ctx context.Context, id, name string) error {
	b, _ := json.Marshal(cachedIdentity{Name: name, ResolvedAt: time.Now().Unix()})
	return c.rdb.Set(ctx, identityKey(id), b, c.ttl).Err()
}

func (c *IdentityCache) Forget(ctx context.Context, id string) error {
	return c.rdb.Del(ctx, identityKey(id)).Err()
}
