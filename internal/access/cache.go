package access

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cleoaura/careteam-app/internal/domain"

	"github.com/redis/go-redis/v9"
)

// DefaultGrantCacheTTL bounds how stale a cached grant decision can be.
// Mutations invalidate explicitly, so the TTL only covers out-of-band
// writes (e.g. a second server instance).
const DefaultGrantCacheTTL = 30 * time.Second

// GrantCache is a short-TTL read cache of grant documents in Redis. A cache
// miss or any Redis error falls through to the repository; the cache never
// widens access on its own because entries are invalidated on mutation.
type GrantCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewGrantCache builds a GrantCache. ttl <= 0 selects DefaultGrantCacheTTL.
func NewGrantCache(client *redis.Client, ttl time.Duration) *GrantCache {
	if ttl <= 0 {
		ttl = DefaultGrantCacheTTL
	}
	return &GrantCache{client: client, ttl: ttl}
}

func grantCacheKey(traineeID, memberUID string) string {
	return fmt.Sprintf("grant:%s:%s", traineeID, memberUID)
}

// Get returns the cached grant and true on a hit.
func (c *GrantCache) Get(ctx context.Context, traineeID, memberUID string) (*domain.Grant, bool) {
	payload, err := c.client.Get(ctx, grantCacheKey(traineeID, memberUID)).Bytes()
	if err != nil {
		return nil, false
	}

	var grant domain.Grant
	if err := json.Unmarshal(payload, &grant); err != nil {
		return nil, false
	}
	grant.Modules = grant.Modules.Normalize()
	return &grant, true
}

// Set stores a grant under the pair key. Failures are ignored; the
// repository remains the source of truth.
func (c *GrantCache) Set(ctx context.Context, grant *domain.Grant) {
	payload, err := json.Marshal(grant)
	if err != nil {
		return
	}
	c.client.Set(ctx, grantCacheKey(grant.TraineeID, grant.MemberUID), payload, c.ttl)
}

// Invalidate drops the cached grant for one pair.
func (c *GrantCache) Invalidate(ctx context.Context, traineeID, memberUID string) {
	c.client.Del(ctx, grantCacheKey(traineeID, memberUID))
}
