package picture

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "picstash:listPage:"

// redisCache is the slice of the Redis client the cache uses.
type redisCache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// ListCache is a two-tier cache-aside layer for serialized list pages:
// a bounded in-process LRU with a fixed TTL in front of Redis with a jittered
// TTL. Entries are never invalidated on writes; staleness is bounded by the
// TTLs, a deliberate trade-off for list-query freshness versus database load.
type ListCache struct {
	local     *expirable.LRU[string, []byte]
	remote    redisCache
	ttlBase   time.Duration
	ttlJitter time.Duration
}

// NewListCache builds a ListCache. remote may be nil, leaving only the local
// tier active (useful in tests and single-node deployments).
func NewListCache(capacity int, localTTL time.Duration, remote redisCache, ttlBase, ttlJitter time.Duration) *ListCache {
	return &ListCache{
		local:     expirable.NewLRU[string, []byte](capacity, nil, localTTL),
		remote:    remote,
		ttlBase:   ttlBase,
		ttlJitter: ttlJitter,
	}
}

// Fingerprint derives the cache key for a query. The query struct has a
// fixed field order under encoding/json, so semantically identical request
// bodies canonicalize to the same key regardless of their own field order.
func Fingerprint(q ListQuery) string {
	canonical, _ := json.Marshal(q)
	sum := md5.Sum(canonical)
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

// Get checks the local tier, then Redis. A Redis hit is written back into
// the local tier.
func (c *ListCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if v, ok := c.local.Get(key); ok {
		return v, true
	}
	if c.remote == nil {
		return nil, false
	}
	v, err := c.remote.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("picture: redis cache get %s failed: %v", key, err)
		}
		return nil, false
	}
	c.local.Add(key, v)
	return v, true
}

// Put writes a computed page to both tiers. Redis gets a TTL randomized in
// [base, base+jitter) so entries populated together do not expire together
// and stampede the database.
func (c *ListCache) Put(ctx context.Context, key string, page []byte) {
	c.local.Add(key, page)
	if c.remote == nil {
		return
	}
	if err := c.remote.Set(ctx, key, page, c.remoteTTL()).Err(); err != nil {
		log.Printf("picture: redis cache set %s failed: %v", key, err)
	}
}

func (c *ListCache) remoteTTL() time.Duration {
	if c.ttlJitter <= 0 {
		return c.ttlBase
	}
	return c.ttlBase + time.Duration(rand.Int63n(int64(c.ttlJitter)))
}

// NewRedisClient connects a go-redis client for the remote tier.
func NewRedisClient(addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
