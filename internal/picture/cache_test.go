package picture

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedis is an in-memory stand-in for the remote tier.
type fakeRedis struct {
	mu     sync.Mutex
	values map[string][]byte
	ttls   map[string]time.Duration
	gets   int
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	cmd := redis.NewStringCmd(ctx)
	if v, ok := f.values[key]; ok {
		cmd.SetVal(string(v))
	} else {
		cmd.SetErr(redis.Nil)
	}
	return cmd
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value.([]byte)
	f.ttls[key] = expiration
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("OK")
	return cmd
}

func TestListCacheRoundTrip(t *testing.T) {
	c := NewListCache(16, time.Minute, nil, time.Minute, 0)
	ctx := context.Background()

	key := Fingerprint(ListQuery{Current: 1, PageSize: 10})
	_, ok := c.Get(ctx, key)
	assert.False(t, ok, "cold cache must miss")

	page := []byte(`{"records":[],"total":0,"current":1,"pageSize":10}`)
	c.Put(ctx, key, page)

	got, ok := c.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, page, got, "cached bytes must round-trip identically")
}

func TestListCacheLocalTTLExpiry(t *testing.T) {
	c := NewListCache(16, 20*time.Millisecond, nil, time.Minute, 0)
	ctx := context.Background()

	key := Fingerprint(ListQuery{Current: 2, PageSize: 10})
	c.Put(ctx, key, []byte("page"))

	_, ok := c.Get(ctx, key)
	require.True(t, ok)

	time.Sleep(60 * time.Millisecond)
	_, ok = c.Get(ctx, key)
	assert.False(t, ok, "entry must miss after TTL")
}

func TestListCacheRemoteHitBackfillsLocal(t *testing.T) {
	remote := newFakeRedis()
	c := NewListCache(16, time.Minute, remote, time.Minute, 0)
	ctx := context.Background()

	key := Fingerprint(ListQuery{Current: 3, PageSize: 10})
	remote.values[key] = []byte("remote-page")

	got, ok := c.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, []byte("remote-page"), got)
	require.Equal(t, 1, remote.gets)

	// Second read is served locally.
	got, ok = c.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, []byte("remote-page"), got)
	assert.Equal(t, 1, remote.gets, "remote must not be consulted on a local hit")
}

func TestListCachePutWritesBothTiers(t *testing.T) {
	remote := newFakeRedis()
	base, jitter := 300*time.Second, 300*time.Second
	c := NewListCache(16, time.Minute, remote, base, jitter)
	ctx := context.Background()

	key := Fingerprint(ListQuery{Current: 4, PageSize: 10})
	c.Put(ctx, key, []byte("page"))

	assert.Equal(t, []byte("page"), remote.values[key])
	ttl := remote.ttls[key]
	assert.GreaterOrEqual(t, ttl, base)
	assert.Less(t, ttl, base+jitter)
}

func TestRemoteTTLJitterBounds(t *testing.T) {
	base, jitter := 300*time.Second, 300*time.Second
	c := NewListCache(16, time.Minute, nil, base, jitter)

	seen := map[time.Duration]bool{}
	for i := 0; i < 200; i++ {
		ttl := c.remoteTTL()
		require.GreaterOrEqual(t, ttl, base)
		require.Less(t, ttl, base+jitter)
		seen[ttl] = true
	}
	assert.Greater(t, len(seen), 1, "jitter must actually vary the TTL")
}

func TestFingerprintCanonicalization(t *testing.T) {
	a := ListQuery{Current: 1, PageSize: 10, Name: "cat", Tags: []string{"hd"}}
	b := ListQuery{PageSize: 10, Tags: []string{"hd"}, Name: "cat", Current: 1}
	assert.Equal(t, Fingerprint(a), Fingerprint(b),
		"field assignment order must not change the fingerprint")

	c := ListQuery{Current: 2, PageSize: 10, Name: "cat", Tags: []string{"hd"}}
	assert.NotEqual(t, Fingerprint(a), Fingerprint(c),
		"different queries must not collide")
}
