package controllers

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	aws_pkg "catalog-service/pkg/aws"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRecorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func (r *countingRecorder) RecordCount(ctx context.Context, metricName string, dimensions map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[metricName]++
	return nil
}

func (r *countingRecorder) RecordLatency(ctx context.Context, metricName string, duration time.Duration, dimensions map[string]string) error {
	return nil
}

func (r *countingRecorder) IsEnabled() bool { return true }

func unreachableRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: "localhost:0",
		Dialer: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return nil, errors.New("dial refused")
		},
		MaxRetries: -1,
	})
}

func (r *countingRecorder) count(metric string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[metric]
}

func newMiniredisCache(t *testing.T, rec *countingRecorder) (*CacheManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	var metrics aws_pkg.MetricsRecorder
	if rec != nil {
		metrics = rec
	}
	return NewCacheManager(client, time.Minute, metrics), mr
}

func storeAndWait(t *testing.T, cm *CacheManager, version int64, key string, body []byte) {
	t.Helper()
	cm.StoreAsync(version, key, body)
	require.Eventually(t, func() bool {
		got, _, _ := cm.Lookup(context.Background(), key)
		return got != nil
	}, time.Second, 10*time.Millisecond)
}

func TestCacheManager_StoreThenLookup(t *testing.T) {
	rec := &countingRecorder{counts: map[string]int{}}
	cm, mr := newMiniredisCache(t, rec)
	ctx := context.Background()

	body, version, ok := cm.Lookup(ctx, "list::0:photos")
	assert.Nil(t, body)
	assert.Zero(t, version)
	assert.True(t, ok)

	storeAndWait(t, cm, version, "list::0:photos", []byte(`[]`))

	body, version, ok = cm.Lookup(ctx, "list::0:photos")
	assert.Equal(t, []byte(`[]`), body)
	assert.Zero(t, version)
	assert.True(t, ok)
	assert.Equal(t, time.Minute, mr.TTL("catalog:v0:list::0:photos"))

	assert.Eventually(t, func() bool {
		return rec.count("CacheHits") > 0 && rec.count("CacheMisses") > 0
	}, time.Second, 10*time.Millisecond)
}

func TestCacheManager_InvalidateHidesOlderEntries(t *testing.T) {
	cm, mr := newMiniredisCache(t, nil)
	ctx := context.Background()

	storeAndWait(t, cm, 0, "good:abc:photos", []byte(`{"id":"abc"}`))

	cm.Invalidate(ctx)

	body, version, ok := cm.Lookup(ctx, "good:abc:photos")
	assert.Nil(t, body)
	assert.Equal(t, int64(1), version)
	assert.True(t, ok)
	got, err := mr.Get(CacheVersionKey)
	require.NoError(t, err)
	assert.Equal(t, "1", got)
}

func TestCacheManager_StaleStoreLandsUnderOldVersion(t *testing.T) {
	cm, mr := newMiniredisCache(t, nil)
	ctx := context.Background()

	_, version, ok := cm.Lookup(ctx, "list::1:none")
	require.True(t, ok)
	cm.Invalidate(ctx)

	cm.StoreAsync(version, "list::1:none", []byte(`[]`))
	require.Eventually(t, func() bool {
		return mr.Exists("catalog:v0:list::1:none")
	}, time.Second, 10*time.Millisecond)

	body, _, _ := cm.Lookup(ctx, "list::1:none")
	assert.Nil(t, body)
}

func TestCacheManager_FailedInvalidateDisablesCache(t *testing.T) {
	cm, mr := newMiniredisCache(t, nil)
	ctx := context.Background()

	storeAndWait(t, cm, 0, "list::0:photos", []byte(`[]`))

	mr.SetError("ERR server unavailable")
	cm.Invalidate(ctx)
	mr.SetError("")

	body, _, ok := cm.Lookup(ctx, "list::0:photos")
	assert.Nil(t, body)
	assert.False(t, ok)
	assert.True(t, mr.Exists("catalog:v0:list::0:photos"))
}

func TestCacheManager_NilIsNoop(t *testing.T) {
	var cm *CacheManager

	body, version, ok := cm.Lookup(context.Background(), "list")
	assert.Nil(t, body)
	assert.Zero(t, version)
	assert.False(t, ok)

	assert.NotPanics(t, func() {
		cm.StoreAsync(0, "list", []byte("[]"))
		cm.Invalidate(context.Background())
	})
}

func TestCacheManager_NilClientIsNoop(t *testing.T) {
	cm := NewCacheManager(nil, 0, nil)
	assert.Equal(t, DefaultCacheTTL, cm.ttl)

	_, _, ok := cm.Lookup(context.Background(), "list")
	assert.False(t, ok)
	assert.NotPanics(t, func() { cm.Invalidate(context.Background()) })
}

func TestCacheManager_UnreachableRedisIsNotCacheable(t *testing.T) {
	rec := &countingRecorder{counts: map[string]int{}}
	client := unreachableRedis()
	defer client.Close()
	cm := NewCacheManager(client, time.Minute, rec)

	body, _, ok := cm.Lookup(context.Background(), "good:1:photos")

	assert.Nil(t, body)
	assert.False(t, ok)
	assert.NotPanics(t, func() { cm.Invalidate(context.Background()) })

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Empty(t, rec.counts)
}

func TestCacheManager_KeyEmbedsVersion(t *testing.T) {
	cm := NewCacheManager(nil, time.Minute, nil)

	assert.Equal(t, "catalog:v0:list:", cm.key(0, "list:"))
	assert.Equal(t, "catalog:v7:good:abc:none", cm.key(7, "good:abc:none"))
}

func TestIncludeKey(t *testing.T) {
	assert.Equal(t, "none", includeKey("none"))
	assert.Equal(t, "variations", includeKey("variations"))
	assert.Equal(t, "photos", includeKey(""))
	assert.Equal(t, "photos", includeKey("photos"))
}
