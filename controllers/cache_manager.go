package controllers

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	aws_pkg "catalog-service/pkg/aws"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	CacheVersionKey = "catalog:version"
	cacheKeyPrefix  = "catalog:v"
	DefaultCacheTTL = 5 * time.Minute
)

// CacheManager caches rendered read responses in Redis. Keys embed a version
// counter; Invalidate bumps the counter so every older entry stops matching.
// A nil client turns the cache off, and so does a failed Invalidate: once a
// bump is lost, older entries could still match, so the cache stays off for
// the rest of the process.
type CacheManager struct {
	redis    *redis.Client
	ttl      time.Duration
	metrics  aws_pkg.MetricsRecorder
	disabled atomic.Bool
}

func NewCacheManager(client *redis.Client, ttl time.Duration, metrics aws_pkg.MetricsRecorder) *CacheManager {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CacheManager{redis: client, ttl: ttl, metrics: metrics}
}

// Lookup returns the cached body for key and the version it was looked up
// under. ok is false when the version itself could not be read; such a
// version must not be used with Store.
func (cm *CacheManager) Lookup(ctx context.Context, key string) (body []byte, version int64, ok bool) {
	if !cm.active() {
		return nil, 0, false
	}

	version, err := cm.redis.Get(ctx, CacheVersionKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		zap.L().Debug("Cache version unavailable", zap.Error(err))
		return nil, 0, false
	}

	body, err = cm.redis.Get(ctx, cm.key(version, key)).Bytes()
	if err != nil {
		cm.record(aws_pkg.MetricCacheMisses)
		return nil, version, true
	}
	cm.record(aws_pkg.MetricCacheHits)
	return body, version, true
}

// StoreAsync writes body under the version returned by Lookup. A write that
// races with Invalidate lands under the old version and is never read.
func (cm *CacheManager) StoreAsync(version int64, key string, body []byte) {
	if !cm.active() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := cm.redis.Set(ctx, cm.key(version, key), body, cm.ttl).Err(); err != nil {
			zap.L().Warn("Failed to cache catalog response", zap.String("key", key), zap.Error(err))
		}
	}()
}

// Invalidate drops every cached response by bumping the version.
func (cm *CacheManager) Invalidate(ctx context.Context) {
	if !cm.active() {
		return
	}
	version, err := cm.redis.Incr(ctx, CacheVersionKey).Result()
	if err != nil {
		cm.disabled.Store(true)
		zap.L().Error("Failed to invalidate catalog cache, disabling it", zap.Error(err))
		return
	}
	zap.L().Debug("Catalog cache invalidated", zap.Int64("new_version", version))
}

func (cm *CacheManager) active() bool {
	return cm != nil && cm.redis != nil && !cm.disabled.Load()
}

func (cm *CacheManager) key(version int64, key string) string {
	return fmt.Sprintf("%s%d:%s", cacheKeyPrefix, version, key)
}

func (cm *CacheManager) record(metric string) {
	if cm.metrics == nil || !cm.metrics.IsEnabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = cm.metrics.RecordCount(ctx, metric, map[string]string{"Service": "catalog-service"})
	}()
}
