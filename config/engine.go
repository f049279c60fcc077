package config

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/appleboy/cacheman-promise/engine"
	"github.com/appleboy/cacheman-promise/engine/bigcache"
	"github.com/appleboy/cacheman-promise/engine/bolt"
	"github.com/appleboy/cacheman-promise/engine/redis"
	"github.com/appleboy/cacheman-promise/engine/ristretto"
)

// OpenEngine builds the configured engine. The redis engine owns its client
// and pings it once so a bad address fails here rather than on first use.
func (c *Config) OpenEngine(ctx context.Context) (engine.Engine, error) {
	ec := c.Engine
	switch ec.Kind {
	case KindRistretto:
		return ristretto.New(ristretto.Config{
			NumCounters: ec.Ristretto.NumCounters,
			MaxCost:     ec.Ristretto.MaxCost,
			BufferItems: ec.Ristretto.BufferItems,
			Metrics:     ec.Ristretto.Metrics,
		})
	case KindBigCache:
		return bigcache.New(ctx, bigcache.Config{
			LifeWindow:         ec.BigCache.LifeWindow,
			CleanWindow:        ec.BigCache.CleanWindow,
			Shards:             ec.BigCache.Shards,
			HardMaxCacheSizeMB: ec.BigCache.HardMaxCacheSizeMB,
		})
	case KindRedis:
		rdb := goredis.NewClient(&goredis.Options{
			Addr:     ec.Redis.Addr,
			Username: ec.Redis.Username,
			Password: ec.Redis.Password,
			DB:       ec.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("cacheman: redis ping %s: %w", ec.Redis.Addr, err)
		}
		return redis.New(redis.Config{Client: rdb, CloseClient: true, ScanCount: ec.Redis.ScanCount})
	case KindBolt:
		return bolt.Open(bolt.Config{
			Path:        ec.Bolt.Path,
			Bucket:      ec.Bolt.Bucket,
			OpenTimeout: ec.Bolt.OpenTimeout,
		})
	}
	return nil, fmt.Errorf("cacheman: unknown engine kind %q", ec.Kind)
}
