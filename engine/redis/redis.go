// Package redis adapts a go-redis client as a shared cacheman engine.
package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/appleboy/cacheman-promise/engine"
)

var ErrNilClient = errors.New("redis engine: nil client")

const defaultScanCount = 500

type Redis struct {
	rdb         goredis.UniversalClient
	closeClient bool
	scanCount   int64
}

var _ engine.Engine = (*Redis)(nil)

type Config struct {
	Client      goredis.UniversalClient
	CloseClient bool // set true only if this engine exclusively owns the client
	ScanCount   int64
}

func New(cfg Config) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	sc := cfg.ScanCount
	if sc <= 0 {
		sc = defaultScanCount
	}
	return &Redis{rdb: cfg.Client, closeClient: cfg.CloseClient, scanCount: sc}, nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil // miss
	}
	if err != nil {
		return nil, false, err // transport/server error
	}
	return b, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if ttl < 0 {
		ttl = 0 // "no expiry" per engine contract
	}
	if err := r.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Redis) Del(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, key).Err()
}

// Clear walks the keyspace with SCAN MATCH prefix*, then unlinks what it
// found in ScanCount-sized batches. Deleting only after the walk keeps
// index-based SCAN implementations from skipping keys.
// An empty prefix is refused: the client may be shared with other data.
func (r *Redis) Clear(ctx context.Context, prefix string) error {
	if prefix == "" {
		return errors.New("redis engine: refusing to clear without a prefix")
	}
	match := escapeGlob(prefix) + "*"
	var (
		found  []string
		cursor uint64
	)
	for {
		keys, next, err := r.rdb.Scan(ctx, cursor, match, r.scanCount).Result()
		if err != nil {
			return err
		}
		found = append(found, keys...)
		cursor = next
		if cursor == 0 {
			break
		}
	}
	for len(found) > 0 {
		n := min(int(r.scanCount), len(found))
		if err := r.rdb.Unlink(ctx, found[:n]...).Err(); err != nil {
			return err
		}
		found = found[n:]
	}
	return nil
}

// Close releases the underlying redis client only when this engine owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (r *Redis) Close(context.Context) error {
	if r.closeClient {
		if err := r.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}

func escapeGlob(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '*', '?', '[', ']', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
