// Package bigcache adapts allegro/bigcache/v3 as an in-process cacheman engine.
package bigcache

import (
	"context"
	"errors"
	"strings"
	"time"

	bc "github.com/allegro/bigcache/v3"

	"github.com/appleboy/cacheman-promise/engine"
)

type Engine struct {
	c *bc.BigCache
}

var _ engine.Engine = (*Engine)(nil)

type Config struct {
	LifeWindow         time.Duration // 0 => 10m
	CleanWindow        time.Duration
	Shards             int
	MaxEntriesInWindow int
	MaxEntrySize       int
	HardMaxCacheSizeMB int // ~ memory limit; 0 = unlimited
}

func New(ctx context.Context, cfg Config) (*Engine, error) {
	life := cfg.LifeWindow
	if life <= 0 {
		life = 10 * time.Minute
	}
	conf := bc.DefaultConfig(life)
	conf.Verbose = false
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	if cfg.Shards > 0 {
		conf.Shards = cfg.Shards
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	c, err := bc.New(ctx, conf)
	if err != nil {
		return nil, err
	}
	return &Engine{c: c}, nil
}

func (e *Engine) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, err := e.c.Get(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// Set ignores ttl: BigCache expires entries by its global LifeWindow only.
func (e *Engine) Set(_ context.Context, key string, value []byte, _ time.Duration) (bool, error) {
	if err := e.c.Set(key, value); err != nil {
		return false, err
	}
	return true, nil
}

func (e *Engine) Del(_ context.Context, key string) error {
	err := e.c.Delete(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil
	}
	return err
}

// Clear deletes every key under prefix; an empty prefix resets the cache.
func (e *Engine) Clear(_ context.Context, prefix string) error {
	if prefix == "" {
		return e.c.Reset()
	}
	var keys []string
	it := e.c.Iterator()
	for it.SetNext() {
		info, err := it.Value()
		if err != nil {
			// entry vanished between SetNext and Value
			continue
		}
		if strings.HasPrefix(info.Key(), prefix) {
			keys = append(keys, info.Key())
		}
	}
	for _, k := range keys {
		if err := e.Del(context.Background(), k); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) Close(_ context.Context) error {
	return e.c.Close()
}
