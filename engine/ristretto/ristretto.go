// Package ristretto adapts dgraph-io/ristretto as an in-process cacheman engine.
package ristretto

import (
	"context"
	"errors"
	"time"

	rc "github.com/dgraph-io/ristretto"

	"github.com/appleboy/cacheman-promise/engine"
)

// CostFunc returns the admission cost of a value. Defaults to len(value).
type CostFunc func(key string, value []byte) int64

type Engine struct {
	c    *rc.Cache
	cost CostFunc
}

var _ engine.Engine = (*Engine)(nil)

type Config struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
	Metrics     bool
	Cost        CostFunc
}

// DefaultConfig sizes the cache for roughly 100k entries / 64MiB of values.
func DefaultConfig() Config {
	return Config{
		NumCounters: 1e6,
		MaxCost:     64 << 20,
		BufferItems: 64,
	}
}

func New(cfg Config) (*Engine, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("ristretto: invalid config")
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	cost := cfg.Cost
	if cost == nil {
		cost = func(_ string, v []byte) int64 { return int64(len(v)) }
	}
	return &Engine{c: c, cost: cost}, nil
}

func (e *Engine) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := e.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, _ := v.([]byte)
	if b == nil {
		// drop unexpected entry shape
		e.c.Del(key)
		return nil, false, nil
	}
	// ristretto hands out the stored slice itself
	return append([]byte(nil), b...), true, nil
}

// Set blocks until the write buffer is applied so a following Get observes it.
// ok=false means the admission policy dropped the entry.
func (e *Engine) Set(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if ttl < 0 {
		ttl = 0
	}
	value = append([]byte(nil), value...)
	ok := e.c.SetWithTTL(key, value, e.cost(key, value), ttl)
	e.c.Wait()
	return ok, nil
}

func (e *Engine) Del(_ context.Context, key string) error {
	e.c.Del(key)
	return nil
}

// Clear purges the whole cache: ristretto cannot enumerate keys, so the
// prefix is ignored. Give each namespace its own Engine if that matters.
func (e *Engine) Clear(_ context.Context, _ string) error {
	e.c.Clear()
	return nil
}

func (e *Engine) Close(_ context.Context) error {
	e.c.Wait()
	e.c.Close()
	return nil
}

// Metrics exposes ristretto's counters (nil unless Config.Metrics is set).
func (e *Engine) Metrics() *rc.Metrics { return e.c.Metrics }
