package cacheman

import (
	"context"
	"time"

	"github.com/appleboy/cacheman-promise/promise"
)

// Lookup is the settled value of Async.Get.
type Lookup[V any] struct {
	Value V
	Found bool
}

// Batch is the settled value of Async.GetMany.
type Batch[V any] struct {
	Values  map[string]V
	Missing []string
}

// Async exposes the Cache operations as promises. Each call starts the
// operation in its own goroutine; optional callbacks are attached to the
// returned promise with Then, so Await and callbacks observe the same result.
type Async[V any] struct {
	c Cache[V]
}

func NewAsync[V any](c Cache[V]) *Async[V] {
	return &Async[V]{c: c}
}

// Cache returns the synchronous facade behind a.
func (a *Async[V]) Cache() Cache[V] { return a.c }

func (a *Async[V]) Get(ctx context.Context, key string, cbs ...promise.Callback[Lookup[V]]) *promise.Promise[Lookup[V]] {
	return attach(promise.Go(func() (Lookup[V], error) {
		v, ok, err := a.c.Get(ctx, key)
		return Lookup[V]{Value: v, Found: ok}, err
	}), cbs)
}

func (a *Async[V]) GetMany(ctx context.Context, keys []string, cbs ...promise.Callback[Batch[V]]) *promise.Promise[Batch[V]] {
	return attach(promise.Go(func() (Batch[V], error) {
		vals, missing, err := a.c.GetMany(ctx, keys)
		return Batch[V]{Values: vals, Missing: missing}, err
	}), cbs)
}

// Set resolves with the stored value.
func (a *Async[V]) Set(ctx context.Context, key string, value V, ttl time.Duration, cbs ...promise.Callback[V]) *promise.Promise[V] {
	return attach(promise.Go(func() (V, error) {
		if err := a.c.Set(ctx, key, value, ttl); err != nil {
			var zero V
			return zero, err
		}
		return value, nil
	}), cbs)
}

func (a *Async[V]) Del(ctx context.Context, keys []string, cbs ...promise.Callback[struct{}]) *promise.Promise[struct{}] {
	return attach(promise.Go(func() (struct{}, error) {
		return struct{}{}, a.c.Del(ctx, keys...)
	}), cbs)
}

func (a *Async[V]) Clear(ctx context.Context, cbs ...promise.Callback[struct{}]) *promise.Promise[struct{}] {
	return attach(promise.Go(func() (struct{}, error) {
		return struct{}{}, a.c.Clear(ctx)
	}), cbs)
}

func (a *Async[V]) Wrap(ctx context.Context, key string, load Loader[V], ttl time.Duration, cbs ...promise.Callback[V]) *promise.Promise[V] {
	return attach(promise.Go(func() (V, error) {
		return a.c.Wrap(ctx, key, load, ttl)
	}), cbs)
}

func (a *Async[V]) WrapValue(ctx context.Context, key string, fallback V, ttl time.Duration, cbs ...promise.Callback[V]) *promise.Promise[V] {
	return attach(promise.Go(func() (V, error) {
		return a.c.WrapValue(ctx, key, fallback, ttl)
	}), cbs)
}

func (a *Async[V]) Pull(ctx context.Context, key string, def V, cbs ...promise.Callback[V]) *promise.Promise[V] {
	return attach(promise.Go(func() (V, error) {
		return a.c.Pull(ctx, key, def)
	}), cbs)
}

func attach[T any](p *promise.Promise[T], cbs []promise.Callback[T]) *promise.Promise[T] {
	for _, cb := range cbs {
		p.Then(cb)
	}
	return p
}
