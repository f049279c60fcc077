package cacheman

import (
	"context"
	"time"

	c "github.com/appleboy/cacheman-promise/codec"
	"github.com/appleboy/cacheman-promise/engine"
)

// Loader computes a value on a Wrap miss.
type Loader[V any] func(ctx context.Context) (V, error)

// Cache is the provider-agnostic cache facade.
// V is the caller's value type. Serialization is handled by a pluggable Codec[V].
//
// A ttl of 0 means Options.DefaultTTL; NoExpiration stores without expiry.
type Cache[V any] interface {
	Namespace() string
	Close(context.Context) error

	// Single
	Get(ctx context.Context, key string) (v V, ok bool, err error)
	Set(ctx context.Context, key string, value V, ttl time.Duration) error
	// Del removes each key. A missing key is not an error.
	Del(ctx context.Context, keys ...string) error
	Clear(ctx context.Context) error

	// Batch. missing keeps request order, duplicates removed.
	GetMany(ctx context.Context, keys []string) (values map[string]V, missing []string, err error)

	// Memoize: return the cached value, or compute, store and return it.
	Wrap(ctx context.Context, key string, load Loader[V], ttl time.Duration) (V, error)
	WrapValue(ctx context.Context, key string, fallback V, ttl time.Duration) (V, error)

	// Pull reads key and deletes it when present; def is returned when absent.
	Pull(ctx context.Context, key string, def V) (V, error)
}

// Options tune the facade. Only Engine and Codec are required.
type Options[V any] struct {
	// Required
	Engine engine.Engine
	Codec  c.Codec[V]

	Namespace  string        // "" => "cache"
	Prefix     string        // "" => "cacheman"
	Delimiter  string        // "" => ":"
	DefaultTTL time.Duration // 0 => 60s; NoExpiration => never

	Logger Logger // if nil, NopLogger is used
	Hooks  Hooks  // if nil, NopHooks is used

	// BackgroundWrites returns from Wrap and Pull before their populate/delete
	// write reaches the engine. Failures go to Logger and Hooks only, and a
	// read right after the call may not observe the write.
	// Default false: the write is awaited and its error returned.
	BackgroundWrites bool
	// BackgroundTimeout bounds each background write. 0 => 5s.
	BackgroundTimeout time.Duration
	// MaxConcurrency limits in-flight engine calls of GetMany and Del. 0 => unlimited.
	MaxConcurrency int
	// CoalesceWraps runs at most one loader per key at a time in this process.
	CoalesceWraps bool
}

func New[V any](opts Options[V]) (Cache[V], error) {
	return newCache[V](opts)
}
