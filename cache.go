package cacheman

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	c "github.com/appleboy/cacheman-promise/codec"
	"github.com/appleboy/cacheman-promise/engine"
	"github.com/appleboy/cacheman-promise/internal/util"
	"github.com/appleboy/cacheman-promise/internal/wire"
)

var errNilLoader = errors.New("cacheman: nil loader")

type cache[V any] struct {
	ns      string
	keys    util.Keyspace
	engine  engine.Engine
	codec   c.Codec[V]
	log     Logger
	hooks   Hooks
	flights *singleflight.Group // nil unless CoalesceWraps

	defaultTTL time.Duration
	background bool
	bgTimeout  time.Duration
	maxConc    int

	// background writes of Wrap/Pull; Close waits for them
	mu        sync.Mutex // guards closed and pending.Add
	closed    bool
	pending   sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
}

func newCache[V any](opts Options[V]) (*cache[V], error) {
	if opts.Engine == nil {
		return nil, ErrEngineRequired
	}
	if opts.Codec == nil {
		return nil, ErrCodecRequired
	}

	ns := coalesce(opts.Namespace, defaultNamespace)
	c := &cache[V]{
		ns:         ns,
		keys:       util.NewKeyspace(coalesce(opts.Prefix, defaultPrefix), ns, coalesce(opts.Delimiter, defaultDelimiter)),
		engine:     opts.Engine,
		codec:      opts.Codec,
		background: opts.BackgroundWrites,
		maxConc:    opts.MaxConcurrency,
	}

	// defaults
	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	c.defaultTTL = coalesce(opts.DefaultTTL, defaultTTL)
	c.bgTimeout = coalesce(opts.BackgroundTimeout, defaultBackgroundTimeout)
	if opts.CoalesceWraps {
		c.flights = new(singleflight.Group)
	}
	return c, nil
}

func (c *cache[V]) Namespace() string { return c.ns }

// Close waits for background writes (bounded by ctx) and closes the engine.
// Background writes requested after Close fail with ErrClosed.
func (c *cache[V]) Close(ctx context.Context) error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()

		done := make(chan struct{})
		go func() {
			c.pending.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			c.log.Warn("close: background writes still pending", Fields{"ns": c.ns})
		}
		c.closeErr = c.engine.Close(ctx)
	})
	return c.closeErr
}

func (c *cache[V]) Get(ctx context.Context, key string) (V, bool, error) {
	v, ok, err := c.get(ctx, key)
	if err == nil {
		c.hooks.Lookup(c.ns, ok)
	}
	return v, ok, err
}

func (c *cache[V]) get(ctx context.Context, key string) (V, bool, error) {
	var zero V
	k := c.keys.Key(key)
	raw, ok, err := c.engine.Get(ctx, k)
	if err != nil {
		return zero, false, opErr("get", key, err)
	}
	if !ok {
		return zero, false, nil
	}
	payload, isNull, err := wire.Decode(raw)
	if err != nil {
		c.selfHeal(ctx, k, "corrupt")
		return zero, false, nil
	}
	if isNull {
		return zero, false, nil
	}
	v, err := c.codec.Decode(payload)
	if err != nil {
		c.selfHeal(ctx, k, "value_decode")
		return zero, false, nil
	}
	if isNil(v) {
		return zero, false, nil
	}
	return v, true, nil
}

func (c *cache[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	b, err := c.encode(value)
	if err != nil {
		return err
	}
	k := c.keys.Key(key)
	ok, err := c.engine.Set(ctx, k, b, c.effectiveTTL(ttl))
	if err != nil {
		return opErr("set", key, err)
	}
	if !ok {
		c.log.Debug("Set rejected by engine (pressure)", Fields{"key": key})
		c.hooks.EngineSetRejected(k)
	}
	return nil
}

func (c *cache[V]) Del(ctx context.Context, keys ...string) error {
	keys = util.Uniq(keys)
	switch len(keys) {
	case 0:
		return nil
	case 1:
		return c.del(ctx, keys[0])
	}

	g, gctx := errgroup.WithContext(ctx)
	if c.maxConc > 0 {
		g.SetLimit(c.maxConc)
	}
	for _, key := range keys {
		g.Go(func() error { return c.del(gctx, key) })
	}
	return g.Wait()
}

func (c *cache[V]) del(ctx context.Context, key string) error {
	return opErr("del", key, c.engine.Del(ctx, c.keys.Key(key)))
}

func (c *cache[V]) Clear(ctx context.Context) error {
	if err := c.engine.Clear(ctx, c.keys.Prefix()); err != nil {
		return opErr("clear", "", err)
	}
	c.log.Debug("cleared namespace", Fields{"ns": c.ns})
	return nil
}

// GetMany reads every distinct key concurrently. The first engine error
// cancels the remaining reads and fails the whole call.
func (c *cache[V]) GetMany(ctx context.Context, keys []string) (map[string]V, []string, error) {
	keys = util.Uniq(keys)
	out := make(map[string]V, len(keys))
	if len(keys) == 0 {
		return out, nil, nil
	}

	vals := make([]V, len(keys))
	found := make([]bool, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	if c.maxConc > 0 {
		g.SetLimit(c.maxConc)
	}
	for i, key := range keys {
		g.Go(func() error {
			v, ok, err := c.get(gctx, key)
			if err != nil {
				return err
			}
			vals[i], found[i] = v, ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var missing []string
	for i, key := range keys {
		c.hooks.Lookup(c.ns, found[i])
		if found[i] {
			out[key] = vals[i]
		} else {
			missing = append(missing, key)
		}
	}
	return out, missing, nil
}

func (c *cache[V]) Wrap(ctx context.Context, key string, load Loader[V], ttl time.Duration) (V, error) {
	if load == nil {
		var zero V
		return zero, errNilLoader
	}
	return c.wrap(ctx, key, ttl, func(ctx context.Context) (V, error) {
		c.hooks.LoaderCalled(c.ns)
		return load(ctx)
	})
}

// WrapValue stores fallback on a miss. Zero values are stored as given;
// a nil fallback is stored as null and stays absent for later reads.
func (c *cache[V]) WrapValue(ctx context.Context, key string, fallback V, ttl time.Duration) (V, error) {
	return c.wrap(ctx, key, ttl, func(context.Context) (V, error) { return fallback, nil })
}

func (c *cache[V]) wrap(ctx context.Context, key string, ttl time.Duration, compute Loader[V]) (V, error) {
	if c.flights == nil {
		return c.wrapOnce(ctx, key, ttl, compute)
	}
	// the first caller's ctx drives the shared load
	res, err, _ := c.flights.Do(key, func() (any, error) {
		return c.wrapOnce(ctx, key, ttl, compute)
	})
	if err != nil {
		var zero V
		return zero, err
	}
	v, _ := res.(V)
	return v, nil
}

func (c *cache[V]) wrapOnce(ctx context.Context, key string, ttl time.Duration, compute Loader[V]) (V, error) {
	var zero V
	v, ok, err := c.get(ctx, key)
	if err != nil {
		return zero, err
	}
	c.hooks.Lookup(c.ns, ok)
	if ok {
		return v, nil
	}

	v, err = compute(ctx)
	if err != nil {
		return zero, err
	}
	if err := c.write(ctx, "set", key, func(ctx context.Context) error {
		return c.Set(ctx, key, v, ttl)
	}); err != nil {
		return zero, err
	}
	return v, nil
}

func (c *cache[V]) Pull(ctx context.Context, key string, def V) (V, error) {
	var zero V
	v, ok, err := c.get(ctx, key)
	if err != nil {
		return zero, err
	}
	c.hooks.Lookup(c.ns, ok)
	if !ok {
		return def, nil
	}
	if err := c.write(ctx, "del", key, func(ctx context.Context) error {
		return c.del(ctx, key)
	}); err != nil {
		return zero, err
	}
	return v, nil
}

// write runs fn inline unless BackgroundWrites is set; then it runs on a
// detached context bounded by BackgroundTimeout.
func (c *cache[V]) write(ctx context.Context, op, key string, fn func(context.Context) error) error {
	if !c.background {
		return fn(ctx)
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return opErr(op, key, ErrClosed)
	}
	c.pending.Add(1)
	c.mu.Unlock()
	go func() {
		defer c.pending.Done()
		bctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.bgTimeout)
		defer cancel()
		if err := fn(bctx); err != nil {
			c.log.Warn("background write failed", Fields{"op": op, "key": key, "err": err})
			c.hooks.BackgroundWriteFailed(op, c.keys.Key(key), err)
		}
	}()
	return nil
}

func (c *cache[V]) encode(v V) ([]byte, error) {
	if isNil(v) {
		return wire.EncodeNull(), nil
	}
	payload, err := c.codec.Encode(v)
	if err != nil {
		return nil, err
	}
	return wire.EncodeValue(payload), nil
}

func (c *cache[V]) effectiveTTL(ttl time.Duration) time.Duration {
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	if ttl < 0 {
		return 0 // engine: no expiry
	}
	return ttl
}

func (c *cache[V]) selfHeal(ctx context.Context, storageKey, reason string) {
	_ = c.engine.Del(ctx, storageKey)
	c.log.Debug("deleted unreadable entry", Fields{"key": storageKey, "reason": reason})
	c.hooks.SelfHeal(storageKey, reason)
}

// isNil reports whether v is a nil pointer, map, slice, interface, func or chan.
func isNil[V any](v V) bool {
	rv := reflect.ValueOf(any(v))
	if !rv.IsValid() {
		return true
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
