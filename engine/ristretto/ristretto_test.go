package ristretto

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Metrics = true
	e, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close(context.Background()) })
	return e
}

func TestSetGetDel(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)

	ok, err := e.Set(ctx, "k", []byte("v"), 0)
	require.NoError(t, err)
	require.True(t, ok)

	got, ok, err := e.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, e.Del(ctx, "k"))
	_, ok, err = e.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, e.Del(ctx, "missing"))
}

func TestStoredBytesAreNotShared(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)

	in := []byte("abc")
	_, err := e.Set(ctx, "k", in, 0)
	require.NoError(t, err)
	in[0] = 'Z'

	got, ok, err := e.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("abc"), got)
	got[0] = 'X'

	again, _, _ := e.Get(ctx, "k")
	assert.Equal(t, []byte("abc"), again)
}

func TestTTLExpires(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)

	_, err := e.Set(ctx, "short", []byte("v"), 20*time.Millisecond)
	require.NoError(t, err)
	assert.Eventually(t, func() bool {
		_, ok, _ := e.Get(ctx, "short")
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
}

func TestClearPurgesEverything(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)

	_, _ = e.Set(ctx, "a:1", []byte("1"), 0)
	_, _ = e.Set(ctx, "b:1", []byte("1"), 0)
	require.NoError(t, e.Clear(ctx, "a:"))

	_, okA, _ := e.Get(ctx, "a:1")
	_, okB, _ := e.Get(ctx, "b:1")
	assert.False(t, okA)
	assert.False(t, okB, "ristretto cannot scope Clear; the whole cache is purged")
}

func TestMetricsEnabled(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	_, _, _ = e.Get(ctx, "nope")
	require.NotNil(t, e.Metrics())
	assert.Equal(t, uint64(1), e.Metrics().Misses())
}

func TestInvalidConfig(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}
