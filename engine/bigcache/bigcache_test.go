package bigcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(context.Background(), Config{LifeWindow: time.Minute, Shards: 16})
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close(context.Background()) })
	return e
}

func TestSetGetDel(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)

	ok, err := e.Set(ctx, "k", []byte("v"), time.Second)
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

	assert.NoError(t, e.Del(ctx, "missing"), "missing key is not an error")
}

func TestClearByPrefix(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)

	for _, k := range []string{"cacheman:a:1", "cacheman:a:2", "cacheman:b:1"} {
		_, err := e.Set(ctx, k, []byte(k), 0)
		require.NoError(t, err)
	}
	require.NoError(t, e.Clear(ctx, "cacheman:a:"))

	_, ok, _ := e.Get(ctx, "cacheman:a:1")
	assert.False(t, ok)
	_, ok, _ = e.Get(ctx, "cacheman:a:2")
	assert.False(t, ok)
	_, ok, _ = e.Get(ctx, "cacheman:b:1")
	assert.True(t, ok)

	require.NoError(t, e.Clear(ctx, ""))
	_, ok, _ = e.Get(ctx, "cacheman:b:1")
	assert.False(t, ok)
}
