package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	r, err := New(Config{Client: rdb, CloseClient: true, ScanCount: 2})
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close(context.Background()) })
	return r, mr
}

func TestNilClient(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrNilClient)
}

func TestSetGetDel(t *testing.T) {
	ctx := context.Background()
	r, _ := newEngine(t)

	ok, err := r.Set(ctx, "k", []byte{0, 1, 2}, 0)
	require.NoError(t, err)
	require.True(t, ok)

	got, ok, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte{0, 1, 2}, got)

	require.NoError(t, r.Del(ctx, "k"))
	_, ok, err = r.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTTL(t *testing.T) {
	ctx := context.Background()
	r, mr := newEngine(t)

	_, err := r.Set(ctx, "ttl", []byte("v"), 30*time.Second)
	require.NoError(t, err)
	_, err = r.Set(ctx, "forever", []byte("v"), 0)
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, mr.TTL("ttl"))
	assert.Zero(t, mr.TTL("forever"))

	mr.FastForward(31 * time.Second)
	_, ok, err := r.Get(ctx, "ttl")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, _ = r.Get(ctx, "forever")
	assert.True(t, ok)
}

func TestClearScansPrefix(t *testing.T) {
	ctx := context.Background()
	r, mr := newEngine(t)

	for _, k := range []string{"cm:a:1", "cm:a:2", "cm:a:3", "cm:b:1", "other"} {
		require.NoError(t, mr.Set(k, "x"))
	}
	// glob metacharacters in the prefix are literal
	require.NoError(t, mr.Set("cm:[a]:1", "x"))

	require.NoError(t, r.Clear(ctx, "cm:a:"))
	assert.False(t, mr.Exists("cm:a:1"))
	assert.False(t, mr.Exists("cm:a:2"))
	assert.False(t, mr.Exists("cm:a:3"))
	assert.True(t, mr.Exists("cm:b:1"))
	assert.True(t, mr.Exists("other"))
	assert.True(t, mr.Exists("cm:[a]:1"))

	require.NoError(t, r.Clear(ctx, "cm:[a]:"))
	assert.False(t, mr.Exists("cm:[a]:1"))

	assert.Error(t, r.Clear(ctx, ""))
}

func TestServerErrorPropagates(t *testing.T) {
	ctx := context.Background()
	r, mr := newEngine(t)
	mr.SetError("LOADING")

	_, _, err := r.Get(ctx, "k")
	assert.Error(t, err)
}

func TestEscapeGlob(t *testing.T) {
	assert.Equal(t, `a\*b\?c\[d\]e\\`, escapeGlob(`a*b?c[d]e\`))
}
