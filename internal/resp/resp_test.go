package resp

import (
	"context"
	"net"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cacheman "github.com/appleboy/cacheman-promise"
	"github.com/appleboy/cacheman-promise/codec"
	"github.com/appleboy/cacheman-promise/engine/ristretto"
)

func newCache(t *testing.T, background bool) cacheman.Cache[string] {
	t.Helper()
	eng, err := ristretto.New(ristretto.DefaultConfig())
	require.NoError(t, err)
	c, err := cacheman.New(cacheman.Options[string]{
		Engine:           eng,
		Codec:            codec.String{},
		Namespace:        "resp",
		BackgroundWrites: background,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close(context.Background()) })
	return c
}

func run(h *handler, name string, args ...string) output {
	return h.handle(context.Background(), command{name: name, args: args})
}

func TestHandler(t *testing.T) {
	h, err := newHandler(newCache(t, false))
	require.NoError(t, err)

	t.Run("ping", func(t *testing.T) {
		assert.Equal(t, "PONG", run(h, "PING").writeString)
		out := run(h, "PING", "hi")
		require.NotNil(t, out.writeBulk)
		assert.Equal(t, "hi", *out.writeBulk)
	})
	t.Run("get_missing", func(t *testing.T) {
		assert.True(t, run(h, "GET", "nope").writeNil)
	})
	t.Run("set_get", func(t *testing.T) {
		assert.Equal(t, "OK", run(h, "SET", "k1", "v1").writeString)
		out := run(h, "GET", "k1")
		require.NotNil(t, out.writeBulk)
		assert.Equal(t, "v1", *out.writeBulk)
	})
	t.Run("set_empty_is_present", func(t *testing.T) {
		run(h, "SET", "empty", "")
		out := run(h, "GET", "empty")
		require.NotNil(t, out.writeBulk)
		assert.Equal(t, "", *out.writeBulk)
	})
	t.Run("set_with_expiry", func(t *testing.T) {
		assert.Equal(t, "OK", run(h, "SET", "e", "v", "EX", "10").writeString)
		assert.Equal(t, "OK", run(h, "SET", "p", "v", "px", "1500").writeString)
		assert.NotNil(t, run(h, "SET", "e", "v", "EX", "0").err)
		assert.NotNil(t, run(h, "SET", "e", "v", "XX", "1").err)
	})
	t.Run("mget", func(t *testing.T) {
		run(h, "SET", "k2", "v2")
		out := run(h, "MGET", "k1", "missing", "k2", "k1")
		require.True(t, out.isArray)
		require.Len(t, out.writeArray, 4)
		assert.Equal(t, "v1", *out.writeArray[0])
		assert.Nil(t, out.writeArray[1])
		assert.Equal(t, "v2", *out.writeArray[2])
		assert.Equal(t, "v1", *out.writeArray[3])
	})
	t.Run("exists", func(t *testing.T) {
		assert.Equal(t, 2, *run(h, "EXISTS", "k1", "k2", "missing").writeInt)
	})
	t.Run("getdel", func(t *testing.T) {
		run(h, "SET", "once", "v")
		out := run(h, "GETDEL", "once")
		require.NotNil(t, out.writeBulk)
		assert.Equal(t, "v", *out.writeBulk)
		assert.True(t, run(h, "GETDEL", "once").writeNil)
	})
	t.Run("del", func(t *testing.T) {
		assert.Equal(t, 2, *run(h, "DEL", "k1", "k2", "missing").writeInt)
		assert.True(t, run(h, "GET", "k1").writeNil)
	})
	t.Run("flushdb", func(t *testing.T) {
		run(h, "SET", "a", "1")
		assert.Equal(t, "OK", run(h, "FLUSHDB").writeString)
		assert.True(t, run(h, "GET", "a").writeNil)
	})
	t.Run("wrong_args", func(t *testing.T) {
		for _, out := range []output{run(h, "GET"), run(h, "SET", "k"), run(h, "DEL"), run(h, "MGET"), run(h, "GETDEL")} {
			require.NotNil(t, out.err)
			assert.Contains(t, *out.err, "wrong number of arguments")
		}
	})
	t.Run("unknown", func(t *testing.T) {
		out := run(h, "HELLO", "3")
		require.NotNil(t, out.err)
		assert.Equal(t, "ERR unknown command 'hello'", *out.err)
	})
	t.Run("quit", func(t *testing.T) {
		out := run(h, "QUIT")
		assert.True(t, out.closeConnection)
		assert.Equal(t, "OK", out.writeString)
	})
}

// GETDEL must delete before replying, even when Pull would defer the delete.
func TestGetDelThenGet(t *testing.T) {
	for _, background := range []bool{false, true} {
		h, err := newHandler(newCache(t, background))
		require.NoError(t, err)
		for i := 0; i < 200; i++ {
			run(h, "SET", "k", "v")
			out := run(h, "GETDEL", "k")
			require.NotNil(t, out.writeBulk)
			assert.Equal(t, "v", *out.writeBulk)
			require.True(t, run(h, "GET", "k").writeNil, "iteration %d background=%v", i, background)
		}
	}
}

func TestNewHandlerRequiresCache(t *testing.T) {
	_, err := newHandler(nil)
	assert.Error(t, err)
}

func TestServeWithRedisClient(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, ln, newCache(t, false), nil) }()

	rdb := goredis.NewClient(&goredis.Options{Addr: ln.Addr().String(), Protocol: 2})
	defer rdb.Close()

	require.NoError(t, rdb.Ping(ctx).Err())
	require.NoError(t, rdb.Set(ctx, "greeting", "hello", 10*time.Second).Err())

	got, err := rdb.Get(ctx, "greeting").Result()
	require.NoError(t, err)
	assert.Equal(t, "hello", got)

	_, err = rdb.Get(ctx, "missing").Result()
	assert.ErrorIs(t, err, goredis.Nil)

	vals, err := rdb.MGet(ctx, "greeting", "missing").Result()
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"hello", nil}, vals)

	v, err := rdb.GetDel(ctx, "greeting").Result()
	require.NoError(t, err)
	assert.Equal(t, "hello", v)
	_, err = rdb.Get(ctx, "greeting").Result()
	assert.ErrorIs(t, err, goredis.Nil)

	n, err := rdb.Del(ctx, "greeting").Result()
	require.NoError(t, err)
	assert.Zero(t, n)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}

func TestRunRequiresAddr(t *testing.T) {
	assert.Error(t, Run(context.Background(), "", nil, nil))
}
