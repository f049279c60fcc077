package asynchook

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cacheman "github.com/appleboy/cacheman-promise"
)

type countingHooks struct {
	cacheman.NopHooks
	mu     sync.Mutex
	events []string
	block  chan struct{}
}

func (c *countingHooks) record(e string) {
	if c.block != nil {
		<-c.block
	}
	c.mu.Lock()
	c.events = append(c.events, e)
	c.mu.Unlock()
}

func (c *countingHooks) Lookup(ns string, hit bool) {
	if hit {
		c.record("hit " + ns)
		return
	}
	c.record("miss " + ns)
}
func (c *countingHooks) LoaderCalled(ns string)     { c.record("load " + ns) }
func (c *countingHooks) SelfHeal(k, r string)       { c.record("heal " + r) }
func (c *countingHooks) EngineSetRejected(k string) { c.record("reject " + k) }
func (c *countingHooks) BackgroundWriteFailed(op, k string, err error) {
	c.record("bg " + op + " " + err.Error())
}

func TestForwardsAllEvents(t *testing.T) {
	inner := &countingHooks{}
	h := New(inner, 1, 16)

	h.Lookup("users", true)
	h.Lookup("users", false)
	h.LoaderCalled("users")
	h.SelfHeal("k", "corrupt")
	h.EngineSetRejected("k")
	h.BackgroundWriteFailed("set", "k", errors.New("boom"))
	h.Close()

	// single worker preserves order
	assert.Equal(t, []string{
		"hit users", "miss users", "load users", "heal corrupt", "reject k", "bg set boom",
	}, inner.events)
	assert.Zero(t, h.Dropped())
}

func TestDropsWhenFull(t *testing.T) {
	inner := &countingHooks{block: make(chan struct{})}
	h := New(inner, 1, 1)

	// the worker takes one event and blocks; one more fits the queue
	for i := 0; i < 10; i++ {
		h.LoaderCalled("ns")
	}
	close(inner.block)
	h.Close()

	require.NotZero(t, h.Dropped())
	assert.Equal(t, uint64(10), h.Dropped()+uint64(len(inner.events)))
}

func TestSendAfterCloseIsDropped(t *testing.T) {
	h := New(nil, 2, 4)
	h.Close()
	h.Close() // idempotent

	assert.NotPanics(t, func() { h.Lookup("ns", true) })
	assert.Equal(t, uint64(1), h.Dropped())
}
