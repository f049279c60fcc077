// Package promise provides a typed deferred value for callers that prefer
// to start an operation now and collect its result later.
//
// A Promise settles exactly once. Callbacks registered with Then are
// continuations on the settled value; they never replace Await as the way
// to observe the outcome.
package promise

import (
	"context"
	"sync"
)

// Callback receives the settled value and error of a Promise.
type Callback[T any] func(T, error)

// Promise is a deferred (value, error) pair. The zero value is not usable;
// construct with New, Go, Resolved or Rejected.
type Promise[T any] struct {
	done chan struct{}
	once sync.Once
	val  T
	err  error
}

// New returns an unsettled promise and the function that settles it.
// Calling settle more than once is a no-op after the first call.
func New[T any]() (*Promise[T], func(T, error)) {
	p := &Promise[T]{done: make(chan struct{})}
	return p, p.settle
}

// Go runs fn in a new goroutine and settles the promise with its result.
// A panic in fn is not recovered.
func Go[T any](fn func() (T, error)) *Promise[T] {
	p, settle := New[T]()
	go func() { settle(fn()) }()
	return p
}

// Resolved returns a promise already settled with v.
func Resolved[T any](v T) *Promise[T] {
	p, settle := New[T]()
	settle(v, nil)
	return p
}

// Rejected returns a promise already settled with err.
func Rejected[T any](err error) *Promise[T] {
	p, settle := New[T]()
	var zero T
	settle(zero, err)
	return p
}

func (p *Promise[T]) settle(v T, err error) {
	p.once.Do(func() {
		p.val, p.err = v, err
		close(p.done)
	})
}

// Done is closed once the promise settles.
func (p *Promise[T]) Done() <-chan struct{} { return p.done }

// Await blocks until the promise settles or ctx is done. Cancelling ctx only
// stops the wait; the underlying operation keeps running.
func (p *Promise[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-p.done:
		return p.val, p.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Result returns the settled value without blocking; ok is false while pending.
func (p *Promise[T]) Result() (v T, err error, ok bool) {
	select {
	case <-p.done:
		return p.val, p.err, true
	default:
		var zero T
		return zero, nil, false
	}
}

// Then schedules cb to run once, in its own goroutine, after the promise
// settles. It returns p so calls can be chained. A nil cb is ignored.
func (p *Promise[T]) Then(cb Callback[T]) *Promise[T] {
	if cb == nil {
		return p
	}
	go func() {
		<-p.done
		cb(p.val, p.err)
	}()
	return p
}
