// Package debounce collapses bursts of calls for the same key into one execution.
package debounce

import (
	"context"
	"sync"
	"time"
)

// Debouncer delays work per key until the key has been quiet for the configured delay.
// Every caller waiting on a key receives the result of the single execution.
type Debouncer[T any] struct {
	delay   time.Duration
	mu      sync.Mutex
	pending map[string]*call[T]
}

type call[T any] struct {
	timer *time.Timer
	fn    func() (T, error)
	fired bool
	done  chan struct{}
	val   T
	err   error
}

// New creates a Debouncer; a non-positive delay runs every call immediately
func New[T any](delay time.Duration) *Debouncer[T] {
	return &Debouncer[T]{
		delay:   delay,
		pending: make(map[string]*call[T]),
	}
}

// Do schedules fn for key. A later Do for the same key before the timer fires
// restarts the timer and replaces fn; all waiters get the result of the last fn.
func (d *Debouncer[T]) Do(ctx context.Context, key string, fn func() (T, error)) (T, error) {
	if d.delay <= 0 {
		return fn()
	}

	d.mu.Lock()
	c, ok := d.pending[key]
	if ok {
		c.fn = fn
		c.timer.Reset(d.delay)
	} else {
		c = &call[T]{fn: fn, done: make(chan struct{})}
		c.timer = time.AfterFunc(d.delay, func() { d.fire(key, c) })
		d.pending[key] = c
	}
	d.mu.Unlock()

	select {
	case <-c.done:
		return c.val, c.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Pending returns the number of keys with a scheduled execution
func (d *Debouncer[T]) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

func (d *Debouncer[T]) fire(key string, c *call[T]) {
	d.mu.Lock()
	// a Reset racing with expiry can schedule a second run
	if c.fired {
		d.mu.Unlock()
		return
	}
	c.fired = true
	if d.pending[key] == c {
		delete(d.pending, key)
	}
	fn := c.fn
	d.mu.Unlock()

	c.val, c.err = fn()
	close(c.done)
}
