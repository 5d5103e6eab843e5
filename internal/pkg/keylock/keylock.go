// Package keylock serializes work per key with bounded waiting.
package keylock

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

var ErrTimeout = errors.New("keylock: timed out waiting for lock")

type entry struct {
	sem  *semaphore.Weighted
	refs int
}

// Locker hands out one exclusive lock per key. Entries are dropped once no
// goroutine holds or waits for them, so the map only grows with contention.
type Locker[K comparable] struct {
	mu      sync.Mutex
	entries map[K]*entry
	timeout time.Duration
}

// New returns a Locker whose Acquire gives up after timeout. A zero timeout
// waits until the context is done.
func New[K comparable](timeout time.Duration) *Locker[K] {
	return &Locker[K]{
		entries: make(map[K]*entry),
		timeout: timeout,
	}
}

// Acquire blocks until the lock for key is held. The returned release func is
// safe to call more than once. ErrTimeout is returned when the wait exceeds the
// configured timeout; the context error is returned when ctx ends first.
func (l *Locker[K]) Acquire(ctx context.Context, key K) (func(), error) {
	e := l.ref(key)

	waitCtx := ctx
	if l.timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	if err := e.sem.Acquire(waitCtx, 1); err != nil {
		l.unref(key, e)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, ErrTimeout
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			e.sem.Release(1)
			l.unref(key, e)
		})
	}, nil
}

// Len reports how many keys are currently held or awaited.
func (l *Locker[K]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *Locker[K]) ref(key K) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		e = &entry{sem: semaphore.NewWeighted(1)}
		l.entries[key] = e
	}
	e.refs++
	return e
}

func (l *Locker[K]) unref(key K, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}
