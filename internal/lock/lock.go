// Package lock provides per-key mutual exclusion for checkout.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrNotAcquired = errors.New("lock not acquired")

// Release frees a held lock. Calling it more than once is safe.
type Release func(ctx context.Context) error

type Locker interface {
	// Acquire blocks until the key is free or ctx is done. ttl bounds how long
	// a crashed holder can keep the key; implementations without expiry ignore it.
	Acquire(ctx context.Context, key string, ttl time.Duration) (Release, error)
}

type slot struct {
	ch   chan struct{}
	refs int
}

// LocalLocker serializes holders of the same key inside one process.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]*slot
}

func NewLocal() *LocalLocker {
	return &LocalLocker{slots: make(map[string]*slot)}
}

func (l *LocalLocker) Acquire(ctx context.Context, key string, _ time.Duration) (Release, error) {
	l.mu.Lock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	l.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		l.unref(key, s)
		return nil, errors.Join(ErrNotAcquired, ctx.Err())
	}

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			<-s.ch
			l.unref(key, s)
		})
		return nil
	}, nil
}

func (l *LocalLocker) unref(key string, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}
