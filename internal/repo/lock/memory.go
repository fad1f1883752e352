package lock

import (
	"context"
	"fmt"
	"sync"
)

// MemoryLocker serializes work per key inside one process.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	ch      chan struct{} // buffered(1), holds a token while locked
	waiters int
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]*entry)}
}

func (l *MemoryLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		l.locks[key] = e
	}
	e.waiters++
	l.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, e, false)
		return nil, fmt.Errorf("MemoryLocker - Lock %s: %w", key, ctx.Err())
	}

	var once sync.Once

	return func() {
		once.Do(func() { l.release(key, e, true) })
	}, nil
}

func (l *MemoryLocker) release(key string, e *entry, held bool) {
	if held {
		<-e.ch
	}

	l.mu.Lock()
	e.waiters--
	if e.waiters == 0 {
		delete(l.locks, key)
	}
	l.mu.Unlock()
}

func (l *MemoryLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.locks)
}
