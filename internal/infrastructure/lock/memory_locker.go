package lock

import (
	"context"
	"sync"
	"time"
)

// MemoryLocker implements locking for single-instance deployments and tests.
// Locks do not survive process restarts and are not shared across instances.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]time.Time // key -> expiry
}

// NewMemoryLocker creates an in-memory locker
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]time.Time)}
}

// TryAcquire attempts to take the lock without blocking
func (l *MemoryLocker) TryAcquire(_ context.Context, key string, ttl time.Duration) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()

	// Expired entries are dropped here so the map stays bounded by the set
	// of locks actually held, not every key ever seen.
	for k, expiry := range l.locks {
		if !now.Before(expiry) {
			delete(l.locks, k)
		}
	}

	if _, held := l.locks[key]; held {
		return nil, false, nil
	}

	l.locks[key] = now.Add(ttl)
	release := func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.locks, key)
	}
	return release, true, nil
}
