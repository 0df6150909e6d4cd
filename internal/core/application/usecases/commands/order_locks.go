package commands

import (
	"sync"
)

// OrderLocks serializes progress recomputation per order key. Two workers
// completing different tasks on the same order take turns; recomputations for
// different orders proceed concurrently. Lock entries are reference counted
// and removed when the last holder releases, so the map does not grow with
// the order history.
type OrderLocks struct {
	mu    sync.Mutex
	locks map[string]*orderLock
}

type orderLock struct {
	mu   sync.Mutex
	refs int
}

// NewOrderLocks creates an empty per-order lock registry.
func NewOrderLocks() *OrderLocks {
	return &OrderLocks{
		locks: make(map[string]*orderLock),
	}
}

// Lock acquires the mutex for the given order key, blocking until any
// concurrent holder releases it.
func (l *OrderLocks) Lock(key string) {
	l.mu.Lock()
	entry, ok := l.locks[key]
	if !ok {
		entry = &orderLock{}
		l.locks[key] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
}

// Unlock releases the mutex for the given order key.
// The entry is dropped once no goroutine holds or waits on it.
func (l *OrderLocks) Unlock(key string) {
	l.mu.Lock()
	entry, ok := l.locks[key]
	if ok {
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, key)
		}
	}
	l.mu.Unlock()

	if ok {
		entry.mu.Unlock()
	}
}
