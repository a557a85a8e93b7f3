package provider

import "sync"

// keyLocks hands out one mutex per key. Entries are dropped once no holder
// or waiter remains.
type keyLocks[K comparable] struct {
	mu      sync.Mutex
	entries map[K]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// lock acquires the mutex of key and returns its release function.
func (l *keyLocks[K]) lock(key K) func() {
	l.mu.Lock()
	if l.entries == nil {
		l.entries = make(map[K]*keyLock)
	}
	e, ok := l.entries[key]
	if !ok {
		e = &keyLock{}
		l.entries[key] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.entries, key)
		}
		l.mu.Unlock()
	}
}

// size returns the number of live entries.
func (l *keyLocks[K]) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
