package store

import "sync"

// ownerLocks serializes writes per owner. Readers never take these locks;
// eventual consistency of recall counters across concurrent reads is
// acceptable, lost increments are not.
type ownerLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newOwnerLocks() *ownerLocks {
	return &ownerLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *ownerLocks) forOwner(ownerID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[ownerID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[ownerID] = m
	}
	return m
}
