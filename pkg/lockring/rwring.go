package lockring

import "sync"

// RWRing hands out one RWMutex per key. Used where a rare coarse operation
// (seat layout reconfiguration) must exclude many fine-grained ones (row
// reservations): readers are the fine-grained operations, the writer is the
// coarse one.
type RWRing struct {
	mu    sync.Mutex
	locks map[string]*sync.RWMutex
}

// NewRW creates an empty read-write lock ring.
func NewRW() *RWRing {
	return &RWRing{locks: make(map[string]*sync.RWMutex)}
}

func (r *RWRing) get(key string) *sync.RWMutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	if l, ok := r.locks[key]; ok {
		return l
	}
	l := &sync.RWMutex{}
	r.locks[key] = l
	return l
}

// RLock takes the shared side of the key's lock.
func (r *RWRing) RLock(key string) {
	r.get(key).RLock()
}

// RUnlock releases the shared side.
func (r *RWRing) RUnlock(key string) {
	r.get(key).RUnlock()
}

// Lock takes the exclusive side of the key's lock.
func (r *RWRing) Lock(key string) {
	r.get(key).Lock()
}

// Unlock releases the exclusive side.
func (r *RWRing) Unlock(key string) {
	r.get(key).Unlock()
}
