package lockring

import (
	"sort"
	"sync"
)

// Ring hands out one mutex per key so that read-check-write sequences on a
// single account or event are serialized without a global lock. Mutexes are
// created on first use and kept for the life of the process; the key space
// (accounts, events) is small enough that no eviction is needed.
type Ring struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates an empty lock ring.
func New() *Ring {
	return &Ring{locks: make(map[string]*sync.Mutex)}
}

func (r *Ring) get(key string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	if l, ok := r.locks[key]; ok {
		return l
	}
	l := &sync.Mutex{}
	r.locks[key] = l
	return l
}

// Lock acquires the exclusive lock for a single key.
func (r *Ring) Lock(key string) {
	r.get(key).Lock()
}

// Unlock releases the lock for a single key.
func (r *Ring) Unlock(key string) {
	r.get(key).Unlock()
}

// LockAll acquires the locks for every distinct key in ascending key order,
// so two callers locking overlapping sets can never deadlock. Returns the
// unlock function; keys are released in reverse order.
func (r *Ring) LockAll(keys []string) func() {
	distinct := make([]string, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			distinct = append(distinct, k)
		}
	}
	sort.Strings(distinct)

	for _, k := range distinct {
		r.get(k).Lock()
	}

	return func() {
		for i := len(distinct) - 1; i >= 0; i-- {
			r.get(distinct[i]).Unlock()
		}
	}
}
