// Package cache provides a small generic memo store with a soft size
// limit, used for derived values that are cheap to recompute but touched
// every frame (visibility classifications, planned resolutions).
package cache

import "sync"

// Memo is a generic keyed store with a soft limit. When the store exceeds
// the limit, the least recently touched quarter of the entries is dropped;
// memoized values are recomputable, so batch eviction is acceptable and
// keeps the common path to a single map access.
//
// Memo is safe for concurrent use.
// Memo must not be copied after creation (has mutex).
type Memo[K comparable, V any] struct {
	mu        sync.Mutex
	entries   map[K]*memoEntry[V]
	softLimit int
	tick      int64 // monotonic access counter
}

// memoEntry holds a memoized value with its access tick.
type memoEntry[V any] struct {
	value V
	atime int64
}

// New creates a memo store with the given soft limit.
// A softLimit of 0 means unlimited.
func New[K comparable, V any](softLimit int) *Memo[K, V] {
	return &Memo[K, V]{
		entries:   make(map[K]*memoEntry[V]),
		softLimit: softLimit,
	}
}

// Get retrieves a memoized value.
// Returns (value, true) if found, (zero, false) otherwise.
func (m *Memo[K, V]) Get(key K) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		var zero V
		return zero, false
	}

	m.tick++
	entry.atime = m.tick
	return entry.value, true
}

// Put stores a value, replacing any previous value at the key.
// If the store exceeds the soft limit, old entries are dropped.
func (m *Memo[K, V]) Put(key K, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tick++
	m.entries[key] = &memoEntry[V]{value: value, atime: m.tick}

	if m.softLimit > 0 && len(m.entries) > m.softLimit {
		m.dropOldest()
	}
}

// Delete removes an entry. Returns true if the entry existed.
func (m *Memo[K, V]) Delete(key K) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[key]; ok {
		delete(m.entries, key)
		return true
	}
	return false
}

// DeleteFunc removes every entry whose key matches the predicate and
// returns the number removed. Used to drop all memos for a deleted object.
func (m *Memo[K, V]) DeleteFunc(match func(K) bool) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for key := range m.entries {
		if match(key) {
			delete(m.entries, key)
			n++
		}
	}
	return n
}

// Len returns the number of memoized entries.
func (m *Memo[K, V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Clear removes all entries.
func (m *Memo[K, V]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[K]*memoEntry[V])
	m.tick = 0
}

// dropOldest removes the least recently touched entries until the store
// is at 3/4 of the soft limit. Caller must hold m.mu.
func (m *Memo[K, V]) dropOldest() {
	targetSize := m.softLimit * 3 / 4
	if targetSize < 1 {
		targetSize = 1
	}
	toDrop := len(m.entries) - targetSize
	if toDrop <= 0 {
		return
	}

	type aged struct {
		key   K
		atime int64
	}
	all := make([]aged, 0, len(m.entries))
	for key, e := range m.entries {
		all = append(all, aged{key: key, atime: e.atime})
	}

	// Selection of the oldest entries; batches are small enough that a
	// partial selection sort beats allocating a heap.
	for i := 0; i < toDrop && i < len(all); i++ {
		minIdx := i
		for j := i + 1; j < len(all); j++ {
			if all[j].atime < all[minIdx].atime {
				minIdx = j
			}
		}
		if minIdx != i {
			all[i], all[minIdx] = all[minIdx], all[i]
		}
		delete(m.entries, all[i].key)
	}
}
