package evict

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/gogpu/pixeloid"
)

// Store is a cache the manager sweeps. Both the mesh cache and the
// texture cache implement it; the texture cache reports the scale half of
// its composite key, which is the only dimension the policy reads.
type Store interface {
	// SweepEvict destroys entries matching the predicate and returns the
	// number destroyed.
	SweepEvict(evict func(scale pixeloid.Scale, lastAccess time.Time) bool) int

	// TouchScale refreshes the access time of entries at a scale and
	// returns the number touched.
	TouchScale(scale pixeloid.Scale) int
}

// Manager owns the current scale and applies the retention policy to its
// stores. SetCurrentScale reinstates entries re-entering the adjacency
// window immediately, so a sweep scheduled before the scale change cannot
// destroy a resource the very next frame needs.
//
// Manager is safe for concurrent use.
type Manager struct {
	policy Policy
	clock  clockwork.Clock

	mu      sync.Mutex
	current pixeloid.Scale
	stores  []Store

	sweeps  atomic.Uint64
	evicted atomic.Uint64
}

// NewManager creates a manager over the given stores.
// A nil clock defaults to the real clock.
func NewManager(policy Policy, clock clockwork.Clock, stores ...Store) *Manager {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Manager{
		policy: policy,
		clock:  clock,
		stores: stores,
	}
}

// Policy returns the retention policy.
func (m *Manager) Policy() Policy { return m.policy }

// CurrentScale returns the scale the policy currently protects around.
func (m *Manager) CurrentScale() pixeloid.Scale {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// SetCurrentScale records a scale change and reinstates every cached
// entry that now falls inside the adjacency window, before any sweep can
// run against the new scale.
func (m *Manager) SetCurrentScale(s pixeloid.Scale) error {
	if err := s.Check(); err != nil {
		return err
	}

	m.mu.Lock()
	m.current = s
	stores := m.stores
	radius := m.policy.AdjacencyRadius()
	m.mu.Unlock()

	for d := -radius; d <= radius; d++ {
		scale := s + pixeloid.Scale(d)
		if !scale.Valid() {
			continue
		}
		for _, store := range stores {
			store.TouchScale(scale)
		}
	}
	return nil
}

// InAdjacency reports whether a scale is inside the current adjacency
// window. The canvas service uses this as the validity check for queued
// pre-generation: a task whose scale has left the window by execution
// time is dropped, not run.
func (m *Manager) InAdjacency(s pixeloid.Scale) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return s.Distance(m.current) <= m.policy.AdjacencyRadius()
}

// StateOf classifies a live entry's scale and access time under the
// policy and the current scale.
func (m *Manager) StateOf(s pixeloid.Scale, lastAccess time.Time) State {
	m.mu.Lock()
	current := m.current
	m.mu.Unlock()
	return m.policy.StateOf(s, current, lastAccess, m.clock.Now())
}

// Sweep destroys every evictable entry in every store and returns the
// number destroyed. Runs from the idle queue; the synchronous cache paths
// never call it.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	current := m.current
	stores := m.stores
	m.mu.Unlock()

	now := m.clock.Now()
	n := 0
	for _, store := range stores {
		n += store.SweepEvict(func(scale pixeloid.Scale, lastAccess time.Time) bool {
			return m.policy.StateOf(scale, current, lastAccess, now) == StateEvictable
		})
	}

	m.sweeps.Add(1)
	if n > 0 {
		m.evicted.Add(uint64(n))
		pixeloid.Logger().Debug("eviction sweep", "current", current, "evicted", n)
	}
	return n
}

// Sweeps returns the number of sweeps run.
func (m *Manager) Sweeps() uint64 { return m.sweeps.Load() }

// Evicted returns the total number of entries destroyed by sweeps.
func (m *Manager) Evicted() uint64 { return m.evicted.Load() }
