// Package evict applies the retention policy to the mesh and texture
// caches: pinned critical scales, an adjacency window around the current
// scale, and time-based idle eviction for everything else.
//
// Sweeps run from the idle queue, never on the frame-critical path, and
// the caches' synchronous lookup paths never evict. The two rules together
// make eviction-during-use races structurally impossible.
package evict

// State is the lifecycle position of a cached entry under the policy.
//
// Entries move Fresh -> Idle -> Evictable -> Evicted. A scale change can
// move an Idle or Evictable entry back to Fresh when it re-enters the
// adjacency window; Evicted is terminal.
type State uint8

const (
	// StateFresh marks an entry at the active scale or just reinstated
	// into the adjacency window.
	StateFresh State = iota

	// StateIdle marks an entry off the active scale but not yet past the
	// idle threshold, or protected by pinning or adjacency.
	StateIdle

	// StateEvictable marks an unprotected entry past the idle threshold.
	// The next sweep destroys it.
	StateEvictable

	// StateEvicted marks an entry that no longer exists.
	StateEvicted
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateFresh:
		return "fresh"
	case StateIdle:
		return "idle"
	case StateEvictable:
		return "evictable"
	case StateEvicted:
		return "evicted"
	default:
		return "unknown"
	}
}
