package evict

import (
	"time"

	"github.com/gogpu/pixeloid"
)

// DefaultIdleThreshold is how long an unprotected entry may go untouched
// before becoming evictable.
const DefaultIdleThreshold = 60 * time.Second

// DefaultAdjacencyRadius is the default half-width of the scale window
// retained around the current scale.
const DefaultAdjacencyRadius = 2

// Policy decides which cached scales survive a sweep.
//
// Three tiers protect an entry: critical scales are pinned and never
// evicted, scales within the adjacency radius of the current scale are
// retained regardless of age, and everything else lives until it has been
// idle past the threshold.
type Policy struct {
	critical      map[pixeloid.Scale]struct{}
	radius        int
	idleThreshold time.Duration
}

// NewPolicy creates a Policy. Non-positive radius or threshold fall back
// to the defaults. Critical scales that are invalid (<= 0) are ignored.
func NewPolicy(critical []pixeloid.Scale, adjacencyRadius int, idleThreshold time.Duration) Policy {
	if adjacencyRadius <= 0 {
		adjacencyRadius = DefaultAdjacencyRadius
	}
	if idleThreshold <= 0 {
		idleThreshold = DefaultIdleThreshold
	}
	set := make(map[pixeloid.Scale]struct{}, len(critical))
	for _, s := range critical {
		if s.Valid() {
			set[s] = struct{}{}
		}
	}
	return Policy{
		critical:      set,
		radius:        adjacencyRadius,
		idleThreshold: idleThreshold,
	}
}

// Critical reports whether the scale is pinned.
func (p Policy) Critical(s pixeloid.Scale) bool {
	_, ok := p.critical[s]
	return ok
}

// AdjacencyRadius returns the retained window half-width.
func (p Policy) AdjacencyRadius() int { return p.radius }

// IdleThreshold returns the idle duration after which an unprotected
// entry becomes evictable.
func (p Policy) IdleThreshold() time.Duration { return p.idleThreshold }

// Protected reports whether the scale survives sweeps regardless of age:
// pinned, or within the adjacency window of the current scale.
func (p Policy) Protected(s, current pixeloid.Scale) bool {
	if p.Critical(s) {
		return true
	}
	return s.Distance(current) <= p.radius
}

// StateOf classifies a live entry under the policy.
func (p Policy) StateOf(s, current pixeloid.Scale, lastAccess, now time.Time) State {
	if s == current {
		return StateFresh
	}
	if p.Protected(s, current) {
		return StateIdle
	}
	if now.Sub(lastAccess) > p.idleThreshold {
		return StateEvictable
	}
	return StateIdle
}
