package pixeloid

import "sync"

// Mapper converts between vertex space and world space.
//
// The two spaces are related by a single additive offset:
//
//	world = vertex + offset
//
// The offset is the only state. It is updated whenever the viewport pans
// and must be set before any render pass that depends on the new viewport
// position. No rounding is applied at this layer: an earlier revision of
// the canvas rounded offsets and produced visible coordinate drift during
// zoom, so conversions here are exact additions and subtractions, and
// ToVertex(ToWorld(v)) returns the identical float representation of v.
//
// Mapper is safe for concurrent use.
type Mapper struct {
	mu     sync.RWMutex
	offset Point
	gen    uint64
}

// NewMapper creates a Mapper with a zero offset.
func NewMapper() *Mapper {
	return &Mapper{}
}

// ToWorld converts a vertex-space coordinate to world space.
func (m *Mapper) ToWorld(v Point) Point {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return v.Add(m.offset)
}

// ToVertex converts a world-space coordinate to vertex space.
func (m *Mapper) ToVertex(w Point) Point {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return w.Sub(m.offset)
}

// Offset returns the current vertex-to-world offset.
func (m *Mapper) Offset() Point {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.offset
}

// SetOffset replaces the vertex-to-world offset. This is the only mutator.
func (m *Mapper) SetOffset(o Point) {
	m.mu.Lock()
	m.offset = o
	m.gen++
	m.mu.Unlock()
}

// Generation returns a counter incremented on every SetOffset call.
// Consumers that derive state from the offset check it once per frame
// instead of subscribing to mutation callbacks.
func (m *Mapper) Generation() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gen
}
