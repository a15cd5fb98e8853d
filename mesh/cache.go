package mesh

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/gogpu/pixeloid"
)

// Entry is one cached mesh. Entries are immutable once created: an
// invalidated scale is regenerated wholesale under the same key, never
// patched in place.
type Entry struct {
	// Resolution the mesh was generated for.
	Resolution Resolution

	// Vertices holds GridWidth*GridHeight*2 pre-scaled float32 positions.
	Vertices []float32

	// Indices holds 6*(GridWidth-1)*(GridHeight-1) triangle indices.
	Indices []uint32

	// CreatedAt is the generation time.
	CreatedAt time.Time

	// Generation is a monotonic counter assigned at generation. Two calls
	// returning the same Generation provably shared one generated mesh.
	Generation uint64

	valid atomic.Bool
}

// Valid reports whether the entry is still current. A caller holding an
// entry that has gone stale (evicted or invalidated since lookup) should
// re-request it via GetOrCreate rather than drawing from it.
func (e *Entry) Valid() bool { return e.valid.Load() }

// Buffers returns the entry's vertex and index buffers for drawing. If the
// entry was evicted or invalidated after the caller obtained it, it returns
// an error wrapping [pixeloid.ErrStaleEviction]; the caller recovers by
// re-requesting through GetOrCreate.
func (e *Entry) Buffers() ([]float32, []uint32, error) {
	if !e.valid.Load() {
		return nil, nil, fmt.Errorf("%w: mesh for scale %v", pixeloid.ErrStaleEviction, e.Resolution.Scale)
	}
	return e.Vertices, e.Indices, nil
}

// Stats is a snapshot of cache counters.
type Stats struct {
	// Entries is the number of cached scales.
	Entries int
	// Hits is the number of lookups served from cache.
	Hits uint64
	// Misses is the number of lookups that generated a mesh.
	Misses uint64
	// Evictions is the number of entries destroyed.
	Evictions uint64
}

// Cache generates and stores one mesh per zoom scale.
//
// A hit on a valid entry is O(1) and returns the identical entry instance;
// generating a grid is O(w*h) and runs only on the first request for a
// scale or after an explicit invalidation. The cache never evicts on the
// synchronous GetOrCreate path; eviction belongs to the sweep (see the
// evict package).
//
// Cache is safe for concurrent use.
type Cache struct {
	planner Planner
	clock   clockwork.Clock

	mu         sync.Mutex
	entries    map[pixeloid.Scale]*Entry
	lastAccess map[pixeloid.Scale]time.Time
	generation uint64

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// New creates a mesh cache using the given planner.
// A nil clock defaults to the real clock.
func New(planner Planner, clock clockwork.Clock) *Cache {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Cache{
		planner:    planner,
		clock:      clock,
		entries:    make(map[pixeloid.Scale]*Entry),
		lastAccess: make(map[pixeloid.Scale]time.Time),
	}
}

// Planner returns the planner the cache generates from.
func (c *Cache) Planner() Planner { return c.planner }

// GetOrCreate returns the cached mesh for a scale, generating it on first
// request or after invalidation. Returns an error wrapping
// [pixeloid.ErrInvalidScale] for scales <= 0.
func (c *Cache) GetOrCreate(scale pixeloid.Scale) (*Entry, error) {
	if err := scale.Check(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[scale]; ok && e.Valid() {
		c.lastAccess[scale] = c.clock.Now()
		c.hits.Add(1)
		return e, nil
	}

	res, err := c.planner.Plan(scale)
	if err != nil {
		return nil, err
	}

	c.generation++
	e := &Entry{
		Resolution: res,
		Vertices:   buildVertices(res),
		Indices:    buildIndices(res),
		CreatedAt:  c.clock.Now(),
		Generation: c.generation,
	}
	e.valid.Store(true)

	c.entries[scale] = e
	c.lastAccess[scale] = e.CreatedAt
	c.misses.Add(1)

	pixeloid.Logger().Debug("mesh generated",
		"scale", scale,
		"vertices", res.VertexCount(),
		"indices", res.IndexCount(),
		"generation", e.Generation)

	return e, nil
}

// Contains reports whether a valid mesh is cached for the scale.
// Does not update the access time.
func (c *Cache) Contains(scale pixeloid.Scale) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[scale]
	return ok && e.Valid()
}

// Invalidate marks the scale's mesh stale. The entry stays under its key
// and is regenerated by the next GetOrCreate. Returns true if an entry
// was invalidated.
func (c *Cache) Invalidate(scale pixeloid.Scale) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[scale]
	if !ok {
		return false
	}
	e.valid.Store(false)
	return true
}

// Remove destroys the scale's mesh and removes the entry.
// Returns true if an entry existed.
func (c *Cache) Remove(scale pixeloid.Scale) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.removeLocked(scale)
}

// Scales returns the scales currently cached, in no particular order.
func (c *Cache) Scales() []pixeloid.Scale {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]pixeloid.Scale, 0, len(c.entries))
	for s := range c.entries {
		out = append(out, s)
	}
	return out
}

// LastAccess returns when the scale's entry was last requested.
func (c *Cache) LastAccess(scale pixeloid.Scale) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.lastAccess[scale]
	return t, ok
}

// TouchScale refreshes the access time for a scale, keeping it out of
// idle eviction. The eviction manager calls this when a scale re-enters
// the adjacency window. Returns the number of entries touched (0 or 1).
func (c *Cache) TouchScale(scale pixeloid.Scale) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[scale]; !ok {
		return 0
	}
	c.lastAccess[scale] = c.clock.Now()
	return 1
}

// SweepEvict destroys every entry for which evict returns true and
// returns the number destroyed. Called by the eviction manager's sweep,
// never from the frame-critical path.
func (c *Cache) SweepEvict(evict func(scale pixeloid.Scale, lastAccess time.Time) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for scale := range c.entries {
		if evict(scale, c.lastAccess[scale]) {
			c.removeLocked(scale)
			n++
		}
	}
	return n
}

// Len returns the number of cached scales.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	entries := len(c.entries)
	c.mu.Unlock()
	return Stats{
		Entries:   entries,
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}

// Clear destroys all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for scale := range c.entries {
		c.removeLocked(scale)
	}
}

// removeLocked marks the entry stale, drops the buffers and deletes the
// key. Caller must hold c.mu.
func (c *Cache) removeLocked(scale pixeloid.Scale) bool {
	e, ok := c.entries[scale]
	if !ok {
		return false
	}
	e.valid.Store(false)
	delete(c.entries, scale)
	delete(c.lastAccess, scale)
	c.evictions.Add(1)
	return true
}
