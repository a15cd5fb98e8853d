// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package texture

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/gogpu/pixeloid"
	"github.com/gogpu/pixeloid/internal/cache"
)

// Key identifies a cached texture. A texture's pixel dimensions depend on
// the scale it was rendered at, so the object ID alone cannot key the
// cache: the same object holds one entry per scale it has been seen at.
type Key struct {
	Object pixeloid.ObjectID
	Scale  pixeloid.Scale
}

// RenderFunc renders an object at a scale into a full-bounds texture.
// The cache invokes it on a miss; it is the callback into the external
// shape renderer. The returned texture must cover the object's complete
// world bounds converted to pixels at the scale.
type RenderFunc func(obj pixeloid.Object, scale pixeloid.Scale) (Texture, error)

// Config holds texture cache configuration.
type Config struct {
	// Clock supplies time for access tracking. Nil means the real clock.
	Clock clockwork.Clock

	// LargeTexturePixels is the pixel count above which an allocation is
	// counted (and logged) as unusually large. There is no hard size cap;
	// visibility clipping bounds what is actually blitted. Default: 4096².
	LargeTexturePixels int

	// VisibilityMemoSize is the soft limit of the visibility memo.
	// Default: 4096 entries.
	VisibilityMemoSize int
}

// DefaultConfig returns the default texture cache configuration.
func DefaultConfig() Config {
	return Config{
		LargeTexturePixels: 4096 * 4096,
		VisibilityMemoSize: 4096,
	}
}

// Stats is a snapshot of cache counters.
type Stats struct {
	// Entries is the number of cached textures.
	Entries int
	// Hits is the number of lookups served from cache.
	Hits uint64
	// Misses is the number of lookups that invoked the render callback.
	Misses uint64
	// Evictions is the number of textures destroyed.
	Evictions uint64
	// LargeTextures counts allocations above Config.LargeTexturePixels.
	LargeTextures uint64
}

// entry is one cached texture with its appearance fingerprint.
type entry struct {
	texture     Texture
	fingerprint uint64
	createdAt   time.Time
}

// visRecord memoizes one visibility classification. It is valid only for
// the exact view rectangle and object bounds it was computed from; either
// changing (pan, zoom, object move) makes the record miss by comparison,
// no invalidation pass needed.
type visRecord struct {
	view   pixeloid.Rect
	bounds pixeloid.Rect
	frame  Frame
}

// Cache stores one rendered texture per (object, scale).
//
// A cached texture is reused as long as the object's visual fingerprint
// matches; the fingerprint excludes position, so panning never invalidates
// an entry. On mismatch the render callback produces a fresh full-bounds
// texture which replaces, and destroys, the previous one at the same key.
//
// The synchronous GetOrCreate path never evicts. Eviction belongs to the
// sweep (see the evict package), which keeps "evict what you just created"
// races structurally impossible.
//
// Cache is safe for concurrent use.
type Cache struct {
	cfg   Config
	clock clockwork.Clock

	mu         sync.Mutex
	entries    map[Key]*entry
	lastAccess map[Key]time.Time

	group     singleflight.Group
	rendering atomic.Bool

	vis *cache.Memo[Key, visRecord]

	failMu     sync.Mutex
	failStreak map[pixeloid.ObjectID]int

	hits          atomic.Uint64
	misses        atomic.Uint64
	evictions     atomic.Uint64
	largeTextures atomic.Uint64
}

// New creates a texture cache.
func New(cfg Config) *Cache {
	def := DefaultConfig()
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.LargeTexturePixels <= 0 {
		cfg.LargeTexturePixels = def.LargeTexturePixels
	}
	if cfg.VisibilityMemoSize <= 0 {
		cfg.VisibilityMemoSize = def.VisibilityMemoSize
	}
	return &Cache{
		cfg:        cfg,
		clock:      cfg.Clock,
		entries:    make(map[Key]*entry),
		lastAccess: make(map[Key]time.Time),
		vis:        cache.New[Key, visRecord](cfg.VisibilityMemoSize),
		failStreak: make(map[pixeloid.ObjectID]int),
	}
}

// PixelSize returns the texture dimensions for object bounds at a scale.
func PixelSize(bounds pixeloid.Rect, scale pixeloid.Scale) (w, h int) {
	w = int(math.Ceil(bounds.W() * float64(scale)))
	h = int(math.Ceil(bounds.H() * float64(scale)))
	return w, h
}

// GetOrCreate returns the object's texture at the given scale, rendering
// it through the callback when missing or stale, together with the frame
// describing the visible sub-region for the current view rectangle.
//
// Errors wrap [pixeloid.ErrInvalidScale], [pixeloid.ErrDegenerateBounds]
// (skip the object this frame), [pixeloid.ErrResourceCreation] (retry next
// frame) or [pixeloid.ErrReentrantRender]. All are recoverable by the
// frame loop; none is worth stalling the scene for.
func (c *Cache) GetOrCreate(obj pixeloid.Object, scale pixeloid.Scale, view pixeloid.Rect, render RenderFunc) (Texture, Frame, error) {
	if err := scale.Check(); err != nil {
		return nil, Frame{}, err
	}

	key := Key{Object: obj.ID, Scale: scale}
	fp := obj.VisualVersion()

	c.mu.Lock()
	if e, ok := c.entries[key]; ok && e.fingerprint == fp {
		c.lastAccess[key] = c.clock.Now()
		tex := e.texture
		c.mu.Unlock()
		c.hits.Add(1)
		return tex, c.frameFor(key, obj.Bounds, view), nil
	}
	c.mu.Unlock()

	w, h := PixelSize(obj.Bounds, scale)
	if w <= 0 || h <= 0 {
		return nil, Frame{}, fmt.Errorf("%w: object %d is %dx%d px at scale %v",
			pixeloid.ErrDegenerateBounds, obj.ID, w, h, scale)
	}

	tex, err := c.fill(key, obj, scale, fp, render)
	if err != nil {
		return nil, Frame{}, err
	}
	return tex, c.frameFor(key, obj.Bounds, view), nil
}

// fill renders and stores the texture for key, de-duplicating concurrent
// requests for the same key through a singleflight group.
func (c *Cache) fill(key Key, obj pixeloid.Object, scale pixeloid.Scale, fp uint64, render RenderFunc) (Texture, error) {
	v, err, _ := c.group.Do(fmt.Sprintf("%d/%d", key.Object, key.Scale), func() (any, error) {
		// Another flight may have filled the key while we queued.
		c.mu.Lock()
		if e, ok := c.entries[key]; ok && e.fingerprint == fp {
			c.lastAccess[key] = c.clock.Now()
			tex := e.texture
			c.mu.Unlock()
			c.hits.Add(1)
			return tex, nil
		}
		c.mu.Unlock()

		// A render callback must not request another object's texture:
		// the capture-after-render ordering only holds for one object at
		// a time.
		if !c.rendering.CompareAndSwap(false, true) {
			return nil, fmt.Errorf("%w: object %d", pixeloid.ErrReentrantRender, key.Object)
		}
		tex, renderErr := render(obj, scale)
		c.rendering.Store(false)

		if renderErr == nil && (tex == nil || tex.Width() <= 0 || tex.Height() <= 0) {
			renderErr = fmt.Errorf("%w: render callback returned no texture",
				pixeloid.ErrResourceCreation)
		}
		if renderErr != nil {
			err := renderErr
			if !isKnown(err) {
				err = fmt.Errorf("%w: %v", pixeloid.ErrResourceCreation, renderErr)
			}
			c.noteFailure(key.Object, err)
			return nil, err
		}
		c.noteRecovery(key.Object)

		if px := tex.Width() * tex.Height(); px >= c.cfg.LargeTexturePixels {
			c.largeTextures.Add(1)
			pixeloid.Logger().Debug("large texture allocation",
				"object", key.Object, "scale", scale,
				"width", tex.Width(), "height", tex.Height())
		}

		c.mu.Lock()
		if old, ok := c.entries[key]; ok {
			old.texture.Destroy()
			c.evictions.Add(1)
		}
		c.entries[key] = &entry{
			texture:     tex,
			fingerprint: fp,
			createdAt:   c.clock.Now(),
		}
		c.lastAccess[key] = c.clock.Now()
		c.mu.Unlock()
		c.misses.Add(1)

		return tex, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Texture), nil
}

// frameFor returns the memoized visibility frame for the key, recomputing
// when the view rectangle or object bounds changed since it was stored.
func (c *Cache) frameFor(key Key, bounds, view pixeloid.Rect) Frame {
	if rec, ok := c.vis.Get(key); ok && rec.view == view && rec.bounds == bounds {
		return rec.frame
	}
	frame := Classify(bounds, view)
	c.vis.Put(key, visRecord{view: view, bounds: bounds, frame: frame})
	return frame
}

// Contains reports whether a texture is cached for the key.
// Does not update the access time.
func (c *Cache) Contains(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

// Remove destroys every cached texture and memoized classification for an
// object. Called when the object is deleted. Returns the number of
// textures destroyed.
func (c *Cache) Remove(id pixeloid.ObjectID) int {
	c.mu.Lock()
	n := 0
	for key, e := range c.entries {
		if key.Object != id {
			continue
		}
		e.texture.Destroy()
		delete(c.entries, key)
		delete(c.lastAccess, key)
		c.evictions.Add(1)
		n++
	}
	c.mu.Unlock()

	c.vis.DeleteFunc(func(key Key) bool { return key.Object == id })

	c.failMu.Lock()
	delete(c.failStreak, id)
	c.failMu.Unlock()

	return n
}

// TouchScale refreshes the access time of every entry at a scale, keeping
// the scale's textures out of idle eviction. The eviction manager calls
// this when a scale re-enters the adjacency window. Returns the number of
// entries touched.
func (c *Cache) TouchScale(scale pixeloid.Scale) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.clock.Now()
	n := 0
	for key := range c.entries {
		if key.Scale == scale {
			c.lastAccess[key] = now
			n++
		}
	}
	return n
}

// SweepEvict destroys every entry whose scale and last access match the
// predicate and returns the number destroyed. Called by the eviction
// manager's sweep, never from the frame-critical path.
func (c *Cache) SweepEvict(evict func(scale pixeloid.Scale, lastAccess time.Time) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for key, e := range c.entries {
		if evict(key.Scale, c.lastAccess[key]) {
			e.texture.Destroy()
			delete(c.entries, key)
			delete(c.lastAccess, key)
			c.evictions.Add(1)
			n++
		}
	}
	return n
}

// Len returns the number of cached textures.
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
		Entries:       entries,
		Hits:          c.hits.Load(),
		Misses:        c.misses.Load(),
		Evictions:     c.evictions.Load(),
		LargeTextures: c.largeTextures.Load(),
	}
}

// Clear destroys all entries and memos.
func (c *Cache) Clear() {
	c.mu.Lock()
	for key, e := range c.entries {
		e.texture.Destroy()
		delete(c.entries, key)
		delete(c.lastAccess, key)
		c.evictions.Add(1)
	}
	c.mu.Unlock()
	c.vis.Clear()
}

// noteFailure records a render failure, logging only the first failure of
// a streak so a persistently failing object cannot flood the log.
func (c *Cache) noteFailure(id pixeloid.ObjectID, err error) {
	c.failMu.Lock()
	c.failStreak[id]++
	streak := c.failStreak[id]
	c.failMu.Unlock()

	if streak == 1 {
		pixeloid.Logger().Warn("object render failed", "object", id, "err", err)
	}
}

// noteRecovery clears a failure streak after a successful render.
func (c *Cache) noteRecovery(id pixeloid.ObjectID) {
	c.failMu.Lock()
	streak := c.failStreak[id]
	if streak > 0 {
		delete(c.failStreak, id)
	}
	c.failMu.Unlock()

	if streak > 0 {
		pixeloid.Logger().Debug("object render recovered", "object", id, "failures", streak)
	}
}

// isKnown reports whether the error already belongs to the pixeloid
// error taxonomy and should not be re-wrapped as a resource failure.
func isKnown(err error) bool {
	return errors.Is(err, pixeloid.ErrResourceCreation) ||
		errors.Is(err, pixeloid.ErrReentrantRender) ||
		errors.Is(err, pixeloid.ErrDegenerateBounds) ||
		errors.Is(err, pixeloid.ErrInvalidScale)
}
