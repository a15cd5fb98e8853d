// Package canvas wires the pixeloid cache core to a frame loop: one
// service object owns the coordinate mapper, the mesh and texture caches,
// the eviction manager and the idle queue.
//
// There is deliberately no package-level state. The service is created
// explicitly and passed by reference to whatever needs it; every
// dependency between the parts is visible in New.
package canvas

import (
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/gogpu/pixeloid"
	"github.com/gogpu/pixeloid/evict"
	"github.com/gogpu/pixeloid/internal/idle"
	"github.com/gogpu/pixeloid/mesh"
	"github.com/gogpu/pixeloid/texture"
)

// Config holds service configuration. Zero values fall back to defaults.
type Config struct {
	// BaseViewport is the nominal viewport size in world units the mesh
	// planner pads and covers. Default: 1000x1000.
	BaseViewport pixeloid.Point

	// OversizePercent pads generated meshes beyond the visible viewport
	// so small pans reuse them. Default: 20.
	OversizePercent float64

	// CriticalScales are pinned in cache regardless of recency.
	CriticalScales []pixeloid.Scale

	// AdjacencyRadius is the half-width of the scale window retained and
	// pre-generated around the current scale. Default: 2.
	AdjacencyRadius int

	// IdleThreshold is how long an unprotected entry may go untouched
	// before a sweep destroys it. Default: 60s.
	IdleThreshold time.Duration

	// SweepInterval is the minimum time between automatic sweeps run
	// from RunIdle. Default: 1s.
	SweepInterval time.Duration

	// LargeTexturePixels is the observability threshold for unusually
	// large texture allocations. Default: 4096².
	LargeTexturePixels int

	// Clock supplies time to every time-dependent component.
	// Default: the real clock.
	Clock clockwork.Clock

	// Device is the host GPU device handle shared with render callbacks.
	// Default: texture.NullDeviceHandle (CPU-only textures).
	Device texture.DeviceHandle
}

// DefaultConfig returns the default service configuration.
func DefaultConfig() Config {
	return Config{
		BaseViewport:    pixeloid.Pt(1000, 1000),
		OversizePercent: 20,
		AdjacencyRadius: evict.DefaultAdjacencyRadius,
		IdleThreshold:   evict.DefaultIdleThreshold,
		SweepInterval:   time.Second,
	}
}

// Stats aggregates observability counters across the service.
type Stats struct {
	// CachedScaleCount is the number of scales with a cached mesh.
	CachedScaleCount int

	// CachedTextureCount is the number of cached object textures.
	CachedTextureCount int

	// Mesh and Texture hold the per-cache counters.
	Mesh    mesh.Stats
	Texture texture.Stats

	// Sweeps and Evicted summarize eviction activity.
	Sweeps  uint64
	Evicted uint64

	// PendingIdleTasks is the idle queue length, stale tasks included.
	PendingIdleTasks int
}

// Service is the cache core's frame-loop facade.
//
// All methods are safe for concurrent use, but the intended discipline is
// the canvas's single cooperative loop: apply the offset and viewport for
// the frame first, then draw (querying MeshFor and TextureFor), then give
// leftover frame time to RunIdle.
type Service struct {
	cfg   Config
	clock clockwork.Clock

	mapper   *pixeloid.Mapper
	meshes   *mesh.Cache
	textures *texture.Cache
	evictor  *evict.Manager
	queue    *idle.Queue

	mu        sync.Mutex
	viewport  pixeloid.Viewport
	lastSweep time.Time
}

// New creates a service from the configuration.
func New(cfg Config) *Service {
	def := DefaultConfig()
	if cfg.BaseViewport.X <= 0 || cfg.BaseViewport.Y <= 0 {
		cfg.BaseViewport = def.BaseViewport
	}
	if cfg.OversizePercent <= 0 {
		cfg.OversizePercent = def.OversizePercent
	}
	if cfg.AdjacencyRadius <= 0 {
		cfg.AdjacencyRadius = def.AdjacencyRadius
	}
	if cfg.IdleThreshold <= 0 {
		cfg.IdleThreshold = def.IdleThreshold
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = def.SweepInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Device == nil {
		cfg.Device = texture.NullDeviceHandle{}
	}

	planner := mesh.NewPlanner(cfg.BaseViewport, cfg.OversizePercent)
	meshes := mesh.New(planner, cfg.Clock)
	textures := texture.New(texture.Config{
		Clock:              cfg.Clock,
		LargeTexturePixels: cfg.LargeTexturePixels,
	})
	policy := evict.NewPolicy(cfg.CriticalScales, cfg.AdjacencyRadius, cfg.IdleThreshold)

	return &Service{
		cfg:      cfg,
		clock:    cfg.Clock,
		mapper:   pixeloid.NewMapper(),
		meshes:   meshes,
		textures: textures,
		evictor:  evict.NewManager(policy, cfg.Clock, meshes, textures),
		queue:    idle.NewQueue(),
	}
}

// Mapper returns the vertex/world coordinate mapper.
func (s *Service) Mapper() *pixeloid.Mapper { return s.mapper }

// Device returns the host GPU device handle shared with render callbacks.
func (s *Service) Device() texture.DeviceHandle { return s.cfg.Device }

// SetOffset updates the vertex-to-world offset. Must be called before any
// mesh-vertex-to-world conversion in the same frame.
func (s *Service) SetOffset(o pixeloid.Point) {
	s.mapper.SetOffset(o)
}

// Viewport returns the viewport of the current frame.
func (s *Service) Viewport() pixeloid.Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewport
}

// SetViewport applies the frame's zoom scale and surface size. On a scale
// change it reinstates the adjacency window in both caches and queues
// pre-generation of the adjacent scales' meshes on the idle queue.
func (s *Service) SetViewport(vp pixeloid.Viewport) error {
	if err := vp.Scale.Check(); err != nil {
		return err
	}

	s.mu.Lock()
	changed := s.viewport.Scale != vp.Scale
	s.viewport = vp
	s.mu.Unlock()

	if !changed {
		return nil
	}
	if err := s.evictor.SetCurrentScale(vp.Scale); err != nil {
		return err
	}

	// Pre-generate outward from the current scale, nearest first. The
	// validity check runs when the task executes: if the scale has left
	// the adjacency window by then, the task is dropped unrun.
	for d := 1; d <= s.cfg.AdjacencyRadius; d++ {
		for _, adjacent := range []pixeloid.Scale{vp.Scale + pixeloid.Scale(d), vp.Scale - pixeloid.Scale(d)} {
			if !adjacent.Valid() {
				continue
			}
			scale := adjacent
			s.queue.Push(idle.Task{
				Name: "pregen",
				Valid: func() bool {
					return s.evictor.InAdjacency(scale) && !s.meshes.Contains(scale)
				},
				Run: func() {
					if _, err := s.meshes.GetOrCreate(scale); err != nil {
						pixeloid.Logger().Warn("mesh pre-generation failed",
							"scale", scale, "err", err)
					}
				},
			})
		}
	}
	return nil
}

// MeshFor returns the cached background mesh for a scale, generating it
// on first request. Failure for the currently active scale is a hard
// error: there is no degraded path for the mesh the frame is about to
// draw.
func (s *Service) MeshFor(scale pixeloid.Scale) (*mesh.Entry, error) {
	e, err := s.meshes.GetOrCreate(scale)
	if err != nil && scale == s.Viewport().Scale {
		return nil, fmt.Errorf("canvas: active scale %v has no mesh: %w", scale, err)
	}
	return e, err
}

// VisibleWorldRect returns the region of world space the viewport shows,
// derived from the mapper offset and the viewport's world-unit size.
func (s *Service) VisibleWorldRect() pixeloid.Rect {
	return s.Viewport().WorldRect(s.mapper.Offset())
}

// TextureFor returns the object's cached texture at the current scale,
// with the frame describing its visible sub-region. The render callback
// runs only on miss or after a visual edit, and must be invoked after the
// object's full-fidelity draw for the frame has completed: the snapshot
// captures what was just drawn.
func (s *Service) TextureFor(obj pixeloid.Object, render texture.RenderFunc) (texture.Texture, texture.Frame, error) {
	return s.textures.GetOrCreate(obj, s.Viewport().Scale, s.VisibleWorldRect(), render)
}

// PlaceholderFor returns a rescaled stand-in from another cached scale
// while the current scale's render is pending. The caller owns the
// returned texture.
func (s *Service) PlaceholderFor(obj pixeloid.Object) (texture.Texture, texture.Frame, bool) {
	return s.textures.Placeholder(obj, s.Viewport().Scale, s.VisibleWorldRect())
}

// RemoveObject releases every cached texture and memo for a deleted
// object. Returns the number of textures destroyed.
func (s *Service) RemoveObject(id pixeloid.ObjectID) int {
	return s.textures.Remove(id)
}

// RunIdle spends up to budget of spare frame time on deferred work:
// queued pre-generation first, then an eviction sweep if one is due.
// Returns the number of idle tasks executed. A budget of 0 drains the
// whole queue.
func (s *Service) RunIdle(budget time.Duration) int {
	ran := s.queue.Drain(s.clock, budget)

	s.mu.Lock()
	due := s.clock.Now().Sub(s.lastSweep) >= s.cfg.SweepInterval
	if due {
		s.lastSweep = s.clock.Now()
	}
	s.mu.Unlock()

	if due {
		s.evictor.Sweep()
	}
	return ran
}

// Stats returns aggregated cache statistics.
func (s *Service) Stats() Stats {
	ms := s.meshes.Stats()
	ts := s.textures.Stats()
	return Stats{
		CachedScaleCount:   ms.Entries,
		CachedTextureCount: ts.Entries,
		Mesh:               ms,
		Texture:            ts,
		Sweeps:             s.evictor.Sweeps(),
		Evicted:            s.evictor.Evicted(),
		PendingIdleTasks:   s.queue.Len(),
	}
}

// Close releases all cached resources and pending work. The service must
// not be used after Close.
func (s *Service) Close() {
	s.queue.Clear()
	s.textures.Clear()
	s.meshes.Clear()
	pixeloid.Logger().Info("canvas cache service closed")
}
