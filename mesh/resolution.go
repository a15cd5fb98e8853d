// Package mesh plans, generates and caches the triangulated background
// grid the canvas draws under its objects.
//
// Meshes are keyed by zoom scale. Vertex positions are pre-scaled, so the
// renderer applies only the translation from the coordinate mapper at draw
// time, never a uniform scale transform.
package mesh

import (
	"math"

	"github.com/gogpu/pixeloid"
)

// Resolution describes the vertex grid generated for one zoom scale.
// A Resolution is derived by [Planner.Plan] and never mutated.
type Resolution struct {
	// Scale is the zoom scale the grid was planned for.
	Scale pixeloid.Scale

	// OversizePercent is the padding applied beyond the visible viewport
	// so small pans do not force immediate regeneration.
	OversizePercent float64

	// GridWidth and GridHeight are the vertex counts per axis. They scale
	// inversely with Scale, bounding total vertex count at any zoom.
	GridWidth  int
	GridHeight int
}

// VertexCount returns the number of vertices in the grid.
func (r Resolution) VertexCount() int {
	return r.GridWidth * r.GridHeight
}

// IndexCount returns the number of indices for the two-triangle-per-quad
// triangulation of the grid.
func (r Resolution) IndexCount() int {
	return 6 * (r.GridWidth - 1) * (r.GridHeight - 1)
}

// Planner derives a Resolution from a zoom scale.
//
// The planned footprint covers the base viewport padded by the oversize
// percentage. The oversize is the main performance lever of the mesh
// cache: a 20% pad lets many frames of panning reuse one generated mesh.
type Planner struct {
	baseViewport pixeloid.Point
	oversize     float64
}

// NewPlanner creates a Planner for the given base viewport size in world
// units and oversize percentage.
func NewPlanner(baseViewport pixeloid.Point, oversizePercent float64) Planner {
	if oversizePercent < 0 {
		oversizePercent = 0
	}
	return Planner{baseViewport: baseViewport, oversize: oversizePercent}
}

// Plan derives the Resolution for a scale. Deterministic, no side effects.
// Returns an error wrapping [pixeloid.ErrInvalidScale] for scales <= 0.
func (p Planner) Plan(scale pixeloid.Scale) (Resolution, error) {
	if err := scale.Check(); err != nil {
		return Resolution{}, err
	}

	pad := 1 + p.oversize/100
	footprintW := p.baseViewport.X * pad
	footprintH := p.baseViewport.Y * pad

	w := int(math.Ceil(footprintW / float64(scale)))
	h := int(math.Ceil(footprintH / float64(scale)))

	// A grid needs at least one quad.
	if w < 2 {
		w = 2
	}
	if h < 2 {
		h = 2
	}

	return Resolution{
		Scale:           scale,
		OversizePercent: p.oversize,
		GridWidth:       w,
		GridHeight:      h,
	}, nil
}
