// Package pixeloid provides the spatial coordinate and cache core for an
// infinitely pannable, zoomable pixeloid canvas.
//
// # Overview
//
// A pixeloid canvas draws geometric objects authored in zoom-independent
// world units ("pixeloids") on top of a regenerable background mesh. Three
// coordinate spaces must stay consistent across arbitrary zoom levels:
//
//   - world (pixeloid) space, in which object geometry is authored
//   - vertex space, the space of the regenerable background mesh
//   - screen space, pixels on the output surface
//
// World and vertex space are related by a single affine offset held by
// [Mapper]. There is deliberately no per-vertex mapping table: the
// relationship is one additive transform, applied exactly and without
// rounding, so that converting a coordinate to world space and back yields
// the identical float representation.
//
// The expensive derived resources (triangulated background meshes and
// rendered per-object textures) are cached per zoom scale by the mesh and
// texture subpackages and evicted by the evict subpackage, so that neither
// panning nor revisiting a recent zoom level pays for regeneration.
//
// # Packages
//
//   - pixeloid (this package): coordinate types, the vertex/world [Mapper],
//     object visual fingerprints, and shared errors
//   - mesh: resolution planning and the per-scale background mesh cache
//   - texture: the per-(object, scale) derived-texture cache with
//     visibility-aware clipping
//   - evict: pinning, adjacency retention and idle eviction for both caches
//   - canvas: the service facade tying the pieces to a frame loop
//
// # Logging
//
// By default pixeloid produces no log output. Call [SetLogger] to enable
// logging for this package and all subpackages.
package pixeloid
