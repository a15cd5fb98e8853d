package pixeloid

import "strconv"

// Scale identifies a zoom level. At scale s, one pixeloid (world unit)
// covers s screen pixels. Scale is the primary cache key dimension for
// both the mesh and texture caches.
//
// Scales map directly to zoom levels. An earlier revision of the canvas
// used power-of-two resolution levels shared across nearby zooms; the
// direct mapping replaced it and is the only strategy implemented here.
type Scale int

// Valid reports whether the scale is usable. Scales must be positive;
// zero and negative scales are rejected at every API boundary.
func (s Scale) Valid() bool { return s > 0 }

// Check returns a *ScaleError wrapping ErrInvalidScale if the scale is
// not positive, nil otherwise.
func (s Scale) Check() error {
	if !s.Valid() {
		return &ScaleError{Scale: s}
	}
	return nil
}

// Distance returns the absolute distance between two scales, used by the
// eviction manager's adjacency window.
func (s Scale) Distance(t Scale) int {
	d := int(s) - int(t)
	if d < 0 {
		d = -d
	}
	return d
}

// String returns the decimal representation of the scale.
func (s Scale) String() string { return strconv.Itoa(int(s)) }
