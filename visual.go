package pixeloid

import (
	"encoding/binary"
	"image/color"
	"math"

	"github.com/cespare/xxhash/v2"
)

// ObjectID identifies a canvas object. IDs are assigned by the shape
// management layer and are stable for the lifetime of the object.
type ObjectID uint64

// ShapeKind enumerates the geometric object kinds the canvas renders.
// The draw routines themselves live outside this module; the kind only
// participates in the visual fingerprint.
type ShapeKind uint8

const (
	ShapePoint ShapeKind = iota
	ShapeLine
	ShapeRectangle
	ShapeCircle
	ShapeDiamond
)

// Visual holds the non-positional appearance attributes of an object.
// Position is deliberately absent: panning an object must not change its
// fingerprint, so cached textures survive any amount of movement.
type Visual struct {
	Kind        ShapeKind
	Fill        color.RGBA
	Stroke      color.RGBA
	StrokeWidth float64
}

// Object is the view of a canvas object the cache core needs: identity,
// world-space bounds, and appearance. Objects are supplied per call by the
// shape management layer; the core never stores them.
type Object struct {
	ID     ObjectID
	Bounds Rect
	Visual Visual
}

// VisualVersion returns the object's appearance fingerprint.
//
// The fingerprint covers the visual attributes and the object's size, but
// never its position: moving an object keeps the version stable, while any
// edit to fill, stroke, kind or dimensions produces a new version and so
// invalidates cached textures for the object.
func (o Object) VisualVersion() uint64 {
	var buf [33]byte
	buf[0] = byte(o.Visual.Kind)
	buf[1] = o.Visual.Fill.R
	buf[2] = o.Visual.Fill.G
	buf[3] = o.Visual.Fill.B
	buf[4] = o.Visual.Fill.A
	buf[5] = o.Visual.Stroke.R
	buf[6] = o.Visual.Stroke.G
	buf[7] = o.Visual.Stroke.B
	buf[8] = o.Visual.Stroke.A
	binary.LittleEndian.PutUint64(buf[9:], math.Float64bits(o.Visual.StrokeWidth))
	binary.LittleEndian.PutUint64(buf[17:], math.Float64bits(o.Bounds.W()))
	binary.LittleEndian.PutUint64(buf[25:], math.Float64bits(o.Bounds.H()))
	return xxhash.Sum64(buf[:])
}
