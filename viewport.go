package pixeloid

// Viewport describes the visible output surface for one frame: the
// current zoom scale and the surface size in screen pixels. The camera
// component supplies a new Viewport every frame.
type Viewport struct {
	Scale Scale
	Size  Point // screen pixels
}

// WorldSize returns the viewport extent in world units at its scale.
func (v Viewport) WorldSize() Point {
	return v.Size.Div(float64(v.Scale))
}

// WorldRect returns the visible region in world units, given the world
// coordinate of the viewport's top-left corner.
func (v Viewport) WorldRect(origin Point) Rect {
	ws := v.WorldSize()
	return Rect{Min: origin, Max: origin.Add(ws)}
}
