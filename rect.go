package pixeloid

// Rect is an axis-aligned rectangle in world units.
// Min is the top-left corner, Max the bottom-right (exclusive edge
// semantics do not apply; coordinates are continuous).
type Rect struct {
	Min, Max Point
}

// R is a convenience function to create a Rect from coordinates.
func R(minX, minY, maxX, maxY float64) Rect {
	return Rect{Min: Pt(minX, minY), Max: Pt(maxX, maxY)}
}

// W returns the rectangle width. Negative for an inverted rectangle.
func (r Rect) W() float64 { return r.Max.X - r.Min.X }

// H returns the rectangle height. Negative for an inverted rectangle.
func (r Rect) H() float64 { return r.Max.Y - r.Min.Y }

// Empty reports whether the rectangle has zero or negative area.
func (r Rect) Empty() bool {
	return r.Max.X <= r.Min.X || r.Max.Y <= r.Min.Y
}

// Contains reports whether q lies entirely inside r.
// An empty q is never contained.
func (r Rect) Contains(q Rect) bool {
	if q.Empty() {
		return false
	}
	return q.Min.X >= r.Min.X && q.Min.Y >= r.Min.Y &&
		q.Max.X <= r.Max.X && q.Max.Y <= r.Max.Y
}

// Intersect returns the largest rectangle contained in both r and q.
// If the rectangles do not overlap, the result is empty.
func (r Rect) Intersect(q Rect) Rect {
	out := Rect{
		Min: Pt(max(r.Min.X, q.Min.X), max(r.Min.Y, q.Min.Y)),
		Max: Pt(min(r.Max.X, q.Max.X), min(r.Max.Y, q.Max.Y)),
	}
	if out.Empty() {
		return Rect{}
	}
	return out
}

// Overlaps reports whether r and q share any area.
func (r Rect) Overlaps(q Rect) bool {
	return !r.Intersect(q).Empty()
}

// Translate returns the rectangle shifted by the vector d.
func (r Rect) Translate(d Point) Rect {
	return Rect{Min: r.Min.Add(d), Max: r.Max.Add(d)}
}
