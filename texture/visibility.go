// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package texture

import "github.com/gogpu/pixeloid"

// Visibility classifies how much of an object lies inside the viewport
// at a given scale.
type Visibility uint8

const (
	// OffScreen means no part of the object is visible.
	OffScreen Visibility = iota

	// PartiallyOnScreen means the object straddles a viewport edge.
	PartiallyOnScreen

	// OnScreen means the object is entirely visible.
	OnScreen
)

// String returns a human-readable name for the visibility state.
func (v Visibility) String() string {
	switch v {
	case OffScreen:
		return "offScreen"
	case PartiallyOnScreen:
		return "partiallyOnScreen"
	case OnScreen:
		return "onScreen"
	default:
		return "unknown"
	}
}

// Frame addresses the usable part of a cached texture for one frame.
//
// The texture always covers the object's full bounds. When the object is
// only partially visible, Bounds holds the visible sub-region in world
// units, and the caller blits just that slice of the full texture. Slicing
// the full-bounds texture instead of rendering only the visible area keeps
// the object's proportions intact when it later re-enters full visibility.
type Frame struct {
	// Visibility is the classification the frame was computed for.
	Visibility Visibility

	// Bounds is the visible sub-region in world units. Equal to the
	// object's bounds when fully on screen, empty when off screen.
	Bounds pixeloid.Rect
}

// Classify computes the visibility of object bounds against the visible
// world rectangle and, for partial visibility, the on-screen sub-region.
func Classify(bounds, view pixeloid.Rect) Frame {
	if view.Contains(bounds) {
		return Frame{Visibility: OnScreen, Bounds: bounds}
	}
	clip := bounds.Intersect(view)
	if clip.Empty() {
		return Frame{Visibility: OffScreen}
	}
	return Frame{Visibility: PartiallyOnScreen, Bounds: clip}
}
