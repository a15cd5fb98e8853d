// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package texture

import (
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/pixeloid"
)

// imageSource is implemented by CPU-backed textures that expose their
// backing image for rescaling.
type imageSource interface {
	Image() *image.RGBA
}

// Rescale produces a new CPU texture of the given size by bilinear
// scaling of a CPU-backed source. GPU-only textures cannot be rescaled
// on the CPU and return an error.
func Rescale(src Texture, width, height int) (*Pixmap, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: rescale to %dx%d px",
			pixeloid.ErrDegenerateBounds, width, height)
	}
	is, ok := src.(imageSource)
	if !ok || is.Image() == nil {
		return nil, fmt.Errorf("%w: rescale requires a CPU-backed source",
			pixeloid.ErrResourceCreation)
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), is.Image(), is.Image().Bounds(), xdraw.Src, nil)
	return NewPixmapFromImage(dst), nil
}

// Placeholder builds a stand-in texture for an object at a scale that has
// no cached entry yet, by rescaling the nearest-scale cached texture with
// a matching fingerprint. The result is not stored in the cache and is
// owned by the caller; it bridges the frames until the exact-scale render
// has run.
//
// Returns false when no usable source exists (no other scale cached, the
// fingerprint is stale everywhere, or the source is GPU-only).
func (c *Cache) Placeholder(obj pixeloid.Object, scale pixeloid.Scale, view pixeloid.Rect) (Texture, Frame, bool) {
	if !scale.Valid() {
		return nil, Frame{}, false
	}
	w, h := PixelSize(obj.Bounds, scale)
	if w <= 0 || h <= 0 {
		return nil, Frame{}, false
	}

	fp := obj.VisualVersion()

	c.mu.Lock()
	var src Texture
	best := -1
	for key, e := range c.entries {
		if key.Object != obj.ID || key.Scale == scale || e.fingerprint != fp {
			continue
		}
		if _, ok := e.texture.(imageSource); !ok {
			continue
		}
		if d := key.Scale.Distance(scale); best < 0 || d < best {
			best = d
			src = e.texture
		}
	}
	c.mu.Unlock()

	if src == nil {
		return nil, Frame{}, false
	}

	tex, err := Rescale(src, w, h)
	if err != nil {
		return nil, Frame{}, false
	}
	return tex, Classify(obj.Bounds, view), true
}
