// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package texture caches rendered snapshots of canvas objects per
// (object, scale), so effect and overlay layers can blit a pre-rendered
// texture instead of re-drawing vector geometry every frame.
package texture

import (
	"image"

	"github.com/gogpu/gputypes"
)

// Texture is a rendered snapshot of an object's appearance at one scale.
//
// Implementations may be CPU-backed ([Pixmap]) or wrap a GPU resource
// owned by the host's device (see [DeviceHandle]). The cache releases
// textures by calling Destroy when an entry is replaced or evicted.
type Texture interface {
	// Width returns the texture width in pixels.
	Width() int

	// Height returns the texture height in pixels.
	Height() int

	// Format returns the texture pixel format.
	Format() gputypes.TextureFormat

	// Destroy releases the resources backing the texture.
	// The texture must not be used after Destroy.
	Destroy()
}

// Pixmap is a CPU-backed texture over an *image.RGBA.
type Pixmap struct {
	img *image.RGBA
}

// NewPixmap creates a CPU-backed texture of the given size.
func NewPixmap(width, height int) *Pixmap {
	return &Pixmap{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

// NewPixmapFromImage wraps an existing *image.RGBA without copying.
func NewPixmapFromImage(img *image.RGBA) *Pixmap {
	return &Pixmap{img: img}
}

// Width returns the texture width in pixels.
func (p *Pixmap) Width() int {
	if p.img == nil {
		return 0
	}
	return p.img.Bounds().Dx()
}

// Height returns the texture height in pixels.
func (p *Pixmap) Height() int {
	if p.img == nil {
		return 0
	}
	return p.img.Bounds().Dy()
}

// Format returns RGBA8Unorm, the only format CPU pixmaps use.
func (p *Pixmap) Format() gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA8Unorm
}

// Image returns the backing image, or nil after Destroy.
func (p *Pixmap) Image() *image.RGBA { return p.img }

// Destroy drops the backing image.
func (p *Pixmap) Destroy() { p.img = nil }

// Ensure Pixmap implements Texture.
var _ Texture = (*Pixmap)(nil)
