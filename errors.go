package pixeloid

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the pixeloid packages.
var (
	// ErrInvalidScale is returned when an operation receives a zoom scale
	// that is zero or negative. This is a programmer error: scales are
	// validated at the API boundary and never silently clamped.
	ErrInvalidScale = errors.New("pixeloid: invalid scale")

	// ErrDegenerateBounds is returned when an object's bounds produce a
	// zero or negative texture size at the requested scale. Recoverable:
	// the caller skips drawing that object this frame.
	ErrDegenerateBounds = errors.New("pixeloid: degenerate object bounds")

	// ErrResourceCreation is returned when the underlying texture or
	// buffer allocation fails. Recoverable by retrying next frame.
	ErrResourceCreation = errors.New("pixeloid: resource creation failed")

	// ErrStaleEviction is returned when an entry was evicted between a
	// caller's lookup and its use. Recoverable: re-request the entry.
	ErrStaleEviction = errors.New("pixeloid: entry evicted before use")

	// ErrReentrantRender is returned when a texture render is requested
	// from within another object's render callback.
	ErrReentrantRender = errors.New("pixeloid: reentrant texture render")
)

// ScaleError wraps ErrInvalidScale with the offending scale value.
type ScaleError struct {
	Scale Scale
}

func (e *ScaleError) Error() string {
	return fmt.Sprintf("pixeloid: invalid scale %d", e.Scale)
}

// Unwrap makes errors.Is(err, ErrInvalidScale) work on ScaleError values.
func (e *ScaleError) Unwrap() error { return ErrInvalidScale }
