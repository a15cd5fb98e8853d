package pixeloid

import (
	"image/color"
	"testing"
)

func testObject() Object {
	return Object{
		ID:     1,
		Bounds: R(0, 0, 10, 10),
		Visual: Visual{
			Kind:        ShapeRectangle,
			Fill:        color.RGBA{R: 200, G: 40, B: 40, A: 255},
			Stroke:      color.RGBA{A: 255},
			StrokeWidth: 1,
		},
	}
}

func TestVisualVersionIgnoresPosition(t *testing.T) {
	obj := testObject()
	before := obj.VisualVersion()

	obj.Bounds = obj.Bounds.Translate(Pt(500, -300))
	if got := obj.VisualVersion(); got != before {
		t.Errorf("moving the object changed its visual version: %d != %d", got, before)
	}
}

func TestVisualVersionChanges(t *testing.T) {
	base := testObject()
	baseVersion := base.VisualVersion()

	tests := []struct {
		name string
		edit func(*Object)
	}{
		{"fill color", func(o *Object) { o.Visual.Fill.G = 200 }},
		{"stroke color", func(o *Object) { o.Visual.Stroke.R = 10 }},
		{"stroke width", func(o *Object) { o.Visual.StrokeWidth = 3 }},
		{"shape kind", func(o *Object) { o.Visual.Kind = ShapeCircle }},
		{"resize", func(o *Object) { o.Bounds.Max.X += 5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := testObject()
			tt.edit(&obj)
			if obj.VisualVersion() == baseVersion {
				t.Error("visual edit did not change the version")
			}
		})
	}
}

func TestVisualVersionStable(t *testing.T) {
	a := testObject()
	b := testObject()
	if a.VisualVersion() != b.VisualVersion() {
		t.Error("identical objects should share a visual version")
	}
}
