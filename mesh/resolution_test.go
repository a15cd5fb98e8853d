package mesh

import (
	"errors"
	"testing"

	"github.com/gogpu/pixeloid"
)

func TestPlannerPlan(t *testing.T) {
	tests := []struct {
		name     string
		base     pixeloid.Point
		oversize float64
		scale    pixeloid.Scale
		wantW    int
		wantH    int
	}{
		{"reference viewport", pixeloid.Pt(1000, 1000), 20, 10, 120, 120},
		{"no oversize", pixeloid.Pt(1000, 1000), 0, 10, 100, 100},
		{"non-square", pixeloid.Pt(1000, 500), 20, 10, 120, 60},
		{"rounds up", pixeloid.Pt(1000, 1000), 20, 7, 172, 172},
		{"coarse grid at high zoom", pixeloid.Pt(1000, 1000), 20, 600, 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPlanner(tt.base, tt.oversize)
			res, err := p.Plan(tt.scale)
			if err != nil {
				t.Fatalf("Plan(%v) error: %v", tt.scale, err)
			}
			if res.GridWidth != tt.wantW || res.GridHeight != tt.wantH {
				t.Errorf("Plan(%v) grid = %dx%d, want %dx%d",
					tt.scale, res.GridWidth, res.GridHeight, tt.wantW, tt.wantH)
			}
			if res.Scale != tt.scale {
				t.Errorf("Plan(%v) scale = %v", tt.scale, res.Scale)
			}
		})
	}
}

func TestPlannerPlanDeterministic(t *testing.T) {
	p := NewPlanner(pixeloid.Pt(1000, 1000), 20)
	a, _ := p.Plan(10)
	b, _ := p.Plan(10)
	if a != b {
		t.Errorf("Plan is not deterministic: %+v != %+v", a, b)
	}
}

func TestPlannerInvalidScale(t *testing.T) {
	p := NewPlanner(pixeloid.Pt(1000, 1000), 20)
	for _, scale := range []pixeloid.Scale{0, -1} {
		_, err := p.Plan(scale)
		if !errors.Is(err, pixeloid.ErrInvalidScale) {
			t.Errorf("Plan(%v) error = %v, want ErrInvalidScale", scale, err)
		}
	}
}

func TestResolutionCounts(t *testing.T) {
	res := Resolution{Scale: 10, GridWidth: 120, GridHeight: 120}
	if got := res.VertexCount(); got != 14400 {
		t.Errorf("VertexCount = %d, want 14400", got)
	}
	if got := res.IndexCount(); got != 84966 {
		t.Errorf("IndexCount = %d, want 84966", got)
	}
}

func TestResolutionInverseScaling(t *testing.T) {
	p := NewPlanner(pixeloid.Pt(1000, 1000), 20)
	coarse, _ := p.Plan(40)
	fine, _ := p.Plan(4)
	if coarse.GridWidth >= fine.GridWidth {
		t.Errorf("grid width should shrink as scale grows: scale 40 -> %d, scale 4 -> %d",
			coarse.GridWidth, fine.GridWidth)
	}
}
