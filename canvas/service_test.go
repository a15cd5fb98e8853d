package canvas

import (
	"errors"
	"image/color"
	"testing"

	"github.com/jonboulle/clockwork"

	"github.com/gogpu/pixeloid"
	"github.com/gogpu/pixeloid/texture"
)

func newTestService() (*Service, clockwork.FakeClock) {
	clock := clockwork.NewFakeClock()
	cfg := DefaultConfig()
	cfg.Clock = clock
	cfg.CriticalScales = []pixeloid.Scale{1}
	return New(cfg), clock
}

func testObject(id pixeloid.ObjectID) pixeloid.Object {
	return pixeloid.Object{
		ID:     id,
		Bounds: pixeloid.R(0, 0, 10, 10),
		Visual: pixeloid.Visual{
			Kind: pixeloid.ShapeRectangle,
			Fill: color.RGBA{R: 128, A: 255},
		},
	}
}

func render(obj pixeloid.Object, scale pixeloid.Scale) (texture.Texture, error) {
	w, h := texture.PixelSize(obj.Bounds, scale)
	return texture.NewPixmap(w, h), nil
}

func TestServiceFrameFlow(t *testing.T) {
	s, _ := newTestService()
	defer s.Close()

	if err := s.SetViewport(pixeloid.Viewport{Scale: 2, Size: pixeloid.Pt(100, 100)}); err != nil {
		t.Fatalf("SetViewport error: %v", err)
	}
	s.SetOffset(pixeloid.Pt(0, 0))

	e, err := s.MeshFor(2)
	if err != nil {
		t.Fatalf("MeshFor error: %v", err)
	}
	if e.Resolution.Scale != 2 {
		t.Errorf("mesh scale = %v, want 2", e.Resolution.Scale)
	}

	tex, frame, err := s.TextureFor(testObject(1), render)
	if err != nil {
		t.Fatalf("TextureFor error: %v", err)
	}
	if tex.Width() != 20 || tex.Height() != 20 {
		t.Errorf("texture size = %dx%d, want 20x20", tex.Width(), tex.Height())
	}
	if frame.Visibility != texture.OnScreen {
		t.Errorf("visibility = %v, want OnScreen", frame.Visibility)
	}

	stats := s.Stats()
	if stats.CachedScaleCount != 1 || stats.CachedTextureCount != 1 {
		t.Errorf("stats = %+v, want 1 cached scale and 1 cached texture", stats)
	}
}

func TestServiceVisibleWorldRect(t *testing.T) {
	s, _ := newTestService()
	defer s.Close()

	s.SetViewport(pixeloid.Viewport{Scale: 2, Size: pixeloid.Pt(100, 100)})
	s.SetOffset(pixeloid.Pt(30, 40))

	want := pixeloid.R(30, 40, 80, 90)
	if got := s.VisibleWorldRect(); got != want {
		t.Errorf("VisibleWorldRect = %v, want %v", got, want)
	}
}

func TestServiceRejectsInvalidViewport(t *testing.T) {
	s, _ := newTestService()
	defer s.Close()

	err := s.SetViewport(pixeloid.Viewport{Scale: 0, Size: pixeloid.Pt(100, 100)})
	if !errors.Is(err, pixeloid.ErrInvalidScale) {
		t.Errorf("error = %v, want ErrInvalidScale", err)
	}
}

func TestServicePreGeneratesAdjacentScales(t *testing.T) {
	s, _ := newTestService()
	defer s.Close()

	s.SetViewport(pixeloid.Viewport{Scale: 10, Size: pixeloid.Pt(100, 100)})
	s.MeshFor(10)

	// One pre-generation cycle: the adjacency window fills in.
	s.RunIdle(0)
	for _, adjacent := range []pixeloid.Scale{8, 9, 11, 12} {
		if _, err := s.MeshFor(adjacent); err != nil {
			t.Fatalf("MeshFor(%v) error: %v", adjacent, err)
		}
	}
	stats := s.Stats()
	if stats.Mesh.Hits < 4 {
		t.Errorf("adjacent scales were not pre-generated: %+v", stats.Mesh)
	}
}

func TestServiceDropsStalePreGeneration(t *testing.T) {
	s, _ := newTestService()
	defer s.Close()

	// Queue pre-generation around 10, then move far away before the idle
	// callbacks run. The stale tasks must be dropped, not executed.
	s.SetViewport(pixeloid.Viewport{Scale: 10, Size: pixeloid.Pt(100, 100)})
	s.SetViewport(pixeloid.Viewport{Scale: 100, Size: pixeloid.Pt(100, 100)})
	s.RunIdle(0)

	if s.meshes.Contains(8) || s.meshes.Contains(12) {
		t.Error("pre-generation for the superseded scale should have been dropped")
	}
	for _, adjacent := range []pixeloid.Scale{98, 99, 101, 102} {
		if !s.meshes.Contains(adjacent) {
			t.Errorf("scale %v in the current window should be pre-generated", adjacent)
		}
	}
}

func TestServiceSweepFromIdle(t *testing.T) {
	s, clock := newTestService()
	defer s.Close()

	s.SetViewport(pixeloid.Viewport{Scale: 10, Size: pixeloid.Pt(100, 100)})
	s.MeshFor(50)

	// Far, untouched scale ages past the idle threshold; a due sweep
	// from RunIdle collects it.
	clock.Advance(2 * DefaultConfig().IdleThreshold)
	s.RunIdle(0)

	if s.meshes.Contains(50) {
		t.Error("idle far scale should be evicted by the background sweep")
	}
	if s.Stats().Evicted == 0 {
		t.Error("eviction counter should advance")
	}
}

func TestServiceRemoveObject(t *testing.T) {
	s, _ := newTestService()
	defer s.Close()

	s.SetViewport(pixeloid.Viewport{Scale: 2, Size: pixeloid.Pt(100, 100)})
	s.TextureFor(testObject(7), render)

	if n := s.RemoveObject(7); n != 1 {
		t.Errorf("RemoveObject destroyed %d textures, want 1", n)
	}
	if s.Stats().CachedTextureCount != 0 {
		t.Error("no textures should remain for a removed object")
	}
}

func TestServicePlaceholder(t *testing.T) {
	s, _ := newTestService()
	defer s.Close()

	obj := testObject(1)
	s.SetViewport(pixeloid.Viewport{Scale: 2, Size: pixeloid.Pt(100, 100)})
	s.TextureFor(obj, render)

	s.SetViewport(pixeloid.Viewport{Scale: 4, Size: pixeloid.Pt(100, 100)})
	tex, _, ok := s.PlaceholderFor(obj)
	if !ok {
		t.Fatal("PlaceholderFor should rescale the scale-2 texture")
	}
	if tex.Width() != 40 || tex.Height() != 40 {
		t.Errorf("placeholder size = %dx%d, want 40x40", tex.Width(), tex.Height())
	}
}

func TestServiceMeshForInvalidScale(t *testing.T) {
	s, _ := newTestService()
	defer s.Close()

	if _, err := s.MeshFor(-1); !errors.Is(err, pixeloid.ErrInvalidScale) {
		t.Errorf("MeshFor(-1) error = %v, want ErrInvalidScale", err)
	}
}
