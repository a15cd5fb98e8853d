package texture

import (
	"errors"
	"image/color"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/gogpu/pixeloid"
)

func testObject(id pixeloid.ObjectID) pixeloid.Object {
	return pixeloid.Object{
		ID:     id,
		Bounds: pixeloid.R(0, 0, 10, 10),
		Visual: pixeloid.Visual{
			Kind:        pixeloid.ShapeRectangle,
			Fill:        color.RGBA{R: 200, A: 255},
			Stroke:      color.RGBA{A: 255},
			StrokeWidth: 1,
		},
	}
}

// renderCounted returns a RenderFunc that renders full-bounds pixmaps and
// counts its invocations.
func renderCounted(calls *int) RenderFunc {
	return func(obj pixeloid.Object, scale pixeloid.Scale) (Texture, error) {
		*calls++
		w, h := PixelSize(obj.Bounds, scale)
		return NewPixmap(w, h), nil
	}
}

func newTestTextureCache() (*Cache, clockwork.FakeClock) {
	clock := clockwork.NewFakeClock()
	return New(Config{Clock: clock}), clock
}

func TestCacheHitSkipsRender(t *testing.T) {
	c, _ := newTestTextureCache()
	obj := testObject(1)
	view := pixeloid.R(0, 0, 50, 50)

	calls := 0
	render := renderCounted(&calls)

	texA, frame, err := c.GetOrCreate(obj, 2, view, render)
	if err != nil {
		t.Fatalf("GetOrCreate error: %v", err)
	}
	if texA.Width() != 20 || texA.Height() != 20 {
		t.Errorf("texture size = %dx%d, want 20x20", texA.Width(), texA.Height())
	}
	if frame.Visibility != OnScreen {
		t.Errorf("visibility = %v, want OnScreen", frame.Visibility)
	}

	texB, _, err := c.GetOrCreate(obj, 2, view, render)
	if err != nil {
		t.Fatalf("GetOrCreate error: %v", err)
	}
	if calls != 1 {
		t.Errorf("render calls = %d, want 1", calls)
	}
	if texA != texB {
		t.Error("cache hit should return the identical texture")
	}
}

func TestCachePanDoesNotInvalidate(t *testing.T) {
	c, _ := newTestTextureCache()
	obj := testObject(1)
	view := pixeloid.R(0, 0, 50, 50)

	calls := 0
	render := renderCounted(&calls)

	c.GetOrCreate(obj, 2, view, render)

	// Moving the object changes only its position, never its fingerprint.
	obj.Bounds = obj.Bounds.Translate(pixeloid.Pt(45, 0))
	_, frame, err := c.GetOrCreate(obj, 2, view, render)
	if err != nil {
		t.Fatalf("GetOrCreate error: %v", err)
	}
	if calls != 1 {
		t.Errorf("render calls after move = %d, want 1 (no re-capture)", calls)
	}
	if frame.Visibility != PartiallyOnScreen {
		t.Errorf("visibility after move = %v, want PartiallyOnScreen", frame.Visibility)
	}
	if want := pixeloid.R(45, 0, 50, 10); frame.Bounds != want {
		t.Errorf("frame bounds = %v, want %v", frame.Bounds, want)
	}
}

func TestCacheVisualEditRecaptures(t *testing.T) {
	c, _ := newTestTextureCache()
	obj := testObject(1)
	view := pixeloid.R(0, 0, 50, 50)

	calls := 0
	render := renderCounted(&calls)

	first, _, _ := c.GetOrCreate(obj, 2, view, render)

	obj.Visual.Fill = color.RGBA{G: 255, A: 255}
	second, _, err := c.GetOrCreate(obj, 2, view, render)
	if err != nil {
		t.Fatalf("GetOrCreate error: %v", err)
	}
	if calls != 2 {
		t.Errorf("render calls after fill edit = %d, want 2", calls)
	}
	if first == second {
		t.Error("fill edit should produce a fresh texture")
	}
	// The replaced texture at the same key must have been released.
	if first.(*Pixmap).Image() != nil {
		t.Error("previous texture should be destroyed on replacement")
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1 (replace, not accumulate)", c.Len())
	}
}

func TestCachePerScaleEntries(t *testing.T) {
	c, _ := newTestTextureCache()
	obj := testObject(1)
	view := pixeloid.R(0, 0, 50, 50)

	calls := 0
	render := renderCounted(&calls)

	a, _, _ := c.GetOrCreate(obj, 2, view, render)
	b, _, _ := c.GetOrCreate(obj, 4, view, render)
	if calls != 2 {
		t.Errorf("render calls = %d, want 2 (one per scale)", calls)
	}
	if a.Width() == b.Width() {
		t.Error("textures at different scales should differ in pixel size")
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
}

func TestCacheDegenerateBounds(t *testing.T) {
	c, _ := newTestTextureCache()
	obj := testObject(1)
	obj.Bounds = pixeloid.R(5, 5, 5, 5)

	calls := 0
	_, _, err := c.GetOrCreate(obj, 2, pixeloid.R(0, 0, 50, 50), renderCounted(&calls))
	if !errors.Is(err, pixeloid.ErrDegenerateBounds) {
		t.Fatalf("error = %v, want ErrDegenerateBounds", err)
	}
	if calls != 0 {
		t.Error("degenerate bounds must not reach the render callback")
	}
	if c.Len() != 0 {
		t.Error("failed request should not leave an entry behind")
	}
}

func TestCacheInvalidScale(t *testing.T) {
	c, _ := newTestTextureCache()
	calls := 0
	_, _, err := c.GetOrCreate(testObject(1), 0, pixeloid.Rect{}, renderCounted(&calls))
	if !errors.Is(err, pixeloid.ErrInvalidScale) {
		t.Fatalf("error = %v, want ErrInvalidScale", err)
	}
}

func TestCacheRenderFailureIsRetryable(t *testing.T) {
	c, _ := newTestTextureCache()
	obj := testObject(1)
	view := pixeloid.R(0, 0, 50, 50)

	fail := true
	render := func(o pixeloid.Object, s pixeloid.Scale) (Texture, error) {
		if fail {
			return nil, errors.New("device lost")
		}
		w, h := PixelSize(o.Bounds, s)
		return NewPixmap(w, h), nil
	}

	_, _, err := c.GetOrCreate(obj, 2, view, render)
	if !errors.Is(err, pixeloid.ErrResourceCreation) {
		t.Fatalf("error = %v, want ErrResourceCreation", err)
	}

	// Next frame the device is back; the same call succeeds.
	fail = false
	tex, _, err := c.GetOrCreate(obj, 2, view, render)
	if err != nil || tex == nil {
		t.Fatalf("retry failed: %v", err)
	}
}

func TestCacheReentrantRender(t *testing.T) {
	c, _ := newTestTextureCache()
	view := pixeloid.R(0, 0, 50, 50)

	inner := testObject(2)
	var innerErr error
	render := func(o pixeloid.Object, s pixeloid.Scale) (Texture, error) {
		// A render callback requesting another object's texture.
		_, _, innerErr = c.GetOrCreate(inner, s, view, renderCounted(new(int)))
		w, h := PixelSize(o.Bounds, s)
		return NewPixmap(w, h), nil
	}

	_, _, err := c.GetOrCreate(testObject(1), 2, view, render)
	if err != nil {
		t.Fatalf("outer GetOrCreate error: %v", err)
	}
	if !errors.Is(innerErr, pixeloid.ErrReentrantRender) {
		t.Errorf("inner error = %v, want ErrReentrantRender", innerErr)
	}
}

func TestCacheRemoveObject(t *testing.T) {
	c, _ := newTestTextureCache()
	obj := testObject(1)
	other := testObject(2)
	view := pixeloid.R(0, 0, 50, 50)
	calls := 0
	render := renderCounted(&calls)

	c.GetOrCreate(obj, 2, view, render)
	c.GetOrCreate(obj, 4, view, render)
	c.GetOrCreate(other, 2, view, render)

	if n := c.Remove(obj.ID); n != 2 {
		t.Fatalf("Remove destroyed %d textures, want 2", n)
	}
	if c.Contains(Key{Object: obj.ID, Scale: 2}) || c.Contains(Key{Object: obj.ID, Scale: 4}) {
		t.Error("removed object's textures should be gone")
	}
	if !c.Contains(Key{Object: other.ID, Scale: 2}) {
		t.Error("other object's texture should survive")
	}
}

func TestCacheSweepEvict(t *testing.T) {
	c, clock := newTestTextureCache()
	view := pixeloid.R(0, 0, 50, 50)
	calls := 0
	render := renderCounted(&calls)

	c.GetOrCreate(testObject(1), 2, view, render)
	clock.Advance(time.Minute)
	c.GetOrCreate(testObject(2), 4, view, render)

	cutoff := clock.Now().Add(-30 * time.Second)
	n := c.SweepEvict(func(_ pixeloid.Scale, lastAccess time.Time) bool {
		return lastAccess.Before(cutoff)
	})
	if n != 1 {
		t.Fatalf("SweepEvict destroyed %d, want 1", n)
	}
	if c.Contains(Key{Object: 1, Scale: 2}) {
		t.Error("idle texture should have been evicted")
	}
}

func TestCacheLargeTextureCounter(t *testing.T) {
	c := New(Config{LargeTexturePixels: 100})
	obj := testObject(1)
	calls := 0

	c.GetOrCreate(obj, 2, pixeloid.R(0, 0, 50, 50), renderCounted(&calls))
	if got := c.Stats().LargeTextures; got != 1 {
		t.Errorf("LargeTextures = %d, want 1 (20x20 px over the 100 px threshold)", got)
	}
}

func TestCacheStats(t *testing.T) {
	c, _ := newTestTextureCache()
	obj := testObject(1)
	view := pixeloid.R(0, 0, 50, 50)
	calls := 0
	render := renderCounted(&calls)

	c.GetOrCreate(obj, 2, view, render)
	c.GetOrCreate(obj, 2, view, render)

	stats := c.Stats()
	if stats.Entries != 1 || stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("stats = %+v, want 1 entry / 1 hit / 1 miss", stats)
	}
}
