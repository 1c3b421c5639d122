package recording

import (
	"image"
	"testing"

	"github.com/gogpu/compositor/geom"
	"github.com/gogpu/compositor/gfx"
)

func TestNewResourcePool(t *testing.T) {
	pool := NewResourcePool()
	if pool.PaintCount() != 0 {
		t.Errorf("PaintCount() = %d, want 0", pool.PaintCount())
	}
	if pool.ImageCount() != 0 {
		t.Errorf("ImageCount() = %d, want 0", pool.ImageCount())
	}
}

func TestResourcePool_Refs(t *testing.T) {
	pool := NewResourcePool()
	p := gfx.NewPaint()

	if ref := pool.AddPaint(nil); ref.IsValid() {
		t.Errorf("AddPaint(nil) = %v, want invalid", ref)
	}
	if got := pool.GetPaint(PaintRef(InvalidRef)); got != nil {
		t.Errorf("GetPaint(invalid) = %v, want nil", got)
	}
	ref := pool.AddPaint(&p)
	if ref != 0 {
		t.Errorf("AddPaint() = %d, want 0", ref)
	}
	if got := pool.GetPaint(ref); got == nil || *got != p {
		t.Errorf("GetPaint() = %v, want %v", got, p)
	}

	img := gfx.NewRasterImage(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	if got := pool.GetImage(pool.AddImage(img)); got != img {
		t.Errorf("GetImage() = %v, want %v", got, img)
	}
	if got := pool.GetImage(ImageRef(5)); got != nil {
		t.Errorf("GetImage(out of range) = %v, want nil", got)
	}
	if ref := pool.AddFilter(nil); ref.IsValid() {
		t.Errorf("AddFilter(nil) = %v, want invalid", ref)
	}
}

func TestResourcePool_PolygonCopied(t *testing.T) {
	pool := NewResourcePool()
	pts := []geom.Point{{X: 1, Y: 2}, {X: 3, Y: 4}, {X: 5, Y: 6}}
	ref := pool.AddPolygon(pts)
	pts[0].X = 99
	if got := pool.GetPolygon(ref)[0].X; got != 1 {
		t.Errorf("stored polygon X = %v, want 1", got)
	}
}

func TestResourcePool_Clear(t *testing.T) {
	pool := NewResourcePool()
	p := gfx.NewPaint()
	pool.AddPaint(&p)
	pool.AddImage(&gfx.PromiseImage{ID: 1})
	pool.Clear()
	if pool.PaintCount() != 0 || pool.ImageCount() != 0 {
		t.Errorf("after Clear: PaintCount() = %d, ImageCount() = %d", pool.PaintCount(), pool.ImageCount())
	}
	if len(pool.PromiseImages()) != 0 {
		t.Error("PromiseImages() not empty after Clear")
	}
}
