package software

import (
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/compositor/geom"
	"github.com/gogpu/compositor/gfx"
)

var (
	red   = color.NRGBA{R: 0xff, A: 0xff}
	green = color.NRGBA{G: 0xff, A: 0xff}
	blue  = color.NRGBA{B: 0xff, A: 0xff}
)

func newTestCanvas(w, h int) (*Canvas, *image.RGBA) {
	pix := image.NewRGBA(image.Rect(0, 0, w, h))
	return NewCanvas(pix), pix
}

func solidPaint(c color.NRGBA, mode gfx.BlendMode) *gfx.Paint {
	p := gfx.NewPaint()
	p.SetColor(c)
	p.BlendMode = mode
	return &p
}

func TestDrawRectExact(t *testing.T) {
	c, pix := newTestCanvas(20, 20)
	c.DrawRect(geom.NewRect(2, 3, 8, 7), solidPaint(color.NRGBA{R: 10, G: 200, B: 30, A: 0xff}, gfx.BlendSrc))

	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			got := pix.RGBAAt(x, y)
			inside := x >= 2 && x < 10 && y >= 3 && y < 10
			want := color.RGBA{}
			if inside {
				want = color.RGBA{R: 10, G: 200, B: 30, A: 0xff}
			}
			if got != want {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
	if c.DrawCount() != 1 {
		t.Errorf("DrawCount() = %d, want 1", c.DrawCount())
	}
}

func TestDrawRectSourceOverHalfAlpha(t *testing.T) {
	c, pix := newTestCanvas(4, 4)
	c.Clear(color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
	c.DrawRect(geom.NewRect(0, 0, 4, 4), solidPaint(color.NRGBA{A: 0x80}, gfx.BlendSrcOver))

	got := pix.RGBAAt(1, 1)
	// 255 * (1 - 128/255) rounds to 127
	want := color.RGBA{R: 127, G: 127, B: 127, A: 0xff}
	if got != want {
		t.Errorf("pixel = %v, want %v", got, want)
	}
}

func TestClipRect(t *testing.T) {
	c, pix := newTestCanvas(10, 10)
	c.Save()
	c.ClipRect(geom.NewRect(0, 0, 5, 10), false)
	c.DrawRect(geom.NewRect(0, 0, 10, 10), solidPaint(red, gfx.BlendSrcOver))
	c.Restore()

	if got := pix.RGBAAt(4, 5); got.R != 0xff {
		t.Errorf("inside clip = %v, want red", got)
	}
	if got := pix.RGBAAt(5, 5); got.A != 0 {
		t.Errorf("outside clip = %v, want transparent", got)
	}

	// The clip is gone after Restore.
	c.DrawRect(geom.NewRect(5, 5, 1, 1), solidPaint(blue, gfx.BlendSrcOver))
	if got := pix.RGBAAt(5, 5); got.B != 0xff {
		t.Errorf("after restore = %v, want blue", got)
	}
}

func TestClipPolygonAntiAlias(t *testing.T) {
	c, pix := newTestCanvas(10, 10)
	c.ClipPolygon([]geom.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 0, Y: 10}}, true)
	c.DrawRect(geom.NewRect(0, 0, 10, 10), solidPaint(red, gfx.BlendSrc))

	if got := pix.RGBAAt(1, 1); got.A != 0xff {
		t.Errorf("inside triangle alpha = %d, want 255", got.A)
	}
	if got := pix.RGBAAt(8, 8); got.A != 0 {
		t.Errorf("outside triangle alpha = %d, want 0", got.A)
	}
	// Pixels on the diagonal are half covered.
	if got := pix.RGBAAt(4, 5); got.A == 0 || got.A == 0xff {
		t.Errorf("diagonal alpha = %d, want partial coverage", got.A)
	}
}

func TestSaveRestoreState(t *testing.T) {
	c, _ := newTestCanvas(10, 10)
	if got := c.SaveCount(); got != 1 {
		t.Fatalf("SaveCount() = %d, want 1", got)
	}
	n := c.Save()
	c.Concat(geom.Translate(3, 4))
	c.Save()
	c.Concat(geom.Scale(2, 2))
	if got := c.SaveCount(); got != 3 {
		t.Errorf("SaveCount() = %d, want 3", got)
	}
	want := geom.Translate(3, 4).Multiply(geom.Scale(2, 2))
	if got := c.TotalMatrix(); got != want {
		t.Errorf("TotalMatrix() = %v, want %v", got, want)
	}
	c.RestoreToCount(n)
	if got := c.SaveCount(); got != 1 {
		t.Errorf("SaveCount() after RestoreToCount = %d, want 1", got)
	}
	if !c.TotalMatrix().IsIdentity() {
		t.Errorf("TotalMatrix() after RestoreToCount = %v, want identity", c.TotalMatrix())
	}
	c.Restore() // no-op at the base level
	if got := c.SaveCount(); got != 1 {
		t.Errorf("SaveCount() after extra Restore = %d, want 1", got)
	}
}

func TestSaveLayerAlpha(t *testing.T) {
	c, pix := newTestCanvas(4, 4)
	c.SaveLayerAlpha(nil, 0x80)
	c.DrawRect(geom.NewRect(0, 0, 4, 4), solidPaint(red, gfx.BlendSrcOver))
	if got := pix.RGBAAt(0, 0); got.A != 0 {
		t.Fatalf("pixel before restore = %v, want untouched", got)
	}
	c.Restore()

	want := color.RGBA{R: 128, A: 128}
	if got := pix.RGBAAt(2, 2); got != want {
		t.Errorf("pixel = %v, want %v", got, want)
	}
}

func TestDrawImageRect(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	src.SetRGBA(0, 0, color.RGBA{R: 0xff, A: 0xff})
	src.SetRGBA(1, 0, color.RGBA{G: 0xff, A: 0xff})
	src.SetRGBA(0, 1, color.RGBA{B: 0xff, A: 0xff})
	src.SetRGBA(1, 1, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
	img := gfx.NewRasterImage(src)

	tests := []struct {
		name string
		src  geom.Rect
		dst  geom.Rect
		at   image.Point
		want color.RGBA
	}{
		{"identity", geom.NewRect(0, 0, 2, 2), geom.NewRect(0, 0, 2, 2), image.Pt(1, 0), color.RGBA{G: 0xff, A: 0xff}},
		{"offset", geom.NewRect(0, 0, 2, 2), geom.NewRect(4, 4, 2, 2), image.Pt(4, 5), color.RGBA{B: 0xff, A: 0xff}},
		{"scaled", geom.NewRect(0, 0, 2, 2), geom.NewRect(0, 0, 8, 8), image.Pt(6, 6), color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}},
		{"subset", geom.NewRect(1, 1, 1, 1), geom.NewRect(0, 0, 4, 4), image.Pt(0, 0), color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, pix := newTestCanvas(8, 8)
			p := gfx.NewPaint()
			p.FilterQuality = gfx.FilterNone
			c.DrawImageRect(img, tt.src, tt.dst, &p)
			if got := pix.RGBAAt(tt.at.X, tt.at.Y); got != tt.want {
				t.Errorf("pixel %v = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestDrawImageRectPromiseSkipped(t *testing.T) {
	c, pix := newTestCanvas(4, 4)
	c.DrawImageRect(&gfx.PromiseImage{ID: 1, W: 4, H: 4}, geom.NewRect(0, 0, 4, 4), geom.NewRect(0, 0, 4, 4), nil)
	if got := pix.RGBAAt(0, 0); got.A != 0 {
		t.Errorf("pixel = %v, want untouched", got)
	}
}

func TestStroke(t *testing.T) {
	c, pix := newTestCanvas(20, 20)
	p := solidPaint(green, gfx.BlendSrcOver)
	p.Style = gfx.StyleStroke
	p.StrokeWidth = 2
	c.DrawRect(geom.NewRect(5, 5, 10, 10), p)

	if got := pix.RGBAAt(5, 10); got.G != 0xff {
		t.Errorf("edge pixel = %v, want green", got)
	}
	if got := pix.RGBAAt(4, 4); got.G != 0xff {
		t.Errorf("corner pixel = %v, want green", got)
	}
	if got := pix.RGBAAt(10, 10); got.A != 0 {
		t.Errorf("interior pixel = %v, want transparent", got)
	}
}

func TestMaskFilter(t *testing.T) {
	m := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 4; x < 8; x++ {
			m.SetRGBA(x, y, color.RGBA{A: 0xff})
		}
	}
	c, pix := newTestCanvas(8, 8)
	p := solidPaint(red, gfx.BlendSrcOver)
	p.MaskFilter = gfx.NewShaderMaskFilter(gfx.NewImageShader(gfx.NewRasterImage(m), geom.Identity()))
	c.DrawRect(geom.NewRect(0, 0, 8, 8), p)

	if got := pix.RGBAAt(0, 3); got.A != 0 {
		t.Errorf("masked pixel = %v, want transparent", got)
	}
	if got := pix.RGBAAt(7, 3); got.R != 0xff || got.A != 0xff {
		t.Errorf("unmasked pixel = %v, want red", got)
	}
}

// fillFilter replaces every pixel with a color.
type fillFilter struct{ c color.RGBA }

func (f fillFilter) FilterBounds(r geom.Rect, _ geom.Matrix) geom.Rect { return r }

func (f fillFilter) Apply(src *image.RGBA, _ geom.Matrix) *image.RGBA {
	return uniform(src.Rect, f.c)
}

func TestSaveBackdropLayer(t *testing.T) {
	c, pix := newTestCanvas(10, 10)
	c.Clear(red)

	c.Save()
	bounds := geom.NewRect(2, 2, 4, 4)
	c.ClipRect(bounds, false)
	c.SaveBackdropLayer(bounds, nil, fillFilter{color.RGBA{B: 0xff, A: 0xff}})
	c.Restore()
	c.Restore()

	if got := pix.RGBAAt(3, 3); got.B != 0xff || got.R != 0 {
		t.Errorf("filtered pixel = %v, want blue", got)
	}
	if got := pix.RGBAAt(8, 8); got.R != 0xff {
		t.Errorf("pixel outside bounds = %v, want red", got)
	}
}

func TestBackdropLayerSeesEarlierDraws(t *testing.T) {
	c, pix := newTestCanvas(4, 4)
	c.DrawRect(geom.NewRect(0, 0, 4, 4), solidPaint(green, gfx.BlendSrc))
	c.SaveBackdropLayer(geom.NewRect(0, 0, 4, 4), nil, nil)
	c.Restore()

	if got := pix.RGBAAt(1, 1); got.G != 0xff || got.A != 0xff {
		t.Errorf("pixel = %v, want green preserved", got)
	}
}

func TestOverdrawCanvas(t *testing.T) {
	b := New()
	c, counts := b.MakeOverdrawCanvas(image.Pt(10, 10))
	p := solidPaint(red, gfx.BlendSrcOver)
	c.DrawRect(geom.NewRect(0, 0, 6, 6), p)
	c.SaveLayerAlpha(nil, 0x80)
	c.DrawRect(geom.NewRect(4, 4, 6, 6), p)
	c.Restore()

	a := counts()
	tests := []struct {
		at   image.Point
		want uint8
	}{
		{image.Pt(1, 1), 1},
		{image.Pt(5, 5), 2},
		{image.Pt(8, 8), 1},
		{image.Pt(8, 1), 0},
	}
	for _, tt := range tests {
		if got := a.AlphaAt(tt.at.X, tt.at.Y).A; got != tt.want {
			t.Errorf("count at %v = %d, want %d", tt.at, got, tt.want)
		}
	}
}
