package gfx

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/gogpu/compositor/geom"
)

type stubBackend struct{ name string }

func (b *stubBackend) Name() string { return b.name }
func (b *stubBackend) MakeSurface(SurfaceDescriptor) (Surface, error) {
	return nil, ErrSurfaceLost
}

func TestRegistry(t *testing.T) {
	const name = "gfx-test-stub"
	RegisterBackend(name, func() Backend { return &stubBackend{name: name} })
	t.Cleanup(func() { UnregisterBackend(name) })

	b, err := NewBackend(name)
	if err != nil {
		t.Fatalf("NewBackend(%q) error = %v", name, err)
	}
	if b.Name() != name {
		t.Errorf("Name() = %q, want %q", b.Name(), name)
	}

	found := false
	for _, n := range Backends() {
		if n == name {
			found = true
		}
	}
	if !found {
		t.Errorf("Backends() = %v, want it to contain %q", Backends(), name)
	}

	if _, err := NewBackend("missing"); err == nil || !strings.Contains(err.Error(), "unknown backend") {
		t.Errorf("NewBackend(missing) error = %v, want unknown backend", err)
	}
}

func TestRegisterBackendPanics(t *testing.T) {
	const name = "gfx-test-dup"
	RegisterBackend(name, func() Backend { return &stubBackend{} })
	t.Cleanup(func() { UnregisterBackend(name) })

	tests := []struct {
		name    string
		backend string
		factory BackendFactory
		want    string
	}{
		{"nil factory", "gfx-test-nil", nil, "gfx: RegisterBackend factory is nil"},
		{"duplicate", name, func() Backend { return &stubBackend{} }, "gfx: RegisterBackend called twice for " + name},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				r := recover()
				if r != tt.want {
					t.Errorf("panic = %v, want %q", r, tt.want)
				}
			}()
			RegisterBackend(tt.backend, tt.factory)
		})
	}
}

func TestMustBackendPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustBackend(missing) did not panic")
		}
	}()
	MustBackend("missing")
}

func TestColorSpace(t *testing.T) {
	tests := []struct {
		cs        ColorSpace
		hdr, wide bool
		yuv       YUVColorSpace
		hasYUV    bool
	}{
		{ColorSpaceSRGB, false, false, YUVRec601, false},
		{ColorSpaceRec601, false, false, YUVRec601, true},
		{ColorSpaceRec709, false, false, YUVRec709, true},
		{ColorSpaceJPEG, false, false, YUVJPEG, true},
		{ColorSpaceDisplayP3, false, true, YUVRec601, false},
		{ColorSpaceHDR10, true, true, YUVRec601, false},
		{ColorSpaceSCRGBLinear, true, true, YUVRec601, false},
	}
	for _, tt := range tests {
		t.Run(tt.cs.String(), func(t *testing.T) {
			if got := tt.cs.IsHDR(); got != tt.hdr {
				t.Errorf("IsHDR() = %v, want %v", got, tt.hdr)
			}
			if got := tt.cs.IsWideGamut(); got != tt.wide {
				t.Errorf("IsWideGamut() = %v, want %v", got, tt.wide)
			}
			yuv, ok := tt.cs.YUVMatrix()
			if yuv != tt.yuv || ok != tt.hasYUV {
				t.Errorf("YUVMatrix() = %v, %v, want %v, %v", yuv, ok, tt.yuv, tt.hasYUV)
			}
		})
	}
}

func TestPremultiply(t *testing.T) {
	tests := []struct {
		in   color.NRGBA
		want color.RGBA
	}{
		{color.NRGBA{R: 255, G: 128, B: 0, A: 255}, color.RGBA{R: 255, G: 128, B: 0, A: 255}},
		{color.NRGBA{R: 255, G: 255, B: 255, A: 128}, color.RGBA{R: 128, G: 128, B: 128, A: 128}},
		{color.NRGBA{R: 200, A: 0}, color.RGBA{}},
	}
	for _, tt := range tests {
		if got := Premultiply(tt.in); got != tt.want {
			t.Errorf("Premultiply(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestAlphaFromOpacity(t *testing.T) {
	tests := []struct {
		opacity float64
		want    uint8
	}{
		{-1, 0},
		{0, 0},
		{0.5, 127},
		{1, 255},
		{2, 255},
	}
	for _, tt := range tests {
		if got := AlphaFromOpacity(tt.opacity); got != tt.want {
			t.Errorf("AlphaFromOpacity(%v) = %d, want %d", tt.opacity, got, tt.want)
		}
	}
}

func TestRasterImageSubset(t *testing.T) {
	pix := image.NewRGBA(image.Rect(0, 0, 4, 4))
	pix.SetRGBA(2, 3, color.RGBA{G: 0xff, A: 0xff})
	img := NewRasterImage(pix)

	sub := img.Subset(image.Rect(2, 2, 6, 6))
	if sub == nil {
		t.Fatal("Subset() = nil")
	}
	if got := sub.Bounds(); got != image.Rect(0, 0, 2, 2) {
		t.Errorf("Subset().Bounds() = %v, want %v", got, image.Rect(0, 0, 2, 2))
	}
	if got := sub.RGBA().RGBAAt(0, 1); got.G != 0xff {
		t.Errorf("Subset() pixel = %v, want green", got)
	}
	if img.Subset(image.Rect(10, 10, 12, 12)) != nil {
		t.Error("Subset() outside the image != nil")
	}
}

type recordingCanvas struct {
	Canvas
	calls []string
}

func (r *recordingCanvas) Save() int { r.calls = append(r.calls, "save"); return 1 }
func (r *recordingCanvas) SaveCount() int { return 7 }
func (r *recordingCanvas) DrawRect(geom.Rect, *Paint) { r.calls = append(r.calls, "rect") }
func (r *recordingCanvas) ClipRect(geom.Rect, bool) { r.calls = append(r.calls, "clip") }
func (r *recordingCanvas) SetMatrix(geom.Matrix) { r.calls = append(r.calls, "matrix") }
func (r *recordingCanvas) TotalMatrix() geom.Matrix { return geom.Translate(1, 2) }
func (r *recordingCanvas) Clear(color.NRGBA) { r.calls = append(r.calls, "clear") }
func (r *recordingCanvas) DrawPolygon([]geom.Point, *Paint) { r.calls = append(r.calls, "polygon") }
func (r *recordingCanvas) RestoreToCount(int) { r.calls = append(r.calls, "restore") }
func (r *recordingCanvas) BaseLayerSize() image.Point { return image.Pt(1, 1) }
func (r *recordingCanvas) ClipPolygon([]geom.Point, bool) { r.calls = append(r.calls, "clippoly") }
func (r *recordingCanvas) Concat(geom.Matrix) { r.calls = append(r.calls, "concat") }
func (r *recordingCanvas) SaveLayerAlpha(*geom.Rect, uint8) int { r.calls = append(r.calls, "layer"); return 1 }

func TestNWayCanvas(t *testing.T) {
	a, b := &recordingCanvas{}, &recordingCanvas{}
	n := NewNWayCanvas(10, 20)
	n.AddCanvas(a)
	n.AddCanvas(b)

	if got := n.Save(); got != 7 {
		t.Errorf("Save() = %d, want 7", got)
	}
	n.SetMatrix(geom.Identity())
	n.ClipRect(geom.NewRect(0, 0, 1, 1), false)
	p := NewPaint()
	n.DrawRect(geom.NewRect(0, 0, 1, 1), &p)
	n.RestoreToCount(1)

	want := []string{"save", "matrix", "clip", "rect", "restore"}
	for _, c := range []*recordingCanvas{a, b} {
		if strings.Join(c.calls, ",") != strings.Join(want, ",") {
			t.Errorf("calls = %v, want %v", c.calls, want)
		}
	}
	if got := n.TotalMatrix(); got != geom.Translate(1, 2) {
		t.Errorf("TotalMatrix() = %v, want the first canvas's matrix", got)
	}
	if got := n.BaseLayerSize(); got != image.Pt(10, 20) {
		t.Errorf("BaseLayerSize() = %v, want 10x20", got)
	}
	if got := NewNWayCanvas(1, 1).SaveCount(); got != 1 {
		t.Errorf("empty SaveCount() = %d, want 1", got)
	}
}

func TestSyncToken(t *testing.T) {
	var zero SyncToken
	if zero.IsValid() {
		t.Error("zero SyncToken is valid")
	}
	if got := (SyncToken{Release: 3}).String(); got != "SyncToken(3)" {
		t.Errorf("String() = %q, want %q", got, "SyncToken(3)")
	}
}

func TestSurfaceDescriptorValidate(t *testing.T) {
	ok := SurfaceDescriptor{Size: image.Pt(1, 1), Format: FormatBGRA8}
	if err := ok.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}
