package software

import (
	"errors"
	"image"
	"testing"

	"github.com/gogpu/compositor/geom"
	"github.com/gogpu/compositor/gfx"
)

func TestBackendName(t *testing.T) {
	b := New()
	if b.Name() != "software" {
		t.Errorf("Name() = %q, want %q", b.Name(), "software")
	}
}

func TestBackendRegistered(t *testing.T) {
	b, err := gfx.NewBackend(Name)
	if err != nil {
		t.Fatalf("NewBackend(%q) error = %v", Name, err)
	}
	if _, ok := b.(*Backend); !ok {
		t.Errorf("NewBackend(%q) = %T, want *Backend", Name, b)
	}
}

func TestMakeSurface(t *testing.T) {
	b := New()
	s, err := b.MakeSurface(gfx.SurfaceDescriptor{Size: image.Pt(16, 8), Format: gfx.FormatRGBA8})
	if err != nil {
		t.Fatalf("MakeSurface() error = %v", err)
	}
	if got := s.Size(); got != image.Pt(16, 8) {
		t.Errorf("Size() = %v, want 16x8", got)
	}
	if got := s.Canvas().BaseLayerSize(); got != image.Pt(16, 8) {
		t.Errorf("BaseLayerSize() = %v, want 16x8", got)
	}
	if b.Allocations() != 1 || b.LiveSurfaces() != 1 {
		t.Errorf("Allocations() = %d, LiveSurfaces() = %d, want 1, 1", b.Allocations(), b.LiveSurfaces())
	}
	s.Destroy()
	s.Destroy()
	if b.LiveSurfaces() != 0 {
		t.Errorf("LiveSurfaces() after Destroy = %d, want 0", b.LiveSurfaces())
	}
	if b.Allocations() != 1 {
		t.Errorf("Allocations() after Destroy = %d, want 1", b.Allocations())
	}
}

func TestMakeSurfaceErrors(t *testing.T) {
	tests := []struct {
		name string
		desc gfx.SurfaceDescriptor
		want error
	}{
		{"zero width", gfx.SurfaceDescriptor{Size: image.Pt(0, 8), Format: gfx.FormatRGBA8}, gfx.ErrInvalidSize},
		{"negative height", gfx.SurfaceDescriptor{Size: image.Pt(8, -1), Format: gfx.FormatRGBA8}, gfx.ErrInvalidSize},
		{"undefined format", gfx.SurfaceDescriptor{Size: image.Pt(8, 8)}, gfx.ErrUnsupportedFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New()
			_, err := b.MakeSurface(tt.desc)
			if !errors.Is(err, tt.want) {
				t.Errorf("MakeSurface() error = %v, want %v", err, tt.want)
			}
			if b.Allocations() != 0 {
				t.Errorf("Allocations() = %d, want 0", b.Allocations())
			}
		})
	}
}

type fakeResidency struct {
	err      error
	allocs   int
	releases int
	uploads  int
}

type fakeMirror struct{ r *fakeResidency }

func (m fakeMirror) Upload(*gfx.RasterImage) error { m.r.uploads++; return nil }
func (m fakeMirror) Release()                      { m.r.releases++ }

func (r *fakeResidency) Allocate(gfx.SurfaceDescriptor) (Mirror, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.allocs++
	return fakeMirror{r}, nil
}

func TestResidency(t *testing.T) {
	r := &fakeResidency{}
	b := New(WithResidency(r))
	s, err := b.MakeSurface(gfx.SurfaceDescriptor{Size: image.Pt(4, 4), Format: gfx.FormatRGBA16})
	if err != nil {
		t.Fatalf("MakeSurface() error = %v", err)
	}
	s.Snapshot()
	s.Destroy()
	s.Destroy()
	if r.allocs != 1 || r.releases != 1 || r.uploads != 1 {
		t.Errorf("residency allocs = %d, releases = %d, uploads = %d, want 1, 1, 1", r.allocs, r.releases, r.uploads)
	}

	r.err = gfx.ErrSurfaceLost
	if _, err := b.MakeSurface(gfx.SurfaceDescriptor{Size: image.Pt(4, 4), Format: gfx.FormatRGBA8}); !errors.Is(err, gfx.ErrSurfaceLost) {
		t.Errorf("MakeSurface() error = %v, want %v", err, gfx.ErrSurfaceLost)
	}
	if b.Allocations() != 1 {
		t.Errorf("Allocations() = %d, want 1", b.Allocations())
	}
}

func TestSnapshot(t *testing.T) {
	b := New()
	s, err := b.MakeSurface(gfx.SurfaceDescriptor{Size: image.Pt(8, 4), Format: gfx.FormatRGBA8, Mipmap: true})
	if err != nil {
		t.Fatalf("MakeSurface() error = %v", err)
	}
	defer s.Destroy()

	s.Canvas().DrawRect(geom.NewRect(0, 0, 8, 4), solidPaint(red, gfx.BlendSrc))
	snap := s.Snapshot().(*gfx.RasterImage)
	s.Canvas().DrawRect(geom.NewRect(0, 0, 8, 4), solidPaint(blue, gfx.BlendSrc))

	if got := snap.RGBA().RGBAAt(3, 3); got.R != 0xff || got.B != 0 {
		t.Errorf("snapshot pixel = %v, want red", got)
	}
	if !snap.IsOpaque() {
		t.Error("IsOpaque() = false, want true")
	}

	wantSizes := []image.Point{{4, 2}, {2, 1}, {1, 1}}
	if len(snap.Mips) != len(wantSizes) {
		t.Fatalf("len(Mips) = %d, want %d", len(snap.Mips), len(wantSizes))
	}
	for i, want := range wantSizes {
		if got := snap.Mips[i].Rect.Size(); got != want {
			t.Errorf("Mips[%d] size = %v, want %v", i, got, want)
		}
	}
}
