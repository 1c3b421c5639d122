package display

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/compositor"
	"github.com/gogpu/compositor/backend/software"
	"github.com/gogpu/compositor/deferred"
	"github.com/gogpu/compositor/gfx"
	"github.com/gogpu/compositor/quad"
	"github.com/gogpu/compositor/resource"
	"github.com/gogpu/compositor/surface"
)

func grayPlane(w, h int, v uint8) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for i := range g.Pix {
		g.Pix[i] = v
	}
	return g
}

func TestImageBuilderYUVMemoized(t *testing.T) {
	p := resource.NewMemoryProvider()
	y := p.AddPlane(grayPlane(4, 4, 0x80), resource.ImportOptions{})
	u := p.AddPlane(grayPlane(2, 2, 0x80), resource.ImportOptions{})
	v := p.AddPlane(grayPlane(2, 2, 0x80), resource.ImportOptions{})
	b := newImageBuilder(compositor.Logger, p, nil)

	q := &quad.YUVVideoQuad{YPlane: y, UPlane: u, VPlane: v, ColorSpace: gfx.ColorSpaceRec601}
	first, ok := b.YUV(q)
	if !ok {
		t.Fatal("YUV() failed")
	}
	second, ok := b.YUV(q)
	if !ok || second != first {
		t.Error("YUV() converted the same planes twice in one frame")
	}
	if first.Width() != 4 || first.Height() != 4 {
		t.Errorf("YUV() size = %dx%d, want 4x4", first.Width(), first.Height())
	}
	for _, id := range []quad.ResourceID{y, u, v} {
		if read, _ := p.LockCounts(id); read != 1 {
			t.Errorf("plane %d read locks = %d, want 1", id, read)
		}
	}

	b.Release(gfx.SyncToken{})
	for _, id := range []quad.ResourceID{y, u, v} {
		if read, _ := p.LockCounts(id); read != 0 {
			t.Errorf("plane %d read locks after Release = %d, want 0", id, read)
		}
	}
	if b.Locked() != 0 {
		t.Errorf("Locked() = %d after Release, want 0", b.Locked())
	}
}

func TestImageBuilderImage(t *testing.T) {
	p := resource.NewMemoryProvider()
	id := p.AddImage(solidImage(3, 2, greenPx), resource.ImportOptions{})
	plane := p.AddPlane(grayPlane(2, 2, 1), resource.ImportOptions{})
	b := newImageBuilder(compositor.Logger, p, nil)

	first, ok := b.Image(id)
	if !ok {
		t.Fatal("Image() failed")
	}
	if second, _ := b.Image(id); second != first {
		t.Error("Image() locked the same resource twice")
	}
	if read, _ := p.LockCounts(id); read != 1 {
		t.Errorf("read locks = %d, want 1", read)
	}
	if first.Width() != 3 || first.Height() != 2 {
		t.Errorf("Image() size = %dx%d, want 3x2", first.Width(), first.Height())
	}

	if _, ok := b.Image(plane); ok {
		t.Error("Image() accepted a video plane")
	}
	if read, _ := p.LockCounts(plane); read != 0 {
		t.Errorf("plane read locks = %d, want 0", read)
	}
	if _, ok := b.Image(0); ok {
		t.Error("Image(0) succeeded")
	}

	b.Release(gfx.SyncToken{})
	if read, _ := p.LockCounts(id); read != 0 {
		t.Errorf("read locks after Release = %d, want 0", read)
	}
}

func TestImageBuilderLockImageErrors(t *testing.T) {
	p := resource.NewMemoryProvider()
	b := newImageBuilder(compositor.Logger, p, nil)
	if _, err := b.lockImage(0); !errors.Is(err, resource.ErrUnknownResource) {
		t.Errorf("lockImage(0) error = %v, want %v", err, resource.ErrUnknownResource)
	}
	plane := p.AddPlane(grayPlane(2, 2, 1), resource.ImportOptions{})
	if _, err := b.lockImage(plane); !errors.Is(err, errPlaneImage) {
		t.Errorf("lockImage(plane) error = %v, want %v", err, errPlaneImage)
	}
}

func TestImageBuilderDeferred(t *testing.T) {
	p := resource.NewMemoryProvider()
	out := deferred.NewOutputSurface(software.New(), surface.NewImageOutput(surface.DefaultOptions(4, 4)), p)
	t.Cleanup(func() { out.Close() })
	b := newImageBuilder(compositor.Logger, p, out)

	gpu := p.AddImage(solidImage(2, 2, color.RGBA{R: 0xff, A: 0xff}), resource.ImportOptions{})
	cpu := p.AddImage(solidImage(2, 2, greenPx), resource.ImportOptions{SoftwareBacked: true})

	img, ok := b.Image(gpu)
	if !ok {
		t.Fatal("Image() failed for an external resource")
	}
	if _, ok := img.(*gfx.PromiseImage); !ok {
		t.Errorf("Image() = %T, want *gfx.PromiseImage", img)
	}
	if _, external := p.LockCounts(gpu); external != 1 {
		t.Errorf("external locks = %d, want 1", external)
	}

	img, ok = b.Image(cpu)
	if !ok {
		t.Fatal("Image() failed for a software resource")
	}
	if _, ok := img.(*gfx.RasterImage); !ok {
		t.Errorf("Image() of software resource = %T, want *gfx.RasterImage", img)
	}
	if read, external := p.LockCounts(cpu); read != 1 || external != 0 {
		t.Errorf("software resource locks = (%d, %d), want (1, 0)", read, external)
	}
	if b.Locked() != 2 {
		t.Errorf("Locked() = %d, want 2", b.Locked())
	}

	b.Release(gfx.SyncToken{})
	if _, external := p.LockCounts(gpu); external != 0 {
		t.Errorf("external locks after Release = %d, want 0", external)
	}
	if read, _ := p.LockCounts(cpu); read != 0 {
		t.Errorf("read locks after Release = %d, want 0", read)
	}
}

func TestImageBuilderYUVPartialLockFailure(t *testing.T) {
	p := resource.NewMemoryProvider()
	y := p.AddPlane(grayPlane(4, 4, 0x80), resource.ImportOptions{})
	u := p.AddPlane(grayPlane(2, 2, 0x80), resource.ImportOptions{})
	missing := quad.ResourceID(999)
	b := newImageBuilder(compositor.Logger, p, nil)

	q := &quad.YUVVideoQuad{YPlane: y, UPlane: u, VPlane: missing, ColorSpace: gfx.ColorSpaceRec601}
	for i := range 2 {
		if _, ok := b.YUV(q); ok {
			t.Fatalf("YUV() call %d succeeded with a missing plane", i)
		}
		for _, id := range []quad.ResourceID{y, u} {
			if read, _ := p.LockCounts(id); read != 0 {
				t.Errorf("call %d: plane %d read locks = %d, want 0", i, id, read)
			}
		}
		if b.Locked() != 0 {
			t.Errorf("call %d: Locked() = %d, want 0", i, b.Locked())
		}
	}
	ids := resource.YUVIDs{Y: y, U: u, V: missing}
	if img, ok := b.yuv[ids]; !ok || img != nil {
		t.Error("YUV() did not remember the failed planes for the frame")
	}

	b.Release(gfx.SyncToken{})
	if len(b.yuv) != 0 {
		t.Errorf("len(yuv) = %d after Release, want 0", len(b.yuv))
	}
}
