package software

import (
	"image"

	"github.com/anthonynsimon/bild/transform"

	"github.com/gogpu/compositor"
	"github.com/gogpu/compositor/gfx"
)

// Surface is an offscreen surface backed by memory. 16-bit float formats
// are stored with 8 bits per channel; their precision is only kept by a
// GPU residency mirror.
type Surface struct {
	desc    gfx.SurfaceDescriptor
	pix     *image.RGBA
	canvas  *Canvas
	backend *Backend
	mirror  Mirror
}

// Canvas returns the canvas drawing into the surface.
func (s *Surface) Canvas() gfx.Canvas { return s.canvas }

// Pixels returns the live pixel buffer.
func (s *Surface) Pixels() *image.RGBA { return s.pix }

// Snapshot copies the current contents. Mipmapped surfaces also build the
// full mip chain of the copy. A residency mirror is refreshed with the
// copy; upload failures are logged.
func (s *Surface) Snapshot() gfx.Image {
	img := gfx.NewRasterImage(gfx.CloneRGBA(s.pix))
	if s.desc.Mipmap {
		img.Mips = mipChain(img.RGBA())
	}
	if s.mirror != nil {
		if err := s.mirror.Upload(img); err != nil {
			compositor.Logger().Warn("software: mirror upload failed", "label", s.desc.Label, "err", err)
		}
	}
	return img
}

func (s *Surface) Size() image.Point       { return s.desc.Size }
func (s *Surface) Format() gfx.PixelFormat { return s.desc.Format }
func (s *Surface) Mipmapped() bool         { return s.desc.Mipmap }

// Destroy releases the surface. It is safe to call more than once.
func (s *Surface) Destroy() {
	if s.backend == nil {
		return
	}
	if s.mirror != nil {
		s.mirror.Release()
		s.mirror = nil
	}
	s.backend.surfaceDestroyed()
	s.backend = nil
}

// mipChain returns levels 1..n of img, each half the size of the last,
// down to 1x1.
func mipChain(img *image.RGBA) []*image.RGBA {
	var mips []*image.RGBA
	w, h := img.Rect.Dx(), img.Rect.Dy()
	level := img
	for w > 1 || h > 1 {
		w, h = max(w/2, 1), max(h/2, 1)
		level = transform.Resize(level, w, h, transform.Linear)
		mips = append(mips, level)
	}
	return mips
}

var _ gfx.Surface = (*Surface)(nil)
