package gfx

import (
	"image"
	"image/draw"
)

// Image is a read-only drawable pixel source.
//
// Two implementations exist: [RasterImage], whose premultiplied pixels are
// resident in memory, and [PromiseImage], a placeholder that a deferred
// executor fulfills when the recorded draw is played back.
type Image interface {
	Width() int
	Height() int
	IsOpaque() bool
}

// RasterImage is an image backed by premultiplied RGBA pixels whose bounds
// start at the origin. Mips, when present, holds successively halved levels
// starting with level 1.
type RasterImage struct {
	pix    *image.RGBA
	opaque bool
	Mips   []*image.RGBA
}

// NewRasterImage wraps pix. If pix does not start at the origin it is
// copied so that texel (0, 0) is its top-left pixel.
func NewRasterImage(pix *image.RGBA) *RasterImage {
	if pix.Rect.Min != (image.Point{}) {
		pix = CloneRGBA(pix)
	}
	return &RasterImage{pix: pix, opaque: pix.Opaque()}
}

// Width returns the width in texels.
func (r *RasterImage) Width() int { return r.pix.Rect.Dx() }

// Height returns the height in texels.
func (r *RasterImage) Height() int { return r.pix.Rect.Dy() }

// IsOpaque reports whether every texel has full alpha.
func (r *RasterImage) IsOpaque() bool { return r.opaque }

// Bounds returns the texel bounds.
func (r *RasterImage) Bounds() image.Rectangle { return r.pix.Rect }

// RGBA returns the backing pixels. Callers must not modify them.
func (r *RasterImage) RGBA() *image.RGBA { return r.pix }

// Subset returns a copy of the texels inside rect, rebased to the origin.
// It returns nil if rect does not intersect the image.
func (r *RasterImage) Subset(rect image.Rectangle) *RasterImage {
	rect = rect.Intersect(r.pix.Rect)
	if rect.Empty() {
		return nil
	}
	sub := r.pix.SubImage(rect).(*image.RGBA)
	return NewRasterImage(CloneRGBA(sub))
}

// CloneRGBA copies img into a new image whose bounds start at the origin.
func CloneRGBA(img *image.RGBA) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Rect, img, b.Min, draw.Src)
	return out
}

// PromiseImage stands in for an image owned by a deferred execution
// context. Only its identity and geometry are known while recording.
type PromiseImage struct {
	ID        uint64
	W, H      int
	Opaque    bool
	Mipmapped bool
}

// Width returns the promised width.
func (p *PromiseImage) Width() int { return p.W }

// Height returns the promised height.
func (p *PromiseImage) Height() int { return p.H }

// IsOpaque reports whether the promised content is known to be opaque.
func (p *PromiseImage) IsOpaque() bool { return p.Opaque }

// DerivedImage is an image computed from another image, such as the output
// of an image filter. A deferred executor resolves Source first and then
// calls Derive with its pixels.
type DerivedImage interface {
	Image
	Source() Image
	Derive(src *RasterImage) (*RasterImage, error)
}
