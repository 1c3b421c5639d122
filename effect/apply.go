package effect

import (
	"errors"
	"image"
	"math"

	"github.com/gogpu/compositor/geom"
	"github.com/gogpu/compositor/gfx"
)

// Result is the output of running a filter over render pass content.
type Result struct {
	// Image holds the filtered pixels, starting at texel (0, 0).
	Image gfx.Image
	// Offset is where texel (0, 0) of Image lands, relative to the origin
	// of the source rect.
	Offset image.Point
	// Subset is the valid region of Image.
	Subset image.Rectangle
}

// Apply filters the srcRect texels of content, keeping only what falls
// inside dstRect. Both rects are in content space. scale and origin place
// the filter parameters: they are evaluated under translate(origin)
// followed by scale(scale).
//
// ok is false when nothing of the filtered output reaches dstRect, in
// which case no pixel work is done. Content that is not resident yet, such
// as a promise image, yields a gfx.DerivedImage that computes the pixels
// once its source is resolved.
func Apply(content gfx.Image, srcRect, dstRect geom.Rect, scale, origin geom.Point, f gfx.ImageFilter) (Result, bool) {
	if content == nil || f == nil {
		return Result{}, false
	}
	local := geom.Translate(-srcRect.MinX, -srcRect.MinY).
		Multiply(geom.Scale(scale.X, scale.Y)).
		Multiply(geom.Translate(origin.X, origin.Y))

	in := image.Rect(0, 0, int(math.Round(srcRect.Width())), int(math.Round(srcRect.Height())))
	clip := dstRect.Offset(-srcRect.MinX, -srcRect.MinY).Enclosing()
	full := f.FilterBounds(geom.FromImageRect(in), local).Enclosing().Union(in)
	out := full.Intersect(clip)
	if out.Empty() {
		return Result{}, false
	}

	fi := &FilteredImage{
		source: content,
		filter: f,
		local:  local,
		at:     image.Pt(int(math.Round(srcRect.MinX)), int(math.Round(srcRect.MinY))),
		in:     in,
		full:   full,
		out:    out,
	}
	res := Result{Offset: out.Min, Subset: image.Rectangle{Max: out.Size()}}
	if ri, ok := content.(*gfx.RasterImage); ok {
		img, err := fi.Derive(ri)
		if err != nil {
			return Result{}, false
		}
		res.Image = img
		return res, true
	}
	res.Image = fi
	return res, true
}

// FilteredImage is filter output whose source pixels are not resident
// yet. It implements gfx.DerivedImage.
type FilteredImage struct {
	source gfx.Image
	filter gfx.ImageFilter
	local  geom.Matrix
	at     image.Point // content texel of source rect origin
	in     image.Rectangle
	full   image.Rectangle
	out    image.Rectangle
}

func (fi *FilteredImage) Width() int        { return fi.out.Dx() }
func (fi *FilteredImage) Height() int       { return fi.out.Dy() }
func (fi *FilteredImage) IsOpaque() bool    { return false }
func (fi *FilteredImage) Source() gfx.Image { return fi.source }

var errSizeMismatch = errors.New("effect: resolved source smaller than promised")

// Derive runs the filter over src, which must be the resolved source.
func (fi *FilteredImage) Derive(src *gfx.RasterImage) (*gfx.RasterImage, error) {
	if src.Width() < fi.source.Width() || src.Height() < fi.source.Height() {
		return nil, errSizeMismatch
	}
	work := image.NewRGBA(fi.full)
	copyIn(work, src.RGBA(), fi.in, fi.at)
	filtered := fi.filter.Apply(work, fi.local)
	return gfx.NewRasterImage(gfx.CloneRGBA(filtered.SubImage(fi.out).(*image.RGBA))), nil
}

// copyIn copies the content texels at+in into dst at in.
func copyIn(dst, content *image.RGBA, in image.Rectangle, at image.Point) {
	src := in.Add(at).Intersect(content.Rect)
	if src.Empty() {
		return
	}
	for y := src.Min.Y; y < src.Max.Y; y++ {
		si := content.PixOffset(src.Min.X, y)
		di := dst.PixOffset(src.Min.X-at.X, y-at.Y)
		copy(dst.Pix[di:di+src.Dx()*4], content.Pix[si:si+src.Dx()*4])
	}
}

var _ gfx.DerivedImage = (*FilteredImage)(nil)
