package gfx

import (
	"image"

	"github.com/gogpu/compositor/geom"
)

// ImageFilter transforms a block of premultiplied pixels, for example a
// blur or a color matrix. Filter parameters are expressed in a local space;
// ctm maps that space to the pixel space of the image being filtered, so a
// blur sigma of 2 under a 3x scale blurs by 6 pixels.
type ImageFilter interface {
	// FilterBounds returns the pixel-space rect affected by content inside
	// r once the filter has run.
	FilterBounds(r geom.Rect, ctm geom.Matrix) geom.Rect

	// Apply filters src and returns the result. The result covers the same
	// bounds as src; src.Rect may start anywhere and content outside it is
	// treated as transparent.
	Apply(src *image.RGBA, ctm geom.Matrix) *image.RGBA
}

type localMatrixFilter struct {
	inner ImageFilter
	local geom.Matrix
}

// WithLocalMatrix returns f evaluated with local applied before the ctm of
// each call.
func WithLocalMatrix(f ImageFilter, local geom.Matrix) ImageFilter {
	if f == nil {
		return nil
	}
	if local.IsIdentity() {
		return f
	}
	return &localMatrixFilter{inner: f, local: local}
}

func (f *localMatrixFilter) FilterBounds(r geom.Rect, ctm geom.Matrix) geom.Rect {
	return f.inner.FilterBounds(r, ctm.Multiply(f.local))
}

func (f *localMatrixFilter) Apply(src *image.RGBA, ctm geom.Matrix) *image.RGBA {
	return f.inner.Apply(src, ctm.Multiply(f.local))
}
