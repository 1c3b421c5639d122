package software

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/compositor"
	"github.com/gogpu/compositor/geom"
	"github.com/gogpu/compositor/gfx"
	"github.com/gogpu/compositor/internal/blend"
)

// sampleImage resamples the src texels of img into a new image covering
// r, with s2d mapping texel space to device space. Texels outside src are
// never read. When the image carries mips and the draw minifies by at
// least half, the closest smaller level is sampled instead.
func sampleImage(img *gfx.RasterImage, src geom.Rect, s2d geom.Matrix, r image.Rectangle, q gfx.FilterQuality) *image.RGBA {
	pix := img.RGBA()
	if q != gfx.FilterNone && len(img.Mips) > 0 {
		sx, sy := s2d.ScaleComponents()
		scale := math.Min(sx, sy)
		level := 0
		for level < len(img.Mips) && scale <= 0.5 {
			level++
			scale *= 2
		}
		if level > 0 {
			mip := img.Mips[level-1]
			fx := float64(pix.Rect.Dx()) / float64(mip.Rect.Dx())
			fy := float64(pix.Rect.Dy()) / float64(mip.Rect.Dy())
			s2d = s2d.Multiply(geom.Scale(fx, fy))
			src = src.Scale(1/fx, 1/fy)
			pix = mip
		}
	}
	sr := src.Enclosing().Intersect(pix.Rect)
	if sr.Empty() {
		return nil
	}
	out := image.NewRGBA(r)
	interpolator(q).Transform(out, s2d.Aff3(), pix, sr, xdraw.Src, nil)
	return out
}

func interpolator(q gfx.FilterQuality) xdraw.Transformer {
	if q == gfx.FilterNone {
		return xdraw.NearestNeighbor
	}
	return xdraw.BiLinear
}

// sampleShader evaluates an image shader over r under the current matrix.
func (c *Canvas) sampleShader(sh *gfx.ImageShader, r image.Rectangle, q gfx.FilterQuality) *image.RGBA {
	ri, ok := sh.Image.(*gfx.RasterImage)
	if !ok {
		compositor.Logger().Warn("software: cannot sample unresolved shader image", "type", typeName(sh.Image))
		return nil
	}
	s2d := c.cur.matrix.Multiply(sh.LocalMatrix)
	return sampleImage(ri, geom.FromImageRect(ri.Bounds()), s2d, r, q)
}

// applyMaskFilter multiplies cov by the alpha of the mask filter's shader,
// evaluated under m. The returned mask always covers r.
func (c *Canvas) applyMaskFilter(cov *image.Alpha, r image.Rectangle, mf gfx.MaskFilter, m geom.Matrix) *image.Alpha {
	smf, ok := mf.(*gfx.ShaderMaskFilter)
	if !ok || smf == nil || smf.Shader == nil {
		return cov
	}
	ri, ok := smf.Shader.Image.(*gfx.RasterImage)
	if !ok {
		compositor.Logger().Warn("software: cannot sample unresolved mask image", "type", typeName(smf.Shader.Image))
		return cov
	}
	s2d := m.Multiply(smf.Shader.LocalMatrix)
	mask := sampleImage(ri, geom.FromImageRect(ri.Bounds()), s2d, r, gfx.FilterLow)
	out := image.NewAlpha(r)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			var a byte
			if mask != nil {
				a = mask.Pix[mask.PixOffset(x, y)+3]
			}
			if cov != nil {
				a = blend.MulDiv255(a, cov.Pix[cov.PixOffset(x, y)])
			}
			out.Pix[out.PixOffset(x, y)] = a
		}
	}
	return out
}

// uniform returns an image of r filled with the premultiplied color c.
func uniform(r image.Rectangle, c color.RGBA) *image.RGBA {
	out := image.NewRGBA(r)
	if c == (color.RGBA{}) {
		return out
	}
	for i := 0; i < len(out.Pix); i += 4 {
		out.Pix[i], out.Pix[i+1], out.Pix[i+2], out.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return out
}

// modulate returns the pixels of src inside r scaled by alpha.
func modulate(src *image.RGBA, r image.Rectangle, alpha uint8) *image.RGBA {
	out := image.NewRGBA(r)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		si := src.PixOffset(r.Min.X, y)
		di := out.PixOffset(r.Min.X, y)
		for n := 0; n < r.Dx()*4; n++ {
			out.Pix[di+n] = blend.MulDiv255(src.Pix[si+n], alpha)
		}
	}
	return out
}

func copyRect(dst, src *image.RGBA, r image.Rectangle) {
	r = r.Intersect(dst.Rect).Intersect(src.Rect)
	if r.Empty() {
		return
	}
	draw.Draw(dst, r, src, r.Min, draw.Src)
}

func roundRect(r geom.Rect) image.Rectangle {
	return image.Rect(
		int(math.Round(r.MinX)), int(math.Round(r.MinY)),
		int(math.Round(r.MaxX)), int(math.Round(r.MaxY)),
	)
}

func isIntRect(r geom.Rect) bool {
	near := func(v float64) bool { return math.Abs(v-math.Round(v)) < 1e-6 }
	return near(r.MinX) && near(r.MinY) && near(r.MaxX) && near(r.MaxY)
}

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}
