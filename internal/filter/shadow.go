package filter

import (
	"image"
	"image/color"

	"github.com/chewxy/math32"

	"github.com/gogpu/compositor/internal/blend"
)

// DropShadow returns src composited over a blurred, colorized and offset
// copy of its own alpha. The result has the bounds of src; callers pad src
// when the shadow should extend past the content.
func DropShadow(src *image.RGBA, dx, dy, sigma float32, c color.NRGBA) *image.RGBA {
	shadow := image.NewRGBA(src.Rect)
	extractAlpha(src, shadow, int(math32.Round(dx)), int(math32.Round(dy)), c)
	if sigma > 0 {
		shadow = Blur(shadow, sigma, sigma)
	}
	compositeOver(shadow, src)
	return shadow
}

// extractAlpha fills dst with c modulated by the alpha of src shifted by
// (ox, oy).
func extractAlpha(src, dst *image.RGBA, ox, oy int, c color.NRGBA) {
	pa := c.A
	pr := blend.MulDiv255(c.R, pa)
	pg := blend.MulDiv255(c.G, pa)
	pb := blend.MulDiv255(c.B, pa)

	b := src.Rect
	for y := b.Min.Y; y < b.Max.Y; y++ {
		sy := y - oy
		if sy < b.Min.Y || sy >= b.Max.Y {
			continue
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			sx := x - ox
			if sx < b.Min.X || sx >= b.Max.X {
				continue
			}
			a := src.Pix[src.PixOffset(sx, sy)+3]
			if a == 0 {
				continue
			}
			i := dst.PixOffset(x, y)
			dst.Pix[i+0] = blend.MulDiv255(pr, a)
			dst.Pix[i+1] = blend.MulDiv255(pg, a)
			dst.Pix[i+2] = blend.MulDiv255(pb, a)
			dst.Pix[i+3] = blend.MulDiv255(pa, a)
		}
	}
}

// compositeOver draws src over dst in place. Both share the same bounds.
func compositeOver(dst, src *image.RGBA) {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	for y := 0; y < h; y++ {
		s := src.Pix[y*src.Stride : y*src.Stride+w*4]
		d := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
		for i := 0; i < len(s); i += 4 {
			inv := 255 - s[i+3]
			d[i+0] = s[i+0] + blend.MulDiv255(d[i+0], inv)
			d[i+1] = s[i+1] + blend.MulDiv255(d[i+1], inv)
			d[i+2] = s[i+2] + blend.MulDiv255(d[i+2], inv)
			d[i+3] = s[i+3] + blend.MulDiv255(d[i+3], inv)
		}
	}
}
