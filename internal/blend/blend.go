// Package blend implements the compositing operators behind gfx.BlendMode.
//
// All functions work on premultiplied 8-bit channels.
//
// References:
//   - Porter-Duff: "Compositing Digital Images" (1984)
//   - W3C Compositing and Blending Level 1: https://www.w3.org/TR/compositing-1/
package blend

import (
	"image"

	"github.com/gogpu/compositor/gfx"
)

// Func blends a premultiplied source pixel onto a premultiplied destination
// pixel and returns the result.
type Func func(sr, sg, sb, sa, dr, dg, db, da byte) (r, g, b, a byte)

// For returns the blend function for mode. Unknown modes blend source-over.
func For(mode gfx.BlendMode) Func {
	switch mode {
	case gfx.BlendClear:
		return clearAll
	case gfx.BlendSrc:
		return source
	case gfx.BlendDst:
		return destination
	case gfx.BlendSrcOver:
		return sourceOver
	case gfx.BlendDstOver:
		return destinationOver
	case gfx.BlendSrcIn:
		return sourceIn
	case gfx.BlendDstIn:
		return destinationIn
	case gfx.BlendSrcOut:
		return sourceOut
	case gfx.BlendDstOut:
		return destinationOut
	case gfx.BlendSrcATop:
		return sourceAtop
	case gfx.BlendDstATop:
		return destinationAtop
	case gfx.BlendXor:
		return xor
	case gfx.BlendPlus:
		return plus
	case gfx.BlendModulate:
		return modulate
	case gfx.BlendScreen:
		return separable(screen)
	case gfx.BlendOverlay:
		return separable(overlay)
	case gfx.BlendDarken:
		return separable(minByte)
	case gfx.BlendLighten:
		return separable(maxByte)
	case gfx.BlendColorDodge:
		return separable(colorDodge)
	case gfx.BlendColorBurn:
		return separable(colorBurn)
	case gfx.BlendHardLight:
		return separable(hardLight)
	case gfx.BlendSoftLight:
		return separable(softLight)
	case gfx.BlendDifference:
		return separable(difference)
	case gfx.BlendExclusion:
		return separable(exclusion)
	case gfx.BlendMultiply:
		return separable(MulDiv255)
	case gfx.BlendHue:
		return nonSeparable(hue)
	case gfx.BlendSaturation:
		return nonSeparable(saturation)
	case gfx.BlendColor:
		return nonSeparable(colorMode)
	case gfx.BlendLuminosity:
		return nonSeparable(luminosity)
	}
	return sourceOver
}

// Coverage blends src onto dst with partial coverage cov: the result is
// the blended pixel where cov is 255, dst where cov is 0, and a linear
// mix in between.
func Coverage(f Func, s, d [4]byte, cov byte) [4]byte {
	if cov == 0 {
		return d
	}
	r, g, b, a := f(s[0], s[1], s[2], s[3], d[0], d[1], d[2], d[3])
	if cov == 255 {
		return [4]byte{r, g, b, a}
	}
	return [4]byte{
		lerp(d[0], r, cov),
		lerp(d[1], g, cov),
		lerp(d[2], b, cov),
		lerp(d[3], a, cov),
	}
}

// Span blends every pixel of src inside r onto dst with mode, weighted by
// mask. A nil mask is full coverage. src, dst and mask are addressed in the
// same coordinate space.
func Span(dst *image.RGBA, src *image.RGBA, mask *image.Alpha, r image.Rectangle, mode gfx.BlendMode) {
	r = r.Intersect(dst.Rect).Intersect(src.Rect)
	if mask != nil {
		r = r.Intersect(mask.Rect)
	}
	if r.Empty() {
		return
	}
	f := For(mode)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		di := dst.PixOffset(r.Min.X, y)
		si := src.PixOffset(r.Min.X, y)
		mi := -1
		if mask != nil {
			mi = mask.PixOffset(r.Min.X, y)
		}
		for x := r.Min.X; x < r.Max.X; x++ {
			cov := byte(255)
			if mi >= 0 {
				cov = mask.Pix[mi]
				mi++
			}
			if cov != 0 {
				s := [4]byte{src.Pix[si], src.Pix[si+1], src.Pix[si+2], src.Pix[si+3]}
				d := [4]byte{dst.Pix[di], dst.Pix[di+1], dst.Pix[di+2], dst.Pix[di+3]}
				out := Coverage(f, s, d, cov)
				copy(dst.Pix[di:di+4], out[:])
			}
			di += 4
			si += 4
		}
	}
}

// MulDiv255 returns a*b/255 rounded to nearest.
func MulDiv255(a, b byte) byte {
	return byte((uint16(a)*uint16(b) + 127) / 255)
}

func lerp(from, to, t byte) byte {
	return byte((uint16(to)*uint16(t) + uint16(from)*uint16(255-t) + 127) / 255)
}

func addClamp(a, b byte) byte {
	sum := uint16(a) + uint16(b)
	if sum > 255 {
		return 255
	}
	return byte(sum)
}

func minByte(a, b byte) byte {
	if a < b {
		return a
	}
	return b
}

func maxByte(a, b byte) byte {
	if a > b {
		return a
	}
	return b
}
