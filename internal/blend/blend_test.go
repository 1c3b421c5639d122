package blend

import (
	"image"
	"testing"

	"github.com/gogpu/compositor/gfx"
)

func TestMulDiv255(t *testing.T) {
	tests := []struct {
		name string
		a, b byte
		want byte
	}{
		{"zero * zero", 0, 0, 0},
		{"zero * max", 0, 255, 0},
		{"max * max", 255, 255, 255},
		{"half * half", 128, 128, 64},
		{"255 * 128", 255, 128, 128},
		{"1 * 1", 1, 1, 0},
		{"100 * 100", 100, 100, 39},
		{"200 * 200", 200, 200, 157},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MulDiv255(tt.a, tt.b); got != tt.want {
				t.Errorf("MulDiv255(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestFor(t *testing.T) {
	red := [4]byte{255, 0, 0, 255}
	blue := [4]byte{0, 0, 255, 255}
	halfRed := [4]byte{128, 0, 0, 128}
	gray := [4]byte{100, 100, 100, 255}
	transparent := [4]byte{}

	tests := []struct {
		name string
		mode gfx.BlendMode
		s, d [4]byte
		want [4]byte
	}{
		{"clear", gfx.BlendClear, red, blue, transparent},
		{"src", gfx.BlendSrc, halfRed, blue, halfRed},
		{"dst", gfx.BlendDst, red, blue, blue},
		{"src over opaque", gfx.BlendSrcOver, red, blue, red},
		{"src over half", gfx.BlendSrcOver, halfRed, blue, [4]byte{128, 0, 127, 255}},
		{"dst over", gfx.BlendDstOver, red, blue, blue},
		{"src in transparent", gfx.BlendSrcIn, red, transparent, transparent},
		{"dst out opaque", gfx.BlendDstOut, red, blue, transparent},
		{"xor opaque", gfx.BlendXor, red, blue, transparent},
		{"plus", gfx.BlendPlus, red, blue, [4]byte{255, 0, 255, 255}},
		{"multiply by white", gfx.BlendMultiply, [4]byte{255, 255, 255, 255}, gray, gray},
		{"screen with black", gfx.BlendScreen, [4]byte{0, 0, 0, 255}, gray, gray},
		{"difference of equal", gfx.BlendDifference, gray, gray, [4]byte{0, 0, 0, 255}},
		{"darken", gfx.BlendDarken, red, blue, [4]byte{0, 0, 0, 255}},
		{"lighten", gfx.BlendLighten, red, blue, [4]byte{255, 0, 255, 255}},
		{"hue onto transparent", gfx.BlendHue, red, transparent, red},
		{"luminosity of transparent", gfx.BlendLuminosity, transparent, blue, blue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := For(tt.mode)
			r, g, b, a := f(tt.s[0], tt.s[1], tt.s[2], tt.s[3], tt.d[0], tt.d[1], tt.d[2], tt.d[3])
			if got := [4]byte{r, g, b, a}; got != tt.want {
				t.Errorf("For(%v)(%v, %v) = %v, want %v", tt.mode, tt.s, tt.d, got, tt.want)
			}
		})
	}
}

func TestCoverage(t *testing.T) {
	f := For(gfx.BlendSrc)
	s := [4]byte{200, 100, 0, 255}
	d := [4]byte{0, 0, 0, 0}

	if got := Coverage(f, s, d, 0); got != d {
		t.Errorf("Coverage(cov=0) = %v, want %v", got, d)
	}
	if got := Coverage(f, s, d, 255); got != s {
		t.Errorf("Coverage(cov=255) = %v, want %v", got, s)
	}
	want := [4]byte{100, 50, 0, 128}
	if got := Coverage(f, s, d, 128); got != want {
		t.Errorf("Coverage(cov=128) = %v, want %v", got, want)
	}
}

func TestSpan(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	for i := 0; i < len(src.Pix); i += 4 {
		src.Pix[i], src.Pix[i+3] = 255, 255
	}
	mask := image.NewAlpha(image.Rect(0, 0, 2, 1))
	mask.Pix[0] = 255

	Span(dst, src, mask, dst.Rect, gfx.BlendSrcOver)

	if got := dst.RGBAAt(0, 0); got.R != 255 || got.A != 255 {
		t.Errorf("covered pixel = %v, want opaque red", got)
	}
	if got := dst.RGBAAt(1, 0); got.A != 0 {
		t.Errorf("masked pixel = %v, want transparent", got)
	}
}
