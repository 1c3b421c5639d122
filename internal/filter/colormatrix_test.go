package filter

import (
	"image"
	"image/color"
	"testing"
)

func applyPixel(m ColorMatrix, c color.RGBA) color.RGBA {
	return m.Apply(fill(image.Rect(0, 0, 1, 1), c)).RGBAAt(0, 0)
}

func near(a, b color.RGBA, tol int) bool {
	d := func(x, y uint8) bool {
		v := int(x) - int(y)
		return v <= tol && v >= -tol
	}
	return d(a.R, b.R) && d(a.G, b.G) && d(a.B, b.B) && d(a.A, b.A)
}

func TestColorMatrixApply(t *testing.T) {
	halfWhite := color.RGBA{R: 128, G: 128, B: 128, A: 128}
	tests := []struct {
		name string
		m    ColorMatrix
		in   color.RGBA
		want color.RGBA
	}{
		{"identity", IdentityMatrix(), opaqueRed, opaqueRed},
		{"grayscale", Grayscale(1), opaqueRed, color.RGBA{R: 54, G: 54, B: 54, A: 255}},
		{"grayscale none", Grayscale(0), opaqueRed, opaqueRed},
		{"invert", Invert(1), opaqueRed, color.RGBA{G: 255, B: 255, A: 255}},
		{"opacity", Opacity(0.5), opaqueWhite, color.RGBA{R: 128, G: 128, B: 128, A: 128}},
		{"brightness keeps alpha", Brightness(0), halfWhite, color.RGBA{A: 128}},
		{"transparent stays transparent", Invert(1), color.RGBA{}, color.RGBA{}},
		{"contrast none", Contrast(1), opaqueRed, opaqueRed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := applyPixel(tt.m, tt.in); got != tt.want {
				t.Errorf("Apply(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestColorMatrixThen(t *testing.T) {
	darkThenInvert := Brightness(0.5).Then(Invert(1))
	if got, want := applyPixel(darkThenInvert, opaqueWhite), (color.RGBA{R: 128, G: 128, B: 128, A: 255}); got != want {
		t.Errorf("Brightness.Then(Invert) = %v, want %v", got, want)
	}
	invertThenDark := Invert(1).Then(Brightness(0.5))
	if got, want := applyPixel(invertThenDark, opaqueWhite), (color.RGBA{A: 255}); got != want {
		t.Errorf("Invert.Then(Brightness) = %v, want %v", got, want)
	}
	if !IdentityMatrix().Then(IdentityMatrix()).IsIdentity() {
		t.Error("Identity.Then(Identity) is not the identity")
	}
}

func TestHueRotate(t *testing.T) {
	in := color.RGBA{R: 200, G: 100, B: 50, A: 255}
	if got := applyPixel(HueRotate(0), in); !near(got, in, 1) {
		t.Errorf("HueRotate(0) = %v, want %v", got, in)
	}
	if got := applyPixel(HueRotate(360), in); !near(got, in, 1) {
		t.Errorf("HueRotate(360) = %v, want %v", got, in)
	}
	if got := applyPixel(HueRotate(180), in); near(got, in, 10) {
		t.Errorf("HueRotate(180) = %v, want a different hue", got)
	}
}

func TestSepiaAmount(t *testing.T) {
	if !Sepia(0).IsIdentity() {
		t.Error("Sepia(0) is not the identity")
	}
	if got := Sepia(2); got != Sepia(1) {
		t.Error("Sepia(2) was not clamped to Sepia(1)")
	}
}

func TestAffectsTransparent(t *testing.T) {
	if Invert(1).AffectsTransparent() {
		t.Error("Invert(1).AffectsTransparent() = true")
	}
	m := IdentityMatrix()
	m[19] = 10
	if !m.AffectsTransparent() {
		t.Error("alpha bias AffectsTransparent() = false")
	}
}
