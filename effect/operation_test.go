package effect

import (
	"image/color"
	"testing"

	"github.com/gogpu/compositor/geom"
)

func TestOpTypeString(t *testing.T) {
	tests := []struct {
		op   OpType
		want string
	}{
		{OpBlur, "blur"},
		{OpDropShadow, "drop-shadow"},
		{OpHueRotate, "hue-rotate"},
		{OpType(200), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("OpType(%d).String() = %q, want %q", tt.op, got, tt.want)
		}
	}
}

func TestOperationsMapRect(t *testing.T) {
	r := geom.NewRect(0, 0, 64, 64)
	black := color.NRGBA{A: 0xff}
	tests := []struct {
		name string
		ops  Operations
		m    geom.Matrix
		want geom.Rect
	}{
		{"empty", nil, geom.Identity(), r},
		{"color only", Operations{Grayscale(1), Opacity(0.5)}, geom.Identity(), r},
		{"blur", Operations{Blur(2)}, geom.Identity(), geom.Rect{MinX: -6, MinY: -6, MaxX: 70, MaxY: 70}},
		{"scaled blur", Operations{Blur(2)}, geom.Scale(2, 1), geom.Rect{MinX: -12, MinY: -6, MaxX: 76, MaxY: 70}},
		{"translation ignored", Operations{Blur(1)}, geom.Translate(100, 100), geom.Rect{MinX: -3, MinY: -3, MaxX: 67, MaxY: 67}},
		{"shadow", Operations{DropShadow(10, 0, 0, black)}, geom.Identity(), geom.Rect{MaxX: 74, MaxY: 64}},
		{"scaled shadow", Operations{DropShadow(0, 5, 0, black)}, geom.Scale(1, 2), geom.Rect{MaxX: 64, MaxY: 74}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ops.MapRect(r, tt.m); got != tt.want {
				t.Errorf("MapRect() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestHasFilterThatMovesPixels(t *testing.T) {
	if (Operations{Sepia(1), Invert(1)}).HasFilterThatMovesPixels() {
		t.Error("color chain reported as moving pixels")
	}
	if !(Operations{Sepia(1), Blur(1)}).HasFilterThatMovesPixels() {
		t.Error("blur chain not reported as moving pixels")
	}
	if !(Operations{}).IsEmpty() {
		t.Error("IsEmpty() = false for empty chain")
	}
}

func TestFingerprint(t *testing.T) {
	a := Operations{Blur(2), Grayscale(0.5)}
	b := Operations{Blur(2), Grayscale(0.5)}
	if a.Fingerprint() != b.Fingerprint() {
		t.Errorf("equal chains: %q != %q", a.Fingerprint(), b.Fingerprint())
	}
	different := []Operations{
		{Blur(3), Grayscale(0.5)},
		{Grayscale(0.5), Blur(2)},
		{Blur(2)},
		{Blur(2), Sepia(0.5)},
	}
	for _, d := range different {
		if d.Fingerprint() == a.Fingerprint() {
			t.Errorf("%q collides with %q", d.Fingerprint(), a.Fingerprint())
		}
	}
	s1 := Operations{DropShadow(1, 2, 3, color.NRGBA{A: 0xff})}
	s2 := Operations{DropShadow(1, 2, 3, color.NRGBA{R: 1, A: 0xff})}
	if s1.Fingerprint() == s2.Fingerprint() {
		t.Error("shadow color not part of the fingerprint")
	}
}
