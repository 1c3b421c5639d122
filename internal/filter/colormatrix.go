package filter

import (
	"image"

	"github.com/chewxy/math32"

	"github.com/gogpu/compositor/internal/parallel"
)

// ColorMatrix is a 4x5 color transformation in row-major order:
//
//	[R']   [m0  m1  m2  m3  m4 ]   [R]
//	[G'] = [m5  m6  m7  m8  m9 ] * [G]
//	[B']   [m10 m11 m12 m13 m14]   [B]
//	[A']   [m15 m16 m17 m18 m19]   [A]
//	                               [1]
//
// Colors are unpremultiplied and in [0, 255] while the matrix applies, so
// the fifth column is a bias in byte units.
type ColorMatrix [20]float32

// Rec. 709 luminance weights.
const (
	lumR = 0.2126
	lumG = 0.7152
	lumB = 0.0722
)

// IdentityMatrix returns the matrix that leaves colors unchanged.
func IdentityMatrix() ColorMatrix {
	return ColorMatrix{
		1, 0, 0, 0, 0,
		0, 1, 0, 0, 0,
		0, 0, 1, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Brightness scales the color channels: 0 is black, 1 unchanged.
func Brightness(amount float32) ColorMatrix {
	return ColorMatrix{
		amount, 0, 0, 0, 0,
		0, amount, 0, 0, 0,
		0, 0, amount, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Contrast scales the color channels around mid gray: 0 is gray, 1
// unchanged.
func Contrast(amount float32) ColorMatrix {
	offset := 127.5 * (1 - amount)
	return ColorMatrix{
		amount, 0, 0, 0, offset,
		0, amount, 0, 0, offset,
		0, 0, amount, 0, offset,
		0, 0, 0, 1, 0,
	}
}

// Saturate blends between the luminance (0) and the original color (1).
// Values above 1 oversaturate.
func Saturate(amount float32) ColorMatrix {
	inv := 1 - amount
	return ColorMatrix{
		lumR*inv + amount, lumG * inv, lumB * inv, 0, 0,
		lumR * inv, lumG*inv + amount, lumB * inv, 0, 0,
		lumR * inv, lumG * inv, lumB*inv + amount, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Grayscale converts toward luminance by amount in [0, 1].
func Grayscale(amount float32) ColorMatrix {
	return Saturate(1 - clampUnit(amount))
}

// Sepia tones the image by amount in [0, 1].
func Sepia(amount float32) ColorMatrix {
	sepia := ColorMatrix{
		0.393, 0.769, 0.189, 0, 0,
		0.349, 0.686, 0.168, 0, 0,
		0.272, 0.534, 0.131, 0, 0,
		0, 0, 0, 1, 0,
	}
	return lerpMatrix(IdentityMatrix(), sepia, clampUnit(amount))
}

// Invert inverts the color channels by amount in [0, 1].
func Invert(amount float32) ColorMatrix {
	inverted := ColorMatrix{
		-1, 0, 0, 0, 255,
		0, -1, 0, 0, 255,
		0, 0, -1, 0, 255,
		0, 0, 0, 1, 0,
	}
	return lerpMatrix(IdentityMatrix(), inverted, clampUnit(amount))
}

// HueRotate rotates hue by degrees.
func HueRotate(degrees float32) ColorMatrix {
	rad := degrees * math32.Pi / 180
	cos, sin := math32.Cos(rad), math32.Sin(rad)
	const (
		r = 0.213
		g = 0.715
		b = 0.072
	)
	return ColorMatrix{
		r + cos*(1-r) + sin*(-r), g + cos*(-g) + sin*(-g), b + cos*(-b) + sin*(1-b), 0, 0,
		r + cos*(-r) + sin*(0.143), g + cos*(1-g) + sin*(0.140), b + cos*(-b) + sin*(-0.283), 0, 0,
		r + cos*(-r) + sin*(-(1 - r)), g + cos*(-g) + sin*(g), b + cos*(1-b) + sin*(b), 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Opacity multiplies alpha by amount in [0, 1].
func Opacity(amount float32) ColorMatrix {
	return ColorMatrix{
		1, 0, 0, 0, 0,
		0, 1, 0, 0, 0,
		0, 0, 1, 0, 0,
		0, 0, 0, clampUnit(amount), 0,
	}
}

// IsIdentity reports whether m leaves every color unchanged.
func (m ColorMatrix) IsIdentity() bool {
	return m == IdentityMatrix()
}

// AffectsTransparent reports whether m produces visible output from
// transparent black, which would make its output unbounded.
func (m ColorMatrix) AffectsTransparent() bool {
	return m[19] > 0
}

// Then returns the matrix that applies m first and next second.
func (m ColorMatrix) Then(next ColorMatrix) ColorMatrix {
	var out ColorMatrix
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += next[row*5+k] * m[k*5+col]
			}
			out[row*5+col] = sum
		}
		out[row*5+4] = next[row*5+0]*m[4] + next[row*5+1]*m[9] +
			next[row*5+2]*m[14] + next[row*5+3]*m[19] + next[row*5+4]
	}
	return out
}

// Apply returns a copy of src with m applied to every pixel.
func (m ColorMatrix) Apply(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Rect)
	if m.IsIdentity() {
		copyRows(dst, src)
		return dst
	}
	w, h := src.Rect.Dx(), src.Rect.Dy()
	parallel.Rows(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			in := src.Pix[y*src.Stride : y*src.Stride+w*4]
			out := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
			for i := 0; i < len(in); i += 4 {
				out[i+0], out[i+1], out[i+2], out[i+3] = m.transform(in[i+0], in[i+1], in[i+2], in[i+3])
			}
		}
	})
	return dst
}

// transform maps one premultiplied pixel.
func (m *ColorMatrix) transform(pr, pg, pb, pa uint8) (r, g, b, a uint8) {
	fa := float32(pa)
	var fr, fg, fb float32
	if pa > 0 {
		fr = float32(pr) * 255 / fa
		fg = float32(pg) * 255 / fa
		fb = float32(pb) * 255 / fa
	}

	nr := m[0]*fr + m[1]*fg + m[2]*fb + m[3]*fa + m[4]
	ng := m[5]*fr + m[6]*fg + m[7]*fb + m[8]*fa + m[9]
	nb := m[10]*fr + m[11]*fg + m[12]*fb + m[13]*fa + m[14]
	na := m[15]*fr + m[16]*fg + m[17]*fb + m[18]*fa + m[19]

	na = math32.Min(math32.Max(na, 0), 255)
	scale := na / 255
	return clampUint8(math32.Min(math32.Max(nr, 0), 255) * scale),
		clampUint8(math32.Min(math32.Max(ng, 0), 255) * scale),
		clampUint8(math32.Min(math32.Max(nb, 0), 255) * scale),
		clampUint8(na)
}

func lerpMatrix(a, b ColorMatrix, t float32) ColorMatrix {
	var out ColorMatrix
	for i := range out {
		out[i] = a[i] + (b[i]-a[i])*t
	}
	return out
}

func clampUnit(v float32) float32 {
	return math32.Min(math32.Max(v, 0), 1)
}
