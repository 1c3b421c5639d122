// Package geom provides the 2D geometry used by the compositor: affine
// matrices, float rectangles, quads and the proportional rect helpers the
// quad drawing routines rely on.
package geom

import (
	"math"

	"golang.org/x/image/math/f64"
)

// Matrix represents a 2D affine transformation matrix.
// It uses a 2x3 matrix in row-major order:
//
//	| A  B  C |
//	| D  E  F |
//
// This represents the transformation:
//
//	x' = A*x + B*y + C
//	y' = D*x + E*y + F
//
// Quad-to-target transforms are flattened to this form before drawing.
type Matrix struct {
	A, B, C float64
	D, E, F float64
}

// Identity returns the identity transformation matrix.
func Identity() Matrix {
	return Matrix{
		A: 1, B: 0, C: 0,
		D: 0, E: 1, F: 0,
	}
}

// Translate creates a translation matrix.
func Translate(x, y float64) Matrix {
	return Matrix{
		A: 1, B: 0, C: x,
		D: 0, E: 1, F: y,
	}
}

// Scale creates a scaling matrix.
func Scale(sx, sy float64) Matrix {
	return Matrix{
		A: sx, B: 0, C: 0,
		D: 0, E: sy, F: 0,
	}
}

// Rotate creates a rotation matrix (angle in radians).
func Rotate(angle float64) Matrix {
	cos := math.Cos(angle)
	sin := math.Sin(angle)
	return Matrix{
		A: cos, B: -sin, C: 0,
		D: sin, E: cos, F: 0,
	}
}

// Multiply multiplies two matrices (m * other).
// The result applies other first, then m.
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		A: m.A*other.A + m.B*other.D,
		B: m.A*other.B + m.B*other.E,
		C: m.A*other.C + m.B*other.F + m.C,
		D: m.D*other.A + m.E*other.D,
		E: m.D*other.B + m.E*other.E,
		F: m.D*other.C + m.E*other.F + m.F,
	}
}

// PostConcat returns other * m: m is applied first, then other.
func (m Matrix) PostConcat(other Matrix) Matrix {
	return other.Multiply(m)
}

// TransformPoint applies the transformation to a point.
func (m Matrix) TransformPoint(p Point) Point {
	return Point{
		X: m.A*p.X + m.B*p.Y + m.C,
		Y: m.D*p.X + m.E*p.Y + m.F,
	}
}

// MapPoints transforms every point in pts.
func (m Matrix) MapPoints(pts []Point) []Point {
	out := make([]Point, len(pts))
	for i, p := range pts {
		out[i] = m.TransformPoint(p)
	}
	return out
}

// Invert returns the inverse matrix and whether m was invertible.
func (m Matrix) Invert() (Matrix, bool) {
	det := m.A*m.E - m.B*m.D
	if math.Abs(det) < 1e-12 {
		return Identity(), false
	}

	invDet := 1.0 / det
	return Matrix{
		A: m.E * invDet,
		B: -m.B * invDet,
		C: (m.B*m.F - m.C*m.E) * invDet,
		D: -m.D * invDet,
		E: m.A * invDet,
		F: (m.C*m.D - m.A*m.F) * invDet,
	}, true
}

// IsIdentity returns true if the matrix is the identity matrix.
func (m Matrix) IsIdentity() bool {
	return m.A == 1 && m.B == 0 && m.C == 0 &&
		m.D == 0 && m.E == 1 && m.F == 0
}

// IsScaleTranslate reports whether m has no rotation or skew.
func (m Matrix) IsScaleTranslate() bool {
	return m.B == 0 && m.D == 0
}

// IsPixelAligned reports whether m is a scale+translate that maps the unit
// quad vertex rect onto integer pixel edges. Such transforms never need
// antialiasing.
func (m Matrix) IsPixelAligned() bool {
	if !m.IsScaleTranslate() {
		return false
	}
	r := MapRect(m, QuadVertexRect())
	return isInt(r.MinX) && isInt(r.MinY) && isInt(r.MaxX) && isInt(r.MaxY)
}

// ScaleComponents returns the x and y scale of the matrix.
func (m Matrix) ScaleComponents() (sx, sy float64) {
	return math.Hypot(m.A, m.D), math.Hypot(m.B, m.E)
}

// Aff3 converts the matrix to the layout used by golang.org/x/image/draw.
func (m Matrix) Aff3() f64.Aff3 {
	return f64.Aff3{m.A, m.B, m.C, m.D, m.E, m.F}
}

// RectToRect returns the matrix that maps src onto dst, scaling each axis
// independently. An empty src yields the identity.
func RectToRect(src, dst Rect) Matrix {
	if src.IsEmpty() {
		return Identity()
	}
	sx := dst.Width() / src.Width()
	sy := dst.Height() / src.Height()
	return Matrix{
		A: sx, B: 0, C: dst.MinX - src.MinX*sx,
		D: 0, E: sy, F: dst.MinY - src.MinY*sy,
	}
}

// QuadRectTransform returns quadToTarget * translate(rect center) *
// scale(rect size): the transform that maps the unit QuadVertexRect onto
// rect in target space.
func QuadRectTransform(quadToTarget Matrix, rect Rect) Matrix {
	cx := rect.MinX + rect.Width()/2
	cy := rect.MinY + rect.Height()/2
	return quadToTarget.Multiply(Translate(cx, cy)).Multiply(Scale(rect.Width(), rect.Height()))
}

func isInt(v float64) bool {
	return math.Abs(v-math.Round(v)) < 1e-6
}
