package effect

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/gogpu/compositor/geom"
	"github.com/gogpu/compositor/internal/filter"
)

// OpType identifies a filter operation.
type OpType uint8

const (
	OpGrayscale OpType = iota
	OpSepia
	OpSaturate
	OpHueRotate
	OpInvert
	OpBrightness
	OpContrast
	OpOpacity
	OpBlur
	OpDropShadow
	OpColorMatrix
)

var opTypeNames = [...]string{
	OpGrayscale:   "grayscale",
	OpSepia:       "sepia",
	OpSaturate:    "saturate",
	OpHueRotate:   "hue-rotate",
	OpInvert:      "invert",
	OpBrightness:  "brightness",
	OpContrast:    "contrast",
	OpOpacity:     "opacity",
	OpBlur:        "blur",
	OpDropShadow:  "drop-shadow",
	OpColorMatrix: "color-matrix",
}

func (t OpType) String() string {
	if int(t) < len(opTypeNames) {
		return opTypeNames[t]
	}
	return "unknown"
}

// Operation is one step of a filter chain. Amount is the blur or shadow
// sigma for OpBlur and OpDropShadow, the angle in degrees for OpHueRotate
// and the strength for the other color operations.
type Operation struct {
	Type   OpType
	Amount float32
	// Offset and Color apply to OpDropShadow.
	Offset geom.Point
	Color  color.NRGBA
	// Matrix applies to OpColorMatrix: a row-major 4x5 matrix over
	// unpremultiplied colors in [0, 255].
	Matrix [20]float32
}

func Grayscale(amount float32) Operation  { return Operation{Type: OpGrayscale, Amount: amount} }
func Sepia(amount float32) Operation      { return Operation{Type: OpSepia, Amount: amount} }
func Saturate(amount float32) Operation   { return Operation{Type: OpSaturate, Amount: amount} }
func HueRotate(degrees float32) Operation { return Operation{Type: OpHueRotate, Amount: degrees} }
func Invert(amount float32) Operation     { return Operation{Type: OpInvert, Amount: amount} }
func Brightness(amount float32) Operation { return Operation{Type: OpBrightness, Amount: amount} }
func Contrast(amount float32) Operation   { return Operation{Type: OpContrast, Amount: amount} }
func Opacity(amount float32) Operation    { return Operation{Type: OpOpacity, Amount: amount} }

// Blur is a Gaussian blur with standard deviation sigma.
func Blur(sigma float32) Operation { return Operation{Type: OpBlur, Amount: sigma} }

// DropShadow draws the content over a blurred copy of its alpha, offset by
// (dx, dy) and tinted with c.
func DropShadow(dx, dy float64, sigma float32, c color.NRGBA) Operation {
	return Operation{Type: OpDropShadow, Amount: sigma, Offset: geom.Pt(dx, dy), Color: c}
}

// ColorMatrix applies an arbitrary 4x5 color matrix.
func ColorMatrix(m [20]float32) Operation { return Operation{Type: OpColorMatrix, Matrix: m} }

// MovesPixels reports whether the operation reads neighbouring pixels or
// writes outside its input.
func (op Operation) MovesPixels() bool {
	return op.Type == OpBlur || op.Type == OpDropShadow
}

// colorMatrix returns the matrix of a color operation.
func (op Operation) colorMatrix() (filter.ColorMatrix, bool) {
	switch op.Type {
	case OpGrayscale:
		return filter.Grayscale(op.Amount), true
	case OpSepia:
		return filter.Sepia(op.Amount), true
	case OpSaturate:
		return filter.Saturate(op.Amount), true
	case OpHueRotate:
		return filter.HueRotate(op.Amount), true
	case OpInvert:
		return filter.Invert(op.Amount), true
	case OpBrightness:
		return filter.Brightness(op.Amount), true
	case OpContrast:
		return filter.Contrast(op.Amount), true
	case OpOpacity:
		return filter.Opacity(op.Amount), true
	case OpColorMatrix:
		return filter.ColorMatrix(op.Matrix), true
	}
	return filter.ColorMatrix{}, false
}

// mapRect returns the bounds affected by content inside r, with the
// operation parameters scaled by the linear part of m.
func (op Operation) mapRect(r geom.Rect, m geom.Matrix) geom.Rect {
	switch op.Type {
	case OpBlur:
		sx, sy := spread(op.Amount, m)
		return r.Outset(sx, sy)
	case OpDropShadow:
		sx, sy := spread(op.Amount, m)
		off := mapVector(m, op.Offset)
		return r.Union(r.Offset(off.X, off.Y).Outset(sx, sy))
	}
	return r
}

// spread is the reach of a blur of sigma under m: three standard
// deviations per axis.
func spread(sigma float32, m geom.Matrix) (float64, float64) {
	if sigma <= 0 {
		return 0, 0
	}
	sx, sy := m.ScaleComponents()
	s := float64(sigma) * 3
	return s * sx, s * sy
}

func mapVector(m geom.Matrix, v geom.Point) geom.Point {
	return geom.Point{X: m.A*v.X + m.B*v.Y, Y: m.D*v.X + m.E*v.Y}
}

// Operations is an ordered filter chain. The first operation runs first.
type Operations []Operation

// IsEmpty reports whether the chain does nothing.
func (ops Operations) IsEmpty() bool {
	return len(ops) == 0
}

// HasFilterThatMovesPixels reports whether any operation moves pixels.
func (ops Operations) HasFilterThatMovesPixels() bool {
	for _, op := range ops {
		if op.MovesPixels() {
			return true
		}
	}
	return false
}

// MapRect returns the rect affected by content inside r once every
// operation has run. Parameters are scaled by the linear part of m.
func (ops Operations) MapRect(r geom.Rect, m geom.Matrix) geom.Rect {
	for _, op := range ops {
		r = op.mapRect(r, m)
	}
	return r
}

// Fingerprint returns a string identifying the chain, suitable as a cache
// key. Equal chains have equal fingerprints.
func (ops Operations) Fingerprint() string {
	var sb strings.Builder
	for i, op := range ops {
		if i > 0 {
			sb.WriteByte('|')
		}
		sb.WriteString(op.Type.String())
		switch op.Type {
		case OpDropShadow:
			fmt.Fprintf(&sb, "(%g,%g,%g,%02x%02x%02x%02x)", op.Offset.X, op.Offset.Y, op.Amount,
				op.Color.R, op.Color.G, op.Color.B, op.Color.A)
		case OpColorMatrix:
			fmt.Fprintf(&sb, "%g", op.Matrix)
		default:
			fmt.Fprintf(&sb, "(%g)", op.Amount)
		}
	}
	return sb.String()
}

func (ops Operations) String() string {
	return ops.Fingerprint()
}
