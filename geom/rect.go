package geom

import (
	"image"
	"math"
)

// Point is a 2D point in float coordinates.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Rect represents an axis-aligned rectangle.
// Min is the top-left corner, Max the bottom-right corner.
type Rect struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// NewRect creates a rectangle from position and size.
func NewRect(x, y, width, height float64) Rect {
	return Rect{
		MinX: x,
		MinY: y,
		MaxX: x + width,
		MaxY: y + height,
	}
}

// FromImageRect converts an integer rectangle.
func FromImageRect(r image.Rectangle) Rect {
	return Rect{
		MinX: float64(r.Min.X),
		MinY: float64(r.Min.Y),
		MaxX: float64(r.Max.X),
		MaxY: float64(r.Max.Y),
	}
}

// QuadVertexRect is the unit rect centered on the origin that quad
// transforms map onto the quad's rect.
func QuadVertexRect() Rect {
	return NewRect(-0.5, -0.5, 1, 1)
}

// Width returns the width of the rectangle.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the height of the rectangle.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Origin returns the top-left corner.
func (r Rect) Origin() Point { return Point{X: r.MinX, Y: r.MinY} }

// IsEmpty returns true if the rectangle has zero or negative area.
func (r Rect) IsEmpty() bool {
	return r.MaxX <= r.MinX || r.MaxY <= r.MinY
}

// Contains returns true if the point is inside the rectangle.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.MinX && p.X < r.MaxX && p.Y >= r.MinY && p.Y < r.MaxY
}

// Intersect returns the intersection of r and other.
// Returns an empty rectangle if they don't intersect.
func (r Rect) Intersect(other Rect) Rect {
	result := Rect{
		MinX: math.Max(r.MinX, other.MinX),
		MinY: math.Max(r.MinY, other.MinY),
		MaxX: math.Min(r.MaxX, other.MaxX),
		MaxY: math.Min(r.MaxY, other.MaxY),
	}
	if result.IsEmpty() {
		return Rect{}
	}
	return result
}

// Union returns the smallest rectangle containing both r and other.
// Empty rectangles do not contribute.
func (r Rect) Union(other Rect) Rect {
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}
	return Rect{
		MinX: math.Min(r.MinX, other.MinX),
		MinY: math.Min(r.MinY, other.MinY),
		MaxX: math.Max(r.MaxX, other.MaxX),
		MaxY: math.Max(r.MaxY, other.MaxY),
	}
}

// Offset returns a new rectangle offset by the given amounts.
func (r Rect) Offset(dx, dy float64) Rect {
	return Rect{MinX: r.MinX + dx, MinY: r.MinY + dy, MaxX: r.MaxX + dx, MaxY: r.MaxY + dy}
}

// Outset grows the rectangle by dx, dy on every side.
func (r Rect) Outset(dx, dy float64) Rect {
	return Rect{MinX: r.MinX - dx, MinY: r.MinY - dy, MaxX: r.MaxX + dx, MaxY: r.MaxY + dy}
}

// Scale scales origin and size by sx, sy.
func (r Rect) Scale(sx, sy float64) Rect {
	return Rect{MinX: r.MinX * sx, MinY: r.MinY * sy, MaxX: r.MaxX * sx, MaxY: r.MaxY * sy}
}

// Enclosing returns the smallest integer rectangle containing r.
func (r Rect) Enclosing() image.Rectangle {
	if r.IsEmpty() {
		return image.Rectangle{}
	}
	return image.Rect(
		int(math.Floor(r.MinX+1e-9)), int(math.Floor(r.MinY+1e-9)),
		int(math.Ceil(r.MaxX-1e-9)), int(math.Ceil(r.MaxY-1e-9)),
	)
}

// BoundingRect returns the rect spanned by two corner points.
func BoundingRect(a, b Point) Rect {
	return Rect{
		MinX: math.Min(a.X, b.X),
		MinY: math.Min(a.Y, b.Y),
		MaxX: math.Max(a.X, b.X),
		MaxY: math.Max(a.Y, b.Y),
	}
}

// ScaleRectProportional maps the sub-rect inner of outer onto the
// corresponding sub-rect of input. Quads use it to scale their texture and
// vertex rects down to the visible part of the quad.
func ScaleRectProportional(input, outer, inner Rect) Rect {
	var sx, sy float64
	if outer.Width() != 0 {
		sx = input.Width() / outer.Width()
	}
	if outer.Height() != 0 {
		sy = input.Height() / outer.Height()
	}
	return Rect{
		MinX: input.MinX + (inner.MinX-outer.MinX)*sx,
		MinY: input.MinY + (inner.MinY-outer.MinY)*sy,
		MaxX: input.MaxX + (inner.MaxX-outer.MaxX)*sx,
		MaxY: input.MaxY + (inner.MaxY-outer.MaxY)*sy,
	}
}

// MapRect returns the bounding box of r transformed by m.
func MapRect(m Matrix, r Rect) Rect {
	return MapQuad(m, r).BoundingBox()
}
