package geom

import "math"

// Quad is a quadrilateral given by its four corners in clockwise order
// starting at the top-left corner of the rect it was built from.
type Quad struct {
	P1, P2, P3, P4 Point
}

// QuadFromRect returns the quad covering r.
func QuadFromRect(r Rect) Quad {
	return Quad{
		P1: Point{X: r.MinX, Y: r.MinY},
		P2: Point{X: r.MaxX, Y: r.MinY},
		P3: Point{X: r.MaxX, Y: r.MaxY},
		P4: Point{X: r.MinX, Y: r.MaxY},
	}
}

// Points returns the four corners.
func (q Quad) Points() []Point {
	return []Point{q.P1, q.P2, q.P3, q.P4}
}

// BoundingBox returns the smallest rect containing all four corners.
func (q Quad) BoundingBox() Rect {
	return Rect{
		MinX: math.Min(math.Min(q.P1.X, q.P2.X), math.Min(q.P3.X, q.P4.X)),
		MinY: math.Min(math.Min(q.P1.Y, q.P2.Y), math.Min(q.P3.Y, q.P4.Y)),
		MaxX: math.Max(math.Max(q.P1.X, q.P2.X), math.Max(q.P3.X, q.P4.X)),
		MaxY: math.Max(math.Max(q.P1.Y, q.P2.Y), math.Max(q.P3.Y, q.P4.Y)),
	}
}

// IsRectilinear reports whether every edge is axis aligned.
func (q Quad) IsRectilinear() bool {
	eq := func(a, b float64) bool { return math.Abs(a-b) < 1e-9 }
	return (eq(q.P1.X, q.P2.X) && eq(q.P2.Y, q.P3.Y) && eq(q.P3.X, q.P4.X) && eq(q.P4.Y, q.P1.Y)) ||
		(eq(q.P1.Y, q.P2.Y) && eq(q.P2.X, q.P3.X) && eq(q.P3.Y, q.P4.Y) && eq(q.P4.X, q.P1.X))
}

// Offset translates every corner.
func (q Quad) Offset(dx, dy float64) Quad {
	return Quad{
		P1: Point{X: q.P1.X + dx, Y: q.P1.Y + dy},
		P2: Point{X: q.P2.X + dx, Y: q.P2.Y + dy},
		P3: Point{X: q.P3.X + dx, Y: q.P3.Y + dy},
		P4: Point{X: q.P4.X + dx, Y: q.P4.Y + dy},
	}
}

// Scale scales every corner.
func (q Quad) Scale(sx, sy float64) Quad {
	return Quad{
		P1: Point{X: q.P1.X * sx, Y: q.P1.Y * sy},
		P2: Point{X: q.P2.X * sx, Y: q.P2.Y * sy},
		P3: Point{X: q.P3.X * sx, Y: q.P3.Y * sy},
		P4: Point{X: q.P4.X * sx, Y: q.P4.Y * sy},
	}
}

// MapQuad transforms the corners of r by m.
func MapQuad(m Matrix, r Rect) Quad {
	q := QuadFromRect(r)
	return Quad{
		P1: m.TransformPoint(q.P1),
		P2: m.TransformPoint(q.P2),
		P3: m.TransformPoint(q.P3),
		P4: m.TransformPoint(q.P4),
	}
}

// InverseMapQuadToLocalSpace maps a target-space quad back through the
// inverse of transform. ok is false when transform is singular.
func InverseMapQuadToLocalSpace(transform Matrix, q Quad) (Quad, bool) {
	inv, ok := transform.Invert()
	if !ok {
		return Quad{}, false
	}
	return Quad{
		P1: inv.TransformPoint(q.P1),
		P2: inv.TransformPoint(q.P2),
		P3: inv.TransformPoint(q.P3),
		P4: inv.TransformPoint(q.P4),
	}, true
}
