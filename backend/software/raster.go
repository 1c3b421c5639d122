package software

import (
	"image"
	"image/draw"
	"math"

	"golang.org/x/image/vector"

	"github.com/gogpu/compositor/geom"
)

// rasterize returns the coverage of the closed polygons in polys, limited
// to limit. Polygons are in device pixels; pixel (x, y) spans [x, x+1).
// Without antialiasing coverage is thresholded at one half.
// It returns nil when nothing is covered.
func rasterize(polys [][]geom.Point, limit image.Rectangle, antiAlias bool) *image.Alpha {
	var bb image.Rectangle
	first := true
	for _, pts := range polys {
		if len(pts) < 3 {
			continue
		}
		r := polygonBounds(pts)
		if first {
			bb, first = r, false
		} else {
			bb = bb.Union(r)
		}
	}
	bb = bb.Intersect(limit)
	if first || bb.Empty() {
		return nil
	}

	z := vector.NewRasterizer(bb.Dx(), bb.Dy())
	z.DrawOp = draw.Src
	ox, oy := float64(bb.Min.X), float64(bb.Min.Y)
	for _, pts := range polys {
		if len(pts) < 3 {
			continue
		}
		z.MoveTo(float32(pts[0].X-ox), float32(pts[0].Y-oy))
		for _, p := range pts[1:] {
			z.LineTo(float32(p.X-ox), float32(p.Y-oy))
		}
		z.ClosePath()
	}

	mask := image.NewAlpha(bb)
	z.Draw(mask, bb, image.Opaque, image.Point{})
	if !antiAlias {
		for i, v := range mask.Pix {
			if v >= 128 {
				mask.Pix[i] = 0xff
			} else {
				mask.Pix[i] = 0
			}
		}
	}
	return mask
}

func polygonBounds(pts []geom.Point) image.Rectangle {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return geom.Rect{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}.Enclosing()
}

// strokePolygons expands the closed outline pts into one quad per edge,
// each extended by half the width past both ends so corners are filled.
// Every quad has the same winding, so overlaps accumulate.
func strokePolygons(pts []geom.Point, width float64) [][]geom.Point {
	if width <= 0 {
		width = 1
	}
	h := width / 2
	out := make([][]geom.Point, 0, len(pts))
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		dx, dy := q.X-p.X, q.Y-p.Y
		l := math.Hypot(dx, dy)
		if l == 0 {
			continue
		}
		dx, dy = dx/l*h, dy/l*h
		nx, ny := -dy, dx
		out = append(out, []geom.Point{
			{X: p.X - dx + nx, Y: p.Y - dy + ny},
			{X: q.X + dx + nx, Y: q.Y + dy + ny},
			{X: q.X + dx - nx, Y: q.Y + dy - ny},
			{X: p.X - dx - nx, Y: p.Y - dy - ny},
		})
	}
	return out
}

// intersectMask multiplies the coverage of a by b over their common
// bounds. A nil mask is full coverage over its rect.
func intersectMask(a *image.Alpha, ar image.Rectangle, b *image.Alpha, br image.Rectangle) (*image.Alpha, image.Rectangle) {
	r := ar.Intersect(br)
	if r.Empty() {
		return nil, image.Rectangle{}
	}
	if a == nil && b == nil {
		return nil, r
	}
	out := image.NewAlpha(r)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			v := uint16(0xff)
			if a != nil {
				v = v * uint16(a.Pix[a.PixOffset(x, y)]) / 0xff
			}
			if b != nil {
				v = (v*uint16(b.Pix[b.PixOffset(x, y)]) + 127) / 0xff
			}
			out.Pix[out.PixOffset(x, y)] = uint8(v)
		}
	}
	return out, r
}
