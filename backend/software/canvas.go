package software

import (
	"image"
	"image/color"

	"github.com/gogpu/compositor"
	"github.com/gogpu/compositor/geom"
	"github.com/gogpu/compositor/gfx"
	"github.com/gogpu/compositor/internal/blend"
)

// Canvas executes paint calls synchronously against an *image.RGBA of
// premultiplied pixels.
type Canvas struct {
	dst    *image.RGBA
	device image.Rectangle

	cur   state
	stack []state

	// counts is non-nil for overdraw canvases, which record per-pixel draw
	// counts instead of pixels.
	counts *image.Alpha

	draws int
}

type state struct {
	matrix   geom.Matrix
	clipRect image.Rectangle
	clipMask *image.Alpha // nil: clipRect is fully covered
	target   *image.RGBA
	layer    *layer // set on the entry pushed by a layer save
}

type layer struct {
	pix    *image.RGBA
	paint  gfx.Paint
	matrix geom.Matrix // matrix at save, for sampling the mask filter
}

// NewCanvas returns a canvas drawing into dst. dst must not be modified
// by others while the canvas is in use.
func NewCanvas(dst *image.RGBA) *Canvas {
	c := &Canvas{dst: dst, device: dst.Rect}
	c.cur = state{matrix: geom.Identity(), clipRect: dst.Rect, target: dst}
	return c
}

// DrawCount returns the number of draw calls that reached the canvas,
// including those that turned out to cover no pixels.
func (c *Canvas) DrawCount() int { return c.draws }

func (c *Canvas) Save() int {
	n := c.SaveCount()
	c.stack = append(c.stack, c.cur)
	return n
}

func (c *Canvas) SaveLayer(bounds *geom.Rect, paint *gfx.Paint) int {
	region := c.cur.clipRect
	if bounds != nil {
		region = region.Intersect(geom.MapRect(c.cur.matrix, *bounds).Enclosing())
	}
	return c.pushLayer(region, paint)
}

func (c *Canvas) SaveLayerAlpha(bounds *geom.Rect, alpha uint8) int {
	p := gfx.NewPaint()
	p.SetAlpha(alpha)
	return c.SaveLayer(bounds, &p)
}

func (c *Canvas) SaveBackdropLayer(bounds geom.Rect, paint *gfx.Paint, backdrop gfx.ImageFilter) int {
	region := c.cur.clipRect.Intersect(geom.MapRect(c.cur.matrix, bounds).Enclosing())
	parent := c.cur.target
	n := c.pushLayer(region, paint)
	if c.counts != nil || region.Empty() {
		return n
	}
	pix := c.cur.target
	if backdrop == nil {
		copyRect(pix, parent, region)
		return n
	}
	in := backdrop.FilterBounds(geom.FromImageRect(region), c.cur.matrix).Enclosing()
	in = in.Union(region).Intersect(parent.Rect)
	src := image.NewRGBA(in)
	copyRect(src, parent, in)
	copyRect(pix, backdrop.Apply(src, c.cur.matrix), region)
	return n
}

func (c *Canvas) pushLayer(region image.Rectangle, paint *gfx.Paint) int {
	n := c.SaveCount()
	if c.counts != nil {
		// Overdraw canvases count the layer contents only.
		c.stack = append(c.stack, c.cur)
		return n
	}
	l := &layer{pix: image.NewRGBA(region), paint: gfx.NewPaint(), matrix: c.cur.matrix}
	if paint != nil {
		l.paint = *paint
	}
	saved := c.cur
	saved.layer = l
	c.stack = append(c.stack, saved)
	c.cur.target = l.pix
	return n
}

func (c *Canvas) Restore() {
	if len(c.stack) == 0 {
		return
	}
	top := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	c.cur = top
	if top.layer != nil {
		c.compositeLayer(top)
	}
}

// compositeLayer draws a closed layer into the target that was current
// when it was opened, under that clip.
func (c *Canvas) compositeLayer(s state) {
	l := s.layer
	r := l.pix.Rect
	if r.Empty() {
		return
	}
	cov, r := intersectMask(nil, r, s.clipMask, s.clipRect)
	if r.Empty() {
		return
	}
	cov = c.applyMaskFilter(cov, r, l.paint.MaskFilter, l.matrix)
	src := l.pix
	if a := l.paint.Alpha(); a != 0xff {
		src = modulate(l.pix, r, a)
	}
	blend.Span(s.target, src, cov, r, l.paint.BlendMode)
}

func (c *Canvas) RestoreToCount(count int) {
	if count < 1 {
		count = 1
	}
	for c.SaveCount() > count {
		c.Restore()
	}
}

func (c *Canvas) SaveCount() int { return len(c.stack) + 1 }

func (c *Canvas) SetMatrix(m geom.Matrix) { c.cur.matrix = m }

func (c *Canvas) Concat(m geom.Matrix) { c.cur.matrix = c.cur.matrix.Multiply(m) }

func (c *Canvas) ResetMatrix() { c.cur.matrix = geom.Identity() }

func (c *Canvas) TotalMatrix() geom.Matrix { return c.cur.matrix }

func (c *Canvas) ClipRect(r geom.Rect, antiAlias bool) {
	m := c.cur.matrix
	if m.IsScaleTranslate() {
		d := geom.MapRect(m, r)
		if !antiAlias || isIntRect(d) {
			c.intersectClip(nil, roundRect(d))
			return
		}
	}
	c.ClipPolygon(geom.QuadFromRect(r).Points(), antiAlias)
}

func (c *Canvas) ClipPolygon(pts []geom.Point, antiAlias bool) {
	cov := rasterize([][]geom.Point{c.cur.matrix.MapPoints(pts)}, c.cur.clipRect, antiAlias)
	if cov == nil {
		c.cur.clipRect = image.Rectangle{}
		c.cur.clipMask = nil
		return
	}
	c.intersectClip(cov, cov.Rect)
}

func (c *Canvas) intersectClip(mask *image.Alpha, r image.Rectangle) {
	c.cur.clipMask, c.cur.clipRect = intersectMask(c.cur.clipMask, c.cur.clipRect, mask, r)
}

func (c *Canvas) Clear(col color.NRGBA) {
	c.draws++
	if c.counts != nil || c.cur.clipRect.Empty() {
		return
	}
	r := c.cur.clipRect
	blend.Span(c.cur.target, uniform(r, gfx.Premultiply(col)), c.cur.clipMask, r, gfx.BlendSrc)
}

func (c *Canvas) DrawRect(r geom.Rect, paint *gfx.Paint) {
	c.DrawPolygon(geom.QuadFromRect(r).Points(), paint)
}

func (c *Canvas) DrawPolygon(pts []geom.Point, paint *gfx.Paint) {
	c.draws++
	paint = orDefault(paint)
	dev := c.cur.matrix.MapPoints(pts)
	polys := [][]geom.Point{dev}
	if paint.Style == gfx.StyleStroke {
		polys = strokePolygons(dev, paint.StrokeWidth)
	}
	cov, r := c.coverage(polys, paint)
	if cov == nil && r.Empty() {
		return
	}
	if c.counts != nil {
		c.count(cov, r)
		return
	}

	var src *image.RGBA
	if sh, ok := paint.Shader.(*gfx.ImageShader); ok {
		src = c.sampleShader(sh, r, paint.FilterQuality)
		if src == nil {
			return
		}
		if a := paint.Alpha(); a != 0xff {
			src = modulate(src, r, a)
		}
	} else {
		src = uniform(r, paint.Premultiplied())
	}
	blend.Span(c.cur.target, src, cov, r, paint.BlendMode)
}

func (c *Canvas) DrawImageRect(img gfx.Image, src, dst geom.Rect, paint *gfx.Paint) {
	c.draws++
	paint = orDefault(paint)
	ri, ok := img.(*gfx.RasterImage)
	if !ok || src.IsEmpty() || dst.IsEmpty() {
		if !ok {
			compositor.Logger().Warn("software: cannot draw unresolved image", "type", typeName(img))
		}
		return
	}
	cov, r := c.coverage([][]geom.Point{c.cur.matrix.MapPoints(geom.QuadFromRect(dst).Points())}, paint)
	if cov == nil && r.Empty() {
		return
	}
	if c.counts != nil {
		c.count(cov, r)
		return
	}
	s2d := c.cur.matrix.Multiply(geom.RectToRect(src, dst))
	pix := sampleImage(ri, src, s2d, r, paint.FilterQuality)
	if pix == nil {
		return
	}
	if a := paint.Alpha(); a != 0xff {
		pix = modulate(pix, r, a)
	}
	blend.Span(c.cur.target, pix, cov, r, paint.BlendMode)
}

// coverage returns the clipped, mask-filtered coverage of polys. A nil
// mask with a non-empty rect is full coverage of that rect.
func (c *Canvas) coverage(polys [][]geom.Point, paint *gfx.Paint) (*image.Alpha, image.Rectangle) {
	if c.cur.clipRect.Empty() {
		return nil, image.Rectangle{}
	}
	var cov *image.Alpha
	var r image.Rectangle
	if rect, ok := alignedRect(polys); ok {
		r = rect
	} else {
		cov = rasterize(polys, c.cur.clipRect, paint.AntiAlias)
		if cov == nil {
			return nil, image.Rectangle{}
		}
		r = cov.Rect
	}
	cov, r = intersectMask(cov, r, c.cur.clipMask, c.cur.clipRect)
	if r.Empty() {
		return nil, r
	}
	return c.applyMaskFilter(cov, r, paint.MaskFilter, c.cur.matrix), r
}

func (c *Canvas) count(cov *image.Alpha, r image.Rectangle) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if cov != nil && cov.Pix[cov.PixOffset(x, y)] == 0 {
				continue
			}
			if !(image.Point{X: x, Y: y}).In(c.counts.Rect) {
				continue
			}
			i := c.counts.PixOffset(x, y)
			if c.counts.Pix[i] < 0xff {
				c.counts.Pix[i]++
			}
		}
	}
}

func (c *Canvas) Flush() {}

func (c *Canvas) BaseLayerSize() image.Point { return c.device.Size() }

var _ gfx.Canvas = (*Canvas)(nil)

// alignedRect reports whether polys is a single axis-aligned rectangle
// with integer edges, and returns it.
func alignedRect(polys [][]geom.Point) (image.Rectangle, bool) {
	if len(polys) != 1 || len(polys[0]) != 4 {
		return image.Rectangle{}, false
	}
	q := geom.Quad{P1: polys[0][0], P2: polys[0][1], P3: polys[0][2], P4: polys[0][3]}
	if !q.IsRectilinear() {
		return image.Rectangle{}, false
	}
	bb := q.BoundingBox()
	if !isIntRect(bb) {
		return image.Rectangle{}, false
	}
	return roundRect(bb), true
}

func orDefault(p *gfx.Paint) *gfx.Paint {
	if p != nil {
		return p
	}
	d := gfx.NewPaint()
	return &d
}
