package display

import (
	"fmt"
	"image"
	"image/color"

	"github.com/gogpu/compositor/geom"
	"github.com/gogpu/compositor/gfx"
	"github.com/gogpu/compositor/quad"
)

var (
	unsupportedColor      = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	debugUnsupportedColor = color.NRGBA{R: 0xff, B: 0xff, A: 0xff}
)

// drawQuad draws q of pass onto c. The pass origin maps to the canvas
// origin; scissor is the device rect the pass may touch.
func (r *Renderer) drawQuad(c gfx.Canvas, q quad.DrawQuad, pass *quad.RenderPass, scissor image.Rectangle) {
	if sq, ok := q.(*quad.SurfaceQuad); ok {
		panic(fmt.Sprintf("display: surface quad %q reached render pass %d unresolved", sq.SurfaceID, pass.ID))
	}
	base := q.Common()
	sqs := base.Shared
	if base.Rect.IsEmpty() || base.VisibleRect.IsEmpty() {
		return
	}

	ox, oy := float64(pass.OutputRect.Min.X), float64(pass.OutputRect.Min.Y)
	clip := geom.FromImageRect(scissor)
	if sqs.IsClipped {
		clip = clip.Intersect(geom.FromImageRect(sqs.ClipRect).Offset(-ox, -oy))
	}
	target := geom.Translate(-ox, -oy).Multiply(sqs.QuadToTargetTransform)
	if geom.MapRect(target, base.VisibleRect).Intersect(clip).IsEmpty() {
		return
	}
	device := geom.QuadRectTransform(target, base.Rect)

	count := c.Save()
	defer c.RestoreToCount(count)
	c.ResetMatrix()
	c.ClipRect(clip, false)
	c.SetMatrix(device)

	paint := r.quadPaint(q, device)
	if base.DrawRegion != nil {
		c.ClipPolygon(regionToVertexSpace(*base.DrawRegion, base.Rect), paint.AntiAlias)
	}

	switch q := q.(type) {
	case *quad.DebugBorderQuad:
		r.drawDebugBorderQuad(c, q, &paint)
	case *quad.SolidColorQuad:
		r.drawSolidColorQuad(c, q, &paint)
	case *quad.TextureQuad:
		r.drawTextureQuad(c, q, &paint)
	case *quad.TileQuad:
		r.drawTileQuad(c, q, &paint)
	case *quad.YUVVideoQuad:
		r.drawYUVVideoQuad(c, q, &paint)
	case *quad.RenderPassQuad:
		r.drawRenderPassQuad(c, q, pass, &paint)
	default:
		r.drawUnsupportedQuad(c, q, &paint)
	}
}

// quadPaint returns the paint every draw of q starts from.
func (r *Renderer) quadPaint(q quad.DrawQuad, device geom.Matrix) gfx.Paint {
	base := q.Common()
	s := r.opts.settings

	p := gfx.NewPaint()
	p.FilterQuality = gfx.FilterLow
	p.AntiAlias = s.ForceAntialiasing ||
		(!antiAliasingOff(q) && s.AllowAntialiasing && !device.IsPixelAligned() && base.AllEdgesExterior())
	if base.ShouldDrawWithBlending() {
		p.SetAlpha(gfx.AlphaFromOpacity(base.Shared.Opacity))
		p.BlendMode = base.Shared.BlendMode
	} else {
		p.BlendMode = gfx.BlendSrc
	}
	return p
}

func antiAliasingOff(q quad.DrawQuad) bool {
	switch q := q.(type) {
	case *quad.SolidColorQuad:
		return q.ForceAntiAliasingOff
	case *quad.TileQuad:
		return q.ForceAntiAliasingOff
	case *quad.RenderPassQuad:
		return q.ForceAntiAliasingOff
	}
	return false
}

// regionToVertexSpace maps a quad-space region onto the unit vertex rect
// the device matrix is built for.
func regionToVertexSpace(region geom.Quad, rect geom.Rect) []geom.Point {
	pts := region.Points()
	w, h := rect.Width(), rect.Height()
	for i, p := range pts {
		pts[i] = geom.Pt((p.X-rect.MinX)/w-0.5, (p.Y-rect.MinY)/h-0.5)
	}
	return pts
}

// scaleAlpha returns a scaled by opacity, truncated.
func scaleAlpha(opacity float64, a uint8) uint8 {
	switch {
	case opacity <= 0:
		return 0
	case opacity >= 1:
		return a
	}
	return uint8(opacity * float64(a))
}

func visibleVertexRect(base *quad.Base) geom.Rect {
	return geom.ScaleRectProportional(geom.QuadVertexRect(), base.Rect, base.VisibleRect)
}

func (r *Renderer) drawDebugBorderQuad(c gfx.Canvas, q *quad.DebugBorderQuad, paint *gfx.Paint) {
	// Stroke in device space so the width is not scaled with the quad.
	pts := c.TotalMatrix().MapPoints(geom.QuadFromRect(geom.QuadVertexRect()).Points())
	c.ResetMatrix()

	paint.Color = q.Color
	paint.SetAlpha(scaleAlpha(q.Shared.Opacity, q.Color.A))
	paint.Style = gfx.StyleStroke
	paint.StrokeWidth = q.Width
	c.DrawPolygon(pts, paint)
}

func (r *Renderer) drawSolidColorQuad(c gfx.Canvas, q *quad.SolidColorQuad, paint *gfx.Paint) {
	paint.Color = q.Color
	paint.SetAlpha(scaleAlpha(q.Shared.Opacity, q.Color.A))
	if paint.BlendMode == gfx.BlendSrc && paint.Alpha() != 0xff {
		paint.BlendMode = gfx.BlendSrcOver
	}
	c.DrawRect(visibleVertexRect(&q.Base), paint)
}

func (r *Renderer) drawTextureQuad(c gfx.Canvas, q *quad.TextureQuad, paint *gfx.Paint) {
	img, ok := r.images.Image(q.Resource)
	if !ok {
		return
	}
	uv := geom.BoundingRect(q.UVTopLeft, q.UVBottomRight).Scale(float64(img.Width()), float64(img.Height()))
	src := geom.ScaleRectProportional(uv, q.Rect, q.VisibleRect)
	dst := visibleVertexRect(&q.Base)

	if v, ok := uniformVertexOpacity(q.VertexOpacity); ok {
		paint.SetAlpha(scaleAlpha(float64(v), paint.Alpha()))
	}
	if q.NearestNeighbor {
		paint.FilterQuality = gfx.FilterNone
	}
	if q.YFlipped {
		c.Concat(geom.Scale(1, -1))
		dst = geom.Rect{MinX: dst.MinX, MinY: -dst.MaxY, MaxX: dst.MaxX, MaxY: -dst.MinY}
	}

	if q.BackgroundColor.A != 0 && !img.IsOpaque() {
		// The background and the image are faded together.
		if a := paint.Alpha(); a != 0xff {
			c.SaveLayerAlpha(&dst, a)
			paint.SetAlpha(0xff)
		}
		bg := *paint
		bg.Color = q.BackgroundColor
		c.DrawRect(dst, &bg)
		paint.BlendMode = gfx.BlendSrcOver
	}
	c.DrawImageRect(img, src, dst, paint)
}

// uniformVertexOpacity returns the opacity shared by all four vertices.
// All zeros means the vertex opacities were left unset.
func uniformVertexOpacity(v [4]float32) (float32, bool) {
	if v == [4]float32{} {
		return 0, false
	}
	if v[0] != v[1] || v[0] != v[2] || v[0] != v[3] {
		return (v[0] + v[1] + v[2] + v[3]) / 4, true
	}
	return v[0], true
}

func (r *Renderer) drawTileQuad(c gfx.Canvas, q *quad.TileQuad, paint *gfx.Paint) {
	img, ok := r.images.Image(q.Resource)
	if !ok {
		return
	}
	if q.NearestNeighbor {
		paint.FilterQuality = gfx.FilterNone
	}
	src := geom.ScaleRectProportional(q.TexCoordRect, q.Rect, q.VisibleRect)
	c.DrawImageRect(img, src, visibleVertexRect(&q.Base), paint)
}

func (r *Renderer) drawYUVVideoQuad(c gfx.Canvas, q *quad.YUVVideoQuad, paint *gfx.Paint) {
	img, ok := r.images.YUV(q)
	if !ok {
		return
	}
	// The converted image has the size of the Y plane.
	tex := q.YATexCoordRect.Scale(float64(img.Width()), float64(img.Height()))
	src := geom.ScaleRectProportional(tex, q.Rect, q.VisibleRect)
	c.DrawImageRect(img, src, visibleVertexRect(&q.Base), paint)
}

// drawRenderPassQuad draws the content of another pass, through its
// filters, its mask and its backdrop filters.
func (r *Renderer) drawRenderPassQuad(c gfx.Canvas, q *quad.RenderPassQuad, target *quad.RenderPass, paint *gfx.Paint) {
	src, ok := r.passes[q.RenderPassID]
	if !ok || !r.drawn[q.RenderPassID] {
		r.logger().Warn("display: render pass not drawn this frame", "pass", q.RenderPassID, "target", target.ID)
		return
	}
	b, ok := r.backings.Lookup(q.RenderPassID)
	if !ok {
		return
	}
	var content gfx.Image
	if r.out != nil {
		content = r.images.Pass(q.RenderPassID, b.size, b.mipmap)
	} else {
		content = b.content
	}
	if content == nil {
		return
	}

	var params rpdqParams
	if !r.calculateRPDQParams(content, q, src, target.OutputRect, &params) {
		return
	}

	dest := geom.QuadVertexRect()
	img := content
	// fullContent maps onto dest; contentRect onto destVisible.
	fullContent := q.TexCoordRect
	contentRect := geom.ScaleRectProportional(q.TexCoordRect, q.Rect, q.VisibleRect)
	destVisible := visibleVertexRect(&q.Base)
	if params.filterImage != nil {
		img = params.filterImage
		fullContent = params.texCoordRect
		contentRect = params.texCoordRect
		destVisible = geom.ScaleRectProportional(geom.QuadVertexRect(), q.Rect, params.dstRect)
	}

	var mask gfx.MaskFilter
	if q.MaskResource.IsValid() {
		m, ok := r.images.Image(q.MaskResource)
		if !ok {
			return
		}
		maskRect := q.MaskUVRect.Scale(float64(q.MaskTextureSize.X), float64(q.MaskTextureSize.Y))
		mask = gfx.NewShaderMaskFilter(gfx.NewImageShader(m, geom.RectToRect(maskRect, dest)))
	}

	bf := r.filter(src.BackdropFilters, image.Pt(content.Width(), content.Height()))
	if bf == nil {
		paint.MaskFilter = mask
		c.DrawImageRect(img, contentRect, destVisible, paint)
		return
	}

	// The backdrop layer must be the first thing to touch the quad area
	// after the content beneath it: it reads that content back.
	local := geom.RectToRect(fullContent, dest).
		Multiply(geom.Scale(q.FiltersScale.X, q.FiltersScale.Y)).
		Multiply(geom.Translate(q.FiltersOrigin.X, q.FiltersOrigin.Y))
	layer := gfx.NewPaint()
	layer.MaskFilter = mask
	c.ClipRect(dest, paint.AntiAlias)
	c.SaveBackdropLayer(destVisible, &layer, gfx.WithLocalMatrix(bf, local))
	c.DrawImageRect(img, contentRect, destVisible, paint)
	c.Restore()
}

func (r *Renderer) drawUnsupportedQuad(c gfx.Canvas, q quad.DrawQuad, paint *gfx.Paint) {
	r.logger().Warn("display: quad material not supported", "material", q.Material())
	paint.Color = unsupportedColor
	if r.opts.settings.Debug {
		paint.Color = debugUnsupportedColor
	}
	paint.SetAlpha(gfx.AlphaFromOpacity(q.Common().Shared.Opacity))
	c.DrawRect(geom.QuadVertexRect(), paint)
}
