package display

import (
	"image"

	"github.com/gogpu/compositor/cache"
	"github.com/gogpu/compositor/effect"
	"github.com/gogpu/compositor/geom"
	"github.com/gogpu/compositor/gfx"
	"github.com/gogpu/compositor/quad"
)

// filterKey identifies a built filter: the same operations built for
// the same content size yield the same effect.
type filterKey struct {
	ops  string
	size image.Point
}

func newFilterCache(capacity int) *cache.LRU[filterKey, *effect.Effect] {
	return cache.New[filterKey, *effect.Effect](capacity)
}

// filter returns the effect of ops for content of size, or nil when ops
// leave content unchanged.
func (r *Renderer) filter(ops effect.Operations, size image.Point) *effect.Effect {
	if ops.IsEmpty() {
		return nil
	}
	key := filterKey{ops: ops.Fingerprint(), size: size}
	return r.filters.GetOrCreate(key, func() *effect.Effect {
		return effect.BuildFilter(ops, size)
	})
}

// rpdqParams is how one RenderPassQuad samples its pass content.
type rpdqParams struct {
	// filterImage replaces the content when the pass has filters.
	filterImage gfx.Image
	// dstRect is where filterImage lands, in quad space.
	dstRect geom.Rect
	// texCoordRect is the part of filterImage to sample.
	texCoordRect geom.Rect
}

// calculateRPDQParams runs the filters of pass over its content as drawn
// by q. drawRect is the output rect of the pass q is drawn into, which
// bounds the quad when it is not clipped. It returns false when nothing
// of the quad is visible; no pixel work is done in that case.
func (r *Renderer) calculateRPDQParams(content gfx.Image, q *quad.RenderPassQuad, pass *quad.RenderPass, drawRect image.Rectangle, params *rpdqParams) bool {
	size := image.Pt(content.Width(), content.Height())
	f := r.filter(pass.Filters, size)
	if f == nil {
		return true
	}
	sqs := q.Shared

	clip := drawRect
	if sqs.IsClipped {
		clip = sqs.ClipRect
	}
	localClip, ok := geom.InverseMapQuadToLocalSpace(sqs.QuadToTargetTransform, geom.QuadFromRect(geom.FromImageRect(clip)))
	if !ok {
		return false
	}

	local := geom.Scale(q.FiltersScale.X, q.FiltersScale.Y).
		Multiply(geom.Translate(q.FiltersOrigin.X, q.FiltersOrigin.Y))
	dst := pass.Filters.MapRect(q.Rect, local).Intersect(localClip.BoundingBox())
	if dst.IsEmpty() {
		return false
	}

	// Content texel (0, 0) is the origin of the pass output rect.
	ox, oy := float64(pass.OutputRect.Min.X), float64(pass.OutputRect.Min.Y)
	src := q.Rect.Offset(-ox, -oy)
	res, ok := effect.Apply(content, src, dst.Offset(-ox, -oy), q.FiltersScale, q.FiltersOrigin, f)
	if !ok {
		return false
	}
	params.filterImage = res.Image
	params.dstRect = geom.NewRect(
		q.Rect.MinX+float64(res.Offset.X), q.Rect.MinY+float64(res.Offset.Y),
		float64(res.Subset.Dx()), float64(res.Subset.Dy()))
	params.texCoordRect = geom.FromImageRect(res.Subset)
	return true
}
