package effect

import (
	"image"
	"math"

	"github.com/chewxy/math32"

	"github.com/gogpu/compositor/geom"
	"github.com/gogpu/compositor/gfx"
	"github.com/gogpu/compositor/internal/filter"
)

type stageKind uint8

const (
	stageColor stageKind = iota
	stageBlur
	stageShadow
)

// stage is one pixel pass. Consecutive color operations are folded into a
// single matrix stage.
type stage struct {
	kind   stageKind
	matrix filter.ColorMatrix
	op     Operation
}

// Effect is a filter chain built for content of a given size. It
// implements gfx.ImageFilter and is immutable, so one Effect may serve
// many draws.
type Effect struct {
	ops    Operations
	size   image.Point
	stages []stage
}

// BuildFilter builds the filter for ops applied to content of size. It
// returns nil when ops is empty or every operation is an identity.
func BuildFilter(ops Operations, size image.Point) *Effect {
	e := &Effect{ops: append(Operations(nil), ops...), size: size}
	for _, op := range ops {
		if m, ok := op.colorMatrix(); ok {
			if m.IsIdentity() {
				continue
			}
			if n := len(e.stages); n > 0 && e.stages[n-1].kind == stageColor {
				e.stages[n-1].matrix = e.stages[n-1].matrix.Then(m)
				continue
			}
			e.stages = append(e.stages, stage{kind: stageColor, matrix: m})
			continue
		}
		switch op.Type {
		case OpBlur:
			if op.Amount > 0 {
				e.stages = append(e.stages, stage{kind: stageBlur, op: op})
			}
		case OpDropShadow:
			e.stages = append(e.stages, stage{kind: stageShadow, op: op})
		}
	}
	if len(e.stages) == 0 {
		return nil
	}
	return e
}

// Operations returns the chain the effect was built from.
func (e *Effect) Operations() Operations { return e.ops }

// Size returns the content size the effect was built for.
func (e *Effect) Size() image.Point { return e.size }

// FilterBounds returns the pixel rect affected by content inside r. Blur
// reach is rounded up to whole kernel taps.
func (e *Effect) FilterBounds(r geom.Rect, ctm geom.Matrix) geom.Rect {
	for _, s := range e.stages {
		switch s.kind {
		case stageColor:
			if s.matrix.AffectsTransparent() {
				r = r.Union(geom.MapRect(ctm, geom.FromImageRect(image.Rectangle{Max: e.size})))
			}
		case stageBlur:
			sx, sy := blurSigmas(s.op.Amount, ctm)
			r = r.Outset(float64(filter.KernelRadius(sx)), float64(filter.KernelRadius(sy)))
		case stageShadow:
			dx, dy, sigma := shadowParams(s.op, ctm)
			rad := float64(filter.KernelRadius(sigma))
			r = r.Union(r.Offset(math.Round(dx), math.Round(dy)).Outset(rad, rad))
		}
	}
	return r
}

// Apply runs every stage over src. The result has the bounds of src;
// callers pad src by FilterBounds first when content may spread.
func (e *Effect) Apply(src *image.RGBA, ctm geom.Matrix) *image.RGBA {
	out := src
	for _, s := range e.stages {
		switch s.kind {
		case stageColor:
			out = s.matrix.Apply(out)
		case stageBlur:
			sx, sy := blurSigmas(s.op.Amount, ctm)
			out = filter.Blur(out, sx, sy)
		case stageShadow:
			dx, dy, sigma := shadowParams(s.op, ctm)
			out = filter.DropShadow(out, float32(dx), float32(dy), sigma, s.op.Color)
		}
	}
	return out
}

func blurSigmas(sigma float32, ctm geom.Matrix) (float32, float32) {
	sx, sy := ctm.ScaleComponents()
	return sigma * float32(sx), sigma * float32(sy)
}

// shadowParams maps the shadow offset through ctm. The blur uses the
// larger axis scale so the bounds stay conservative.
func shadowParams(op Operation, ctm geom.Matrix) (dx, dy float64, sigma float32) {
	off := mapVector(ctm, op.Offset)
	sx, sy := blurSigmas(op.Amount, ctm)
	return off.X, off.Y, math32.Max(sx, sy)
}

var _ gfx.ImageFilter = (*Effect)(nil)
