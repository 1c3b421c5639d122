// Package effect describes filter chains applied to render pass content
// and builds them into image filters.
//
// An [Operations] value is the declarative chain attached to a render
// pass (blur, drop shadow and the color operations). [BuildFilter] turns
// it into an [Effect], a gfx.ImageFilter whose parameters are scaled by
// the matrix it is evaluated under. [Apply] runs an effect over the
// content of a pass and reports where the result lands:
//
//	f := effect.BuildFilter(effect.Operations{effect.Blur(4)}, size)
//	res, ok := effect.Apply(content, srcRect, dstRect, scale, origin, f)
//	if !ok {
//	    return // nothing visible
//	}
package effect
