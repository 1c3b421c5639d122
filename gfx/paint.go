package gfx

import (
	"image/color"

	"github.com/gogpu/compositor/geom"
)

// FilterQuality selects the sampling used when an image is scaled.
type FilterQuality uint8

const (
	// FilterNone samples the nearest texel.
	FilterNone FilterQuality = iota
	// FilterLow samples bilinearly.
	FilterLow
)

// PaintStyle selects fill or stroke geometry.
type PaintStyle uint8

const (
	StyleFill PaintStyle = iota
	StyleStroke
)

// Paint carries the per-draw state: color, alpha, blend mode, antialiasing,
// sampling quality and the optional shader and mask filter.
//
// Color is not premultiplied. For image draws only Color.A is used, as a
// modulating alpha.
type Paint struct {
	Color         color.NRGBA
	BlendMode     BlendMode
	AntiAlias     bool
	FilterQuality FilterQuality
	Style         PaintStyle
	StrokeWidth   float64
	Shader        Shader
	MaskFilter    MaskFilter
}

// NewPaint returns the default paint: opaque black, source-over, no
// antialiasing.
func NewPaint() Paint {
	return Paint{
		Color:     color.NRGBA{A: 0xff},
		BlendMode: BlendSrcOver,
	}
}

// Reset restores the default paint state.
func (p *Paint) Reset() {
	*p = NewPaint()
}

// SetAlpha replaces the alpha of the paint color.
func (p *Paint) SetAlpha(a uint8) {
	p.Color.A = a
}

// Alpha returns the paint alpha.
func (p *Paint) Alpha() uint8 {
	return p.Color.A
}

// SetColor sets the color, keeping nothing of the previous color.
func (p *Paint) SetColor(c color.NRGBA) {
	p.Color = c
}

// Premultiplied returns the paint color premultiplied by its alpha.
func (p *Paint) Premultiplied() color.RGBA {
	return Premultiply(p.Color)
}

// Premultiply converts a straight-alpha color.
func Premultiply(c color.NRGBA) color.RGBA {
	a := uint16(c.A)
	return color.RGBA{
		R: uint8((uint16(c.R)*a + 127) / 255),
		G: uint8((uint16(c.G)*a + 127) / 255),
		B: uint8((uint16(c.B)*a + 127) / 255),
		A: c.A,
	}
}

// AlphaFromOpacity converts an opacity in [0, 1] to an 8-bit alpha,
// truncating like an integer cast of opacity*255.
func AlphaFromOpacity(opacity float64) uint8 {
	switch {
	case opacity <= 0:
		return 0
	case opacity >= 1:
		return 0xff
	}
	return uint8(opacity * 255)
}

// Shader produces source colors for a draw instead of the paint color.
type Shader interface {
	shader()
}

// ImageShader samples Image. LocalMatrix maps image texel space into the
// local space of the draw.
type ImageShader struct {
	Image       Image
	LocalMatrix geom.Matrix
}

func (*ImageShader) shader() {}

// NewImageShader returns a shader sampling img through local.
func NewImageShader(img Image, local geom.Matrix) *ImageShader {
	return &ImageShader{Image: img, LocalMatrix: local}
}

// MaskFilter modulates the coverage of a draw.
type MaskFilter interface {
	maskFilter()
}

// ShaderMaskFilter uses the alpha channel of Shader as coverage.
type ShaderMaskFilter struct {
	Shader *ImageShader
}

func (*ShaderMaskFilter) maskFilter() {}

// NewShaderMaskFilter wraps s as a mask filter. It returns nil for a nil
// shader.
func NewShaderMaskFilter(s *ImageShader) MaskFilter {
	if s == nil {
		return nil
	}
	return &ShaderMaskFilter{Shader: s}
}
