package quad

import (
	"image"
	"image/color"

	"github.com/gogpu/compositor/geom"
	"github.com/gogpu/compositor/gfx"
)

// SharedQuadState is the state common to every quad of one layer.
type SharedQuadState struct {
	// QuadToTargetTransform maps quad space to the space of the render
	// pass the quad is drawn into.
	QuadToTargetTransform geom.Matrix
	// QuadLayerRect is the layer bounds in quad space. Quad edges that lie
	// on it are exterior edges, eligible for antialiasing.
	QuadLayerRect        geom.Rect
	VisibleQuadLayerRect geom.Rect
	// ClipRect is in target space and only applies when IsClipped.
	ClipRect         image.Rectangle
	IsClipped        bool
	Opacity          float64
	BlendMode        gfx.BlendMode
	SortingContextID int
}

// NewSharedQuadState returns an unclipped, fully opaque source-over state
// with an identity transform.
func NewSharedQuadState(layer geom.Rect) *SharedQuadState {
	return &SharedQuadState{
		QuadToTargetTransform: geom.Identity(),
		QuadLayerRect:         layer,
		VisibleQuadLayerRect:  layer,
		Opacity:               1,
		BlendMode:             gfx.BlendSrcOver,
	}
}

// Base holds the fields common to every draw quad.
type Base struct {
	// Rect is the quad geometry in quad space.
	Rect geom.Rect
	// VisibleRect is the part of Rect not occluded or clipped. It always
	// lies inside Rect.
	VisibleRect geom.Rect
	// NeedsBlending is set when the quad content is not opaque.
	NeedsBlending bool
	Shared        *SharedQuadState
	// DrawRegion, if set, restricts drawing to an arbitrary quad in quad
	// space, as produced by splitting intersecting 3D layers.
	DrawRegion *geom.Quad
}

// IsTopEdge reports whether the top edge of the quad lies on the layer
// bounds.
func (b *Base) IsTopEdge() bool { return b.Rect.MinY == b.Shared.QuadLayerRect.MinY }

// IsLeftEdge reports whether the left edge of the quad lies on the layer
// bounds.
func (b *Base) IsLeftEdge() bool { return b.Rect.MinX == b.Shared.QuadLayerRect.MinX }

// IsBottomEdge reports whether the bottom edge of the quad lies on the
// layer bounds.
func (b *Base) IsBottomEdge() bool { return b.Rect.MaxY == b.Shared.QuadLayerRect.MaxY }

// IsRightEdge reports whether the right edge of the quad lies on the layer
// bounds.
func (b *Base) IsRightEdge() bool { return b.Rect.MaxX == b.Shared.QuadLayerRect.MaxX }

// AllEdgesExterior reports whether all four edges lie on the layer bounds.
func (b *Base) AllEdgesExterior() bool {
	return b.IsTopEdge() && b.IsLeftEdge() && b.IsBottomEdge() && b.IsRightEdge()
}

// ShouldDrawWithBlending reports whether the quad must be composited with
// the destination instead of replacing it.
func (b *Base) ShouldDrawWithBlending() bool {
	return b.NeedsBlending || b.Shared.Opacity < 1 || b.Shared.BlendMode != gfx.BlendSrcOver
}

// DrawQuad is one draw primitive. The set of implementations is closed.
type DrawQuad interface {
	Material() Material
	// Common returns the shared fields of the quad.
	Common() *Base
	// Resources lists the external resources the quad samples.
	Resources() []ResourceID
	isDrawQuad()
}

// DebugBorderQuad strokes the outline of Rect.
type DebugBorderQuad struct {
	Base
	Color color.NRGBA
	Width float64
}

// SolidColorQuad fills its visible rect with Color.
type SolidColorQuad struct {
	Base
	Color                color.NRGBA
	ForceAntiAliasingOff bool
}

// TextureQuad samples a whole texture resource.
type TextureQuad struct {
	Base
	Resource           ResourceID
	PremultipliedAlpha bool
	// UVTopLeft and UVBottomRight are normalized texture coordinates.
	UVTopLeft     geom.Point
	UVBottomRight geom.Point
	// BackgroundColor is drawn under non-opaque content.
	BackgroundColor color.NRGBA
	// VertexOpacity scales the quad opacity per corner. All zeros means
	// unset; differing values are averaged.
	VertexOpacity   [4]float32
	YFlipped        bool
	NearestNeighbor bool
}

// TileQuad samples part of a tiled texture resource.
type TileQuad struct {
	Base
	Resource ResourceID
	// TexCoordRect is in texels.
	TexCoordRect         geom.Rect
	TextureSize          image.Point
	Swizzle              bool
	NearestNeighbor      bool
	ForceAntiAliasingOff bool
}

// RenderPassQuad draws the output of another render pass.
type RenderPassQuad struct {
	Base
	RenderPassID RenderPassID
	// MaskResource, if valid, modulates the content by the alpha of the
	// mask texture sampled over MaskUVRect.
	MaskResource    ResourceID
	MaskUVRect      geom.Rect
	MaskTextureSize image.Point
	// FiltersScale and FiltersOrigin place the filter parameters of the
	// referenced pass in its content space.
	FiltersScale  geom.Point
	FiltersOrigin geom.Point
	// TexCoordRect is in content texels.
	TexCoordRect         geom.Rect
	ForceAntiAliasingOff bool
}

// YUVVideoQuad samples a planar video frame.
type YUVVideoQuad struct {
	Base
	YPlane ResourceID
	UPlane ResourceID
	VPlane ResourceID
	// APlane is an optional alpha plane.
	APlane ResourceID
	// YATexCoordRect and UVTexCoordRect are normalized coordinates into
	// the luma/alpha and chroma planes.
	YATexCoordRect geom.Rect
	UVTexCoordRect geom.Rect
	YATexSize      image.Point
	UVTexSize      image.Point
	// ColorSpace selects the YUV to RGB matrix.
	ColorSpace         gfx.ColorSpace
	ResourceOffset     float32
	ResourceMultiplier float32
	BitsPerChannel     uint32
}

// SurfaceQuad embeds another compositor frame. It must be resolved into
// render passes before it reaches the compositor.
type SurfaceQuad struct {
	Base
	SurfaceID              string
	DefaultBackgroundColor color.NRGBA
}

// StreamVideoQuad samples an external video stream texture.
type StreamVideoQuad struct {
	Base
	Resource ResourceID
	Matrix   geom.Matrix
}

func (*DebugBorderQuad) Material() Material { return MaterialDebugBorder }
func (*SolidColorQuad) Material() Material  { return MaterialSolidColor }
func (*TextureQuad) Material() Material     { return MaterialTexture }
func (*TileQuad) Material() Material        { return MaterialTile }
func (*RenderPassQuad) Material() Material  { return MaterialRenderPass }
func (*YUVVideoQuad) Material() Material    { return MaterialYUVVideo }
func (*SurfaceQuad) Material() Material     { return MaterialSurface }
func (*StreamVideoQuad) Material() Material { return MaterialStreamVideo }

func (q *DebugBorderQuad) Common() *Base { return &q.Base }
func (q *SolidColorQuad) Common() *Base  { return &q.Base }
func (q *TextureQuad) Common() *Base     { return &q.Base }
func (q *TileQuad) Common() *Base        { return &q.Base }
func (q *RenderPassQuad) Common() *Base  { return &q.Base }
func (q *YUVVideoQuad) Common() *Base    { return &q.Base }
func (q *SurfaceQuad) Common() *Base     { return &q.Base }
func (q *StreamVideoQuad) Common() *Base { return &q.Base }

func (*DebugBorderQuad) Resources() []ResourceID { return nil }
func (*SolidColorQuad) Resources() []ResourceID  { return nil }
func (*SurfaceQuad) Resources() []ResourceID     { return nil }

func (q *TextureQuad) Resources() []ResourceID     { return validIDs(q.Resource) }
func (q *TileQuad) Resources() []ResourceID        { return validIDs(q.Resource) }
func (q *RenderPassQuad) Resources() []ResourceID  { return validIDs(q.MaskResource) }
func (q *StreamVideoQuad) Resources() []ResourceID { return validIDs(q.Resource) }

func (q *YUVVideoQuad) Resources() []ResourceID {
	return validIDs(q.YPlane, q.UPlane, q.VPlane, q.APlane)
}

func validIDs(ids ...ResourceID) []ResourceID {
	var out []ResourceID
	for _, id := range ids {
		if id.IsValid() {
			out = append(out, id)
		}
	}
	return out
}

func (*DebugBorderQuad) isDrawQuad() {}
func (*SolidColorQuad) isDrawQuad()  {}
func (*TextureQuad) isDrawQuad()     {}
func (*TileQuad) isDrawQuad()        {}
func (*RenderPassQuad) isDrawQuad()  {}
func (*YUVVideoQuad) isDrawQuad()    {}
func (*SurfaceQuad) isDrawQuad()     {}
func (*StreamVideoQuad) isDrawQuad() {}
