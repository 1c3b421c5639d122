package gfx

import (
	"image"
	"image/color"

	"github.com/gogpu/compositor/geom"
)

// Canvas is the paint API the compositor issues draws against.
//
// The matrix maps draw coordinates to device pixels. Clips are kept in
// device space and only ever shrink until the matching Restore. Save
// returns the save count before the call so RestoreToCount can unwind to
// it; a fresh canvas has a save count of 1.
type Canvas interface {
	Save() int
	// SaveLayer redirects drawing into a transparent layer that is
	// composited with paint on Restore. bounds, if non-nil, limits the
	// layer in draw coordinates. paint may be nil.
	SaveLayer(bounds *geom.Rect, paint *Paint) int
	// SaveLayerAlpha is SaveLayer with a paint carrying only alpha.
	SaveLayerAlpha(bounds *geom.Rect, alpha uint8) int
	// SaveBackdropLayer opens a layer bounded by bounds whose initial
	// contents are the destination pixels already drawn beneath it, run
	// through backdrop. It must be the first operation to touch that region
	// after the content it filters has been drawn.
	SaveBackdropLayer(bounds geom.Rect, paint *Paint, backdrop ImageFilter) int
	Restore()
	RestoreToCount(count int)
	SaveCount() int

	SetMatrix(m geom.Matrix)
	Concat(m geom.Matrix)
	ResetMatrix()
	TotalMatrix() geom.Matrix

	ClipRect(r geom.Rect, antiAlias bool)
	// ClipPolygon intersects the clip with the closed polygon pts.
	ClipPolygon(pts []geom.Point, antiAlias bool)

	// Clear fills the current clip with c, replacing the destination.
	Clear(c color.NRGBA)
	DrawRect(r geom.Rect, paint *Paint)
	// DrawPolygon fills or strokes the closed polygon pts.
	DrawPolygon(pts []geom.Point, paint *Paint)
	// DrawImageRect draws the src texels of img into dst. Sampling never
	// reads outside src.
	DrawImageRect(img Image, src, dst geom.Rect, paint *Paint)

	// Flush submits pending work. Immediate canvases have none.
	Flush()
	// BaseLayerSize is the size of the device the canvas draws into.
	BaseLayerSize() image.Point
}

// NWayCanvas replays every call on each of its canvases, in order. Queries
// answer from the first canvas.
type NWayCanvas struct {
	canvases []Canvas
	size     image.Point
}

// NewNWayCanvas returns an empty fan-out canvas of the given device size.
func NewNWayCanvas(width, height int) *NWayCanvas {
	return &NWayCanvas{size: image.Pt(width, height)}
}

// AddCanvas appends c to the fan-out list.
func (n *NWayCanvas) AddCanvas(c Canvas) {
	n.canvases = append(n.canvases, c)
}

// Canvases returns the fan-out list.
func (n *NWayCanvas) Canvases() []Canvas {
	return n.canvases
}

func (n *NWayCanvas) Save() int {
	count := n.SaveCount()
	for _, c := range n.canvases {
		c.Save()
	}
	return count
}

func (n *NWayCanvas) SaveLayer(bounds *geom.Rect, paint *Paint) int {
	count := n.SaveCount()
	for _, c := range n.canvases {
		c.SaveLayer(bounds, paint)
	}
	return count
}

func (n *NWayCanvas) SaveLayerAlpha(bounds *geom.Rect, alpha uint8) int {
	count := n.SaveCount()
	for _, c := range n.canvases {
		c.SaveLayerAlpha(bounds, alpha)
	}
	return count
}

func (n *NWayCanvas) SaveBackdropLayer(bounds geom.Rect, paint *Paint, backdrop ImageFilter) int {
	count := n.SaveCount()
	for _, c := range n.canvases {
		c.SaveBackdropLayer(bounds, paint, backdrop)
	}
	return count
}

func (n *NWayCanvas) Restore() {
	for _, c := range n.canvases {
		c.Restore()
	}
}

func (n *NWayCanvas) RestoreToCount(count int) {
	for _, c := range n.canvases {
		c.RestoreToCount(count)
	}
}

func (n *NWayCanvas) SaveCount() int {
	if len(n.canvases) == 0 {
		return 1
	}
	return n.canvases[0].SaveCount()
}

func (n *NWayCanvas) SetMatrix(m geom.Matrix) {
	for _, c := range n.canvases {
		c.SetMatrix(m)
	}
}

func (n *NWayCanvas) Concat(m geom.Matrix) {
	for _, c := range n.canvases {
		c.Concat(m)
	}
}

func (n *NWayCanvas) ResetMatrix() {
	for _, c := range n.canvases {
		c.ResetMatrix()
	}
}

func (n *NWayCanvas) TotalMatrix() geom.Matrix {
	if len(n.canvases) == 0 {
		return geom.Identity()
	}
	return n.canvases[0].TotalMatrix()
}

func (n *NWayCanvas) ClipRect(r geom.Rect, antiAlias bool) {
	for _, c := range n.canvases {
		c.ClipRect(r, antiAlias)
	}
}

func (n *NWayCanvas) ClipPolygon(pts []geom.Point, antiAlias bool) {
	for _, c := range n.canvases {
		c.ClipPolygon(pts, antiAlias)
	}
}

func (n *NWayCanvas) Clear(col color.NRGBA) {
	for _, c := range n.canvases {
		c.Clear(col)
	}
}

func (n *NWayCanvas) DrawRect(r geom.Rect, paint *Paint) {
	for _, c := range n.canvases {
		c.DrawRect(r, paint)
	}
}

func (n *NWayCanvas) DrawPolygon(pts []geom.Point, paint *Paint) {
	for _, c := range n.canvases {
		c.DrawPolygon(pts, paint)
	}
}

func (n *NWayCanvas) DrawImageRect(img Image, src, dst geom.Rect, paint *Paint) {
	for _, c := range n.canvases {
		c.DrawImageRect(img, src, dst, paint)
	}
}

func (n *NWayCanvas) Flush() {
	for _, c := range n.canvases {
		c.Flush()
	}
}

func (n *NWayCanvas) BaseLayerSize() image.Point {
	return n.size
}

var _ Canvas = (*NWayCanvas)(nil)
