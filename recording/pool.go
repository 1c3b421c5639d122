package recording

import (
	"github.com/gogpu/compositor/geom"
	"github.com/gogpu/compositor/gfx"
)

// ResourcePool stores resources referenced by recording commands.
// Resources are stored in slices indexed by their reference types.
// Paints and polygons are copied on Add so later changes by the caller do
// not leak into the recording.
//
// ResourcePool is not safe for concurrent use.
type ResourcePool struct {
	paints   []gfx.Paint
	images   []gfx.Image
	filters  []gfx.ImageFilter
	polygons [][]geom.Point
}

// NewResourcePool creates an empty resource pool with pre-allocated capacity.
func NewResourcePool() *ResourcePool {
	return &ResourcePool{
		paints:   make([]gfx.Paint, 0, 64),
		images:   make([]gfx.Image, 0, 16),
		filters:  make([]gfx.ImageFilter, 0, 4),
		polygons: make([][]geom.Point, 0, 8),
	}
}

// AddPaint copies paint into the pool. A nil paint yields InvalidRef,
// which plays back as nil.
func (p *ResourcePool) AddPaint(paint *gfx.Paint) PaintRef {
	if paint == nil {
		return PaintRef(InvalidRef)
	}
	p.paints = append(p.paints, *paint)
	// #nosec G115 -- pool size is bounded by available memory, well under uint32 max
	return PaintRef(uint32(len(p.paints) - 1))
}

// GetPaint returns a copy of the paint for ref, or nil if ref is invalid.
func (p *ResourcePool) GetPaint(ref PaintRef) *gfx.Paint {
	if int(ref) >= len(p.paints) {
		return nil
	}
	paint := p.paints[ref]
	return &paint
}

// PaintCount returns the number of paints in the pool.
func (p *ResourcePool) PaintCount() int {
	return len(p.paints)
}

// AddImage adds an image to the pool and returns its reference. Images
// are immutable and stored as is.
func (p *ResourcePool) AddImage(img gfx.Image) ImageRef {
	p.images = append(p.images, img)
	// #nosec G115 -- pool size is bounded by available memory, well under uint32 max
	return ImageRef(uint32(len(p.images) - 1))
}

// GetImage returns the image for ref, or nil if ref is invalid.
func (p *ResourcePool) GetImage(ref ImageRef) gfx.Image {
	if int(ref) >= len(p.images) {
		return nil
	}
	return p.images[ref]
}

// ImageCount returns the number of images in the pool.
func (p *ResourcePool) ImageCount() int {
	return len(p.images)
}

// AddFilter adds an image filter. A nil filter yields InvalidRef.
func (p *ResourcePool) AddFilter(f gfx.ImageFilter) FilterRef {
	if f == nil {
		return FilterRef(InvalidRef)
	}
	p.filters = append(p.filters, f)
	// #nosec G115 -- pool size is bounded by available memory, well under uint32 max
	return FilterRef(uint32(len(p.filters) - 1))
}

// GetFilter returns the filter for ref, or nil if ref is invalid.
func (p *ResourcePool) GetFilter(ref FilterRef) gfx.ImageFilter {
	if int(ref) >= len(p.filters) {
		return nil
	}
	return p.filters[ref]
}

// AddPolygon copies pts into the pool.
func (p *ResourcePool) AddPolygon(pts []geom.Point) PolygonRef {
	p.polygons = append(p.polygons, append([]geom.Point(nil), pts...))
	// #nosec G115 -- pool size is bounded by available memory, well under uint32 max
	return PolygonRef(uint32(len(p.polygons) - 1))
}

// GetPolygon returns the polygon for ref, or nil if ref is invalid.
func (p *ResourcePool) GetPolygon(ref PolygonRef) []geom.Point {
	if int(ref) >= len(p.polygons) {
		return nil
	}
	return p.polygons[ref]
}

// PromiseImages returns every distinct promise image the pool references,
// directly, as the source of a derived image or through a paint shader or
// mask, in first-use order.
func (p *ResourcePool) PromiseImages() []*gfx.PromiseImage {
	seen := make(map[uint64]bool)
	var out []*gfx.PromiseImage
	var add func(img gfx.Image)
	add = func(img gfx.Image) {
		switch v := img.(type) {
		case *gfx.PromiseImage:
			if !seen[v.ID] {
				seen[v.ID] = true
				out = append(out, v)
			}
		case gfx.DerivedImage:
			add(v.Source())
		}
	}
	for _, img := range p.images {
		add(img)
	}
	for i := range p.paints {
		if sh, ok := p.paints[i].Shader.(*gfx.ImageShader); ok {
			add(sh.Image)
		}
		if mf, ok := p.paints[i].MaskFilter.(*gfx.ShaderMaskFilter); ok && mf.Shader != nil {
			add(mf.Shader.Image)
		}
	}
	return out
}

// Clear removes all resources from the pool.
// This does not release the underlying memory; use NewResourcePool for that.
func (p *ResourcePool) Clear() {
	p.paints = p.paints[:0]
	p.images = p.images[:0]
	p.filters = p.filters[:0]
	p.polygons = p.polygons[:0]
}
