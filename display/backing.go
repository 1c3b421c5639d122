package display

import (
	"fmt"
	"image"
	"log/slog"
	"slices"

	"github.com/gogpu/compositor/gfx"
	"github.com/gogpu/compositor/quad"
)

// backing is the offscreen surface of one render pass.
type backing struct {
	size       image.Point
	mipmap     bool
	colorSpace gfx.ColorSpace
	format     gfx.PixelFormat

	// surface and content are only set by the immediate strategy.
	// content is the snapshot taken when the pass was last finalized.
	surface gfx.Surface
	content gfx.Image
}

func (b *backing) descriptor(id quad.RenderPassID) gfx.SurfaceDescriptor {
	return gfx.SurfaceDescriptor{
		Label:      fmt.Sprintf("render pass %d", id),
		Size:       b.size,
		Format:     b.format,
		ColorSpace: b.colorSpace,
		Mipmap:     b.mipmap,
	}
}

func (b *backing) destroy() {
	if b.surface != nil {
		b.surface.Destroy()
		b.surface = nil
	}
	b.content = nil
}

// backingCache owns the render pass backings and reuses them across
// frames while they still satisfy their pass.
type backingCache struct {
	log func() *slog.Logger
	// allocate creates the surface of a new backing. It is nil when
	// backings live on the other side of a deferred executor.
	allocate func(desc gfx.SurfaceDescriptor) (gfx.Surface, error)

	backings    map[quad.RenderPassID]*backing
	allocations int
}

func newBackingCache(log func() *slog.Logger, allocate func(gfx.SurfaceDescriptor) (gfx.Surface, error)) *backingCache {
	return &backingCache{
		log:      log,
		allocate: allocate,
		backings: make(map[quad.RenderPassID]*backing),
	}
}

// Prune destroys every backing whose pass is not in live, or that no
// longer satisfies its live requirements. It returns the destroyed ids in
// ascending order.
func (c *backingCache) Prune(live map[quad.RenderPassID]quad.RenderPassRequirements) []quad.RenderPassID {
	var removed []quad.RenderPassID
	for id, b := range c.backings {
		req, ok := live[id]
		if ok && req.SatisfiedBy(b.size, b.mipmap) {
			continue
		}
		b.destroy()
		delete(c.backings, id)
		removed = append(removed, id)
	}
	slices.Sort(removed)
	if len(removed) > 0 {
		c.log().Debug("display: backings pruned", "passes", removed)
	}
	return removed
}

// EnsureBacking returns the backing of id, allocating one of exactly
// req.Size when none satisfies req.
func (c *backingCache) EnsureBacking(id quad.RenderPassID, req quad.RenderPassRequirements, cs gfx.ColorSpace, format gfx.PixelFormat) (*backing, error) {
	if b, ok := c.backings[id]; ok && req.SatisfiedBy(b.size, b.mipmap) {
		return b, nil
	}
	if b, ok := c.backings[id]; ok {
		b.destroy()
		delete(c.backings, id)
	}
	b := &backing{size: req.Size, mipmap: req.Mipmap, colorSpace: cs, format: format}
	if c.allocate != nil {
		s, err := c.allocate(b.descriptor(id))
		if err != nil {
			return nil, fmt.Errorf("display: allocate backing for pass %d: %w", id, err)
		}
		b.surface = s
	}
	c.backings[id] = b
	c.allocations++
	c.log().Debug("display: backing allocated",
		"pass", id, "size", b.size, "format", b.format, "mipmap", b.mipmap)
	return b, nil
}

// Lookup returns the backing of id.
func (c *backingCache) Lookup(id quad.RenderPassID) (*backing, bool) {
	b, ok := c.backings[id]
	return b, ok
}

// Len returns the number of live backings.
func (c *backingCache) Len() int { return len(c.backings) }

// Clear destroys every backing.
func (c *backingCache) Clear() {
	for id, b := range c.backings {
		b.destroy()
		delete(c.backings, id)
	}
}
