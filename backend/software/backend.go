package software

import (
	"fmt"
	"image"
	"sync"

	"github.com/gogpu/compositor"
	"github.com/gogpu/compositor/gfx"
)

// Name is the registry name of the software backend.
const Name = "software"

func init() {
	gfx.RegisterBackend(Name, func() gfx.Backend {
		return New()
	})
}

// Residency mirrors surfaces into device memory. Allocate is called for
// every surface the backend creates.
type Residency interface {
	Allocate(desc gfx.SurfaceDescriptor) (Mirror, error)
}

// Mirror is the device copy of one surface. Upload runs with every
// snapshot, mip levels included; Release runs when the surface is destroyed.
type Mirror interface {
	Upload(img *gfx.RasterImage) error
	Release()
}

// Option configures a Backend.
type Option func(*Backend)

// WithResidency mirrors every surface through r. Surface creation fails
// when r fails.
func WithResidency(r Residency) Option {
	return func(b *Backend) {
		b.residency = r
	}
}

// Backend creates memory-backed surfaces and counts them.
type Backend struct {
	mu          sync.Mutex
	residency   Residency
	allocations int
	live        int
}

// New returns a software backend.
func New(opts ...Option) *Backend {
	b := &Backend{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name returns "software".
func (b *Backend) Name() string { return Name }

// MakeSurface allocates a cleared surface.
func (b *Backend) MakeSurface(desc gfx.SurfaceDescriptor) (gfx.Surface, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	var mirror Mirror
	if b.residency != nil {
		var err error
		mirror, err = b.residency.Allocate(desc)
		if err != nil {
			return nil, fmt.Errorf("software: mirror %q: %w", desc.Label, err)
		}
	}
	pix := image.NewRGBA(image.Rectangle{Max: desc.Size})

	b.mu.Lock()
	b.allocations++
	b.live++
	b.mu.Unlock()

	compositor.Logger().Debug("software: surface allocated",
		"label", desc.Label, "size", desc.Size, "format", desc.Format, "mipmap", desc.Mipmap)

	return &Surface{
		desc:    desc,
		pix:     pix,
		canvas:  NewCanvas(pix),
		backend: b,
		mirror:  mirror,
	}, nil
}

// MakeOverdrawCanvas returns a canvas that counts how often each pixel is
// drawn, and a function returning the counts.
func (b *Backend) MakeOverdrawCanvas(size image.Point) (gfx.Canvas, func() *image.Alpha) {
	counts := image.NewAlpha(image.Rectangle{Max: size})
	c := NewCanvas(image.NewRGBA(image.Rectangle{}))
	c.device = counts.Rect
	c.cur.clipRect = counts.Rect
	c.counts = counts
	return c, func() *image.Alpha { return counts }
}

// Allocations returns the number of surfaces created so far.
func (b *Backend) Allocations() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.allocations
}

// LiveSurfaces returns the number of surfaces not yet destroyed.
func (b *Backend) LiveSurfaces() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.live
}

func (b *Backend) surfaceDestroyed() {
	b.mu.Lock()
	b.live--
	b.mu.Unlock()
}

var (
	_ gfx.Backend         = (*Backend)(nil)
	_ gfx.OverdrawBackend = (*Backend)(nil)
)
