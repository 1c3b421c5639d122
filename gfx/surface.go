package gfx

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
)

// PixelFormat is the texel format of a surface.
type PixelFormat = gputypes.TextureFormat

// Pixel formats used for render pass backings and the root framebuffer.
const (
	FormatRGBA8  PixelFormat = gputypes.TextureFormatRGBA8Unorm
	FormatBGRA8  PixelFormat = gputypes.TextureFormatBGRA8Unorm
	FormatRGBA16 PixelFormat = gputypes.TextureFormatRGBA16Float
)

// Errors returned by backends.
var (
	// ErrInvalidSize is returned when a surface would have no pixels.
	ErrInvalidSize = errors.New("gfx: invalid surface size")

	// ErrUnsupportedFormat is returned for pixel formats a backend cannot
	// allocate.
	ErrUnsupportedFormat = errors.New("gfx: unsupported pixel format")

	// ErrSurfaceLost is returned when the device backing a surface is gone.
	ErrSurfaceLost = errors.New("gfx: surface lost")
)

// SurfaceDescriptor describes an offscreen surface.
type SurfaceDescriptor struct {
	Label      string
	Size       image.Point
	Format     PixelFormat
	ColorSpace ColorSpace
	Mipmap     bool
}

// Validate checks the size and format.
func (d SurfaceDescriptor) Validate() error {
	if d.Size.X <= 0 || d.Size.Y <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, d.Size.X, d.Size.Y)
	}
	switch d.Format {
	case FormatRGBA8, FormatBGRA8, FormatRGBA16:
		return nil
	}
	return fmt.Errorf("%w: %v", ErrUnsupportedFormat, d.Format)
}

// Surface is a drawable offscreen target.
type Surface interface {
	Canvas() Canvas
	// Snapshot returns the current contents as an image. Later draws do
	// not affect the returned image.
	Snapshot() Image
	Size() image.Point
	Format() PixelFormat
	Mipmapped() bool
	Destroy()
}

// Backend creates surfaces.
type Backend interface {
	Name() string
	MakeSurface(desc SurfaceDescriptor) (Surface, error)
}

// OverdrawBackend is implemented by backends that can count how many
// times each pixel is drawn.
type OverdrawBackend interface {
	// MakeOverdrawCanvas returns a canvas that records the per-pixel draw
	// count of everything drawn into it, and a function returning the
	// counts as an alpha image.
	MakeOverdrawCanvas(size image.Point) (Canvas, func() *image.Alpha)
}
