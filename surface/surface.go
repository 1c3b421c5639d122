// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"errors"
	"image"

	"github.com/gogpu/compositor/gfx"
)

// Errors returned by outputs.
var (
	// ErrNoBackbuffer is returned by SwapBuffers after DiscardBackbuffer.
	ErrNoBackbuffer = errors.New("surface: backbuffer discarded")

	// ErrSizeMismatch is returned when a swapped frame does not match the
	// output size.
	ErrSizeMismatch = errors.New("surface: frame size does not match output")
)

// Capabilities describes the optional presentation features of an output.
type Capabilities struct {
	// PartialSwap indicates that SwapBuffers honors Frame.SubBufferRect
	// and only presents that region.
	PartialSwap bool

	// SwapWithBounds indicates that SwapBuffers honors
	// Frame.ContentBounds. It takes precedence over partial swap.
	SwapWithBounds bool

	// AllowEmptySwap indicates that an empty sub-buffer rect may be
	// swapped to present nothing.
	AllowEmptySwap bool

	// SupportsBGRA indicates that 8-bit BGRA textures can be allocated.
	SupportsBGRA bool

	// MaxSize is the largest supported framebuffer (zero = unlimited).
	MaxSize image.Point
}

// Frame is one presented frame.
type Frame struct {
	Size image.Point

	// SubBufferRect, if set, is the only region that changed.
	SubBufferRect *image.Rectangle

	// ContentBounds lists the regions holding content, for outputs that
	// swap with bounds.
	ContentBounds []image.Rectangle

	// Image holds the framebuffer contents.
	Image *image.RGBA
}

// Output is the presentation surface the compositor draws its root pass
// for. Outputs are driven from one goroutine at a time, but the recorded
// backend may swap from its executor goroutine.
type Output interface {
	Capabilities() Capabilities

	// Size returns the framebuffer size in pixels.
	Size() image.Point
	Format() gfx.PixelFormat
	ColorSpace() gfx.ColorSpace

	// ContextID identifies the device context presenting the output. It
	// changes when the context is lost and recreated.
	ContextID() uint64

	// BindFramebuffer marks the start of drawing into the framebuffer.
	BindFramebuffer()

	// SwapBuffers presents f.
	SwapBuffers(f Frame) error

	// EnsureBackbuffer and DiscardBackbuffer allocate and release the
	// backbuffer when the output becomes visible or hidden.
	EnsureBackbuffer()
	DiscardBackbuffer()
}

// Options configures a new output.
type Options struct {
	Size         image.Point
	Format       gfx.PixelFormat
	ColorSpace   gfx.ColorSpace
	Capabilities Capabilities
}

// DefaultOptions returns options for an RGBA sRGB output of the given size
// that supports partial swap.
func DefaultOptions(width, height int) Options {
	return Options{
		Size:         image.Pt(width, height),
		Format:       gfx.FormatRGBA8,
		ColorSpace:   gfx.ColorSpaceSRGB,
		Capabilities: Capabilities{PartialSwap: true},
	}
}
