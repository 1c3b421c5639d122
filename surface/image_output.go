// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"fmt"
	"image"
	"image/draw"
	"sync"

	"github.com/gogpu/compositor/gfx"
)

// ImageOutput presents frames into an in-memory front buffer.
//
// It stands in for a window swap chain in tests and headless hosts:
//
//	out := surface.NewImageOutput(surface.DefaultOptions(800, 600))
//	// ... draw frames through a display.Renderer ...
//	png.Encode(f, out.Front())
type ImageOutput struct {
	mu         sync.Mutex
	opts       Options
	front      *image.RGBA
	context    uint64
	backbuffer bool
	binds      int
	swaps      int
	last       Frame
}

// NewImageOutput creates an output with a transparent front buffer.
func NewImageOutput(opts Options) *ImageOutput {
	if opts.Size.X <= 0 {
		opts.Size.X = 1
	}
	if opts.Size.Y <= 0 {
		opts.Size.Y = 1
	}
	return &ImageOutput{
		opts:       opts,
		front:      image.NewRGBA(image.Rectangle{Max: opts.Size}),
		context:    1,
		backbuffer: true,
	}
}

func (o *ImageOutput) Capabilities() Capabilities {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.opts.Capabilities
}

func (o *ImageOutput) Size() image.Point {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.opts.Size
}

func (o *ImageOutput) Format() gfx.PixelFormat {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.opts.Format
}

func (o *ImageOutput) ColorSpace() gfx.ColorSpace {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.opts.ColorSpace
}

func (o *ImageOutput) ContextID() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.context
}

func (o *ImageOutput) BindFramebuffer() {
	o.mu.Lock()
	o.binds++
	o.mu.Unlock()
}

// SwapBuffers copies the presented region of f into the front buffer.
// With partial swap the region is SubBufferRect; with swap with bounds it
// is the union of ContentBounds; otherwise it is the whole frame.
func (o *ImageOutput) SwapBuffers(f Frame) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.backbuffer {
		return ErrNoBackbuffer
	}
	if f.Size != o.opts.Size {
		return fmt.Errorf("%w: frame %v, output %v", ErrSizeMismatch, f.Size, o.opts.Size)
	}
	o.swaps++
	o.last = f
	if f.Image == nil {
		return nil
	}

	region := o.front.Rect
	switch caps := o.opts.Capabilities; {
	case caps.SwapWithBounds && f.ContentBounds != nil:
		region = image.Rectangle{}
		for _, r := range f.ContentBounds {
			region = region.Union(r)
		}
	case f.SubBufferRect != nil && (caps.PartialSwap || caps.AllowEmptySwap):
		region = *f.SubBufferRect
	}
	region = region.Intersect(o.front.Rect).Intersect(f.Image.Rect)
	if !region.Empty() {
		draw.Draw(o.front, region, f.Image, region.Min, draw.Src)
	}
	return nil
}

func (o *ImageOutput) EnsureBackbuffer() {
	o.mu.Lock()
	o.backbuffer = true
	o.mu.Unlock()
}

func (o *ImageOutput) DiscardBackbuffer() {
	o.mu.Lock()
	o.backbuffer = false
	o.mu.Unlock()
}

// Reshape resizes the output. The front buffer is cleared.
func (o *ImageOutput) Reshape(size image.Point, cs gfx.ColorSpace) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.opts.Size = size
	o.opts.ColorSpace = cs
	o.front = image.NewRGBA(image.Rectangle{Max: size})
}

// LoseContext simulates losing and recreating the presenting context.
func (o *ImageOutput) LoseContext() {
	o.mu.Lock()
	o.context++
	o.mu.Unlock()
}

// Front returns a copy of the front buffer.
func (o *ImageOutput) Front() *image.RGBA {
	o.mu.Lock()
	defer o.mu.Unlock()
	return gfx.CloneRGBA(o.front)
}

// LastFrame returns the most recently swapped frame.
func (o *ImageOutput) LastFrame() Frame {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.last
}

// Swaps returns the number of successful swaps.
func (o *ImageOutput) Swaps() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.swaps
}

// Binds returns the number of BindFramebuffer calls.
func (o *ImageOutput) Binds() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.binds
}

// HasBackbuffer reports whether the backbuffer is allocated.
func (o *ImageOutput) HasBackbuffer() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.backbuffer
}

var _ Output = (*ImageOutput)(nil)
