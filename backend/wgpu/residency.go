package wgpu

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math/bits"
	"sync"

	"github.com/chewxy/math32"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/compositor"
	"github.com/gogpu/compositor/backend/software"
	"github.com/gogpu/compositor/gfx"
)

var (
	// ErrNilDevice is returned when a residency is created without a
	// device or queue.
	ErrNilDevice = errors.New("wgpu: nil device or queue")

	// ErrTextureReleased is returned when uploading to a released texture.
	ErrTextureReleased = errors.New("wgpu: texture released")
)

// textureUsage is the usage every backing texture is created with: it is
// rendered to, sampled, and copied both ways.
const textureUsage = gputypes.TextureUsageRenderAttachment |
	gputypes.TextureUsageTextureBinding |
	gputypes.TextureUsageCopySrc |
	gputypes.TextureUsageCopyDst

// Residency keeps a GPU texture for every surface of a software backend.
// It implements software.Residency.
type Residency struct {
	device hal.Device
	queue  hal.Queue
	log    *slog.Logger

	mu        sync.Mutex
	live      int
	allocated int

	shaderOnce sync.Once
	shader     hal.ShaderModule
	shaderErr  error
}

// NewResidency returns a residency allocating on device and uploading
// through queue.
func NewResidency(device hal.Device, queue hal.Queue) (*Residency, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	return &Residency{
		device: device,
		queue:  queue,
		log:    compositor.Logger(),
	}, nil
}

// FromDeviceProvider returns a residency on the device shared by a host
// application.
func FromDeviceProvider(p gpucontext.DeviceProvider) (*Residency, error) {
	if p == nil {
		return nil, ErrNilDevice
	}
	device, ok := p.Device().(hal.Device)
	if !ok {
		return nil, fmt.Errorf("%w: provider device is %T", ErrNilDevice, p.Device())
	}
	queue, ok := p.Queue().(hal.Queue)
	if !ok {
		return nil, fmt.Errorf("%w: provider queue is %T", ErrNilDevice, p.Queue())
	}
	return NewResidency(device, queue)
}

// MipLevels returns the number of levels of a full mip chain for size.
func MipLevels(size image.Point) uint32 {
	return uint32(bits.Len(uint(max(size.X, size.Y, 1))))
}

// Allocate creates the texture and default view for a surface.
func (r *Residency) Allocate(desc gfx.SurfaceDescriptor) (software.Mirror, error) {
	levels := uint32(1)
	if desc.Mipmap {
		levels = MipLevels(desc.Size)
	}
	tex, err := r.device.CreateTexture(&hal.TextureDescriptor{
		Label: desc.Label,
		Size: hal.Extent3D{
			Width:              uint32(desc.Size.X),
			Height:             uint32(desc.Size.Y),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: levels,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        desc.Format,
		Usage:         textureUsage,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create texture %q: %w", desc.Label, err)
	}
	view, err := r.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         desc.Label,
		Format:        desc.Format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: levels,
	})
	if err != nil {
		r.device.DestroyTexture(tex)
		return nil, fmt.Errorf("wgpu: create view %q: %w", desc.Label, err)
	}

	r.mu.Lock()
	r.live++
	r.allocated++
	r.mu.Unlock()

	r.log.Debug("wgpu: texture allocated",
		"label", desc.Label, "size", desc.Size, "format", desc.Format, "levels", levels)

	return &Texture{
		r:      r,
		desc:   desc,
		levels: levels,
		tex:    tex,
		view:   view,
	}, nil
}

// Live returns the number of textures not yet released.
func (r *Residency) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.live
}

// Allocated returns the number of textures created so far.
func (r *Residency) Allocated() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.allocated
}

// Texture is the GPU copy of one surface.
type Texture struct {
	r      *Residency
	desc   gfx.SurfaceDescriptor
	levels uint32

	mu   sync.Mutex
	tex  hal.Texture
	view hal.TextureView
}

// View returns the texture's default view, or nil once released.
func (t *Texture) View() hal.TextureView {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.view
}

// Levels returns the mip level count of the texture.
func (t *Texture) Levels() uint32 { return t.levels }

// Upload writes img to level 0 and its mips to the levels below, as far
// as the texture has them.
func (t *Texture) Upload(img *gfx.RasterImage) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.tex == nil {
		return ErrTextureReleased
	}
	levels := append([]*image.RGBA{img.RGBA()}, img.Mips...)
	for i, pix := range levels {
		if uint32(i) >= t.levels {
			break
		}
		if err := t.writeLevel(uint32(i), pix); err != nil {
			return err
		}
	}
	return nil
}

func (t *Texture) writeLevel(level uint32, pix *image.RGBA) error {
	w, h := pix.Rect.Dx(), pix.Rect.Dy()
	data, bpr, err := encodeTexels(pix, t.desc.Format)
	if err != nil {
		return err
	}
	err = t.r.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: t.tex, MipLevel: level, Aspect: gputypes.TextureAspectAll},
		data,
		&hal.ImageDataLayout{BytesPerRow: bpr, RowsPerImage: uint32(h)},
		&hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
	)
	if err != nil {
		return fmt.Errorf("wgpu: write %q level %d: %w", t.desc.Label, level, err)
	}
	return nil
}

// Release destroys the view and texture. It is safe to call more than once.
func (t *Texture) Release() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.tex == nil {
		return
	}
	t.r.device.DestroyTextureView(t.view)
	t.r.device.DestroyTexture(t.tex)
	t.view, t.tex = nil, nil

	t.r.mu.Lock()
	t.r.live--
	t.r.mu.Unlock()
}

// encodeTexels packs pix tightly in the texel layout of format and returns
// the bytes per row.
func encodeTexels(pix *image.RGBA, format gfx.PixelFormat) ([]byte, uint32, error) {
	w, h := pix.Rect.Dx(), pix.Rect.Dy()
	switch format {
	case gfx.FormatRGBA8:
		out := make([]byte, 0, w*h*4)
		for y := 0; y < h; y++ {
			off := y * pix.Stride
			out = append(out, pix.Pix[off:off+w*4]...)
		}
		return out, uint32(w * 4), nil
	case gfx.FormatBGRA8:
		out := make([]byte, w*h*4)
		for y := 0; y < h; y++ {
			src := pix.Pix[y*pix.Stride:]
			dst := out[y*w*4:]
			for x := 0; x < w*4; x += 4 {
				dst[x], dst[x+1], dst[x+2], dst[x+3] = src[x+2], src[x+1], src[x], src[x+3]
			}
		}
		return out, uint32(w * 4), nil
	case gfx.FormatRGBA16:
		out := make([]byte, w*h*8)
		for y := 0; y < h; y++ {
			src := pix.Pix[y*pix.Stride:]
			dst := out[y*w*8:]
			for i := 0; i < w*4; i++ {
				hf := halfFloat(float32(src[i]) / 255)
				dst[i*2] = byte(hf)
				dst[i*2+1] = byte(hf >> 8)
			}
		}
		return out, uint32(w * 8), nil
	}
	return nil, 0, fmt.Errorf("%w: %v", gfx.ErrUnsupportedFormat, format)
}

// halfFloat converts f to IEEE 754 binary16, truncating the mantissa.
// Values below the smallest normal flush to zero.
func halfFloat(f float32) uint16 {
	b := math32.Float32bits(f)
	sign := uint16(b>>16) & 0x8000
	exp := int(b>>23&0xff) - 127 + 15
	mant := b & 0x7fffff
	switch {
	case exp <= 0:
		return sign
	case exp >= 0x1f:
		return sign | 0x7c00
	}
	return sign | uint16(exp)<<10 | uint16(mant>>13)
}

var (
	_ software.Residency = (*Residency)(nil)
	_ software.Mirror    = (*Texture)(nil)
)
