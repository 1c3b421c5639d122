package wgpu

import (
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/chewxy/math32"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/compositor/backend/software"
	"github.com/gogpu/compositor/gfx"
	"github.com/gogpu/compositor/resource"
)

type textureWrite struct {
	level uint32
	data  []byte
	bpr   uint32
	size  hal.Extent3D
}

// recordingQueue captures texture writes on top of the noop queue.
type recordingQueue struct {
	hal.Queue
	writes []textureWrite
}

func (q *recordingQueue) WriteTexture(dst *hal.ImageCopyTexture, data []byte, layout *hal.ImageDataLayout, size *hal.Extent3D) error {
	q.writes = append(q.writes, textureWrite{
		level: dst.MipLevel,
		data:  append([]byte(nil), data...),
		bpr:   layout.BytesPerRow,
		size:  *size,
	})
	return nil
}

func openNoop(t *testing.T) (hal.Device, *recordingQueue) {
	t.Helper()
	inst, err := noop.API{}.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance() error = %v", err)
	}
	adapters := inst.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		t.Fatal("no noop adapter")
	}
	od, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		od.Device.Destroy()
		inst.Destroy()
	})
	return od.Device, &recordingQueue{Queue: od.Queue}
}

func newTestResidency(t *testing.T) (*Residency, *recordingQueue) {
	t.Helper()
	device, queue := openNoop(t)
	r, err := NewResidency(device, queue)
	if err != nil {
		t.Fatalf("NewResidency() error = %v", err)
	}
	return r, queue
}

func TestNewResidencyNil(t *testing.T) {
	if _, err := NewResidency(nil, nil); !errors.Is(err, ErrNilDevice) {
		t.Errorf("NewResidency(nil) = %v, want ErrNilDevice", err)
	}
	if _, err := FromDeviceProvider(nil); !errors.Is(err, ErrNilDevice) {
		t.Errorf("FromDeviceProvider(nil) = %v, want ErrNilDevice", err)
	}
	if _, err := FromDeviceProvider(provider{device: "not a device"}); !errors.Is(err, ErrNilDevice) {
		t.Errorf("FromDeviceProvider(bad device) = %v, want ErrNilDevice", err)
	}
}

type provider struct {
	device gpucontext.Device
	queue  gpucontext.Queue
}

func (p provider) Device() gpucontext.Device             { return p.device }
func (p provider) Queue() gpucontext.Queue               { return p.queue }
func (p provider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatBGRA8Unorm }
func (p provider) Adapter() gpucontext.Adapter           { return nil }
func (p provider) AdapterInfo() gpucontext.AdapterInfo   { return gpucontext.AdapterInfo{} }

func TestFromDeviceProvider(t *testing.T) {
	device, queue := openNoop(t)
	r, err := FromDeviceProvider(provider{device: device, queue: queue})
	if err != nil {
		t.Fatalf("FromDeviceProvider() error = %v", err)
	}
	if _, err := r.Allocate(gfx.SurfaceDescriptor{Size: image.Pt(2, 2), Format: gfx.FormatRGBA8}); err != nil {
		t.Errorf("Allocate() error = %v", err)
	}
}

func TestMipLevels(t *testing.T) {
	tests := []struct {
		size image.Point
		want uint32
	}{
		{image.Pt(1, 1), 1},
		{image.Pt(2, 1), 2},
		{image.Pt(16, 8), 5},
		{image.Pt(17, 3), 5},
		{image.Pt(0, 0), 1},
	}
	for _, tt := range tests {
		if got := MipLevels(tt.size); got != tt.want {
			t.Errorf("MipLevels(%v) = %d, want %d", tt.size, got, tt.want)
		}
	}
}

func TestResidencyLifetime(t *testing.T) {
	r, _ := newTestResidency(t)
	b := software.New(software.WithResidency(r))

	s, err := b.MakeSurface(gfx.SurfaceDescriptor{Label: "pass", Size: image.Pt(8, 4), Format: gfx.FormatRGBA8, Mipmap: true})
	if err != nil {
		t.Fatalf("MakeSurface() error = %v", err)
	}
	if r.Live() != 1 || r.Allocated() != 1 {
		t.Errorf("Live() = %d, Allocated() = %d, want 1, 1", r.Live(), r.Allocated())
	}
	s.Destroy()
	s.Destroy()
	if r.Live() != 0 {
		t.Errorf("Live() after Destroy = %d, want 0", r.Live())
	}
	if r.Allocated() != 1 {
		t.Errorf("Allocated() after Destroy = %d, want 1", r.Allocated())
	}
}

func TestTextureUploadFormats(t *testing.T) {
	px := color.RGBA{R: 255, G: 128, B: 0, A: 255}
	tests := []struct {
		name   string
		format gfx.PixelFormat
		bpr    uint32
		first  []byte
	}{
		{"rgba8", gfx.FormatRGBA8, 8, []byte{255, 128, 0, 255}},
		{"bgra8", gfx.FormatBGRA8, 8, []byte{0, 128, 255, 255}},
		{"rgba16f", gfx.FormatRGBA16, 16, []byte{0x00, 0x3c, 0x04, 0x38, 0x00, 0x00, 0x00, 0x3c}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, q := newTestResidency(t)
			m, err := r.Allocate(gfx.SurfaceDescriptor{Size: image.Pt(2, 3), Format: tt.format})
			if err != nil {
				t.Fatalf("Allocate() error = %v", err)
			}
			pix := image.NewRGBA(image.Rect(0, 0, 2, 3))
			for y := 0; y < 3; y++ {
				for x := 0; x < 2; x++ {
					pix.SetRGBA(x, y, px)
				}
			}
			if err := m.Upload(gfx.NewRasterImage(pix)); err != nil {
				t.Fatalf("Upload() error = %v", err)
			}
			if len(q.writes) != 1 {
				t.Fatalf("writes = %d, want 1", len(q.writes))
			}
			w := q.writes[0]
			if w.bpr != tt.bpr {
				t.Errorf("BytesPerRow = %d, want %d", w.bpr, tt.bpr)
			}
			if w.size.Width != 2 || w.size.Height != 3 {
				t.Errorf("size = %v, want 2x3", w.size)
			}
			if len(w.data) != int(tt.bpr)*3 {
				t.Errorf("len(data) = %d, want %d", len(w.data), int(tt.bpr)*3)
			}
			for i, b := range tt.first {
				if w.data[i] != b {
					t.Errorf("data[%d] = %#x, want %#x", i, w.data[i], b)
				}
			}
		})
	}
}

func TestTextureUploadMips(t *testing.T) {
	r, q := newTestResidency(t)
	b := software.New(software.WithResidency(r))
	s, err := b.MakeSurface(gfx.SurfaceDescriptor{Size: image.Pt(8, 4), Format: gfx.FormatRGBA8, Mipmap: true})
	if err != nil {
		t.Fatalf("MakeSurface() error = %v", err)
	}
	defer s.Destroy()

	s.Snapshot()
	if len(q.writes) != 4 {
		t.Fatalf("writes = %d, want 4", len(q.writes))
	}
	wantW := []uint32{8, 4, 2, 1}
	for i, w := range q.writes {
		if w.level != uint32(i) {
			t.Errorf("write %d level = %d, want %d", i, w.level, i)
		}
		if w.size.Width != wantW[i] {
			t.Errorf("write %d width = %d, want %d", i, w.size.Width, wantW[i])
		}
	}
}

func TestTextureUploadAfterRelease(t *testing.T) {
	r, _ := newTestResidency(t)
	m, err := r.Allocate(gfx.SurfaceDescriptor{Size: image.Pt(1, 1), Format: gfx.FormatRGBA8})
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	m.Release()
	err = m.Upload(gfx.NewRasterImage(image.NewRGBA(image.Rect(0, 0, 1, 1))))
	if !errors.Is(err, ErrTextureReleased) {
		t.Errorf("Upload() after Release = %v, want ErrTextureReleased", err)
	}
	if tex := m.(*Texture); tex.View() != nil {
		t.Error("View() after Release is not nil")
	}
}

func TestHalfFloat(t *testing.T) {
	tests := []struct {
		in   float32
		want uint16
	}{
		{0, 0},
		{1, 0x3c00},
		{0.5, 0x3800},
		{-2, 0xc000},
		{1e-9, 0},
		{1e9, 0x7c00},
	}
	for _, tt := range tests {
		if got := halfFloat(tt.in); got != tt.want {
			t.Errorf("halfFloat(%v) = %#x, want %#x", tt.in, got, tt.want)
		}
	}
}

func TestEncodeYUVParams(t *testing.T) {
	buf, err := EncodeYUVParams(gfx.YUVJPEG, resource.SampleAdjust{})
	if err != nil {
		t.Fatalf("EncodeYUVParams() error = %v", err)
	}
	if len(buf) != YUVParamsSize {
		t.Fatalf("len = %d, want %d", len(buf), YUVParamsSize)
	}
	m, _ := resource.YUVToRGBMatrix(gfx.YUVJPEG)
	for i, want := range m {
		got := math32.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
		if got != want {
			t.Errorf("matrix[%d] = %v, want %v", i, got, want)
		}
	}
	if got := math32.Float32frombits(binary.LittleEndian.Uint32(buf[68:])); got != 1 {
		t.Errorf("multiplier = %v, want 1 for no adjustment", got)
	}

	if _, err := EncodeYUVParams(gfx.YUVColorSpace(99), resource.SampleAdjust{}); !errors.Is(err, resource.ErrWrongFormat) {
		t.Errorf("EncodeYUVParams(bad) = %v, want ErrWrongFormat", err)
	}
}
