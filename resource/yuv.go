package resource

import (
	"fmt"
	"image"
	"image/color"

	"github.com/chewxy/math32"

	"github.com/gogpu/compositor/gfx"
)

// yuvMatrix converts normalized, offset-corrected YUV to RGB.
type yuvMatrix struct {
	yOffset, yScale float32
	rv, gu, gv, bu  float32
}

var yuvMatrices = map[gfx.YUVColorSpace]yuvMatrix{
	gfx.YUVRec601: {yOffset: 16.0 / 255, yScale: 1.164, rv: 1.596, gu: -0.392, gv: -0.813, bu: 2.017},
	gfx.YUVRec709: {yOffset: 16.0 / 255, yScale: 1.164, rv: 1.793, gu: -0.213, gv: -0.533, bu: 2.112},
	gfx.YUVJPEG:   {yOffset: 0, yScale: 1, rv: 1.402, gu: -0.344136, gv: -0.714136, bu: 1.772},
}

// SampleAdjust rescales samples before conversion, for content stored
// with fewer significant bits than its container: s' = (s - Offset) *
// Multiplier. A zero Multiplier means no adjustment.
type SampleAdjust struct {
	Offset     float32
	Multiplier float32
}

func (a SampleAdjust) apply(s float32) float32 {
	if a.Multiplier == 0 {
		return s
	}
	return (s - a.Offset) * a.Multiplier
}

// ConvertYUV converts a planar frame to opaque RGBA the size of the luma
// plane. planes is Y, U, V as single-channel images, or Y and an
// interleaved UV plane (chroma in R and G) for NV12. Chroma planes may be
// subsampled; they are sampled at the nearest texel.
func ConvertYUV(planes []image.Image, cs gfx.YUVColorSpace, adj SampleAdjust) (*image.RGBA, error) {
	m, ok := yuvMatrices[cs]
	if !ok {
		return nil, fmt.Errorf("%w: yuv color space %v", ErrWrongFormat, cs)
	}
	if len(planes) != 2 && len(planes) != 3 {
		return nil, fmt.Errorf("%w: %d planes", ErrWrongFormat, len(planes))
	}
	for i, p := range planes {
		if p == nil || p.Bounds().Empty() {
			return nil, fmt.Errorf("%w: plane %d is empty", ErrWrongFormat, i)
		}
	}
	yb := planes[0].Bounds()
	u, v := planes[1], planes[1]
	uCh, vCh := 0, 1
	if len(planes) == 3 {
		v = planes[2]
		vCh = 0
	}
	ub, vb := u.Bounds(), v.Bounds()

	out := image.NewRGBA(image.Rectangle{Max: yb.Size()})
	w, h := yb.Dx(), yb.Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			ys := adj.apply(sample(planes[0], yb.Min.X+x, yb.Min.Y+y, 0))
			us := adj.apply(sample(u, ub.Min.X+x*ub.Dx()/w, ub.Min.Y+y*ub.Dy()/h, uCh)) - 0.5
			vs := adj.apply(sample(v, vb.Min.X+x*vb.Dx()/w, vb.Min.Y+y*vb.Dy()/h, vCh)) - 0.5
			luma := (ys - m.yOffset) * m.yScale
			i := out.PixOffset(x, y)
			out.Pix[i] = unit8(luma + m.rv*vs)
			out.Pix[i+1] = unit8(luma + m.gu*us + m.gv*vs)
			out.Pix[i+2] = unit8(luma + m.bu*us)
			out.Pix[i+3] = 0xff
		}
	}
	return out, nil
}

// YUVToRGBMatrix returns the column-major 4x4 matrix taking (Y, U, V, 1),
// each sample in [0, 1], to RGB. It is the matrix ConvertYUV applies, for
// converting on the device.
func YUVToRGBMatrix(cs gfx.YUVColorSpace) ([16]float32, error) {
	m, ok := yuvMatrices[cs]
	if !ok {
		return [16]float32{}, fmt.Errorf("%w: yuv color space %v", ErrWrongFormat, cs)
	}
	base := -m.yOffset * m.yScale
	return [16]float32{
		m.yScale, m.yScale, m.yScale, 0,
		0, m.gu, m.bu, 0,
		m.rv, m.gv, 0, 0,
		base - 0.5*m.rv, base - 0.5*(m.gu+m.gv), base - 0.5*m.bu, 1,
	}, nil
}

// sample returns channel ch of img at (x, y), normalized to [0, 1].
func sample(img image.Image, x, y, ch int) float32 {
	switch p := img.(type) {
	case *image.Gray:
		return float32(p.Pix[p.PixOffset(x, y)]) / 255
	case *image.RGBA:
		return float32(p.Pix[p.PixOffset(x, y)+ch]) / 255
	}
	c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
	return float32([4]uint8{c.R, c.G, c.B, c.A}[ch]) / 255
}

func unit8(v float32) uint8 {
	return uint8(math32.Round(math32.Max(0, math32.Min(1, v)) * 255))
}
