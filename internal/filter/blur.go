package filter

import (
	"image"
	"sync"

	"github.com/gogpu/compositor/internal/parallel"
)

// Blur returns src convolved with a separable Gaussian with the given
// standard deviations in pixels. The result has the bounds of src. Pixels
// outside src are treated as transparent, so content fades out toward the
// edges instead of being smeared.
//
// Callers that want the blur to spread outside the content pad src first,
// typically by KernelRadius on each side.
func Blur(src *image.RGBA, sigmaX, sigmaY float32) *image.RGBA {
	dst := image.NewRGBA(src.Rect)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	if w == 0 || h == 0 {
		return dst
	}
	if sigmaX <= 0 && sigmaY <= 0 {
		copyRows(dst, src)
		return dst
	}

	temp := getTempBuffer(w * h * 4)
	defer putTempBuffer(temp)

	blurHorizontal(src, temp, w, h, CachedGaussianKernel(sigmaX))
	blurVertical(temp, dst, w, h, CachedGaussianKernel(sigmaY))
	return dst
}

// blurHorizontal convolves every row of src into temp.
func blurHorizontal(src *image.RGBA, temp []float32, w, h int, kernel []float32) {
	half := len(kernel) / 2
	parallel.Rows(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			blurRow(src.Pix[y*src.Stride:y*src.Stride+w*4], temp[y*w*4:(y+1)*w*4], kernel, half)
		}
	})
}

// blurRow convolves one row of texels into out.
func blurRow(row []uint8, out []float32, kernel []float32, half int) {
	w := len(row) / 4
	for x := 0; x < w; x++ {
		var r, g, b, a float32
		for k, weight := range kernel {
			kx := x + k - half
			if kx < 0 || kx >= w {
				continue
			}
			i := kx * 4
			r += float32(row[i+0]) * weight
			g += float32(row[i+1]) * weight
			b += float32(row[i+2]) * weight
			a += float32(row[i+3]) * weight
		}
		t := x * 4
		out[t+0] = r
		out[t+1] = g
		out[t+2] = b
		out[t+3] = a
	}
}

// blurVertical convolves every column of temp into dst.
func blurVertical(temp []float32, dst *image.RGBA, w, h int, kernel []float32) {
	half := len(kernel) / 2
	parallel.Rows(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			blurColumnRow(temp, dst.Pix[y*dst.Stride:y*dst.Stride+w*4], y, w, h, kernel, half)
		}
	})
}

// blurColumnRow computes row y of the vertical pass into out.
func blurColumnRow(temp []float32, out []uint8, y, w, h int, kernel []float32, half int) {
	for x := 0; x < w; x++ {
		var r, g, b, a float32
		for k, weight := range kernel {
			ky := y + k - half
			if ky < 0 || ky >= h {
				continue
			}
			t := (ky*w + x) * 4
			r += temp[t+0] * weight
			g += temp[t+1] * weight
			b += temp[t+2] * weight
			a += temp[t+3] * weight
		}
		i := x * 4
		out[i+0] = clampUint8(r)
		out[i+1] = clampUint8(g)
		out[i+2] = clampUint8(b)
		out[i+3] = clampUint8(a)
	}
}

// copyRows copies src into dst, which must have the same bounds.
func copyRows(dst, src *image.RGBA) {
	w := src.Rect.Dx() * 4
	for y := 0; y < src.Rect.Dy(); y++ {
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+w], src.Pix[y*src.Stride:y*src.Stride+w])
	}
}

// clampUint8 rounds v to the nearest byte.
func clampUint8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// floatBuffer wraps a slice for sync.Pool to avoid allocation warnings.
type floatBuffer struct {
	data []float32
}

var tempBufferPool = sync.Pool{
	New: func() interface{} {
		return &floatBuffer{data: make([]float32, 256*256*4)}
	},
}

// getTempBuffer returns a zeroed buffer of exactly size elements.
func getTempBuffer(size int) []float32 {
	buf := tempBufferPool.Get().(*floatBuffer)
	if cap(buf.data) < size {
		buf.data = make([]float32, size)
	}
	data := buf.data[:size]
	clear(data)
	return data
}

func putTempBuffer(data []float32) {
	tempBufferPool.Put(&floatBuffer{data: data[:cap(data)]})
}
