package quad

import (
	"context"
	"image"
	"image/draw"
	"sync"
)

// ResultFormat selects how copy-output pixels are returned.
type ResultFormat uint8

const (
	// ResultRGBABitmap returns premultiplied RGBA pixels in memory.
	ResultRGBABitmap ResultFormat = iota
	// ResultRGBATexture returns a texture handle.
	ResultRGBATexture
	// ResultI420Planes returns three planar YUV buffers.
	ResultI420Planes
)

func (f ResultFormat) String() string {
	switch f {
	case ResultRGBABitmap:
		return "rgba-bitmap"
	case ResultRGBATexture:
		return "rgba-texture"
	case ResultI420Planes:
		return "i420-planes"
	}
	return "unknown"
}

// CopyOutputResult carries the pixels of a completed copy request. An
// empty result means the request could not be served.
type CopyOutputResult struct {
	Format ResultFormat
	// Rect is the copied region in the target space of the pass.
	Rect   image.Rectangle
	Bitmap *image.RGBA
}

// IsEmpty reports whether the result carries no pixels.
func (r *CopyOutputResult) IsEmpty() bool {
	return r == nil || r.Bitmap == nil || r.Rect.Empty()
}

// CopyOutputRequest asks for the pixels of a render pass once it has been
// drawn. A request is answered exactly once; dropping it unanswered is a
// bug in the compositor.
type CopyOutputRequest struct {
	Format ResultFormat
	// Area, if set, limits the copy to a part of the pass output rect.
	Area *image.Rectangle
	// ResultSelection, if set, selects a part of the scaled result.
	ResultSelection *image.Rectangle
	// ScaleFrom and ScaleTo describe a scaled copy. Equal or zero values
	// request an unscaled copy.
	ScaleFrom image.Point
	ScaleTo   image.Point

	callback func(*CopyOutputResult)
	once     sync.Once
	done     chan struct{}
	result   *CopyOutputResult
}

// NewCopyOutputRequest returns a request for pixels in format. callback,
// if non-nil, runs with the result when it is sent.
func NewCopyOutputRequest(format ResultFormat, callback func(*CopyOutputResult)) *CopyOutputRequest {
	return &CopyOutputRequest{
		Format:   format,
		callback: callback,
		done:     make(chan struct{}),
	}
}

// HasArea reports whether the copy is limited to Area.
func (r *CopyOutputRequest) HasArea() bool { return r.Area != nil }

// HasResultSelection reports whether ResultSelection is set.
func (r *CopyOutputRequest) HasResultSelection() bool { return r.ResultSelection != nil }

// IsScaled reports whether the request asks for a scaled copy.
func (r *CopyOutputRequest) IsScaled() bool {
	return r.ScaleFrom != r.ScaleTo && r.ScaleFrom != (image.Point{}) && r.ScaleTo != (image.Point{})
}

// SendResult answers the request. Only the first call has an effect.
func (r *CopyOutputRequest) SendResult(result *CopyOutputResult) {
	r.once.Do(func() {
		if result == nil {
			result = &CopyOutputResult{Format: r.Format}
		}
		r.result = result
		close(r.done)
		if r.callback != nil {
			r.callback(result)
		}
	})
}

// SendEmptyResult answers the request with no pixels.
func (r *CopyOutputRequest) SendEmptyResult() {
	r.SendResult(nil)
}

// Serve answers the request from pixels, a copy of a pass whose texel
// at pixels.Rect.Min lies at outputRect.Min in target space. Only unscaled
// bitmap copies are served; any other request gets an empty result.
func (r *CopyOutputRequest) Serve(pixels *image.RGBA, outputRect image.Rectangle) {
	if pixels == nil || r.Format != ResultRGBABitmap || r.IsScaled() {
		r.SendEmptyResult()
		return
	}
	area := outputRect
	if r.HasArea() {
		area = area.Intersect(*r.Area)
	}
	if r.HasResultSelection() {
		area = area.Intersect(r.ResultSelection.Add(area.Min))
	}
	src := area.Sub(outputRect.Min).Add(pixels.Rect.Min).Intersect(pixels.Rect)
	if src.Empty() {
		r.SendEmptyResult()
		return
	}
	bmp := image.NewRGBA(image.Rectangle{Max: src.Size()})
	draw.Draw(bmp, bmp.Rect, pixels, src.Min, draw.Src)
	r.SendResult(&CopyOutputResult{
		Format: r.Format,
		Rect:   src.Sub(pixels.Rect.Min).Add(outputRect.Min),
		Bitmap: bmp,
	})
}

// IsAnswered reports whether a result has been sent.
func (r *CopyOutputRequest) IsAnswered() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the result is sent or ctx is done.
func (r *CopyOutputRequest) Wait(ctx context.Context) (*CopyOutputResult, error) {
	select {
	case <-r.done:
		return r.result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
