package recording

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/gogpu/compositor/geom"
	"github.com/gogpu/compositor/gfx"
)

// Recorder is a gfx.Canvas that captures paint calls as commands instead
// of executing them. It tracks the matrix and save count so queries answer
// as a live canvas would; clips are only recorded.
//
// Use FinishRecording to obtain an immutable Recording that can be played
// back onto any canvas.
//
// The Recorder is not safe for concurrent use.
type Recorder struct {
	width, height int
	commands      []Command
	resources     *ResourcePool

	matrix     geom.Matrix
	stateStack []geom.Matrix
	finished   bool
}

// NewRecorder creates a Recorder for a device of the given size.
func NewRecorder(width, height int) *Recorder {
	return &Recorder{
		width:      width,
		height:     height,
		commands:   make([]Command, 0, 256),
		resources:  NewResourcePool(),
		matrix:     geom.Identity(),
		stateStack: make([]geom.Matrix, 0, 8),
	}
}

// FinishRecording returns an immutable Recording containing all recorded
// commands. After calling FinishRecording, the Recorder must not be used
// again.
func (r *Recorder) FinishRecording() *Recording {
	r.finished = true
	return &Recording{
		width:     r.width,
		height:    r.height,
		commands:  r.commands,
		resources: r.resources,
	}
}

func (r *Recorder) record(cmd Command) {
	if r.finished {
		panic("recording: Recorder used after FinishRecording")
	}
	r.commands = append(r.commands, cmd)
}

// Len returns the number of commands recorded so far.
func (r *Recorder) Len() int {
	return len(r.commands)
}

// --------------------------------------------------------------------------
// gfx.Canvas
// --------------------------------------------------------------------------

func (r *Recorder) Save() int {
	n := r.SaveCount()
	r.stateStack = append(r.stateStack, r.matrix)
	r.record(SaveCommand{})
	return n
}

func (r *Recorder) SaveLayer(bounds *geom.Rect, paint *gfx.Paint) int {
	n := r.SaveCount()
	r.stateStack = append(r.stateStack, r.matrix)
	var b *geom.Rect
	if bounds != nil {
		copied := *bounds
		b = &copied
	}
	r.record(SaveLayerCommand{Bounds: b, Paint: r.resources.AddPaint(paint)})
	return n
}

func (r *Recorder) SaveLayerAlpha(bounds *geom.Rect, alpha uint8) int {
	p := gfx.NewPaint()
	p.SetAlpha(alpha)
	return r.SaveLayer(bounds, &p)
}

func (r *Recorder) SaveBackdropLayer(bounds geom.Rect, paint *gfx.Paint, backdrop gfx.ImageFilter) int {
	n := r.SaveCount()
	r.stateStack = append(r.stateStack, r.matrix)
	r.record(SaveBackdropLayerCommand{
		Bounds: bounds,
		Paint:  r.resources.AddPaint(paint),
		Filter: r.resources.AddFilter(backdrop),
	})
	return n
}

func (r *Recorder) Restore() {
	if len(r.stateStack) == 0 {
		return
	}
	r.matrix = r.stateStack[len(r.stateStack)-1]
	r.stateStack = r.stateStack[:len(r.stateStack)-1]
	r.record(RestoreCommand{})
}

func (r *Recorder) RestoreToCount(count int) {
	if count < 1 {
		count = 1
	}
	if r.SaveCount() <= count {
		return
	}
	r.matrix = r.stateStack[count-1]
	r.stateStack = r.stateStack[:count-1]
	r.record(RestoreToCountCommand{Count: count})
}

func (r *Recorder) SaveCount() int { return len(r.stateStack) + 1 }

func (r *Recorder) SetMatrix(m geom.Matrix) {
	r.matrix = m
	r.record(SetMatrixCommand{Matrix: m})
}

func (r *Recorder) Concat(m geom.Matrix) {
	r.matrix = r.matrix.Multiply(m)
	r.record(ConcatCommand{Matrix: m})
}

func (r *Recorder) ResetMatrix() {
	r.matrix = geom.Identity()
	r.record(ResetMatrixCommand{})
}

func (r *Recorder) TotalMatrix() geom.Matrix { return r.matrix }

func (r *Recorder) ClipRect(rect geom.Rect, antiAlias bool) {
	r.record(ClipRectCommand{Rect: rect, AntiAlias: antiAlias})
}

func (r *Recorder) ClipPolygon(pts []geom.Point, antiAlias bool) {
	r.record(ClipPolygonCommand{Polygon: r.resources.AddPolygon(pts), AntiAlias: antiAlias})
}

func (r *Recorder) Clear(c color.NRGBA) {
	r.record(ClearCommand{Color: c})
}

func (r *Recorder) DrawRect(rect geom.Rect, paint *gfx.Paint) {
	r.record(DrawRectCommand{Rect: rect, Paint: r.resources.AddPaint(paint)})
}

func (r *Recorder) DrawPolygon(pts []geom.Point, paint *gfx.Paint) {
	r.record(DrawPolygonCommand{
		Polygon: r.resources.AddPolygon(pts),
		Paint:   r.resources.AddPaint(paint),
	})
}

func (r *Recorder) DrawImageRect(img gfx.Image, src, dst geom.Rect, paint *gfx.Paint) {
	r.record(DrawImageRectCommand{
		Image: r.resources.AddImage(img),
		Src:   src,
		Dst:   dst,
		Paint: r.resources.AddPaint(paint),
	})
}

// Flush is a no-op; recorded commands are submitted by finishing the
// recording.
func (r *Recorder) Flush() {}

func (r *Recorder) BaseLayerSize() image.Point { return image.Pt(r.width, r.height) }

var _ gfx.Canvas = (*Recorder)(nil)

// --------------------------------------------------------------------------
// Recording
// --------------------------------------------------------------------------

// Recording is an immutable list of recorded paint calls.
type Recording struct {
	width, height int
	commands      []Command
	resources     *ResourcePool
}

// Width returns the width of the recording canvas.
func (r *Recording) Width() int {
	return r.width
}

// Height returns the height of the recording canvas.
func (r *Recording) Height() int {
	return r.height
}

// Commands returns the recorded commands.
func (r *Recording) Commands() []Command {
	return r.commands
}

// Resources returns the resource pool.
func (r *Recording) Resources() *ResourcePool {
	return r.resources
}

// DrawCount returns the number of commands that touch pixels.
func (r *Recording) DrawCount() int {
	n := 0
	for _, cmd := range r.commands {
		if cmd.Type().IsDraw() {
			n++
		}
	}
	return n
}

// ImageResolver turns a promise image into a drawable one at playback.
type ImageResolver func(p *gfx.PromiseImage) (gfx.Image, error)

// Playback replays the recording onto dst. Promise images, including those
// referenced by paint shaders and masks, are passed to resolve once per
// promise id; a nil resolve leaves them unresolved. Derived images are
// computed once from their resolved source.
//
// A draw whose image cannot be resolved is skipped and playback goes on;
// the resolution errors are joined into the returned error. The save
// count of dst is restored before Playback returns.
func (r *Recording) Playback(dst gfx.Canvas, resolve ImageResolver) error {
	p := player{
		pool:     r.resources,
		resolve:  resolve,
		resolved: make(map[uint64]gfx.Image),
		failed:   make(map[uint64]error),
		derived:  make(map[gfx.DerivedImage]gfx.Image),
	}
	base := dst.Save()
	defer dst.RestoreToCount(base)

	for _, cmd := range r.commands {
		switch c := cmd.(type) {
		case SaveCommand:
			dst.Save()
		case SaveLayerCommand:
			if paint, ok := p.paint(c.Paint); ok {
				dst.SaveLayer(c.Bounds, paint)
			} else {
				// Keep the save stack balanced but drop the layer contents.
				dst.SaveLayerAlpha(c.Bounds, 0)
			}
		case SaveBackdropLayerCommand:
			if paint, ok := p.paint(c.Paint); ok {
				dst.SaveBackdropLayer(c.Bounds, paint, r.resources.GetFilter(c.Filter))
			} else {
				dst.SaveLayerAlpha(&c.Bounds, 0)
			}
		case RestoreCommand:
			if dst.SaveCount() > base+1 {
				dst.Restore()
			}
		case RestoreToCountCommand:
			dst.RestoreToCount(base + c.Count)
		case SetMatrixCommand:
			dst.SetMatrix(c.Matrix)
		case ConcatCommand:
			dst.Concat(c.Matrix)
		case ResetMatrixCommand:
			dst.ResetMatrix()
		case ClipRectCommand:
			dst.ClipRect(c.Rect, c.AntiAlias)
		case ClipPolygonCommand:
			dst.ClipPolygon(r.resources.GetPolygon(c.Polygon), c.AntiAlias)
		case ClearCommand:
			dst.Clear(c.Color)
		case DrawRectCommand:
			if paint, ok := p.paint(c.Paint); ok {
				dst.DrawRect(c.Rect, paint)
			}
		case DrawPolygonCommand:
			if paint, ok := p.paint(c.Paint); ok {
				dst.DrawPolygon(r.resources.GetPolygon(c.Polygon), paint)
			}
		case DrawImageRectCommand:
			img, ok := p.image(r.resources.GetImage(c.Image))
			if !ok {
				continue
			}
			if paint, ok := p.paint(c.Paint); ok {
				dst.DrawImageRect(img, c.Src, c.Dst, paint)
			}
		default:
			panic(fmt.Sprintf("recording: unknown command %T", cmd))
		}
	}

	errs := p.errs
	for _, err := range p.failed {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// player holds the per-playback promise resolution state.
type player struct {
	pool     *ResourcePool
	resolve  ImageResolver
	resolved map[uint64]gfx.Image
	failed   map[uint64]error
	derived  map[gfx.DerivedImage]gfx.Image
	errs     []error
}

func (p *player) image(img gfx.Image) (gfx.Image, bool) {
	switch v := img.(type) {
	case nil:
		return nil, false
	case *gfx.PromiseImage:
		if p.resolve == nil {
			return img, true
		}
		if out, ok := p.resolved[v.ID]; ok {
			return out, true
		}
		if _, ok := p.failed[v.ID]; ok {
			return nil, false
		}
		out, err := p.resolve(v)
		if err != nil {
			p.failed[v.ID] = fmt.Errorf("recording: resolve promise %d: %w", v.ID, err)
			return nil, false
		}
		p.resolved[v.ID] = out
		return out, true
	case gfx.DerivedImage:
		if out, ok := p.derived[v]; ok {
			return out, true
		}
		src, ok := p.image(v.Source())
		if !ok {
			return nil, false
		}
		ri, ok := src.(*gfx.RasterImage)
		if !ok {
			// Left for the canvas to reject, as an unresolved promise is.
			return img, true
		}
		out, err := v.Derive(ri)
		if err != nil {
			p.errs = append(p.errs, fmt.Errorf("recording: derive image: %w", err))
			return nil, false
		}
		p.derived[v] = out
		return out, true
	}
	return img, true
}

// paint returns the paint for ref with promise images in its shader and
// mask filter resolved. ok is false when a promise failed to resolve.
func (p *player) paint(ref PaintRef) (*gfx.Paint, bool) {
	paint := p.pool.GetPaint(ref)
	if paint == nil {
		return nil, true
	}
	if sh, ok := paint.Shader.(*gfx.ImageShader); ok {
		img, ok := p.image(sh.Image)
		if !ok {
			return nil, false
		}
		paint.Shader = gfx.NewImageShader(img, sh.LocalMatrix)
	}
	if mf, ok := paint.MaskFilter.(*gfx.ShaderMaskFilter); ok && mf.Shader != nil {
		img, ok := p.image(mf.Shader.Image)
		if !ok {
			return nil, false
		}
		paint.MaskFilter = gfx.NewShaderMaskFilter(gfx.NewImageShader(img, mf.Shader.LocalMatrix))
	}
	return paint, true
}
