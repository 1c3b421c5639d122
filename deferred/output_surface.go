package deferred

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"sync"

	"github.com/anthonynsimon/bild/clone"

	"github.com/gogpu/compositor"
	"github.com/gogpu/compositor/gfx"
	"github.com/gogpu/compositor/quad"
	"github.com/gogpu/compositor/recording"
	"github.com/gogpu/compositor/resource"
	"github.com/gogpu/compositor/surface"
)

// Fulfiller returns the pixels of a resource locked for external use.
// resource.MemoryProvider implements it.
type Fulfiller interface {
	Fulfill(meta resource.Metadata) (image.Image, error)
}

type promiseKind uint8

const (
	promiseResource promiseKind = iota
	promiseYUV
	promiseRenderPass
)

type promise struct {
	kind   promiseKind
	planes []resource.Metadata
	yuv    gfx.YUVColorSpace
	adjust resource.SampleAdjust
	pass   quad.RenderPassID
}

// pendingCopy is a copy request made while its pass was being recorded.
type pendingCopy struct {
	rect image.Rectangle
	req  *quad.CopyOutputRequest
}

// OutputSurface is the recorded backend. Paint calls go into recorders
// scoped to the current frame or to one render pass; finishing a
// recording hands it to the Executor, which plays it back onto surfaces it
// owns, resolving promise images on the way.
//
// Recording methods must be called from one goroutine. Everything
// executed is owned by the executor goroutine.
type OutputSurface struct {
	log       *slog.Logger
	exec      *Executor
	ownsExec  bool
	backend   gfx.Backend
	fulfiller Fulfiller
	output    surface.Output

	mu          sync.Mutex
	nextPromise uint64
	promises    map[uint64]promise

	// Recording state.
	frame       *recording.Recorder
	frameDesc   gfx.SurfaceDescriptor
	frameCopies []pendingCopy
	pass        *recording.Recorder
	passID      quad.RenderPassID
	passDesc    gfx.SurfaceDescriptor
	passCopies  []pendingCopy

	// Executor state.
	root         gfx.Surface
	passSurfaces map[quad.RenderPassID]gfx.Surface
	passImages   map[quad.RenderPassID]gfx.Image
	lastErr      error
}

// Option configures an OutputSurface.
type Option func(*OutputSurface)

// WithLogger logs to l instead of the package logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *OutputSurface) {
		s.log = l
	}
}

// WithExecutor runs recordings on e instead of a new executor. The
// surface then does not close e.
func WithExecutor(e *Executor) Option {
	return func(s *OutputSurface) {
		s.exec = e
	}
}

// NewOutputSurface returns a recorded backend that allocates executed
// surfaces from backend, fulfills resource promises from f and presents
// to output.
func NewOutputSurface(backend gfx.Backend, output surface.Output, f Fulfiller, opts ...Option) *OutputSurface {
	s := &OutputSurface{
		backend:      backend,
		fulfiller:    f,
		output:       output,
		promises:     make(map[uint64]promise),
		passSurfaces: make(map[quad.RenderPassID]gfx.Surface),
		passImages:   make(map[quad.RenderPassID]gfx.Image),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.exec == nil {
		s.exec = NewExecutor(WithExecutorLogger(s.log))
		s.ownsExec = true
	}
	return s
}

func (s *OutputSurface) logger() *slog.Logger {
	if s.log != nil {
		return s.log
	}
	return compositor.Logger()
}

// Output returns the presentation surface.
func (s *OutputSurface) Output() surface.Output { return s.output }

// BeginPaintCurrentFrame starts recording the root pass. The returned
// canvas is valid until FinishPaintCurrentFrame.
func (s *OutputSurface) BeginPaintCurrentFrame(desc gfx.SurfaceDescriptor) gfx.Canvas {
	if s.frame != nil {
		panic("deferred: frame already being painted")
	}
	s.frame = recording.NewRecorder(desc.Size.X, desc.Size.Y)
	s.frameDesc = desc
	return s.frame
}

// FinishPaintCurrentFrame hands the root recording to the executor. The
// returned token is released once it has been played back; it is the
// token resources locked this frame are unlocked with.
func (s *OutputSurface) FinishPaintCurrentFrame() gfx.SyncToken {
	if s.frame == nil {
		panic("deferred: FinishPaintCurrentFrame without BeginPaintCurrentFrame")
	}
	rec := s.frame.FinishRecording()
	desc, copies := s.frameDesc, s.frameCopies
	s.frame, s.frameCopies = nil, nil

	s.mu.Lock()
	watermark := s.nextPromise
	s.mu.Unlock()

	return s.submit("frame", func() {
		defer s.dropPromises(watermark)
		if !s.ensureRoot(desc) {
			for _, c := range copies {
				c.req.SendEmptyResult()
			}
			return
		}
		s.playback(rec, s.root.Canvas())
		for _, c := range copies {
			c.req.Serve(s.rootPixels(), c.rect)
		}
	})
}

// BeginPaintRenderPass starts recording pass id into a backing described
// by desc. Passes are recorded one at a time.
func (s *OutputSurface) BeginPaintRenderPass(id quad.RenderPassID, desc gfx.SurfaceDescriptor) gfx.Canvas {
	if s.pass != nil {
		panic(fmt.Sprintf("deferred: render pass %d still being painted", s.passID))
	}
	s.pass = recording.NewRecorder(desc.Size.X, desc.Size.Y)
	s.passID = id
	s.passDesc = desc
	return s.pass
}

// FinishPaintRenderPass hands the pass recording to the executor, which
// plays it back into the pass backing and snapshots it for the passes
// drawing it.
func (s *OutputSurface) FinishPaintRenderPass() gfx.SyncToken {
	if s.pass == nil {
		panic("deferred: FinishPaintRenderPass without BeginPaintRenderPass")
	}
	rec := s.pass.FinishRecording()
	id, desc, copies := s.passID, s.passDesc, s.passCopies
	s.pass, s.passID, s.passCopies = nil, 0, nil

	return s.submit(fmt.Sprintf("render pass %d", id), func() {
		surf, ok := s.passSurface(id, desc)
		if !ok {
			delete(s.passImages, id)
			for _, c := range copies {
				c.req.SendEmptyResult()
			}
			return
		}
		s.playback(rec, surf.Canvas())
		img := surf.Snapshot()
		s.passImages[id] = img
		for _, c := range copies {
			c.req.Serve(pixelsOf(img), c.rect)
		}
	})
}

// MakePromiseImage returns a placeholder for the resource md, fulfilled
// at playback.
func (s *OutputSurface) MakePromiseImage(md resource.Metadata) *gfx.PromiseImage {
	return s.addPromise(promise{kind: promiseResource, planes: []resource.Metadata{md}},
		md.Size, md.Opaque, md.Mipmapped)
}

// MakePromiseImageFromYUV returns a placeholder for the RGB conversion of
// the planes in mds: Y, U, V or Y and interleaved UV. The image has the
// size of the Y plane and is opaque.
func (s *OutputSurface) MakePromiseImageFromYUV(mds []resource.Metadata, cs gfx.YUVColorSpace, adj resource.SampleAdjust) *gfx.PromiseImage {
	var size image.Point
	if len(mds) > 0 {
		size = mds[0].Size
	}
	planes := append([]resource.Metadata(nil), mds...)
	return s.addPromise(promise{kind: promiseYUV, planes: planes, yuv: cs, adjust: adj}, size, true, false)
}

// MakePromiseImageFromRenderPass returns a placeholder for the content of
// pass id as last finished on the executor.
func (s *OutputSurface) MakePromiseImageFromRenderPass(id quad.RenderPassID, size image.Point, mipmap bool) *gfx.PromiseImage {
	return s.addPromise(promise{kind: promiseRenderPass, pass: id}, size, false, mipmap)
}

func (s *OutputSurface) addPromise(p promise, size image.Point, opaque, mipmap bool) *gfx.PromiseImage {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextPromise++
	s.promises[s.nextPromise] = p
	return &gfx.PromiseImage{ID: s.nextPromise, W: size.X, H: size.Y, Opaque: opaque, Mipmapped: mipmap}
}

// PendingPromises returns the number of promises not yet dropped.
func (s *OutputSurface) PendingPromises() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.promises)
}

// dropPromises forgets every promise with an id up to watermark.
func (s *OutputSurface) dropPromises(watermark uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.promises {
		if id <= watermark {
			delete(s.promises, id)
		}
	}
}

// resolve fulfills p on the executor goroutine.
func (s *OutputSurface) resolve(p *gfx.PromiseImage) (gfx.Image, error) {
	s.mu.Lock()
	pr, ok := s.promises[p.ID]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("deferred: unknown promise %d", p.ID)
	}

	switch pr.kind {
	case promiseResource:
		if s.fulfiller == nil {
			return nil, fmt.Errorf("deferred: no fulfiller for resource %d", pr.planes[0].ID)
		}
		pix, err := s.fulfiller.Fulfill(pr.planes[0])
		if err != nil {
			return nil, err
		}
		return gfx.NewRasterImage(clone.AsRGBA(pix)), nil

	case promiseYUV:
		if s.fulfiller == nil {
			return nil, fmt.Errorf("deferred: no fulfiller for video planes")
		}
		planes := make([]image.Image, len(pr.planes))
		for i, md := range pr.planes {
			pix, err := s.fulfiller.Fulfill(md)
			if err != nil {
				return nil, err
			}
			planes[i] = pix
		}
		rgba, err := resource.ConvertYUV(planes, pr.yuv, pr.adjust)
		if err != nil {
			return nil, err
		}
		return gfx.NewRasterImage(rgba), nil

	case promiseRenderPass:
		img, ok := s.passImages[pr.pass]
		if !ok {
			return nil, fmt.Errorf("deferred: render pass %d has no content", pr.pass)
		}
		return img, nil
	}
	return nil, fmt.Errorf("deferred: bad promise kind %d", pr.kind)
}

func (s *OutputSurface) playback(rec *recording.Recording, dst gfx.Canvas) {
	if err := rec.Playback(dst, s.resolve); err != nil {
		s.lastErr = err
		s.logger().Warn("deferred: playback skipped draws", "err", err)
	}
}

// ensureRoot binds the root surface to desc, recreating it when the size
// or format changed.
func (s *OutputSurface) ensureRoot(desc gfx.SurfaceDescriptor) bool {
	if s.root != nil && s.root.Size() == desc.Size && s.root.Format() == desc.Format {
		return true
	}
	if s.root != nil {
		s.root.Destroy()
		s.root = nil
	}
	if desc.Label == "" {
		desc.Label = "root"
	}
	root, err := s.backend.MakeSurface(desc)
	if err != nil {
		s.lastErr = err
		s.logger().Warn("deferred: root surface allocation failed", "size", desc.Size, "err", err)
		return false
	}
	s.root = root
	return true
}

// passSurface returns the backing for id, reusing it when it still
// matches desc.
func (s *OutputSurface) passSurface(id quad.RenderPassID, desc gfx.SurfaceDescriptor) (gfx.Surface, bool) {
	if surf, ok := s.passSurfaces[id]; ok {
		if surf.Size() == desc.Size && surf.Format() == desc.Format && surf.Mipmapped() == desc.Mipmap {
			surf.Canvas().Clear(transparent)
			return surf, true
		}
		surf.Destroy()
		delete(s.passSurfaces, id)
	}
	if desc.Label == "" {
		desc.Label = fmt.Sprintf("render pass %d", id)
	}
	surf, err := s.backend.MakeSurface(desc)
	if err != nil {
		s.lastErr = err
		s.logger().Warn("deferred: backing allocation failed", "pass", id, "size", desc.Size, "err", err)
		return nil, false
	}
	s.passSurfaces[id] = surf
	return surf, true
}

func (s *OutputSurface) rootPixels() *image.RGBA {
	if s.root == nil {
		return nil
	}
	return pixelsOf(s.root.Snapshot())
}

// RemoveRenderPassResource destroys the executed backings of ids.
func (s *OutputSurface) RemoveRenderPassResource(ids []quad.RenderPassID) gfx.SyncToken {
	ids = append([]quad.RenderPassID(nil), ids...)
	return s.submit("remove render passes", func() {
		for _, id := range ids {
			if surf, ok := s.passSurfaces[id]; ok {
				surf.Destroy()
				delete(s.passSurfaces, id)
			}
			delete(s.passImages, id)
		}
	})
}

// CopyOutput answers req with the content of pass id, or of the root pass
// for id 0, once it has been executed. rect is the pass output rect in
// target space. A request for the pass being recorded is answered after
// that recording is played back.
func (s *OutputSurface) CopyOutput(id quad.RenderPassID, rect image.Rectangle, req *quad.CopyOutputRequest) {
	switch {
	case id == 0 && s.frame != nil:
		s.frameCopies = append(s.frameCopies, pendingCopy{rect, req})
		return
	case id != 0 && s.pass != nil && id == s.passID:
		s.passCopies = append(s.passCopies, pendingCopy{rect, req})
		return
	}
	_, err := s.exec.Submit("copy output", func() {
		if id == 0 {
			req.Serve(s.rootPixels(), rect)
			return
		}
		req.Serve(pixelsOf(s.passImages[id]), rect)
	})
	if err != nil {
		req.SendEmptyResult()
	}
}

// SwapBuffers presents the executed root surface. The frame's Image is
// filled in on the executor.
func (s *OutputSurface) SwapBuffers(f surface.Frame) gfx.SyncToken {
	return s.submit("swap", func() {
		f.Image = s.rootPixels()
		s.output.BindFramebuffer()
		if err := s.output.SwapBuffers(f); err != nil {
			s.lastErr = err
			s.logger().Warn("deferred: swap failed", "err", err)
		}
	})
}

// LastError returns the last execution error, for diagnostics. It blocks
// until everything submitted so far has run.
func (s *OutputSurface) LastError(ctx context.Context) error {
	var err error
	t, serr := s.exec.Submit("last error", func() { err = s.lastErr })
	if serr != nil {
		return serr
	}
	if werr := s.exec.Wait(ctx, t); werr != nil {
		return werr
	}
	return err
}

// WaitSyncToken blocks until t is released or ctx is done.
func (s *OutputSurface) WaitSyncToken(ctx context.Context, t gfx.SyncToken) error {
	return s.exec.Wait(ctx, t)
}

// IsSyncTokenReleased reports whether t has been released.
func (s *OutputSurface) IsSyncTokenReleased(t gfx.SyncToken) bool {
	return s.exec.IsReleased(t)
}

// Close destroys the executed surfaces and stops the executor it
// created.
func (s *OutputSurface) Close() error {
	_, _ = s.exec.Submit("destroy surfaces", func() {
		for id, surf := range s.passSurfaces {
			surf.Destroy()
			delete(s.passSurfaces, id)
		}
		clear(s.passImages)
		if s.root != nil {
			s.root.Destroy()
			s.root = nil
		}
	})
	if !s.ownsExec {
		return nil
	}
	return s.exec.Close()
}

// submit queues fn. After Close the work is dropped and the invalid token
// returned.
func (s *OutputSurface) submit(name string, fn func()) gfx.SyncToken {
	t, err := s.exec.Submit(name, fn)
	if err != nil {
		s.logger().Warn("deferred: work dropped", "task", name, "err", err)
	}
	return t
}

var transparent color.NRGBA

func pixelsOf(img gfx.Image) *image.RGBA {
	if ri, ok := img.(*gfx.RasterImage); ok {
		return ri.RGBA()
	}
	return nil
}
