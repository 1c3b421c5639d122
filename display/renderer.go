package display

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"github.com/gogpu/compositor"
	"github.com/gogpu/compositor/backend/software"
	"github.com/gogpu/compositor/backend/wgpu"
	"github.com/gogpu/compositor/cache"
	"github.com/gogpu/compositor/deferred"
	"github.com/gogpu/compositor/effect"
	"github.com/gogpu/compositor/geom"
	"github.com/gogpu/compositor/gfx"
	"github.com/gogpu/compositor/quad"
	"github.com/gogpu/compositor/resource"
	"github.com/gogpu/compositor/surface"
)

// Frame is what the scene source hands the renderer for one frame.
type Frame struct {
	// RenderPasses in draw order. The last pass is the root.
	RenderPasses quad.RenderPassList

	// Requirements holds the backing requirements of every non-root pass.
	// Nil derives them from RenderPasses.
	Requirements map[quad.RenderPassID]quad.RenderPassRequirements

	// DeviceViewportSize is the root framebuffer size. Zero uses the root
	// pass output size.
	DeviceViewportSize image.Point

	// RootDamageRect is the part of the root pass that changed, in root
	// target space. Empty uses the damage rect of the root pass.
	RootDamageRect image.Rectangle

	// RootContentBounds is presented by outputs that swap with bounds.
	RootContentBounds []image.Rectangle
}

type framePhase uint8

const (
	phaseIdle framePhase = iota
	phaseBegun
	// phaseSkipped is a frame that BeginFrame refused. Drawing it is a
	// no-op.
	phaseSkipped
)

type rootState uint8

const (
	rootUnbound rootState = iota
	rootBound
)

// rootBinding tracks the framebuffer the root pass is drawn into. It is
// rebound whenever the size, format or presenting context changes.
type rootBinding struct {
	state     rootState
	size      image.Point
	format    gfx.PixelFormat
	contextID uint64

	// surface is the root framebuffer of the immediate strategy.
	surface gfx.Surface
}

func (b *rootBinding) matches(size image.Point, format gfx.PixelFormat, contextID uint64) bool {
	return b.state == rootBound && b.size == size && b.format == format && b.contextID == contextID
}

func (b *rootBinding) unbind() {
	if b.surface != nil {
		b.surface.Destroy()
		b.surface = nil
	}
	*b = rootBinding{}
}

// initMode is how a pass destination is prepared before its quads draw.
type initMode uint8

const (
	initPreserve initMode = iota
	initFull
	initScissored
)

var (
	transparent = color.NRGBA{}
	debugBlue   = color.NRGBA{B: 0xff, A: 0xff}
)

// overdrawColors tints the root by how often each pixel was drawn, as
// 0xAARRGGBB indexed by min(count, 5).
var overdrawColors = [...]uint32{
	0x00000000,
	0x00000000,
	0x2f0000ff,
	0x2f00ff00,
	0x3fff0000,
	0x7fff0000,
}

// Renderer draws frames of render passes onto an output.
//
// An immediate renderer (NewRenderer) draws on surfaces of its backend as
// it goes. A deferred renderer (NewDeferredRenderer) records every pass
// and leaves playback to the executor of its output surface.
//
// A Renderer must be driven from one goroutine:
//
//	if r.BeginFrame(frame) {
//		r.DrawFrame(frame.RenderPasses)
//	}
//	r.FinishFrame()
//	r.SwapBuffers(damage)
type Renderer struct {
	opts     options
	output   surface.Output
	backend  gfx.Backend
	out      *deferred.OutputSurface
	provider resource.Provider

	residency  *wgpu.Residency
	rootFormat gfx.PixelFormat

	backings *backingCache
	images   *imageBuilder
	filters  *cache.LRU[filterKey, *effect.Effect]
	root     rootBinding
	visible  bool

	// rootID is the root pass of the current or last frame.
	rootID quad.RenderPassID

	// Per-frame state.
	phase      framePhase
	frame      Frame
	fence      resource.Fence
	passes     map[quad.RenderPassID]*quad.RenderPass
	drawn      map[quad.RenderPassID]bool
	canvas     gfx.Canvas
	rootCanvas gfx.Canvas
	overdraw   func() *image.Alpha

	swapRect      image.Rectangle
	contentBounds []image.Rectangle
}

// NewRenderer returns an immediate renderer presenting to output. Pass
// backings are surfaces of backend; a nil backend uses the software
// backend, kept resident on the device given with WithDeviceProvider.
func NewRenderer(output surface.Output, backend gfx.Backend, provider resource.Provider, opts ...Option) *Renderer {
	r := newRenderer(output, provider, opts)
	if backend == nil && r.opts.device != nil {
		backend = r.residentBackend()
	}
	if backend == nil {
		backend = software.New()
	}
	r.backend = backend
	r.backings = newBackingCache(r.logger, backend.MakeSurface)
	r.images = newImageBuilder(r.logger, provider, nil)
	r.logger().Info("display: renderer created", "backend", backend.Name(), "root_format", r.rootFormat)
	return r
}

// NewDeferredRenderer returns a renderer that records its frames into
// out. Resources that are not software backed are locked for external use
// and drawn through promise images.
func NewDeferredRenderer(out *deferred.OutputSurface, provider resource.Provider, opts ...Option) *Renderer {
	r := newRenderer(out.Output(), provider, opts)
	r.out = out
	r.backings = newBackingCache(r.logger, nil)
	r.images = newImageBuilder(r.logger, provider, out)
	if r.opts.settings.ShowOverdrawFeedback {
		r.logger().Warn("display: overdraw feedback needs an immediate renderer, disabled")
		r.opts.settings.ShowOverdrawFeedback = false
	}
	r.logger().Info("display: deferred renderer created", "root_format", r.rootFormat)
	return r
}

func newRenderer(output surface.Output, provider resource.Provider, opts []Option) *Renderer {
	if provider == nil {
		panic("display: nil resource provider")
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	r := &Renderer{
		opts:       o,
		output:     output,
		provider:   provider,
		rootFormat: output.Format(),
		filters:    newFilterCache(max(o.settings.FilterCacheSize, 1)),
		visible:    true,
	}
	if o.device != nil {
		if f := o.device.SurfaceFormat(); isRootFormat(f) {
			r.rootFormat = f
		}
	}
	return r
}

// residentBackend returns a software backend whose surfaces are mirrored
// on the device of the host, or nil when that device is unusable.
func (r *Renderer) residentBackend() gfx.Backend {
	res, err := wgpu.FromDeviceProvider(r.opts.device)
	if err != nil {
		r.logger().Warn("display: host device unusable, backings stay on the CPU", "err", err)
		return nil
	}
	if r.opts.settings.PrecompileShaders {
		if err := res.PrecompileShaders(); err != nil {
			r.logger().Warn("display: shader precompilation failed", "err", err)
		}
	}
	r.residency = res
	return software.New(software.WithResidency(res))
}

func isRootFormat(f gfx.PixelFormat) bool {
	switch f {
	case gfx.FormatRGBA8, gfx.FormatBGRA8, gfx.FormatRGBA16:
		return true
	}
	return false
}

func (r *Renderer) logger() *slog.Logger {
	if r.opts.log != nil {
		return r.opts.log
	}
	return compositor.Logger()
}

// Settings returns the settings in effect.
func (r *Renderer) Settings() Settings { return r.opts.settings }

// BeginFrame starts a frame. It returns false, and the frame draws
// nothing, when the renderer is hidden or the pass list is malformed.
func (r *Renderer) BeginFrame(f *Frame) bool {
	if r.phase != phaseIdle {
		panic("display: BeginFrame called twice without FinishFrame")
	}
	r.phase = phaseSkipped
	if !r.visible {
		r.logger().Debug("display: frame skipped, renderer hidden")
		return false
	}
	if err := f.RenderPasses.Validate(); err != nil {
		r.logger().Warn("display: frame rejected", "err", err)
		return false
	}

	r.frame = *f
	root := f.RenderPasses.Root()
	r.rootID = root.ID
	if r.frame.Requirements == nil {
		r.frame.Requirements = f.RenderPasses.Requirements()
	}
	if r.frame.DeviceViewportSize == (image.Point{}) {
		r.frame.DeviceViewportSize = root.OutputRect.Size()
	}
	if r.frame.RootDamageRect.Empty() {
		r.frame.RootDamageRect = root.DamageRect
	}

	removed := r.backings.Prune(r.frame.Requirements)
	if r.out != nil && len(removed) > 0 {
		r.out.RemoveRenderPassResource(removed)
	}

	if r.out != nil {
		r.fence = newSyncTokenFence(r.out)
	} else {
		r.fence = resource.NewSynchronousFence()
	}
	r.provider.SetReadLockFence(r.fence)

	for _, p := range f.RenderPasses {
		for _, q := range p.Quads {
			for _, id := range q.Resources() {
				r.provider.WaitSyncToken(id)
			}
		}
	}

	r.passes = make(map[quad.RenderPassID]*quad.RenderPass, len(f.RenderPasses))
	r.drawn = make(map[quad.RenderPassID]bool, len(f.RenderPasses))
	r.phase = phaseBegun
	return true
}

// DrawFrame draws passes in order, the last one onto the root
// framebuffer. It returns false when a destination could not be created;
// the quads of that pass are skipped and its copy requests answered
// empty.
func (r *Renderer) DrawFrame(passes quad.RenderPassList) bool {
	switch r.phase {
	case phaseIdle:
		panic("display: DrawFrame called outside a frame")
	case phaseSkipped:
		return false
	}
	for _, p := range passes {
		r.passes[p.ID] = p
	}
	root := passes.Root()
	r.rootID = root.ID
	ok := true
	for _, p := range passes {
		if !r.drawPass(p, p == root) {
			for _, req := range p.CopyRequests {
				req.SendEmptyResult()
			}
			ok = false
		}
	}
	return ok
}

// drawPass binds the destination of p, draws its quads, finalizes it and
// serves its copy requests.
func (r *Renderer) drawPass(p *quad.RenderPass, isRoot bool) bool {
	var (
		canvas gfx.Canvas
		b      *backing
		full   image.Rectangle
	)
	if isRoot {
		canvas = r.bindRoot()
		if canvas == nil {
			return false
		}
		full = image.Rectangle{Max: r.frame.DeviceViewportSize}
	} else {
		req, ok := r.frame.Requirements[p.ID]
		if !ok {
			panic(fmt.Sprintf("display: no requirements for render pass %d", p.ID))
		}
		var err error
		b, err = r.backings.EnsureBacking(p.ID, req, p.ColorSpace, r.backingFormat(p.ColorSpace))
		if err != nil {
			r.logger().Warn("display: render pass skipped", "pass", p.ID, "err", err)
			return false
		}
		canvas = r.beginPass(p.ID, b)
		full = image.Rectangle{Max: p.OutputRect.Size()}
	}
	r.canvas = canvas

	scissor := full
	if isRoot && r.output.Capabilities().PartialSwap {
		scissor = r.frame.RootDamageRect.Sub(p.OutputRect.Min).Intersect(full)
	}
	mode := initFull
	switch {
	case isRoot && !r.opts.settings.ShouldClearRootRenderPass:
		mode = initPreserve
	case scissor != full:
		mode = initScissored
	}
	r.prepareSurface(canvas, p, mode, scissor)

	if !scissor.Empty() {
		for _, q := range p.Quads {
			r.drawQuad(canvas, q, p, scissor)
		}
	}

	r.finishPass(p, b)
	r.canvas = nil

	for _, req := range p.CopyRequests {
		r.copyPass(p, isRoot, b, req)
	}
	return true
}

// beginPass returns the canvas drawing into the backing of id.
func (r *Renderer) beginPass(id quad.RenderPassID, b *backing) gfx.Canvas {
	if r.out != nil {
		return r.out.BeginPaintRenderPass(id, b.descriptor(id))
	}
	c := b.surface.Canvas()
	c.RestoreToCount(1)
	c.ResetMatrix()
	return c
}

func (r *Renderer) finishPass(p *quad.RenderPass, b *backing) {
	r.drawn[p.ID] = true
	if b == nil {
		return
	}
	if r.out != nil {
		r.out.FinishPaintRenderPass()
		return
	}
	r.canvas.Flush()
	b.content = b.surface.Snapshot()
}

func (r *Renderer) prepareSurface(c gfx.Canvas, p *quad.RenderPass, mode initMode, scissor image.Rectangle) {
	if mode == initPreserve {
		return
	}
	var fill color.NRGBA
	switch {
	case p.HasTransparentBackground:
		fill = transparent
	case r.opts.settings.Debug:
		fill = debugBlue
	default:
		return
	}
	if mode == initFull {
		c.Clear(fill)
		return
	}
	rect := geom.FromImageRect(scissor)
	paint := gfx.NewPaint()
	paint.Color = fill
	paint.BlendMode = gfx.BlendSrc
	c.Save()
	c.ResetMatrix()
	c.ClipRect(rect, false)
	c.DrawRect(rect, &paint)
	c.Restore()
}

// bindRoot returns the canvas of the root framebuffer, rebinding it when
// the viewport, format or context changed.
func (r *Renderer) bindRoot() gfx.Canvas {
	size := r.frame.DeviceViewportSize
	format := r.rootFormat
	ctx := r.output.ContextID()
	desc := gfx.SurfaceDescriptor{
		Label:      "root",
		Size:       size,
		Format:     format,
		ColorSpace: r.output.ColorSpace(),
	}

	if !r.root.matches(size, format, ctx) {
		if r.root.state == rootBound {
			r.logger().Debug("display: root rebound",
				"size", size, "format", format, "context", ctx)
		}
		r.root.unbind()
		if r.out == nil {
			s, err := r.backend.MakeSurface(desc)
			if err != nil {
				r.logger().Warn("display: root framebuffer unavailable", "size", size, "err", err)
				return nil
			}
			r.root.surface = s
		}
		r.root.state = rootBound
		r.root.size = size
		r.root.format = format
		r.root.contextID = ctx
	}

	if r.out != nil {
		r.rootCanvas = r.out.BeginPaintCurrentFrame(desc)
		return r.rootCanvas
	}

	r.output.BindFramebuffer()
	c := r.root.surface.Canvas()
	c.RestoreToCount(1)
	c.ResetMatrix()
	r.rootCanvas = c
	if !r.opts.settings.ShowOverdrawFeedback {
		return c
	}
	od, ok := r.backend.(gfx.OverdrawBackend)
	if !ok {
		r.logger().Warn("display: backend cannot count overdraw", "backend", r.backend.Name())
		return c
	}
	counter, counts := od.MakeOverdrawCanvas(size)
	n := gfx.NewNWayCanvas(size.X, size.Y)
	n.AddCanvas(c)
	n.AddCanvas(counter)
	r.overdraw = counts
	return n
}

// backingFormat picks the texel format of a backing holding content in
// color space cs.
func (r *Renderer) backingFormat(cs gfx.ColorSpace) gfx.PixelFormat {
	switch {
	case cs.IsHDR() || cs.IsWideGamut():
		return gfx.FormatRGBA16
	case r.output.Capabilities().SupportsBGRA:
		return gfx.FormatBGRA8
	}
	return gfx.FormatRGBA8
}

// FinishFrame ends the frame: the root recording is submitted, the
// resources locked during the frame are unlocked and the damage is added
// to the swap rect. The returned token is released once the frame has
// executed; it is invalid for an immediate renderer.
func (r *Renderer) FinishFrame() gfx.SyncToken {
	switch r.phase {
	case phaseIdle:
		panic("display: FinishFrame called outside a frame")
	case phaseSkipped:
		r.phase = phaseIdle
		return gfx.SyncToken{}
	}

	var token gfx.SyncToken
	if r.rootCanvas != nil {
		if r.overdraw != nil {
			r.drawOverdraw()
		}
		if r.out != nil {
			token = r.out.FinishPaintCurrentFrame()
		} else {
			r.rootCanvas.Flush()
		}
	}

	r.images.Release(token)
	if f, ok := r.fence.(*syncTokenFence); ok {
		f.SetToken(token)
	} else {
		r.fence.Set()
	}

	if r.rootCanvas != nil {
		r.swapRect = r.swapRect.Union(r.frame.RootDamageRect)
		if r.output.Capabilities().SwapWithBounds {
			r.contentBounds = r.frame.RootContentBounds
		}
	}

	r.phase = phaseIdle
	r.frame = Frame{}
	r.passes = nil
	r.drawn = nil
	r.rootCanvas = nil
	r.overdraw = nil
	return token
}

// drawOverdraw tints the root framebuffer with the overdraw counts.
func (r *Renderer) drawOverdraw() {
	counts := r.overdraw()
	tint := image.NewRGBA(counts.Rect)
	for y := counts.Rect.Min.Y; y < counts.Rect.Max.Y; y++ {
		for x := counts.Rect.Min.X; x < counts.Rect.Max.X; x++ {
			n := min(int(counts.AlphaAt(x, y).A), len(overdrawColors)-1)
			tint.SetRGBA(x, y, gfx.Premultiply(argb(overdrawColors[n])))
		}
	}
	rect := geom.FromImageRect(counts.Rect)
	paint := gfx.NewPaint()
	c := r.rootCanvas
	c.Save()
	c.ResetMatrix()
	c.DrawImageRect(gfx.NewRasterImage(tint), rect, rect, &paint)
	c.Restore()
}

func argb(v uint32) color.NRGBA {
	return color.NRGBA{A: uint8(v >> 24), R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}
}

// SwapBuffers presents the root framebuffer. damage is added to the
// damage accumulated since the last swap. It returns false when nothing
// is bound or the output refused the frame.
func (r *Renderer) SwapBuffers(damage image.Rectangle) bool {
	if r.phase != phaseIdle {
		panic("display: SwapBuffers called inside a frame")
	}
	if r.root.state != rootBound {
		r.logger().Debug("display: swap without a bound root")
		return false
	}
	rect := r.swapRect.Union(damage)
	full := image.Rectangle{Max: r.root.size}
	caps := r.output.Capabilities()

	f := surface.Frame{Size: r.root.size}
	switch {
	case caps.SwapWithBounds:
		f.ContentBounds = r.contentBounds
	case caps.PartialSwap:
		sub := rect.Intersect(full)
		f.SubBufferRect = &sub
	case caps.AllowEmptySwap && rect.Empty():
		f.SubBufferRect = &image.Rectangle{}
	}
	r.swapRect = image.Rectangle{}
	r.contentBounds = nil

	if r.out != nil {
		return r.out.SwapBuffers(f).IsValid()
	}
	if ri, ok := r.root.surface.Snapshot().(*gfx.RasterImage); ok {
		f.Image = ri.RGBA()
	}
	if err := r.output.SwapBuffers(f); err != nil {
		r.logger().Warn("display: swap failed", "err", err)
		return false
	}
	return true
}

// SwapBufferRect returns the damage accumulated since the last swap.
func (r *Renderer) SwapBufferRect() image.Rectangle { return r.swapRect }

// CopyOutput answers req with the pixels of the pass id drawn in the
// current or last frame. rect is the output rect of the pass.
func (r *Renderer) CopyOutput(id quad.RenderPassID, rect image.Rectangle, req *quad.CopyOutputRequest) {
	if req.Format != quad.ResultRGBABitmap || req.IsScaled() {
		r.logger().Warn("display: copy request not supported, answering empty",
			"pass", id, "format", req.Format, "scaled", req.IsScaled())
		req.SendEmptyResult()
		return
	}
	if req.HasArea() && req.Area.Intersect(rect).Empty() {
		req.SendEmptyResult()
		return
	}
	if r.out != nil {
		if id == r.rootID {
			id = 0
		}
		r.out.CopyOutput(id, rect, req)
		return
	}
	if b, ok := r.backings.Lookup(id); ok {
		req.Serve(rasterPixels(b.content), rect)
		return
	}
	if id == r.rootID && r.root.surface != nil {
		req.Serve(rasterPixels(r.root.surface.Snapshot()), rect)
		return
	}
	req.SendEmptyResult()
}

// copyPass serves a copy request attached to p right after p was drawn.
func (r *Renderer) copyPass(p *quad.RenderPass, isRoot bool, b *backing, req *quad.CopyOutputRequest) {
	if req.Format != quad.ResultRGBABitmap || req.IsScaled() {
		r.CopyOutput(p.ID, p.OutputRect, req)
		return
	}
	switch {
	case r.out != nil && isRoot:
		r.out.CopyOutput(0, p.OutputRect, req)
	case r.out != nil:
		r.out.CopyOutput(p.ID, p.OutputRect, req)
	case isRoot:
		r.rootCanvas.Flush()
		req.Serve(rasterPixels(r.root.surface.Snapshot()), p.OutputRect)
	default:
		req.Serve(rasterPixels(b.content), p.OutputRect)
	}
}

func rasterPixels(img gfx.Image) *image.RGBA {
	if ri, ok := img.(*gfx.RasterImage); ok {
		return ri.RGBA()
	}
	return nil
}

// SetVisible allocates or releases the output backbuffer.
func (r *Renderer) SetVisible(visible bool) {
	if r.visible == visible {
		return
	}
	r.visible = visible
	if visible {
		r.output.EnsureBackbuffer()
		return
	}
	r.output.DiscardBackbuffer()
}

// SetEnableDCLayers does nothing: the compositor has no overlay
// promotion.
func (r *Renderer) SetEnableDCLayers(enable bool) {
	r.logger().Debug("display: DC layers not supported", "enable", enable)
}

// GenerateMipmap does nothing. Passes that need mips request them with
// RenderPass.GenerateMipmap and get them when finalized.
func (r *Renderer) GenerateMipmap() {
	r.logger().Debug("display: GenerateMipmap not supported")
}

// IsRenderPassResourceAllocated reports whether pass id has a backing.
func (r *Renderer) IsRenderPassResourceAllocated(id quad.RenderPassID) bool {
	_, ok := r.backings.Lookup(id)
	return ok
}

// RenderPassBackingPixelSize returns the size of the backing of pass id.
func (r *Renderer) RenderPassBackingPixelSize(id quad.RenderPassID) image.Point {
	if b, ok := r.backings.Lookup(id); ok {
		return b.size
	}
	return image.Point{}
}

// BackingAllocations returns the number of backings allocated so far.
func (r *Renderer) BackingAllocations() int { return r.backings.allocations }

// Close destroys the backings and the root framebuffer. The output
// surface of a deferred renderer is left to its owner.
func (r *Renderer) Close() {
	removed := make([]quad.RenderPassID, 0, r.backings.Len())
	for id := range r.backings.backings {
		removed = append(removed, id)
	}
	r.backings.Clear()
	if r.out != nil && len(removed) > 0 {
		r.out.RemoveRenderPassResource(removed)
	}
	r.root.unbind()
	r.filters.Clear()
	if r.residency != nil {
		r.residency.Destroy()
		r.residency = nil
	}
}
