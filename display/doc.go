// Package display draws frames of render passes.
//
// A [Renderer] takes the render pass list of a frame, allocates an
// offscreen backing for every non-root pass, draws each pass in order and
// presents the root pass on a surface.Output. Backings are kept across
// frames while their pass still fits in them.
//
// Two strategies share the same drawing code:
//
//   - [NewRenderer] draws immediately on surfaces of a gfx.Backend.
//     Resources are read-locked for the duration of the frame.
//   - [NewDeferredRenderer] records every pass into a
//     deferred.OutputSurface. Resources are locked for external use and
//     unlocked with the sync token of the frame.
//
// A frame goes through four calls:
//
//	r := display.NewRenderer(out, software.New(), provider)
//	defer r.Close()
//
//	frame := &display.Frame{RenderPasses: passes}
//	if r.BeginFrame(frame) {
//		r.DrawFrame(passes)
//	}
//	r.FinishFrame()
//	r.SwapBuffers(image.Rectangle{})
//
// Renderer settings can be loaded from TOML with [LoadSettings].
package display
