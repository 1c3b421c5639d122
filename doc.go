// Package compositor draws frames of render passes onto a presentation
// surface.
//
// A frame is a list of render passes, each an ordered list of quads. The
// last pass is the root and is drawn onto the output; every other pass is
// drawn into an offscreen backing that later passes sample through a
// RenderPassQuad, optionally through image filters, a mask and backdrop
// filters.
//
// # Packages
//
//   - quad: render passes, draw quads and copy-output requests
//   - display: the renderer driving a frame (BeginFrame, DrawFrame,
//     FinishFrame, SwapBuffers)
//   - gfx: the graphics backend interface (surfaces, canvases, paints,
//     images, filters)
//   - backend/software: the CPU backend
//   - backend/wgpu: GPU residency of backings on a wgpu HAL device
//   - recording and deferred: recorded drawing played back on an executor
//     goroutine, with promise images resolved at playback
//   - resource: external resources, their locks and YUV conversion
//   - effect: filter operations and their application to pass content
//   - surface: presentation outputs
//
// # Logging
//
// Nothing is logged by default. [SetLogger] installs a [log/slog] logger
// that every sub-package uses.
package compositor
