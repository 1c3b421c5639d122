// Package deferred is the recorded execution strategy of the compositor.
//
// The compositor paints into recording.Recorder canvases handed out by an
// [OutputSurface]. Finished recordings are queued on an [Executor], a
// single goroutine that plays them back in order onto surfaces it owns.
// Resources are not touched while recording: they are drawn as
// gfx.PromiseImage placeholders and fulfilled at playback.
//
// Each piece of submitted work yields a gfx.SyncToken. Tokens are released
// in submission order, so the token returned by FinishPaintCurrentFrame
// covers every render pass of the frame. It is the token resources locked
// for the frame are unlocked with.
//
//	out := deferred.NewOutputSurface(software.New(), surface.NewImageOutput(opts), provider)
//	defer out.Close()
//
//	c := out.BeginPaintCurrentFrame(desc)
//	// ... draw ...
//	token := out.FinishPaintCurrentFrame()
//	out.SwapBuffers(surface.Frame{Size: desc.Size})
//	err := out.WaitSyncToken(ctx, token)
package deferred
