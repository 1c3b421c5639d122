// Package recording is the display list of the deferred execution path.
//
// A [Recorder] implements gfx.Canvas but only captures the calls as typed
// commands. Resources the commands refer to (paints, images, backdrop
// filters, polygons) live in a [ResourcePool] and are referenced by typed
// handles. FinishRecording freezes the list into a [Recording], which can
// be played back onto any canvas, typically by the execution context that
// owns the real surfaces.
//
// Images drawn while recording may be gfx.PromiseImage placeholders. They
// are resolved only at playback, through the [ImageResolver] handed to
// [Recording.Playback]:
//
//	rec := recording.NewRecorder(256, 256)
//	rec.DrawImageRect(&gfx.PromiseImage{ID: 7, W: 64, H: 64}, src, dst, nil)
//	r := rec.FinishRecording()
//
//	err := r.Playback(surface.Canvas(), func(p *gfx.PromiseImage) (gfx.Image, error) {
//	    return textures.Lookup(p.ID)
//	})
package recording
