// Package gfx defines the small graphics backend API the compositor draws
// through: a canvas with a matrix and clip stack, paints, images, image
// filters, offscreen surfaces and the sync tokens exchanged with a deferred
// execution context.
//
// The compositor never talks to a concrete graphics library. Backends
// implement [Backend] and [Surface]; the immediate CPU backend lives in
// backend/software and the recorded display list in recording.
//
// # Canvas model
//
// A [Canvas] keeps a save stack. Save pushes the matrix and clip; the
// SaveLayer family additionally redirects drawing into an offscreen layer
// that is composited back on Restore. [Canvas.SaveBackdropLayer] opens a
// layer initialized with the filtered contents already drawn beneath it,
// which is how backdrop filters see the destination.
//
// # Registration
//
// Backends register a factory by name, following the database/sql driver
// pattern:
//
//	func init() {
//	    gfx.RegisterBackend("software", func() gfx.Backend { return software.New() })
//	}
package gfx
