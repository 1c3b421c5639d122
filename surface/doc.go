// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package surface is the presentation side of the compositor: the
// [Output] a frame's root pass is drawn for and swapped to.
//
// An output reports what it can do through [Capabilities]: partial swap
// of a damaged sub-rect, swap with content bounds, and empty swaps. The
// compositor picks the swap mode from those flags; the output only
// presents what it is handed.
//
// # Outputs
//
//   - [ImageOutput]: an in-memory front buffer for tests and headless hosts
//   - host outputs registered by name through [Register]
//
// # Registry
//
// Output kinds are registered with a priority, and [NewOutput] picks the
// best available one:
//
//	out, err := surface.NewOutput(surface.DefaultOptions(800, 600))
//
// The "image" output is always registered.
package surface
