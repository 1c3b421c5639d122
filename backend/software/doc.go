// Package software is the immediate graphics backend: every paint call
// executes synchronously on the CPU against premultiplied RGBA pixels.
//
// Coverage is rasterized with golang.org/x/image/vector, images are
// resampled with golang.org/x/image/draw and mip chains are built with
// bild. The package registers itself with gfx under the name "software":
//
//	import _ "github.com/gogpu/compositor/backend/software"
//
//	b, err := gfx.NewBackend("software")
//
// A Backend can mirror every surface it creates into GPU memory through a
// Residency, such as the one in backend/wgpu.
package software
