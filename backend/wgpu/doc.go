// Package wgpu keeps compositor backings resident on a GPU through the
// gogpu/wgpu HAL.
//
// A [Residency] plugs into the software backend with
// software.WithResidency. Every surface the backend allocates gets a 2D
// texture with a default view; every snapshot is written to the texture,
// mip levels included, with Queue.WriteTexture. Destroying the surface
// releases both.
//
//	r, err := wgpu.FromDeviceProvider(provider)
//	if err != nil {
//		return err
//	}
//	backend := software.New(software.WithResidency(r))
//
// # Formats
//
// RGBA8 texels are written as stored, BGRA8 texels are swizzled, and
// RGBA16Float texels are widened to half floats.
//
// # Shaders
//
// The YUV to RGB conversion shader is WGSL compiled to SPIR-V with
// gogpu/naga. [Residency.PrecompileShaders] compiles it ahead of the first
// frame; otherwise it is compiled on first use. [EncodeYUVParams] builds
// its uniform block from the same matrices the CPU conversion uses.
package wgpu
