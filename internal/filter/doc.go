// Package filter provides the pixel kernels behind the compositor's image
// filters:
//   - Gaussian blur (separable, transparent edges)
//   - Drop shadow (blur + offset + colorize)
//   - Color matrix transformations
//
// Kernels operate on premultiplied *image.RGBA whose bounds may start
// anywhere and return a new image with the same bounds.
package filter
