package main

import (
	"image"
	"image/color"

	"github.com/gogpu/compositor/effect"
	"github.com/gogpu/compositor/geom"
	"github.com/gogpu/compositor/gfx"
	"github.com/gogpu/compositor/quad"
	"github.com/gogpu/compositor/resource"
)

// Render pass ids of the demo frame. The root comes last.
const (
	blurredPassID quad.RenderPassID = iota + 1
	frostedPassID
	rootPassID
)

type scene struct {
	passes  quad.RenderPassList
	blurred *quad.RenderPass
}

// buildScene lays out a frame of three passes over a viewport of size:
// a card drawn through a blur filter, a frosted panel with a grayscale
// backdrop filter, and the root holding a background, a checkerboard
// texture, a video frame and both passes.
func buildScene(p *resource.MemoryProvider, size image.Point) (*scene, error) {
	w, h := float64(size.X), float64(size.Y)

	blurred := quad.NewRenderPass(blurredPassID, image.Rect(0, 0, 160, 120))
	blurred.HasTransparentBackground = true
	blurred.Filters = effect.Operations{effect.Blur(4)}
	solid(blurred, geom.NewRect(20, 20, 120, 80), color.NRGBA{R: 0xf0, G: 0x80, B: 0x20, A: 0xff})
	solid(blurred, geom.NewRect(50, 40, 60, 40), color.NRGBA{R: 0xff, G: 0xe0, B: 0x40, A: 0xff})

	frosted := quad.NewRenderPass(frostedPassID, image.Rect(0, 0, 200, 100))
	frosted.HasTransparentBackground = true
	frosted.BackdropFilters = effect.Operations{effect.Grayscale(1), effect.Blur(2)}
	solid(frosted, geom.NewRect(0, 0, 200, 100), color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0x40})

	root := quad.NewRenderPass(rootPassID, image.Rectangle{Max: size})
	solid(root, geom.NewRect(0, 0, w, h), color.NRGBA{R: 0x18, G: 0x20, B: 0x38, A: 0xff})

	checker := p.AddImage(checkerboard(64, 64, 8), resource.ImportOptions{})
	tex := &quad.TextureQuad{
		Base:               base(root, geom.NewRect(40, 40, 128, 128)),
		Resource:           checker,
		PremultipliedAlpha: true,
		UVBottomRight:      geom.Pt(1, 1),
		NearestNeighbor:    true,
	}
	root.AppendQuad(tex)

	video, err := videoFrame(p, 64, 48)
	if err != nil {
		return nil, err
	}
	video.Base = base(root, geom.NewRect(w-232, 40, 192, 144))
	root.AppendQuad(video)

	card := passQuad(root, geom.NewRect(40, h-200, 160, 120), blurred)
	card.NeedsBlending = true
	panel := passQuad(root, geom.NewRect(w/2-100, h/2-50, 200, 100), frosted)
	panel.NeedsBlending = true

	border := &quad.DebugBorderQuad{
		Base:  base(root, geom.NewRect(w/2-100, h/2-50, 200, 100)),
		Color: color.NRGBA{R: 0x40, G: 0xff, B: 0x80, A: 0xff},
		Width: 2,
	}
	border.NeedsBlending = true
	root.AppendQuad(border)

	return &scene{
		passes:  quad.RenderPassList{blurred, frosted, root},
		blurred: blurred,
	}, nil
}

func base(p *quad.RenderPass, r geom.Rect) quad.Base {
	return quad.Base{Rect: r, VisibleRect: r, Shared: p.CreateSharedQuadState(r)}
}

func solid(p *quad.RenderPass, r geom.Rect, c color.NRGBA) {
	q := &quad.SolidColorQuad{Base: base(p, r), Color: c}
	q.NeedsBlending = c.A != 0xff
	p.AppendQuad(q)
}

func passQuad(p *quad.RenderPass, r geom.Rect, src *quad.RenderPass) *quad.RenderPassQuad {
	size := src.OutputRect.Size()
	q := &quad.RenderPassQuad{
		Base:         base(p, r),
		RenderPassID: src.ID,
		FiltersScale: geom.Pt(1, 1),
		TexCoordRect: geom.NewRect(0, 0, float64(size.X), float64(size.Y)),
	}
	p.AppendQuad(q)
	return q
}

func checkerboard(w, h, cell int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	light := color.RGBA{R: 0xe8, G: 0xe8, B: 0xe8, A: 0xff}
	dark := color.RGBA{R: 0x50, G: 0x58, B: 0x70, A: 0xff}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := dark
			if (x/cell+y/cell)%2 == 0 {
				c = light
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// videoFrame adds the planes of a synthetic 4:2:0 frame, a luma ramp over
// a chroma sweep, and returns a quad sampling them.
func videoFrame(p *resource.MemoryProvider, w, h int) (*quad.YUVVideoQuad, error) {
	y := image.NewGray(image.Rect(0, 0, w, h))
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			y.Pix[y.PixOffset(i, j)] = uint8(16 + 219*i/(w-1))
		}
	}
	cw, ch := w/2, h/2
	u := image.NewGray(image.Rect(0, 0, cw, ch))
	v := image.NewGray(image.Rect(0, 0, cw, ch))
	for j := 0; j < ch; j++ {
		for i := 0; i < cw; i++ {
			u.Pix[u.PixOffset(i, j)] = uint8(16 + 224*j/(ch-1))
			v.Pix[v.PixOffset(i, j)] = uint8(240 - 224*i/(cw-1))
		}
	}

	opts := resource.ImportOptions{ColorSpace: gfx.ColorSpaceRec601}
	yID := p.AddPlane(y, opts)
	uvID, err := p.AddUVPlane(u, v, opts)
	if err != nil {
		return nil, err
	}
	return &quad.YUVVideoQuad{
		YPlane:         yID,
		UPlane:         uvID,
		VPlane:         uvID,
		YATexCoordRect: geom.NewRect(0, 0, 1, 1),
		UVTexCoordRect: geom.NewRect(0, 0, 1, 1),
		YATexSize:      image.Pt(w, h),
		UVTexSize:      image.Pt(cw, ch),
		ColorSpace:     gfx.ColorSpaceRec601,
		BitsPerChannel: 8,
	}, nil
}
