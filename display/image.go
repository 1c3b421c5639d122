package display

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/gogpu/compositor/deferred"
	"github.com/gogpu/compositor/gfx"
	"github.com/gogpu/compositor/quad"
	"github.com/gogpu/compositor/resource"
)

var errPlaneImage = errors.New("display: resource is a video plane")

// imageBuilder turns locked resources into drawable images. Every
// resource, plane tuple and render pass is locked at most once per frame;
// later requests return the cached image. Release drops the locks and the
// caches.
//
// With a nil output surface every lock is a read lock held until Release.
// Otherwise resources are locked for external use and drawn through
// promise images, except software backed ones, which are read-locked.
type imageBuilder struct {
	log      func() *slog.Logger
	provider resource.Provider
	out      *deferred.OutputSurface

	readLocks []*resource.ReadLock
	external  *resource.LockSet

	images map[quad.ResourceID]gfx.Image
	yuv    map[resource.YUVIDs]gfx.Image
	passes map[quad.RenderPassID]gfx.Image
}

func newImageBuilder(log func() *slog.Logger, p resource.Provider, out *deferred.OutputSurface) *imageBuilder {
	return &imageBuilder{
		log:      log,
		provider: p,
		out:      out,
		external: resource.NewLockSet(p),
		images:   make(map[quad.ResourceID]gfx.Image),
		yuv:      make(map[resource.YUVIDs]gfx.Image),
		passes:   make(map[quad.RenderPassID]gfx.Image),
	}
}

// readLocked reports whether id is drawn from a read lock.
func (b *imageBuilder) readLocked(id quad.ResourceID) bool {
	return b.out == nil || b.provider.IsSoftwareBacked(id)
}

// Image returns the image of a single-plane resource.
func (b *imageBuilder) Image(id quad.ResourceID) (gfx.Image, bool) {
	if img, ok := b.images[id]; ok {
		return img, true
	}
	img, err := b.lockImage(id)
	if err != nil {
		b.log().Warn("display: resource unavailable", "resource", id, "err", err)
		return nil, false
	}
	b.images[id] = img
	return img, true
}

func (b *imageBuilder) lockImage(id quad.ResourceID) (gfx.Image, error) {
	if !id.IsValid() {
		return nil, fmt.Errorf("%w: %d", resource.ErrUnknownResource, id)
	}
	if b.readLocked(id) {
		lock, err := b.provider.LockForRead(id)
		if err != nil {
			return nil, err
		}
		img := lock.Image()
		if img == nil {
			lock.Release()
			return nil, errPlaneImage
		}
		b.readLocks = append(b.readLocks, lock)
		return img, nil
	}
	md, err := b.external.Lock(id)
	if err != nil {
		return nil, err
	}
	if md.Format.IsPlane() {
		return nil, errPlaneImage
	}
	return b.out.MakePromiseImage(md), nil
}

// YUV returns the RGB image of the video frame drawn by q.
func (b *imageBuilder) YUV(q *quad.YUVVideoQuad) (gfx.Image, bool) {
	ids := resource.YUVIDs{Y: q.YPlane, U: q.UPlane, V: q.VPlane, A: q.APlane}
	if img, ok := b.yuv[ids]; ok {
		return img, img != nil
	}
	if ids.HasAlpha() {
		b.log().Warn("display: video alpha plane not supported, drawing opaque", "plane", ids.A)
	}
	cs, ok := q.ColorSpace.YUVMatrix()
	if !ok {
		b.log().Debug("display: video color space has no YUV matrix, using rec601", "color_space", q.ColorSpace)
	}
	adj := resource.SampleAdjust{Offset: q.ResourceOffset, Multiplier: q.ResourceMultiplier}

	img, err := b.lockYUV(ids, cs, adj)
	if err != nil {
		b.log().Warn("display: video frame unavailable", "planes", ids.Planes(), "err", err)
		// Failed tuples stay failed until Release.
		b.yuv[ids] = nil
		return nil, false
	}
	b.yuv[ids] = img
	return img, true
}

func (b *imageBuilder) lockYUV(ids resource.YUVIDs, cs gfx.YUVColorSpace, adj resource.SampleAdjust) (gfx.Image, error) {
	planes := ids.Planes()
	software := b.out == nil
	for _, id := range planes {
		if !id.IsValid() {
			return nil, fmt.Errorf("%w: plane %d", resource.ErrUnknownResource, id)
		}
		software = software || b.provider.IsSoftwareBacked(id)
	}

	if !software {
		mds := make([]resource.Metadata, len(planes))
		for i, id := range planes {
			md, err := b.external.Lock(id)
			if err != nil {
				return nil, err
			}
			mds[i] = md
		}
		return b.out.MakePromiseImageFromYUV(mds, cs, adj), nil
	}

	held := len(b.readLocks)
	unlock := func() {
		for _, l := range b.readLocks[held:] {
			l.Release()
		}
		b.readLocks = b.readLocks[:held]
	}
	pix := make([]image.Image, len(planes))
	for i, id := range planes {
		lock, err := b.provider.LockForRead(id)
		if err != nil {
			unlock()
			return nil, err
		}
		b.readLocks = append(b.readLocks, lock)
		pix[i] = lock.Pixels()
	}
	rgba, err := resource.ConvertYUV(pix, cs, adj)
	if err != nil {
		unlock()
		return nil, err
	}
	return gfx.NewRasterImage(rgba), nil
}

// Pass returns the promise image of a render pass drawn by the deferred
// executor.
func (b *imageBuilder) Pass(id quad.RenderPassID, size image.Point, mipmap bool) gfx.Image {
	if img, ok := b.passes[id]; ok {
		return img
	}
	img := b.out.MakePromiseImageFromRenderPass(id, size, mipmap)
	b.passes[id] = img
	return img
}

// Locked returns the number of locks held.
func (b *imageBuilder) Locked() int {
	return len(b.readLocks) + b.external.Len()
}

// Release drops the caches, releases every read lock and unlocks every
// external lock with token.
func (b *imageBuilder) Release(token gfx.SyncToken) {
	clear(b.images)
	clear(b.yuv)
	clear(b.passes)
	for _, l := range b.readLocks {
		l.Release()
	}
	b.readLocks = nil
	b.external.UnlockAll(token)
}
