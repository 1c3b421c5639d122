package resource

import (
	"fmt"
	"image"
	"sync"

	"github.com/anthonynsimon/bild/clone"

	"github.com/gogpu/compositor/gfx"
	"github.com/gogpu/compositor/quad"
)

// ImportOptions describe a resource added to a MemoryProvider.
type ImportOptions struct {
	// SoftwareBacked resources are always read-locked, even when draws are
	// recorded.
	SoftwareBacked bool
	ColorSpace     gfx.ColorSpace
	// Format is reported in the metadata of image resources. Pixels are
	// kept as premultiplied RGBA regardless. Plane formats are ignored.
	Format    Format
	Mipmapped bool
}

type entry struct {
	meta     Metadata
	pixels   image.Image
	software bool

	readLocks int
	external  int
	fence     Fence

	// released is the token carried by the last external unlock.
	released gfx.SyncToken
	// producer is the token the producer of the pixels signals when done
	// writing them.
	producer gfx.SyncToken
}

// MemoryProvider keeps resources in process memory. It is safe for
// concurrent use, so an executor goroutine may fulfill resources while
// the compositor locks others.
type MemoryProvider struct {
	mu       sync.Mutex
	next     quad.ResourceID
	entries  map[quad.ResourceID]*entry
	fence    Fence
	released func(gfx.SyncToken) bool
	waits    int
}

// NewMemoryProvider returns an empty provider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{entries: make(map[quad.ResourceID]*entry)}
}

func (p *MemoryProvider) add(meta Metadata, pixels image.Image, software bool) quad.ResourceID {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.next++
	meta.ID = p.next
	p.entries[meta.ID] = &entry{meta: meta, pixels: pixels, software: software}
	return meta.ID
}

// AddImage copies img into a new RGBA resource and returns its id.
func (p *MemoryProvider) AddImage(img image.Image, opts ImportOptions) quad.ResourceID {
	rgba := toRGBA(img)
	format := opts.Format
	if format.IsPlane() {
		format = FormatRGBA8
	}
	meta := Metadata{
		Size:       rgba.Rect.Size(),
		Format:     format,
		ColorSpace: opts.ColorSpace,
		Opaque:     rgba.Opaque(),
		Mipmapped:  opts.Mipmapped,
	}
	return p.add(meta, rgba, opts.SoftwareBacked)
}

// AddPlane copies a single-channel video plane into a new resource.
func (p *MemoryProvider) AddPlane(plane *image.Gray, opts ImportOptions) quad.ResourceID {
	b := plane.Bounds()
	cp := image.NewGray(image.Rectangle{Max: b.Size()})
	for y := 0; y < b.Dy(); y++ {
		copy(cp.Pix[y*cp.Stride:y*cp.Stride+b.Dx()], plane.Pix[plane.PixOffset(b.Min.X, b.Min.Y+y):])
	}
	meta := Metadata{Size: b.Size(), Format: FormatR8, ColorSpace: opts.ColorSpace, Opaque: true}
	return p.add(meta, cp, opts.SoftwareBacked)
}

// AddUVPlane interleaves two chroma planes of equal size into one
// two-channel resource, as used by NV12 content.
func (p *MemoryProvider) AddUVPlane(u, v *image.Gray, opts ImportOptions) (quad.ResourceID, error) {
	ub, vb := u.Bounds(), v.Bounds()
	if ub.Size() != vb.Size() {
		return 0, fmt.Errorf("resource: chroma plane sizes differ: %v and %v", ub.Size(), vb.Size())
	}
	uv := image.NewRGBA(image.Rectangle{Max: ub.Size()})
	for y := 0; y < ub.Dy(); y++ {
		for x := 0; x < ub.Dx(); x++ {
			i := uv.PixOffset(x, y)
			uv.Pix[i] = u.GrayAt(ub.Min.X+x, ub.Min.Y+y).Y
			uv.Pix[i+1] = v.GrayAt(vb.Min.X+x, vb.Min.Y+y).Y
			uv.Pix[i+3] = 0xff
		}
	}
	meta := Metadata{Size: ub.Size(), Format: FormatRG8, ColorSpace: opts.ColorSpace, Opaque: true}
	return p.add(meta, uv, opts.SoftwareBacked), nil
}

// Update replaces the pixels of an image resource. It fails while the
// resource is in use.
func (p *MemoryProvider) Update(id quad.ResourceID, img image.Image) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, err := p.lookup(id)
	if err != nil {
		return err
	}
	if e.meta.Format.IsPlane() {
		return fmt.Errorf("%w: cannot update %s resource %d with an image", ErrWrongFormat, e.meta.Format, id)
	}
	if p.inUse(e) {
		return fmt.Errorf("%w: %d", ErrResourceLocked, id)
	}
	rgba := toRGBA(img)
	e.pixels = rgba
	e.meta.Size = rgba.Rect.Size()
	e.meta.Opaque = rgba.Opaque()
	return nil
}

// Delete removes a resource. It fails while the resource is in use.
func (p *MemoryProvider) Delete(id quad.ResourceID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, err := p.lookup(id)
	if err != nil {
		return err
	}
	if p.inUse(e) {
		return fmt.Errorf("%w: %d", ErrResourceLocked, id)
	}
	delete(p.entries, id)
	return nil
}

// InUse reports whether id is locked, guarded by a fence that has not
// passed, or waiting for the release of its last unlock token.
func (p *MemoryProvider) InUse(id quad.ResourceID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.entries[id]
	return ok && p.inUse(e)
}

func (p *MemoryProvider) inUse(e *entry) bool {
	if e.readLocks > 0 || e.external > 0 {
		return true
	}
	if e.fence != nil && !e.fence.HasPassed() {
		return true
	}
	if e.released.IsValid() && p.released != nil && !p.released(e.released) {
		return true
	}
	return false
}

// SetSyncTokenChecker installs the function that reports whether a sync
// token has been released. Without one, unlock tokens never keep a
// resource in use.
func (p *MemoryProvider) SetSyncTokenChecker(released func(gfx.SyncToken) bool) {
	p.mu.Lock()
	p.released = released
	p.mu.Unlock()
}

// SetProducerSyncToken records the token the producer of id signals once
// the pixels are written. WaitSyncToken consumes it.
func (p *MemoryProvider) SetProducerSyncToken(id quad.ResourceID, token gfx.SyncToken) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, err := p.lookup(id)
	if err != nil {
		return err
	}
	e.producer = token
	return nil
}

// LockCounts returns the number of read and external locks held on id.
func (p *MemoryProvider) LockCounts(id quad.ResourceID) (read, external int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := p.entries[id]; ok {
		return e.readLocks, e.external
	}
	return 0, 0
}

// ReleaseToken returns the token carried by the last external unlock of
// id.
func (p *MemoryProvider) ReleaseToken(id quad.ResourceID) gfx.SyncToken {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := p.entries[id]; ok {
		return e.released
	}
	return gfx.SyncToken{}
}

// SyncWaits returns how many producer tokens have been waited on.
func (p *MemoryProvider) SyncWaits() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.waits
}

func (p *MemoryProvider) IsSoftwareBacked(id quad.ResourceID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.entries[id]
	return ok && e.software
}

func (p *MemoryProvider) LockForRead(id quad.ResourceID) (*ReadLock, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, err := p.lookup(id)
	if err != nil {
		return nil, err
	}
	e.readLocks++
	if p.fence != nil {
		e.fence = p.fence
	}
	return NewReadLock(e.meta, e.pixels, func() {
		p.mu.Lock()
		e.readLocks--
		p.mu.Unlock()
	}), nil
}

func (p *MemoryProvider) LockForExternalUse(id quad.ResourceID) (Metadata, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, err := p.lookup(id)
	if err != nil {
		return Metadata{}, err
	}
	e.external++
	return e.meta, nil
}

func (p *MemoryProvider) UnlockForExternalUse(ids []quad.ResourceID, token gfx.SyncToken) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, id := range ids {
		e, ok := p.entries[id]
		if !ok || e.external == 0 {
			panic(fmt.Sprintf("resource: unlock of resource %d not locked for external use", id))
		}
		e.external--
		e.released = token
	}
}

func (p *MemoryProvider) SetReadLockFence(f Fence) {
	p.mu.Lock()
	p.fence = f
	p.mu.Unlock()
}

func (p *MemoryProvider) WaitSyncToken(id quad.ResourceID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := p.entries[id]; ok && e.producer.IsValid() {
		e.producer = gfx.SyncToken{}
		p.waits++
	}
}

// Fulfill returns the pixels described by meta. Executors call it when
// they play back draws of resources locked for external use.
func (p *MemoryProvider) Fulfill(meta Metadata) (image.Image, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, err := p.lookup(meta.ID)
	if err != nil {
		return nil, err
	}
	if e.meta.Size != meta.Size || e.meta.Format != meta.Format {
		return nil, fmt.Errorf("resource: %d changed since it was locked", meta.ID)
	}
	return e.pixels, nil
}

func (p *MemoryProvider) lookup(id quad.ResourceID) (*entry, error) {
	e, ok := p.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownResource, id)
	}
	return e, nil
}

// toRGBA converts img to premultiplied RGBA starting at the origin.
func toRGBA(img image.Image) *image.RGBA {
	rgba := clone.AsRGBA(img)
	if rgba.Rect.Min != (image.Point{}) {
		rgba = gfx.CloneRGBA(rgba)
	}
	return rgba
}

var _ Provider = (*MemoryProvider)(nil)
