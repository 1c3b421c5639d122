package resource

import (
	"context"
	"errors"
	"image"
	"sync"

	"github.com/gogpu/compositor/gfx"
	"github.com/gogpu/compositor/quad"
)

// Errors returned by providers.
var (
	// ErrUnknownResource is returned for ids the provider does not hold.
	ErrUnknownResource = errors.New("resource: unknown resource")

	// ErrResourceLocked is returned when a resource cannot be changed or
	// deleted because it is locked or a fence guarding it has not passed.
	ErrResourceLocked = errors.New("resource: resource is locked")

	// ErrWrongFormat is returned when a resource has a format the
	// operation cannot use.
	ErrWrongFormat = errors.New("resource: unsupported resource format")
)

// Format is the texel format of a resource.
type Format uint8

const (
	FormatRGBA8 Format = iota
	FormatBGRA8
	// FormatR8 is a single 8-bit channel, used for luma and chroma planes.
	FormatR8
	// FormatRG8 is two interleaved 8-bit channels, used for the chroma
	// plane of two-plane (NV12) video.
	FormatRG8
	FormatRGBA16F
)

var formatNames = [...]string{
	FormatRGBA8:   "rgba8",
	FormatBGRA8:   "bgra8",
	FormatR8:      "r8",
	FormatRG8:     "rg8",
	FormatRGBA16F: "rgba16f",
}

func (f Format) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return "unknown"
}

// IsPlane reports whether f only appears as a plane of video content.
func (f Format) IsPlane() bool {
	return f == FormatR8 || f == FormatRG8
}

// Metadata describes a resource locked for external use. It carries
// everything needed to fetch the pixels later, but no pixels.
type Metadata struct {
	ID         quad.ResourceID
	Size       image.Point
	Format     Format
	ColorSpace gfx.ColorSpace
	Opaque     bool
	Mipmapped  bool
}

// Provider hands out locks on resources it owns. All methods are called
// from the compositor thread.
type Provider interface {
	// IsSoftwareBacked reports whether the pixels of id live in CPU
	// memory. Such resources are always read-locked.
	IsSoftwareBacked(id quad.ResourceID) bool

	// LockForRead returns a scoped lock on id. The pixels stay valid until
	// the lock is released.
	LockForRead(id quad.ResourceID) (*ReadLock, error)

	// LockForExternalUse locks id until UnlockForExternalUse and returns
	// what an executor needs to fetch its pixels.
	LockForExternalUse(id quad.ResourceID) (Metadata, error)

	// UnlockForExternalUse releases ids once every command submitted before
	// token has executed.
	UnlockForExternalUse(ids []quad.ResourceID, token gfx.SyncToken)

	// SetReadLockFence attaches f to every read lock taken from now on.
	// A read-locked resource stays in use until its fence has passed.
	SetReadLockFence(f Fence)

	// WaitSyncToken makes the work of the current frame wait for the
	// producer of id to finish writing it.
	WaitSyncToken(id quad.ResourceID)
}

// ReadLock is a scoped read lock on one resource.
type ReadLock struct {
	meta    Metadata
	pixels  image.Image
	image   gfx.Image
	release func()
	once    sync.Once
}

// NewReadLock returns a lock over pixels. release runs once, on the first
// Release call. Providers outside this package use it to build locks.
func NewReadLock(meta Metadata, pixels image.Image, release func()) *ReadLock {
	l := &ReadLock{meta: meta, pixels: pixels, release: release}
	if rgba, ok := pixels.(*image.RGBA); ok && !meta.Format.IsPlane() {
		l.image = gfx.NewRasterImage(rgba)
	}
	return l
}

// Metadata returns the description of the locked resource.
func (l *ReadLock) Metadata() Metadata { return l.meta }

// Pixels returns the raw pixels. Planes are *image.Gray for FormatR8 and
// *image.RGBA with chroma in R and G for FormatRG8.
func (l *ReadLock) Pixels() image.Image { return l.pixels }

// Image returns the resource as a drawable image, or nil for planes.
func (l *ReadLock) Image() gfx.Image { return l.image }

// Release drops the lock. It is safe to call more than once.
func (l *ReadLock) Release() {
	l.once.Do(func() {
		if l.release != nil {
			l.release()
		}
	})
}

// Fence tracks completion of the GPU work that reads locked resources.
type Fence interface {
	// Set marks the end of the work the fence guards.
	Set()
	// HasPassed reports whether the guarded work has completed.
	HasPassed() bool
	// Wait blocks until the fence has passed or ctx is done.
	Wait(ctx context.Context) error
}

// SynchronousFence passes as soon as it is set. It fits backends that
// finish all work before control returns to the compositor.
type SynchronousFence struct {
	once sync.Once
	done chan struct{}
}

// NewSynchronousFence returns an unset fence.
func NewSynchronousFence() *SynchronousFence {
	return &SynchronousFence{done: make(chan struct{})}
}

func (f *SynchronousFence) Set() {
	f.once.Do(func() { close(f.done) })
}

func (f *SynchronousFence) HasPassed() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

func (f *SynchronousFence) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ Fence = (*SynchronousFence)(nil)
