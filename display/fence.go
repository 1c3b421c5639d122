package display

import (
	"context"
	"sync"

	"github.com/gogpu/compositor/deferred"
	"github.com/gogpu/compositor/gfx"
	"github.com/gogpu/compositor/resource"
)

// syncTokenFence guards read locks taken while recording a frame. It
// passes once the recording has been played back by the executor.
type syncTokenFence struct {
	out *deferred.OutputSurface

	mu    sync.Mutex
	token gfx.SyncToken
	set   chan struct{}
	once  sync.Once
}

func newSyncTokenFence(out *deferred.OutputSurface) *syncTokenFence {
	return &syncTokenFence{out: out, set: make(chan struct{})}
}

// SetToken records the token of the frame recording and sets the fence.
func (f *syncTokenFence) SetToken(t gfx.SyncToken) {
	f.mu.Lock()
	f.token = t
	f.mu.Unlock()
	f.Set()
}

func (f *syncTokenFence) Set() {
	f.once.Do(func() { close(f.set) })
}

func (f *syncTokenFence) HasPassed() bool {
	select {
	case <-f.set:
	default:
		return false
	}
	f.mu.Lock()
	t := f.token
	f.mu.Unlock()
	return !t.IsValid() || f.out.IsSyncTokenReleased(t)
}

func (f *syncTokenFence) Wait(ctx context.Context) error {
	select {
	case <-f.set:
	case <-ctx.Done():
		return ctx.Err()
	}
	f.mu.Lock()
	t := f.token
	f.mu.Unlock()
	if !t.IsValid() {
		return nil
	}
	return f.out.WaitSyncToken(ctx, t)
}

var _ resource.Fence = (*syncTokenFence)(nil)
