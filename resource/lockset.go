package resource

import (
	"github.com/gogpu/compositor/gfx"
	"github.com/gogpu/compositor/quad"
)

// LockSet holds the external-use locks taken while recording one frame.
// Each resource is locked at most once; all locks are released together
// with the sync token of the recording that reads them.
type LockSet struct {
	provider Provider
	ids      []quad.ResourceID
	metadata map[quad.ResourceID]Metadata
}

// NewLockSet returns an empty lock set over p.
func NewLockSet(p Provider) *LockSet {
	return &LockSet{provider: p, metadata: make(map[quad.ResourceID]Metadata)}
}

// Lock locks id for external use, or returns the metadata of the lock
// already held.
func (s *LockSet) Lock(id quad.ResourceID) (Metadata, error) {
	if md, ok := s.metadata[id]; ok {
		return md, nil
	}
	md, err := s.provider.LockForExternalUse(id)
	if err != nil {
		return Metadata{}, err
	}
	s.ids = append(s.ids, id)
	s.metadata[id] = md
	return md, nil
}

// Len returns the number of locked resources.
func (s *LockSet) Len() int { return len(s.ids) }

// UnlockAll releases every lock with token and empties the set.
func (s *LockSet) UnlockAll(token gfx.SyncToken) {
	if len(s.ids) == 0 {
		return
	}
	s.provider.UnlockForExternalUse(s.ids, token)
	s.ids = nil
	clear(s.metadata)
}

// YUVIDs names the planes of one video frame. It is comparable and keys
// per-frame caches of converted frames.
type YUVIDs struct {
	Y, U, V, A quad.ResourceID
}

// IsNV12 reports whether chroma is one interleaved plane, which is the
// case when U and V name the same resource.
func (ids YUVIDs) IsNV12() bool { return ids.U == ids.V }

// Planes returns the distinct color planes in Y, U, V order. The alpha
// plane is not included.
func (ids YUVIDs) Planes() []quad.ResourceID {
	if ids.IsNV12() {
		return []quad.ResourceID{ids.Y, ids.U}
	}
	return []quad.ResourceID{ids.Y, ids.U, ids.V}
}

// HasAlpha reports whether an alpha plane is named.
func (ids YUVIDs) HasAlpha() bool { return ids.A.IsValid() }
