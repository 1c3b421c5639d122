package quad

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/compositor/effect"
	"github.com/gogpu/compositor/geom"
	"github.com/gogpu/compositor/gfx"
)

// Errors reported by RenderPassList.Validate.
var (
	ErrEmptyPassList   = errors.New("quad: empty render pass list")
	ErrInvalidPassID   = errors.New("quad: invalid render pass id")
	ErrDuplicatePass   = errors.New("quad: duplicate render pass id")
	ErrPassOrder       = errors.New("quad: render pass referenced before it is drawn")
	ErrMissingShared   = errors.New("quad: quad without shared state")
	ErrEmptyOutputRect = errors.New("quad: render pass with empty output rect")
)

// RenderPass is an ordered list of quads drawn into one destination.
type RenderPass struct {
	ID RenderPassID
	// OutputRect is the pass extent in its own target space.
	OutputRect image.Rectangle
	// DamageRect is the part of OutputRect that changed since the last
	// frame.
	DamageRect               image.Rectangle
	TransformToRootTarget    geom.Matrix
	HasTransparentBackground bool
	ColorSpace               gfx.ColorSpace
	// Filters apply to the pass content when a RenderPassQuad draws it.
	Filters effect.Operations
	// BackdropFilters apply to what is already drawn beneath the quads
	// that draw this pass.
	BackdropFilters  effect.Operations
	Quads            []DrawQuad
	SharedQuadStates []*SharedQuadState
	CopyRequests     []*CopyOutputRequest
	GenerateMipmap   bool
}

// NewRenderPass returns an empty pass covering output.
func NewRenderPass(id RenderPassID, output image.Rectangle) *RenderPass {
	return &RenderPass{
		ID:                    id,
		OutputRect:            output,
		DamageRect:            output,
		TransformToRootTarget: geom.Identity(),
	}
}

// CreateSharedQuadState appends a new shared state for layer and returns
// it.
func (p *RenderPass) CreateSharedQuadState(layer geom.Rect) *SharedQuadState {
	sqs := NewSharedQuadState(layer)
	p.SharedQuadStates = append(p.SharedQuadStates, sqs)
	return sqs
}

// AppendQuad appends q to the pass.
func (p *RenderPass) AppendQuad(q DrawQuad) {
	p.Quads = append(p.Quads, q)
}

// RenderPassList holds the passes of one frame in draw order. The last
// pass is the root.
type RenderPassList []*RenderPass

// Root returns the last pass, or nil for an empty list.
func (l RenderPassList) Root() *RenderPass {
	if len(l) == 0 {
		return nil
	}
	return l[len(l)-1]
}

// Lookup returns the pass with the given id.
func (l RenderPassList) Lookup(id RenderPassID) (*RenderPass, bool) {
	for _, p := range l {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// Validate checks that ids are valid and unique, that every pass covers
// some pixels, that every quad carries shared state and that every
// RenderPassQuad references a pass drawn before its own.
func (l RenderPassList) Validate() error {
	if len(l) == 0 {
		return ErrEmptyPassList
	}
	seen := make(map[RenderPassID]bool, len(l))
	for i, p := range l {
		if p.ID == 0 {
			return fmt.Errorf("%w: pass %d", ErrInvalidPassID, i)
		}
		if seen[p.ID] {
			return fmt.Errorf("%w: %d", ErrDuplicatePass, p.ID)
		}
		if p.OutputRect.Empty() {
			return fmt.Errorf("%w: %d", ErrEmptyOutputRect, p.ID)
		}
		for j, q := range p.Quads {
			if q.Common().Shared == nil {
				return fmt.Errorf("%w: pass %d quad %d", ErrMissingShared, p.ID, j)
			}
			if rpq, ok := q.(*RenderPassQuad); ok && !seen[rpq.RenderPassID] {
				return fmt.Errorf("%w: pass %d draws %d", ErrPassOrder, p.ID, rpq.RenderPassID)
			}
		}
		seen[p.ID] = true
	}
	return nil
}

// RenderPassRequirements is what a pass needs from its backing.
type RenderPassRequirements struct {
	Size   image.Point
	Mipmap bool
}

// SatisfiedBy reports whether a backing of size with the given mipmap
// state can hold the pass.
func (r RenderPassRequirements) SatisfiedBy(size image.Point, mipmap bool) bool {
	return size.X >= r.Size.X && size.Y >= r.Size.Y && (mipmap || !r.Mipmap)
}

// Requirements returns the backing requirements of every non-root pass.
func (l RenderPassList) Requirements() map[RenderPassID]RenderPassRequirements {
	reqs := make(map[RenderPassID]RenderPassRequirements, len(l))
	for i, p := range l {
		if i == len(l)-1 {
			break
		}
		reqs[p.ID] = RenderPassRequirements{Size: p.OutputRect.Size(), Mipmap: p.GenerateMipmap}
	}
	return reqs
}
