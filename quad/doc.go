// Package quad is the data model handed to the compositor every frame: an
// ordered list of render passes, each holding draw quads that share
// per-layer state, plus the backing requirements of every pass and the
// copy-output requests attached to them.
//
// [DrawQuad] is a closed sum type. Only the variants declared here
// implement it, so a type switch over them is exhaustive:
//
//	switch q := dq.(type) {
//	case *quad.SolidColorQuad:
//	    ...
//	case *quad.RenderPassQuad:
//	    ...
//	}
//
// Render passes form a DAG through [RenderPassQuad]. A [RenderPassList] is
// ordered so that every referenced pass comes before its referrers; the
// root pass is last. [RenderPassList.Validate] checks this.
package quad
