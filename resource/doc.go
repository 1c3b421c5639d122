// Package resource is the compositor side of externally owned pixel
// resources: the [Provider] interface the compositor locks resources
// through, the per-frame [LockSet] used when draws are recorded for later
// execution, read-lock fences, and conversion of planar YUV content to
// RGBA.
//
// Two lock flavors exist. A read lock ([Provider.LockForRead]) hands out
// resident pixels for the duration of a draw and is used by the immediate
// backend and for software-backed resources. An external-use lock
// ([Provider.LockForExternalUse]) only returns [Metadata]; the pixels are
// fetched later by whoever executes the recorded draws, and the lock is
// released with the [gfx.SyncToken] that marks the end of that execution.
//
// [MemoryProvider] keeps resources in process memory. It serves tests, the
// demo and any host that composites CPU-produced content.
package resource
