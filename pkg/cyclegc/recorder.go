// Copyright (C) 2026 Vireo Labs
// Licensed under the GNU Affero General Public License v3.0. See LICENSE.

package cyclegc

import "time"

// Recorder receives observability events from a Context. It is the seam
// internal/telemetry hooks into (OTel metrics + spans); the core
// algorithm never imports a metrics or tracing library directly, so a
// host that only wants the collector can omit telemetry entirely.
//
// All methods must return quickly: they are called synchronously from
// inside Allocate/Increment/Decrement/CollectCycles.
type Recorder interface {
	// NodeAllocated is called once per Allocate.
	NodeAllocated()

	// NodeFreed is called once per systemFree.
	NodeFreed()

	// RootBufferSize reports the buffer size after it changes.
	RootBufferSize(n int)

	// CollectionPass reports the wall-clock duration of one named pass
	// ("mark_roots", "scan_roots", "collect_roots") within a
	// CollectCycles call.
	CollectionPass(pass string, d time.Duration)

	// CyclesCollected reports how many nodes a CollectCycles call freed
	// via collect_white (i.e. genuine cycle garbage, as opposed to nodes
	// freed by an ordinary release).
	CyclesCollected(n int)
}

// noopRecorder discards every event. It is the default Recorder so that
// telemetry wiring is opt-in.
type noopRecorder struct{}

func (noopRecorder) NodeAllocated()                       {}
func (noopRecorder) NodeFreed()                           {}
func (noopRecorder) RootBufferSize(int)                   {}
func (noopRecorder) CollectionPass(string, time.Duration) {}
func (noopRecorder) CyclesCollected(int)                  {}

// Throttle decides whether an auto-triggered CollectCycles call should
// actually run. It exists to answer spec.md §9's open question (calling
// collect_cycles after every decrement is quadratic on large deletion
// waves) without changing observable semantics: a throttled decrement
// still buffers its node as a possible root, so a later collection pass
// (manual, or the next one the throttle allows) still reclaims it.
//
// The default Context has no Throttle and collects after every decrement
// when auto-collect is on, matching the original algorithm exactly.
type Throttle interface {
	// Allow reports whether a CollectCycles run may proceed now.
	Allow() bool
}
