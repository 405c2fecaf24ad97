// Copyright (C) 2026 Vireo Labs
// Licensed under the GNU Affero General Public License v3.0. See LICENSE.

// Package cyclegc implements a pure reference-counting garbage collector
// with synchronous trial-deletion cycle detection, as described by Bacon,
// Attanasio, Rajan & Smith, "A Pure Reference Counting Garbage Collector".
//
// # Model
//
// A [Context] owns a root buffer of suspected cycle roots and allocates
// [Node] records. User code never touches a Node directly; it holds a
// [Handle], a typed owning reference obtained from [Allocate]. Handles
// declare edges between nodes explicitly via [Handle.AddChild] /
// [Handle.RemoveChild] — the collector does not scan payload memory, so an
// edge only exists in the graph the collector traverses if the host
// declares it.
//
// Dropping the last Handle to a node frees it immediately if it has no
// remaining references. If it does (because it may be part of a cycle),
// the node is buffered as a possible root and reclaimed later by
// [Context.CollectCycles], which runs the three-pass trial-deletion
// algorithm: mark_roots, scan_roots, collect_roots.
//
// # Concurrency
//
// A Context and every Handle/WeakHandle derived from it must be confined
// to a single goroutine. No internal locking is performed; concurrent use
// from multiple goroutines is undefined behaviour. A handle's destructor
// may itself create or drop further handles (when a payload's destruction
// recursively releases its own children) — this is fully supported, since
// every pass snapshots the root buffer before iterating it.
//
// # Debug assertions
//
// Building with the cyclegc_debug tag enables internal invariant checks
// (e.g. every node passed to systemFree has count == 0 and is not present
// in the root buffer). These assertions are compiled out by default.
package cyclegc
