// Copyright (C) 2026 Vireo Labs
// Licensed under the GNU Affero General Public License v3.0. See LICENSE.

// Package history persists a log of collection-pass records to an
// embedded badger/v4 store, grounded on the teacher's
// services/trace/agent/mcts/crs/journal.go (CRC32-checked, gob-encoded,
// sequence-numbered entries) and services/trace/graph/analytics.go
// (structured run records). It is purely additive instrumentation: it
// observes CollectCycles, it never participates in the algorithm.
package history

import "time"

// PassTiming records how long a single collection pass took.
type PassTiming struct {
	Pass     string        `json:"pass"`
	Duration time.Duration `json:"duration"`
}

// Record is one CollectCycles call's history entry.
type Record struct {
	// SeqNum is assigned by the Store on Append.
	SeqNum uint64 `json:"seq_num"`

	// TakenAt is when the collection pass completed.
	TakenAt time.Time `json:"taken_at"`

	// RootsScanned is the root buffer size once mark_roots has dropped
	// non-suspects, i.e. the number of roots scan_roots visits.
	RootsScanned int `json:"roots_scanned"`

	// NodesFreed is how many nodes CollectCycles freed via collect_white.
	NodesFreed int `json:"nodes_freed"`

	// Passes breaks the call down by algorithm phase.
	Passes []PassTiming `json:"passes"`
}

// TotalDuration sums every pass's duration.
func (r Record) TotalDuration() time.Duration {
	var total time.Duration
	for _, p := range r.Passes {
		total += p.Duration
	}
	return total
}
