// Copyright (C) 2026 Vireo Labs
// Licensed under the GNU Affero General Public License v3.0. See LICENSE.

package history

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vireolabs/cyclegc/pkg/cyclegc"
)

// Recorder implements cyclegc.Recorder, aggregating the per-pass events
// of one CollectCycles call into a single Record and appending it to a
// Store. It mirrors internal/telemetry.OtelRecorder's reconstruction
// trick: "mark_roots" opens a new record, CyclesCollected closes and
// persists it, since CollectCycles itself takes no context.Context.
type Recorder struct {
	store  *Store
	logger *slog.Logger

	mu      sync.Mutex
	current Record
	roots   int
}

// NewRecorder wraps store. logger defaults to slog.Default() if nil.
func NewRecorder(store *Store, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{store: store, logger: logger}
}

// NodeAllocated is a no-op; allocation counts belong to internal/telemetry.
func (r *Recorder) NodeAllocated() {}

// NodeFreed is a no-op; see NodeAllocated.
func (r *Recorder) NodeFreed() {}

// RootBufferSize records the latest reported root buffer size. The size
// reported at the end of mark_roots is the one the next "mark_roots"
// CollectionPass copies into RootsScanned.
func (r *Recorder) RootBufferSize(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roots = n
}

// CollectionPass appends pass to the in-progress record, starting a new
// one on "mark_roots" (always the first pass of a CollectCycles call).
func (r *Recorder) CollectionPass(pass string, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if pass == "mark_roots" {
		r.current = Record{RootsScanned: r.roots}
	}
	r.current.Passes = append(r.current.Passes, PassTiming{Pass: pass, Duration: d})
}

// CyclesCollected finalizes the in-progress record and persists it.
func (r *Recorder) CyclesCollected(n int) {
	r.mu.Lock()
	rec := r.current
	r.current = Record{}
	r.mu.Unlock()

	rec.NodesFreed = n
	rec.TakenAt = time.Now().UTC()

	if _, err := r.store.Append(context.Background(), rec); err != nil {
		r.logger.Warn("failed to persist collection history record", slog.String("error", err.Error()))
	}
}

var _ cyclegc.Recorder = (*Recorder)(nil)
