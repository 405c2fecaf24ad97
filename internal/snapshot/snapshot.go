// Copyright (C) 2026 Vireo Labs
// Licensed under the GNU Affero General Public License v3.0. See LICENSE.

// Package snapshot models a point-in-time, JSON-serializable dump of a
// [pkg/cyclegc.Context]'s root buffer and reachable graph. It supplements
// the original Rust implementation's test-harness graph dumps (used there
// to assert collector state) with a stable wire format for external
// tooling: the CLI's `snapshot dump`/`snapshot diff` subcommands, the
// debug server's `GET /graph` endpoint, and `internal/snapshot/export`'s
// GCS upload.
package snapshot

import (
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"

	"github.com/vireolabs/cyclegc/internal/graphquery"
	"github.com/vireolabs/cyclegc/pkg/cyclegc"
)

// Snapshot is the top-level serializable record.
type Snapshot struct {
	// ID uniquely identifies this snapshot, for correlation across the
	// CLI, server, and export storage.
	ID uuid.UUID `json:"id"`

	// TakenAt is when the snapshot was captured. strfmt.DateTime marshals
	// as RFC3339, matching the teacher's use of go-openapi types for
	// wire-stable timestamp fields.
	TakenAt strfmt.DateTime `json:"taken_at"`

	// Label is an optional caller-supplied annotation (e.g. "before GET
	// /expensive-handler", "after load test").
	Label string `json:"label,omitempty"`

	// Roots is every node currently buffered as a suspected cycle root.
	Roots []graphquery.NodeSnapshot `json:"roots"`

	// Reachable is the full set of nodes reachable by walking child edges
	// from every root, deduplicated by id.
	Reachable []graphquery.NodeSnapshot `json:"reachable"`
}

// Capture builds a Snapshot of ctx's current state. label may be empty.
func Capture(ctx *cyclegc.Context, label string) Snapshot {
	q := graphquery.NewQuerier(ctx)
	roots := q.Roots()

	seen := make(map[uint64]bool, len(roots))
	var reachable []graphquery.NodeSnapshot
	for _, r := range roots {
		if seen[r.ID] {
			continue
		}
		nodes, err := q.Reachable(r.ID)
		if err != nil {
			// The root buffer and the live registry are populated by the
			// same Context under the no-concurrency invariant (spec.md §5);
			// a root id missing from the registry would mean they had
			// already drifted apart, which Capture has no way to repair.
			continue
		}
		for _, n := range nodes {
			if seen[n.ID] {
				continue
			}
			seen[n.ID] = true
			reachable = append(reachable, n)
		}
	}

	return Snapshot{
		ID:        uuid.New(),
		TakenAt:   strfmt.DateTime(time.Now().UTC()),
		Label:     label,
		Roots:     roots,
		Reachable: reachable,
	}
}
