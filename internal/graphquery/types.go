// Copyright (C) 2026 Vireo Labs
// Licensed under the GNU Affero General Public License v3.0. See LICENSE.

package graphquery

import "github.com/vireolabs/cyclegc/pkg/cyclegc"

// NodeSnapshot is a point-in-time, copyable view of one Node, safe to
// hand outside the owning Context (used directly by internal/snapshot's
// JSON model, and returned from every query in this package).
type NodeSnapshot struct {
	ID       uint64   `json:"id"`
	Color    string   `json:"color"`
	Count    int      `json:"count"`
	Buffered bool     `json:"buffered"`
	Children []uint64 `json:"children"`
}

func snapshotOf(n *cyclegc.Node) NodeSnapshot {
	children := n.Children()
	ids := make([]uint64, len(children))
	for i, c := range children {
		ids[i] = c.ID()
	}
	return NodeSnapshot{
		ID:       n.ID(),
		Color:    n.ColorOf().String(),
		Count:    n.Count(),
		Buffered: n.Buffered(),
		Children: ids,
	}
}

// DefaultMaxDepth caps BFS traversal depth absent an explicit limit,
// guarding against runaway walks over a pathological graph.
const DefaultMaxDepth = 10000
