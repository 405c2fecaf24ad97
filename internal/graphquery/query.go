// Copyright (C) 2026 Vireo Labs
// Licensed under the GNU Affero General Public License v3.0. See LICENSE.

package graphquery

import "github.com/vireolabs/cyclegc/pkg/cyclegc"

// Querier executes read-only queries against a single Context's graph.
type Querier struct {
	ctx      *cyclegc.Context
	maxDepth int
}

// Option configures a Querier.
type Option func(*Querier)

// WithMaxDepth overrides DefaultMaxDepth for Reachable traversals.
func WithMaxDepth(depth int) Option {
	return func(q *Querier) { q.maxDepth = depth }
}

// NewQuerier wraps ctx for introspection. ctx must outlive the Querier.
func NewQuerier(ctx *cyclegc.Context, opts ...Option) *Querier {
	q := &Querier{ctx: ctx, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Roots returns a snapshot of every node currently buffered as a
// suspected cycle root.
func (q *Querier) Roots() []NodeSnapshot {
	roots := q.ctx.Roots()
	out := make([]NodeSnapshot, len(roots))
	for i, n := range roots {
		out[i] = snapshotOf(n)
	}
	return out
}

// Reachable performs BFS over child edges starting at the node with the
// given id, returning every node reached (including the start node).
func (q *Querier) Reachable(id uint64) ([]NodeSnapshot, error) {
	start, ok := q.ctx.Lookup(id)
	if !ok {
		return nil, &NodeNotFoundError{ID: id}
	}

	visited := map[uint64]bool{start.ID(): true}
	queue := []*cyclegc.Node{start}
	out := []NodeSnapshot{snapshotOf(start)}

	for depth := 0; len(queue) > 0 && depth < q.maxDepth; depth++ {
		var next []*cyclegc.Node
		for _, n := range queue {
			for _, child := range n.Children() {
				if visited[child.ID()] {
					continue
				}
				visited[child.ID()] = true
				out = append(out, snapshotOf(child))
				next = append(next, child)
			}
		}
		queue = next
	}
	return out, nil
}

// FindCycles reports structural cycles reachable from the current root
// buffer: a sequence of nodes where following child edges returns to an
// earlier node in the same walk. Each node is walked at most once across
// all roots, so one cycle is reported per back edge found; a cycle that
// can only be reached through an already-walked node is not reported
// separately, so the result is not every cycle. It does not require the cycle to have
// already been identified as garbage by CollectCycles — this is a pure
// graph-shape query, independent of reference counts or colour, useful
// for diagnosing a leak before (or instead of) waiting for the collector.
func (q *Querier) FindCycles() [][]NodeSnapshot {
	var cycles [][]NodeSnapshot
	seen := map[uint64]bool{}

	for _, root := range q.ctx.Roots() {
		if seen[root.ID()] {
			continue
		}
		onStack := map[uint64]int{}
		var stack []*cyclegc.Node
		var walk func(n *cyclegc.Node)
		walk = func(n *cyclegc.Node) {
			if idx, ok := onStack[n.ID()]; ok {
				cycle := make([]NodeSnapshot, 0, len(stack)-idx)
				for _, s := range stack[idx:] {
					cycle = append(cycle, snapshotOf(s))
				}
				cycles = append(cycles, cycle)
				return
			}
			if seen[n.ID()] {
				return
			}
			seen[n.ID()] = true
			onStack[n.ID()] = len(stack)
			stack = append(stack, n)
			for _, child := range n.Children() {
				walk(child)
			}
			stack = stack[:len(stack)-1]
			delete(onStack, n.ID())
		}
		walk(root)
	}
	return cycles
}
