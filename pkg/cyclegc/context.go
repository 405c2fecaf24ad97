// Copyright (C) 2026 Vireo Labs
// Licensed under the GNU Affero General Public License v3.0. See LICENSE.

package cyclegc

import (
	"time"

	"github.com/vireolabs/cyclegc/pkg/logging"
)

// Context owns the root buffer (the suspected-cycle set) and the
// collector's state machine. It has no locking: a Context and every
// Handle/WeakHandle derived from it must be confined to one goroutine
// (spec.md §5).
//
// The zero value is not usable; construct with [NewContext].
type Context struct {
	roots []*Node

	autoCollect bool
	throttle    Throttle

	nextID uint64

	// live indexes every node not yet freed, by ID. It exists purely for
	// introspection (internal/graphquery.Reachable, internal/snapshot) and
	// plays no role in the collection algorithm itself.
	live map[uint64]*Node

	log      *logging.Logger
	recorder Recorder
}

// ContextOption configures a Context at construction time.
type ContextOption func(*Context)

// WithLogger attaches a structured logger. Defaults to [logging.Default].
func WithLogger(l *logging.Logger) ContextOption {
	return func(c *Context) { c.log = l }
}

// WithRecorder attaches an observability [Recorder]. Defaults to a no-op.
func WithRecorder(r Recorder) ContextOption {
	return func(c *Context) { c.recorder = r }
}

// WithThrottle attaches a [Throttle] governing auto-collection. Without
// one, auto-collect (when enabled) runs after every decrement, matching
// the original algorithm exactly.
func WithThrottle(t Throttle) ContextOption {
	return func(c *Context) { c.throttle = t }
}

// NewContext creates a Context with auto-collect enabled by default
// (spec.md §4.1).
func NewContext(opts ...ContextOption) *Context {
	c := &Context{
		autoCollect: true,
		live:        make(map[uint64]*Node),
		log:         logging.Default(),
		recorder:    noopRecorder{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetAutoCollect controls whether CollectCycles runs implicitly after
// each Handle.Destroy decrement (subject to any Throttle).
func (c *Context) SetAutoCollect(on bool) { c.autoCollect = on }

// AutoCollect reports the current auto-collect policy.
func (c *Context) AutoCollect() bool { return c.autoCollect }

// RootBufferLen returns the current size of the suspected-cycle buffer.
// Exposed for introspection and tests; it is not part of the algorithm.
func (c *Context) RootBufferLen() int { return len(c.roots) }

// Roots returns a copy of the nodes currently buffered as suspected cycle
// roots. Exposed for introspection (internal/graphquery, internal/snapshot);
// it is not part of the algorithm and must not be used to mutate the graph.
func (c *Context) Roots() []*Node {
	out := make([]*Node, len(c.roots))
	copy(out, c.roots)
	return out
}

// allocate creates a fresh, unreferenced Node with count 1 and colour
// Black. destroy is invoked on payload exactly once, when the node is
// freed (either immediately on release, or later via collect_white).
func (c *Context) allocate(payload any, destroy func(any)) *Node {
	c.nextID++
	n := &Node{
		id:        c.nextID,
		count:     1,
		color:     Black,
		weakNodes: make(map[*WeakNode]struct{}),
		payload:   payload,
		destroy:   destroy,
	}
	c.live[n.id] = n
	c.recorder.NodeAllocated()
	return n
}

// Lookup returns the live node with the given id, for introspection only.
func (c *Context) Lookup(id uint64) (*Node, bool) {
	n, ok := c.live[id]
	return n, ok
}

// increment implements spec.md §4.1's increment(n).
func (c *Context) increment(n *Node) {
	n.count++
	n.color = Black
}

// decrement implements spec.md §4.1's decrement(n).
func (c *Context) decrement(n *Node) {
	n.count--
	if n.count == 0 {
		c.release(n)
	} else {
		c.possibleRoot(n)
	}
}

// release implements spec.md §4.1's release(n): decrement every child,
// recolour n Black, and free it immediately unless it is buffered (in
// which case freeing is deferred to mark_roots).
func (c *Context) release(n *Node) {
	for _, child := range n.children {
		c.decrement(child)
	}
	n.color = Black
	if !n.buffered {
		c.systemFree(n)
	}
}

// possibleRoot implements spec.md §4.1's possible_root(n).
func (c *Context) possibleRoot(n *Node) {
	if n.color != Purple {
		n.color = Purple
		if !n.buffered {
			n.buffered = true
			c.roots = append(c.roots, n)
			c.recorder.RootBufferSize(len(c.roots))
		}
	}
}

// systemFree implements spec.md §4.1's system_free(n): null every weak
// back-pointer, then run the payload destructor.
func (c *Context) systemFree(n *Node) {
	assertFreeable(n)
	for w := range n.weakNodes {
		w.target = nil
	}
	n.weakNodes = nil
	if n.destroy != nil {
		n.destroy(n.payload)
	}
	n.payload = nil
	delete(c.live, n.id)
	c.recorder.NodeFreed()
	if c.log != nil {
		c.log.WithNode(n.id).Debug("freed")
	}
}

// CollectCycles runs the three-pass trial-deletion algorithm over a
// snapshot of the root buffer (spec.md §4.2). Re-entrant: a destructor
// run during this call may push further nodes into the (live) root
// buffer. Nodes pushed during collect_roots are left for a subsequent
// CollectCycles call; nodes pushed during mark_roots stay buffered until
// collect_roots of this same call clears the buffer, which unbuffers
// them without collecting them.
func (c *Context) CollectCycles() {
	if len(c.roots) == 0 {
		return
	}

	t0 := time.Now()
	c.markRoots()
	c.recorder.CollectionPass("mark_roots", time.Since(t0))

	t1 := time.Now()
	snapshot := append([]*Node(nil), c.roots...)
	c.scanRoots(snapshot)
	c.recorder.CollectionPass("scan_roots", time.Since(t1))

	t2 := time.Now()
	freed := c.collectRoots()
	c.recorder.CollectionPass("collect_roots", time.Since(t2))
	c.recorder.CyclesCollected(freed)

	if c.log != nil {
		c.log.Debug("collect_cycles complete", "freed", freed, "root_buffer_remaining", len(c.roots))
	}
}

// maybeCollect is invoked by Handle.Destroy after a decrement, when
// auto-collect is on. It defers to the configured Throttle, if any.
func (c *Context) maybeCollect() {
	if !c.autoCollect {
		return
	}
	if c.throttle != nil && !c.throttle.Allow() {
		return
	}
	c.CollectCycles()
}

// markRoots is pass 1 (spec.md §4.2). It mutates c.roots in place,
// removing every node that isn't a genuine Purple suspect.
func (c *Context) markRoots() {
	snapshot := append([]*Node(nil), c.roots...)
	live := c.roots[:0]
	for _, s := range snapshot {
		if s.color == Purple && s.count > 0 {
			c.markGray(s)
			live = append(live, s)
			continue
		}

		s.buffered = false
		if s.color == Purple && s.count == 0 {
			// spec.md §9 open question: a Purple node never legitimately
			// reaches count == 0 here, because decrement always routes
			// through release (which recolours Black) before a count can
			// settle at zero. Assert the invariant rather than act on it.
			assertPurpleNeverZeroHere(s)
			continue
		}
		if s.color == Black && s.count == 0 {
			c.systemFree(s)
		}
	}
	// Nodes pushed by destructors run above sit past the snapshot's
	// length; keep them buffered for a later call.
	if len(c.roots) > len(snapshot) {
		live = append(live, c.roots[len(snapshot):]...)
	}
	c.roots = live
	c.recorder.RootBufferSize(len(c.roots))
}

// markGray recursively colours s and its transitive children Gray,
// subtracting each child's internal-edge contribution (trial deletion).
func (c *Context) markGray(s *Node) {
	if s.color == Gray {
		return
	}
	s.color = Gray
	for _, child := range s.children {
		child.count--
		c.markGray(child)
	}
}

// scanRoots is pass 2 (spec.md §4.2): scan every node in the snapshot
// taken before mark_roots mutated the buffer.
func (c *Context) scanRoots(snapshot []*Node) {
	for _, s := range snapshot {
		c.scan(s)
	}
}

// scan implements spec.md §4.2's scan(s).
func (c *Context) scan(s *Node) {
	if s.color != Gray {
		return
	}
	if s.count > 0 {
		c.scanBlack(s)
		return
	}
	s.color = White
	for _, child := range s.children {
		c.scan(child)
	}
}

// scanBlack implements spec.md §4.2's scan_black(s): externally live,
// restore the node and its still-suspect descendants to Black, adding
// back the internal-edge count mark_gray subtracted.
func (c *Context) scanBlack(s *Node) {
	s.color = Black
	for _, child := range s.children {
		child.count++
		if child.color != Black {
			c.scanBlack(child)
		}
	}
}

// collectRoots is pass 3 (spec.md §4.2). It snapshots and clears the
// buffer, then frees every reachable White node.
func (c *Context) collectRoots() (freed int) {
	snapshot := append([]*Node(nil), c.roots...)
	c.roots = nil
	c.recorder.RootBufferSize(0)
	for _, s := range snapshot {
		s.buffered = false
		freed += c.collectWhite(s)
	}
	return freed
}

// collectWhite implements spec.md §4.2's collect_white(s): free any
// White, non-buffered node, recursing into children first and recolouring
// Black immediately before freeing to prevent double visits through
// shared descendants within this pass.
func (c *Context) collectWhite(s *Node) (freed int) {
	if s.color != White || s.buffered {
		return 0
	}
	s.color = Black
	for _, child := range s.children {
		freed += c.collectWhite(child)
	}
	c.systemFree(s)
	return freed + 1
}
