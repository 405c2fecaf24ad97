// Copyright (C) 2026 Vireo Labs
// Licensed under the GNU Affero General Public License v3.0. See LICENSE.

package cyclegc

// WeakHandle is a non-owning reference: holding one does not keep the
// target alive and does not participate in cycle detection (spec.md
// §4.4). Obtain one from [Handle.Downgrade].
type WeakHandle[T any] struct {
	ctx  *Context
	weak *WeakNode
}

// Valid reports whether w was ever bound to a node (false only for the
// zero value; a WeakHandle whose target has since been freed is still
// Valid, it just Upgrades to ok == false).
func (w WeakHandle[T]) Valid() bool { return w.weak != nil }

// Copy returns a new WeakHandle. Weak references are not refcounted, so
// this allocates a fresh WeakNode registered against the same target
// rather than sharing w's (spec.md §9: "allocate a fresh WeakNode per
// Downgrade call", the simpler of the two strategies the spec considers).
func (w WeakHandle[T]) Copy() WeakHandle[T] {
	if w.weak.target == nil {
		return WeakHandle[T]{ctx: w.ctx, weak: &WeakNode{}}
	}
	nw := &WeakNode{target: w.weak.target}
	w.weak.target.weakNodes[nw] = struct{}{}
	return WeakHandle[T]{ctx: w.ctx, weak: nw}
}

// Destroy unregisters w from its target, if the target is still alive.
// After Destroy, w must not be used again.
func (w WeakHandle[T]) Destroy() {
	if w.weak.target != nil {
		delete(w.weak.target.weakNodes, w.weak)
	}
}

// Upgrade attempts to produce a new owning Handle to the target,
// incrementing its count. ok is false if the target has already been
// freed (spec.md §4.4).
func (w WeakHandle[T]) Upgrade() (h Handle[T], ok bool) {
	target := w.weak.Target()
	if target == nil {
		return Handle[T]{}, false
	}
	w.ctx.increment(target)
	return Handle[T]{ctx: w.ctx, node: target}, true
}
