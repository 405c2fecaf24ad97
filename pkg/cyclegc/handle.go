// Copyright (C) 2026 Vireo Labs
// Licensed under the GNU Affero General Public License v3.0. See LICENSE.

package cyclegc

import "fmt"

// Destroyable may be implemented by a payload type that needs to run
// cleanup when its Node is freed — most commonly, dropping further
// Handles it owns as fields (spec.md §4.5: "the Node's payload is then
// destroyed... which typically drop[s] further Handles and therefore may
// recursively invoke the Context"). Payloads that don't need cleanup
// simply don't implement it.
type Destroyable interface {
	OnDestroy()
}

// Sensitive may be implemented by a payload holding secret material. Its
// Wipe method runs immediately before OnDestroy, giving the payload a
// chance to zero its own backing memory. The collector has no opinion on
// how Wipe is implemented; internal/secure provides a memguard-backed
// helper for payloads that want one.
type Sensitive interface {
	Wipe()
}

// Handle is a typed, owning reference to a Node's payload. Copying a
// Handle increments the target's refcount; destroying one decrements it.
// The zero value is not usable; obtain a Handle from [Allocate] or from
// an existing Handle's [Handle.Copy]/[WeakHandle.Upgrade].
type Handle[T any] struct {
	ctx  *Context
	node *Node
}

// Allocate creates a new Node holding payload and returns an owning
// Handle over it, with count == 1 and colour Black (spec.md §4.1).
func Allocate[T any](ctx *Context, payload T) Handle[T] {
	node := ctx.allocate(payload, func(p any) {
		if s, ok := p.(Sensitive); ok {
			s.Wipe()
		}
		if d, ok := p.(Destroyable); ok {
			d.OnDestroy()
		}
	})
	return Handle[T]{ctx: ctx, node: node}
}

// Valid reports whether h refers to a node (false only for the zero
// value).
func (h Handle[T]) Valid() bool { return h.node != nil }

// Node exposes the underlying heap record for introspection (snapshots,
// graph queries, metrics). It does not grant ownership.
func (h Handle[T]) Node() *Node { return h.node }

// Copy increments the target's count and returns a new Handle sharing
// the same context and node (spec.md §4.3).
func (h Handle[T]) Copy() Handle[T] {
	h.ctx.increment(h.node)
	return Handle[T]{ctx: h.ctx, node: h.node}
}

// Destroy decrements the target's count and, if the Context's
// auto-collect policy is on, runs CollectCycles afterward. This is the
// synchronous-with-handle-drops behaviour that makes the collector "pure
// reference counting" from the caller's perspective (spec.md §4.3).
//
// After Destroy, h must not be used again.
func (h Handle[T]) Destroy() {
	h.ctx.decrement(h.node)
	h.ctx.maybeCollect()
}

// Deref returns the payload. Panics if the node was not allocated with
// payload type T — spec.md §7 treats this as a programming error, fatal
// by design, not a recoverable condition.
func (h Handle[T]) Deref() T {
	v, ok := h.node.payload.(T)
	if !ok {
		panic(fmt.Sprintf("cyclegc: Deref type mismatch: node %d holds %T, requested %T", h.node.id, h.node.payload, v))
	}
	return v
}

// AddChild idempotently records a structural edge from h's node to
// child's node. It does not adjust refcounts: child's count already
// reflects any outstanding Handles, and this call only records the edge
// the collector will traverse (spec.md §4.3).
func (h Handle[T]) AddChild(child *Node) {
	h.node.addChild(child)
}

// RemoveChild removes every edge from h's node to child.
func (h Handle[T]) RemoveChild(child *Node) {
	h.node.removeChild(child)
}

// Downgrade allocates a WeakNode targeting h's node, registers it in the
// node's weak set, and returns a non-owning WeakHandle (spec.md §4.3).
func (h Handle[T]) Downgrade() WeakHandle[T] {
	w := &WeakNode{target: h.node}
	h.node.weakNodes[w] = struct{}{}
	return WeakHandle[T]{ctx: h.ctx, weak: w}
}
