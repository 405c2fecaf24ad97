// Copyright (C) 2026 Vireo Labs
// Licensed under the GNU Affero General Public License v3.0. See LICENSE.

package cyclegc

// WeakNode is the indirection record backing a [WeakHandle]. Its address
// is stable for its lifetime, which is what lets a Node null out every
// WeakNode that targets it (via weakNodes) without needing to track the
// individual WeakHandle copies that share it.
//
// One WeakNode is allocated per call to [Handle.Downgrade]; it is not
// shared across WeakHandle copies obtained by cloning an existing
// WeakHandle (matching the simpler of the two strategies spec.md §9
// allows).
type WeakNode struct {
	// target is the Node this weak reference points at, or nil once the
	// target has been freed.
	target *Node
}

// Target reports the node this weak reference currently points at, or
// nil if the target has already been reclaimed.
func (w *WeakNode) Target() *Node { return w.target }
