// Copyright (C) 2026 Vireo Labs
// Licensed under the GNU Affero General Public License v3.0. See LICENSE.

package cyclegc

// Color is the transient marker a Node carries during trial deletion.
type Color int

const (
	// Black means in use, or not currently suspected of being part of a
	// garbage cycle. Every freshly allocated node, and every node whose
	// count was just incremented, is Black.
	Black Color = iota

	// Purple means the node is a suspected cycle root: it was the target
	// of a decrement that left count > 0, and is queued in the root
	// buffer awaiting collect_cycles.
	Purple

	// Gray means mark_gray has tentatively subtracted this node's
	// internal-edge contribution to its children's counts.
	Gray

	// White means scan found the node provisionally garbage: every
	// remaining reference to it is internal to the candidate cycle.
	White
)

// String returns the name used in logs and snapshots.
func (c Color) String() string {
	switch c {
	case Black:
		return "black"
	case Purple:
		return "purple"
	case Gray:
		return "gray"
	case White:
		return "white"
	default:
		return "unknown"
	}
}
