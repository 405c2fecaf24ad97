//go:build !cyclegc_debug

// Copyright (C) 2026 Vireo Labs
// Licensed under the GNU Affero General Public License v3.0. See LICENSE.

package cyclegc

// Release builds skip the invariant checks entirely (spec.md §7:
// "unchecked in release builds").

func assertFreeable(*Node) {}

func assertPurpleNeverZeroHere(*Node) {}
