// Copyright (C) 2026 Vireo Labs
// Licensed under the GNU Affero General Public License v3.0. See LICENSE.

// Package graphquery provides read-only introspection over a running
// [pkg/cyclegc.Context]'s object graph: the current root buffer, BFS
// reachability from an arbitrary node, and suspected-cycle detection.
//
// Every query here walks the same [pkg/cyclegc.Node.Children] edges the
// collector itself traverses, using [pkg/cyclegc.Node]'s exported
// accessors. None of it mutates colour, count, or buffering — that
// belongs exclusively to the owning Context.
package graphquery
