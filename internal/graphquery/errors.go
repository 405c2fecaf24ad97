// Copyright (C) 2026 Vireo Labs
// Licensed under the GNU Affero General Public License v3.0. See LICENSE.

package graphquery

import (
	"errors"
	"fmt"
)

// ErrNodeNotFound is the sentinel wrapped by [NodeNotFoundError].
var ErrNodeNotFound = errors.New("node not found")

// NodeNotFoundError reports that a query's starting node could not be
// located by id. Mirrors the teacher's SymbolNotFoundError shape,
// renamed to this package's vocabulary.
type NodeNotFoundError struct {
	ID uint64
}

// Error implements the error interface.
func (e *NodeNotFoundError) Error() string {
	return fmt.Sprintf("node %d not found", e.ID)
}

// Unwrap returns the sentinel error.
func (e *NodeNotFoundError) Unwrap() error { return ErrNodeNotFound }
