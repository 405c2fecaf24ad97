// Copyright (C) 2026 Vireo Labs
// Licensed under the GNU Affero General Public License v3.0. See LICENSE.

// Package diff computes a unified diff between two heap snapshots'
// textual renderings, using an LCS line diff (grounded on the teacher's
// services/trace/diff/parse.go) and github.com/sourcegraph/go-diff to
// parse the result back into structured hunks for CLI/tooling display.
package diff

import (
	"fmt"
	"sort"
	"strings"

	godiff "github.com/sourcegraph/go-diff/diff"

	"github.com/vireolabs/cyclegc/internal/graphquery"
	"github.com/vireolabs/cyclegc/internal/snapshot"
)

// Result is a parsed unified diff between two snapshot renderings.
type Result struct {
	// Unified is the raw unified-diff text.
	Unified string

	// Hunks is Unified parsed via sourcegraph/go-diff.
	Hunks []*godiff.Hunk
}

// Compare renders before and after as sorted-by-id node listings and
// returns their unified diff.
func Compare(before, after snapshot.Snapshot) (Result, error) {
	oldLines := renderLines(before)
	newLines := renderLines(after)

	unified := formatUnifiedDiff("snapshot", oldLines, newLines, computeEdits(oldLines, newLines))
	if unified == "" {
		return Result{}, nil
	}

	fileDiffs, err := godiff.ParseMultiFileDiff([]byte(unified))
	if err != nil {
		return Result{}, fmt.Errorf("parsing snapshot diff: %w", err)
	}

	var hunks []*godiff.Hunk
	for _, fd := range fileDiffs {
		hunks = append(hunks, fd.Hunks...)
	}
	return Result{Unified: unified, Hunks: hunks}, nil
}

// renderLines produces a deterministic, line-per-node rendering of a
// snapshot's reachable set, sorted by node id so two snapshots of a
// mostly-unchanged graph diff cleanly.
func renderLines(s snapshot.Snapshot) []string {
	nodes := append([]graphquery.NodeSnapshot(nil), s.Reachable...)
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	lines := make([]string, 0, len(nodes))
	for _, n := range nodes {
		children := append([]uint64(nil), n.Children...)
		sort.Slice(children, func(i, j int) bool { return children[i] < children[j] })
		lines = append(lines, fmt.Sprintf(
			"node %d color=%s count=%d buffered=%t children=%v",
			n.ID, n.Color, n.Count, n.Buffered, children,
		))
	}
	return lines
}

type editKind int

const (
	editEqual editKind = iota
	editInsert
	editDelete
)

type editOp struct {
	kind editKind
	text string
}

// computeEdits computes a minimal LCS-based edit sequence between two
// line slices, the same technique the teacher uses for code diffs.
func computeEdits(oldLines, newLines []string) []editOp {
	m, n := len(oldLines), len(newLines)
	lcs := make([][]int, m+1)
	for i := range lcs {
		lcs[i] = make([]int, n+1)
	}
	for i := m - 1; i >= 0; i-- {
		for j := n - 1; j >= 0; j-- {
			if oldLines[i] == newLines[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else if lcs[i+1][j] >= lcs[i][j+1] {
				lcs[i][j] = lcs[i+1][j]
			} else {
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}

	var edits []editOp
	i, j := 0, 0
	for i < m || j < n {
		switch {
		case i < m && j < n && oldLines[i] == newLines[j]:
			edits = append(edits, editOp{kind: editEqual, text: oldLines[i]})
			i++
			j++
		case j < n && (i >= m || lcs[i][j+1] >= lcs[i+1][j]):
			edits = append(edits, editOp{kind: editInsert, text: newLines[j]})
			j++
		default:
			edits = append(edits, editOp{kind: editDelete, text: oldLines[i]})
			i++
		}
	}
	return edits
}

// formatUnifiedDiff renders edits as a minimal single-hunk unified diff.
// Returns "" if there are no insert/delete edits.
func formatUnifiedDiff(name string, oldLines, newLines []string, edits []editOp) string {
	hasChange := false
	for _, e := range edits {
		if e.kind != editEqual {
			hasChange = true
			break
		}
	}
	if !hasChange {
		return ""
	}

	var body strings.Builder
	for _, e := range edits {
		switch e.kind {
		case editEqual:
			body.WriteString(" " + e.text + "\n")
		case editInsert:
			body.WriteString("+" + e.text + "\n")
		case editDelete:
			body.WriteString("-" + e.text + "\n")
		}
	}

	var out strings.Builder
	fmt.Fprintf(&out, "--- a/%s\n", name)
	fmt.Fprintf(&out, "+++ b/%s\n", name)
	fmt.Fprintf(&out, "@@ -1,%d +1,%d @@\n", len(oldLines), len(newLines))
	out.WriteString(body.String())
	return out.String()
}
