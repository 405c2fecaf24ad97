// Copyright (C) 2026 Vireo Labs
// Licensed under the GNU Affero General Public License v3.0. See LICENSE.

package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vireolabs/cyclegc/internal/graphquery"
	"github.com/vireolabs/cyclegc/internal/snapshot"
)

func TestCompare_IdenticalSnapshots_EmptyResult(t *testing.T) {
	s := snapshot.Snapshot{Reachable: []graphquery.NodeSnapshot{
		{ID: 1, Color: "black", Count: 1},
	}}

	result, err := Compare(s, s)
	require.NoError(t, err)
	assert.Empty(t, result.Unified)
	assert.Empty(t, result.Hunks)
}

func TestCompare_DetectsAddedNode(t *testing.T) {
	before := snapshot.Snapshot{Reachable: []graphquery.NodeSnapshot{
		{ID: 1, Color: "black", Count: 1},
	}}
	after := snapshot.Snapshot{Reachable: []graphquery.NodeSnapshot{
		{ID: 1, Color: "black", Count: 1},
		{ID: 2, Color: "purple", Count: 1},
	}}

	result, err := Compare(before, after)
	require.NoError(t, err)
	assert.Contains(t, result.Unified, "+node 2")
	require.Len(t, result.Hunks, 1)
}

func TestCompare_DetectsColorChange(t *testing.T) {
	before := snapshot.Snapshot{Reachable: []graphquery.NodeSnapshot{
		{ID: 1, Color: "black", Count: 1},
	}}
	after := snapshot.Snapshot{Reachable: []graphquery.NodeSnapshot{
		{ID: 1, Color: "purple", Count: 1},
	}}

	result, err := Compare(before, after)
	require.NoError(t, err)
	assert.Contains(t, result.Unified, "-node 1 color=black")
	assert.Contains(t, result.Unified, "+node 1 color=purple")
}
