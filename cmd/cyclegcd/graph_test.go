// Copyright (C) 2026 Vireo Labs
// Licensed under the GNU Affero General Public License v3.0. See LICENSE.

package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vireolabs/cyclegc/internal/graphquery"
)

func TestFindCycles_DetectsSimpleCycle(t *testing.T) {
	nodes := []graphquery.NodeSnapshot{
		{ID: 1, Children: []uint64{2}},
		{ID: 2, Children: []uint64{1}},
	}

	cycles := findCycles(nodes)

	require.Len(t, cycles, 1)
	assert.Len(t, cycles[0], 2)
}

func TestFindCycles_NoCycleInLinearChain(t *testing.T) {
	nodes := []graphquery.NodeSnapshot{
		{ID: 1, Children: []uint64{2}},
		{ID: 2, Children: []uint64{3}},
		{ID: 3, Children: nil},
	}

	assert.Empty(t, findCycles(nodes))
}

func TestFetchGraph_DecodesServerResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/graph", r.URL.Path)
		_ = json.NewEncoder(w).Encode(remoteSnapshot{
			Label: "test",
			Roots: []graphquery.NodeSnapshot{{ID: 7, Color: "purple"}},
		})
	}))
	defer srv.Close()

	snap, err := fetchGraph(srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "test", snap.Label)
	require.Len(t, snap.Roots, 1)
	assert.Equal(t, uint64(7), snap.Roots[0].ID)
}

func TestFetchGraph_PropagatesHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := fetchGraph(srv.URL)

	assert.Error(t, err)
}
