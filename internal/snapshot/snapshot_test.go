// Copyright (C) 2026 Vireo Labs
// Licensed under the GNU Affero General Public License v3.0. See LICENSE.

package snapshot

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vireolabs/cyclegc/pkg/cyclegc"
)

type thing struct{ name string }

func TestCapture_EmptyContext(t *testing.T) {
	ctx := cyclegc.NewContext()
	snap := Capture(ctx, "empty")

	assert.Equal(t, "empty", snap.Label)
	assert.Empty(t, snap.Roots)
	assert.Empty(t, snap.Reachable)
	assert.NotZero(t, snap.ID)
}

func TestCapture_WalksFromEveryRoot(t *testing.T) {
	ctx := cyclegc.NewContext()
	ctx.SetAutoCollect(false)

	a := cyclegc.Allocate(ctx, &thing{"a"})
	b := cyclegc.Allocate(ctx, &thing{"b"})
	a.AddChild(b.Copy().Node())
	b.AddChild(a.Copy().Node())
	a.Destroy()
	b.Destroy()

	snap := Capture(ctx, "")
	assert.Len(t, snap.Roots, 2)
	assert.Len(t, snap.Reachable, 2)
}

func TestSnapshot_JSONRoundTrip(t *testing.T) {
	ctx := cyclegc.NewContext()
	ctx.SetAutoCollect(false)
	a := cyclegc.Allocate(ctx, &thing{"a"})
	a.Destroy()

	snap := Capture(ctx, "rt")
	data, err := json.Marshal(snap)
	require.NoError(t, err)

	var reloaded Snapshot
	require.NoError(t, json.Unmarshal(data, &reloaded))
	assert.Equal(t, snap.ID, reloaded.ID)
	assert.Equal(t, snap.Label, reloaded.Label)
}
