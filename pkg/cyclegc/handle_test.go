// Copyright (C) 2026 Vireo Labs
// Licensed under the GNU Affero General Public License v3.0. See LICENSE.

package cyclegc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandle_Deref_TypeMismatch_Panics(t *testing.T) {
	ctx := NewContext()
	h := Allocate(ctx, 7)

	defer func() {
		r := recover()
		require.NotNil(t, r, "Deref with the wrong type must panic")
	}()

	// h.node is known to hold an int; force the mismatch via a sibling
	// Handle type over the same node to exercise the type assertion.
	mismatched := Handle[string]{ctx: h.ctx, node: h.node}
	_ = mismatched.Deref()
}

func TestHandle_AddChild_Idempotent(t *testing.T) {
	ctx := NewContext()
	parent := Allocate(ctx, "parent")
	child := Allocate(ctx, "child")

	parent.AddChild(child.Node())
	parent.AddChild(child.Node())

	assert.Len(t, parent.Node().Children(), 1, "add_child must be idempotent on pointer equality")
}

func TestHandle_RemoveChild(t *testing.T) {
	ctx := NewContext()
	parent := Allocate(ctx, "parent")
	child := Allocate(ctx, "child")

	parent.AddChild(child.Node())
	require.Len(t, parent.Node().Children(), 1)

	parent.RemoveChild(child.Node())
	assert.Empty(t, parent.Node().Children())
}

func TestHandle_Downgrade_Upgrade_RoundTrip(t *testing.T) {
	ctx := NewContext()
	h := Allocate(ctx, "target")

	w := h.Downgrade()
	upgraded, ok := w.Upgrade()
	require.True(t, ok)
	assert.Equal(t, "target", upgraded.Deref())
	assert.Equal(t, 2, h.Node().Count(), "Upgrade incremented the target")

	upgraded.Destroy()
}

func TestWeakHandle_Upgrade_AfterFree_ReturnsFalse(t *testing.T) {
	ctx := NewContext()
	h := Allocate(ctx, "target")
	w := h.Downgrade()

	h.Destroy()

	_, ok := w.Upgrade()
	assert.False(t, ok, "Upgrade after the target is freed must report ok == false")
}

func TestWeakHandle_Destroy_UnregistersFromLiveTarget(t *testing.T) {
	ctx := NewContext()
	h := Allocate(ctx, "target")
	w := h.Downgrade()

	w.Destroy()

	// Freeing the target now must not touch a dangling WeakNode entry.
	assert.NotPanics(t, func() { h.Destroy() })
}

func TestWeakHandle_Copy_AllocatesIndependentWeakNode(t *testing.T) {
	ctx := NewContext()
	h := Allocate(ctx, "target")
	w1 := h.Downgrade()
	w2 := w1.Copy()

	w1.Destroy()

	// w2 must still resolve even though w1 (a distinct WeakNode) was
	// destroyed first.
	_, ok := w2.Upgrade()
	assert.True(t, ok)
}
