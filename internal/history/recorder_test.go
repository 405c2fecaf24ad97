// Copyright (C) 2026 Vireo Labs
// Licensed under the GNU Affero General Public License v3.0. See LICENSE.

package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_PersistsOneRecordPerCollectCycle(t *testing.T) {
	store := openTestStore(t)
	r := NewRecorder(store, nil)

	r.RootBufferSize(7)
	r.CollectionPass("mark_roots", 1*time.Millisecond)
	r.CollectionPass("scan_roots", 2*time.Millisecond)
	r.CollectionPass("collect_roots", 3*time.Millisecond)
	r.CyclesCollected(4)

	records, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, 7, rec.RootsScanned)
	assert.Equal(t, 4, rec.NodesFreed)
	assert.Equal(t, 6*time.Millisecond, rec.TotalDuration())
	assert.False(t, rec.TakenAt.IsZero())
}

func TestRecorder_SeparateCallsProduceSeparateRecords(t *testing.T) {
	store := openTestStore(t)
	r := NewRecorder(store, nil)

	r.CollectionPass("mark_roots", time.Millisecond)
	r.CyclesCollected(1)

	r.CollectionPass("mark_roots", time.Millisecond)
	r.CyclesCollected(2)

	records, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 1, records[0].NodesFreed)
	assert.Equal(t, 2, records[1].NodesFreed)
}
