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

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Config{InMemory: true, Session: "test"})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_AppendAssignsIncreasingSeqNums(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	seq1, err := s.Append(ctx, Record{NodesFreed: 1})
	require.NoError(t, err)
	seq2, err := s.Append(ctx, Record{NodesFreed: 2})
	require.NoError(t, err)

	assert.Less(t, seq1, seq2)
}

func TestStore_ListReturnsRecordsInOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := s.Append(ctx, Record{
			NodesFreed: i,
			Passes:     []PassTiming{{Pass: "mark_roots", Duration: time.Millisecond}},
		})
		require.NoError(t, err)
	}

	records, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i, rec := range records {
		assert.Equal(t, i, rec.NodesFreed)
		assert.Equal(t, time.Millisecond, rec.TotalDuration())
	}
}

func TestStore_PruneKeepsOnlyMostRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := s.Append(ctx, Record{NodesFreed: i})
		require.NoError(t, err)
	}

	require.NoError(t, s.Prune(ctx, 2))

	records, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 3, records[0].NodesFreed)
	assert.Equal(t, 4, records[1].NodesFreed)
}

func TestStore_PruneNoopWhenUnderLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Append(ctx, Record{NodesFreed: 1})
	require.NoError(t, err)

	require.NoError(t, s.Prune(ctx, 10))

	records, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestStore_SeqNumSurvivesReopenOnDisk(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s1, err := Open(Config{Path: dir, Session: "test"})
	require.NoError(t, err)
	seq1, err := s1.Append(ctx, Record{NodesFreed: 1})
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(Config{Path: dir, Session: "test"})
	require.NoError(t, err)
	defer s2.Close()
	seq2, err := s2.Append(ctx, Record{NodesFreed: 2})
	require.NoError(t, err)

	assert.Less(t, seq1, seq2)
}
