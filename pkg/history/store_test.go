package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkoid/airename/pkg/config"
	"github.com/ilkoid/airename/pkg/kvstore"
)

const key = "intellirename_history"

func newTestStore(t *testing.T) (*Store, *kvstore.Memory) {
	t.Helper()
	kv := kvstore.NewMemory()
	return NewStore(kv, config.HistoryConfig{}), kv
}

func seed(t *testing.T, kv kvstore.Store, batches []LegacyBatch) {
	t.Helper()
	raw, err := json.Marshal(batches)
	require.NoError(t, err)
	require.NoError(t, kv.Set(context.Background(), key, raw))
}

func stored(t *testing.T, kv kvstore.Store) []LegacyBatch {
	t.Helper()
	raw, err := kv.Get(context.Background(), key)
	require.NoError(t, err)
	var batches []LegacyBatch
	require.NoError(t, json.Unmarshal(raw, &batches))
	return batches
}

func TestLoad_EmptyAndCorrupt(t *testing.T) {
	ctx := context.Background()
	s, kv := newTestStore(t)

	records, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	require.NoError(t, kv.Set(ctx, key, []byte("{not json")))
	records, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLoad_LegacyBatch(t *testing.T) {
	s, kv := newTestStore(t)
	seed(t, kv, sampleBatches()[1:])

	records, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, records[0].BatchID, records[2].BatchID)
	assert.Equal(t, records[0].Timestamp, records[2].Timestamp)
}

func TestAppendBatch(t *testing.T) {
	ctx := context.Background()
	s, kv := newTestStore(t)
	seed(t, kv, sampleBatches())

	ts := time.UnixMilli(5000)
	id, err := s.AppendBatch(ctx, []Entry{
		{OriginalName: "report.docx", NewName: "Q3 Budget Review.docx"},
	}, ts)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	batches := stored(t, kv)
	require.Len(t, batches, 3)
	assert.Equal(t, id, batches[0].ID)
	assert.Equal(t, int64(5000), batches[0].Timestamp)
	assert.Equal(t, []string{"report.docx"}, batches[0].OriginalFiles)
	assert.Equal(t, 1, batches[0].TotalFiles)
	assert.Equal(t, "b2", batches[1].ID)
}

func TestAppendBatch_Empty(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.AppendBatch(context.Background(), nil, time.Now())
	assert.True(t, errors.Is(err, ErrEmptySelection))
}

func TestAppendBatch_OverwritesCorrupt(t *testing.T) {
	ctx := context.Background()
	s, kv := newTestStore(t)
	require.NoError(t, kv.Set(ctx, key, []byte("garbage")))

	_, err := s.AppendBatch(ctx, []Entry{{OriginalName: "a.txt", NewName: "A"}}, time.Now())
	require.NoError(t, err)
	assert.Len(t, stored(t, kv), 1)
}

func TestAppendBatch_TruncatesToFifty(t *testing.T) {
	s, kv := newTestStore(t)

	var batches []LegacyBatch
	for i := 59; i >= 0; i-- {
		batches = append(batches, LegacyBatch{
			ID:             fmt.Sprintf("old-%02d", i),
			Timestamp:      int64(i),
			OriginalFiles:  []string{"f.txt"},
			ProcessedFiles: []ProcessedFile{{OriginalName: "f.txt", NewName: "F"}},
			TotalFiles:     1,
		})
	}
	seed(t, kv, batches)

	id, err := s.AppendBatch(context.Background(), []Entry{{OriginalName: "n.txt", NewName: "N"}}, time.UnixMilli(100))
	require.NoError(t, err)

	got := stored(t, kv)
	require.Len(t, got, 50)
	assert.Equal(t, id, got[0].ID)
	assert.Equal(t, "old-59", got[1].ID)
	assert.Equal(t, "old-11", got[49].ID)
}

func TestDeleteSelected(t *testing.T) {
	ctx := context.Background()
	s, kv := newTestStore(t)
	seed(t, kv, sampleBatches())

	_, err := s.DeleteSelected(ctx, nil)
	assert.True(t, errors.Is(err, ErrEmptySelection))

	n, err := s.DeleteSelected(ctx, []string{"b2_0", "b2_1", "b1_1"})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	batches := stored(t, kv)
	require.Len(t, batches, 1)
	assert.Equal(t, "b1", batches[0].ID)
	assert.Equal(t, []string{"a.docx", "c.txt"}, batches[0].OriginalFiles)
}

func TestClearFiltered_LeavesComplement(t *testing.T) {
	ctx := context.Background()
	s, kv := newTestStore(t)

	now := time.Now()
	recent := now.Add(-time.Hour).UnixMilli()
	old := now.Add(-48 * time.Hour).UnixMilli()
	seed(t, kv, []LegacyBatch{
		{ID: "recent", Timestamp: recent, OriginalFiles: []string{"a"}, ProcessedFiles: []ProcessedFile{{OriginalName: "a", NewName: "A"}}, TotalFiles: 1},
		{ID: "old", Timestamp: old, OriginalFiles: []string{"b", "c"}, ProcessedFiles: []ProcessedFile{{OriginalName: "b", NewName: "B"}, {OriginalName: "c", NewName: "C"}}, TotalFiles: 2},
	})

	all, err := s.Load(ctx)
	require.NoError(t, err)
	inWindow := FilterWindow(all, now, 24*time.Hour)

	n, err := s.ClearFiltered(ctx, now, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, len(inWindow), n)

	left, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, left, 2)
	for _, r := range left {
		assert.Equal(t, "old", r.BatchID)
	}
}

func TestClearFiltered_NoWindowRemovesKey(t *testing.T) {
	ctx := context.Background()
	s, kv := newTestStore(t)
	seed(t, kv, sampleBatches())

	n, err := s.ClearFiltered(ctx, time.Now(), 0)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	_, err = kv.Get(ctx, key)
	assert.True(t, errors.Is(err, kvstore.ErrNotFound))
}

func TestClearAll(t *testing.T) {
	ctx := context.Background()
	s, kv := newTestStore(t)
	seed(t, kv, sampleBatches())

	require.NoError(t, s.ClearAll(ctx))
	_, err := kv.Get(ctx, key)
	assert.True(t, errors.Is(err, kvstore.ErrNotFound))
}
