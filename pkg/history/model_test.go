package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBatches() []LegacyBatch {
	return []LegacyBatch{
		{
			ID:            "b2",
			Timestamp:     2000,
			OriginalFiles: []string{"scan.PDF", "notes"},
			ProcessedFiles: []ProcessedFile{
				{OriginalName: "scan.PDF", NewName: "Invoice March"},
				{OriginalName: "notes", NewName: "Meeting Notes"},
			},
			TotalFiles: 2,
		},
		{
			ID:            "b1",
			Timestamp:     1000,
			OriginalFiles: []string{"a.docx", "b.xlsx", "c.txt"},
			ProcessedFiles: []ProcessedFile{
				{OriginalName: "a.docx", NewName: "Q3 Budget Review"},
				{OriginalName: "b.xlsx", NewName: "Sales 2024"},
				{OriginalName: "c.txt", NewName: "Todo"},
			},
			TotalFiles: 3,
		},
	}
}

func TestExpand(t *testing.T) {
	records := Expand(sampleBatches())
	require.Len(t, records, 5)

	assert.Equal(t, Record{
		ID: "b2_0", BatchID: "b2", Timestamp: 2000,
		OriginalName: "scan.PDF", NewName: "Invoice March", FileExtension: "pdf",
	}, records[0])
	assert.Equal(t, "", records[1].FileExtension)
	assert.Equal(t, "b1_2", records[4].ID)
}

func TestExpand_SingleLegacyBatch(t *testing.T) {
	records := Expand(sampleBatches()[1:])
	require.Len(t, records, 3)
	for _, r := range records {
		assert.Equal(t, "b1", r.BatchID)
		assert.Equal(t, int64(1000), r.Timestamp)
	}
}

func TestCollapse_RoundTrip(t *testing.T) {
	first := Expand(sampleBatches())
	again := Expand(Collapse(first))
	assert.Equal(t, first, again)

	collapsed := Collapse(first)
	assert.Equal(t, sampleBatches(), collapsed)
}

func TestCollapse_AfterDeletion(t *testing.T) {
	records := Expand(sampleBatches())
	kept := append([]Record{}, records[0], records[2], records[4])

	batches := Collapse(kept)
	require.Len(t, batches, 2)
	assert.Equal(t, 1, batches[0].TotalFiles)
	assert.Equal(t, []string{"a.docx", "c.txt"}, batches[1].OriginalFiles)
	assert.Equal(t, 2, batches[1].TotalFiles)

	// Повторное развёртывание стабильно
	assert.Equal(t, Expand(batches), Expand(Collapse(Expand(batches))))
}

func TestFilterWindow(t *testing.T) {
	now := time.UnixMilli(100_000_000)
	day := 24 * time.Hour
	records := []Record{
		{ID: "new", Timestamp: now.UnixMilli()},
		{ID: "edge", Timestamp: now.Add(-day).UnixMilli()},
		{ID: "old", Timestamp: now.Add(-day).UnixMilli() - 1},
	}

	got := FilterWindow(records, now, day)
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[0].ID)
	assert.Equal(t, "edge", got[1].ID)

	assert.Len(t, FilterWindow(records, now, 0), 3)
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "docx", Extension("Report.DOCX"))
	assert.Equal(t, "gz", Extension("a.tar.gz"))
	assert.Equal(t, "", Extension("README"))
}

func TestSelect(t *testing.T) {
	records := Expand(sampleBatches())
	got := Select(records, []string{"b1_1", "b2_0", "missing"})
	require.Len(t, got, 2)
	assert.Equal(t, "b2_0", got[0].ID)
	assert.Equal(t, "b1_1", got[1].ID)
}
