package history

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExport_Single(t *testing.T) {
	loc := time.FixedZone("MSK", 3*3600)
	now := time.Date(2024, 3, 5, 9, 7, 2, 0, loc)
	rec := Record{
		ID: "b_0", OriginalName: "a.docx", NewName: "Plan",
		Timestamp: time.Date(2024, 3, 4, 18, 30, 0, 0, loc).UnixMilli(),
	}

	f, err := Export([]Record{rec}, "irAiRename_history_", now, loc)
	require.NoError(t, err)

	assert.Equal(t, "irAiRename_history_20240305_090702.txt", f.Name)
	assert.Equal(t, "Original name: a.docx\nNew name: Plan\nProcessed at: 2024/03/04 18:30\n", string(f.Data))
	assert.Contains(t, f.ContentType, "text/plain")
}

func TestExport_CSV(t *testing.T) {
	loc := time.UTC
	now := time.Date(2024, 3, 5, 9, 7, 2, 0, loc)
	ts := time.Date(2024, 3, 4, 18, 30, 0, 0, loc).UnixMilli()

	f, err := Export([]Record{
		{OriginalName: "a.docx", NewName: `Plan "v2"`, Timestamp: ts},
		{OriginalName: "b, c.txt", NewName: "Notes", Timestamp: ts},
	}, "h_", now, loc)
	require.NoError(t, err)

	assert.Equal(t, "h_20240305_090702.csv", f.Name)
	want := "originalName,newName,processedAt\n" +
		`"a.docx","Plan ""v2""","2024/03/04 18:30"` + "\n" +
		`"b, c.txt","Notes","2024/03/04 18:30"`
	assert.Equal(t, want, string(f.Data))
}

func TestExport_Empty(t *testing.T) {
	_, err := Export(nil, "h_", time.Now(), nil)
	assert.True(t, errors.Is(err, ErrEmptySelection))
}
