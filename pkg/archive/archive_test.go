package archive

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkoid/airename/pkg/config"
)

func fixedExporter(t *testing.T) *Exporter {
	t.Helper()
	e, err := NewExporter(config.ArchiveConfig{Location: "UTC"}, WithClock(func() time.Time {
		return time.Date(2024, 10, 3, 14, 5, 9, 0, time.UTC)
	}))
	require.NoError(t, err)
	return e
}

func readZip(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	out := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		body, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		out[f.Name] = string(body)
	}
	return out
}

func TestFinalName(t *testing.T) {
	tests := []struct {
		name string
		item Item
		want string
	}{
		{"edited wins", Item{OriginalName: "a.docx", SuggestedName: "Plan", EditedName: "My Plan"}, "My Plan.docx"},
		{"suggested", Item{OriginalName: "a.docx", SuggestedName: "Plan"}, "Plan.docx"},
		{"original", Item{OriginalName: "a.docx"}, "a.docx"},
		{"extension kept", Item{OriginalName: "a.docx", EditedName: "Plan.DOCX"}, "Plan.DOCX"},
		{"no extension", Item{OriginalName: "README", EditedName: "Readme file"}, "Readme file"},
		{"blank edited", Item{OriginalName: "a.pdf", SuggestedName: "Scan", EditedName: "  "}, "Scan.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FinalName(tt.item))
		})
	}
}

func TestExport_Empty(t *testing.T) {
	_, err := fixedExporter(t).Export(nil)
	assert.True(t, errors.Is(err, ErrEmptySelection))
}

func TestExport_ReportScenario(t *testing.T) {
	data := bytes.Repeat([]byte("x"), 400<<10)
	a, err := fixedExporter(t).Export([]Item{
		{OriginalName: "report.docx", SuggestedName: "Q3 Budget Review", EditedName: "Q3 Budget Review", Data: data},
	})
	require.NoError(t, err)

	assert.Equal(t, "irAiRename20241003_140509.zip", a.Name)
	files := readZip(t, a.Data)
	require.Contains(t, files, "Q3 Budget Review.docx")
	assert.Len(t, files["Q3 Budget Review.docx"], len(data))
	assert.Equal(t, []Entry{{OriginalName: "report.docx", Name: "Q3 Budget Review.docx"}}, a.Entries)
}

func TestExport_CollisionsAndContentFallback(t *testing.T) {
	a, err := fixedExporter(t).Export([]Item{
		{OriginalName: "a.txt", EditedName: "Notes", Data: []byte("A")},
		{OriginalName: "b.txt", EditedName: "notes", Data: []byte("B")},
		{OriginalName: "c.txt", EditedName: "Notes", Content: "C text"},
	})
	require.NoError(t, err)

	files := readZip(t, a.Data)
	assert.Len(t, files, 3)
	assert.Equal(t, "A", files["Notes.txt"])
	assert.Equal(t, "B", files["notes (2).txt"])
	assert.Equal(t, "C text", files["Notes (3).txt"])
}

func TestArchive_Save(t *testing.T) {
	a, err := fixedExporter(t).Export([]Item{{OriginalName: "a.txt", Data: []byte("A")}})
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "out")
	path, err := a.Save(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, a.Name), path)

	saved, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, a.Data, saved)
}

type recordingStore struct {
	key         string
	data        []byte
	contentType string
}

func (r *recordingStore) Upload(_ context.Context, key string, data []byte, contentType string) error {
	r.key, r.data, r.contentType = key, data, contentType
	return nil
}

func (r *recordingStore) Download(context.Context, string) ([]byte, error) { return nil, nil }

func (r *recordingStore) Remove(context.Context, string) error { return nil }

func TestArchive_Publish(t *testing.T) {
	a, err := fixedExporter(t).Export([]Item{{OriginalName: "a.txt", Data: []byte("A")}})
	require.NoError(t, err)

	store := &recordingStore{}
	key, err := a.Publish(context.Background(), store, "archives")
	require.NoError(t, err)

	assert.Equal(t, "archives/irAiRename20241003_140509.zip", key)
	assert.Equal(t, key, store.key)
	assert.Equal(t, "application/zip", store.contentType)
	assert.Equal(t, a.Data, store.data)
}

func TestNewExporter_BadLocation(t *testing.T) {
	_, err := NewExporter(config.ArchiveConfig{Location: "Mars/Olympus"})
	assert.Error(t, err)
}
