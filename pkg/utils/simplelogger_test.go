package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_WritesKeyValues(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, InitLogger(LoggerOptions{Dir: dir}))
	t.Cleanup(Close)

	Info("file processed", "name", "report.docx", "state", "ready")
	Warn("odd pair", "dangling")

	matches, err := filepath.Glob(filepath.Join(dir, "airename-*.log"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "INFO: Logger initialized")
	assert.Contains(t, content, "INFO: file processed name=report.docx state=ready")
	assert.Contains(t, content, "WARN: odd pair\n")
}

func TestLogger_NoopBeforeInit(t *testing.T) {
	Close()
	assert.NotPanics(t, func() {
		Error("dropped", "k", "v")
	})
}
