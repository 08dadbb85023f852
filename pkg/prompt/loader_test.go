package prompt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const namingPrompt = `
config:
  temperature: 0.3
  max_tokens: 300
messages:
  - role: system
    content: "Ты помощник по именованию файлов."
  - role: user
    content: "Файл: {{.OriginalName}}\n{{.Content}}"
`

func TestLoadAndRender(t *testing.T) {
	path := filepath.Join(t.TempDir(), "naming.yaml")
	require.NoError(t, os.WriteFile(path, []byte(namingPrompt), 0o644))

	pf, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 300, pf.Config.MaxTokens)

	msgs, err := pf.RenderMessages(map[string]string{
		"OriginalName": "report.docx",
		"Content":      "Квартальный бюджет",
	})
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].Role)
	assert.Equal(t, "Файл: report.docx\nКвартальный бюджет", msgs[1].Content)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "prompt file not found")

	_, err = Parse([]byte("config: {}\n"))
	assert.ErrorContains(t, err, "no messages")

	_, err = Parse([]byte("messages:\n  - role: user\n    content: \"{{.Broken\"\n"))
	assert.ErrorContains(t, err, "template parse error")
}

func TestRender_MissingKey(t *testing.T) {
	pf, err := Parse([]byte(namingPrompt))
	require.NoError(t, err)

	_, err = pf.RenderMessages(map[string]string{"OriginalName": "a.txt"})
	assert.Error(t, err)
}
