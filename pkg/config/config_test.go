package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
models:
  default_naming: "deepseek-chat"
  definitions:
    deepseek-chat:
      provider: "deepseek"
      model_name: "deepseek-chat"
      api_key: "${TEST_DEEPSEEK_KEY}"
      base_url: "https://api.deepseek.com"
      max_tokens: 2000
      temperature: 0.7
      timeout: 60s
history:
  backend: memory
`

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("AIRENAME_API_KEY", "")
	t.Setenv("AIRENAME_BASE_URL", "")
	t.Setenv("AIRENAME_MAX_FILES", "")
}

func TestParse_ExpandsEnvAndAppliesDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("TEST_DEEPSEEK_KEY", "sk-test")

	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	model, ok := cfg.GetNamingModel("")
	require.True(t, ok)
	assert.Equal(t, "sk-test", model.APIKey)
	assert.Equal(t, 60*time.Second, model.Timeout)

	assert.Equal(t, 3000, cfg.Naming.MaxContentChars)
	assert.Equal(t, 2, cfg.Naming.MinTitleLength)
	assert.Equal(t, 10, cfg.Limits.MaxFiles)
	assert.Equal(t, int64(200<<20), cfg.Limits.MaxFileSize())
	assert.Equal(t, time.Second, cfg.Session.ItemDelay)
	assert.Equal(t, "intellirename_history", cfg.History.Key)
	assert.Equal(t, 50, cfg.History.MaxBatches)
	assert.Equal(t, 24*time.Hour, cfg.History.Window())
	assert.Equal(t, "irAiRename", cfg.Archive.Prefix)
	assert.Equal(t, ":8000", cfg.Server.Addr)
}

func TestParse_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("TEST_DEEPSEEK_KEY", "from-file")
	t.Setenv("AIRENAME_API_KEY", "from-env")
	t.Setenv("AIRENAME_BASE_URL", "http://localhost:9999")
	t.Setenv("AIRENAME_MAX_FILES", "25")

	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	model, _ := cfg.GetNamingModel("")
	assert.Equal(t, "from-env", model.APIKey)
	assert.Equal(t, "http://localhost:9999", model.BaseURL)
	assert.Equal(t, 25, cfg.Limits.MaxFiles)
}

func TestParse_Validation(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "missing default model",
			yaml: "models:\n  definitions: {}\n",
		},
		{
			name: "undefined default model",
			yaml: "models:\n  default_naming: ghost\n",
		},
		{
			name: "s3 backend without bucket",
			yaml: "models:\n  default_naming: m\n  definitions:\n    m:\n      provider: openai\nhistory:\n  backend: s3\ns3:\n  endpoint: localhost:9000\n",
		},
		{
			name: "unknown backend",
			yaml: "models:\n  default_naming: m\n  definitions:\n    m:\n      provider: openai\nhistory:\n  backend: redis\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestLoad_FromDisk(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.History.Backend)
}

func TestDefault(t *testing.T) {
	clearEnv(t)
	t.Setenv("AIRENAME_API_KEY", "sk-default")

	cfg := Default()
	model, ok := cfg.GetNamingModel("")
	require.True(t, ok)
	assert.Equal(t, "sk-default", model.APIKey)
	assert.Equal(t, "memory", cfg.History.Backend)
	assert.Equal(t, 2000, model.MaxTokens)
}
