package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "env-key")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
llm:
  model: gemini-3-flash-preview
retry:
  max: 2
  base_delay: 500ms
cache:
  ttl: 1h
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "env-key", cfg.LLM.APIKey)
	assert.Equal(t, "gemini-3-flash-preview", cfg.LLM.Model)
	assert.InDelta(t, 0.5, cfg.LLM.Temperature, 1e-6)
	assert.Equal(t, 2, cfg.Retry.Max)
	assert.Equal(t, 500*time.Millisecond, cfg.Retry.BaseDelay)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 60, cfg.Concurrency.RPM)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestApplyEnvKeepsExplicitKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "from-env")

	cfg := &Config{LLM: LLMConfig{Provider: "openai", APIKey: "from-file"}}
	cfg.ApplyEnv()
	assert.Equal(t, "from-file", cfg.LLM.APIKey)

	cfg = &Config{LLM: LLMConfig{Provider: "openai"}}
	cfg.ApplyEnv()
	assert.Equal(t, "from-env", cfg.LLM.APIKey)
}
