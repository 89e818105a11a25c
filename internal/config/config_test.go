package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("LLM_BASE_URL", "")
	t.Setenv("LLM_MODEL", "")
	t.Setenv("SURREAL_URL", "")
	t.Setenv("LOG_LEVEL", "")

	cfg := Load()
	assert.Equal(t, "https://api.openai.com/v1", cfg.LLMBaseURL)
	assert.Equal(t, "gpt-4o-mini", cfg.LLMModel)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.ArchiveEnabled())
}

func TestLoadTrimsSurrealRPCSuffix(t *testing.T) {
	t.Setenv("SURREAL_URL", "ws://localhost:8000/rpc")

	cfg := Load()
	assert.Equal(t, "ws://localhost:8000", cfg.SurrealURL)
	assert.True(t, cfg.ArchiveEnabled())
}
