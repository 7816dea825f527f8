package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  url: postgres://localhost\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "supabase", cfg.Store)
	assert.Equal(t, 4000, cfg.RAG.ChunkSize)
	assert.Equal(t, 200, cfg.RAG.ChunkOverlap)
	assert.Equal(t, 0.7, cfg.RAG.MatchThreshold)
	assert.Equal(t, 8, cfg.RAG.MatchCount)
	assert.Equal(t, 10, cfg.RAG.BatchSize)
	assert.Equal(t, 0.1, cfg.InferLLM.Temperature)
	assert.Equal(t, 1000, cfg.InferLLM.MaxTokens)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
store: local
local:
  path: /tmp/vectors
  in_memory: true
rag:
  chunk_size: 1000
  chunk_overlap: 100
  match_threshold: 0.5
  match_count: 4
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "local", cfg.Store)
	assert.True(t, cfg.Local.InMemory)
	assert.Equal(t, 1000, cfg.RAG.ChunkSize)
	assert.Equal(t, 0.5, cfg.RAG.MatchThreshold)
	assert.Equal(t, 4, cfg.RAG.MatchCount)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig("/does/not/exist.yaml")
	assert.Error(t, err)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store: [unclosed"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
