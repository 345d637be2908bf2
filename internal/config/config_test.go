package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "local", cfg.Env)
	assert.True(t, cfg.Retrieval.EnableExpansion)
	assert.True(t, cfg.Retrieval.EnableVector)
	assert.Equal(t, 6, cfg.Retrieval.DefaultTopK)
	assert.Equal(t, 5, cfg.Retrieval.MaxVariants)
	assert.Equal(t, 300, cfg.Cache.MemoryTTLSecs)
	assert.Equal(t, 86400, cfg.Cache.DiskTTLSecs)
	assert.Equal(t, int64(100<<20), cfg.Cache.MaxSizeBytes)
	assert.Equal(t, 800, cfg.Corpus.ChunkSize)
	assert.Equal(t, 100, cfg.Corpus.ChunkOverlap)

	require.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	t.Run("missing file uses defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, 6, cfg.Retrieval.DefaultTopK)
	})

	t.Run("file overrides only what it sets", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		data := `
retrieval:
  default_top_k: 10
cache:
  memory_ttl_secs: 60
`
		require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 10, cfg.Retrieval.DefaultTopK)
		assert.Equal(t, 60*time.Second, cfg.Cache.MemoryTTL())
		// Untouched fields keep their defaults.
		assert.Equal(t, 86400, cfg.Cache.DiskTTLSecs)
		assert.Equal(t, 0.55, cfg.Retrieval.Weights.Lexical)
	})

	t.Run("malformed yaml is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("retrieval: ["), 0o644))

		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("retrieval:\n  default_top_k: 10\n"), 0o644))
		t.Setenv("RRO_DEFAULT_TOP_K", "3")
		t.Setenv("RRO_ENABLE_VECTOR", "false")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 3, cfg.Retrieval.DefaultTopK)
		assert.False(t, cfg.Retrieval.EnableVector)
	})
}

func TestValidate(t *testing.T) {
	t.Run("weights must sum to one", func(t *testing.T) {
		cfg := Default()
		cfg.Retrieval.Weights.Lexical = 0.9

		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sum to 1.0")
	})

	t.Run("weight out of range", func(t *testing.T) {
		cfg := Default()
		cfg.Retrieval.Weights.Lexical = 1.2
		cfg.Retrieval.Weights.Credibility = -0.2

		assert.Error(t, cfg.Validate())
	})

	t.Run("cache TTLs must be positive when enabled", func(t *testing.T) {
		cfg := Default()
		cfg.Cache.MemoryTTLSecs = 0

		assert.Error(t, cfg.Validate())

		cfg.Cache.Enabled = false
		assert.NoError(t, cfg.Validate())
	})

	t.Run("chunk overlap must be below chunk size", func(t *testing.T) {
		cfg := Default()
		cfg.Corpus.ChunkOverlap = cfg.Corpus.ChunkSize

		assert.Error(t, cfg.Validate())
	})
}
