// Package config defines the structured configuration for the material
// retrieval core. Every option has a default that leaves the subsystem
// fully functional with nothing set; validation happens exactly once at
// load time and never mid-query.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// RankingWeights are the fusion weights for the composite relevance
// score. They must sum to 1.0.
type RankingWeights struct {
	Lexical     float64 `yaml:"lexical"`
	DocWeight   float64 `yaml:"doc_weight"`
	DocLength   float64 `yaml:"doc_length"`
	Credibility float64 `yaml:"source_credibility"`
}

// RetrievalConfig configures query expansion, vector augmentation and ranking.
type RetrievalConfig struct {
	EnableExpansion bool           `yaml:"enable_query_expansion"`
	MaxVariants     int            `yaml:"max_query_variants"`
	EnableVector    bool           `yaml:"enable_vector"`
	DefaultTopK     int            `yaml:"default_top_k"`
	SynonymsPath    string         `yaml:"synonyms_path"`
	Weights         RankingWeights `yaml:"ranking_weights"`
}

// CacheConfig configures the two-tier query cache.
type CacheConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Dir           string `yaml:"dir"`
	MemoryTTLSecs int    `yaml:"memory_ttl_secs"`
	DiskTTLSecs   int    `yaml:"disk_ttl_secs"`
	MaxSizeBytes  int64  `yaml:"max_size_bytes"`
	MemoryEntries int    `yaml:"memory_entries"`
}

// AnalyticsConfig configures the append-only query log.
type AnalyticsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// CorpusConfig configures material loading.
type CorpusConfig struct {
	MaterialDir  string `yaml:"material_dir"`
	ChunkSize    int    `yaml:"chunk_size"`
	ChunkOverlap int    `yaml:"chunk_overlap"`
}

// Config is the root configuration structure.
type Config struct {
	Env       string          `yaml:"env"`
	LogLevel  string          `yaml:"log_level"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Cache     CacheConfig     `yaml:"cache"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Corpus    CorpusConfig    `yaml:"corpus"`
}

// MemoryTTL returns the memory tier TTL as a duration.
func (c CacheConfig) MemoryTTL() time.Duration {
	return time.Duration(c.MemoryTTLSecs) * time.Second
}

// DiskTTL returns the disk tier TTL as a duration.
func (c CacheConfig) DiskTTL() time.Duration {
	return time.Duration(c.DiskTTLSecs) * time.Second
}

// Default returns the configuration used when no file and no environment
// variables are set.
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	base := filepath.Join(home, ".reportmat")

	return &Config{
		Env:      "local",
		LogLevel: "",
		Retrieval: RetrievalConfig{
			EnableExpansion: true,
			MaxVariants:     5,
			EnableVector:    true,
			DefaultTopK:     6,
			Weights: RankingWeights{
				Lexical:     0.55,
				DocWeight:   0.15,
				DocLength:   0.10,
				Credibility: 0.20,
			},
		},
		Cache: CacheConfig{
			Enabled:       true,
			Dir:           filepath.Join(base, "cache"),
			MemoryTTLSecs: 300,
			DiskTTLSecs:   86400,
			MaxSizeBytes:  100 << 20,
			MemoryEntries: 1000,
		},
		Analytics: AnalyticsConfig{
			Enabled: true,
			Path:    filepath.Join(base, "analytics.db"),
		},
		Corpus: CorpusConfig{
			MaterialDir:  "./materials",
			ChunkSize:    800,
			ChunkOverlap: 100,
		},
	}
}

// Load reads the config file at path (if it exists), applies environment
// overrides on top of defaults, and validates the result. An empty path
// skips the file step.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for invalid combinations. It is the
// only place configuration errors are raised; a validated Config is safe
// for the lifetime of the process.
func (c *Config) Validate() error {
	w := c.Retrieval.Weights
	for name, v := range map[string]float64{
		"lexical":            w.Lexical,
		"doc_weight":         w.DocWeight,
		"doc_length":         w.DocLength,
		"source_credibility": w.Credibility,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("ranking weight %s must be in [0,1], got %v", name, v)
		}
	}
	sum := w.Lexical + w.DocWeight + w.DocLength + w.Credibility
	if math.Abs(sum-1.0) > 1e-6 {
		return fmt.Errorf("ranking weights must sum to 1.0, got %v", sum)
	}

	if c.Retrieval.MaxVariants < 1 {
		return fmt.Errorf("max_query_variants must be >= 1, got %d", c.Retrieval.MaxVariants)
	}
	if c.Retrieval.DefaultTopK < 1 {
		return fmt.Errorf("default_top_k must be >= 1, got %d", c.Retrieval.DefaultTopK)
	}

	if c.Cache.Enabled {
		if c.Cache.MemoryTTLSecs <= 0 || c.Cache.DiskTTLSecs <= 0 {
			return fmt.Errorf("cache TTLs must be positive, got memory=%ds disk=%ds",
				c.Cache.MemoryTTLSecs, c.Cache.DiskTTLSecs)
		}
		if c.Cache.MaxSizeBytes <= 0 {
			return fmt.Errorf("cache max_size_bytes must be positive, got %d", c.Cache.MaxSizeBytes)
		}
		if c.Cache.MemoryEntries <= 0 {
			return fmt.Errorf("cache memory_entries must be positive, got %d", c.Cache.MemoryEntries)
		}
	}

	if c.Corpus.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", c.Corpus.ChunkSize)
	}
	if c.Corpus.ChunkOverlap < 0 || c.Corpus.ChunkOverlap >= c.Corpus.ChunkSize {
		return fmt.Errorf("chunk_overlap must be in [0, chunk_size), got %d", c.Corpus.ChunkOverlap)
	}

	return nil
}

// applyEnv overrides config values from RRO_* environment variables.
func applyEnv(c *Config) {
	envString("RRO_ENV", &c.Env)
	envString("RRO_LOG_LEVEL", &c.LogLevel)

	envBool("RRO_ENABLE_QUERY_EXPANSION", &c.Retrieval.EnableExpansion)
	envInt("RRO_MAX_QUERY_VARIANTS", &c.Retrieval.MaxVariants)
	envBool("RRO_ENABLE_VECTOR", &c.Retrieval.EnableVector)
	envInt("RRO_DEFAULT_TOP_K", &c.Retrieval.DefaultTopK)
	envString("RRO_SYNONYMS_PATH", &c.Retrieval.SynonymsPath)
	envFloat("RRO_WEIGHT_LEXICAL", &c.Retrieval.Weights.Lexical)
	envFloat("RRO_WEIGHT_DOC_WEIGHT", &c.Retrieval.Weights.DocWeight)
	envFloat("RRO_WEIGHT_DOC_LENGTH", &c.Retrieval.Weights.DocLength)
	envFloat("RRO_WEIGHT_CREDIBILITY", &c.Retrieval.Weights.Credibility)

	envBool("RRO_ENABLE_CACHE", &c.Cache.Enabled)
	envString("RRO_CACHE_DIR", &c.Cache.Dir)
	envInt("RRO_MEMORY_TTL", &c.Cache.MemoryTTLSecs)
	envInt("RRO_DISK_TTL", &c.Cache.DiskTTLSecs)
	envInt64("RRO_MAX_CACHE_SIZE", &c.Cache.MaxSizeBytes)
	envInt("RRO_CACHE_MEMORY_ENTRIES", &c.Cache.MemoryEntries)

	envBool("RRO_ENABLE_QUERY_LOG", &c.Analytics.Enabled)
	envString("RRO_QUERY_LOG_PATH", &c.Analytics.Path)

	envString("RRO_MATERIAL_DIR", &c.Corpus.MaterialDir)
	envInt("RRO_CHUNK_SIZE", &c.Corpus.ChunkSize)
	envInt("RRO_CHUNK_OVERLAP", &c.Corpus.ChunkOverlap)
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envInt64(key string, dst *int64) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func envFloat(key string, dst *float64) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}
