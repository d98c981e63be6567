// Package config loads repodoc's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/smartdocgen/repodoc/pkg/types"
)

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	ChunkSize int `yaml:"chunk_size"`
	Overlap   int `yaml:"overlap"`
}

// EmbedderConfig selects the embedding provider.
type EmbedderConfig struct {
	Provider  string `yaml:"provider"` // local, openai, jina
	Model     string `yaml:"model,omitempty"`
	CacheSize int    `yaml:"cache_size"`
}

// RetrievalConfig configures context retrieval.
type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

// ScannerConfig configures the repository walker.
type ScannerConfig struct {
	MaxFileSizeMB int `yaml:"max_file_size_mb"`
}

// GenerationConfig configures the documentation model.
type GenerationConfig struct {
	Model string `yaml:"model"`
}

// AppConfig is the root configuration structure.
type AppConfig struct {
	Chunker    ChunkerConfig    `yaml:"chunker"`
	Embedder   EmbedderConfig   `yaml:"embedder"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Scanner    ScannerConfig    `yaml:"scanner"`
	Generation GenerationConfig `yaml:"generation"`
	IndexPath  string           `yaml:"index_path,omitempty"`
}

// Load reads a config from the given path. A missing file returns
// defaults; a malformed file is an error.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("%w: %v", types.ErrConfiguration, err)
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrConfiguration, err)
	}
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDefault tries ./repodoc.yaml first, then
// ~/.config/repodoc/config.yaml, falling back to defaults.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "repodoc.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}

	userPath, err := defaultUserConfigPath()
	if err == nil {
		if _, statErr := os.Stat(userPath); statErr == nil {
			cfg, loadErr := Load(userPath)
			return cfg, userPath, loadErr
		}
	}

	return Default(), "", nil
}

// Save writes the config to the given path, creating directories as
// needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks cross-field constraints not expressible as defaults.
func (c *AppConfig) Validate() error {
	if c.Chunker.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size must be positive", types.ErrConfiguration)
	}
	if c.Chunker.Overlap < 0 || c.Chunker.Overlap >= c.Chunker.ChunkSize {
		return fmt.Errorf("%w: overlap must satisfy 0 <= overlap < chunk_size", types.ErrConfiguration)
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("%w: top_k must be positive", types.ErrConfiguration)
	}
	if c.Scanner.MaxFileSizeMB <= 0 {
		return fmt.Errorf("%w: max_file_size_mb must be positive", types.ErrConfiguration)
	}
	return nil
}

// Default returns the stock configuration.
func Default() *AppConfig {
	return &AppConfig{
		Chunker:    ChunkerConfig{ChunkSize: 1200, Overlap: 200},
		Embedder:   EmbedderConfig{Provider: "local", CacheSize: 10000},
		Retrieval:  RetrievalConfig{TopK: 5},
		Scanner:    ScannerConfig{MaxFileSizeMB: 5},
		Generation: GenerationConfig{Model: "gemini-2.0-flash"},
	}
}

func applyDefaults(cfg *AppConfig) {
	def := Default()
	if cfg.Chunker.ChunkSize == 0 {
		cfg.Chunker.ChunkSize = def.Chunker.ChunkSize
	}
	if cfg.Chunker.Overlap == 0 && cfg.Chunker.ChunkSize == def.Chunker.ChunkSize {
		cfg.Chunker.Overlap = def.Chunker.Overlap
	}
	if cfg.Embedder.Provider == "" {
		cfg.Embedder.Provider = def.Embedder.Provider
	}
	if cfg.Embedder.CacheSize == 0 {
		cfg.Embedder.CacheSize = def.Embedder.CacheSize
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = def.Retrieval.TopK
	}
	if cfg.Scanner.MaxFileSizeMB == 0 {
		cfg.Scanner.MaxFileSizeMB = def.Scanner.MaxFileSizeMB
	}
	if cfg.Generation.Model == "" {
		cfg.Generation.Model = def.Generation.Model
	}
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "repodoc", "config.yaml"), nil
}
