package embedder

import (
	"fmt"
	"os"
	"strings"
)

// Embedder kinds.
const (
	KindLocal  = "local"
	KindOpenAI = "openai"
	KindJina   = "jina"
)

// Environment variables consulted by NewFromEnv.
const (
	EnvProvider     = "REPODOC_EMBEDDING_PROVIDER"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	EnvJinaAPIKey   = "JINA_API_KEY"
)

// DefaultCacheSize bounds the embedding LRU when no size is configured.
const DefaultCacheSize = 10000

// Config holds embedder construction parameters.
type Config struct {
	Kind      string
	APIKey    string
	Model     string
	CacheSize int
}

// New creates an embedder with explicit configuration.
func New(cfg Config) (Embedder, error) {
	var cache *Cache
	if cfg.CacheSize > 0 {
		cache = NewCache(cfg.CacheSize)
	}

	switch strings.ToLower(cfg.Kind) {
	case KindLocal, "":
		return NewLocalEmbedder(cache), nil
	case KindOpenAI:
		return NewOpenAIEmbedder(cfg.APIKey, cfg.Model, cache)
	case KindJina:
		return NewJinaEmbedder(cfg.APIKey, cache)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, cfg.Kind)
	}
}

// NewFromConfig creates an embedder for the configured kind, reading
// API keys from the environment when the config carries none. A
// configured remote provider without a usable key is an error, never a
// silent local fallback. REPODOC_EMBEDDING_PROVIDER overrides the
// configured kind when set.
func NewFromConfig(cfg Config) (Embedder, error) {
	if kind := os.Getenv(EnvProvider); kind != "" {
		cfg.Kind = kind
	}
	if cfg.APIKey == "" {
		switch strings.ToLower(cfg.Kind) {
		case KindOpenAI:
			cfg.APIKey = os.Getenv(EnvOpenAIAPIKey)
		case KindJina:
			cfg.APIKey = os.Getenv(EnvJinaAPIKey)
		}
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultCacheSize
	}
	return New(cfg)
}

// NewFromEnv creates an embedder based on environment variables.
// Priority:
//  1. REPODOC_EMBEDDING_PROVIDER (local, openai, jina)
//  2. Available API keys: OPENAI_API_KEY, JINA_API_KEY
//  3. The local embedder when nothing else is configured
func NewFromEnv() (Embedder, error) {
	return NewFromConfig(Config{Kind: DetectKind()})
}

// DetectKind returns the embedder kind NewFromEnv would pick.
func DetectKind() string {
	if kind := os.Getenv(EnvProvider); kind != "" {
		return strings.ToLower(kind)
	}
	if os.Getenv(EnvOpenAIAPIKey) != "" {
		return KindOpenAI
	}
	if os.Getenv(EnvJinaAPIKey) != "" {
		return KindJina
	}
	return KindLocal
}
