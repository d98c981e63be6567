package embedder

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"
)

const (
	// LocalDimension is the vector size of the hashed bag-of-words model.
	LocalDimension = 256

	localModelName = "hashed-bow-256"
)

// LocalEmbedder is a deterministic, fully offline embedder. It tokenizes
// text into lowercase word tokens, hashes each token into a fixed bucket
// with FNV-1a, accumulates counts, and L2-normalizes. Texts sharing tokens
// get correlated vectors under cosine similarity, which is enough for
// development, tests, and small corpora without a hosted model.
type LocalEmbedder struct {
	cache *Cache
}

// NewLocalEmbedder creates the offline embedder.
func NewLocalEmbedder(cache *Cache) *LocalEmbedder {
	return &LocalEmbedder{cache: cache}
}

func (l *LocalEmbedder) Encode(ctx context.Context, text string) ([]float32, error) {
	if err := ValidateText(text); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hash := ComputeHash(text)
	if l.cache != nil {
		if v, ok := l.cache.Get(hash); ok {
			return v, nil
		}
	}

	v := embedTokens(text)

	if l.cache != nil {
		l.cache.Set(hash, v)
	}
	return v, nil
}

func (l *LocalEmbedder) EncodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ValidateBatch(texts); err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := l.Encode(ctx, t)
		if err != nil {
			return nil, err
		}
		vectors[i] = v
	}
	return vectors, nil
}

func (l *LocalEmbedder) Dimension() int { return LocalDimension }

func (l *LocalEmbedder) Provider() string { return KindLocal }

func (l *LocalEmbedder) Model() string { return localModelName }

func (l *LocalEmbedder) Close() error { return nil }

// embedTokens builds the hashed bag-of-words vector for a text.
func embedTokens(text string) []float32 {
	v := make([]float32, LocalDimension)
	for _, tok := range tokenize(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		v[h.Sum32()%LocalDimension]++
	}
	Normalize(v)
	return v
}

// tokenize lowercases and splits on any non-letter, non-digit rune.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
