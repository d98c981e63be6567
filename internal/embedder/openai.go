package embedder

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/smartdocgen/repodoc/internal/retry"
	"github.com/smartdocgen/repodoc/pkg/types"
)

const (
	// DefaultOpenAIModel is the OpenAI embedding model used by default.
	DefaultOpenAIModel = "text-embedding-3-small"

	// OpenAIDimension is the vector size of text-embedding-3-small.
	OpenAIDimension = 1536
)

// OpenAIEmbedder generates embeddings via the OpenAI API. Vectors are
// L2-normalized so cosine similarity reduces to a dot product downstream.
type OpenAIEmbedder struct {
	client   *openai.Client
	model    string
	dim      int
	cache    *Cache
	retryCfg retry.Config
}

// NewOpenAIEmbedder creates an OpenAI embedder.
func NewOpenAIEmbedder(apiKey, model string, cache *Cache) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: openai API key not set", types.ErrEmbeddingUnavailable)
	}
	if model == "" {
		model = DefaultOpenAIModel
	}

	dim := OpenAIDimension
	if model == "text-embedding-3-large" {
		dim = 3072
	}

	return &OpenAIEmbedder{
		client:   openai.NewClient(apiKey),
		model:    model,
		dim:      dim,
		cache:    cache,
		retryCfg: retry.DefaultConfig(),
	}, nil
}

func (o *OpenAIEmbedder) Encode(ctx context.Context, text string) ([]float32, error) {
	if err := ValidateText(text); err != nil {
		return nil, err
	}

	hash := ComputeHash(text)
	if o.cache != nil {
		if v, ok := o.cache.Get(hash); ok {
			return v, nil
		}
	}

	vectors, err := o.EncodeBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("%w: no embeddings returned", types.ErrEmbeddingUnavailable)
	}
	return vectors[0], nil
}

func (o *OpenAIEmbedder) EncodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ValidateBatch(texts); err != nil {
		return nil, err
	}
	if len(texts) > MaxBatchSize {
		return nil, fmt.Errorf("%w: max %d texts allowed", ErrBatchTooLarge, MaxBatchSize)
	}

	resp, err := retry.Do(ctx, o.retryCfg, func() (openai.EmbeddingResponse, error) {
		return o.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Model: openai.EmbeddingModel(o.model),
			Input: texts,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrEmbeddingUnavailable, err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d",
			types.ErrEmbeddingUnavailable, len(texts), len(resp.Data))
	}

	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		v := make([]float32, len(d.Embedding))
		copy(v, d.Embedding)
		Normalize(v)
		vectors[i] = v
	}

	if o.cache != nil {
		for i, v := range vectors {
			o.cache.Set(ComputeHash(texts[i]), v)
		}
	}

	return vectors, nil
}

func (o *OpenAIEmbedder) Dimension() int { return o.dim }

func (o *OpenAIEmbedder) Provider() string { return KindOpenAI }

func (o *OpenAIEmbedder) Model() string { return o.model }

func (o *OpenAIEmbedder) Close() error { return nil }
