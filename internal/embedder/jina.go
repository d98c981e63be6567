package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/smartdocgen/repodoc/internal/retry"
	"github.com/smartdocgen/repodoc/pkg/types"
)

const (
	// DefaultJinaModel is the Jina AI embedding model used by default.
	DefaultJinaModel = "jina-embeddings-v3"

	// JinaDimension is the vector size of jina-embeddings-v3.
	JinaDimension = 1024

	jinaEndpoint = "https://api.jina.ai/v1/embeddings"
)

// JinaEmbedder generates embeddings via the Jina AI HTTP API.
type JinaEmbedder struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
	cache      *Cache
	retryCfg   retry.Config
}

// NewJinaEmbedder creates a Jina AI embedder. The API key must be
// non-empty; key resolution from config/env is the factory's job.
func NewJinaEmbedder(apiKey string, cache *Cache) (*JinaEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: jina API key not set", types.ErrEmbeddingUnavailable)
	}
	return &JinaEmbedder{
		apiKey:   apiKey,
		model:    DefaultJinaModel,
		endpoint: jinaEndpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		cache:    cache,
		retryCfg: retry.DefaultConfig(),
	}, nil
}

func (j *JinaEmbedder) Encode(ctx context.Context, text string) ([]float32, error) {
	if err := ValidateText(text); err != nil {
		return nil, err
	}

	hash := ComputeHash(text)
	if j.cache != nil {
		if v, ok := j.cache.Get(hash); ok {
			return v, nil
		}
	}

	vectors, err := j.EncodeBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("%w: no embeddings returned", types.ErrEmbeddingUnavailable)
	}
	return vectors[0], nil
}

func (j *JinaEmbedder) EncodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ValidateBatch(texts); err != nil {
		return nil, err
	}
	if len(texts) > MaxBatchSize {
		return nil, fmt.Errorf("%w: max %d texts allowed", ErrBatchTooLarge, MaxBatchSize)
	}

	vectors, err := retry.Do(ctx, j.retryCfg, func() ([][]float32, error) {
		return j.callAPI(ctx, texts)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrEmbeddingUnavailable, err)
	}

	if j.cache != nil {
		for i, v := range vectors {
			j.cache.Set(ComputeHash(texts[i]), v)
		}
	}

	return vectors, nil
}

func (j *JinaEmbedder) callAPI(ctx context.Context, texts []string) ([][]float32, error) {
	reqBody := map[string]interface{}{
		"input": texts,
		"model": j.model,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", j.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+j.apiKey)

	resp, err := j.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api call: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("api error %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var apiResp struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		} `json:"data"`
		Model string `json:"model"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(apiResp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(apiResp.Data))
	}

	vectors := make([][]float32, len(apiResp.Data))
	for i, d := range apiResp.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}

func (j *JinaEmbedder) Dimension() int { return JinaDimension }

func (j *JinaEmbedder) Provider() string { return KindJina }

func (j *JinaEmbedder) Model() string { return j.model }

func (j *JinaEmbedder) Close() error {
	j.httpClient.CloseIdleConnections()
	return nil
}
