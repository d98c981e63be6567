// Package retriever turns a free-text query into an LLM-ready context
// string by searching the index and concatenating the best-matching
// chunks.
package retriever

import (
	"context"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/smartdocgen/repodoc/internal/embedder"
	"github.com/smartdocgen/repodoc/internal/index"
	"github.com/smartdocgen/repodoc/pkg/types"
)

const (
	// DefaultTopK is the number of chunks retrieved per query.
	DefaultTopK = 5

	// contextSeparator joins chunk texts in the assembled context string.
	contextSeparator = "\n\n"

	// queryCacheSize bounds the encoded-query LRU.
	queryCacheSize = 512
)

// Retriever answers context queries against an index. Safe for
// concurrent use.
type Retriever struct {
	store *index.Store
	emb   embedder.Embedder

	// queryCache avoids re-encoding repeated queries. Keyed by the
	// query text's hash, same scheme as the embedding cache.
	queryCache *lru.Cache[string, []float32]
}

// New creates a Retriever over the given store and embedder. The
// embedder must match the one the index was built with; Open on the
// store already enforces the dimension.
func New(store *index.Store, emb embedder.Embedder) (*Retriever, error) {
	if store == nil || emb == nil {
		return nil, fmt.Errorf("%w: retriever requires a store and an embedder", types.ErrConfiguration)
	}
	cache, err := lru.New[string, []float32](queryCacheSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrConfiguration, err)
	}
	return &Retriever{store: store, emb: emb, queryCache: cache}, nil
}

// RetrieveResults returns the top-k chunks for the query with scores and
// provenance. An empty query or non-positive k is rejected with
// types.ErrInvalidArgument.
func (r *Retriever) RetrieveResults(ctx context.Context, query string, k int) ([]types.ScoredChunk, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query cannot be empty", types.ErrInvalidArgument)
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", types.ErrInvalidArgument, k)
	}

	vector, err := r.encodeQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	return r.store.Search(ctx, vector, k)
}

// Retrieve returns the top-k chunk texts joined by blank lines, ready to
// paste into an LLM prompt. An empty index yields an empty string.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) (string, error) {
	results, err := r.RetrieveResults(ctx, query, k)
	if err != nil {
		return "", err
	}

	texts := make([]string, len(results))
	for i, res := range results {
		texts[i] = res.Content
	}
	return strings.Join(texts, contextSeparator), nil
}

func (r *Retriever) encodeQuery(ctx context.Context, query string) ([]float32, error) {
	hash := embedder.ComputeHash(query)
	if v, ok := r.queryCache.Get(hash); ok {
		out := make([]float32, len(v))
		copy(out, v)
		return out, nil
	}

	vector, err := r.emb.Encode(ctx, query)
	if err != nil {
		return nil, err
	}

	r.queryCache.Add(hash, vector)
	out := make([]float32, len(vector))
	copy(out, vector)
	return out, nil
}
