package index

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartdocgen/repodoc/internal/embedder"
	"github.com/smartdocgen/repodoc/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "index.db")
	s, err := Open(dbPath, embedder.NewLocalEmbedder(nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func chunksFrom(texts ...string) []types.Chunk {
	chunks := make([]types.Chunk, len(texts))
	for i, txt := range texts {
		chunks[i] = types.Chunk{
			DocumentID: fmt.Sprintf("doc-%d", i),
			Content:    txt,
			Seq:        0,
		}
	}
	return chunks
}

func TestOpenCreatesEmptyIndex(t *testing.T) {
	s := newTestStore(t)

	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, embedder.LocalDimension, s.Dimension())
}

func TestIngestAndCount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Ingest(ctx, chunksFrom("alpha beta", "gamma delta", "epsilon")))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestIngestEmptySliceIsNoop(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Ingest(ctx, nil))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestSearchEmptyIndex(t *testing.T) {
	s := newTestStore(t)

	query := make([]float32, s.Dimension())
	query[0] = 1

	results, err := s.Search(context.Background(), query, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchRanksBySimilarity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	emb := embedder.NewLocalEmbedder(nil)

	require.NoError(t, s.Ingest(ctx, chunksFrom(
		"func main starts the server",
		"completely unrelated grocery list",
		"func main parses flags then starts the server loop",
	)))

	query, err := emb.Encode(ctx, "func main server")
	require.NoError(t, err)

	results, err := s.Search(ctx, query, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
	for _, r := range results {
		assert.NotEqual(t, "completely unrelated grocery list", r.Content)
	}
}

func TestSearchKLargerThanIndex(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	emb := embedder.NewLocalEmbedder(nil)

	require.NoError(t, s.Ingest(ctx, chunksFrom("one", "two")))

	query, err := emb.Encode(ctx, "one")
	require.NoError(t, err)

	results, err := s.Search(ctx, query, 100)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearchRejectsNonPositiveK(t *testing.T) {
	s := newTestStore(t)
	query := make([]float32, s.Dimension())

	_, err := s.Search(context.Background(), query, 0)
	assert.ErrorIs(t, err, types.ErrInvalidArgument)

	_, err = s.Search(context.Background(), query, -3)
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
}

func TestSearchRejectsWrongDimension(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Search(context.Background(), []float32{1, 2, 3}, 1)
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
}

func TestSearchIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	emb := embedder.NewLocalEmbedder(nil)

	require.NoError(t, s.Ingest(ctx, chunksFrom("red green", "green blue", "blue red")))

	query, err := emb.Encode(ctx, "green")
	require.NoError(t, err)

	first, err := s.Search(ctx, query, 3)
	require.NoError(t, err)
	second, err := s.Search(ctx, query, 3)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSearchTieBreakByInsertionOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	emb := embedder.NewLocalEmbedder(nil)

	// Identical contents produce identical vectors, so all scores tie.
	chunks := []types.Chunk{
		{DocumentID: "first", Content: "same words here"},
		{DocumentID: "second", Content: "same words here"},
		{DocumentID: "third", Content: "same words here"},
	}
	require.NoError(t, s.Ingest(ctx, chunks))

	query, err := emb.Encode(ctx, "same words here")
	require.NoError(t, err)

	results, err := s.Search(ctx, query, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "first", results[0].DocumentID)
	assert.Equal(t, "second", results[1].DocumentID)
	assert.Equal(t, "third", results[2].DocumentID)
}

func TestIngestMonotonicity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	emb := embedder.NewLocalEmbedder(nil)

	require.NoError(t, s.Ingest(ctx, []types.Chunk{
		{DocumentID: "exact", Content: "alpha beta gamma"},
		{DocumentID: "partial", Content: "alpha beta"},
	}))

	query, err := emb.Encode(ctx, "alpha beta gamma")
	require.NoError(t, err)

	before, err := s.Search(ctx, query, 2)
	require.NoError(t, err)
	require.Len(t, before, 2)
	require.Equal(t, "exact", before[0].DocumentID)
	kth := before[1].Score

	// One entry below the old k-th score, one above it.
	require.NoError(t, s.Ingest(ctx, []types.Chunk{
		{DocumentID: "unrelated", Content: "zebra quux"},
		{DocumentID: "outranking", Content: "alpha beta gamma"},
	}))

	after, err := s.Search(ctx, query, 2)
	require.NoError(t, err)
	require.Len(t, after, 2)

	assert.Equal(t, "exact", after[0].DocumentID)
	assert.Equal(t, "outranking", after[1].DocumentID)
	for _, r := range after {
		assert.GreaterOrEqual(t, r.Score, kth)
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "index.db")
	ctx := context.Background()
	emb := embedder.NewLocalEmbedder(nil)

	s, err := Open(dbPath, emb)
	require.NoError(t, err)
	require.NoError(t, s.Ingest(ctx, chunksFrom(
		"persisted content about routing",
		"handler registration and middleware",
		"unrelated release notes",
	)))

	query, err := emb.Encode(ctx, "routing content")
	require.NoError(t, err)
	before, err := s.Search(ctx, query, 3)
	require.NoError(t, err)
	require.Len(t, before, 3)
	require.NoError(t, s.Close())

	reopened, err := Open(dbPath, emb)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	n, err := reopened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	after, err := reopened.Search(ctx, query, 3)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, "persisted content about routing", after[0].Content)
}

type fixedDimEmbedder struct {
	*embedder.LocalEmbedder
	dim int
}

func (f *fixedDimEmbedder) Dimension() int { return f.dim }

func TestOpenRejectsDimensionMismatch(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "index.db")

	s, err := Open(dbPath, embedder.NewLocalEmbedder(nil))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	mismatched := &fixedDimEmbedder{
		LocalEmbedder: embedder.NewLocalEmbedder(nil),
		dim:           embedder.LocalDimension + 1,
	}
	_, err = Open(dbPath, mismatched)
	assert.ErrorIs(t, err, types.ErrIndexCorrupt)
}

func TestIngestRejectsInvalidChunk(t *testing.T) {
	s := newTestStore(t)

	err := s.Ingest(context.Background(), []types.Chunk{{DocumentID: "doc-0", Content: ""}})
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
}

func TestIngestMoreThanOneBatch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	texts := make([]string, embedder.MaxBatchSize+7)
	for i := range texts {
		texts[i] = fmt.Sprintf("entry number %d", i)
	}
	require.NoError(t, s.Ingest(ctx, chunksFrom(texts...)))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, embedder.MaxBatchSize+7, n)
}
