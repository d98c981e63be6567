package index

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"

	"github.com/smartdocgen/repodoc/internal/embedder"
	"github.com/smartdocgen/repodoc/pkg/types"
)

// Store persists (chunk text, embedding vector) pairs in a SQLite file
// and answers cosine top-k queries over them.
//
// The index is append-only: Ingest never deduplicates, so re-ingesting
// the same chunks duplicates entries. Avoiding redundant ingestion is the
// caller's responsibility.
//
// Durability: Ingest commits its transaction before returning, so an
// index is recoverable via Open even if the process dies immediately
// after Ingest returns.
//
// A coarse RWMutex makes ingestion atomic with respect to search: a
// search observes either the pre- or post-ingest state, never a
// partially written batch.
type Store struct {
	db  *sql.DB
	emb embedder.Embedder
	mu  sync.RWMutex
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// WAL keeps committed batches durable across crashes
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	return db, nil
}

// Open creates a new index at dbPath or loads an existing one. An
// existing index must have been built with an embedder of the same
// dimensionality; a mismatch or unreadable storage fails with
// types.ErrIndexCorrupt.
func Open(dbPath string, emb embedder.Embedder) (*Store, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrIndexCorrupt, err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", types.ErrIndexCorrupt, err)
	}

	s := &Store{db: db, emb: emb}
	if err := s.validateMeta(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// validateMeta checks the persisted embedder metadata against the
// configured embedder, writing it on first open.
func (s *Store) validateMeta(ctx context.Context) error {
	var dim int
	var provider, model string
	err := s.db.QueryRowContext(ctx,
		"SELECT dimension, provider, model FROM index_meta WHERE id = 1").
		Scan(&dim, &provider, &model)

	if err == sql.ErrNoRows {
		_, err = s.db.ExecContext(ctx,
			"INSERT INTO index_meta (id, dimension, provider, model) VALUES (1, ?, ?, ?)",
			s.emb.Dimension(), s.emb.Provider(), s.emb.Model())
		if err != nil {
			return fmt.Errorf("%w: failed to write index metadata: %v", types.ErrIndexCorrupt, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: failed to read index metadata: %v", types.ErrIndexCorrupt, err)
	}

	if dim != s.emb.Dimension() {
		return fmt.Errorf("%w: index dimension %d does not match embedder dimension %d (provider %s, model %s)",
			types.ErrIndexCorrupt, dim, s.emb.Dimension(), provider, model)
	}

	return nil
}

// Ingest encodes the chunks in batches and appends the resulting entries
// to the index within a single committed transaction. An empty chunk
// slice is a no-op.
func (s *Store) Ingest(ctx context.Context, chunks []types.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	for i := range chunks {
		if err := chunks[i].Validate(); err != nil {
			return fmt.Errorf("%w: chunk %d: %v", types.ErrInvalidArgument, i, err)
		}
	}

	// Encode before taking the write lock; only the append needs it.
	vectors, err := s.encodeAll(ctx, chunks)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO entries (doc_id, path, start_offset, content, vector) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range chunks {
		c := &chunks[i]
		if _, err := stmt.ExecContext(ctx, c.DocumentID, c.Path, c.StartOffset, c.Content,
			serializeVector(vectors[i])); err != nil {
			return fmt.Errorf("failed to insert entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ingest: %w", err)
	}

	return nil
}

// encodeAll batch-encodes chunk contents, respecting the embedder's
// batch limit. Output order matches chunk order.
func (s *Store) encodeAll(ctx context.Context, chunks []types.Chunk) ([][]float32, error) {
	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Content
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += embedder.MaxBatchSize {
		end := start + embedder.MaxBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := s.emb.EncodeBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}

	for i, v := range vectors {
		if len(v) != s.emb.Dimension() {
			return nil, fmt.Errorf("%w: embedder returned %d-dim vector for chunk %d, expected %d",
				types.ErrIndexCorrupt, len(v), i, s.emb.Dimension())
		}
	}

	return vectors, nil
}

// Search returns up to k entries ranked by descending cosine similarity
// to the query vector. Ties are broken by insertion order, so repeated
// queries are deterministic. An empty index returns an empty slice; a
// k larger than the entry count returns all entries.
func (s *Store) Search(ctx context.Context, vector []float32, k int) ([]types.ScoredChunk, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", types.ErrInvalidArgument, k)
	}
	if len(vector) != s.emb.Dimension() {
		return nil, fmt.Errorf("%w: query vector has dimension %d, index expects %d",
			types.ErrInvalidArgument, len(vector), s.emb.Dimension())
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	// Scan entries in insertion order; the stable sort below then keeps
	// that order among equal scores.
	rows, err := s.db.QueryContext(ctx,
		"SELECT doc_id, path, start_offset, content, vector FROM entries ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var candidates []types.ScoredChunk
	for rows.Next() {
		var sc types.ScoredChunk
		var blob []byte
		if err := rows.Scan(&sc.DocumentID, &sc.Path, &sc.StartOffset, &sc.Content, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		if len(blob) != s.emb.Dimension()*4 {
			return nil, fmt.Errorf("%w: stored vector blob has %d bytes, expected %d",
				types.ErrIndexCorrupt, len(blob), s.emb.Dimension()*4)
		}
		sc.Score = cosineSimilarity(vector, deserializeVector(blob))
		candidates = append(candidates, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if k < len(candidates) {
		candidates = candidates[:k]
	}
	return candidates, nil
}

// Count returns the number of entries in the index.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM entries").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return n, nil
}

// Dimension returns the embedding dimensionality of this index.
func (s *Store) Dimension() int { return s.emb.Dimension() }

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
