package types

import "errors"

// Chunk is a contiguous substring of a Document, the unit of embedding
// and retrieval. DocumentID and Path are back-references for provenance;
// the chunk does not own its source document.
type Chunk struct {
	DocumentID string
	Path       string
	Content    string

	// StartOffset is the byte offset of Content within the source document.
	StartOffset int

	// Seq is the chunk's position among its document's chunks.
	Seq int
}

// Validate checks structural invariants on a chunk before ingestion.
func (c *Chunk) Validate() error {
	if c.Content == "" {
		return errors.New("chunk content cannot be empty")
	}
	if c.StartOffset < 0 {
		return errors.New("start offset must be non-negative")
	}
	if c.Seq < 0 {
		return errors.New("chunk sequence must be non-negative")
	}
	return nil
}

// ScoredChunk is a retrieval result: a chunk's text with its similarity
// score and provenance. Produced fresh per query, never persisted.
type ScoredChunk struct {
	DocumentID  string
	Path        string
	Content     string
	StartOffset int
	Score       float64
}
