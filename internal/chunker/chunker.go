package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/smartdocgen/repodoc/pkg/types"
)

const (
	// DefaultChunkSize is the maximum chunk length in bytes.
	DefaultChunkSize = 1200

	// DefaultOverlap is the number of trailing bytes repeated at the
	// start of the next chunk.
	DefaultOverlap = 200
)

// separators in preference order: paragraph break, line break, word break.
var separators = []string{"\n\n", "\n", " "}

// Chunker splits documents into overlapping, size-bounded segments.
type Chunker struct {
	chunkSize int
	overlap   int
}

// New creates a Chunker. chunkSize must be positive and overlap must
// satisfy 0 <= overlap < chunkSize, else types.ErrConfiguration.
func New(chunkSize, overlap int) (*Chunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", types.ErrConfiguration, chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("%w: overlap must satisfy 0 <= overlap < chunk size, got overlap=%d chunk size=%d",
			types.ErrConfiguration, overlap, chunkSize)
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap}, nil
}

// Split divides each document into chunks, preserving per-document chunk
// order. Empty or whitespace-only documents produce zero chunks; a
// document no longer than the chunk size produces exactly one chunk equal
// to the whole text. Pure function: no I/O, deterministic for identical
// inputs.
func Split(docs []types.Document, chunkSize, overlap int) ([]types.Chunk, error) {
	c, err := New(chunkSize, overlap)
	if err != nil {
		return nil, err
	}
	return c.Split(docs), nil
}

// Split divides the documents using the chunker's configuration.
func (c *Chunker) Split(docs []types.Document) []types.Chunk {
	chunks := make([]types.Chunk, 0, len(docs))
	for i := range docs {
		chunks = append(chunks, c.splitDocument(&docs[i])...)
	}
	return chunks
}

// splitDocument splits one document. Each cut prefers the latest natural
// boundary inside the size budget; the boundary must lie past the overlap
// window so every chunk advances the scan position.
func (c *Chunker) splitDocument(doc *types.Document) []types.Chunk {
	if doc.IsEmpty() {
		return nil
	}

	text := doc.Content
	var chunks []types.Chunk
	seq := 0
	pos := 0

	for pos < len(text) {
		if len(text)-pos <= c.chunkSize {
			chunks = c.appendChunk(chunks, doc, text[pos:], pos, &seq)
			break
		}

		cut := c.findCut(text, pos)
		chunks = c.appendChunk(chunks, doc, text[pos:cut], pos, &seq)

		// The overlap rewind is a byte offset; advance to the next rune
		// start so no chunk begins with a severed multi-byte character.
		pos = cut - c.overlap
		for pos < len(text) && !utf8.RuneStart(text[pos]) {
			pos++
		}
	}

	return chunks
}

// findCut returns the end position of the chunk starting at pos. It scans
// the size window for the last paragraph break, then line break, then word
// break, and hard-cuts at the budget when no usable boundary exists. A
// boundary is usable only if the cut lands past pos+overlap, which
// guarantees forward progress given overlap < chunkSize.
func (c *Chunker) findCut(text string, pos int) int {
	window := text[pos : pos+c.chunkSize]
	minCut := c.overlap + 1

	for _, sep := range separators {
		if idx := strings.LastIndex(window, sep); idx >= 0 {
			cut := idx + len(sep)
			if cut >= minCut {
				return pos + cut
			}
		}
	}

	// Hard cut: back off to a rune boundary so multi-byte characters are
	// never severed.
	cut := pos + c.chunkSize
	for cut > pos+minCut && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return cut
}

// appendChunk records a chunk unless its content is whitespace-only.
func (c *Chunker) appendChunk(chunks []types.Chunk, doc *types.Document, content string, offset int, seq *int) []types.Chunk {
	if strings.TrimSpace(content) == "" {
		return chunks
	}
	chunks = append(chunks, types.Chunk{
		DocumentID:  doc.ID,
		Path:        doc.Path,
		Content:     content,
		StartOffset: offset,
		Seq:         *seq,
	})
	*seq++
	return chunks
}

// ChunkSize returns the configured maximum chunk length.
func (c *Chunker) ChunkSize() int { return c.chunkSize }

// Overlap returns the configured overlap length.
func (c *Chunker) Overlap() int { return c.overlap }
