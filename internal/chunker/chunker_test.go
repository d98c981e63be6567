package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartdocgen/repodoc/pkg/types"
)

func docOf(text string) []types.Document {
	return []types.Document{{ID: "doc-0", Path: "doc-0", Content: text}}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name      string
		chunkSize int
		overlap   int
		wantErr   bool
	}{
		{"valid defaults", DefaultChunkSize, DefaultOverlap, false},
		{"zero overlap", 100, 0, false},
		{"zero chunk size", 0, 0, true},
		{"negative chunk size", -5, 0, true},
		{"negative overlap", 100, -1, true},
		{"overlap equals chunk size", 100, 100, true},
		{"overlap exceeds chunk size", 100, 150, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.chunkSize, tt.overlap)
			if tt.wantErr {
				assert.ErrorIs(t, err, types.ErrConfiguration)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSplitShortDocumentSingleChunk(t *testing.T) {
	text := "short document that fits in one chunk"
	chunks, err := Split(docOf(text), 1200, 200)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0].Content)
	assert.Equal(t, 0, chunks[0].StartOffset)
	assert.Equal(t, "doc-0", chunks[0].DocumentID)
}

func TestSplitExactChunkSize(t *testing.T) {
	text := strings.Repeat("a", 100)
	chunks, err := Split(docOf(text), 100, 20)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0].Content)
}

func TestSplitEmptyAndWhitespaceDocuments(t *testing.T) {
	docs := []types.Document{
		{ID: "a", Content: ""},
		{ID: "b", Content: "   \n\t  \n"},
	}
	chunks, err := Split(docs, 100, 20)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestSplitNeverExceedsChunkSize(t *testing.T) {
	text := strings.Repeat("word and more text ", 400)
	chunks, err := Split(docOf(text), 120, 30)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c.Content), 120)
	}
}

func TestSplitOverlapIsExact(t *testing.T) {
	// No whitespace-only segments, so no chunks are dropped and the
	// overlap relation holds between every adjacent pair.
	text := strings.Repeat("abcdefghij", 50)
	overlap := 10
	chunks, err := Split(docOf(text), 40, overlap)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1].Content
		tail := prev[len(prev)-overlap:]
		head := chunks[i].Content[:overlap]
		assert.Equal(t, tail, head, "chunk %d should start with chunk %d's tail", i, i-1)
	}
}

func TestSplitOffsetsMatchSource(t *testing.T) {
	text := strings.Repeat("some plain text content here ", 100)
	chunks, err := Split(docOf(text), 150, 40)
	require.NoError(t, err)
	for _, c := range chunks {
		assert.Equal(t, c.Content, text[c.StartOffset:c.StartOffset+len(c.Content)])
	}
}

func TestSplitPrefersParagraphBoundary(t *testing.T) {
	para1 := strings.Repeat("a", 60)
	para2 := strings.Repeat("b", 60)
	text := para1 + "\n\n" + para2

	chunks, err := Split(docOf(text), 100, 10)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, para1+"\n\n", chunks[0].Content)
}

func TestSplitPrefersLineBoundaryOverWordBoundary(t *testing.T) {
	line1 := strings.Repeat("a a ", 15) // 60 bytes with word breaks
	text := line1 + "\n" + strings.Repeat("b", 60)

	chunks, err := Split(docOf(text), 100, 10)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, line1+"\n", chunks[0].Content)
}

func TestSplitHardCutWithoutBoundaries(t *testing.T) {
	text := strings.Repeat("x", 250)
	chunks, err := Split(docOf(text), 100, 20)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	assert.Equal(t, 100, len(chunks[0].Content))
}

func TestSplitDoesNotSeverMultiByteRunes(t *testing.T) {
	text := strings.Repeat("héllo wörld ", 100)
	chunks, err := Split(docOf(text), 50, 10)
	require.NoError(t, err)
	for _, c := range chunks {
		assert.True(t, strings.ToValidUTF8(c.Content, "") == c.Content,
			"chunk content must be valid UTF-8")
	}
}

func TestSplitOverlapRewindLandsOnRuneStart(t *testing.T) {
	// Two-byte runes with no separators and an odd overlap: the hard cut
	// lands on a rune boundary but the raw rewind would not.
	text := strings.Repeat("é", 300)
	chunks, err := Split(docOf(text), 101, 11)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.True(t, strings.ToValidUTF8(c.Content, "") == c.Content,
			"chunk content must be valid UTF-8")
		assert.Equal(t, text[c.StartOffset:c.StartOffset+len(c.Content)], c.Content)
	}
}

func TestSplitIsDeterministic(t *testing.T) {
	text := strings.Repeat("deterministic input text\nwith lines\n\nand paragraphs ", 50)
	first, err := Split(docOf(text), 200, 50)
	require.NoError(t, err)
	second, err := Split(docOf(text), 200, 50)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSplitSequencePerDocument(t *testing.T) {
	docs := []types.Document{
		{ID: "a", Content: strings.Repeat("x", 250)},
		{ID: "b", Content: strings.Repeat("y", 250)},
	}
	chunks, err := Split(docs, 100, 20)
	require.NoError(t, err)

	seq := map[string]int{}
	for _, c := range chunks {
		assert.Equal(t, seq[c.DocumentID], c.Seq)
		seq[c.DocumentID]++
	}
}

func TestSplitCoversWholeDocument(t *testing.T) {
	text := strings.Repeat("coverage check text ", 120)
	chunks, err := Split(docOf(text), 130, 30)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	// Adjacent chunks tile the document: each next chunk starts exactly
	// overlap bytes before the previous one ends.
	assert.Equal(t, 0, chunks[0].StartOffset)
	for i := 1; i < len(chunks); i++ {
		prevEnd := chunks[i-1].StartOffset + len(chunks[i-1].Content)
		assert.Equal(t, prevEnd-30, chunks[i].StartOffset)
	}
	last := chunks[len(chunks)-1]
	assert.Equal(t, len(text), last.StartOffset+len(last.Content))
}
