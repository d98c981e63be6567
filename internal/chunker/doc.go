// Package chunker divides source documents into overlapping text chunks
// for embedding and retrieval.
//
// # Splitting Strategy
//
// Each chunk is at most chunkSize bytes. Within the size budget the
// splitter prefers natural boundaries, in order:
//   - Paragraph breaks ("\n\n")
//   - Line breaks ("\n")
//   - Word breaks (" ")
//
// Only when no boundary exists in the window does it hard-cut at the
// budget (backed off to a rune boundary). Avoiding mid-identifier cuts
// matters because embedding quality degrades on truncated tokens.
//
// # Overlap
//
// The last overlap bytes of each chunk are repeated at the start of the
// next one, so context spanning a cut point appears in both neighbors.
// Boundary candidates inside the overlap window are rejected, which
// guarantees every chunk advances the scan.
//
// # Edge Cases
//
// Empty or whitespace-only documents yield zero chunks. A document no
// longer than the chunk size yields exactly one chunk equal to the whole
// document. Splitting is pure and deterministic.
package chunker
