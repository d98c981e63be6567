// Package types defines the shared domain types for the retrieval
// pipeline: documents, chunks, scored retrieval results, and the core
// error taxonomy.
//
// The Document -> Chunk relationship is an explicit back-reference
// (DocumentID + Path) so provenance never has to be re-derived from
// strings downstream.
package types
