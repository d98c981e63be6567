// Package index stores chunk embeddings in a SQLite file and serves
// cosine top-k similarity queries over them.
//
// The store is append-only. Each entry keeps the chunk text alongside its
// vector so search results carry the original content back to the caller
// without a second lookup. Embedder metadata (dimension, provider, model)
// is persisted on first open and validated on every subsequent open, so an
// index built with one embedder cannot silently be queried with another.
//
// Two SQLite drivers are supported via build tags: modernc.org/sqlite
// (pure Go, the default) and mattn/go-sqlite3 (CGO, behind the
// cgo_sqlite tag). See build_purego.go and build_cgo.go.
package index
